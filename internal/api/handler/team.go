package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/api/validation"
	"github.com/flockhq/flock/internal/team"
)

type createTeamRequest struct {
	Name         string `json:"name"`
	FellowshipID string `json:"fellowshipId"`
	LeaderID     string `json:"leaderId"`
}

type updateTeamRequest struct {
	Name         *string `json:"name"`
	FellowshipID *string `json:"fellowshipId"`
	LeaderID     *string `json:"leaderId"`
	Active       *bool   `json:"active"`
}

type teamResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FellowshipID *string `json:"fellowshipId,omitempty"`
	LeaderID     *string `json:"leaderId,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type teamMemberResponse struct {
	UserID   string `json:"userId"`
	JoinedAt string `json:"joinedAt"`
}

func toTeamResponse(t *team.Team) teamResponse {
	resp := teamResponse{
		ID:        t.ID.String(),
		Name:      t.Name,
		Active:    t.Active,
		CreatedAt: t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: t.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if t.FellowshipID != nil {
		s := t.FellowshipID.String()
		resp.FellowshipID = &s
	}
	if t.LeaderID != nil {
		s := t.LeaderID.String()
		resp.LeaderID = &s
	}
	return resp
}

// TeamHandler handles team CRUD and membership endpoints.
type TeamHandler struct {
	repo team.Repository
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository) *TeamHandler {
	return &TeamHandler{repo: repo}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamRequest(validation.CreateTeamRequest{
		Name:         req.Name,
		FellowshipID: req.FellowshipID,
		LeaderID:     req.LeaderID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	t := &team.Team{
		Name:   req.Name,
		Active: true,
	}
	if req.FellowshipID != "" {
		id, _ := uuid.Parse(req.FellowshipID) // already validated
		t.FellowshipID = &id
	}
	if req.LeaderID != "" {
		id, _ := uuid.Parse(req.LeaderID)
		t.LeaderID = &id
	}

	if err := h.repo.Create(r.Context(), t); err != nil {
		if errors.Is(err, team.ErrDuplicateTeamName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("A team named %q already exists", req.Name), requestID)
			return
		}
		slog.Error("failed to create team", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create team", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t), requestID)
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teams, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// GetByID handles GET /teams/{id}.
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		slog.Error("failed to get team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Update handles PATCH /teams/{id}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fields := team.UpdateFields{
		Name:   req.Name,
		Active: req.Active,
	}
	if req.FellowshipID != nil {
		fellowshipID, err := uuid.Parse(*req.FellowshipID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "fellowshipId must be a valid UUID", requestID)
			return
		}
		fields.FellowshipID = &fellowshipID
	}
	if req.LeaderID != nil {
		leaderID, err := uuid.Parse(*req.LeaderID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "leaderId must be a valid UUID", requestID)
			return
		}
		fields.LeaderID = &leaderID
	}

	t, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		if errors.Is(err, team.ErrDuplicateTeamName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", "A team with that name already exists", requestID)
			return
		}
		slog.Error("failed to update team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update team", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t), requestID)
}

// Delete handles DELETE /teams/{id}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
			return
		}
		slog.Error("failed to delete team", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete team", requestID)
		return
	}

	response.NoContent(w)
}

// AddMember handles POST /teams/{id}/members/{userID}.
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, userID, ok := parseMemberParams(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.AddMember(r.Context(), teamID, userID); err != nil {
		if errors.Is(err, team.ErrAlreadyMember) {
			response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a team member", requestID)
			return
		}
		if errors.Is(err, team.ErrTeamNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team or user not found", requestID)
			return
		}
		slog.Error("failed to add team member", "error", err, "team", teamID, "user", userID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to add team member", requestID)
		return
	}

	response.Success(w, http.StatusCreated, map[string]string{
		"teamId": teamID.String(),
		"userId": userID.String(),
	}, requestID)
}

// RemoveMember handles DELETE /teams/{id}/members/{userID}.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, userID, ok := parseMemberParams(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.RemoveMember(r.Context(), teamID, userID); err != nil {
		if errors.Is(err, team.ErrMemberNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team member not found", requestID)
			return
		}
		slog.Error("failed to remove team member", "error", err, "team", teamID, "user", userID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove team member", requestID)
		return
	}

	response.NoContent(w)
}

// ListMembers handles GET /teams/{id}/members.
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	members, err := h.repo.ListMembers(r.Context(), teamID)
	if err != nil {
		slog.Error("failed to list team members", "error", err, "team", teamID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list team members", requestID)
		return
	}

	items := make([]teamMemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, teamMemberResponse{
			UserID:   m.UserID.String(),
			JoinedAt: m.JoinedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

func parseMemberParams(w http.ResponseWriter, r *http.Request, requestID string) (teamID, userID uuid.UUID, ok bool) {
	teamID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "userID must be a valid UUID", requestID)
		return uuid.Nil, uuid.Nil, false
	}
	return teamID, userID, true
}
