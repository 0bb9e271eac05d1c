package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/api/validation"
	"github.com/flockhq/flock/internal/invitee"
)

type createInviteeRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	TeamID          string `json:"teamId"`
	CellID          string `json:"cellId"`
	Status          string `json:"status"`
	InviteDate      string `json:"inviteDate"`
	ServiceDate     string `json:"serviceDate"`
	AttendedService *bool  `json:"attendedService"`
}

type updateInviteeRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	TeamID          *string `json:"teamId"`
	CellID          *string `json:"cellId"`
	Status          *string `json:"status"`
	ServiceDate     *string `json:"serviceDate"`
	AttendedService *bool   `json:"attendedService"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type inviteeResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email"`
	TeamID          *string `json:"teamId,omitempty"`
	CellID          *string `json:"cellId,omitempty"`
	InvitedBy       string  `json:"invitedBy"`
	Status          string  `json:"status"`
	InviteDate      string  `json:"inviteDate"`
	ServiceDate     *string `json:"serviceDate,omitempty"`
	AttendedService *bool   `json:"attendedService,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type earnedResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
	EarnedAt    string `json:"earnedAt"`
}

type createInviteeResponse struct {
	Invitee         inviteeResponse  `json:"invitee"`
	NewAchievements []earnedResponse `json:"newAchievements"`
}

func toInviteeResponse(i *invitee.Invitee) inviteeResponse {
	resp := inviteeResponse{
		ID:              i.ID.String(),
		Name:            i.Name,
		Phone:           i.Phone,
		Email:           i.Email,
		InvitedBy:       i.InvitedBy.String(),
		Status:          string(i.Status),
		InviteDate:      i.InviteDate.UTC().Format(time.RFC3339),
		AttendedService: i.AttendedService,
		CreatedAt:       i.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       i.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if i.TeamID != nil {
		s := i.TeamID.String()
		resp.TeamID = &s
	}
	if i.CellID != nil {
		s := i.CellID.String()
		resp.CellID = &s
	}
	if i.ServiceDate != nil {
		s := i.ServiceDate.UTC().Format(time.RFC3339)
		resp.ServiceDate = &s
	}
	return resp
}

func toEarnedResponses(earned []achievement.Earned) []earnedResponse {
	items := make([]earnedResponse, 0, len(earned))
	for _, e := range earned {
		items = append(items, earnedResponse{
			Name:        e.Definition.Name,
			Description: e.Definition.Description,
			Type:        string(e.Definition.Type),
			Threshold:   e.Definition.Threshold,
			Icon:        e.Definition.Icon,
			EarnedAt:    e.EarnedAt.UTC().Format(time.RFC3339),
		})
	}
	return items
}

// InviteeHandler handles invitee CRUD endpoints. Creating an invitee also
// runs the award engine for the inviter and, when set, the team; evaluation
// failures never fail the create.
type InviteeHandler struct {
	repo   invitee.Repository
	engine *achievement.Engine
}

// NewInviteeHandler creates a new InviteeHandler.
func NewInviteeHandler(repo invitee.Repository, engine *achievement.Engine) *InviteeHandler {
	return &InviteeHandler{repo: repo, engine: engine}
}

// Create handles POST /invitees. The authenticated identity becomes the inviter.
func (h *InviteeHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createInviteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateInviteeRequest(validation.CreateInviteeRequest{
		Name:        req.Name,
		TeamID:      req.TeamID,
		CellID:      req.CellID,
		Status:      req.Status,
		InviteDate:  req.InviteDate,
		ServiceDate: req.ServiceDate,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	i := &invitee.Invitee{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		InvitedBy:       identity.UserID,
		Status:          invitee.Status(req.Status),
		AttendedService: req.AttendedService,
	}
	if req.TeamID != "" {
		id, _ := uuid.Parse(req.TeamID) // already validated
		i.TeamID = &id
	}
	if req.CellID != "" {
		id, _ := uuid.Parse(req.CellID)
		i.CellID = &id
	}
	if req.InviteDate != "" {
		t, _ := time.Parse(time.RFC3339, req.InviteDate)
		i.InviteDate = t
	}
	if req.ServiceDate != "" {
		t, _ := time.Parse(time.RFC3339, req.ServiceDate)
		i.ServiceDate = &t
	}

	if err := h.repo.Create(r.Context(), i); err != nil {
		slog.Error("failed to create invitee", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create invitee", requestID)
		return
	}

	var newAchievements []achievement.Earned
	if h.engine != nil {
		earned, err := h.engine.EvaluateUser(r.Context(), identity.UserID, i.InviteDate)
		if err != nil {
			slog.Error("achievement evaluation failed", "user", identity.UserID, "error", err)
		}
		newAchievements = append(newAchievements, earned...)

		if i.TeamID != nil {
			teamEarned, err := h.engine.EvaluateTeam(r.Context(), *i.TeamID, i.InviteDate)
			if err != nil {
				slog.Error("team achievement evaluation failed", "team", *i.TeamID, "error", err)
			}
			newAchievements = append(newAchievements, teamEarned...)
		}
	}

	response.Success(w, http.StatusCreated, createInviteeResponse{
		Invitee:         toInviteeResponse(i),
		NewAchievements: toEarnedResponses(newAchievements),
	}, requestID)
}

// List handles GET /invitees with status/teamId/invitedBy/name filters and
// page/limit pagination.
func (h *InviteeHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var filter invitee.ListFilter
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := invitee.Status(s)
		if !invitee.ValidStatus(status) {
			response.Err(w, http.StatusBadRequest, "INVALID_FILTER", "unknown status filter", requestID)
			return
		}
		filter.Status = &status
	}
	if s := q.Get("teamId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be a valid UUID", requestID)
			return
		}
		filter.TeamID = &id
	}
	if s := q.Get("invitedBy"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "invitedBy must be a valid UUID", requestID)
			return
		}
		filter.InvitedBy = &id
	}
	if s := q.Get("name"); s != "" {
		filter.Name = &s
	}
	if s := q.Get("page"); s != "" {
		filter.Page, _ = strconv.Atoi(s)
	}
	if s := q.Get("limit"); s != "" {
		filter.Limit, _ = strconv.Atoi(s)
	}

	result, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list invitees", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list invitees", requestID)
		return
	}

	items := make([]inviteeResponse, 0, len(result.Invitees))
	for i := range result.Invitees {
		items = append(items, toInviteeResponse(&result.Invitees[i]))
	}

	response.SuccessList(w, http.StatusOK, items, result.Total, result.Page, result.Limit, requestID)
}

// GetByID handles GET /invitees/{id}.
func (h *InviteeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	i, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, invitee.ErrInviteeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitee not found", requestID)
			return
		}
		slog.Error("failed to get invitee", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get invitee", requestID)
		return
	}

	response.Success(w, http.StatusOK, toInviteeResponse(i), requestID)
}

// Update handles PATCH /invitees/{id}.
func (h *InviteeHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateInviteeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fields := invitee.UpdateFields{
		Name:            req.Name,
		Phone:           req.Phone,
		Email:           req.Email,
		AttendedService: req.AttendedService,
	}
	if req.Status != nil {
		if fieldErrors := validation.ValidateStatus(*req.Status); len(fieldErrors) > 0 {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
			return
		}
		status := invitee.Status(*req.Status)
		fields.Status = &status
	}
	if req.TeamID != nil {
		teamID, err := uuid.Parse(*req.TeamID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be a valid UUID", requestID)
			return
		}
		fields.TeamID = &teamID
	}
	if req.CellID != nil {
		cellID, err := uuid.Parse(*req.CellID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "cellId must be a valid UUID", requestID)
			return
		}
		fields.CellID = &cellID
	}
	if req.ServiceDate != nil {
		t, err := time.Parse(time.RFC3339, *req.ServiceDate)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "serviceDate must be an RFC 3339 timestamp", requestID)
			return
		}
		fields.ServiceDate = &t
	}

	i, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, invitee.ErrInviteeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitee not found", requestID)
			return
		}
		slog.Error("failed to update invitee", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update invitee", requestID)
		return
	}

	response.Success(w, http.StatusOK, toInviteeResponse(i), requestID)
}

// UpdateStatus handles PATCH /invitees/{id}/status. Transitions are not
// constrained to any order.
func (h *InviteeHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateStatus(req.Status); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	status := invitee.Status(req.Status)
	i, err := h.repo.Update(r.Context(), id, invitee.UpdateFields{Status: &status})
	if err != nil {
		if errors.Is(err, invitee.ErrInviteeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitee not found", requestID)
			return
		}
		slog.Error("failed to update invitee status", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update invitee status", requestID)
		return
	}

	response.Success(w, http.StatusOK, toInviteeResponse(i), requestID)
}

// Delete handles DELETE /invitees/{id}.
func (h *InviteeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, invitee.ErrInviteeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Invitee not found", requestID)
			return
		}
		slog.Error("failed to delete invitee", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete invitee", requestID)
		return
	}

	response.NoContent(w)
}
