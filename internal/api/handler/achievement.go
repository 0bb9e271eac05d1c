package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/team"
)

type definitionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Threshold   int    `json:"threshold"`
	Icon        string `json:"icon"`
}

type awardResponse struct {
	AchievementID string `json:"achievementId"`
	EarnedAt      string `json:"earnedAt"`
}

type evaluateRequest struct {
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
}

type evaluateResponse struct {
	NewAchievements []earnedResponse `json:"newAchievements"`
}

func toDefinitionResponse(d *achievement.Definition) definitionResponse {
	return definitionResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Description: d.Description,
		Type:        string(d.Type),
		Threshold:   d.Threshold,
		Icon:        d.Icon,
	}
}

// AchievementHandler handles the achievement catalog, award listing, and
// manual evaluation endpoints.
type AchievementHandler struct {
	defs       achievement.DefinitionRepository
	userAwards achievement.UserAwardRepository
	teamAwards achievement.TeamAwardRepository
	teams      team.Repository
	engine     *achievement.Engine
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(
	defs achievement.DefinitionRepository,
	userAwards achievement.UserAwardRepository,
	teamAwards achievement.TeamAwardRepository,
	teams team.Repository,
	engine *achievement.Engine,
) *AchievementHandler {
	return &AchievementHandler{
		defs:       defs,
		userAwards: userAwards,
		teamAwards: teamAwards,
		teams:      teams,
		engine:     engine,
	}
}

// List handles GET /achievements. An optional type query parameter narrows
// the catalog to one achievement type.
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var defs []achievement.Definition
	var err error

	if t := r.URL.Query().Get("type"); t != "" {
		if !achievement.ValidType(achievement.Type(t)) {
			response.Err(w, http.StatusBadRequest, "INVALID_FILTER", "unknown achievement type", requestID)
			return
		}
		defs, err = h.defs.ListByType(r.Context(), achievement.Type(t))
	} else {
		defs, err = h.defs.List(r.Context())
	}
	if err != nil {
		slog.Error("failed to list achievements", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list achievements", requestID)
		return
	}

	items := make([]definitionResponse, 0, len(defs))
	for i := range defs {
		items = append(items, toDefinitionResponse(&defs[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// ListUserAwards handles GET /achievements/users/{id}.
func (h *AchievementHandler) ListUserAwards(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	awards, err := h.userAwards.ListByUser(r.Context(), id)
	if err != nil {
		slog.Error("failed to list user awards", "error", err, "user", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list user awards", requestID)
		return
	}

	items := make([]awardResponse, 0, len(awards))
	for _, a := range awards {
		items = append(items, awardResponse{
			AchievementID: a.AchievementID.String(),
			EarnedAt:      a.EarnedAt.UTC().Format(time.RFC3339),
		})
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// ListTeamAwards handles GET /achievements/teams/{id}.
func (h *AchievementHandler) ListTeamAwards(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	awards, err := h.teamAwards.ListByTeam(r.Context(), id)
	if err != nil {
		slog.Error("failed to list team awards", "error", err, "team", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list team awards", requestID)
		return
	}

	items := make([]awardResponse, 0, len(awards))
	for _, a := range awards {
		items = append(items, awardResponse{
			AchievementID: a.AchievementID.String(),
			EarnedAt:      a.EarnedAt.UTC().Format(time.RFC3339),
		})
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// Evaluate handles POST /achievements/evaluate. Without a body it evaluates
// the calling identity and every active team that identity leads. Admins may
// name another user or any team; other callers may name only a team they lead.
func (h *AchievementHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	userID := identity.UserID
	if req.UserID != "" {
		if !identity.IsAdmin() {
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only admins may evaluate other users", requestID)
			return
		}
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "userId must be a valid UUID", requestID)
			return
		}
		userID = parsed
	}

	now := time.Now()
	var earned []achievement.Earned

	userEarned, err := h.engine.EvaluateUser(r.Context(), userID, now)
	if err != nil {
		slog.Error("achievement evaluation failed", "user", userID, "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Achievement evaluation failed", requestID)
		return
	}
	earned = append(earned, userEarned...)

	var teamIDs []uuid.UUID
	if req.TeamID != "" {
		teamID, err := uuid.Parse(req.TeamID)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "teamId must be a valid UUID", requestID)
			return
		}
		if !identity.IsAdmin() {
			t, err := h.teams.GetByID(r.Context(), teamID)
			if err != nil {
				if errors.Is(err, team.ErrTeamNotFound) {
					response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
					return
				}
				slog.Error("failed to load team for evaluation", "team", teamID, "error", err)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Achievement evaluation failed", requestID)
				return
			}
			if t.LeaderID == nil || *t.LeaderID != identity.UserID {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Only the team leader may evaluate this team", requestID)
				return
			}
		}
		teamIDs = append(teamIDs, teamID)
	} else {
		led, err := h.teams.ListByLeader(r.Context(), userID)
		if err != nil {
			slog.Error("failed to list led teams for evaluation", "user", userID, "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Achievement evaluation failed", requestID)
			return
		}
		for _, t := range led {
			teamIDs = append(teamIDs, t.ID)
		}
	}

	for _, teamID := range teamIDs {
		teamEarned, err := h.engine.EvaluateTeam(r.Context(), teamID, now)
		if err != nil {
			slog.Error("team achievement evaluation failed", "team", teamID, "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Achievement evaluation failed", requestID)
			return
		}
		earned = append(earned, teamEarned...)
	}

	response.Success(w, http.StatusOK, evaluateResponse{
		NewAchievements: toEarnedResponses(earned),
	}, requestID)
}
