package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/api/validation"
	"github.com/flockhq/flock/internal/goal"
)

type createGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	GoalType    string `json:"goalType"`
	EntityID    string `json:"entityId"`
	TargetValue int    `json:"targetValue"`
	Deadline    string `json:"deadline"`
}

type updateGoalRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	TargetValue  *int    `json:"targetValue"`
	CurrentValue *int    `json:"currentValue"`
	Deadline     *string `json:"deadline"`
	Active       *bool   `json:"active"`
}

type updateProgressRequest struct {
	CurrentValue int `json:"currentValue"`
}

type goalResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	GoalType     string  `json:"goalType"`
	EntityID     string  `json:"entityId"`
	TargetValue  int     `json:"targetValue"`
	CurrentValue int     `json:"currentValue"`
	Deadline     *string `json:"deadline,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toGoalResponse(g *goal.Goal) goalResponse {
	resp := goalResponse{
		ID:           g.ID.String(),
		Title:        g.Title,
		Description:  g.Description,
		GoalType:     string(g.GoalType),
		EntityID:     g.EntityID.String(),
		TargetValue:  g.TargetValue,
		CurrentValue: g.CurrentValue,
		Active:       g.Active,
		CreatedAt:    g.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    g.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if g.Deadline != nil {
		s := g.Deadline.UTC().Format(time.RFC3339)
		resp.Deadline = &s
	}
	return resp
}

// GoalHandler handles goal CRUD endpoints.
type GoalHandler struct {
	repo goal.Repository
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(repo goal.Repository) *GoalHandler {
	return &GoalHandler{repo: repo}
}

// Create handles POST /goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateGoalRequest(validation.CreateGoalRequest{
		Title:       req.Title,
		GoalType:    req.GoalType,
		EntityID:    req.EntityID,
		TargetValue: req.TargetValue,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	entityID, _ := uuid.Parse(req.EntityID) // already validated

	g := &goal.Goal{
		Title:       req.Title,
		Description: req.Description,
		GoalType:    goal.Type(req.GoalType),
		EntityID:    entityID,
		TargetValue: req.TargetValue,
		Active:      true,
	}
	if req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, req.Deadline)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "deadline must be an RFC 3339 timestamp", requestID)
			return
		}
		g.Deadline = &t
	}

	if err := h.repo.Create(r.Context(), g); err != nil {
		slog.Error("failed to create goal", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create goal", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toGoalResponse(g), requestID)
}

// List handles GET /goals. Optional goalType and entityId query parameters
// narrow the result to one subject.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := r.URL.Query()
	goalType := q.Get("goalType")
	entityIDStr := q.Get("entityId")

	var goals []goal.Goal
	var err error

	if goalType != "" && entityIDStr != "" {
		if !goal.ValidType(goal.Type(goalType)) {
			response.Err(w, http.StatusBadRequest, "INVALID_FILTER", "goalType must be \"individual\" or \"team\"", requestID)
			return
		}
		entityID, parseErr := uuid.Parse(entityIDStr)
		if parseErr != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "entityId must be a valid UUID", requestID)
			return
		}
		goals, err = h.repo.ListByEntity(r.Context(), goal.Type(goalType), entityID)
	} else {
		goals, err = h.repo.List(r.Context())
	}
	if err != nil {
		slog.Error("failed to list goals", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list goals", requestID)
		return
	}

	items := make([]goalResponse, 0, len(goals))
	for i := range goals {
		items = append(items, toGoalResponse(&goals[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// GetByID handles GET /goals/{id}.
func (h *GoalHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	g, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Goal not found", requestID)
			return
		}
		slog.Error("failed to get goal", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get goal", requestID)
		return
	}

	response.Success(w, http.StatusOK, toGoalResponse(g), requestID)
}

// Update handles PATCH /goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fields := goal.UpdateFields{
		Title:        req.Title,
		Description:  req.Description,
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Active:       req.Active,
	}
	if req.Deadline != nil {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "deadline must be an RFC 3339 timestamp", requestID)
			return
		}
		fields.Deadline = &t
	}

	g, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Goal not found", requestID)
			return
		}
		slog.Error("failed to update goal", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update goal", requestID)
		return
	}

	response.Success(w, http.StatusOK, toGoalResponse(g), requestID)
}

// UpdateProgress handles PATCH /goals/{id}/progress.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.CurrentValue < 0 {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "currentValue must not be negative", requestID)
		return
	}

	g, err := h.repo.Update(r.Context(), id, goal.UpdateFields{CurrentValue: &req.CurrentValue})
	if err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Goal not found", requestID)
			return
		}
		slog.Error("failed to update goal progress", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update goal progress", requestID)
		return
	}

	response.Success(w, http.StatusOK, toGoalResponse(g), requestID)
}

// Delete handles DELETE /goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Goal not found", requestID)
			return
		}
		slog.Error("failed to delete goal", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete goal", requestID)
		return
	}

	response.NoContent(w)
}
