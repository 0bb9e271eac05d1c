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
	"github.com/flockhq/flock/internal/fellowship"
)

type createFellowshipRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateFellowshipRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type fellowshipResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toFellowshipResponse(f *fellowship.Fellowship) fellowshipResponse {
	return fellowshipResponse{
		ID:          f.ID.String(),
		Name:        f.Name,
		Description: f.Description,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   f.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// FellowshipHandler handles fellowship CRUD endpoints.
type FellowshipHandler struct {
	repo fellowship.Repository
}

// NewFellowshipHandler creates a new FellowshipHandler.
func NewFellowshipHandler(repo fellowship.Repository) *FellowshipHandler {
	return &FellowshipHandler{repo: repo}
}

// Create handles POST /fellowships.
func (h *FellowshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createFellowshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateFellowshipRequest(validation.CreateFellowshipRequest{
		Name: req.Name,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	f := &fellowship.Fellowship{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}

	if err := h.repo.Create(r.Context(), f); err != nil {
		if errors.Is(err, fellowship.ErrDuplicateFellowshipName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", fmt.Sprintf("A fellowship named %q already exists", req.Name), requestID)
			return
		}
		slog.Error("failed to create fellowship", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create fellowship", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toFellowshipResponse(f), requestID)
}

// List handles GET /fellowships.
func (h *FellowshipHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	fellowships, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list fellowships", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list fellowships", requestID)
		return
	}

	items := make([]fellowshipResponse, 0, len(fellowships))
	for i := range fellowships {
		items = append(items, toFellowshipResponse(&fellowships[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// GetByID handles GET /fellowships/{id}.
func (h *FellowshipHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	f, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, fellowship.ErrFellowshipNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Fellowship not found", requestID)
			return
		}
		slog.Error("failed to get fellowship", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get fellowship", requestID)
		return
	}

	response.Success(w, http.StatusOK, toFellowshipResponse(f), requestID)
}

// Update handles PATCH /fellowships/{id}.
func (h *FellowshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateFellowshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	f, err := h.repo.Update(r.Context(), id, fellowship.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
	})
	if err != nil {
		if errors.Is(err, fellowship.ErrFellowshipNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Fellowship not found", requestID)
			return
		}
		if errors.Is(err, fellowship.ErrDuplicateFellowshipName) {
			response.Err(w, http.StatusConflict, "DUPLICATE_NAME", "A fellowship with that name already exists", requestID)
			return
		}
		slog.Error("failed to update fellowship", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update fellowship", requestID)
		return
	}

	response.Success(w, http.StatusOK, toFellowshipResponse(f), requestID)
}

// Delete handles DELETE /fellowships/{id}.
func (h *FellowshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, fellowship.ErrFellowshipNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Fellowship not found", requestID)
			return
		}
		if errors.Is(err, fellowship.ErrFellowshipHasTeams) {
			response.Err(w, http.StatusConflict, "FELLOWSHIP_HAS_TEAMS", "Cannot delete fellowship with teams", requestID)
			return
		}
		slog.Error("failed to delete fellowship", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete fellowship", requestID)
		return
	}

	response.NoContent(w)
}

// parseIDParam parses the {id} URL parameter, writing the error response on failure.
func parseIDParam(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return uuid.Nil, false
	}
	return id, true
}
