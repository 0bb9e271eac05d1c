package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/api/validation"
	"github.com/flockhq/flock/internal/cell"
)

type createCellRequest struct {
	Name         string `json:"name"`
	FellowshipID string `json:"fellowshipId"`
	LeaderID     string `json:"leaderId"`
}

type updateCellRequest struct {
	Name         *string `json:"name"`
	FellowshipID *string `json:"fellowshipId"`
	LeaderID     *string `json:"leaderId"`
	Active       *bool   `json:"active"`
}

type cellResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FellowshipID *string `json:"fellowshipId,omitempty"`
	LeaderID     *string `json:"leaderId,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toCellResponse(c *cell.Cell) cellResponse {
	resp := cellResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if c.FellowshipID != nil {
		s := c.FellowshipID.String()
		resp.FellowshipID = &s
	}
	if c.LeaderID != nil {
		s := c.LeaderID.String()
		resp.LeaderID = &s
	}
	return resp
}

// CellHandler handles cell CRUD endpoints.
type CellHandler struct {
	repo cell.Repository
}

// NewCellHandler creates a new CellHandler.
func NewCellHandler(repo cell.Repository) *CellHandler {
	return &CellHandler{repo: repo}
}

// Create handles POST /cells.
func (h *CellHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateCellRequest(validation.CreateCellRequest{
		Name:         req.Name,
		FellowshipID: req.FellowshipID,
		LeaderID:     req.LeaderID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	c := &cell.Cell{
		Name:   req.Name,
		Active: true,
	}
	if req.FellowshipID != "" {
		id, _ := uuid.Parse(req.FellowshipID) // already validated
		c.FellowshipID = &id
	}
	if req.LeaderID != "" {
		id, _ := uuid.Parse(req.LeaderID)
		c.LeaderID = &id
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		slog.Error("failed to create cell", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create cell", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toCellResponse(c), requestID)
}

// List handles GET /cells. An optional fellowshipId query parameter narrows
// the result to one fellowship.
func (h *CellHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var cells []cell.Cell
	var err error

	if fid := r.URL.Query().Get("fellowshipId"); fid != "" {
		fellowshipID, parseErr := uuid.Parse(fid)
		if parseErr != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_ID", "fellowshipId must be a valid UUID", requestID)
			return
		}
		cells, err = h.repo.ListByFellowship(r.Context(), fellowshipID)
	} else {
		cells, err = h.repo.List(r.Context())
	}
	if err != nil {
		slog.Error("failed to list cells", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list cells", requestID)
		return
	}

	items := make([]cellResponse, 0, len(cells))
	for i := range cells {
		items = append(items, toCellResponse(&cells[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// GetByID handles GET /cells/{id}.
func (h *CellHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cell.ErrCellNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Cell not found", requestID)
			return
		}
		slog.Error("failed to get cell", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get cell", requestID)
		return
	}

	response.Success(w, http.StatusOK, toCellResponse(c), requestID)
}

// Update handles PATCH /cells/{id}.
func (h *CellHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateCellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fields := cell.UpdateFields{
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

	c, err := h.repo.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, cell.ErrCellNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Cell not found", requestID)
			return
		}
		slog.Error("failed to update cell", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update cell", requestID)
		return
	}

	response.Success(w, http.StatusOK, toCellResponse(c), requestID)
}

// Delete handles DELETE /cells/{id}.
func (h *CellHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, cell.ErrCellNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Cell not found", requestID)
			return
		}
		slog.Error("failed to delete cell", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete cell", requestID)
		return
	}

	response.NoContent(w)
}
