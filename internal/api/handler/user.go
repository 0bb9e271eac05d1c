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
	"github.com/flockhq/flock/internal/auth"
)

type createUserRequest struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	FellowshipID string `json:"fellowshipId"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	FellowshipID *string `json:"fellowshipId,omitempty"`
	ApiKeyPrefix string  `json:"apiKeyPrefix"`
	CreatedAt    string  `json:"createdAt"`
	Revoked      bool    `json:"revoked"`
}

type createUserResponse struct {
	userResponse
	ApiKey string `json:"apiKey"`
}

func toUserResponse(u *auth.User) userResponse {
	resp := userResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Role:         u.Role,
		ApiKeyPrefix: u.ApiKeyPrefix,
		CreatedAt:    u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Revoked:      u.RevokedAt != nil,
	}
	if u.FellowshipID != nil {
		s := u.FellowshipID.String()
		resp.FellowshipID = &s
	}
	return resp
}

// UserHandler handles user management endpoints. All routes are admin-only.
type UserHandler struct {
	repo    auth.UserRepository
	service *auth.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(repo auth.UserRepository, service *auth.Service) *UserHandler {
	return &UserHandler{repo: repo, service: service}
}

// Create handles POST /users. The raw API key is returned once in the
// response and never stored; only its prefix and bcrypt hash persist.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Name:         req.Name,
		Role:         req.Role,
		FellowshipID: req.FellowshipID,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	rawKey, prefix, hash, err := h.service.GenerateKey()
	if err != nil {
		slog.Error("failed to generate API key", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	}

	u := &auth.User{
		Name:         req.Name,
		Role:         req.Role,
		ApiKeyPrefix: prefix,
		ApiKeyHash:   hash,
	}
	if req.FellowshipID != "" {
		id, _ := uuid.Parse(req.FellowshipID) // already validated
		u.FellowshipID = &id
	}

	if err := h.repo.Create(r.Context(), u); err != nil {
		slog.Error("failed to create user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, createUserResponse{
		userResponse: toUserResponse(u),
		ApiKey:       rawKey,
	}, requestID)
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	users, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users", requestID)
		return
	}

	items := make([]userResponse, 0, len(users))
	for i := range users {
		items = append(items, toUserResponse(&users[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), 1, 100, requestID)
}

// GetByID handles GET /users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to get user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Revoke handles DELETE /users/{id}. Revocation invalidates the API key but
// keeps the row so historical invitees and awards stay attributable.
func (h *UserHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(r.Context())
	if identity != nil && identity.UserID == id {
		response.Err(w, http.StatusBadRequest, "SELF_REVOKE", "You cannot revoke your own API key", requestID)
		return
	}

	if err := h.repo.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		if errors.Is(err, auth.ErrUserRevoked) {
			response.Err(w, http.StatusConflict, "ALREADY_REVOKED", "User is already revoked", requestID)
			return
		}
		slog.Error("failed to revoke user", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke user", requestID)
		return
	}

	response.NoContent(w)
}
