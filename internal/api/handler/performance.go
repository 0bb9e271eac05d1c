package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/api/response"
	"github.com/flockhq/flock/internal/performance"
)

// PerformanceHandler handles the weekly performance dashboard endpoint.
type PerformanceHandler struct {
	service *performance.Service
}

// NewPerformanceHandler creates a new PerformanceHandler.
func NewPerformanceHandler(service *performance.Service) *PerformanceHandler {
	return &PerformanceHandler{service: service}
}

type performanceResponse struct {
	WeekStart      string                  `json:"weekStart"`
	WeekEnd        string                  `json:"weekEnd"`
	TotalTeams     int                     `json:"totalTeams"`
	TotalInvitees  int                     `json:"totalInvitees"`
	TotalAttendees int                     `json:"totalAttendees"`
	AttendanceRate int                     `json:"attendanceRate"`
	TopTeam        *performance.TeamStats  `json:"topTeam"`
	Teams          []performance.TeamStats `json:"teams"`
}

// Get handles GET /dashboard/performance. An optional date query parameter
// (YYYY-MM-DD) selects the week; it defaults to today. Visibility follows the
// caller's role, and any fetch failure aborts the whole aggregation.
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
		return
	}

	ref := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			response.Err(w, http.StatusBadRequest, "INVALID_DATE", "date must be formatted YYYY-MM-DD", requestID)
			return
		}
		ref = parsed
	}

	result, err := h.service.Compute(r.Context(), identity, ref)
	if err != nil {
		slog.Error("performance aggregation failed", "error", err, "user", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute team performance", requestID)
		return
	}

	response.Success(w, http.StatusOK, performanceResponse{
		WeekStart:      result.WeekStart.Format(time.RFC3339),
		WeekEnd:        result.WeekEnd.Format(time.RFC3339),
		TotalTeams:     result.TotalTeams,
		TotalInvitees:  result.TotalInvitees,
		TotalAttendees: result.TotalAttendees,
		AttendanceRate: result.AttendanceRate,
		TopTeam:        result.TopTeam,
		Teams:          result.Teams,
	}, requestID)
}
