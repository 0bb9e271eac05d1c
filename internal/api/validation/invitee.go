package validation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/invitee"
)

// CreateInviteeRequest mirrors the fields needed for create invitee validation.
type CreateInviteeRequest struct {
	Name        string
	TeamID      string
	CellID      string
	Status      string
	InviteDate  string
	ServiceDate string
}

// ValidateCreateInviteeRequest validates the fields of a create invitee request.
func ValidateCreateInviteeRequest(req CreateInviteeRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.TeamID != "" {
		if _, err := uuid.Parse(req.TeamID); err != nil {
			errs = append(errs, FieldError{Field: "teamId", Message: "teamId must be a valid UUID"})
		}
	}
	if req.CellID != "" {
		if _, err := uuid.Parse(req.CellID); err != nil {
			errs = append(errs, FieldError{Field: "cellId", Message: "cellId must be a valid UUID"})
		}
	}
	if req.Status != "" && !invitee.ValidStatus(invitee.Status(req.Status)) {
		errs = append(errs, FieldError{Field: "status", Message: "status must be one of invited, confirmed, attended, joined_cell, no_show"})
	}
	if req.InviteDate != "" {
		if _, err := time.Parse(time.RFC3339, req.InviteDate); err != nil {
			errs = append(errs, FieldError{Field: "inviteDate", Message: "inviteDate must be an RFC 3339 timestamp"})
		}
	}
	if req.ServiceDate != "" {
		if _, err := time.Parse(time.RFC3339, req.ServiceDate); err != nil {
			errs = append(errs, FieldError{Field: "serviceDate", Message: "serviceDate must be an RFC 3339 timestamp"})
		}
	}

	return errs
}

// ValidateStatus validates a bare status value for the status update endpoint.
func ValidateStatus(status string) []FieldError {
	if status == "" {
		return []FieldError{{Field: "status", Message: "status is required"}}
	}
	if !invitee.ValidStatus(invitee.Status(status)) {
		return []FieldError{{Field: "status", Message: "status must be one of invited, confirmed, attended, joined_cell, no_show"}}
	}
	return nil
}
