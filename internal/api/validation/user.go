package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/auth"
)

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	Name         string
	Role         string
	FellowshipID string
}

// ValidateCreateUserRequest validates the fields of a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else if !auth.ValidRole(req.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be one of admin, fellowship_leader, member"})
	}

	if req.Role == auth.RoleFellowshipLeader && req.FellowshipID == "" {
		errs = append(errs, FieldError{Field: "fellowshipId", Message: "fellowshipId is required for fellowship leaders"})
	}
	if req.FellowshipID != "" {
		if _, err := uuid.Parse(req.FellowshipID); err != nil {
			errs = append(errs, FieldError{Field: "fellowshipId", Message: "fellowshipId must be a valid UUID"})
		}
	}

	return errs
}
