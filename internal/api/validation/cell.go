package validation

import (
	"strings"

	"github.com/google/uuid"
)

// CreateCellRequest mirrors the fields needed for create cell validation.
type CreateCellRequest struct {
	Name         string
	FellowshipID string
	LeaderID     string
}

// ValidateCreateCellRequest validates the fields of a create cell request.
func ValidateCreateCellRequest(req CreateCellRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	if req.FellowshipID != "" {
		if _, err := uuid.Parse(req.FellowshipID); err != nil {
			errs = append(errs, FieldError{Field: "fellowshipId", Message: "fellowshipId must be a valid UUID"})
		}
	}
	if req.LeaderID != "" {
		if _, err := uuid.Parse(req.LeaderID); err != nil {
			errs = append(errs, FieldError{Field: "leaderId", Message: "leaderId must be a valid UUID"})
		}
	}

	return errs
}
