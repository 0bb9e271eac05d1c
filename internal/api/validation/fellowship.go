package validation

import "strings"

// CreateFellowshipRequest mirrors the fields needed for create fellowship validation.
type CreateFellowshipRequest struct {
	Name string
}

// ValidateCreateFellowshipRequest validates the fields of a create fellowship request.
func ValidateCreateFellowshipRequest(req CreateFellowshipRequest) []FieldError {
	var errs []FieldError

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}
