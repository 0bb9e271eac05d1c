package validation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/goal"
)

// CreateGoalRequest mirrors the fields needed for create goal validation.
type CreateGoalRequest struct {
	Title       string
	GoalType    string
	EntityID    string
	TargetValue int
}

// ValidateCreateGoalRequest validates the fields of a create goal request.
func ValidateCreateGoalRequest(req CreateGoalRequest) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	} else if len(title) > 255 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 255 characters"})
	}

	if req.GoalType == "" {
		errs = append(errs, FieldError{Field: "goalType", Message: "goalType is required"})
	} else if !goal.ValidType(goal.Type(req.GoalType)) {
		errs = append(errs, FieldError{Field: "goalType", Message: "goalType must be \"individual\" or \"team\""})
	}

	if req.EntityID == "" {
		errs = append(errs, FieldError{Field: "entityId", Message: "entityId is required"})
	} else if _, err := uuid.Parse(req.EntityID); err != nil {
		errs = append(errs, FieldError{Field: "entityId", Message: "entityId must be a valid UUID"})
	}

	if req.TargetValue < 1 {
		errs = append(errs, FieldError{Field: "targetValue", Message: "targetValue must be at least 1"})
	}

	return errs
}
