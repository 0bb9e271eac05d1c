package goal

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes individual goals from team goals.
type Type string

const (
	TypeIndividual Type = "individual"
	TypeTeam       Type = "team"
)

// ValidType reports whether t is a known goal type.
func ValidType(t Type) bool {
	return t == TypeIndividual || t == TypeTeam
}

// Goal represents a row in the goals table. EntityID references a user for
// individual goals and a team for team goals.
type Goal struct {
	ID           uuid.UUID
	Title        string
	Description  string
	GoalType     Type
	EntityID     uuid.UUID
	TargetValue  int
	CurrentValue int
	Deadline     *time.Time
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateFields holds user-updatable fields on a goal record. Nil fields are
// not updated.
type UpdateFields struct {
	Title        *string
	Description  *string
	TargetValue  *int
	CurrentValue *int
	Deadline     *time.Time
	Active       *bool
}
