package cell

import (
	"time"

	"github.com/google/uuid"
)

// Cell represents a row in the cells table. A cell is a small group that
// invitees can eventually join.
type Cell struct {
	ID           uuid.UUID
	Name         string
	FellowshipID *uuid.UUID
	LeaderID     *uuid.UUID
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateFields holds user-updatable fields on a cell record. Nil fields are
// not updated.
type UpdateFields struct {
	Name         *string
	FellowshipID *uuid.UUID
	LeaderID     *uuid.UUID
	Active       *bool
}
