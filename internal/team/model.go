package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table.
type Team struct {
	ID           uuid.UUID
	Name         string
	FellowshipID *uuid.UUID
	LeaderID     *uuid.UUID
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member represents a row in the team_members join table.
type Member struct {
	TeamID   uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

// UpdateFields holds user-updatable fields on a team record. Nil fields are
// not updated.
type UpdateFields struct {
	Name         *string
	FellowshipID *uuid.UUID
	LeaderID     *uuid.UUID
	Active       *bool
}
