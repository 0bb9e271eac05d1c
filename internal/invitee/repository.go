package invitee

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInviteeNotFound is returned when an invitee record is not found.
var ErrInviteeNotFound = errors.New("invitee not found")

// Repository provides operations on the invitees table.
type Repository interface {
	Create(ctx context.Context, i *Invitee) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitee, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Invitee, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Window queries used by the performance aggregator and award engine.
	// Bounds are inclusive on both ends.
	ListByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) ([]Invitee, error)
	CountByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int, error)
	CountByInviterBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	CountByInviter(ctx context.Context, userID uuid.UUID) (int, error)
	ListInvitersBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}
