package goal

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrGoalNotFound is returned when a goal record is not found.
var ErrGoalNotFound = errors.New("goal not found")

// Repository provides CRUD operations on the goals table.
type Repository interface {
	Create(ctx context.Context, g *Goal) error
	GetByID(ctx context.Context, id uuid.UUID) (*Goal, error)
	List(ctx context.Context) ([]Goal, error)
	ListByEntity(ctx context.Context, goalType Type, entityID uuid.UUID) ([]Goal, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Goal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
