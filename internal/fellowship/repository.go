package fellowship

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrFellowshipNotFound is returned when a fellowship record is not found.
var ErrFellowshipNotFound = errors.New("fellowship not found")

// ErrDuplicateFellowshipName is returned when a fellowship with the same name already exists.
var ErrDuplicateFellowshipName = errors.New("fellowship name already exists")

// ErrFellowshipHasTeams is returned when attempting to delete a fellowship that
// still has teams referencing it.
var ErrFellowshipHasTeams = errors.New("fellowship has teams")

// Repository provides CRUD operations on the fellowships table.
type Repository interface {
	Create(ctx context.Context, f *Fellowship) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fellowship, error)
	List(ctx context.Context) ([]Fellowship, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Fellowship, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
