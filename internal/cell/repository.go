package cell

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrCellNotFound is returned when a cell record is not found.
var ErrCellNotFound = errors.New("cell not found")

// Repository provides CRUD operations on the cells table.
type Repository interface {
	Create(ctx context.Context, c *Cell) error
	GetByID(ctx context.Context, id uuid.UUID) (*Cell, error)
	List(ctx context.Context) ([]Cell, error)
	ListByFellowship(ctx context.Context, fellowshipID uuid.UUID) ([]Cell, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Cell, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
