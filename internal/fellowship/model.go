package fellowship

import (
	"time"

	"github.com/google/uuid"
)

// Fellowship represents a row in the fellowships table.
type Fellowship struct {
	ID          uuid.UUID
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields holds user-updatable fields on a fellowship record.
// Nil fields are not updated.
type UpdateFields struct {
	Name        *string
	Description *string
	Active      *bool
}
