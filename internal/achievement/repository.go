package achievement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDefinitionNotFound is returned when an achievement definition is not found.
var ErrDefinitionNotFound = errors.New("achievement definition not found")

// ErrDuplicateDefinition is returned when a definition with the same name
// already exists in the catalog.
var ErrDuplicateDefinition = errors.New("achievement definition already exists")

// ErrAlreadyAwarded is returned when an award insert hits the uniqueness
// constraint. Callers treat it as "already claimed", not as a failure.
var ErrAlreadyAwarded = errors.New("achievement already awarded for this period")

// DefinitionRepository provides operations on the achievements table.
type DefinitionRepository interface {
	Insert(ctx context.Context, d *Definition) error
	GetByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	List(ctx context.Context) ([]Definition, error)
	ListByType(ctx context.Context, t Type) ([]Definition, error)
	Count(ctx context.Context) (int, error)
}

// UserAwardRepository provides operations on the user_achievements table.
type UserAwardRepository interface {
	// Insert records an award. A nil earnedAt records a lifetime award at the
	// store default timestamp; a non-nil earnedAt records a monthly award.
	Insert(ctx context.Context, userID, achievementID uuid.UUID, earnedAt *time.Time) error
	ExistsBetween(ctx context.Context, userID, achievementID uuid.UUID, from, to time.Time) (bool, error)
	Exists(ctx context.Context, userID, achievementID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]UserAward, error)
}

// TeamAwardRepository provides operations on the team_achievements table.
type TeamAwardRepository interface {
	Insert(ctx context.Context, teamID, achievementID uuid.UUID, earnedAt *time.Time) error
	ExistsBetween(ctx context.Context, teamID, achievementID uuid.UUID, from, to time.Time) (bool, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]TeamAward, error)
}
