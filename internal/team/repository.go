package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateTeamName is returned when a team with the same name already exists.
var ErrDuplicateTeamName = errors.New("team name already exists")

// ErrAlreadyMember is returned when adding a user who is already on the team.
var ErrAlreadyMember = errors.New("user is already a team member")

// ErrMemberNotFound is returned when removing a user who is not on the team.
var ErrMemberNotFound = errors.New("team member not found")

// Repository provides operations on the teams and team_members tables.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	List(ctx context.Context) ([]Team, error)
	ListActive(ctx context.Context) ([]Team, error)
	ListByFellowship(ctx context.Context, fellowshipID uuid.UUID) ([]Team, error)
	ListForMember(ctx context.Context, userID uuid.UUID) ([]Team, error)
	ListByLeader(ctx context.Context, leaderID uuid.UUID) ([]Team, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]Member, error)
	CountMembers(ctx context.Context, teamID uuid.UUID) (int, error)
}
