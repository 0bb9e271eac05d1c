package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flockhq/flock/internal/auth"
	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/team"
)

// TeamSource is the slice of the team repository the service needs.
type TeamSource interface {
	ListActive(ctx context.Context) ([]team.Team, error)
	ListByFellowship(ctx context.Context, fellowshipID uuid.UUID) ([]team.Team, error)
	ListForMember(ctx context.Context, userID uuid.UUID) ([]team.Team, error)
	CountMembers(ctx context.Context, teamID uuid.UUID) (int, error)
}

// InviteeSource is the slice of the invitee repository the service needs.
type InviteeSource interface {
	ListByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) ([]invitee.Invitee, error)
}

// Service fetches the rows visible to an identity and reduces them with Compute.
type Service struct {
	teams    TeamSource
	invitees InviteeSource
	loc      *time.Location
}

// NewService creates a new performance Service.
func NewService(teams TeamSource, invitees InviteeSource, loc *time.Location) *Service {
	return &Service{
		teams:    teams,
		invitees: invitees,
		loc:      loc,
	}
}

// Compute aggregates the week containing ref for the teams visible to the
// identity. Admins see all active teams, fellowship leaders their fellowship's
// teams, and members only teams they belong to. A member on no team gets a
// zero-valued result without further queries. Any fetch error aborts the whole
// pass; no partial result is returned.
func (s *Service) Compute(ctx context.Context, identity *auth.Identity, ref time.Time) (*Result, error) {
	visible, err := s.visibleTeams(ctx, identity)
	if err != nil {
		return nil, err
	}

	if len(visible) == 0 {
		return Compute(ref, s.loc, nil), nil
	}

	window := WeekOf(ref, s.loc)
	inputs := make([]TeamInput, len(visible))

	// Issue every per-team fetch concurrently; the reduction only runs once
	// all of them have completed.
	g, gctx := errgroup.WithContext(ctx)
	for i := range visible {
		inputs[i].Team = visible[i]
		g.Go(func() error {
			count, err := s.teams.CountMembers(gctx, visible[i].ID)
			if err != nil {
				return fmt.Errorf("counting members of %s: %w", visible[i].Name, err)
			}
			inputs[i].MemberCount = count

			rows, err := s.invitees.ListByTeamBetween(gctx, visible[i].ID, window.Start, window.End)
			if err != nil {
				return fmt.Errorf("fetching invitees of %s: %w", visible[i].Name, err)
			}
			inputs[i].Invitees = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Compute(ref, s.loc, inputs), nil
}

func (s *Service) visibleTeams(ctx context.Context, identity *auth.Identity) ([]team.Team, error) {
	switch identity.Role {
	case auth.RoleAdmin:
		return s.teams.ListActive(ctx)
	case auth.RoleFellowshipLeader:
		if identity.FellowshipID == nil {
			return nil, nil
		}
		return s.teams.ListByFellowship(ctx, *identity.FellowshipID)
	default:
		return s.teams.ListForMember(ctx, identity.UserID)
	}
}
