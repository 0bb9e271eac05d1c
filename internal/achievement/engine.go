package achievement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// InviteeCounter is the slice of the invitee repository the engine needs.
type InviteeCounter interface {
	CountByInviterBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	CountByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int, error)
	CountByInviter(ctx context.Context, userID uuid.UUID) (int, error)
}

// Earned describes a newly earned achievement reported to the caller.
type Earned struct {
	Definition Definition
	EarnedAt   time.Time
}

// Engine evaluates achievement qualification and records awards exactly once
// per (subject, definition, period).
type Engine struct {
	defs       DefinitionRepository
	userAwards UserAwardRepository
	teamAwards TeamAwardRepository
	invitees   InviteeCounter
	loc        *time.Location
}

// NewEngine creates a new award Engine. All window math uses loc.
func NewEngine(
	defs DefinitionRepository,
	userAwards UserAwardRepository,
	teamAwards TeamAwardRepository,
	invitees InviteeCounter,
	loc *time.Location,
) *Engine {
	return &Engine{
		defs:       defs,
		userAwards: userAwards,
		teamAwards: teamAwards,
		invitees:   invitees,
		loc:        loc,
	}
}

// EvaluateUser runs the monthly evaluation for the month containing ref and
// the month before it, then the lifetime evaluation. It returns the newly
// earned achievements. A failed definition is logged and skipped; it does not
// abort the rest of the pass.
func (e *Engine) EvaluateUser(ctx context.Context, userID uuid.UUID, ref time.Time) ([]Earned, error) {
	var earned []Earned

	windows := []MonthWindow{
		MonthWindowOf(ref, e.loc),
		PreviousMonthWindowOf(ref, e.loc),
	}

	for _, window := range windows {
		monthly, err := e.evaluateUserMonth(ctx, userID, window)
		if err != nil {
			return earned, err
		}
		earned = append(earned, monthly...)
	}

	lifetime, err := e.evaluateUserLifetime(ctx, userID)
	if err != nil {
		return earned, err
	}
	earned = append(earned, lifetime...)

	return earned, nil
}

func (e *Engine) evaluateUserMonth(ctx context.Context, userID uuid.UUID, window MonthWindow) ([]Earned, error) {
	count, err := e.invitees.CountByInviterBetween(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("counting monthly invitees: %w", err)
	}

	defs, err := e.defs.ListByType(ctx, TypeInvitationMilestone)
	if err != nil {
		return nil, fmt.Errorf("listing invitation milestones: %w", err)
	}

	var earned []Earned
	for _, def := range defs {
		if def.Threshold > count {
			continue
		}

		exists, err := e.userAwards.ExistsBetween(ctx, userID, def.ID, window.Start, window.End)
		if err != nil {
			slog.Error("award check failed", "user", userID, "achievement", def.Name, "error", err)
			continue
		}
		if exists {
			continue
		}

		earnedAt := window.End
		if err := e.userAwards.Insert(ctx, userID, def.ID, &earnedAt); err != nil {
			if errors.Is(err, ErrAlreadyAwarded) {
				continue
			}
			slog.Error("award insert failed", "user", userID, "achievement", def.Name, "error", err)
			continue
		}

		earned = append(earned, Earned{Definition: def, EarnedAt: earnedAt})
	}

	return earned, nil
}

func (e *Engine) evaluateUserLifetime(ctx context.Context, userID uuid.UUID) ([]Earned, error) {
	count, err := e.invitees.CountByInviter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting lifetime invitees: %w", err)
	}

	defs, err := e.defs.ListByType(ctx, TypeIndividualPerformance)
	if err != nil {
		return nil, fmt.Errorf("listing individual milestones: %w", err)
	}

	var earned []Earned
	for _, def := range defs {
		if def.Threshold > count {
			continue
		}

		// Lifetime awards are never re-earned: any existing row disqualifies.
		exists, err := e.userAwards.Exists(ctx, userID, def.ID)
		if err != nil {
			slog.Error("award check failed", "user", userID, "achievement", def.Name, "error", err)
			continue
		}
		if exists {
			continue
		}

		if err := e.userAwards.Insert(ctx, userID, def.ID, nil); err != nil {
			if errors.Is(err, ErrAlreadyAwarded) {
				continue
			}
			slog.Error("award insert failed", "user", userID, "achievement", def.Name, "error", err)
			continue
		}

		earned = append(earned, Earned{Definition: def, EarnedAt: time.Now().In(e.loc)})
	}

	return earned, nil
}

// EvaluateTeam runs the monthly team evaluation for the month containing ref
// and the month before it.
func (e *Engine) EvaluateTeam(ctx context.Context, teamID uuid.UUID, ref time.Time) ([]Earned, error) {
	var earned []Earned

	windows := []MonthWindow{
		MonthWindowOf(ref, e.loc),
		PreviousMonthWindowOf(ref, e.loc),
	}

	for _, window := range windows {
		count, err := e.invitees.CountByTeamBetween(ctx, teamID, window.Start, window.End)
		if err != nil {
			return earned, fmt.Errorf("counting team invitees: %w", err)
		}

		defs, err := e.defs.ListByType(ctx, TypeTeamPerformance)
		if err != nil {
			return earned, fmt.Errorf("listing team milestones: %w", err)
		}

		for _, def := range defs {
			if def.Threshold > count {
				continue
			}

			exists, err := e.teamAwards.ExistsBetween(ctx, teamID, def.ID, window.Start, window.End)
			if err != nil {
				slog.Error("award check failed", "team", teamID, "achievement", def.Name, "error", err)
				continue
			}
			if exists {
				continue
			}

			earnedAt := window.End
			if err := e.teamAwards.Insert(ctx, teamID, def.ID, &earnedAt); err != nil {
				if errors.Is(err, ErrAlreadyAwarded) {
					continue
				}
				slog.Error("award insert failed", "team", teamID, "achievement", def.Name, "error", err)
				continue
			}

			earned = append(earned, Earned{Definition: def, EarnedAt: earnedAt})
		}
	}

	return earned, nil
}
