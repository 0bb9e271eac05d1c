// Package sweeper runs the periodic award catch-up pass. Awards are normally
// evaluated when an invitee is recorded; the sweep covers subjects whose
// qualifying rows landed right before a month boundary without a re-check.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/team"
)

// TeamLister is the slice of the team repository the sweeper needs.
type TeamLister interface {
	ListActive(ctx context.Context) ([]team.Team, error)
}

// InviterLister reports the users who invited someone within a window.
type InviterLister interface {
	ListInvitersBetween(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
}

// Sweeper periodically evaluates achievements for all active teams and all
// recently active inviters.
type Sweeper struct {
	engine   *achievement.Engine
	teams    TeamLister
	inviters InviterLister
	loc      *time.Location
	interval time.Duration
}

// New creates a new Sweeper.
func New(engine *achievement.Engine, teams TeamLister, inviters InviterLister, loc *time.Location, interval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		teams:    teams,
		inviters: inviters,
		loc:      loc,
		interval: interval,
	}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("award sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("award sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now().In(s.loc)

	s.sweepTeams(ctx, now)
	s.sweepInviters(ctx, now)
}

func (s *Sweeper) sweepTeams(ctx context.Context, now time.Time) {
	teams, err := s.teams.ListActive(ctx)
	if err != nil {
		slog.Error("sweeper: failed to list teams", "error", err)
		return
	}

	for _, t := range teams {
		if ctx.Err() != nil {
			return
		}
		earned, err := s.engine.EvaluateTeam(ctx, t.ID, now)
		if err != nil {
			slog.Error("sweeper: team evaluation failed", "team", t.Name, "error", err)
			continue
		}
		for _, e := range earned {
			slog.Info("sweeper: team achievement earned",
				"team", t.Name, "achievement", e.Definition.Name)
		}
	}
}

func (s *Sweeper) sweepInviters(ctx context.Context, now time.Time) {
	// Current and previous month together cover every subject the monthly
	// evaluation can still award.
	from := achievement.PreviousMonthWindowOf(now, s.loc).Start
	to := achievement.MonthWindowOf(now, s.loc).End

	inviters, err := s.inviters.ListInvitersBetween(ctx, from, to)
	if err != nil {
		slog.Error("sweeper: failed to list inviters", "error", err)
		return
	}

	for _, userID := range inviters {
		if ctx.Err() != nil {
			return
		}
		earned, err := s.engine.EvaluateUser(ctx, userID, now)
		if err != nil {
			slog.Error("sweeper: user evaluation failed", "user", userID, "error", err)
			continue
		}
		for _, e := range earned {
			slog.Info("sweeper: user achievement earned",
				"user", userID, "achievement", e.Definition.Name)
		}
	}
}
