package achievement_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/achievement"
)

// Wednesday 2025-06-18; current month June, previous month May.
var monthRef = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

type fakeDefinitions struct {
	defs []achievement.Definition
}

func newFakeDefinitions(entries ...achievement.Definition) *fakeDefinitions {
	f := &fakeDefinitions{}
	for _, d := range entries {
		d.ID = uuid.New()
		f.defs = append(f.defs, d)
	}
	return f
}

func (f *fakeDefinitions) Insert(_ context.Context, d *achievement.Definition) error {
	for _, existing := range f.defs {
		if existing.Name == d.Name {
			return achievement.ErrDuplicateDefinition
		}
	}
	d.ID = uuid.New()
	f.defs = append(f.defs, *d)
	return nil
}

func (f *fakeDefinitions) GetByID(_ context.Context, id uuid.UUID) (*achievement.Definition, error) {
	for i := range f.defs {
		if f.defs[i].ID == id {
			return &f.defs[i], nil
		}
	}
	return nil, achievement.ErrDefinitionNotFound
}

func (f *fakeDefinitions) List(_ context.Context) ([]achievement.Definition, error) {
	return f.defs, nil
}

func (f *fakeDefinitions) ListByType(_ context.Context, t achievement.Type) ([]achievement.Definition, error) {
	var out []achievement.Definition
	for _, d := range f.defs {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDefinitions) Count(_ context.Context) (int, error) {
	return len(f.defs), nil
}

// fakeAwards backs both the user and team award repositories; the subject is
// either a user or a team ID.
type fakeAwards struct {
	rows      []awardRow
	insertErr error
}

type awardRow struct {
	subject       uuid.UUID
	achievementID uuid.UUID
	earnedAt      time.Time
}

func (f *fakeAwards) Insert(_ context.Context, subject, achievementID uuid.UUID, earnedAt *time.Time) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	at := time.Now()
	if earnedAt != nil {
		at = *earnedAt
	}
	for _, r := range f.rows {
		if r.subject == subject && r.achievementID == achievementID &&
			r.earnedAt.Year() == at.Year() && r.earnedAt.Month() == at.Month() {
			return achievement.ErrAlreadyAwarded
		}
	}
	f.rows = append(f.rows, awardRow{subject: subject, achievementID: achievementID, earnedAt: at})
	return nil
}

func (f *fakeAwards) ExistsBetween(_ context.Context, subject, achievementID uuid.UUID, from, to time.Time) (bool, error) {
	for _, r := range f.rows {
		if r.subject == subject && r.achievementID == achievementID &&
			!r.earnedAt.Before(from) && !r.earnedAt.After(to) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAwards) Exists(_ context.Context, subject, achievementID uuid.UUID) (bool, error) {
	for _, r := range f.rows {
		if r.subject == subject && r.achievementID == achievementID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAwards) ListByUser(_ context.Context, userID uuid.UUID) ([]achievement.UserAward, error) {
	var out []achievement.UserAward
	for _, r := range f.rows {
		if r.subject == userID {
			out = append(out, achievement.UserAward{UserID: r.subject, AchievementID: r.achievementID, EarnedAt: r.earnedAt})
		}
	}
	return out, nil
}

func (f *fakeAwards) ListByTeam(_ context.Context, teamID uuid.UUID) ([]achievement.TeamAward, error) {
	var out []achievement.TeamAward
	for _, r := range f.rows {
		if r.subject == teamID {
			out = append(out, achievement.TeamAward{TeamID: r.subject, AchievementID: r.achievementID, EarnedAt: r.earnedAt})
		}
	}
	return out, nil
}

type fakeCounts struct {
	monthlyByUser map[uuid.UUID]int
	monthlyByTeam map[uuid.UUID]int
	lifetime      map[uuid.UUID]int
	err           error
}

func (f *fakeCounts) CountByInviterBetween(_ context.Context, userID uuid.UUID, from, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	// Only the current month has rows in these fixtures.
	if from.Month() != monthRef.Month() {
		return 0, nil
	}
	return f.monthlyByUser[userID], nil
}

func (f *fakeCounts) CountByTeamBetween(_ context.Context, teamID uuid.UUID, from, _ time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if from.Month() != monthRef.Month() {
		return 0, nil
	}
	return f.monthlyByTeam[teamID], nil
}

func (f *fakeCounts) CountByInviter(_ context.Context, userID uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.lifetime[userID], nil
}

func milestoneDefs() *fakeDefinitions {
	var entries []achievement.Definition
	for _, threshold := range []int{1, 3, 5, 10} {
		entries = append(entries, achievement.Definition{
			Name:      fmt.Sprintf("inviter-%d", threshold),
			Type:      achievement.TypeInvitationMilestone,
			Threshold: threshold,
		})
	}
	for _, threshold := range []int{10, 25} {
		entries = append(entries, achievement.Definition{
			Name:      fmt.Sprintf("team-%d", threshold),
			Type:      achievement.TypeTeamPerformance,
			Threshold: threshold,
		})
	}
	for _, threshold := range []int{25, 50, 100} {
		entries = append(entries, achievement.Definition{
			Name:      fmt.Sprintf("lifetime-%d", threshold),
			Type:      achievement.TypeIndividualPerformance,
			Threshold: threshold,
		})
	}
	return newFakeDefinitions(entries...)
}

func TestEvaluateUser_AwardsEveryReachedThreshold(t *testing.T) {
	userID := uuid.New()
	defs := milestoneDefs()
	awards := &fakeAwards{}
	counts := &fakeCounts{monthlyByUser: map[uuid.UUID]int{userID: 3}}

	engine := achievement.NewEngine(defs, awards, &fakeAwards{}, counts, time.UTC)

	earned, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err)

	var names []string
	for _, e := range earned {
		names = append(names, e.Definition.Name)
	}
	assert.ElementsMatch(t, []string{"inviter-1", "inviter-3"}, names)
}

func TestEvaluateUser_Idempotent(t *testing.T) {
	userID := uuid.New()
	defs := milestoneDefs()
	awards := &fakeAwards{}
	counts := &fakeCounts{monthlyByUser: map[uuid.UUID]int{userID: 5}}

	engine := achievement.NewEngine(defs, awards, &fakeAwards{}, counts, time.UTC)

	first, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err)
	assert.Empty(t, second, "a second pass in the same month awards nothing")
	assert.Len(t, awards.rows, 3)
}

func TestEvaluateUser_EarnedAtInsideMonthWindow(t *testing.T) {
	userID := uuid.New()
	defs := milestoneDefs()
	awards := &fakeAwards{}
	counts := &fakeCounts{monthlyByUser: map[uuid.UUID]int{userID: 1}}

	engine := achievement.NewEngine(defs, awards, &fakeAwards{}, counts, time.UTC)

	earned, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err)
	require.Len(t, earned, 1)

	window := achievement.MonthWindowOf(monthRef, time.UTC)
	assert.False(t, earned[0].EarnedAt.Before(window.Start))
	assert.False(t, earned[0].EarnedAt.After(window.End))
}

func TestEvaluateUser_LifetimeAwardedOnce(t *testing.T) {
	userID := uuid.New()
	defs := milestoneDefs()
	awards := &fakeAwards{}
	counts := &fakeCounts{
		monthlyByUser: map[uuid.UUID]int{},
		lifetime:      map[uuid.UUID]int{userID: 60},
	}

	engine := achievement.NewEngine(defs, awards, &fakeAwards{}, counts, time.UTC)

	earned, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err)

	var names []string
	for _, e := range earned {
		names = append(names, e.Definition.Name)
	}
	assert.ElementsMatch(t, []string{"lifetime-25", "lifetime-50"}, names)

	// A lifetime award is never re-earned, even months later.
	later, err := engine.EvaluateUser(context.Background(), userID, monthRef.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestEvaluateUser_CountErrorAborts(t *testing.T) {
	engine := achievement.NewEngine(milestoneDefs(), &fakeAwards{}, &fakeAwards{},
		&fakeCounts{err: errors.New("connection refused")}, time.UTC)

	_, err := engine.EvaluateUser(context.Background(), uuid.New(), monthRef)
	require.Error(t, err)
}

func TestEvaluateUser_InsertRaceTreatedAsAlreadyClaimed(t *testing.T) {
	userID := uuid.New()
	defs := milestoneDefs()
	awards := &fakeAwards{insertErr: achievement.ErrAlreadyAwarded}
	counts := &fakeCounts{monthlyByUser: map[uuid.UUID]int{userID: 1}}

	engine := achievement.NewEngine(defs, awards, &fakeAwards{}, counts, time.UTC)

	earned, err := engine.EvaluateUser(context.Background(), userID, monthRef)
	require.NoError(t, err, "losing the insert race is not an error")
	assert.Empty(t, earned)
}

func TestEvaluateTeam_AwardsMonthlyThresholds(t *testing.T) {
	teamID := uuid.New()
	defs := milestoneDefs()
	teamAwards := &fakeAwards{}
	counts := &fakeCounts{monthlyByTeam: map[uuid.UUID]int{teamID: 12}}

	engine := achievement.NewEngine(defs, &fakeAwards{}, teamAwards, counts, time.UTC)

	earned, err := engine.EvaluateTeam(context.Background(), teamID, monthRef)
	require.NoError(t, err)

	require.Len(t, earned, 1)
	assert.Equal(t, "team-10", earned[0].Definition.Name)

	again, err := engine.EvaluateTeam(context.Background(), teamID, monthRef)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSeedCatalog_SkipsWhenPopulated(t *testing.T) {
	defs := milestoneDefs()
	before := len(defs.defs)

	err := achievement.SeedCatalog(context.Background(), defs)
	require.NoError(t, err)
	assert.Len(t, defs.defs, before, "a populated catalog is left alone")
}

func TestSeedCatalog_PopulatesEmptyCatalog(t *testing.T) {
	defs := newFakeDefinitions()

	err := achievement.SeedCatalog(context.Background(), defs)
	require.NoError(t, err)

	builtin, err := achievement.BuiltinCatalog()
	require.NoError(t, err)
	assert.Len(t, defs.defs, len(builtin))
}
