package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api/handler"
	"github.com/flockhq/flock/internal/auth"
	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/team"
)

func evaluateHarness(t *testing.T) (*handler.AchievementHandler, *fakeTeamRepo, *fakeInviteeRepo) {
	t.Helper()

	defs := &memoryDefs{}
	require.NoError(t, defs.Insert(context.Background(), &achievement.Definition{
		Name:      "First Invite",
		Type:      achievement.TypeInvitationMilestone,
		Threshold: 1,
	}))
	require.NoError(t, defs.Insert(context.Background(), &achievement.Definition{
		Name:      "Team Ten",
		Type:      achievement.TypeTeamPerformance,
		Threshold: 10,
	}))

	teams := newFakeTeamRepo()
	invitees := newFakeInviteeRepo()
	userAwards := newMemoryAwards()
	teamAwards := newMemoryAwards()
	engine := achievement.NewEngine(defs, userAwards, teamAwards, invitees, time.UTC)
	h := handler.NewAchievementHandler(defs, userAwards, teamAwards, teams, engine)
	return h, teams, invitees
}

func seedLedTeam(t *testing.T, teams *fakeTeamRepo, leaderID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	tm := &team.Team{Name: name, LeaderID: &leaderID, Active: true}
	require.NoError(t, teams.Create(context.Background(), tm))
	return tm.ID
}

func seedTeamInvitees(t *testing.T, invitees *fakeInviteeRepo, teamID uuid.UUID, n int) {
	t.Helper()
	inviter := uuid.New()
	for i := 0; i < n; i++ {
		require.NoError(t, invitees.Create(context.Background(), &invitee.Invitee{
			Name:      "Guest",
			TeamID:    &teamID,
			InvitedBy: inviter,
		}))
	}
}

func evaluateNames(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	env := parseEnvelope(t, w)
	require.Nil(t, env.Error)

	var resp struct {
		NewAchievements []struct {
			Name string `json:"name"`
		} `json:"newAchievements"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	names := make([]string, 0, len(resp.NewAchievements))
	for _, a := range resp.NewAchievements {
		names = append(names, a.Name)
	}
	return names
}

func TestEvaluate_EmptyBodySucceeds(t *testing.T) {
	h, _, _ := evaluateHarness(t)
	identity := &auth.Identity{UserID: uuid.New(), UserName: "pat", Role: auth.RoleMember}

	req := asIdentity(httptest.NewRequest(http.MethodPost, "/achievements/evaluate", nil), identity)
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, evaluateNames(t, w))
}

func TestEvaluate_DefaultIncludesLedTeams(t *testing.T) {
	h, teams, invitees := evaluateHarness(t)
	leader := &auth.Identity{UserID: uuid.New(), UserName: "lee", Role: auth.RoleFellowshipLeader}

	teamID := seedLedTeam(t, teams, leader.UserID, "Alpha")
	seedTeamInvitees(t, invitees, teamID, 10)

	req := asIdentity(httptest.NewRequest(http.MethodPost, "/achievements/evaluate", nil), leader)
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, evaluateNames(t, w), "Team Ten")
}

func TestEvaluate_ExplicitTeamRequiresLeadership(t *testing.T) {
	h, teams, invitees := evaluateHarness(t)
	caller := &auth.Identity{UserID: uuid.New(), UserName: "lee", Role: auth.RoleFellowshipLeader}

	otherLeader := uuid.New()
	teamID := seedLedTeam(t, teams, otherLeader, "Bravo")
	seedTeamInvitees(t, invitees, teamID, 10)

	req := asIdentity(jsonRequest(t, http.MethodPost, "/achievements/evaluate",
		map[string]string{"teamId": teamID.String()}), caller)
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	env := parseEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestEvaluate_ExplicitOwnTeam(t *testing.T) {
	h, teams, invitees := evaluateHarness(t)
	leader := &auth.Identity{UserID: uuid.New(), UserName: "lee", Role: auth.RoleFellowshipLeader}

	teamID := seedLedTeam(t, teams, leader.UserID, "Charlie")
	seedTeamInvitees(t, invitees, teamID, 10)

	req := asIdentity(jsonRequest(t, http.MethodPost, "/achievements/evaluate",
		map[string]string{"teamId": teamID.String()}), leader)
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, evaluateNames(t, w), "Team Ten")
}

func TestEvaluate_AdminMayEvaluateAnyTeam(t *testing.T) {
	h, teams, invitees := evaluateHarness(t)

	teamID := seedLedTeam(t, teams, uuid.New(), "Delta")
	seedTeamInvitees(t, invitees, teamID, 10)

	req := asIdentity(jsonRequest(t, http.MethodPost, "/achievements/evaluate",
		map[string]string{"teamId": teamID.String()}), adminIdentity())
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, evaluateNames(t, w), "Team Ten")
}

func TestEvaluate_ExplicitTeamNotFound(t *testing.T) {
	h, _, _ := evaluateHarness(t)
	caller := &auth.Identity{UserID: uuid.New(), UserName: "lee", Role: auth.RoleFellowshipLeader}

	req := asIdentity(jsonRequest(t, http.MethodPost, "/achievements/evaluate",
		map[string]string{"teamId": uuid.NewString()}), caller)
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEvaluate_MalformedBodyRejected(t *testing.T) {
	h, _, _ := evaluateHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/achievements/evaluate", bytes.NewBufferString("{"))
	req = asIdentity(req, adminIdentity())
	w := doRequest(t, http.MethodPost, "/achievements/evaluate", h.Evaluate, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_JSON", env.Error.Code)
}
