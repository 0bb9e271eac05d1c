package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/achievement"
	"github.com/flockhq/flock/internal/api/handler"
	"github.com/flockhq/flock/internal/invitee"
)

// memoryDefs is a minimal achievement.DefinitionRepository for engine wiring.
type memoryDefs struct {
	defs []achievement.Definition
}

func (m *memoryDefs) Insert(_ context.Context, d *achievement.Definition) error {
	d.ID = uuid.New()
	m.defs = append(m.defs, *d)
	return nil
}

func (m *memoryDefs) GetByID(_ context.Context, id uuid.UUID) (*achievement.Definition, error) {
	for i := range m.defs {
		if m.defs[i].ID == id {
			return &m.defs[i], nil
		}
	}
	return nil, achievement.ErrDefinitionNotFound
}

func (m *memoryDefs) List(_ context.Context) ([]achievement.Definition, error) {
	return m.defs, nil
}

func (m *memoryDefs) ListByType(_ context.Context, t achievement.Type) ([]achievement.Definition, error) {
	var out []achievement.Definition
	for _, d := range m.defs {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryDefs) Count(_ context.Context) (int, error) {
	return len(m.defs), nil
}

// memoryAwards backs both award repositories in these tests.
type memoryAwards struct {
	rows map[string]time.Time // subject/achievement key
}

func newMemoryAwards() *memoryAwards {
	return &memoryAwards{rows: make(map[string]time.Time)}
}

func awardKey(subject, achievementID uuid.UUID) string {
	return subject.String() + "/" + achievementID.String()
}

func (m *memoryAwards) Insert(_ context.Context, subject, achievementID uuid.UUID, earnedAt *time.Time) error {
	key := awardKey(subject, achievementID)
	if _, ok := m.rows[key]; ok {
		return achievement.ErrAlreadyAwarded
	}
	at := time.Now()
	if earnedAt != nil {
		at = *earnedAt
	}
	m.rows[key] = at
	return nil
}

func (m *memoryAwards) ExistsBetween(_ context.Context, subject, achievementID uuid.UUID, from, to time.Time) (bool, error) {
	at, ok := m.rows[awardKey(subject, achievementID)]
	return ok && !at.Before(from) && !at.After(to), nil
}

func (m *memoryAwards) Exists(_ context.Context, subject, achievementID uuid.UUID) (bool, error) {
	_, ok := m.rows[awardKey(subject, achievementID)]
	return ok, nil
}

func (m *memoryAwards) ListByUser(context.Context, uuid.UUID) ([]achievement.UserAward, error) {
	return nil, nil
}

func (m *memoryAwards) ListByTeam(context.Context, uuid.UUID) ([]achievement.TeamAward, error) {
	return nil, nil
}

func testEngine(repo *fakeInviteeRepo) *achievement.Engine {
	defs := &memoryDefs{}
	_ = defs.Insert(context.Background(), &achievement.Definition{
		Name:      "First Invite",
		Type:      achievement.TypeInvitationMilestone,
		Threshold: 1,
	})
	_ = defs.Insert(context.Background(), &achievement.Definition{
		Name:      "Team Ten",
		Type:      achievement.TypeTeamPerformance,
		Threshold: 10,
	})
	return achievement.NewEngine(defs, newMemoryAwards(), newMemoryAwards(), repo, time.UTC)
}

func TestInviteeCreate_ReturnsNewAchievements(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))
	identity := adminIdentity()

	req := asIdentity(jsonRequest(t, http.MethodPost, "/invitees", map[string]string{
		"name": "Guest One",
	}), identity)
	w := doRequest(t, http.MethodPost, "/invitees", h.Create, req)

	require.Equal(t, http.StatusCreated, w.Code)
	env := parseEnvelope(t, w)
	require.Nil(t, env.Error)

	var resp struct {
		Invitee struct {
			Name      string `json:"name"`
			InvitedBy string `json:"invitedBy"`
			Status    string `json:"status"`
		} `json:"invitee"`
		NewAchievements []struct {
			Name      string `json:"name"`
			Threshold int    `json:"threshold"`
		} `json:"newAchievements"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	assert.Equal(t, "Guest One", resp.Invitee.Name)
	assert.Equal(t, identity.UserID.String(), resp.Invitee.InvitedBy)
	assert.Equal(t, "invited", resp.Invitee.Status)

	require.Len(t, resp.NewAchievements, 1, "first invite crosses the 1-invite milestone")
	assert.Equal(t, "First Invite", resp.NewAchievements[0].Name)
}

func TestInviteeCreate_SecondCreateAwardsNothingNew(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))
	identity := adminIdentity()

	for i := 0; i < 2; i++ {
		req := asIdentity(jsonRequest(t, http.MethodPost, "/invitees", map[string]string{
			"name": fmt.Sprintf("Guest %d", i),
		}), identity)
		w := doRequest(t, http.MethodPost, "/invitees", h.Create, req)
		require.Equal(t, http.StatusCreated, w.Code)

		env := parseEnvelope(t, w)
		var resp struct {
			NewAchievements []json.RawMessage `json:"newAchievements"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &resp))

		if i == 0 {
			assert.Len(t, resp.NewAchievements, 1)
		} else {
			assert.Empty(t, resp.NewAchievements, "milestone already claimed this month")
		}
	}
}

func TestInviteeCreate_RequiresIdentity(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))

	req := jsonRequest(t, http.MethodPost, "/invitees", map[string]string{"name": "Guest"})
	w := doRequest(t, http.MethodPost, "/invitees", h.Create, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInviteeCreate_ValidationError(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))

	req := asIdentity(jsonRequest(t, http.MethodPost, "/invitees", map[string]string{
		"name":   "",
		"status": "ghosted",
	}), adminIdentity())
	w := doRequest(t, http.MethodPost, "/invitees", h.Create, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestInviteeUpdateStatus(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))

	inv := &invitee.Invitee{Name: "Guest", InvitedBy: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), inv))

	req := jsonRequest(t, http.MethodPatch, fmt.Sprintf("/invitees/%s/status", inv.ID),
		map[string]string{"status": "joined_cell"})
	w := doRequest(t, http.MethodPatch, "/invitees/{id}/status", h.UpdateStatus, req)

	require.Equal(t, http.StatusOK, w.Code)

	stored, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invitee.StatusJoinedCell, stored.Status)
}

func TestInviteeUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))

	inv := &invitee.Invitee{Name: "Guest", InvitedBy: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), inv))

	req := jsonRequest(t, http.MethodPatch, fmt.Sprintf("/invitees/%s/status", inv.ID),
		map[string]string{"status": "vanished"})
	w := doRequest(t, http.MethodPatch, "/invitees/{id}/status", h.UpdateStatus, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteeDelete(t *testing.T) {
	repo := newFakeInviteeRepo()
	h := handler.NewInviteeHandler(repo, testEngine(repo))

	inv := &invitee.Invitee{Name: "Guest", InvitedBy: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), inv))

	req := jsonRequest(t, http.MethodDelete, fmt.Sprintf("/invitees/%s", inv.ID), nil)
	w := doRequest(t, http.MethodDelete, "/invitees/{id}", h.Delete, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err := repo.GetByID(context.Background(), inv.ID)
	assert.ErrorIs(t, err, invitee.ErrInviteeNotFound)
}
