package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/api/middleware"
	"github.com/flockhq/flock/internal/auth"
	"github.com/flockhq/flock/internal/invitee"
	"github.com/flockhq/flock/internal/team"
)

// doRequest dispatches req through a single-route chi router so URL
// parameters resolve, and returns the recorder.
func doRequest(t *testing.T, method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asIdentity(req *http.Request, identity *auth.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func adminIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), UserName: "admin", Role: auth.RoleAdmin}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// fakeTeamRepo is an in-memory team.Repository.
type fakeTeamRepo struct {
	teams     map[uuid.UUID]*team.Team
	members   map[uuid.UUID]map[uuid.UUID]time.Time
	createErr error
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:   make(map[uuid.UUID]*team.Team),
		members: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

func (f *fakeTeamRepo) Create(_ context.Context, t *team.Team) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.teams {
		if existing.Name == t.Name {
			return team.ErrDuplicateTeamName
		}
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	f.teams[t.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) List(_ context.Context) ([]team.Team, error) {
	out := make([]team.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTeamRepo) ListActive(ctx context.Context) ([]team.Team, error) {
	all, _ := f.List(ctx)
	var out []team.Team
	for _, t := range all {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListByFellowship(_ context.Context, fellowshipID uuid.UUID) ([]team.Team, error) {
	var out []team.Team
	for _, t := range f.teams {
		if t.FellowshipID != nil && *t.FellowshipID == fellowshipID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListForMember(_ context.Context, userID uuid.UUID) ([]team.Team, error) {
	var out []team.Team
	for teamID, members := range f.members {
		if _, ok := members[userID]; ok {
			out = append(out, *f.teams[teamID])
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListByLeader(_ context.Context, leaderID uuid.UUID) ([]team.Team, error) {
	var out []team.Team
	for _, t := range f.teams {
		if t.Active && t.LeaderID != nil && *t.LeaderID == leaderID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) Update(_ context.Context, id uuid.UUID, fields team.UpdateFields) (*team.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	if fields.Name != nil {
		t.Name = *fields.Name
	}
	if fields.Active != nil {
		t.Active = *fields.Active
	}
	if fields.FellowshipID != nil {
		t.FellowshipID = fields.FellowshipID
	}
	if fields.LeaderID != nil {
		t.LeaderID = fields.LeaderID
	}
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, teamID, userID uuid.UUID) error {
	if _, ok := f.teams[teamID]; !ok {
		return team.ErrTeamNotFound
	}
	if f.members[teamID] == nil {
		f.members[teamID] = make(map[uuid.UUID]time.Time)
	}
	if _, ok := f.members[teamID][userID]; ok {
		return team.ErrAlreadyMember
	}
	f.members[teamID][userID] = time.Now()
	return nil
}

func (f *fakeTeamRepo) RemoveMember(_ context.Context, teamID, userID uuid.UUID) error {
	if _, ok := f.members[teamID][userID]; !ok {
		return team.ErrMemberNotFound
	}
	delete(f.members[teamID], userID)
	return nil
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID uuid.UUID) ([]team.Member, error) {
	var out []team.Member
	for userID, joined := range f.members[teamID] {
		out = append(out, team.Member{TeamID: teamID, UserID: userID, JoinedAt: joined})
	}
	return out, nil
}

func (f *fakeTeamRepo) CountMembers(_ context.Context, teamID uuid.UUID) (int, error) {
	return len(f.members[teamID]), nil
}

// fakeInviteeRepo is an in-memory invitee.Repository.
type fakeInviteeRepo struct {
	invitees map[uuid.UUID]*invitee.Invitee
}

func newFakeInviteeRepo() *fakeInviteeRepo {
	return &fakeInviteeRepo{invitees: make(map[uuid.UUID]*invitee.Invitee)}
}

func (f *fakeInviteeRepo) Create(_ context.Context, i *invitee.Invitee) error {
	i.ID = uuid.New()
	if i.Status == "" {
		i.Status = invitee.StatusInvited
	}
	if i.InviteDate.IsZero() {
		i.InviteDate = time.Now()
	}
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt
	cp := *i
	f.invitees[i.ID] = &cp
	return nil
}

func (f *fakeInviteeRepo) GetByID(_ context.Context, id uuid.UUID) (*invitee.Invitee, error) {
	i, ok := f.invitees[id]
	if !ok {
		return nil, invitee.ErrInviteeNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeInviteeRepo) List(_ context.Context, filter invitee.ListFilter) (*invitee.ListResult, error) {
	var out []invitee.Invitee
	for _, i := range f.invitees {
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		if filter.TeamID != nil && (i.TeamID == nil || *i.TeamID != *filter.TeamID) {
			continue
		}
		if filter.InvitedBy != nil && i.InvitedBy != *filter.InvitedBy {
			continue
		}
		out = append(out, *i)
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return &invitee.ListResult{Invitees: out, Total: len(out), Page: page, Limit: limit}, nil
}

func (f *fakeInviteeRepo) Update(_ context.Context, id uuid.UUID, fields invitee.UpdateFields) (*invitee.Invitee, error) {
	i, ok := f.invitees[id]
	if !ok {
		return nil, invitee.ErrInviteeNotFound
	}
	if fields.Name != nil {
		i.Name = *fields.Name
	}
	if fields.Status != nil {
		i.Status = *fields.Status
	}
	if fields.ServiceDate != nil {
		i.ServiceDate = fields.ServiceDate
	}
	if fields.AttendedService != nil {
		i.AttendedService = fields.AttendedService
	}
	i.UpdatedAt = time.Now()
	cp := *i
	return &cp, nil
}

func (f *fakeInviteeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.invitees[id]; !ok {
		return invitee.ErrInviteeNotFound
	}
	delete(f.invitees, id)
	return nil
}

func (f *fakeInviteeRepo) ListByTeamBetween(_ context.Context, teamID uuid.UUID, from, to time.Time) ([]invitee.Invitee, error) {
	var out []invitee.Invitee
	for _, i := range f.invitees {
		if i.TeamID != nil && *i.TeamID == teamID && !i.InviteDate.Before(from) && !i.InviteDate.After(to) {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeInviteeRepo) CountByTeamBetween(ctx context.Context, teamID uuid.UUID, from, to time.Time) (int, error) {
	rows, _ := f.ListByTeamBetween(ctx, teamID, from, to)
	return len(rows), nil
}

func (f *fakeInviteeRepo) CountByInviterBetween(_ context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	count := 0
	for _, i := range f.invitees {
		if i.InvitedBy == userID && !i.InviteDate.Before(from) && !i.InviteDate.After(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeInviteeRepo) CountByInviter(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, i := range f.invitees {
		if i.InvitedBy == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeInviteeRepo) ListInvitersBetween(_ context.Context, from, to time.Time) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, i := range f.invitees {
		if !i.InviteDate.Before(from) && !i.InviteDate.After(to) && !seen[i.InvitedBy] {
			seen[i.InvitedBy] = true
			out = append(out, i.InvitedBy)
		}
	}
	return out, nil
}
