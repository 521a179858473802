// Package memstore is an in-process portal.Store. Transactions run one at a
// time against a private copy of the data that replaces the shared copy only
// when the unit of work succeeds.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"legend-hub/internal/portal"
)

type voteKey struct {
	fixtureID, userID int64
}

type state struct {
	nextID int64

	users         map[int64]portal.User
	teams         map[int64]portal.Team
	roles         map[int64]portal.RoleAssignment
	invitations   map[int64]portal.Invitation
	notifications map[int64]portal.Notification
	tournaments   map[int64]portal.Tournament
	registrations map[int64]portal.Registration
	fixtures      map[int64]portal.Fixture
	votes         map[voteKey]portal.Vote
	standings     map[int64]portal.Standing
	audit         map[int64]portal.AuditEntry
}

func newState() *state {
	return &state{
		users:         map[int64]portal.User{},
		teams:         map[int64]portal.Team{},
		roles:         map[int64]portal.RoleAssignment{},
		invitations:   map[int64]portal.Invitation{},
		notifications: map[int64]portal.Notification{},
		tournaments:   map[int64]portal.Tournament{},
		registrations: map[int64]portal.Registration{},
		fixtures:      map[int64]portal.Fixture{},
		votes:         map[voteKey]portal.Vote{},
		standings:     map[int64]portal.Standing{},
		audit:         map[int64]portal.AuditEntry{},
	}
}

// clone copies every table. Row structs only hold pointers that are never
// written through, so copying the maps is enough.
func (s *state) clone() *state {
	return &state{
		nextID:        s.nextID,
		users:         maps.Clone(s.users),
		teams:         maps.Clone(s.teams),
		roles:         maps.Clone(s.roles),
		invitations:   maps.Clone(s.invitations),
		notifications: maps.Clone(s.notifications),
		tournaments:   maps.Clone(s.tournaments),
		registrations: maps.Clone(s.registrations),
		fixtures:      maps.Clone(s.fixtures),
		votes:         maps.Clone(s.votes),
		standings:     maps.Clone(s.standings),
		audit:         maps.Clone(s.audit),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store is a portal.Store backed by process memory.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx portal.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{st: s.st.clone()}
	if err := fn(t); err != nil {
		return err
	}
	s.st = t.st
	return nil
}

var _ portal.Store = (*Store)(nil)

type tx struct {
	st *state
}

var _ portal.Tx = (*tx)(nil)

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", portal.ErrNotFound, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", portal.ErrConflict, fmt.Sprintf(format, args...))
}

// rows returns the values of m that keep accepts, ordered by ID.
func rows[V any](m map[int64]V, keep func(V) bool) []V {
	out := make([]V, 0)
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if keep == nil || keep(m[id]) {
			out = append(out, m[id])
		}
	}
	return out
}

// users

func (t *tx) InsertUser(_ context.Context, u *portal.User) error {
	for _, o := range t.st.users {
		if o.Handle == u.Handle {
			return conflict("handle %q is taken", u.Handle)
		}
		if o.DisplayName == u.DisplayName {
			return conflict("display name %q is taken", u.DisplayName)
		}
	}
	u.ID = t.st.id()
	t.st.users[u.ID] = *u
	return nil
}

func (t *tx) GetUser(_ context.Context, id int64) (portal.User, error) {
	u, ok := t.st.users[id]
	if !ok {
		return portal.User{}, notFound("user %d", id)
	}
	return u, nil
}

func (t *tx) GetUserByHandle(_ context.Context, handle string) (portal.User, error) {
	for _, u := range t.st.users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return portal.User{}, notFound("user %q", handle)
}

func (t *tx) LockUser(ctx context.Context, id int64) (portal.User, error) {
	return t.GetUser(ctx, id)
}

func (t *tx) UpdateUser(_ context.Context, u portal.User) error {
	if _, ok := t.st.users[u.ID]; !ok {
		return notFound("user %d", u.ID)
	}
	for _, o := range t.st.users {
		if o.ID == u.ID {
			continue
		}
		if o.Handle == u.Handle {
			return conflict("handle %q is taken", u.Handle)
		}
		if o.DisplayName == u.DisplayName {
			return conflict("display name %q is taken", u.DisplayName)
		}
	}
	t.st.users[u.ID] = u
	return nil
}

func (t *tx) ListUsers(context.Context) ([]portal.User, error) {
	return rows(t.st.users, nil), nil
}

// teams

func (t *tx) InsertTeam(_ context.Context, tm *portal.Team) error {
	if _, ok := t.st.users[tm.CreatorID]; !ok {
		return notFound("user %d", tm.CreatorID)
	}
	for _, o := range t.st.teams {
		if o.Name == tm.Name {
			return conflict("team name %q is taken", tm.Name)
		}
		if o.CreatorID == tm.CreatorID {
			return conflict("user %d already created a team", tm.CreatorID)
		}
	}
	tm.ID = t.st.id()
	t.st.teams[tm.ID] = *tm
	return nil
}

func (t *tx) GetTeam(_ context.Context, id int64) (portal.Team, error) {
	tm, ok := t.st.teams[id]
	if !ok {
		return portal.Team{}, notFound("team %d", id)
	}
	return tm, nil
}

func (t *tx) LockTeam(ctx context.Context, id int64) (portal.Team, error) {
	return t.GetTeam(ctx, id)
}

func (t *tx) GetTeamByCreator(_ context.Context, userID int64) (portal.Team, error) {
	for _, tm := range t.st.teams {
		if tm.CreatorID == userID {
			return tm, nil
		}
	}
	return portal.Team{}, notFound("team created by user %d", userID)
}

func (t *tx) UpdateTeam(_ context.Context, tm portal.Team) error {
	if _, ok := t.st.teams[tm.ID]; !ok {
		return notFound("team %d", tm.ID)
	}
	for _, o := range t.st.teams {
		if o.ID != tm.ID && o.Name == tm.Name {
			return conflict("team name %q is taken", tm.Name)
		}
	}
	t.st.teams[tm.ID] = tm
	return nil
}

// DeleteTeam removes the team and everything that references it.
func (t *tx) DeleteTeam(_ context.Context, id int64) error {
	if _, ok := t.st.teams[id]; !ok {
		return notFound("team %d", id)
	}
	delete(t.st.teams, id)
	maps.DeleteFunc(t.st.roles, func(_ int64, ra portal.RoleAssignment) bool { return ra.TeamID == id })
	maps.DeleteFunc(t.st.invitations, func(_ int64, inv portal.Invitation) bool { return inv.TeamID == id })
	maps.DeleteFunc(t.st.registrations, func(_ int64, r portal.Registration) bool { return r.TeamID == id })
	maps.DeleteFunc(t.st.standings, func(_ int64, s portal.Standing) bool { return s.TeamID == id })
	maps.DeleteFunc(t.st.fixtures, func(_ int64, f portal.Fixture) bool { return f.Team1ID == id || f.Team2ID == id })
	maps.DeleteFunc(t.st.votes, func(k voteKey, _ portal.Vote) bool {
		_, ok := t.st.fixtures[k.fixtureID]
		return !ok
	})
	return nil
}

func (t *tx) ListTeams(context.Context) ([]portal.Team, error) {
	return rows(t.st.teams, nil), nil
}

// role assignments

func (t *tx) InsertRoleAssignment(_ context.Context, ra *portal.RoleAssignment) error {
	if _, ok := t.st.teams[ra.TeamID]; !ok {
		return notFound("team %d", ra.TeamID)
	}
	if _, ok := t.st.users[ra.UserID]; !ok {
		return notFound("user %d", ra.UserID)
	}
	for _, o := range t.st.roles {
		if o.TeamID == ra.TeamID && o.Role == ra.Role {
			return conflict("role %s already filled in team %d", ra.Role, ra.TeamID)
		}
	}
	ra.ID = t.st.id()
	t.st.roles[ra.ID] = *ra
	return nil
}

func (t *tx) DeleteRoleAssignment(_ context.Context, teamID int64, role portal.Role) error {
	for id, ra := range t.st.roles {
		if ra.TeamID == teamID && ra.Role == role {
			delete(t.st.roles, id)
			return nil
		}
	}
	return notFound("role %s in team %d", role, teamID)
}

func (t *tx) ListRoleAssignments(_ context.Context, teamID int64) ([]portal.RoleAssignment, error) {
	return rows(t.st.roles, func(ra portal.RoleAssignment) bool { return ra.TeamID == teamID }), nil
}

func (t *tx) ListRoleAssignmentsByUser(_ context.Context, userID int64) ([]portal.RoleAssignment, error) {
	return rows(t.st.roles, func(ra portal.RoleAssignment) bool { return ra.UserID == userID }), nil
}

// invitations

func (t *tx) InsertInvitation(_ context.Context, inv *portal.Invitation) error {
	if _, ok := t.st.teams[inv.TeamID]; !ok {
		return notFound("team %d", inv.TeamID)
	}
	if inv.Status == portal.InvitationPending {
		for _, o := range t.st.invitations {
			if o.Status != portal.InvitationPending || o.TeamID != inv.TeamID {
				continue
			}
			if o.Role == inv.Role {
				return conflict("pending invitation for %s already exists", inv.Role)
			}
			if o.ReceiverID == inv.ReceiverID {
				return conflict("user %d already has a pending invitation", inv.ReceiverID)
			}
		}
	}
	inv.ID = t.st.id()
	t.st.invitations[inv.ID] = *inv
	return nil
}

func (t *tx) GetInvitation(_ context.Context, id int64) (portal.Invitation, error) {
	inv, ok := t.st.invitations[id]
	if !ok {
		return portal.Invitation{}, notFound("invitation %d", id)
	}
	return inv, nil
}

func (t *tx) LockInvitation(ctx context.Context, id int64) (portal.Invitation, error) {
	return t.GetInvitation(ctx, id)
}

func (t *tx) UpdateInvitation(_ context.Context, inv portal.Invitation) error {
	if _, ok := t.st.invitations[inv.ID]; !ok {
		return notFound("invitation %d", inv.ID)
	}
	t.st.invitations[inv.ID] = inv
	return nil
}

func (t *tx) ListTeamInvitations(_ context.Context, teamID int64) ([]portal.Invitation, error) {
	return rows(t.st.invitations, func(inv portal.Invitation) bool { return inv.TeamID == teamID }), nil
}

func (t *tx) ListUserInvitations(_ context.Context, userID int64) ([]portal.Invitation, error) {
	return rows(t.st.invitations, func(inv portal.Invitation) bool {
		return inv.SenderID == userID || inv.ReceiverID == userID
	}), nil
}

// notifications

func (t *tx) InsertNotification(_ context.Context, n *portal.Notification) error {
	n.ID = t.st.id()
	t.st.notifications[n.ID] = *n
	return nil
}

func (t *tx) ListNotifications(_ context.Context, userID int64) ([]portal.Notification, error) {
	out := rows(t.st.notifications, func(n portal.Notification) bool { return n.UserID == userID })
	slices.Reverse(out)
	return out, nil
}

// tournaments

func (t *tx) InsertTournament(_ context.Context, tr *portal.Tournament) error {
	tr.ID = t.st.id()
	t.st.tournaments[tr.ID] = *tr
	return nil
}

func (t *tx) GetTournament(_ context.Context, id int64) (portal.Tournament, error) {
	tr, ok := t.st.tournaments[id]
	if !ok {
		return portal.Tournament{}, notFound("tournament %d", id)
	}
	return tr, nil
}

func (t *tx) LockTournament(ctx context.Context, id int64) (portal.Tournament, error) {
	return t.GetTournament(ctx, id)
}

func (t *tx) ListTournaments(context.Context) ([]portal.Tournament, error) {
	return rows(t.st.tournaments, nil), nil
}

func (t *tx) InsertRegistration(_ context.Context, r *portal.Registration) error {
	for _, o := range t.st.registrations {
		if o.TeamID == r.TeamID && o.TournamentID == r.TournamentID {
			return conflict("team %d already registered for tournament %d", r.TeamID, r.TournamentID)
		}
	}
	r.ID = t.st.id()
	t.st.registrations[r.ID] = *r
	return nil
}

func (t *tx) ListRegistrations(_ context.Context, tournamentID int64) ([]portal.Registration, error) {
	return rows(t.st.registrations, func(r portal.Registration) bool { return r.TournamentID == tournamentID }), nil
}

// fixtures

func (t *tx) InsertFixture(_ context.Context, f *portal.Fixture) error {
	if _, ok := t.st.tournaments[f.TournamentID]; !ok {
		return notFound("tournament %d", f.TournamentID)
	}
	f.ID = t.st.id()
	t.st.fixtures[f.ID] = *f
	return nil
}

func (t *tx) GetFixture(_ context.Context, id int64) (portal.Fixture, error) {
	f, ok := t.st.fixtures[id]
	if !ok {
		return portal.Fixture{}, notFound("fixture %d", id)
	}
	return f, nil
}

func (t *tx) LockFixture(ctx context.Context, id int64) (portal.Fixture, error) {
	return t.GetFixture(ctx, id)
}

func (t *tx) UpdateFixture(_ context.Context, f portal.Fixture) error {
	if _, ok := t.st.fixtures[f.ID]; !ok {
		return notFound("fixture %d", f.ID)
	}
	t.st.fixtures[f.ID] = f
	return nil
}

func (t *tx) ListFixtures(_ context.Context, tournamentID int64) ([]portal.Fixture, error) {
	return rows(t.st.fixtures, func(f portal.Fixture) bool { return f.TournamentID == tournamentID }), nil
}

func (t *tx) InsertVote(_ context.Context, v *portal.Vote) error {
	k := voteKey{v.FixtureID, v.UserID}
	if _, ok := t.st.votes[k]; ok {
		return conflict("user %d already voted on fixture %d", v.UserID, v.FixtureID)
	}
	t.st.votes[k] = *v
	return nil
}

// standings

func (t *tx) InsertStanding(_ context.Context, s *portal.Standing) error {
	for _, o := range t.st.standings {
		if o.TeamID == s.TeamID && o.TournamentID == s.TournamentID {
			return conflict("standing for team %d in tournament %d exists", s.TeamID, s.TournamentID)
		}
	}
	s.ID = t.st.id()
	t.st.standings[s.ID] = *s
	return nil
}

func (t *tx) GetStanding(_ context.Context, teamID, tournamentID int64) (portal.Standing, error) {
	for _, s := range t.st.standings {
		if s.TeamID == teamID && s.TournamentID == tournamentID {
			return s, nil
		}
	}
	return portal.Standing{}, notFound("standing for team %d in tournament %d", teamID, tournamentID)
}

func (t *tx) UpdateStanding(_ context.Context, s portal.Standing) error {
	if _, ok := t.st.standings[s.ID]; !ok {
		return notFound("standing %d", s.ID)
	}
	t.st.standings[s.ID] = s
	return nil
}

func (t *tx) ListStandings(_ context.Context, tournamentID int64) ([]portal.Standing, error) {
	return rows(t.st.standings, func(s portal.Standing) bool { return s.TournamentID == tournamentID }), nil
}

// audit

func (t *tx) InsertAudit(_ context.Context, e *portal.AuditEntry) error {
	e.ID = t.st.id()
	t.st.audit[e.ID] = *e
	return nil
}

func (t *tx) ListAudit(_ context.Context, limit int) ([]portal.AuditEntry, error) {
	out := rows(t.st.audit, nil)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
