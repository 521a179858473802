package portal_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"legend-hub/internal/logger"
	"legend-hub/internal/memstore"
	"legend-hub/internal/portal"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	ctx   context.Context
	svc   *portal.Service
	clock *fakeClock
	staff portal.Actor
}

func newEnv(t *testing.T, opts ...portal.Option) *env {
	t.Helper()
	clock := &fakeClock{t: epoch}
	opts = append([]portal.Option{
		portal.WithClock(clock.Now),
		portal.WithPasswordCost(bcrypt.MinCost),
		portal.WithStaffHandles("admin"),
	}, opts...)
	e := &env{
		ctx:   context.Background(),
		svc:   portal.NewService(memstore.New(), logger.Nop(), opts...),
		clock: clock,
	}
	admin := e.user(t, "admin")
	require.True(t, admin.Staff)
	e.staff = portal.Actor{UserID: admin.ID, Staff: true}
	return e
}

func (e *env) user(t *testing.T, handle string) portal.User {
	t.Helper()
	u, err := e.svc.RegisterUser(e.ctx, handle, handle+" Fullname", "secret123")
	require.NoError(t, err)
	return u
}

func actor(u portal.User) portal.Actor {
	return portal.Actor{UserID: u.ID, Staff: u.Staff}
}

// join seats u in team through an accepted invitation from sender.
func (e *env) join(t *testing.T, sender, u portal.User, teamID int64, role portal.Role) {
	t.Helper()
	inv, err := e.svc.CreateInvitation(e.ctx, sender.ID, u.ID, teamID, role)
	require.NoError(t, err)
	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, u.ID, portal.InvitationAccepted)
	require.NoError(t, err)
}

// fullTeam builds a team with all five main roles filled.
func (e *env) fullTeam(t *testing.T, name string) (portal.Team, portal.User) {
	t.Helper()
	creator := e.user(t, name+"-captain")
	team, err := e.svc.CreateTeam(e.ctx, creator.ID, name, portal.RoleTopLane)
	require.NoError(t, err)
	for _, r := range portal.MainRoles[1:] {
		e.join(t, creator, e.user(t, fmt.Sprintf("%s-%s", name, r)), team.ID, r)
	}
	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	require.True(t, view.Complete)
	return view.Team, creator
}

// openTournament creates a tournament whose registration window contains now.
func (e *env) openTournament(t *testing.T, title string, limit int) portal.Tournament {
	t.Helper()
	now := e.clock.Now()
	tour, err := e.svc.CreateTournament(e.ctx, e.staff, title, now.Add(-time.Hour), now.Add(100*time.Hour), limit)
	require.NoError(t, err)
	return tour
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind, "got %v", err)
}
