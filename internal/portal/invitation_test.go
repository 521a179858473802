package portal_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend-hub/internal/portal"
)

func TestInvitation_FifthMainRoleCompletesTeam(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Comets", portal.RoleTopLane)
	require.NoError(t, err)
	for _, r := range []portal.Role{portal.RoleMidLane, portal.RoleJungle, portal.RoleBotLane} {
		e.join(t, c, e.user(t, "p-"+string(r)), team.ID, r)
	}
	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	require.False(t, view.Complete)
	require.Equal(t, 4, view.MemberCount)

	support := e.user(t, "support")
	inv, err := e.svc.CreateInvitation(e.ctx, c.ID, support.ID, team.ID, portal.RoleSupport)
	require.NoError(t, err)
	assert.Equal(t, portal.InvitationPending, inv.Status)

	accepted, err := e.svc.RespondToInvitation(e.ctx, inv.ID, support.ID, portal.InvitationAccepted)
	require.NoError(t, err)
	assert.Equal(t, portal.InvitationAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	view, err = e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	assert.True(t, view.Complete)
	assert.Equal(t, 5, view.MemberCount)

	notes, err := e.svc.Notifications(e.ctx, actor(c), c.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0].Message, "accepted")
}

func TestCreateInvitation_Preconditions(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	member := e.user(t, "member")
	outsider := e.user(t, "outsider")
	invited := e.user(t, "invited")
	taken := e.user(t, "taken")
	free := e.user(t, "free")

	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Ravens", portal.RoleTopLane)
	require.NoError(t, err)
	e.join(t, c, member, team.ID, portal.RoleJungle)
	_, err = e.svc.CreateTeam(e.ctx, taken.ID, "Crows", portal.RoleTopLane)
	require.NoError(t, err)

	// Leaves a pending invitation for MidLane to invited.
	_, err = e.svc.CreateInvitation(e.ctx, member.ID, invited.ID, team.ID, portal.RoleMidLane)
	require.NoError(t, err)

	tests := []struct {
		name     string
		sender   int64
		receiver int64
		teamID   int64
		role     portal.Role
		want     error
	}{
		{"unknown role", c.ID, free.ID, team.ID, portal.Role("Coach"), portal.ErrInvalidArgument},
		{"unknown team", c.ID, free.ID, team.ID + 1000, portal.RoleSupport, portal.ErrNotFound},
		{"unknown receiver", c.ID, 9999, team.ID, portal.RoleSupport, portal.ErrNotFound},
		{"self invite", c.ID, c.ID, team.ID, portal.RoleSupport, portal.ErrInvalidArgument},
		{"sender not in team", outsider.ID, free.ID, team.ID, portal.RoleSupport, portal.ErrForbidden},
		{"role filled", c.ID, free.ID, team.ID, portal.RoleJungle, portal.ErrConflict},
		{"role already offered", c.ID, free.ID, team.ID, portal.RoleMidLane, portal.ErrConflict},
		{"receiver plays elsewhere", c.ID, taken.ID, team.ID, portal.RoleSupport, portal.ErrConflict},
		{"receiver already invited", c.ID, invited.ID, team.ID, portal.RoleSupport, portal.ErrConflict},
		{"sub before complete", c.ID, free.ID, team.ID, portal.RoleSub1, portal.ErrInvalidState},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateInvitation(e.ctx, tt.sender, tt.receiver, tt.teamID, tt.role)
			requireKind(t, err, tt.want)
		})
	}

	// Self invite is reported before authority.
	_, err = e.svc.CreateInvitation(e.ctx, outsider.ID, outsider.ID, team.ID, portal.RoleSupport)
	requireKind(t, err, portal.ErrInvalidArgument)
}

func TestCreateInvitation_SubsAfterComplete(t *testing.T) {
	e := newEnv(t)
	team, c := e.fullTeam(t, "lynx")

	sub1, sub2 := e.user(t, "sub1"), e.user(t, "sub2")
	e.join(t, c, sub1, team.ID, portal.RoleSub1)
	e.join(t, c, sub2, team.ID, portal.RoleSub2)

	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, portal.MaxRosterSize, view.MemberCount)

	_, err = e.svc.CreateInvitation(e.ctx, c.ID, e.user(t, "eighth").ID, team.ID, portal.RoleSub1)
	requireKind(t, err, portal.ErrConflict)
}

func TestCreateInvitation_ReinviteAfterDecline(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	r := e.user(t, "receiver")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Otters", portal.RoleTopLane)
	require.NoError(t, err)

	inv, err := e.svc.CreateInvitation(e.ctx, c.ID, r.ID, team.ID, portal.RoleSupport)
	require.NoError(t, err)
	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, r.ID, portal.InvitationDeclined)
	require.NoError(t, err)

	again, err := e.svc.CreateInvitation(e.ctx, c.ID, r.ID, team.ID, portal.RoleSupport)
	require.NoError(t, err)
	assert.NotEqual(t, inv.ID, again.ID)
}

func TestRespondToInvitation(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	r := e.user(t, "receiver")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Hawks", portal.RoleTopLane)
	require.NoError(t, err)
	inv, err := e.svc.CreateInvitation(e.ctx, c.ID, r.ID, team.ID, portal.RoleBotLane)
	require.NoError(t, err)

	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, r.ID, portal.InvitationPending)
	requireKind(t, err, portal.ErrInvalidArgument)

	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, c.ID, portal.InvitationAccepted)
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID+1000, r.ID, portal.InvitationAccepted)
	requireKind(t, err, portal.ErrNotFound)

	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, r.ID, portal.InvitationAccepted)
	require.NoError(t, err)

	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, r.ID, portal.InvitationAccepted)
	requireKind(t, err, portal.ErrInvalidState)
	_, err = e.svc.RespondToInvitation(e.ctx, inv.ID, r.ID, portal.InvitationDeclined)
	requireKind(t, err, portal.ErrInvalidState)

	got, err := e.svc.GetInvitation(e.ctx, actor(r), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, portal.InvitationAccepted, got.Status)

	_, err = e.svc.GetInvitation(e.ctx, actor(e.user(t, "nosy")), inv.ID)
	requireKind(t, err, portal.ErrForbidden)
}

func TestRespondToInvitation_ReceiverJoinedElsewhere(t *testing.T) {
	e := newEnv(t)
	c1, c2 := e.user(t, "captain1"), e.user(t, "captain2")
	r := e.user(t, "wanted")
	t1, err := e.svc.CreateTeam(e.ctx, c1.ID, "North", portal.RoleTopLane)
	require.NoError(t, err)
	t2, err := e.svc.CreateTeam(e.ctx, c2.ID, "South", portal.RoleTopLane)
	require.NoError(t, err)

	inv1, err := e.svc.CreateInvitation(e.ctx, c1.ID, r.ID, t1.ID, portal.RoleJungle)
	require.NoError(t, err)
	inv2, err := e.svc.CreateInvitation(e.ctx, c2.ID, r.ID, t2.ID, portal.RoleJungle)
	require.NoError(t, err)

	_, err = e.svc.RespondToInvitation(e.ctx, inv2.ID, r.ID, portal.InvitationAccepted)
	require.NoError(t, err)

	_, err = e.svc.RespondToInvitation(e.ctx, inv1.ID, r.ID, portal.InvitationAccepted)
	requireKind(t, err, portal.ErrConflict)

	// The failed accept left no trace.
	got, err := e.svc.GetInvitation(e.ctx, actor(r), inv1.ID)
	require.NoError(t, err)
	assert.Equal(t, portal.InvitationPending, got.Status)
	view, err := e.svc.GetTeam(e.ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.MemberCount)

	// Declining is still possible.
	_, err = e.svc.RespondToInvitation(e.ctx, inv1.ID, r.ID, portal.InvitationDeclined)
	require.NoError(t, err)
}

func TestCreateInvitation_ConcurrentSameRole(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Sharks", portal.RoleTopLane)
	require.NoError(t, err)

	const n = 8
	receivers := make([]portal.User, n)
	for i := range receivers {
		receivers[i] = e.user(t, fmt.Sprintf("candidate%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.CreateInvitation(e.ctx, c.ID, receivers[i].ID, team.ID, portal.RoleMidLane)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, portal.ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestOneSeatPerUser(t *testing.T) {
	e := newEnv(t)
	c1, c2 := e.user(t, "captain1"), e.user(t, "captain2")
	r := e.user(t, "popular")
	t1, err := e.svc.CreateTeam(e.ctx, c1.ID, "East", portal.RoleTopLane)
	require.NoError(t, err)
	t2, err := e.svc.CreateTeam(e.ctx, c2.ID, "West", portal.RoleTopLane)
	require.NoError(t, err)

	inv1, err := e.svc.CreateInvitation(e.ctx, c1.ID, r.ID, t1.ID, portal.RoleSupport)
	require.NoError(t, err)
	inv2, err := e.svc.CreateInvitation(e.ctx, c2.ID, r.ID, t2.ID, portal.RoleSupport)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{inv1.ID, inv2.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = e.svc.RespondToInvitation(e.ctx, id, r.ID, portal.InvitationAccepted)
		}(i, id)
	}
	wg.Wait()

	assert.True(t, (errs[0] == nil) != (errs[1] == nil), "exactly one accept must win: %v", errs)

	seats := 0
	for _, id := range []int64{t1.ID, t2.ID} {
		view, err := e.svc.GetTeam(e.ctx, id)
		require.NoError(t, err)
		for _, ra := range view.Roster {
			if ra.UserID == r.ID {
				seats++
			}
		}
	}
	assert.Equal(t, 1, seats)
}

func TestListInvitations(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "captain")
	r := e.user(t, "receiver")
	other := e.user(t, "other")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Eagles", portal.RoleTopLane)
	require.NoError(t, err)
	_, err = e.svc.CreateInvitation(e.ctx, c.ID, r.ID, team.ID, portal.RoleSupport)
	require.NoError(t, err)

	sent, err := e.svc.ListInvitations(e.ctx, actor(c))
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	received, err := e.svc.ListInvitations(e.ctx, actor(r))
	require.NoError(t, err)
	assert.Len(t, received, 1)

	none, err := e.svc.ListInvitations(e.ctx, actor(other))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.svc.Notifications(e.ctx, actor(other), r.ID)
	requireKind(t, err, portal.ErrForbidden)
	notes, err := e.svc.Notifications(e.ctx, e.staff, r.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Eagles")
}
