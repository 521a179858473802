package portal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend-hub/internal/portal"
)

func TestDeriveCompleteness(t *testing.T) {
	seat := func(r portal.Role) portal.RoleAssignment { return portal.RoleAssignment{Role: r} }

	tests := []struct {
		name     string
		roles    []portal.Role
		complete bool
		count    int
	}{
		{"empty", nil, false, 0},
		{"four mains", []portal.Role{portal.RoleTopLane, portal.RoleMidLane, portal.RoleJungle, portal.RoleBotLane}, false, 4},
		{"five mains", portal.MainRoles, true, 5},
		{"four mains and subs", []portal.Role{portal.RoleTopLane, portal.RoleMidLane, portal.RoleJungle, portal.RoleBotLane, portal.RoleSub1, portal.RoleSub2}, false, 6},
		{"full roster", append(append([]portal.Role{}, portal.MainRoles...), portal.SubRoles...), true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ras []portal.RoleAssignment
			for _, r := range tt.roles {
				ras = append(ras, seat(r))
			}
			complete, count := portal.DeriveCompleteness(ras)
			assert.Equal(t, tt.complete, complete)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestCreateTeam_SeatsCreator(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "faker")

	team, err := e.svc.CreateTeam(e.ctx, c.ID, "  Tigers ", portal.RoleMidLane)
	require.NoError(t, err)
	assert.Equal(t, "Tigers", team.Name)
	assert.Equal(t, c.ID, team.CreatorID)
	assert.False(t, team.Complete)
	assert.Equal(t, 1, team.MemberCount)

	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, view.Roster, 1)
	assert.Equal(t, portal.RoleMidLane, view.Roster[0].Role)
	assert.Equal(t, c.ID, view.Roster[0].UserID)

	mine, err := e.svc.TeamForUser(e.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, mine.ID)
}

func TestCreateTeam_Rejections(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "creator")
	member := e.user(t, "member")
	free := e.user(t, "free")

	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Dragons", portal.RoleTopLane)
	require.NoError(t, err)
	e.join(t, c, member, team.ID, portal.RoleJungle)

	_, err = e.svc.CreateTeam(e.ctx, c.ID, "Dragons II", portal.RoleTopLane)
	requireKind(t, err, portal.ErrConflict)

	_, err = e.svc.CreateTeam(e.ctx, member.ID, "Wyverns", portal.RoleTopLane)
	requireKind(t, err, portal.ErrConflict)

	_, err = e.svc.CreateTeam(e.ctx, free.ID, "Dragons", portal.RoleTopLane)
	requireKind(t, err, portal.ErrConflict)

	_, err = e.svc.CreateTeam(e.ctx, free.ID, "Subs Only", portal.RoleSub1)
	requireKind(t, err, portal.ErrInvalidArgument)

	_, err = e.svc.CreateTeam(e.ctx, free.ID, " ", portal.RoleTopLane)
	requireKind(t, err, portal.ErrInvalidArgument)

	_, err = e.svc.TeamForUser(e.ctx, free.ID)
	requireKind(t, err, portal.ErrNotFound)
}

func TestAddRole(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "creator")
	u := e.user(t, "newcomer")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Owls", portal.RoleTopLane)
	require.NoError(t, err)

	_, err = e.svc.AddRole(e.ctx, actor(c), team.ID, u.ID, portal.RoleSupport)
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.AddRole(e.ctx, e.staff, team.ID, u.ID, portal.RoleTopLane)
	requireKind(t, err, portal.ErrConflict)

	updated, err := e.svc.AddRole(e.ctx, e.staff, team.ID, u.ID, portal.RoleSupport)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MemberCount)

	// Same user, different role: still one seat per user.
	_, err = e.svc.AddRole(e.ctx, e.staff, team.ID, u.ID, portal.RoleBotLane)
	requireKind(t, err, portal.ErrConflict)

	notes, err := e.svc.Notifications(e.ctx, actor(u), u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0].Message, "Owls")
}

func TestRemoveRole(t *testing.T) {
	e := newEnv(t)
	team, c := e.fullTeam(t, "wolves")
	outsider := e.user(t, "outsider")

	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)
	var support portal.RoleAssignment
	for _, ra := range view.Roster {
		if ra.Role == portal.RoleSupport {
			support = ra
		}
	}

	_, err = e.svc.RemoveRole(e.ctx, actor(outsider), team.ID, portal.RoleSupport)
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.RemoveRole(e.ctx, actor(c), team.ID, portal.RoleTopLane)
	requireKind(t, err, portal.ErrInvalidState)

	_, err = e.svc.RemoveRole(e.ctx, actor(c), team.ID, portal.RoleSub1)
	requireKind(t, err, portal.ErrNotFound)

	// A member leaves on their own.
	updated, err := e.svc.RemoveRole(e.ctx, portal.Actor{UserID: support.UserID}, team.ID, portal.RoleSupport)
	require.NoError(t, err)
	assert.False(t, updated.Complete)
	assert.Equal(t, 4, updated.MemberCount)

	// The freed player can found a team of their own.
	_, err = e.svc.CreateTeam(e.ctx, support.UserID, "Lone Wolf", portal.RoleSupport)
	require.NoError(t, err)
}

func TestRenameTeam(t *testing.T) {
	e := newEnv(t)
	c := e.user(t, "creator")
	other := e.user(t, "other")
	team, err := e.svc.CreateTeam(e.ctx, c.ID, "Foxes", portal.RoleTopLane)
	require.NoError(t, err)
	_, err = e.svc.CreateTeam(e.ctx, other.ID, "Hounds", portal.RoleTopLane)
	require.NoError(t, err)

	_, err = e.svc.RenameTeam(e.ctx, actor(other), team.ID, "Stolen")
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.RenameTeam(e.ctx, actor(c), team.ID, "Hounds")
	requireKind(t, err, portal.ErrConflict)

	renamed, err := e.svc.RenameTeam(e.ctx, actor(c), team.ID, "Silver Foxes")
	require.NoError(t, err)
	assert.Equal(t, "Silver Foxes", renamed.Name)
}

func TestDeleteTeam_ReleasesEveryone(t *testing.T) {
	e := newEnv(t)
	team, c := e.fullTeam(t, "bears")
	view, err := e.svc.GetTeam(e.ctx, team.ID)
	require.NoError(t, err)

	err = e.svc.DeleteTeam(e.ctx, portal.Actor{UserID: view.Roster[1].UserID}, team.ID)
	requireKind(t, err, portal.ErrForbidden)

	require.NoError(t, e.svc.DeleteTeam(e.ctx, actor(c), team.ID))

	_, err = e.svc.GetTeam(e.ctx, team.ID)
	requireKind(t, err, portal.ErrNotFound)

	for _, ra := range view.Roster {
		_, err := e.svc.TeamForUser(e.ctx, ra.UserID)
		requireKind(t, err, portal.ErrNotFound)
	}
	_, err = e.svc.CreateTeam(e.ctx, c.ID, "bears", portal.RoleTopLane)
	require.NoError(t, err)

	member := view.Roster[1]
	notes, err := e.svc.Notifications(e.ctx, portal.Actor{UserID: member.UserID}, member.UserID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0].Message, "disbanded")
}
