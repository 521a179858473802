package portal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend-hub/internal/portal"
)

func TestRegisterUser(t *testing.T) {
	e := newEnv(t)

	u, err := e.svc.RegisterUser(e.ctx, " Caps ", "Rasmus Winther", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Caps", u.Handle)
	assert.False(t, u.Staff)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	tests := []struct {
		name     string
		handle   string
		display  string
		password string
		want     error
	}{
		{"missing handle", "", "Someone", "hunter22", portal.ErrInvalidArgument},
		{"missing display name", "someone", " ", "hunter22", portal.ErrInvalidArgument},
		{"short password", "someone", "Someone", "abc", portal.ErrInvalidArgument},
		{"handle taken", "Caps", "Another Person", "hunter22", portal.ErrConflict},
		{"display name taken", "caps2", "Rasmus Winther", "hunter22", portal.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.RegisterUser(e.ctx, tt.handle, tt.display, tt.password)
			requireKind(t, err, tt.want)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "perkz")

	got, err := e.svc.Authenticate(e.ctx, "perkz", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = e.svc.Authenticate(e.ctx, "perkz", "wrong-password")
	requireKind(t, err, portal.ErrUnauthenticated)

	_, err = e.svc.Authenticate(e.ctx, "nobody", "secret123")
	requireKind(t, err, portal.ErrUnauthenticated)
}

func TestUpdateHandleAndPassword(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "jankos")
	other := e.user(t, "rekkles")

	_, err := e.svc.UpdateHandle(e.ctx, actor(other), u.ID, "stolen")
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.UpdateHandle(e.ctx, actor(u), u.ID, "rekkles")
	requireKind(t, err, portal.ErrConflict)

	renamed, err := e.svc.UpdateHandle(e.ctx, actor(u), u.ID, "jankos2")
	require.NoError(t, err)
	assert.Equal(t, "jankos2", renamed.Handle)

	err = e.svc.UpdatePassword(e.ctx, actor(other), u.ID, "newsecret")
	requireKind(t, err, portal.ErrForbidden)
	require.NoError(t, e.svc.UpdatePassword(e.ctx, actor(u), u.ID, "newsecret"))

	_, err = e.svc.Authenticate(e.ctx, "jankos2", "secret123")
	requireKind(t, err, portal.ErrUnauthenticated)
	_, err = e.svc.Authenticate(e.ctx, "jankos2", "newsecret")
	require.NoError(t, err)
}

func TestUpdateProfile_FailureLeavesPasswordUnchanged(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "jankos")
	e.user(t, "taken")

	handle, password := "taken", "brandnew99"
	_, err := e.svc.UpdateProfile(e.ctx, actor(u), u.ID, &handle, &password)
	requireKind(t, err, portal.ErrConflict)

	_, err = e.svc.Authenticate(e.ctx, "jankos", "secret123")
	require.NoError(t, err)
	_, err = e.svc.Authenticate(e.ctx, "jankos", "brandnew99")
	requireKind(t, err, portal.ErrUnauthenticated)

	handle = "jankos2"
	got, err := e.svc.UpdateProfile(e.ctx, actor(u), u.ID, &handle, &password)
	require.NoError(t, err)
	assert.Equal(t, "jankos2", got.Handle)
	_, err = e.svc.Authenticate(e.ctx, "jankos2", "brandnew99")
	require.NoError(t, err)

	short := "abc"
	_, err = e.svc.UpdateProfile(e.ctx, actor(u), u.ID, nil, &short)
	requireKind(t, err, portal.ErrInvalidArgument)
}

func TestSearchUsers_HandlesDifferingOnlyByCase(t *testing.T) {
	e := newEnv(t)
	upper := e.user(t, "Bob")
	lower := e.user(t, "bob")

	got, err := e.svc.SearchUsers(e.ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []int64{upper.ID, lower.ID}, []int64{got[0].ID, got[1].ID})
}

func TestUserByHandle(t *testing.T) {
	e := newEnv(t)
	e.user(t, "admin2")

	u, err := e.svc.UserByHandle(e.ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, e.staff.UserID, u.ID)

	_, err = e.svc.UserByHandle(e.ctx, "adm")
	requireKind(t, err, portal.ErrNotFound)
	_, err = e.svc.UserByHandle(e.ctx, "ADMIN")
	requireKind(t, err, portal.ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	e.user(t, "Faker")
	e.user(t, "Faceless")
	e.user(t, "Bjergsen")

	got, err := e.svc.SearchUsers(e.ctx, "fkr")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Faker", got[0].Handle)

	got, err = e.svc.SearchUsers(e.ctx, "fa")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := e.svc.SearchUsers(e.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4) // includes admin
}

func TestSetStaff(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "moderator")

	_, err := e.svc.SetStaff(e.ctx, actor(u), u.ID, true)
	requireKind(t, err, portal.ErrForbidden)

	_, err = e.svc.SetStaff(e.ctx, e.staff, e.staff.UserID, false)
	requireKind(t, err, portal.ErrInvalidArgument)

	promoted, err := e.svc.SetStaff(e.ctx, e.staff, u.ID, true)
	require.NoError(t, err)
	assert.True(t, promoted.Staff)

	log, err := e.svc.AuditLog(e.ctx, e.staff, 0)
	require.NoError(t, err)
	require.NotEmpty(t, log)
	assert.Equal(t, "set_staff", log[0].Action)

	_, err = e.svc.AuditLog(e.ctx, actor(u), 0)
	requireKind(t, err, portal.ErrForbidden)
}
