package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend-hub/internal/portal"
)

func TestIssueVerifyRevoke(t *testing.T) {
	ctx := context.Background()
	m := NewManager("test-secret", time.Hour, NewMemoryRevocations())

	tok, cl, err := m.Issue(portal.User{ID: 42, Staff: true})
	require.NoError(t, err)
	assert.NotEmpty(t, cl.ID)

	got, err := m.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, portal.Actor{UserID: 42, Staff: true}, got.Actor())

	require.NoError(t, m.Revoke(ctx, got))
	_, err = m.Verify(ctx, tok)
	assert.ErrorIs(t, err, portal.ErrUnauthenticated)

	// A fresh login is unaffected by the old logout.
	tok2, _, err := m.Issue(portal.User{ID: 42})
	require.NoError(t, err)
	_, err = m.Verify(ctx, tok2)
	assert.NoError(t, err)
}

func TestVerifyRejects(t *testing.T) {
	ctx := context.Background()
	m := NewManager("test-secret", time.Hour, NewMemoryRevocations())
	other := NewManager("other-secret", time.Hour, NewMemoryRevocations())

	foreign, _, err := other.Issue(portal.User{ID: 1})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	expired := NewManager("test-secret", time.Hour, NewMemoryRevocations())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(portal.User{ID: 1})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"alg none":     none,
		"expired":      old,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(ctx, tok)
			assert.ErrorIs(t, err, portal.ErrUnauthenticated)
		})
	}
}

func TestMemoryRevocationsExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	r := NewMemoryRevocations()
	r.now = func() time.Time { return now }

	require.NoError(t, r.Revoke(ctx, "abc", time.Minute))
	revoked, err := r.Revoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = r.Revoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}
