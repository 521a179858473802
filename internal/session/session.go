// Package session issues and checks login tokens. A token is an HS256 JWT
// whose ID is a random session id; logging out records that id as revoked
// until the token would have expired anyway.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"legend-hub/internal/portal"
)

const issuer = "legend-hub"

// Claims is the token payload.
type Claims struct {
	UserID int64 `json:"uid"`
	Staff  bool  `json:"staff"`
	jwt.RegisteredClaims
}

// Actor returns the identity the token authenticates.
func (c *Claims) Actor() portal.Actor {
	return portal.Actor{UserID: c.UserID, Staff: c.Staff}
}

// Revocations remembers logged-out session ids.
type Revocations interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	Revoked(ctx context.Context, id string) (bool, error)
}

type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration, revoked Revocations) *Manager {
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}
}

// TTL is how long issued tokens stay valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new session token for u.
func (m *Manager) Issue(u portal.User) (string, *Claims, error) {
	now := m.now()
	cl := &Claims{
		UserID: u.ID,
		Staff:  u.Staff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(u.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return s, cl, nil
}

// Verify parses token and rejects bad signatures, expired tokens and revoked
// sessions with portal.ErrUnauthenticated.
func (m *Manager) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", portal.ErrUnauthenticated)
	}
	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: bad token", portal.ErrUnauthenticated)
	}
	cl, ok := tok.Claims.(*Claims)
	if !ok || cl.ID == "" {
		return nil, fmt.Errorf("%w: bad claims", portal.ErrUnauthenticated)
	}
	revoked, err := m.revoked.Revoked(ctx, cl.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session ended", portal.ErrUnauthenticated)
	}
	return cl, nil
}

// Revoke ends the session cl belongs to.
func (m *Manager) Revoke(ctx context.Context, cl *Claims) error {
	if cl == nil || cl.ID == "" {
		return errors.New("session: nothing to revoke")
	}
	ttl := m.ttl
	if cl.ExpiresAt != nil {
		ttl = cl.ExpiresAt.Sub(m.now())
	}
	if ttl <= 0 {
		return nil
	}
	return m.revoked.Revoke(ctx, cl.ID, ttl)
}
