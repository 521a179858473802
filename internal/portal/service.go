package portal

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"legend-hub/internal/logger"
)

// Service implements the roster, invitation, tournament and match result
// state machines on top of a transactional Store.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
	rand  func(n int, swap func(i, j int))
	cost  int

	staffHandles map[string]bool
}

type Option func(*Service)

// WithClock replaces the wall clock used for windows and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithShuffle replaces the shuffle used by AutoSchedule.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Service) { s.rand = shuffle }
}

// WithPasswordCost sets the bcrypt cost for new credential hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithStaffHandles marks accounts registered under these handles as staff.
func WithStaffHandles(handles ...string) Option {
	return func(s *Service) {
		for _, h := range handles {
			s.staffHandles[h] = true
		}
	}
}

func NewService(store Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		rand:  defaultShuffle,
		cost:  bcrypt.DefaultCost,

		staffHandles: map[string]bool{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) notify(ctx context.Context, tx Tx, userID int64, msg string) error {
	return tx.InsertNotification(ctx, &Notification{
		UserID:    userID,
		Message:   msg,
		CreatedAt: s.now(),
	})
}

// audit writes an action record inside tx so it commits with the change it
// describes.
func (s *Service) audit(ctx context.Context, tx Tx, actorID int64, action, details string) error {
	var actor *int64
	if actorID != 0 {
		actor = &actorID
	}
	return tx.InsertAudit(ctx, &AuditEntry{
		ActorID:   actor,
		Action:    action,
		Details:   details,
		CreatedAt: s.now(),
	})
}

// AuditLog returns the most recent audit entries. Staff only.
func (s *Service) AuditLog(ctx context.Context, actor Actor, limit int) ([]AuditEntry, error) {
	if !actor.Staff {
		return nil, errorf(ErrForbidden, "audit log is staff only")
	}
	switch {
	case limit <= 0:
		limit = 200
	case limit > 500:
		limit = 500
	}
	var out []AuditEntry
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListAudit(ctx, limit)
		return err
	})
	return out, err
}
