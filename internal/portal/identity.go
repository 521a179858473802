package portal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// RegisterUser creates an account with a unique handle and display name.
func (s *Service) RegisterUser(ctx context.Context, handle, displayName, password string) (User, error) {
	handle = strings.TrimSpace(handle)
	displayName = strings.TrimSpace(displayName)
	if handle == "" || displayName == "" || password == "" {
		return User{}, errorf(ErrInvalidArgument, "handle, display name and password are required")
	}
	if len(password) < minPasswordLen {
		return User{}, errorf(ErrInvalidArgument, "password too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, err
	}

	u := User{
		Handle:       handle,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Staff:        s.staffHandles[handle],
		CreatedAt:    s.now(),
	}
	err = s.store.WithTx(ctx, func(tx Tx) error {
		if err := tx.InsertUser(ctx, &u); err != nil {
			return err
		}
		return s.audit(ctx, tx, u.ID, "register", "handle="+u.Handle)
	})
	if err != nil {
		return User{}, err
	}
	s.log.Info("user registered", "user_id", u.ID, "handle", u.Handle)
	return u, nil
}

// Authenticate checks a handle/password pair.
func (s *Service) Authenticate(ctx context.Context, handle, password string) (User, error) {
	var u User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUserByHandle(ctx, strings.TrimSpace(handle))
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return User{}, errorf(ErrUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, errorf(ErrUnauthenticated, "invalid credentials")
	}
	return u, nil
}

// UpdateHandle changes the in-game name. Only the owner may do it.
func (s *Service) UpdateHandle(ctx context.Context, actor Actor, userID int64, handle string) (User, error) {
	return s.UpdateProfile(ctx, actor, userID, &handle, nil)
}

// UpdatePassword replaces the credential hash. Only the owner may do it.
func (s *Service) UpdatePassword(ctx context.Context, actor Actor, userID int64, password string) error {
	_, err := s.UpdateProfile(ctx, actor, userID, nil, &password)
	return err
}

// UpdateProfile changes the handle, the password or both in one transaction.
// Nil fields are left alone. Only the owner may do it.
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, userID int64, handle, password *string) (User, error) {
	var newHandle, hash string
	if handle != nil {
		if newHandle = strings.TrimSpace(*handle); newHandle == "" {
			return User{}, errorf(ErrInvalidArgument, "handle is required")
		}
	}
	if password != nil {
		if len(*password) < minPasswordLen {
			return User{}, errorf(ErrInvalidArgument, "password too short")
		}
		b, err := bcrypt.GenerateFromPassword([]byte(*password), s.cost)
		if err != nil {
			return User{}, err
		}
		hash = string(b)
	}

	var u User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if u, err = tx.LockUser(ctx, userID); err != nil {
			return err
		}
		if !(UserAccess{}).CanWrite(actor, u) {
			return errorf(ErrForbidden, "only the owner can change a profile")
		}
		old := u.Handle
		if handle != nil {
			u.Handle = newHandle
		}
		if password != nil {
			u.PasswordHash = hash
		}
		if handle == nil && password == nil {
			return nil
		}
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		if handle != nil {
			if err := s.audit(ctx, tx, actor.UserID, "update_handle", old+" -> "+newHandle); err != nil {
				return err
			}
		}
		if password != nil {
			return s.audit(ctx, tx, actor.UserID, "update_password", "")
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByHandle looks a user up by exact handle.
func (s *Service) UserByHandle(ctx context.Context, handle string) (User, error) {
	var u User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUserByHandle(ctx, strings.TrimSpace(handle))
		return err
	})
	return u, err
}

// SetStaff grants or revokes staff rights. Staff only, and nobody may change
// their own flag.
func (s *Service) SetStaff(ctx context.Context, actor Actor, userID int64, staff bool) (User, error) {
	if !actor.Staff {
		return User{}, errorf(ErrForbidden, "only staff can change staff rights")
	}
	if actor.UserID == userID {
		return User{}, errorf(ErrInvalidArgument, "cannot change your own staff rights")
	}
	var u User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if u, err = tx.LockUser(ctx, userID); err != nil {
			return err
		}
		u.Staff = staff
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor.UserID, "set_staff", fmt.Sprintf("user_id=%d staff=%t", userID, staff))
	})
	return u, err
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUser(ctx, id)
		return err
	})
	return u, err
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListUsers(ctx)
		return err
	})
	return out, err
}

// SearchUsers ranks users whose handle fuzzily matches query, best first.
// An empty query lists everybody.
func (s *Service) SearchUsers(ctx context.Context, query string) ([]User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil || strings.TrimSpace(query) == "" {
		return users, err
	}

	handles := make([]string, len(users))
	for i, u := range users {
		handles[i] = strings.ToLower(u.Handle)
	}

	ranks := fuzzy.RankFind(strings.ToLower(strings.TrimSpace(query)), handles)
	sort.Stable(ranks)

	out := make([]User, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, users[r.OriginalIndex])
	}
	return out, nil
}
