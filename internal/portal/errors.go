package portal

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by Service wraps exactly one of these,
// so callers branch with errors.Is.
var (
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidState    = errors.New("invalid state")
	ErrOutOfWindow     = errors.New("out of window")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
)

var kinds = []error{
	ErrConflict,
	ErrForbidden,
	ErrInvalidState,
	ErrOutOfWindow,
	ErrNotFound,
	ErrInvalidArgument,
	ErrUnauthenticated,
}

// Kind returns the error kind err wraps, or nil for unexpected errors.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
