// Package evidence stores uploaded result screenshots on local disk.
package evidence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxSize caps a single upload.
const MaxSize = 8 << 20

var ErrUnsupported = errors.New("unsupported image type")

var allowed = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// Store writes images under a root directory. References returned by Save
// are slash-separated paths relative to the root.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("evidence dir: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Save copies r into a new file for the given fixture and returns its
// reference. Only the extension of the uploaded file name is kept.
func (s *Store) Save(fixtureID int64, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	ref := path.Join("fixtures", fmt.Sprint(fixtureID), uuid.NewString()+ext)
	full := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxSize {
		err = fmt.Errorf("image larger than %d bytes", MaxSize)
	}
	if err != nil {
		os.Remove(full)
		return "", err
	}
	return ref, nil
}

// Remove deletes a stored image. Missing files are not an error.
func (s *Store) Remove(ref string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+ref))))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
