package evidence

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ref, err := s.Save(7, "Result.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "fixtures/7/"), ref)
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	data, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	again, err := s.Save(7, "Result.PNG", strings.NewReader("other"))
	require.NoError(t, err)
	assert.NotEqual(t, ref, again)

	require.NoError(t, s.Remove(ref))
	require.NoError(t, s.Remove(ref))
}

func TestSave_Rejects(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(1, "payload.exe", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = s.Save(1, "huge.jpg", bytes.NewReader(make([]byte, MaxSize+1)))
	assert.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(s.Root(), "fixtures", "1"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
