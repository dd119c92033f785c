package jsonfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
)

type record struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	f := New[[]record](filepath.Join(t.TempDir(), "absent.json"))

	got, err := f.Load([]record{})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	f := New[[]record](filepath.Join(t.TempDir(), "records.json"))
	want := []record{
		{ID: 0, Title: "first"},
		{ID: 1, Title: "second"},
	}

	require.NoError(t, f.Save(want))

	got, err := f.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCorruptFileReturnsDefaultAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f := New[[]record](path)
	def := []record{{ID: 7, Title: "fallback"}}

	got, err := f.Load(def)

	require.Error(t, err)
	assert.True(t, errors.Is(err, commonerrors.ErrMalformedStorage))
	assert.Equal(t, def, got)
}

func TestLoadWrongTopLevelShapeReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o644))

	f := New[[]record](path)

	got, err := f.Load([]record{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, commonerrors.ErrMalformedStorage))
	assert.Empty(t, got)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "records.json")
	f := New[map[string]record](path)

	require.NoError(t, f.Save(map[string]record{"alice": {ID: 0, Title: "hi"}}))

	got, err := f.Load(nil)
	require.NoError(t, err)
	assert.Contains(t, got, "alice")
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	f := New[[]record](filepath.Join(t.TempDir(), "records.json"))

	require.NoError(t, f.Save([]record{{ID: 0, Title: "old"}}))
	require.NoError(t, f.Save([]record{{ID: 1, Title: "new"}}))

	got, err := f.Load(nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	f := New[[]record](filepath.Join(dir, "records.json"))

	require.NoError(t, f.Save([]record{{ID: 0, Title: "only"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "records.json", entries[0].Name())
}
