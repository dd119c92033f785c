package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	commonerrors "github.com/alebedev/helpboard/internal/common/errors"
)

// File is a JSON-backed snapshot store for a single value of type T.
// Writes go through a temp file and a rename so a concurrent reader never
// observes a half-written document.
type File[T any] struct {
	path string
}

func New[T any](path string) *File[T] {
	return &File[T]{path: path}
}

func (f *File[T]) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file yields (def, nil). An unreadable or
// malformed file, including one whose top-level shape does not match T, yields
// def together with an error wrapping ErrMalformedStorage; the returned value
// is always usable.
func (f *File[T]) Load(def T) (T, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return def, nil
		}
		return def, commonerrors.ErrMalformedStorage.WithCause(fmt.Errorf("read %s: %w", f.path, err))
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, commonerrors.ErrMalformedStorage.WithCause(fmt.Errorf("decode %s: %w", f.path, err))
	}

	return v, nil
}

// Save serializes v and atomically replaces the snapshot on disk.
func (f *File[T]) Save(v T) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return commonerrors.ErrPersistenceFailure.WithCause(fmt.Errorf("encode %s: %w", f.path, err))
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return commonerrors.ErrPersistenceFailure.WithCause(fmt.Errorf("mkdir %s: %w", dir, err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return commonerrors.ErrPersistenceFailure.WithCause(fmt.Errorf("create temp for %s: %w", f.path, err))
	}

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if writeErr == nil {
			writeErr = closeErr
		}
		return commonerrors.ErrPersistenceFailure.WithCause(fmt.Errorf("write %s: %w", f.path, writeErr))
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return commonerrors.ErrPersistenceFailure.WithCause(fmt.Errorf("rename %s: %w", f.path, err))
	}

	return nil
}
