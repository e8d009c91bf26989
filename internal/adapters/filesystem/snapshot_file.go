// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/flairbot/internal/ports/secondary"
)

// SnapshotFile implements secondary.SnapshotStore as a single JSON object
// mapping submission IDs to prompt message IDs.
type SnapshotFile struct {
	path string
}

// NewSnapshotFile creates a snapshot store at path. The parent directory is
// created on first save.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the file location.
func (f *SnapshotFile) Path() string {
	return f.path
}

// LoadSnapshot reads the tracking log.
// Returns secondary.ErrNoSnapshot if the file does not exist.
func (f *SnapshotFile) LoadSnapshot(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, secondary.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	snapshot := make(map[string]string)
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return snapshot, nil
}

// SaveSnapshot writes the tracking log to a temp file and renames it into
// place, so a crash never leaves a half-written file.
func (f *SnapshotFile) SaveSnapshot(ctx context.Context, snapshot map[string]string) error {
	if snapshot == nil {
		snapshot = map[string]string{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode tracking log: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write tracking log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync tracking log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close tracking log: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

var _ secondary.SnapshotStore = (*SnapshotFile)(nil)
