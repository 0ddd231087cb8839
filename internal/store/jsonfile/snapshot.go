package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/shoplist/internal/core/snapshot"
)

// SnapshotFile implements snapshot.Slot using a JSON file for persistence.
type SnapshotFile struct {
	path string
	mu   sync.RWMutex
}

var _ snapshot.Slot = (*SnapshotFile)(nil)

// NewSnapshotFile creates a new JSON file slot at the given path.
func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

// Path returns the file location.
func (s *SnapshotFile) Path() string {
	return s.path
}

// Read returns the file contents. A missing or empty file reads as
// snapshot.ErrEmpty.
func (s *SnapshotFile) Read(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, snapshot.ErrEmpty
		}
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, snapshot.ErrEmpty
	}

	return data, nil
}

// Write replaces the file atomically. The document is re-indented for
// readability when it is valid JSON.
func (s *SnapshotFile) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err == nil {
		data = buf.Bytes()
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
