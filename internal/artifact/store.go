package artifact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrArtifactNotFound indicates no artifact exists under the given key.
var ErrArtifactNotFound = errors.New("artifact not found")

// Store is the persisted-artifact boundary: a place to put and get
// encoded artifact envelopes by key.
type Store interface {
	// Put writes the artifact bytes under key, replacing any previous
	// version atomically from a reader's point of view.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the artifact bytes stored under key. Fails with
	// ErrArtifactNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
}

// FSStore persists artifacts on the local filesystem.
type FSStore struct {
	dir string
}

// NewFSStore creates a filesystem store rooted at dir, creating the
// directory if needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Put writes the artifact via a temp file and rename so a concurrent Get
// never observes a partial write.
func (s *FSStore) Put(_ context.Context, key string, data []byte) error {
	target := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	return nil
}

// Get reads the artifact stored under key.
func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
		}
		return nil, fmt.Errorf("read artifact %s: %w", key, err)
	}
	return data, nil
}
