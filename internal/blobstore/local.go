package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore keeps blobs as files under a root directory.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at root. The directory is
// created on the first Put.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Path returns the file path of the named blob.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *LocalStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path(name))
}

// Put writes data to a temporary file in the same directory and renames it
// over the target.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.Path(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}

func (s *LocalStore) Describe() string {
	return "local:" + s.root
}
