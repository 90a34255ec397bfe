package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist. It maps to
// os.ErrNotExist so file system errors match without translation.
var ErrNotFound = os.ErrNotExist

// Store reads and writes complete blobs by name.
type Store interface {
	// Get returns the full contents of the named blob.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put replaces the named blob. Readers never observe a partial write.
	Put(ctx context.Context, name string, data []byte) error

	// Describe names the backend and location for logs and stats.
	Describe() string
}
