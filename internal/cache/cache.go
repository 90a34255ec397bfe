// Package cache provides the key/value stores behind the OCR result cache.
//
// Keys are content hashes and values are opaque bytes; callers own the
// encoding. Every backend returns ErrNotFound for absent or expired keys.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("cache: key not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("cache: store closed")
)

// Store is a byte-valued key/value cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options shared by the backends that honor them.
type Options struct {
	// TTL expires entries after this duration. Zero keeps entries until
	// evicted.
	TTL time.Duration

	// MaxEntries bounds the memory backend. Zero means DefaultMaxEntries.
	MaxEntries int
}

// DefaultMaxEntries bounds the memory backend when Options.MaxEntries is zero.
const DefaultMaxEntries = 512

// Nop is a Store that never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

func (Nop) Set(context.Context, string, []byte) error { return nil }

func (Nop) Close() error { return nil }
