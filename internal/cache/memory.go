package cache

import (
	"context"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is a bounded in-process LRU store with optional TTL.
type Memory struct {
	lru    *expirable.LRU[string, []byte]
	closed atomic.Bool
}

// NewMemory creates an LRU store bounded by opts.MaxEntries.
func NewMemory(opts Options) *Memory {
	max := opts.MaxEntries
	if max <= 0 {
		max = DefaultMaxEntries
	}
	// A non-positive TTL keeps entries until they are evicted.
	return &Memory{lru: expirable.NewLRU[string, []byte](max, nil, opts.TTL)}
}

// Get returns a copy of the value for key and marks it recently used.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores a copy of value, evicting the least recently used entry when
// the store is full.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if m.closed.Load() {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.lru.Add(key, v)
	return nil
}

// Len returns the number of entries, including expired ones not yet
// collected.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.closed.Store(true)
	m.lru.Purge()
	return nil
}
