package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores entries in a BadgerDB with optional per-entry TTL.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens a BadgerDB in dir. An empty dir opens an in-memory
// database.
func OpenBadger(dir string, opts Options) (*Badger, error) {
	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening badger cache: %w", err)
	}
	return NewBadger(db, opts), nil
}

// NewBadger wraps an open database.
func NewBadger(db *badger.DB, opts Options) *Badger {
	return &Badger{db: db, ttl: opts.TTL}
}

func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Badger) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (b *Badger) Close() error {
	return b.db.Close()
}
