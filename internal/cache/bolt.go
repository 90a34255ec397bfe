package cache

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const defaultBoltBucket = "ocr"

// Bolt stores entries in a single bbolt bucket. bbolt has no expiration,
// so Options.TTL is ignored.
type Bolt struct {
	db     *bbolt.DB
	bucket []byte
}

// OpenBolt opens (or creates) the bbolt file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt cache %s: %w", path, err)
	}
	return NewBolt(db, defaultBoltBucket), nil
}

// NewBolt wraps an open database.
func NewBolt(db *bbolt.DB, bucket string) *Bolt {
	return &Bolt{db: db, bucket: []byte(bucket)}
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if bk == nil {
			return ErrNotFound
		}
		v := bk.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (b *Bolt) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists(b.bucket)
		if err != nil {
			return err
		}
		return bk.Put([]byte(key), value)
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
