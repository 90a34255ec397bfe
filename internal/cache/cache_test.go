package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the behavior every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k1", []byte("v1")))
		got, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "k2", []byte("old")))
		require.NoError(t, s.Set(ctx, "k2", []byte("new")))
		got, err := s.Get(ctx, "k2")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("value is copied", func(t *testing.T) {
		v := []byte("abc")
		require.NoError(t, s.Set(ctx, "k3", v))
		v[0] = 'x'
		got, err := s.Get(ctx, "k3")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})
}

func TestMemory(t *testing.T) {
	m := NewMemory(Options{})
	defer m.Close()
	testStore(t, m)
}

func TestMemory_LRUEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Options{MaxEntries: 2})

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))

	// Touch a so b becomes least recently used.
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3")))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Options{TTL: 50 * time.Millisecond})
	defer m.Close()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Closed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Options{})
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Set(ctx, "k", nil), ErrClosed)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBolt(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer b.Close()
	testStore(t, b)
}

func TestBolt_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "persisted", []byte("yes")))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), got)
}

func TestBadger(t *testing.T) {
	b, err := OpenBadger("", Options{TTL: time.Hour})
	require.NoError(t, err)
	defer b.Close()
	testStore(t, b)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("MEMEZAP_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping redis test: MEMEZAP_TEST_REDIS_ADDR not set")
	}
	prefix := "memezap-test-" + time.Now().Format("150405.000000") + ":"
	r := NewRedis(RedisConfig{Addr: addr, Prefix: prefix}, Options{TTL: time.Minute})
	defer r.Close()
	testStore(t, r)
}
