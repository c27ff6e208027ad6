package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestMemoryStore_PutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "foo", "bar", 0))

	v, err := s.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", v)

	require.NoError(t, s.Delete(ctx, "foo"))
	_, err = s.Get(ctx, "foo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "v", 60*time.Second))

	clock.Advance(59 * time.Second)
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CleanupRemovesExpired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewMemoryStore(WithClock(clock.Now), WithCleanupEvery(0))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "short", "1", time.Second))
	require.NoError(t, s.Put(ctx, "forever", "2", 0))
	clock.Advance(2 * time.Second)

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Incr(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_000, 0)}
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := s.Incr(ctx, "c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	clock.Advance(time.Minute)
	n, err := s.Incr(ctx, "c", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "expired counter restarts")
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Put(context.Context, string, string, time.Duration) error { return f.err }
func (f failingStore) Delete(context.Context, string) error { return f.err }

func TestRead_SeparatesMissFromFailure(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "a", "1", 0))

	hit := Read(ctx, s, "a")
	assert.True(t, hit.Hit())
	assert.Equal(t, "1", hit.Value)

	miss := Read(ctx, s, "b")
	assert.False(t, miss.Hit())
	assert.False(t, miss.Failed())

	broken := Read(ctx, failingStore{err: errors.New("boom")}, "a")
	assert.True(t, broken.Failed())
	assert.False(t, broken.Hit())
}
