package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, 0), mr
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	store, _ := newTestStore(t)

	id, found, err := store.Lookup(context.Background(), "u1", "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, id)
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "u1", "k", 42))

	id, found, err := store.Lookup(ctx, "u1", "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), id)

	assert.True(t, mr.Exists("idem:task:u1:k"))
	assert.Equal(t, IdempotencyTTL, mr.TTL("idem:task:u1:k"))
}

func TestIdempotencyStore_KeysAreOwnerScoped(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "u1", "k", 1))

	_, found, err := store.Lookup(ctx, "u2", "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStore_FirstWriteWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "u1", "k", 1))
	require.NoError(t, store.Remember(ctx, "u1", "k", 2))

	id, _, err := store.Lookup(ctx, "u1", "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestIdempotencyStore_Expiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "u1", "k", 7))
	mr.FastForward(IdempotencyTTL + time.Second)

	_, found, err := store.Lookup(ctx, "u1", "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Lookup(context.Background(), "u1", "k")
	assert.Error(t, err)
	assert.Error(t, store.Remember(context.Background(), "u1", "k", 1))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
