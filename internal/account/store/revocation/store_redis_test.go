package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

func TestRedisStore_RevokeAndCheck(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStore(client)

	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, store.Revoke(context.Background(), "jti-1", time.Minute))

	revoked, err = store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRedisStore_EntryExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client)

	require.NoError(t, store.Revoke(context.Background(), "jti-2", time.Second))
	mr.FastForward(2 * time.Second)

	revoked, err := store.IsRevoked(context.Background(), "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisStore_EmptyJTIIsNoop(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisStore(client)

	require.NoError(t, store.Revoke(context.Background(), "", time.Minute))

	revoked, err := store.IsRevoked(context.Background(), "")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestMemoryStore_RevokeAndExpire(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Revoke(context.Background(), "jti-3", 20*time.Millisecond))

	revoked, err := store.IsRevoked(context.Background(), "jti-3")
	require.NoError(t, err)
	require.True(t, revoked)

	time.Sleep(30 * time.Millisecond)

	revoked, err = store.IsRevoked(context.Background(), "jti-3")
	require.NoError(t, err)
	require.False(t, revoked)
}
