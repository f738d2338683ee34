package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return mr, client
}

func testStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "s1", KeyAuthToken)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "s1", KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, "s1", KeyUserEmail, "user@example.com"))
	require.NoError(t, store.Set(ctx, "s2", KeyAuthToken, "other"))

	v, err := store.Get(ctx, "s1", KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	require.NoError(t, store.Set(ctx, "s1", KeyAuthToken, "tok2"))
	v, err = store.Get(ctx, "s1", KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok2", v)

	require.NoError(t, store.Delete(ctx, "s1", KeyAuthToken, KeyCart))
	_, err = store.Get(ctx, "s1", KeyAuthToken)
	require.ErrorIs(t, err, ErrNotFound)

	v, err = store.Get(ctx, "s1", KeyUserEmail)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", v)

	v, err = store.Get(ctx, "s2", KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "other", v, "sessions must be isolated")

	require.NoError(t, store.Delete(ctx, "missing", KeyAuthToken))
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	_, client := setupTestRedis(t)
	testStoreContract(t, NewRedisStore(client, time.Hour))
}

func TestRedisStore_SlidingTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "s1", KeyCartID, "5"))
	assert.Equal(t, time.Minute, mr.TTL(redisKey("s1")))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "s1", KeyCartID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "idle", KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, "idle", KeyUserEmail, "idle@example.com"))
	require.NoError(t, store.Set(ctx, "active", KeyAuthToken, "tok"))

	now = now.Add(90 * time.Minute)
	// Запись любого ключа продлевает всю сессию.
	require.NoError(t, store.Set(ctx, "active", KeyCart, "[]"))

	n, err := store.DeleteExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "idle", KeyAuthToken)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "idle", KeyUserEmail)
	require.ErrorIs(t, err, ErrNotFound)

	v, err := store.Get(ctx, "active", KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v, "older keys of a live session must survive")

	n, err = store.DeleteExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}
