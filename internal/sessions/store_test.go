package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, ttl), mr
}

func TestStoreCreate(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Hour)

	id, err := store.Create(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// A fresh session is anonymous, not missing.
	userID, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, userID)

	second, err := store.Create(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

func TestStoreBind(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Hour)

	id, err := store.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Bind(context.Background(), id, "user-1"))

	userID, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// Rebinding overwrites the identity.
	require.NoError(t, store.Bind(context.Background(), id, "user-2"))
	userID, err = store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "user-2", userID)
}

func TestStoreGetUnknown(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Hour)

	userID, err := store.Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, userID)
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t, time.Minute)

	id, err := store.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Bind(context.Background(), id, "user-1"))

	mr.FastForward(2 * time.Minute)

	userID, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, userID)
}

func TestStoreBindRefreshesTTL(t *testing.T) {
	t.Parallel()
	store, mr := newTestStore(t, time.Minute)

	id, err := store.Create(context.Background())
	require.NoError(t, err)

	mr.FastForward(45 * time.Second)
	require.NoError(t, store.Bind(context.Background(), id, "user-1"))
	mr.FastForward(45 * time.Second)

	// 90s elapsed since Create but only 45s since Bind.
	userID, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestStoreDestroy(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t, time.Hour)

	id, err := store.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Bind(context.Background(), id, "user-1"))

	require.NoError(t, store.Destroy(context.Background(), id))

	userID, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, userID)

	// Destroying again, or destroying a session that never existed, is fine.
	require.NoError(t, store.Destroy(context.Background(), id))
	require.NoError(t, store.Destroy(context.Background(), "never-seen"))
}
