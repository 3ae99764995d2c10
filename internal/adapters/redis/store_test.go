package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/propschema/internal/adapters/redis"
	"github.com/aretw0/propschema/pkg/ports"
	"github.com/aretw0/propschema/pkg/schema"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newStore(t)
	ports.RunCatalogStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	key := schema.Key("Microsoft.Resources/resourceGroups", "2024-11-01")

	err := store.Save(ctx, key, []byte(`{}`))
	assert.NoError(t, err)

	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, keys, key)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, key)
	assert.ErrorIs(t, err, schema.ErrSchemaNotFound)

	// The index is pruned against wall-clock time, not miniredis time.
	time.Sleep(1200 * time.Millisecond)

	keys, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	key := "Microsoft.Network/virtualNetworks@2024-05-01"

	err := store.Save(ctx, key, []byte(`{}`))
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:"+key), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	keys, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{key}, keys)
}

func TestRedisStore_DefaultPrefix(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix(""))
	require.NoError(t, store.Save(context.Background(), "a@1", []byte("x")))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"a@1"))
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newStore(t)
	mr.Close()

	_, err := store.Load(context.Background(), "a@1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, schema.ErrSchemaNotFound)
}
