package mylocalstorage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorages(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	fileStorage, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	storages := map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   fileStorage,
		"redis":  NewRedisStorage(client, "shopper_1"),
	}

	for name, storage := range storages {
		t.Run(name, func(t *testing.T) {
			c := context.TODO()

			_, found, err := storage.Get(c, "cartItems")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, storage.Put(c, "cartItems", []byte(`[{"id":"p1-Red"}]`)))
			value, found, err := storage.Get(c, "cartItems")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `[{"id":"p1-Red"}]`, string(value))

			require.NoError(t, storage.Put(c, "cartItems", []byte(`[]`)))
			value, _, _ = storage.Get(c, "cartItems")
			assert.Equal(t, `[]`, string(value))

			require.NoError(t, storage.Delete(c, "cartItems"))
			_, found, err = storage.Get(c, "cartItems")
			require.NoError(t, err)
			assert.False(t, found)

			assert.NoError(t, storage.Delete(c, "cartItems"), "deleting a missing key is fine")
		})
	}

	t.Run("redis keys are namespaced per owner", func(t *testing.T) {
		c := context.TODO()
		require.NoError(t, NewRedisStorage(client, "shopper_2").Put(c, "cartItems", []byte(`[]`)))
		assert.True(t, mr.Exists("canpayshop:shopper_2:cartItems"))

		_, found, err := NewRedisStorage(client, "shopper_3").Get(c, "cartItems")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("file storage rejects path-like keys", func(t *testing.T) {
		err := fileStorage.Put(context.TODO(), "../escape", []byte(`x`))
		assert.Error(t, err)
	})
}

func TestNew(t *testing.T) {
	c := context.TODO()

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		storage, cleanup, err := New(c, Config{Backend: BackendRedis, RedisAddr: mr.Addr(), Owner: "kiosk_1"})
		require.NoError(t, err)
		defer cleanup()

		require.NoError(t, storage.Put(c, "cartItems", []byte(`[]`)))
		assert.True(t, mr.Exists("canpayshop:kiosk_1:cartItems"))
	})

	t.Run("Redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, _, err := New(c, Config{Backend: BackendRedis, RedisAddr: addr})
		assert.Error(t, err)
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()

		storage, cleanup, err := New(c, Config{Backend: BackendFile, Dir: dir})
		require.NoError(t, err)
		defer cleanup()

		require.NoError(t, storage.Put(c, "cartItems", []byte(`[]`)))
		assert.FileExists(t, filepath.Join(dir, "cartItems.json"))
	})

	t.Run("Unknown backend", func(t *testing.T) {
		_, _, err := New(c, Config{Backend: "cookie"})
		assert.Error(t, err)
	})
}
