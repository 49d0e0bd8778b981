package database

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis(t *testing.T) {
	t.Run("happy: connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb, err := NewRedis(t.Context(), RedisInfo{Addr: mr.Addr()})
		require.NoError(t, err)
		defer rdb.Close()

		require.NoError(t, rdb.Set(t.Context(), "k", "v", 0).Err())
		got, err := mr.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("bad: unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedis(t.Context(), RedisInfo{Addr: addr})
		assert.Error(t, err)
	})
}

func TestNewPool_BadURL(t *testing.T) {
	_, err := NewPool(t.Context(), "://not-a-url")
	assert.Error(t, err)
}
