package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/chimera-protocol/internal/redis"
)

func TestNewClient(t *testing.T) {
	_, err := redis.NewClient("", nil)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := redis.NewClient(mr.Addr(), &redis.Options{PoolSize: 2})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClientFromURL(t *testing.T) {
	_, err := redis.NewClientFromURL("")
	assert.Error(t, err)

	_, err = redis.NewClientFromURL("http://not-redis")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := redis.NewClientFromURL("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := client.Get(context.Background(), "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = client.Get(context.Background(), "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)
}
