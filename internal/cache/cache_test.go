package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0), mr
}

func TestClient_SetGetDelete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mr.FastForward(2 * time.Minute)
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestClient_FailsSafeWhenRedisIsDown(t *testing.T) {
	c, mr := newTestClient(t)
	mr.Close()
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestClient_EvalInt(t *testing.T) {
	c, _ := newTestClient(t)
	script := redis.NewScript(`return redis.call("INCRBY", KEYS[1], ARGV[1])`)

	n, err := c.EvalInt(context.Background(), script, []string{"counter"}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestClient_NilReceiver(t *testing.T) {
	var c *Client
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	_, err = c.EvalInt(ctx, redis.NewScript("return 1"), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
