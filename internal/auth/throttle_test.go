package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/cache"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestThrottle(t *testing.T) (*Throttle, *fakeClock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	th := NewThrottle(cache.New(mr.Addr(), "", 0), time.Minute).WithClock(clock.Now)
	return th, clock, mr
}

func TestLoginThrottleKey(t *testing.T) {
	assert.Equal(t, "login:10.0.0.1", LoginThrottleKey("10.0.0.1"))
	assert.Equal(t, "login:fe80::abcd", LoginThrottleKey("FE80::ABCD"))
}

func TestThrottle_TripsAfterLimit(t *testing.T) {
	th, clock, _ := newTestThrottle(t)
	ctx := context.Background()
	key := LoginThrottleKey("127.0.0.1")

	for i := 1; i <= 5; i++ {
		blocked, err := th.TooManyAttempts(ctx, key, 5)
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d should be allowed", i)

		count, err := th.Hit(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
		clock.Advance(time.Second)
	}

	blocked, err := th.TooManyAttempts(ctx, key, 5)
	require.NoError(t, err)
	assert.True(t, blocked)

	retry, err := th.AvailableIn(ctx, key, 5)
	require.NoError(t, err)
	// first failure was 5s ago, so it leaves the window in 55s
	assert.Equal(t, 55, retry)
}

func TestThrottle_WindowSlides(t *testing.T) {
	th, clock, _ := newTestThrottle(t)
	ctx := context.Background()
	key := LoginThrottleKey("127.0.0.1")

	for i := 0; i < 5; i++ {
		_, err := th.Hit(ctx, key)
		require.NoError(t, err)
		clock.Advance(10 * time.Second)
	}
	// hits at t=0,10,20,30,40; now t=50
	blocked, err := th.TooManyAttempts(ctx, key, 5)
	require.NoError(t, err)
	assert.True(t, blocked)

	clock.Advance(10 * time.Second) // t=60, the t=0 hit falls out
	blocked, err = th.TooManyAttempts(ctx, key, 5)
	require.NoError(t, err)
	assert.False(t, blocked)

	n, err := th.Attempts(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	clock.Advance(61 * time.Second)
	n, err = th.Attempts(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestThrottle_KeysAreIndependent(t *testing.T) {
	th, _, _ := newTestThrottle(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := th.Hit(ctx, LoginThrottleKey("10.0.0.1"))
		require.NoError(t, err)
	}

	blocked, err := th.TooManyAttempts(ctx, LoginThrottleKey("10.0.0.2"), 5)
	require.NoError(t, err)
	assert.False(t, blocked)

	retry, err := th.AvailableIn(ctx, LoginThrottleKey("10.0.0.2"), 5)
	require.NoError(t, err)
	assert.Zero(t, retry)
}

func TestThrottle_SetsExpiry(t *testing.T) {
	th, _, mr := newTestThrottle(t)
	key := LoginThrottleKey("127.0.0.1")

	_, err := th.Hit(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestThrottle_FailsClosedWithoutRedis(t *testing.T) {
	th, _, mr := newTestThrottle(t)
	mr.Close()

	_, err := th.TooManyAttempts(context.Background(), "login:x", 5)
	assert.Error(t, err)
}
