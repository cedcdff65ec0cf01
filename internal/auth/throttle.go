package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"postboard/internal/cache"
)

// Each script prunes entries older than the window before acting, so the
// sorted set only ever holds failures inside the trailing window.
var (
	attemptsScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
return redis.call('ZCARD', KEYS[1])
`)

	hitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return redis.call('ZCARD', KEYS[1])
`)

	availableInScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
local limit = tonumber(ARGV[3])
if count < limit then
  return 0
end
local entry = redis.call('ZRANGE', KEYS[1], count - limit, count - limit, 'WITHSCORES')
return tonumber(entry[2]) + tonumber(ARGV[4]) - tonumber(ARGV[2])
`)
)

// Throttle is a sliding window failure counter shared through Redis.
type Throttle struct {
	cache  *cache.Client
	window time.Duration
	now    func() time.Time
}

// NewThrottle creates a throttle counting failures over the trailing window.
func NewThrottle(cache *cache.Client, window time.Duration) *Throttle {
	return &Throttle{cache: cache, window: window, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (t *Throttle) WithClock(now func() time.Time) *Throttle {
	t.now = now
	return t
}

// LoginThrottleKey derives the throttle key for a client IP.
func LoginThrottleKey(ip string) string {
	return "login:" + strings.ToLower(ip)
}

func (t *Throttle) bounds() (now, cutoff string) {
	ms := t.now().UnixMilli()
	return strconv.FormatInt(ms, 10), strconv.FormatInt(ms-t.window.Milliseconds(), 10)
}

// Attempts returns the number of failures recorded inside the window.
func (t *Throttle) Attempts(ctx context.Context, key string) (int64, error) {
	_, cutoff := t.bounds()
	return t.cache.EvalInt(ctx, attemptsScript, []string{key}, cutoff)
}

// TooManyAttempts reports whether key has reached limit failures inside the window.
func (t *Throttle) TooManyAttempts(ctx context.Context, key string, limit int) (bool, error) {
	count, err := t.Attempts(ctx, key)
	if err != nil {
		return false, err
	}
	return count >= int64(limit), nil
}

// Hit records one failure and refreshes the key expiry. It returns the count inside the window.
func (t *Throttle) Hit(ctx context.Context, key string) (int64, error) {
	now, cutoff := t.bounds()
	return t.cache.EvalInt(ctx, hitScript, []string{key}, cutoff, now, uuid.NewString(), t.window.Milliseconds())
}

// AvailableIn returns the seconds until key drops below limit failures, or 0 when it already has.
func (t *Throttle) AvailableIn(ctx context.Context, key string, limit int) (int, error) {
	now, cutoff := t.bounds()
	ms, err := t.cache.EvalInt(ctx, availableInScript, []string{key}, cutoff, now, limit, t.window.Milliseconds())
	if err != nil {
		return 0, err
	}
	if ms <= 0 {
		return 0, nil
	}
	return int((ms + 999) / 1000), nil
}
