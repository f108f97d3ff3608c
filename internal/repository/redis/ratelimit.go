package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// luaSlidingWindow counts hits in a sorted set scored by unix millis. A hit
// over the limit is not recorded, so a blocked caller's window still drains.
//
//	KEYS[1] window key
//	ARGV    now_ms, window_ms, limit, member
//
// Returns {allowed 0|1, hits in window, retry_ms}.
const luaSlidingWindow = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local hits = redis.call('ZCARD', KEYS[1])

if hits >= limit then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local retry = window
  if oldest[2] then
    retry = tonumber(oldest[2]) + window - now
  end
  if retry < 0 then retry = 0 end
  return {0, hits, retry}
end

redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, hits + 1, 0}
`

// SlidingWindowLimiter allows at most limit hits per window for each suffix,
// e.g. per client IP.
type SlidingWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	script *redis.Script
	now    func() time.Time
}

func NewSlidingWindowLimiter(
	rdb *redis.Client,
	prefix string,
	limit int,
	window time.Duration,
) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		script: redis.NewScript(luaSlidingWindow),
		now:    time.Now,
	}
}

func (l *SlidingWindowLimiter) key(suffix string) string {
	return l.prefix + ":" + suffix
}

// Allow records a hit for suffix if it fits in the window.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error) {
	key := l.key(suffix)

	vals, err := l.script.Run(
		ctx,
		l.rdb,
		[]string{key},
		l.now().UnixMilli(), l.window.Milliseconds(), l.limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, 0, 0, fmt.Errorf("ratelimit %s: %w", key, err)
	}
	if len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("ratelimit %s: unexpected reply %v", key, vals)
	}

	return vals[0] == 1, vals[1], time.Duration(vals[2]) * time.Millisecond, nil
}

// Reset forgets every hit recorded for suffix.
func (l *SlidingWindowLimiter) Reset(ctx context.Context, suffix string) error {
	return l.rdb.Del(ctx, l.key(suffix)).Err()
}
