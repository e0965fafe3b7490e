package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

// slidingWindowScript trims entries at or before now-window, then admits and records
// the call when fewer than limit remain. Scores are unix milliseconds.
var slidingWindowScript = goredis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// SlidingWindowLimiter shares a per-key sliding window between processes through a
// sorted set per key.
type SlidingWindowLimiter struct {
	log    *logger.Logger
	rdb    goredis.Scripter
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindowLimiter(log *logger.Logger, rdb goredis.Scripter, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		log:    log.With("service", "RedisRateLimiter"),
		rdb:    rdb,
		prefix: "ub:ratelimit:",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.rdb,
		[]string{l.prefix + key},
		now, l.window.Milliseconds(), l.limit, fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Int()
	if err != nil {
		l.log.Warn("rate limit script failed", "key", key, "error", err)
		return false, fmt.Errorf("redis rate limit: %w", err)
	}
	return res == 1, nil
}
