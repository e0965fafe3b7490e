package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unibridge-backend/internal/platform/logger"
)

func newTestLimiter(t *testing.T) (*SlidingWindowLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(logger.NewNop(), rdb, 3, 120*time.Second)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestSlidingWindowLimiter(t *testing.T) {
	l, mr, now := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, ok)
		*now = now.Add(time.Second)
	}
	ok, err := l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := mr.ZMembers("ub:ratelimit:user-1")
	require.NoError(t, err)
	assert.Len(t, members, 3)

	ok, err = l.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, ok)

	*now = now.Add(118 * time.Second)
	ok, err = l.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok, "oldest entry left the window")
}

func TestSlidingWindowLimiterSurfacesRedisErrors(t *testing.T) {
	l, mr, _ := newTestLimiter(t)
	mr.Close()

	_, err := l.Allow(context.Background(), "user-1")
	assert.Error(t, err)
}
