package cooldown

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard stores stamps as keys expiring after the window, so several bot
// processes share one cooldown. SET NX makes the check and the stamp atomic.
// Expiry follows the Redis server clock rather than the now argument.
type RedisGuard struct {
	rdb    redis.UniversalClient
	prefix string
	window time.Duration
}

// NewRedisGuard creates a guard whose keys live under "cooldown:<kind>:".
func NewRedisGuard(rdb redis.UniversalClient, kind string, window time.Duration) *RedisGuard {
	return &RedisGuard{
		rdb:    rdb,
		prefix: "cooldown:" + kind + ":",
		window: window,
	}
}

// Window returns the cooldown window.
func (g *RedisGuard) Window() time.Duration {
	return g.window
}

func (g *RedisGuard) key(userID int64) string {
	return g.prefix + strconv.FormatInt(userID, 10)
}

// CheckAndStamp implements Guard.
func (g *RedisGuard) CheckAndStamp(ctx context.Context, userID int64, now time.Time) (Result, error) {
	key := g.key(userID)
	// The second pass covers a key expiring between SETNX and PTTL.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := g.rdb.SetNX(ctx, key, now.UnixMilli(), g.window).Result()
		if err != nil {
			return Result{}, fmt.Errorf("failed to stamp cooldown: %w", err)
		}
		if ok {
			return Result{Allowed: true}, nil
		}

		ttl, err := g.rdb.PTTL(ctx, key).Result()
		if err != nil {
			return Result{}, fmt.Errorf("failed to read cooldown ttl: %w", err)
		}
		if ttl > 0 {
			return Result{Allowed: false, Remaining: ttl}, nil
		}
	}
	return Result{Allowed: false, Remaining: time.Millisecond}, nil
}

// Remaining implements Guard. A missing key means the window is open.
func (g *RedisGuard) Remaining(ctx context.Context, userID int64, _ time.Time) (time.Duration, error) {
	ttl, err := g.rdb.PTTL(ctx, g.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown ttl: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
