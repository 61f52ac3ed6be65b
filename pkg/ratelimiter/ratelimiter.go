package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func key(userID uint, action string) string {
	return fmt.Sprintf("rate_limit:user:%d:%s", userID, action)
}

// CheckAndSetRateLimit reports whether the action is allowed and, if so,
// locks it for the given window. A nil client allows everything.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, userID uint, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(userID, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// IncrementAttempts counts one attempt in a window that starts with the first
// attempt and returns the count so far. A nil client counts nothing.
func IncrementAttempts(ctx context.Context, rdb *redis.Client, userID uint, action string, window time.Duration) (int64, error) {
	if rdb == nil {
		return 0, nil
	}

	k := key(userID, action)
	n, err := rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count attempt in redis: %w", err)
	}
	if n == 1 {
		if err := rdb.Expire(ctx, k, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set attempt window in redis: %w", err)
		}
	}
	return n, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, userID uint, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(userID, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, userID uint, action string) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, key(userID, action)).Err()
}
