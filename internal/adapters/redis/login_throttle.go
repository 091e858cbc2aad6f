package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed login attempts per account in Redis. The
// counter key carries the lockout window as its TTL, so a lockout clears
// itself once the window elapses.
type LoginThrottle struct {
	client redis.UniversalClient
	prefix string
}

// NewLoginThrottle creates a Redis-backed login throttle.
func NewLoginThrottle(client redis.UniversalClient) *LoginThrottle {
	return &LoginThrottle{
		client: client,
		prefix: "login-failures:",
	}
}

func (t *LoginThrottle) Failures(ctx context.Context, username string) (int, error) {
	val, err := t.client.Get(ctx, t.prefix+username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse failure count: %w", err)
	}
	return count, nil
}

func (t *LoginThrottle) RecordFailure(ctx context.Context, username string, window time.Duration) (int, error) {
	key := t.prefix + username

	// INCR then set the window TTL only on the first failure, so the window
	// runs from the first miss rather than sliding with every retry.
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if expireErr := t.client.Expire(ctx, key, window).Err(); expireErr != nil {
			return 0, fmt.Errorf("redis expire: %w", expireErr)
		}
	}
	return int(count), nil
}

func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.client.Del(ctx, t.prefix+username).Err()
}
