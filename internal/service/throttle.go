package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per e-mail inside a window that opens
// with the first failure.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RedisThrottle keeps failure counters in Redis with a TTL equal to the
// window, so a blocked e-mail unblocks on its own.
type RedisThrottle struct {
	client      redis.Cmdable
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// NewRedisThrottle builds a throttle whose keys are namespaced by label.
func NewRedisThrottle(client redis.Cmdable, label string, maxAttempts int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{
		client:      client,
		prefix:      "login_failures:" + label + ":",
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

func (t *RedisThrottle) key(email string) string {
	return t.prefix + strings.ToLower(strings.TrimSpace(email))
}

// Blocked reports whether email has used up its attempts in the window.
func (t *RedisThrottle) Blocked(ctx context.Context, email string) (bool, error) {
	count, err := t.client.Get(ctx, t.key(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read login failures: %w", err)
	}
	return count >= t.maxAttempts, nil
}

// Fail records one failed attempt. The counter and its TTL are written in a
// single MULTI/EXEC so a counter never exists without an expiry.
func (t *RedisThrottle) Fail(ctx context.Context, email string) error {
	key := t.key(email)
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("count login failure: %w", err)
	}
	return nil
}

// Reset clears the failures of email after a successful login.
func (t *RedisThrottle) Reset(ctx context.Context, email string) error {
	if err := t.client.Del(ctx, t.key(email)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}

// NoopThrottle never blocks.
type NoopThrottle struct{}

func (NoopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (NoopThrottle) Fail(context.Context, string) error            { return nil }
func (NoopThrottle) Reset(context.Context, string) error           { return nil }
