package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/coworking/internal/rpc"
)

const throttleWindow = 15 * time.Minute

func newRedisThrottle(t *testing.T, limit int) (*RedisThrottle, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisThrottle(client, "client", limit, throttleWindow), server
}

func TestRedisThrottle_BlocksAtLimit(t *testing.T) {
	throttle, _ := newRedisThrottle(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		blocked, err := throttle.Blocked(ctx, "ada@example.com")
		if err != nil {
			t.Fatalf("Blocked: %v", err)
		}
		if blocked {
			t.Fatalf("blocked after %d failures, limit is 3", i)
		}
		if err := throttle.Fail(ctx, "ada@example.com"); err != nil {
			t.Fatalf("Fail: %v", err)
		}
	}

	blocked, err := throttle.Blocked(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("Blocked: %v", err)
	}
	if !blocked {
		t.Fatalf("expected block after 3 failures")
	}
	if blocked, _ := throttle.Blocked(ctx, "grace@example.com"); blocked {
		t.Fatalf("failures of one e-mail must not block another")
	}
}

func TestRedisThrottle_KeyIsNormalisedAndNamespaced(t *testing.T) {
	throttle, server := newRedisThrottle(t, 2)
	ctx := context.Background()

	_ = throttle.Fail(ctx, "  Ada@Example.COM ")
	_ = throttle.Fail(ctx, "ada@example.com")

	if got, err := server.Get("login_failures:client:ada@example.com"); err != nil || got != "2" {
		t.Fatalf("expected a single normalised counter at 2, got %q (%v)", got, err)
	}
	if blocked, _ := throttle.Blocked(ctx, "ADA@example.com"); !blocked {
		t.Fatalf("expected lookups to normalise the e-mail too")
	}

	adminClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = adminClient.Close() })
	admin := NewRedisThrottle(adminClient, "admin", 2, throttleWindow)
	if blocked, _ := admin.Blocked(ctx, "ada@example.com"); blocked {
		t.Fatalf("client failures must not block the admin domain")
	}
}

func TestRedisThrottle_WindowStartsAtFirstFailure(t *testing.T) {
	throttle, server := newRedisThrottle(t, 2)
	ctx := context.Background()
	key := "login_failures:client:ada@example.com"

	if err := throttle.Fail(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if ttl := server.TTL(key); ttl != throttleWindow {
		t.Fatalf("expected ttl %s on first failure, got %s", throttleWindow, ttl)
	}

	server.FastForward(5 * time.Minute)
	if err := throttle.Fail(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if ttl := server.TTL(key); ttl != throttleWindow-5*time.Minute {
		t.Fatalf("later failures must not extend the window, ttl %s", ttl)
	}
	if blocked, _ := throttle.Blocked(ctx, "ada@example.com"); !blocked {
		t.Fatalf("expected block inside the window")
	}

	server.FastForward(throttleWindow)
	if blocked, _ := throttle.Blocked(ctx, "ada@example.com"); blocked {
		t.Fatalf("expected the block to lapse with the window")
	}
}

func TestRedisThrottle_CounterNeverOutlivesWindow(t *testing.T) {
	throttle, server := newRedisThrottle(t, 5)
	ctx := context.Background()
	key := "login_failures:client:ada@example.com"

	// A counter left without expiry picks one up on the next failure.
	if err := server.Set(key, "4"); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	if err := throttle.Fail(ctx, "ada@example.com"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if ttl := server.TTL(key); ttl <= 0 {
		t.Fatalf("counter at limit has no expiry")
	}

	server.SetError("ERR injected failure")
	if err := throttle.Fail(ctx, "grace@example.com"); err == nil {
		t.Fatalf("expected Fail to report the redis error")
	}
	server.SetError("")
	if server.Exists("login_failures:client:grace@example.com") {
		t.Fatalf("a failed transaction must not leave a counter behind")
	}

	server.FastForward(throttleWindow)
	if server.Exists(key) {
		t.Fatalf("counter outlived its window")
	}
}

func TestRedisThrottle_Reset(t *testing.T) {
	throttle, server := newRedisThrottle(t, 1)
	ctx := context.Background()

	_ = throttle.Fail(ctx, "ada@example.com")
	if blocked, _ := throttle.Blocked(ctx, "ada@example.com"); !blocked {
		t.Fatalf("expected block")
	}
	if err := throttle.Reset(ctx, " ADA@example.com"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if server.Exists("login_failures:client:ada@example.com") {
		t.Fatalf("expected counter removed")
	}
	if blocked, _ := throttle.Blocked(ctx, "ada@example.com"); blocked {
		t.Fatalf("expected unblocked after reset")
	}
}

func TestRedisThrottle_ServiceFailsOpenWhenRedisDown(t *testing.T) {
	throttle, server := newRedisThrottle(t, 1)
	f := newFixture(t, adminSecret, clientSecret)
	f.client.throttle = throttle
	f.registerClient(t, "ada@example.com")
	ctx := context.Background()

	server.Close()
	if _, err := f.client.Login(ctx, &rpc.LoginRequest{Email: "ada@example.com", Password: password}); err != nil {
		t.Fatalf("expected login to succeed with redis down, got %v", err)
	}
}
