package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAllowFixedWindow_EnforcesLimit(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := AllowFixedWindow(ctx, rdb, "login:alice", 3, time.Minute)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}

	ok, err := AllowFixedWindow(ctx, rdb, "login:alice", 3, time.Minute)
	if err != nil {
		t.Fatalf("overflow attempt: %v", err)
	}
	if ok {
		t.Fatalf("fourth attempt should be rejected")
	}
}

func TestAllowFixedWindow_KeysAreIndependent(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	if ok, _ := AllowFixedWindow(ctx, rdb, "login:a", 1, time.Minute); !ok {
		t.Fatalf("first key should be allowed")
	}
	if ok, _ := AllowFixedWindow(ctx, rdb, "login:b", 1, time.Minute); !ok {
		t.Fatalf("second key should be allowed")
	}
	if ok, _ := AllowFixedWindow(ctx, rdb, "login:a", 1, time.Minute); ok {
		t.Fatalf("first key should now be exhausted")
	}
}

func TestResetFixedWindow(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	if ok, _ := AllowFixedWindow(ctx, rdb, "login:a", 1, time.Minute); !ok {
		t.Fatalf("first attempt should be allowed")
	}
	if err := ResetFixedWindow(ctx, rdb, "login:a"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ok, _ := AllowFixedWindow(ctx, rdb, "login:a", 1, time.Minute); !ok {
		t.Fatalf("attempt after reset should be allowed")
	}
}

func TestAllowFixedWindow_ValidatesArguments(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	if _, err := AllowFixedWindow(ctx, nil, "k", 1, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := AllowFixedWindow(ctx, rdb, "", 1, time.Minute); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, err := AllowFixedWindow(ctx, rdb, "k", 0, time.Minute); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := AllowFixedWindow(ctx, rdb, "k", 1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
