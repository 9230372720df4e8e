package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	svc, err := New(Options{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestHealthCheck(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := map[string]int{"slots": 12}
	if err := svc.CacheSet(ctx, "avail:test", in, 60); err != nil {
		t.Fatalf("CacheSet: %v", err)
	}

	var out map[string]int
	if err := svc.CacheGet(ctx, "avail:test", &out); err != nil {
		t.Fatalf("CacheGet: %v", err)
	}
	if out["slots"] != 12 {
		t.Fatalf("got %v, want slots=12", out)
	}
}

func TestFlushCache(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	mr.Set("avail:nyc:2025-06-01", "x")
	mr.Set("avail:london:2025-06-01", "y")
	mr.Set("task:abc", "z")

	n, err := svc.FlushCache(ctx, "avail:*")
	if err != nil {
		t.Fatalf("FlushCache: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed %d keys, want 2", n)
	}
	if !mr.Exists("task:abc") {
		t.Fatal("unrelated key was removed")
	}
}
