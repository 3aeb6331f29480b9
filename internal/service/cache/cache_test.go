package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

type testPayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	svc, err := NewCacheService(CacheConfig{Host: mr.Host(), Port: port}, nil)
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestCacheRoundTrip(t *testing.T) {
	svc, _ := newTestCache(t)
	ctx := context.Background()

	in := testPayload{Name: "coach", Count: 3}
	if err := svc.Set(ctx, "k1", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out testPayload
	if err := svc.Get(ctx, "k1", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCacheMissLeavesDestUntouched(t *testing.T) {
	svc, _ := newTestCache(t)

	out := testPayload{Name: "sentinel"}
	if err := svc.Get(context.Background(), "missing", &out); err != nil {
		t.Fatalf("Get miss: %v", err)
	}
	if out.Name != "sentinel" {
		t.Fatalf("dest mutated on miss: %+v", out)
	}
}

func TestCacheDel(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "k1", testPayload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := svc.Del(ctx, "k1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if mr.Exists("k1") {
		t.Fatalf("key survived delete")
	}
}

func TestCacheTTL(t *testing.T) {
	svc, mr := newTestCache(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "k1", testPayload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var out testPayload
	if err := svc.Get(ctx, "k1", &out); err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if out.Name != "" {
		t.Fatalf("expired key still readable: %+v", out)
	}
}
