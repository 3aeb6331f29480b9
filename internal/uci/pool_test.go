package uci

import (
	"os"
	"path/filepath"
	"testing"
)

func fakeEngineBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fake binary: %v", err)
	}
	return path
}

func TestNewPoolHonorsCapacity(t *testing.T) {
	p, err := NewPool(PoolConfig{
		BinaryPath: fakeEngineBinary(t),
		Options:    Options{Threads: 1, HashMB: 16, MultiPV: 3},
		Capacity:   3,
	})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if p.capacity != 3 {
		t.Fatalf("capacity = %d, want 3", p.capacity)
	}
	if cap(p.idle) != 3 {
		t.Fatalf("idle channel cap = %d, want 3", cap(p.idle))
	}
}

func TestNewPoolDefaultsCapacity(t *testing.T) {
	p, err := NewPool(PoolConfig{
		BinaryPath: fakeEngineBinary(t),
		Options:    Options{Threads: 1, HashMB: 16, MultiPV: 3},
	})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if p.capacity < 2 || p.capacity > 4 {
		t.Fatalf("default capacity = %d, want 2..4", p.capacity)
	}
}

func TestNewPoolRejectsMissingBinary(t *testing.T) {
	if _, err := NewPool(PoolConfig{
		BinaryPath: filepath.Join(t.TempDir(), "no-such-engine"),
		Options:    Options{Threads: 1, HashMB: 16, MultiPV: 3},
	}); err == nil {
		t.Fatalf("expected error for missing binary")
	}
}
