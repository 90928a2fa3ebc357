package repository

import (
	"testing"
	"time"
)

func TestNewPushKey_OrderedAcrossTime(t *testing.T) {
	// Keys minted at later times must sort after earlier ones, so backends
	// that order entries by key preserve insertion order.
	base := time.UnixMilli(1700000000000)

	prev := NewPushKey(base)
	for i := 1; i <= 5; i++ {
		next := NewPushKey(base.Add(time.Duration(i) * time.Millisecond))
		if next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		prev = next
	}
}

func TestNewPushKey_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k := NewPushKey(now)
		if seen[k] {
			t.Fatalf("duplicate push key %s", k)
		}
		seen[k] = true
	}
}

func TestNewPushKey_Format(t *testing.T) {
	k := NewPushKey(time.UnixMilli(1700000000000))
	if len(k) != 13+1+12 {
		t.Errorf("unexpected key length %d: %s", len(k), k)
	}
	if k[:13] != "1700000000000" {
		t.Errorf("expected millisecond prefix, got %s", k)
	}
}
