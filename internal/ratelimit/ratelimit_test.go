package ratelimit

import (
	"testing"
	"time"
)

func TestNoopAllowsEverything(t *testing.T) {
	var lim Noop
	for i := 0; i < 50; i++ {
		allowed, retry := lim.Allow("anyone")
		if !allowed || retry != 0 {
			t.Fatalf("Noop.Allow: got allowed=%v retry=%d", allowed, retry)
		}
	}
}

func TestInMemoryWithinLimit(t *testing.T) {
	lim := NewInMemory(3, time.Minute)
	for i := 0; i < 3; i++ {
		allowed, retry := lim.Allow("client")
		if !allowed || retry != 0 {
			t.Fatalf("request %d: got allowed=%v retry=%d", i+1, allowed, retry)
		}
	}
}

func TestInMemoryOverLimit(t *testing.T) {
	lim := NewInMemory(2, time.Minute)
	lim.Allow("client")
	lim.Allow("client")
	allowed, retry := lim.Allow("client")
	if allowed {
		t.Fatal("third request should be rejected")
	}
	if retry <= 0 {
		t.Fatalf("want positive retry-after, got %d", retry)
	}
}

func TestInMemoryKeysAreIndependent(t *testing.T) {
	lim := NewInMemory(1, time.Minute)
	lim.Allow("a")
	if allowed, _ := lim.Allow("b"); !allowed {
		t.Fatal("fresh key should be allowed")
	}
	if allowed, _ := lim.Allow("a"); allowed {
		t.Fatal("exhausted key should be rejected")
	}
}

func TestInMemoryWindowSlides(t *testing.T) {
	lim := NewInMemory(1, time.Minute)
	now := time.Unix(1000, 0)
	lim.nowFunc = func() time.Time { return now }

	lim.Allow("client")
	if allowed, _ := lim.Allow("client"); allowed {
		t.Fatal("should be rejected inside window")
	}

	now = now.Add(61 * time.Second)
	if allowed, _ := lim.Allow("client"); !allowed {
		t.Fatal("should be allowed once the window has passed")
	}
}
