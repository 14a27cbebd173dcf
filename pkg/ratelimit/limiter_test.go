package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucketAllowsUpToCapacity(t *testing.T) {
	tb := NewTokenBucket(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !tb.Allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if tb.Allow() {
		t.Error("request beyond capacity should be denied")
	}
}

func TestTokenBucketRefills(t *testing.T) {
	tb := NewTokenBucket(1, 20*time.Millisecond)

	if !tb.Allow() {
		t.Fatal("first request should be allowed")
	}
	if tb.Allow() {
		t.Fatal("bucket should be empty")
	}

	time.Sleep(30 * time.Millisecond)

	if !tb.Allow() {
		t.Error("bucket should have refilled")
	}
}

func TestTokenBucketWaitBlocksUntilRefill(t *testing.T) {
	tb := NewTokenBucket(1, 20*time.Millisecond)
	tb.Allow()

	start := time.Now()
	tb.Wait()
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("Wait returned too early: %v", elapsed)
	}
}

func TestUnlimitedNeverBlocks(t *testing.T) {
	var l Limiter = Unlimited{}
	for i := 0; i < 1000; i++ {
		if !l.Allow() {
			t.Fatal("unlimited limiter denied a request")
		}
	}
	l.Wait() // must return immediately
}
