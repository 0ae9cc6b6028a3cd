package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_FirstCallDoesNotBlock(t *testing.T) {
	l := NewEvery(500*time.Millisecond, 0)

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("first Wait blocked for %v, expected immediate return", elapsed)
	}
}

func TestLimiter_EnforcesInterval(t *testing.T) {
	interval := 60 * time.Millisecond
	l := NewEvery(interval, 0)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error on wait %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// Three operations means two full intervals of waiting.
	if min := 2 * interval; elapsed < min {
		t.Errorf("3 waits took %v, expected at least %v", elapsed, min)
	}
}

func TestLimiter_ZeroIntervalNeverBlocks(t *testing.T) {
	l := NewEvery(0, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("unlimited limiter blocked for %v", elapsed)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	l := NewEvery(5*time.Second, 0)
	ctx, cancel := context.WithCancel(context.Background())

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel()
	if err := l.Wait(ctx); err == nil {
		t.Fatal("expected context error from cancelled Wait")
	}
}

func TestNewLimiter_FromRPS(t *testing.T) {
	l := NewLimiter(2, 0)
	if got, want := l.Interval(), 500*time.Millisecond; got != want {
		t.Errorf("interval = %v, want %v", got, want)
	}

	if l := NewLimiter(0, 0); l.Interval() != 0 {
		t.Errorf("rps=0 should produce a non-blocking limiter")
	}
}

func TestPause_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Pause(ctx, time.Second); err == nil {
		t.Fatal("expected error from cancelled Pause")
	}
}

func TestPause_ZeroReturnsImmediately(t *testing.T) {
	start := time.Now()
	if err := Pause(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Pause(0) should return immediately")
	}
}
