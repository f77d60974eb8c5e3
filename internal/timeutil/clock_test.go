package timeutil

import (
	"context"
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_SinceUntil(t *testing.T) {
	clock := RealClock{}
	if d := clock.Since(time.Now().Add(-time.Second)); d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
	if d := clock.Until(time.Now().Add(time.Hour)); d < 59*time.Minute {
		t.Errorf("Until() returned %v, expected >= 59m", d)
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Advance(time.Minute)
	if got := clock.Since(start); got != time.Minute {
		t.Errorf("Since() = %v, want 1m", got)
	}

	clock.Sleep(2 * time.Second)
	clock.Sleep(-time.Second)
	if got := clock.Now(); !got.Equal(start.Add(time.Minute + 2*time.Second)) {
		t.Errorf("Now() = %v after sleeps", got)
	}
	if got := clock.Sleeps(); len(got) != 2 || got[0] != 2*time.Second {
		t.Errorf("Sleeps() = %v", got)
	}

	clock.Set(start)
	if got := clock.Until(start.Add(time.Hour)); got != time.Hour {
		t.Errorf("Until() = %v, want 1h", got)
	}
}

func TestPacerFollowsTimestamps(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	p := NewPacer(clock, 1)
	ctx := context.Background()

	for _, ts := range []float64{10.0, 10.1, 10.25, 10.2, 10.5} {
		if err := p.Wait(ctx, ts); err != nil {
			t.Fatalf("Wait(%v) error: %v", ts, err)
		}
	}

	want := []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 250 * time.Millisecond}
	got := clock.Sleeps()
	if len(got) != len(want) {
		t.Fatalf("Sleeps() = %v, want %v", got, want)
	}
	for i := range want {
		if diff := got[i] - want[i]; diff < -time.Microsecond || diff > time.Microsecond {
			t.Errorf("sleep %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPacerSpeed(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	p := NewPacer(clock, 2)
	ctx := context.Background()

	_ = p.Wait(ctx, 0)
	_ = p.Wait(ctx, 1)
	if got := clock.Sleeps(); len(got) != 1 || got[0] != 500*time.Millisecond {
		t.Errorf("Sleeps() = %v, want [500ms]", got)
	}

	p.Reset()
	_ = p.Wait(ctx, 100)
	if got := clock.Sleeps(); len(got) != 1 {
		t.Errorf("Reset should re-anchor without sleeping, got %v", got)
	}
}

func TestPacerCancelled(t *testing.T) {
	p := NewPacer(NewMockClock(time.Unix(0, 0)), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx, 0); err != context.Canceled {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
}

func TestPacerCancelledDuringGap(t *testing.T) {
	p := NewPacer(RealClock{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Wait(ctx, 0); err != nil {
		t.Fatalf("first Wait() error: %v", err)
	}
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := p.Wait(ctx, 3600)
	if err != context.Canceled {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Wait() returned after %v, want prompt return on cancel", elapsed)
	}
}

func TestSleepContextMockClock(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	if err := SleepContext(context.Background(), clock, time.Second); err != nil {
		t.Fatalf("SleepContext() error: %v", err)
	}
	if got := clock.Now(); !got.Equal(time.Unix(1, 0)) {
		t.Errorf("Now() = %v, want %v", got, time.Unix(1, 0))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, clock, time.Second); err != context.Canceled {
		t.Errorf("SleepContext() = %v, want context.Canceled", err)
	}
	if got := clock.Sleeps(); len(got) != 1 {
		t.Errorf("Sleeps() = %v, want one recorded sleep", got)
	}
}
