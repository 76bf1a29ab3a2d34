package application

import (
	"sync"
	"testing"
	"time"
)

func TestBreathingPhaseAt(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		want    BreathingPhase
	}{
		{0, BreathingInhale},
		{3 * time.Second, BreathingInhale},
		{4 * time.Second, BreathingHold},
		{10 * time.Second, BreathingHold},
		{11 * time.Second, BreathingRelease},
		{18 * time.Second, BreathingRelease},
		{19 * time.Second, BreathingInhale},
		{19*time.Second + 3*time.Second, BreathingInhale},
		{2 * 19 * time.Second, BreathingInhale},
	}

	for _, tc := range cases {
		if got := BreathingPhaseAt(tc.elapsed); got != tc.want {
			t.Fatalf("phase at %s: expected %q, got %q", tc.elapsed, tc.want, got)
		}
	}
}

func TestBreathingExercise_Snapshot(t *testing.T) {
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	now := base
	exercise := NewBreathingExercise(BreathingConfig{
		Now:          func() time.Time { return now },
		TickInterval: time.Hour, // callbacks stay quiet; the snapshot is derived
	})

	if snapshot := exercise.Snapshot(); snapshot.Running {
		t.Fatalf("expected a stopped exercise to report not running")
	}

	exercise.Start()
	defer exercise.Stop()

	snapshot := exercise.Snapshot()
	if !snapshot.Running || snapshot.Phase != BreathingInhale {
		t.Fatalf("expected a fresh exercise to start at inhale, got %+v", snapshot)
	}
	if snapshot.Remaining != 120*time.Second {
		t.Fatalf("expected a full countdown, got %s", snapshot.Remaining)
	}

	now = base.Add(10 * time.Second)
	snapshot = exercise.Snapshot()
	if snapshot.Phase != BreathingHold {
		t.Fatalf("expected hold at t=10s, got %q", snapshot.Phase)
	}
	if snapshot.Remaining != 110*time.Second {
		t.Fatalf("expected 110s remaining, got %s", snapshot.Remaining)
	}

	// The countdown is clamped at zero while the cascade keeps cycling.
	now = base.Add(200 * time.Second)
	snapshot = exercise.Snapshot()
	if snapshot.Remaining != 0 {
		t.Fatalf("expected an exhausted countdown, got %s", snapshot.Remaining)
	}
	if snapshot.Phase != BreathingHold {
		// 200s mod 19s = 10s into the cycle.
		t.Fatalf("expected the cascade to keep cycling, got %q", snapshot.Phase)
	}
}

func TestBreathingExercise_StopTearsDownBothChains(t *testing.T) {
	var mu sync.Mutex
	phases := 0
	ticks := 0

	exercise := NewBreathingExercise(BreathingConfig{
		TickInterval: 5 * time.Millisecond,
		OnPhase: func(BreathingPhase) {
			mu.Lock()
			phases++
			mu.Unlock()
		},
		OnTick: func(time.Duration) {
			mu.Lock()
			ticks++
			mu.Unlock()
		},
	})

	exercise.Start()
	time.Sleep(25 * time.Millisecond)
	exercise.Stop()

	mu.Lock()
	phasesAfter, ticksAfter := phases, ticks
	mu.Unlock()

	if phasesAfter == 0 {
		t.Fatalf("expected at least the initial inhale callback")
	}
	if ticksAfter == 0 {
		t.Fatalf("expected countdown ticks before stop")
	}

	time.Sleep(25 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if phases != phasesAfter || ticks != ticksAfter {
		t.Fatalf("callbacks fired after Stop returned")
	}

	// Stopping again is a no-op.
	exercise.Stop()
}

func TestBreathingExercise_RestartBeginsAtInhale(t *testing.T) {
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	now := base
	exercise := NewBreathingExercise(BreathingConfig{
		Now:          func() time.Time { return now },
		TickInterval: time.Hour,
	})

	exercise.Start()
	now = base.Add(15 * time.Second)
	exercise.Stop()

	now = base.Add(30 * time.Second)
	exercise.Start()
	defer exercise.Stop()

	snapshot := exercise.Snapshot()
	if snapshot.Phase != BreathingInhale {
		t.Fatalf("a restarted exercise must begin at inhale, got %q", snapshot.Phase)
	}
	if snapshot.Remaining != 120*time.Second {
		t.Fatalf("a restarted exercise must reset the countdown, got %s", snapshot.Remaining)
	}
}
