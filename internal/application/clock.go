package application

import (
	"sync"
	"time"
)

// Remaining computes how much time is left until the absolute deadline. The
// result is clamped at zero; it is recomputed from the deadline on every call
// and never accumulated from tick counts, so a delayed or skipped tick cannot
// introduce drift.
func Remaining(end, now time.Time) time.Duration {
	remaining := end.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DeadlineClock drives display refresh by sampling an absolute deadline at a
// fixed cadence. It carries no session state; expiry idempotence is owned by
// the state machine that re-arms it.
type DeadlineClock struct {
	now      func() time.Time
	interval time.Duration
}

// NewDeadlineClock constructs a clock with the supplied time source and
// sampling cadence. Nil and non-positive arguments fall back to wall clock
// time and a one second cadence.
func NewDeadlineClock(now func() time.Time, interval time.Duration) *DeadlineClock {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &DeadlineClock{now: now, interval: interval}
}

// ClockHandle controls a running watch. Stop tears the ticker down and waits
// for the sampling goroutine to exit, so no callback fires after Stop returns.
type ClockHandle struct {
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Stop cancels the watch. It is safe to call multiple times and after expiry.
func (h *ClockHandle) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Watch samples the deadline once immediately and then at the clock cadence.
// Each sample with time left invokes onTick; the first sample that reaches
// zero invokes onExpire exactly once and ends the watch.
func (c *DeadlineClock) Watch(end time.Time, onTick func(remaining time.Duration), onExpire func()) *ClockHandle {
	handle := &ClockHandle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	sample := func() bool {
		remaining := Remaining(end, c.now())
		if remaining == 0 {
			if onExpire != nil {
				onExpire()
			}
			return false
		}
		if onTick != nil {
			onTick(remaining)
		}
		return true
	}

	go func() {
		defer close(handle.done)

		if !sample() {
			return
		}

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-handle.stop:
				return
			case <-ticker.C:
				if !sample() {
					return
				}
			}
		}
	}()

	return handle
}
