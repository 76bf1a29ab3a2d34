package application

import (
	"sync"
	"time"
)

// BreathingPhase names a step of the 4-7-8 breathing cascade.
type BreathingPhase string

const (
	// BreathingInhale is the 4 second inhale step.
	BreathingInhale BreathingPhase = "inhale"
	// BreathingHold is the 7 second hold step.
	BreathingHold BreathingPhase = "hold"
	// BreathingRelease is the 8 second release step.
	BreathingRelease BreathingPhase = "release"
)

const (
	inhaleDuration  = 4 * time.Second
	holdDuration    = 7 * time.Second
	releaseDuration = 8 * time.Second
	breathingCycle  = inhaleDuration + holdDuration + releaseDuration

	// DefaultBreathingTotal is the overall exercise countdown length.
	DefaultBreathingTotal = 120 * time.Second
)

// BreathingPhaseAt returns the cascade phase at the given offset into the
// exercise. The sequence is cyclic and never skips a step: inhale for [0,4),
// hold for [4,11), release for [11,19), then it repeats.
func BreathingPhaseAt(elapsed time.Duration) BreathingPhase {
	if elapsed < 0 {
		elapsed = 0
	}
	offset := elapsed % breathingCycle
	switch {
	case offset < inhaleDuration:
		return BreathingInhale
	case offset < inhaleDuration+holdDuration:
		return BreathingHold
	default:
		return BreathingRelease
	}
}

// BreathingSnapshot is the on-demand view of a running exercise.
type BreathingSnapshot struct {
	Running   bool
	Phase     BreathingPhase
	Remaining time.Duration
}

// BreathingExercise drives the fixed inhale/hold/release cascade together
// with an independent session countdown. The countdown is display-only and
// never gates the cascade; both timer chains are torn down together on Stop.
type BreathingExercise struct {
	now   func() time.Time
	total time.Duration
	tick  time.Duration

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	stop      chan struct{}
	finished  *sync.WaitGroup
	onPhase   func(BreathingPhase)
	onTick    func(remaining time.Duration)
}

// BreathingConfig wires optional dependencies for the exercise.
type BreathingConfig struct {
	Now          func() time.Time
	Total        time.Duration
	TickInterval time.Duration
	// OnPhase is invoked at the start of every cascade step.
	OnPhase func(BreathingPhase)
	// OnTick is invoked once per countdown tick with the remaining time.
	OnTick func(remaining time.Duration)
}

// NewBreathingExercise constructs an exercise with the supplied configuration.
func NewBreathingExercise(cfg BreathingConfig) *BreathingExercise {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	total := cfg.Total
	if total <= 0 {
		total = DefaultBreathingTotal
	}
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = time.Second
	}
	return &BreathingExercise{
		now:     now,
		total:   total,
		tick:    tick,
		onPhase: cfg.OnPhase,
		onTick:  cfg.OnTick,
	}
}

// Start launches both timer chains. Restarting always begins at inhale with a
// full countdown; nothing about the exercise is persisted. Starting a running
// exercise is a no-op.
func (b *BreathingExercise) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}

	b.running = true
	b.startedAt = b.now()
	b.stop = make(chan struct{})
	b.finished = &sync.WaitGroup{}
	b.finished.Add(2)

	go b.runCascade(b.stop, b.finished)
	go b.runCountdown(b.stop, b.startedAt.Add(b.total), b.finished)
}

// Stop tears down both timer chains and waits for them to exit, so no phase
// or tick callback fires after Stop returns. Safe to call when not running.
func (b *BreathingExercise) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	stop := b.stop
	finished := b.finished
	b.mu.Unlock()

	close(stop)
	finished.Wait()
}

// Snapshot derives the current phase and remaining display time from the
// start instant, independent of how reliably the tick callbacks ran.
func (b *BreathingExercise) Snapshot() BreathingSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return BreathingSnapshot{}
	}

	now := b.now()
	return BreathingSnapshot{
		Running:   true,
		Phase:     BreathingPhaseAt(now.Sub(b.startedAt)),
		Remaining: Remaining(b.startedAt.Add(b.total), now),
	}
}

func (b *BreathingExercise) runCascade(stop <-chan struct{}, finished *sync.WaitGroup) {
	defer finished.Done()

	steps := []struct {
		phase    BreathingPhase
		duration time.Duration
	}{
		{BreathingInhale, inhaleDuration},
		{BreathingHold, holdDuration},
		{BreathingRelease, releaseDuration},
	}

	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for {
		for _, step := range steps {
			if b.onPhase != nil {
				b.onPhase(step.phase)
			}
			timer.Reset(step.duration)
			select {
			case <-stop:
				return
			case <-timer.C:
			}
		}
	}
}

func (b *BreathingExercise) runCountdown(stop <-chan struct{}, end time.Time, finished *sync.WaitGroup) {
	defer finished.Done()

	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining := Remaining(end, b.now())
			if b.onTick != nil {
				b.onTick(remaining)
			}
			if remaining == 0 {
				// Countdown is display only; the cascade keeps cycling
				// until the exercise is stopped.
				return
			}
		}
	}
}
