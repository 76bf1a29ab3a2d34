package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type sessionStoreStub struct {
	saved    []Session
	saveErr  error
	stored   *Session
	getErr   error
	deleted  int
	delErr   error
	loadHits int
}

func (s *sessionStoreStub) SaveActiveSession(ctx context.Context, session Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := session
	s.stored = &clone
	s.saved = append(s.saved, session)
	return nil
}

func (s *sessionStoreStub) GetActiveSession(ctx context.Context) (Session, error) {
	s.loadHits++
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	if s.stored == nil {
		return Session{}, ErrNotFound
	}
	return *s.stored, nil
}

func (s *sessionStoreStub) DeleteActiveSession(ctx context.Context) error {
	if s.delErr != nil {
		return s.delErr
	}
	s.deleted++
	s.stored = nil
	return nil
}

type minutesSinkStub struct {
	added []int
	err   error
}

func (m *minutesSinkStub) AddFocusMinutes(ctx context.Context, minutes int) error {
	if m.err != nil {
		return m.err
	}
	m.added = append(m.added, minutes)
	return nil
}

type notifierStub struct {
	titles []string
	bodies []string
	err    error
}

func (n *notifierStub) Notify(ctx context.Context, title, body string) error {
	if n.err != nil {
		return n.err
	}
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	return nil
}

type contentStub struct {
	motivation    string
	motivationErr error
	encouragement string
	encourageErr  error
	calls         int
}

func (c *contentStub) Motivation(ctx context.Context, name string) (string, error) {
	c.calls++
	return c.motivation, c.motivationErr
}

func (c *contentStub) Encouragement(ctx context.Context, focus string) (string, error) {
	c.calls++
	return c.encouragement, c.encourageErr
}

func newTestTimer(store *sessionStoreStub, sink *minutesSinkStub, notifier *notifierStub, now *time.Time) *TimerService {
	return NewTimerService(TimerServiceConfig{
		Sessions:    store,
		Minutes:     sink,
		Notifier:    notifier,
		IDGenerator: func() string { return "session-1" },
		Now:         func() time.Time { return *now },
	})
}

func TestTimerService_Start(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates and persists a fresh work session", func(t *testing.T) {
		store := &sessionStoreStub{}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		result, err := svc.Start(ctx, ActivityRef{ID: "task-7", Title: "Algebra review", CategoryID: "math"})
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if result.Resumed || result.CaughtUp {
			t.Fatalf("expected a fresh session, got %+v", result)
		}
		if result.Session.Phase != PhaseWork {
			t.Fatalf("expected work phase, got %q", result.Session.Phase)
		}
		if !result.Session.End.Equal(base.Add(25 * time.Minute)) {
			t.Fatalf("expected deadline %s, got %s", base.Add(25*time.Minute), result.Session.End)
		}
		if store.stored == nil || store.stored.ID != "session-1" {
			t.Fatalf("session was not persisted immediately")
		}
		if result.Remaining != 25*time.Minute {
			t.Fatalf("expected 25m remaining from the service clock, got %s", result.Remaining)
		}
	})

	t.Run("rejects an identified activity without a title", func(t *testing.T) {
		store := &sessionStoreStub{}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		_, err := svc.Start(ctx, ActivityRef{ID: "task-7"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if vErr.FieldErrors["activity_title"] == "" {
			t.Fatalf("expected activity_title field error, got %+v", vErr.FieldErrors)
		}
		if store.stored != nil {
			t.Fatal("nothing should be persisted for a rejected request")
		}
	})

	t.Run("resumes a persisted session with a future deadline", func(t *testing.T) {
		stored := Session{
			ID:       "session-0",
			Phase:    PhaseWork,
			Start:    base.Add(-10 * time.Minute),
			End:      base.Add(15 * time.Minute),
			Active:   true,
			Activity: ActivityRef{ID: "task-7"},
		}
		store := &sessionStoreStub{stored: &stored}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		result, err := svc.Start(ctx, ActivityRef{})
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if !result.Resumed || result.CaughtUp {
			t.Fatalf("expected a plain resume, got %+v", result)
		}
		if result.Session.ID != "session-0" {
			t.Fatalf("expected the persisted session, got %q", result.Session.ID)
		}

		// Round trip: remaining time is reconstructed from the persisted
		// absolute deadline as if the process never restarted.
		if result.Remaining != 15*time.Minute {
			t.Fatalf("expected 15m remaining after resume, got %s", result.Remaining)
		}
	})

	t.Run("applies exactly one catch-up transition for a stale deadline", func(t *testing.T) {
		// Session created at T0, work deadline T0+25m, resumed at T0+25m+1s.
		stored := Session{
			ID:     "session-0",
			Phase:  PhaseWork,
			Start:  base,
			End:    base.Add(25 * time.Minute),
			Active: true,
		}
		store := &sessionStoreStub{stored: &stored}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{}
		now := base.Add(25*time.Minute + time.Second)
		svc := newTestTimer(store, sink, notifier, &now)

		result, err := svc.Start(ctx, ActivityRef{})
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if !result.Resumed || !result.CaughtUp {
			t.Fatalf("expected a catch-up resume, got %+v", result)
		}
		if result.Session.Phase != PhaseBreak {
			t.Fatalf("expected break phase after catch-up, got %q", result.Session.Phase)
		}
		if result.Session.WorkMinutes != 25 {
			t.Fatalf("expected 25 accumulated minutes, got %d", result.Session.WorkMinutes)
		}
		if len(sink.added) != 1 || sink.added[0] != 25 {
			t.Fatalf("expected one 25 minute credit, got %v", sink.added)
		}
		if len(notifier.titles) != 1 || notifier.titles[0] != "Focus Session Over" {
			t.Fatalf("expected a single focus-over notification, got %v", notifier.titles)
		}
		if !result.Session.End.Equal(now.Add(5 * time.Minute)) {
			t.Fatalf("expected break deadline %s, got %s", now.Add(5*time.Minute), result.Session.End)
		}
		if result.Remaining != 5*time.Minute {
			t.Fatalf("expected the full break remaining, got %s", result.Remaining)
		}
	})

	t.Run("an inactive persisted record yields a fresh session", func(t *testing.T) {
		stored := Session{ID: "session-0", Phase: PhaseWork, Active: false}
		store := &sessionStoreStub{stored: &stored}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		result, err := svc.Start(ctx, ActivityRef{})
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if result.Resumed {
			t.Fatalf("expected a fresh session, got %+v", result)
		}
	})

	t.Run("unreadable durable state degrades to a fresh session", func(t *testing.T) {
		store := &sessionStoreStub{getErr: errors.New("corrupt record")}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		result, err := svc.Start(ctx, ActivityRef{})
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if result.Resumed {
			t.Fatalf("expected a fresh session when state is unreadable")
		}
	})
}

func TestTimerService_Transitions(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("work expiry accumulates minutes and notifies once", func(t *testing.T) {
		store := &sessionStoreStub{}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{}
		now := base
		svc := newTestTimer(store, sink, notifier, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		now = base.Add(25 * time.Minute)
		session, err := svc.HandleExpiry(ctx)
		if err != nil {
			t.Fatalf("HandleExpiry returned error: %v", err)
		}
		if session.Phase != PhaseBreak {
			t.Fatalf("expected break phase, got %q", session.Phase)
		}
		if session.WorkMinutes != 25 {
			t.Fatalf("expected 25 accumulated minutes, got %d", session.WorkMinutes)
		}
		if len(sink.added) != 1 || sink.added[0] != 25 {
			t.Fatalf("expected one 25 minute credit, got %v", sink.added)
		}
		if len(notifier.titles) != 1 || notifier.titles[0] != "Focus Session Over" {
			t.Fatalf("expected exactly one focus-over notification, got %v", notifier.titles)
		}
	})

	t.Run("break expiry never accumulates minutes", func(t *testing.T) {
		store := &sessionStoreStub{}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{}
		now := base
		svc := newTestTimer(store, sink, notifier, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		now = base.Add(25 * time.Minute)
		if _, err := svc.HandleExpiry(ctx); err != nil {
			t.Fatalf("HandleExpiry returned error: %v", err)
		}

		now = now.Add(5 * time.Minute)
		session, err := svc.HandleExpiry(ctx)
		if err != nil {
			t.Fatalf("HandleExpiry returned error: %v", err)
		}
		if session.Phase != PhaseWork {
			t.Fatalf("expected work phase, got %q", session.Phase)
		}
		if session.WorkMinutes != 25 {
			t.Fatalf("break completion must not accumulate, got %d", session.WorkMinutes)
		}
		if len(sink.added) != 1 {
			t.Fatalf("expected a single minute credit overall, got %v", sink.added)
		}
		if len(notifier.titles) != 2 || notifier.titles[1] != "Break Over" {
			t.Fatalf("expected a break-over notification, got %v", notifier.titles)
		}
	})

	t.Run("expiry signals before the deadline are no-ops", func(t *testing.T) {
		store := &sessionStoreStub{}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{}
		now := base
		svc := newTestTimer(store, sink, notifier, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		now = base.Add(10 * time.Minute)
		session, err := svc.HandleExpiry(ctx)
		if err != nil {
			t.Fatalf("HandleExpiry returned error: %v", err)
		}
		if session.Phase != PhaseWork {
			t.Fatalf("premature expiry must not transition, got %q", session.Phase)
		}
		if len(notifier.titles) != 0 || len(sink.added) != 0 {
			t.Fatalf("premature expiry must have no side effects")
		}
	})

	t.Run("skip applies the identical transition without a due deadline", func(t *testing.T) {
		store := &sessionStoreStub{}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{}
		now := base
		svc := newTestTimer(store, sink, notifier, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		now = base.Add(3 * time.Minute)
		status, err := svc.Skip(ctx)
		if err != nil {
			t.Fatalf("Skip returned error: %v", err)
		}
		if status.Session.Phase != PhaseBreak {
			t.Fatalf("expected break phase after skip, got %q", status.Session.Phase)
		}
		if status.Session.WorkMinutes != 25 {
			t.Fatalf("skip must credit the nominal duration, got %d", status.Session.WorkMinutes)
		}
		if status.Remaining != 5*time.Minute {
			t.Fatalf("expected the full break remaining after skip, got %s", status.Remaining)
		}
		if len(notifier.titles) != 1 || notifier.titles[0] != "Focus Session Over" {
			t.Fatalf("skip must emit the same notification, got %v", notifier.titles)
		}
	})

	t.Run("transitions without a session return ErrNoSession", func(t *testing.T) {
		store := &sessionStoreStub{}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		if _, err := svc.HandleExpiry(ctx); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
		if _, err := svc.Skip(ctx); !errors.Is(err, ErrNoSession) {
			t.Fatalf("expected ErrNoSession, got %v", err)
		}
	})

	t.Run("notification failure never blocks the transition", func(t *testing.T) {
		store := &sessionStoreStub{}
		sink := &minutesSinkStub{}
		notifier := &notifierStub{err: errors.New("permission denied")}
		now := base
		svc := newTestTimer(store, sink, notifier, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		now = base.Add(25 * time.Minute)
		session, err := svc.HandleExpiry(ctx)
		if err != nil {
			t.Fatalf("HandleExpiry returned error: %v", err)
		}
		if session.Phase != PhaseBreak || session.WorkMinutes != 25 {
			t.Fatalf("transition must proceed despite notifier failure: %+v", session)
		}
	})

	t.Run("persistence failure keeps in-memory state authoritative", func(t *testing.T) {
		store := &sessionStoreStub{saveErr: errors.New("disk full")}
		now := base
		svc := newTestTimer(store, nil, nil, &now)

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		status := svc.Status(ctx)
		if status.Idle {
			t.Fatalf("expected the in-memory session to remain authoritative")
		}
		if status.Remaining != 25*time.Minute {
			t.Fatalf("expected 25m remaining, got %s", status.Remaining)
		}
	})
}

func TestTimerService_Cancel(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	store := &sessionStoreStub{}
	sink := &minutesSinkStub{}
	now := base
	svc := newTestTimer(store, sink, nil, &now)

	if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if err := svc.Cancel(ctx); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if store.deleted != 1 || store.stored != nil {
		t.Fatalf("cancel must remove the persisted record")
	}
	if len(sink.added) != 0 {
		t.Fatalf("cancel must not accumulate minutes, got %v", sink.added)
	}
	if status := svc.Status(ctx); !status.Idle {
		t.Fatalf("expected idle status after cancel")
	}
	if err := svc.Cancel(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for a second cancel, got %v", err)
	}
}

func TestTimerService_Status(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	store := &sessionStoreStub{}
	now := base
	svc := newTestTimer(store, nil, nil, &now)

	if status := svc.Status(ctx); !status.Idle {
		t.Fatalf("expected idle before any session")
	}

	if _, err := svc.Start(ctx, ActivityRef{Title: "Essay draft"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	now = base.Add(10 * time.Minute)
	status := svc.Status(ctx)
	if status.Idle {
		t.Fatalf("expected an active status")
	}
	if status.Remaining != 15*time.Minute {
		t.Fatalf("expected 15m remaining, got %s", status.Remaining)
	}
}

// fakeClock is safe to advance while the run loop samples it.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newRunTimer(store *sessionStoreStub, notifier *notifierStub, clock *fakeClock) *TimerService {
	return NewTimerService(TimerServiceConfig{
		Sessions:     store,
		Notifier:     notifier,
		IDGenerator:  func() string { return "session-1" },
		Now:          clock.Now,
		TickInterval: time.Millisecond,
	})
}

func waitForRunPhase(t *testing.T, svc *TimerService, phase Phase, remaining time.Duration) {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status := svc.Status(ctx)
		if !status.Idle && status.Session.Phase == phase && status.Remaining == remaining {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("run loop never reached phase %q with %s remaining, status %+v", phase, remaining, svc.Status(ctx))
}

func TestTimerService_Run(t *testing.T) {
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("applies the natural expiry and arms the next phase", func(t *testing.T) {
		clock := &fakeClock{now: base}
		store := &sessionStoreStub{}
		notifier := &notifierStub{}
		svc := newRunTimer(store, notifier, clock)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		clock.Advance(25 * time.Minute)
		waitForRunPhase(t, svc, PhaseBreak, 5*time.Minute)

		clock.Advance(5 * time.Minute)
		waitForRunPhase(t, svc, PhaseWork, 25*time.Minute)

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(notifier.titles) != 2 || notifier.titles[0] != "Focus Session Over" || notifier.titles[1] != "Break Over" {
			t.Fatalf("unexpected notifications: %v", notifier.titles)
		}
	})

	t.Run("a skip rearms the watch on the shortened deadline", func(t *testing.T) {
		clock := &fakeClock{now: base}
		store := &sessionStoreStub{}
		svc := newRunTimer(store, &notifierStub{}, clock)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		waitForRunPhase(t, svc, PhaseWork, 25*time.Minute)

		clock.Advance(time.Minute)
		if _, err := svc.Skip(ctx); err != nil {
			t.Fatalf("Skip returned error: %v", err)
		}

		// The break ends one minute past its five minute window. Without the
		// rearm the loop would still be watching the original work deadline
		// and the due break expiry would sit unapplied for another while.
		clock.Advance(6 * time.Minute)
		waitForRunPhase(t, svc, PhaseWork, 25*time.Minute)

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("cancel idles the loop until the next start", func(t *testing.T) {
		clock := &fakeClock{now: base}
		store := &sessionStoreStub{}
		svc := newRunTimer(store, &notifierStub{}, clock)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Run(ctx) }()

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		waitForRunPhase(t, svc, PhaseWork, 25*time.Minute)

		if err := svc.Cancel(ctx); err != nil {
			t.Fatalf("Cancel returned error: %v", err)
		}
		clock.Advance(30 * time.Minute)
		if status := svc.Status(ctx); !status.Idle {
			t.Fatalf("expected an idle loop after cancel, got %+v", status)
		}

		if _, err := svc.Start(ctx, ActivityRef{}); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		clock.Advance(25 * time.Minute)
		waitForRunPhase(t, svc, PhaseBreak, 5*time.Minute)

		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestTimerService_Encouragement(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	t.Run("falls back to the fixed default on generator failure", func(t *testing.T) {
		now := base
		svc := NewTimerService(TimerServiceConfig{
			Content: &contentStub{encourageErr: errors.New("timeout")},
			Now:     func() time.Time { return now },
		})

		if got := svc.Encouragement(ctx); got != defaultEncouragement {
			t.Fatalf("expected the default encouragement, got %q", got)
		}
	})

	t.Run("caches generated text per focus context", func(t *testing.T) {
		content := &contentStub{encouragement: "Bloom at your own pace."}
		now := base
		svc := NewTimerService(TimerServiceConfig{
			Content: content,
			Now:     func() time.Time { return now },
		})

		first := svc.Encouragement(ctx)
		second := svc.Encouragement(ctx)
		if first != "Bloom at your own pace." || second != first {
			t.Fatalf("unexpected encouragement: %q, %q", first, second)
		}
		if content.calls != 1 {
			t.Fatalf("expected a single generator call, got %d", content.calls)
		}
	})
}
