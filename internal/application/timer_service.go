package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// SessionStore captures the persistence interactions needed by the timer. At
// most one session is ever stored; saving overwrites the previous record.
type SessionStore interface {
	SaveActiveSession(ctx context.Context, session Session) error
	GetActiveSession(ctx context.Context) (Session, error)
	DeleteActiveSession(ctx context.Context) error
}

// FocusMinutesSink receives completed work minutes. Owned by the surrounding
// application's profile component.
type FocusMinutesSink interface {
	AddFocusMinutes(ctx context.Context, minutes int) error
}

// Notifier dispatches user facing notifications. Implementations fail softly;
// the timer never lets a dispatch failure block a phase transition.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// ContentGenerator produces motivational text from an external collaborator.
// Both operations may fail or time out; callers substitute fixed defaults.
type ContentGenerator interface {
	Motivation(ctx context.Context, name string) (string, error)
	Encouragement(ctx context.Context, focus string) (string, error)
}

const (
	// DefaultWorkDuration is the nominal focus phase length.
	DefaultWorkDuration = 25 * time.Minute
	// DefaultBreakDuration is the nominal rest phase length.
	DefaultBreakDuration = 5 * time.Minute

	genericFocusTitle      = "Deep Focus"
	defaultEncouragement   = "Focus is the art of seeing with the heart."
	workOverTitle          = "Focus Session Over"
	workOverBody           = "Time for a well-deserved break!"
	breakOverTitle         = "Break Over"
	breakOverBody          = "Ready to focus again?"
	encouragementCacheTTL  = 10 * time.Minute
	encouragementCacheSize = 32
)

// TimerService owns the focus/break state machine. Phase transitions are
// computed synchronously from already available timestamps; the in-memory
// session stays authoritative for the process lifetime even when a
// persistence write fails.
type TimerService struct {
	sessions    SessionStore
	minutes     FocusMinutesSink
	notifier    Notifier
	content     ContentGenerator
	idGenerator func() string
	now         func() time.Time
	work        time.Duration
	rest        time.Duration
	clock       *DeadlineClock
	logger      *slog.Logger

	mu           sync.Mutex
	current      *Session
	tickListener func(Phase, time.Duration)
	cache        *messageCache

	// rearm nudges Run to drop its current deadline watch and arm on the
	// session's current End. Buffered so mutations never block on the loop.
	rearm chan struct{}
}

// TimerServiceConfig wires dependencies for the timer service.
type TimerServiceConfig struct {
	Sessions      SessionStore
	Minutes       FocusMinutesSink
	Notifier      Notifier
	Content       ContentGenerator
	IDGenerator   func() string
	Now           func() time.Time
	WorkDuration  time.Duration
	BreakDuration time.Duration
	TickInterval  time.Duration
	Logger        *slog.Logger
}

// NewTimerService constructs a TimerService with the provided dependencies.
func NewTimerService(cfg TimerServiceConfig) *TimerService {
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = func() string { return "" }
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	work := cfg.WorkDuration
	if work <= 0 {
		work = DefaultWorkDuration
	}
	rest := cfg.BreakDuration
	if rest <= 0 {
		rest = DefaultBreakDuration
	}
	return &TimerService{
		sessions:    cfg.Sessions,
		minutes:     cfg.Minutes,
		notifier:    cfg.Notifier,
		content:     cfg.Content,
		idGenerator: idGen,
		now:         now,
		work:        work,
		rest:        rest,
		clock:       NewDeadlineClock(now, cfg.TickInterval),
		logger:      defaultLogger(cfg.Logger),
		cache:       newMessageCache(encouragementCacheTTL, encouragementCacheSize, now),
		rearm:       make(chan struct{}, 1),
	}
}

func (s *TimerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimerService", operation, attrs...)
}

// SetTickListener registers a callback invoked with the current phase and
// sampled remaining time on every display tick of the run loop.
func (s *TimerService) SetTickListener(listener func(Phase, time.Duration)) {
	s.mu.Lock()
	s.tickListener = listener
	s.mu.Unlock()
}

// Start resumes the persisted session when its deadline is still in the
// future, applies a single catch-up transition when the deadline has already
// passed, and otherwise creates a fresh work session bound to the supplied
// activity reference.
func (s *TimerService) Start(ctx context.Context, activity ActivityRef) (StartResult, error) {
	if s == nil {
		return StartResult{}, fmt.Errorf("TimerService is nil")
	}

	if err := validateActivity(activity); err != nil {
		return StartResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Start", "activity_id", activity.ID)

	if existing := s.resolveLocked(ctx); existing != nil && existing.Active {
		now := s.now()
		if existing.End.After(now) {
			s.current = existing
			s.signalRearm()
			logger.InfoContext(ctx, "resumed persisted session",
				"phase", existing.Phase,
				"remaining", existing.Remaining(now),
			)
			return StartResult{Session: *existing, Resumed: true, Remaining: existing.Remaining(now)}, nil
		}

		// The process was away past the deadline: exactly one catch-up
		// transition, never a replay of every missed cycle.
		caught := s.transitionLocked(ctx, *existing)
		logger.InfoContext(ctx, "applied catch-up transition", "phase", caught.Phase)
		return StartResult{Session: caught, Resumed: true, CaughtUp: true, Remaining: caught.Remaining(s.now())}, nil
	}

	now := s.now()
	session := Session{
		ID:        s.idGenerator(),
		Activity:  activity,
		Phase:     PhaseWork,
		Start:     now,
		End:       now.Add(s.work),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.current = &session
	s.persistLocked(ctx, session)
	s.signalRearm()

	logger.InfoContext(ctx, "started new session", "session_id", session.ID, "end", session.End)
	return StartResult{Session: session, Remaining: session.Remaining(now)}, nil
}

// HandleExpiry applies the due phase transition. A signal that arrives for a
// deadline that is no longer current (the phase already advanced) is a no-op,
// which makes repeated expiry polls idempotent.
func (s *TimerService) HandleExpiry(ctx context.Context) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("TimerService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.resolveLocked(ctx)
	if session == nil || !session.Active {
		return Session{}, ErrNoSession
	}
	if !session.Expired(s.now()) {
		return *session, nil
	}

	return s.transitionLocked(ctx, *session), nil
}

// Skip advances to the next phase without waiting for the deadline. Side
// effects are identical to a natural expiry, so behavior does not depend on
// whether time elapsed or the user advanced manually.
func (s *TimerService) Skip(ctx context.Context) (TimerStatus, error) {
	if s == nil {
		return TimerStatus{}, fmt.Errorf("TimerService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.resolveLocked(ctx)
	if session == nil || !session.Active {
		return TimerStatus{}, ErrNoSession
	}

	next := s.transitionLocked(ctx, *session)
	return TimerStatus{Session: next, Remaining: next.Remaining(s.now())}, nil
}

// Cancel deactivates the session and removes the persisted record. No
// minutes are accumulated for the interrupted phase.
func (s *TimerService) Cancel(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("TimerService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Cancel")

	session := s.resolveLocked(ctx)
	if session == nil || !session.Active {
		return ErrNoSession
	}

	s.current = nil
	if s.sessions != nil {
		if err := s.sessions.DeleteActiveSession(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to delete persisted session", "error", err)
		}
	}
	s.signalRearm()

	logger.InfoContext(ctx, "cancelled session", "session_id", session.ID)
	return nil
}

// Status reports the current phase and remaining time, derived on demand from
// the persisted absolute deadline.
func (s *TimerService) Status(ctx context.Context) TimerStatus {
	if s == nil {
		return TimerStatus{Idle: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.resolveLocked(ctx)
	if session == nil || !session.Active {
		return TimerStatus{Idle: true}
	}

	return TimerStatus{
		Session:   *session,
		Remaining: session.Remaining(s.now()),
	}
}

// Encouragement returns a short motivational line for the current focus
// context. Generator failures degrade to a fixed default and are never
// surfaced to the caller.
func (s *TimerService) Encouragement(ctx context.Context) string {
	focus := genericFocusTitle
	s.mu.Lock()
	if s.current != nil && s.current.Activity.Title != "" {
		focus = s.current.Activity.Title
	}
	cache := s.cache
	s.mu.Unlock()

	if text, ok := cache.Get(focus); ok {
		return text
	}

	if s.content == nil {
		return defaultEncouragement
	}

	text, err := s.content.Encouragement(ctx, focus)
	if err != nil || text == "" {
		s.loggerWith(ctx, "Encouragement").WarnContext(ctx, "content generation failed, using default", "error", err)
		return defaultEncouragement
	}

	cache.Put(focus, text)
	return text
}

// Run drives the expiry loop until the context is cancelled: it arms the
// deadline clock for the current session, applies the transition when the
// clock signals expiry, and arms again for the next phase. Any mutation that
// moves the deadline, a Skip, a Cancel or a Start in another goroutine, drops
// the running watch and arms on the session's current End, so a shortened
// phase expires on its own schedule rather than the pre-mutation one. A stale
// expiry signal is ignored by HandleExpiry.
func (s *TimerService) Run(ctx context.Context) error {
	for {
		// Drop a signal raised before this iteration; Status reads the state
		// it announced, so the watch armed below is already current.
		select {
		case <-s.rearm:
		default:
		}

		status := s.Status(ctx)
		if status.Idle {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.rearm:
			case <-time.After(s.clock.interval):
			}
			continue
		}

		phase := status.Session.Phase
		expired := make(chan struct{})
		handle := s.clock.Watch(status.Session.End,
			func(remaining time.Duration) {
				s.mu.Lock()
				listener := s.tickListener
				s.mu.Unlock()
				if listener != nil {
					listener(phase, remaining)
				}
			},
			func() { close(expired) },
		)

		select {
		case <-ctx.Done():
			handle.Stop()
			return ctx.Err()
		case <-s.rearm:
			handle.Stop()
		case <-expired:
			if _, err := s.HandleExpiry(ctx); err != nil && !errors.Is(err, ErrNoSession) {
				s.loggerWith(ctx, "Run").ErrorContext(ctx, "expiry transition failed",
					"error", err,
					"error_kind", ErrorKind(err),
				)
			}
		}
	}
}

// resolveLocked returns the in-memory session, falling back to the persisted
// record. Missing or unreadable durable state degrades to "no session".
func (s *TimerService) resolveLocked(ctx context.Context) *Session {
	if s.current != nil {
		return s.current
	}
	if s.sessions == nil {
		return nil
	}

	session, err := s.sessions.GetActiveSession(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.loggerWith(ctx, "resolve").WarnContext(ctx, "failed to load persisted session", "error", err)
		}
		return nil
	}

	s.current = &session
	return s.current
}

// transitionLocked applies one phase transition with its side effects and
// persists the result before returning control.
func (s *TimerService) transitionLocked(ctx context.Context, session Session) Session {
	now := s.now()
	logger := s.loggerWith(ctx, "transition", "session_id", session.ID, "from", session.Phase)

	if session.Phase == PhaseWork {
		credited := int(s.work / time.Minute)
		session.WorkMinutes += credited
		if s.minutes != nil {
			if err := s.minutes.AddFocusMinutes(ctx, credited); err != nil {
				logger.ErrorContext(ctx, "failed to forward focus minutes", "error", err)
			}
		}
		s.notify(ctx, logger, workOverTitle, workOverBody)
		session.Phase = PhaseBreak
		session.End = now.Add(s.rest)
	} else {
		s.notify(ctx, logger, breakOverTitle, breakOverBody)
		session.Phase = PhaseWork
		session.End = now.Add(s.work)
	}

	session.Start = now
	session.UpdatedAt = now
	s.current = &session
	s.persistLocked(ctx, session)
	s.signalRearm()

	logger.InfoContext(ctx, "phase transition applied", "to", session.Phase, "end", session.End)
	return session
}

// signalRearm is non-blocking; a pending signal already covers the change.
func (s *TimerService) signalRearm() {
	select {
	case s.rearm <- struct{}{}:
	default:
	}
}

func (s *TimerService) notify(ctx context.Context, logger *slog.Logger, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, title, body); err != nil {
		// Permission denied or a transport failure: the transition proceeds.
		logger.WarnContext(ctx, "notification dispatch skipped", "error", err)
	}
}

func (s *TimerService) persistLocked(ctx context.Context, session Session) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SaveActiveSession(ctx, session); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist session, in-memory state remains authoritative", "error", err)
	}
}
