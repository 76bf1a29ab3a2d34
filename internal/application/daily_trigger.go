package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TriggerRecord is the persisted daily trigger bookkeeping. LastFiredDate is
// a local calendar date formatted as 2006-01-02, empty when never fired.
type TriggerRecord struct {
	Enabled       bool
	LastFiredDate string
}

// TriggerStore captures the persistence interactions for the daily trigger.
// An absent record reads as the zero value: never fired, not enabled.
type TriggerStore interface {
	GetTriggerState(ctx context.Context) (TriggerRecord, error)
	SaveTriggerState(ctx context.Context, record TriggerRecord) error
}

// ProfileReader exposes the student profile for display-name lookups.
type ProfileReader interface {
	GetProfile(ctx context.Context) (StudentProfile, error)
}

const (
	// DefaultTriggerHour is the local hour after which the trigger may fire.
	DefaultTriggerHour = 12
	// DefaultTriggerPoll is the check cadence.
	DefaultTriggerPoll = time.Minute

	triggerDateLayout   = "2006-01-02"
	fallbackDisplayName = "Scholar"
	motivationTitle     = "ZenScholar: Welcome Home"
	defaultMotivation   = "Welcome home. Let the afternoon's stillness guide your focus."
)

// DailyTrigger fires an at-most-once-per-calendar-day motivational
// notification once the local threshold hour has been crossed. It does not
// need to run at the threshold instant: the first check after the hour, on
// whatever day it happens, fires as long as the date guard passes.
type DailyTrigger struct {
	store    TriggerStore
	profiles ProfileReader
	content  ContentGenerator
	notifier Notifier
	now      func() time.Time
	hour     int
	poll     time.Duration
	logger   *slog.Logger

	mu sync.Mutex
	// firedDate mirrors the persisted guard so a failed state write cannot
	// cause a double fire within this process lifetime.
	firedDate string
}

// DailyTriggerConfig wires dependencies for the trigger scheduler.
type DailyTriggerConfig struct {
	Store         TriggerStore
	Profiles      ProfileReader
	Content       ContentGenerator
	Notifier      Notifier
	Now           func() time.Time
	ThresholdHour int
	Poll          time.Duration
	Logger        *slog.Logger
}

// NewDailyTrigger constructs a DailyTrigger with the provided dependencies.
func NewDailyTrigger(cfg DailyTriggerConfig) *DailyTrigger {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	hour := cfg.ThresholdHour
	if hour <= 0 || hour > 23 {
		hour = DefaultTriggerHour
	}
	poll := cfg.Poll
	if poll <= 0 {
		poll = DefaultTriggerPoll
	}
	return &DailyTrigger{
		store:    cfg.Store,
		profiles: cfg.Profiles,
		content:  cfg.Content,
		notifier: cfg.Notifier,
		now:      now,
		hour:     hour,
		poll:     poll,
		logger:   defaultLogger(cfg.Logger),
	}
}

func (t *DailyTrigger) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, t.logger, "DailyTrigger", operation, attrs...)
}

// Run polls for the lifetime of the context, with one immediate check at
// startup so a process launched after the threshold hour still fires.
func (t *DailyTrigger) Run(ctx context.Context) error {
	if _, err := t.Check(ctx); err != nil {
		t.loggerWith(ctx, "Run").ErrorContext(ctx, "startup check failed", "error", err)
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := t.Check(ctx); err != nil {
				t.loggerWith(ctx, "Run").ErrorContext(ctx, "trigger check failed", "error", err)
			}
		}
	}
}

// Check evaluates the firing condition once and reports whether a
// notification was dispatched. Re-checks after a fire are no-ops for the rest
// of the calendar day.
func (t *DailyTrigger) Check(ctx context.Context) (bool, error) {
	if t == nil {
		return false, fmt.Errorf("DailyTrigger is nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	logger := t.loggerWith(ctx, "Check")

	record, err := t.loadLocked(ctx)
	if err != nil {
		return false, err
	}
	if !record.Enabled {
		return false, nil
	}

	now := t.now()
	today := now.Format(triggerDateLayout)
	if now.Hour() < t.hour {
		return false, nil
	}
	if record.LastFiredDate == today || t.firedDate == today {
		return false, nil
	}

	message := t.motivationLocked(ctx, logger)

	if t.notifier != nil {
		if err := t.notifier.Notify(ctx, motivationTitle, message); err != nil {
			// Permission not granted yet: leave the date unstamped so the
			// trigger can still fire later today once dispatch works.
			logger.WarnContext(ctx, "notification dispatch skipped", "error", err)
			return false, nil
		}
	}

	t.firedDate = today
	record.LastFiredDate = today
	if t.store != nil {
		if err := t.store.SaveTriggerState(ctx, record); err != nil {
			logger.ErrorContext(ctx, "failed to persist fired date, in-memory guard remains", "error", err)
		}
	}

	logger.InfoContext(ctx, "daily motivation dispatched", "date", today)
	return true, nil
}

// Status reports the trigger configuration and bookkeeping.
func (t *DailyTrigger) Status(ctx context.Context) TriggerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, err := t.loadLocked(ctx)
	if err != nil {
		record = TriggerRecord{}
	}
	return TriggerStatus{
		Enabled:       record.Enabled,
		ThresholdHour: t.hour,
		LastFiredDate: record.LastFiredDate,
	}
}

// SetEnabled stores the user opt-in flag, preserving the fired-date guard.
func (t *DailyTrigger) SetEnabled(ctx context.Context, enabled bool) error {
	if t == nil {
		return fmt.Errorf("DailyTrigger is nil")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record, err := t.loadLocked(ctx)
	if err != nil {
		return err
	}
	record.Enabled = enabled
	if t.store == nil {
		return nil
	}
	return t.store.SaveTriggerState(ctx, record)
}

// loadLocked reads the persisted record, treating missing or unreadable state
// as "never fired, not enabled" rather than failing.
func (t *DailyTrigger) loadLocked(ctx context.Context) (TriggerRecord, error) {
	if t.store == nil {
		return TriggerRecord{}, nil
	}
	record, err := t.store.GetTriggerState(ctx)
	if err != nil {
		t.loggerWith(ctx, "load").WarnContext(ctx, "failed to load trigger state", "error", err)
		return TriggerRecord{}, nil
	}
	return record, nil
}

// motivationLocked obtains the notification body, falling back to a fixed
// default when the content collaborator fails or returns nothing. The
// trigger's once-a-day reliability never depends on that call succeeding.
func (t *DailyTrigger) motivationLocked(ctx context.Context, logger *slog.Logger) string {
	name := fallbackDisplayName
	if t.profiles != nil {
		if profile, err := t.profiles.GetProfile(ctx); err == nil && profile.Name != "" {
			name = profile.Name
		}
	}

	if t.content == nil {
		return defaultMotivation
	}

	message, err := t.content.Motivation(ctx, name)
	if err != nil || message == "" {
		logger.WarnContext(ctx, "content generation failed, using default", "error", err)
		return defaultMotivation
	}
	return message
}
