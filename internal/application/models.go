package application

import "time"

// Phase identifies which half of the focus/break cycle is running.
type Phase string

const (
	// PhaseWork is the focused study interval.
	PhaseWork Phase = "work"
	// PhaseBreak is the rest interval between work phases.
	PhaseBreak Phase = "break"
)

// ActivityRef identifies the task or subject a focus session was launched
// from. All fields are opaque to the timer core; a zero value means a generic
// ad-hoc session.
type ActivityRef struct {
	ID         string
	Title      string
	CategoryID string
}

// IsZero reports whether the reference carries no activity.
func (r ActivityRef) IsZero() bool {
	return r.ID == "" && r.Title == "" && r.CategoryID == ""
}

// validateActivity checks the activity reference attached to a start request.
// A zero reference is always valid; an identified activity must carry a title
// so notifications and encouragement prompts have something to name.
func validateActivity(activity ActivityRef) error {
	vErr := &ValidationError{}
	if activity.ID != "" && activity.Title == "" {
		vErr.add("activity_title", "activity title is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// Session is the application view of the active focus/break cycle. Start and
// End are the absolute bounds of the current phase; remaining time is always
// derived from End, never counted down.
type Session struct {
	ID          string
	Activity    ActivityRef
	Phase       Phase
	Start       time.Time
	End         time.Time
	Active      bool
	WorkMinutes int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Remaining reports how much of the current phase is left at the given
// instant. It is non-increasing in wall-clock time and reaches zero exactly
// at End regardless of how often it is sampled.
func (s Session) Remaining(now time.Time) time.Duration {
	if !s.Active {
		return 0
	}
	remaining := s.End.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the current phase deadline has passed.
func (s Session) Expired(now time.Time) bool {
	return s.Active && !s.End.After(now)
}

// StartResult describes how Start satisfied the request.
type StartResult struct {
	Session Session
	// Resumed is true when a persisted session with a future deadline was
	// picked up instead of creating a new one.
	Resumed bool
	// CaughtUp is true when the persisted deadline had already passed and a
	// single catch-up transition was applied.
	CaughtUp bool
	// Remaining is the time left on the returned session, sampled against the
	// service clock so callers never consult their own.
	Remaining time.Duration
}

// TimerStatus is the on-demand view of the state machine.
type TimerStatus struct {
	Idle      bool
	Session   Session
	Remaining time.Duration
}

// TriggerStatus is the application view of the daily trigger bookkeeping.
type TriggerStatus struct {
	Enabled       bool
	ThresholdHour int
	LastFiredDate string
}

// StudentProfile is the application view of the profile record owned by the
// surrounding application.
type StudentProfile struct {
	Name         string
	Bio          string
	Avatar       string
	FocusMinutes int
	Streak       int
	Chapters     int
}
