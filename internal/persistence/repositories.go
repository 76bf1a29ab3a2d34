package persistence

import "context"

// FocusSessionRepository stores the single active focus/break session.
//
// SaveActiveSession overwrites whatever session is currently stored; the
// store never holds more than one record. GetActiveSession returns
// ErrNotFound when no session is stored, and implementations treat an
// unparsable stored record the same way rather than failing.
type FocusSessionRepository interface {
	SaveActiveSession(ctx context.Context, session FocusSession) error
	GetActiveSession(ctx context.Context) (FocusSession, error)
	DeleteActiveSession(ctx context.Context) error
}

// TriggerStateRepository stores daily trigger bookkeeping. GetTriggerState
// returns a zero-value state rather than ErrNotFound when nothing has been
// stored yet: an absent record means "never fired, not enabled".
type TriggerStateRepository interface {
	SaveTriggerState(ctx context.Context, state TriggerState) error
	GetTriggerState(ctx context.Context) (TriggerState, error)
}

// ProfileRepository exposes the student profile and the focus-minutes sink
// the timer writes to when a work phase completes.
type ProfileRepository interface {
	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, profile Profile) error
	AddFocusMinutes(ctx context.Context, minutes int) error
}
