package persistence

import "time"

// Phase identifies which half of the focus/break cycle a session is in.
type Phase string

const (
	// PhaseWork is the focused study interval.
	PhaseWork Phase = "work"
	// PhaseBreak is the rest interval between work phases.
	PhaseBreak Phase = "break"
)

// FocusSession is the single persisted focus/break cycle record. The current
// phase is bounded by absolute Start/End instants so remaining time can be
// recomputed after a restart instead of being counted down.
type FocusSession struct {
	ID            string
	ActivityID    string
	ActivityTitle string
	CategoryID    string
	Phase         Phase
	Start         time.Time
	End           time.Time
	Active        bool
	WorkMinutes   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TriggerState records the daily motivation trigger bookkeeping. LastFiredDate
// holds a local calendar date formatted as 2006-01-02, or empty when the
// trigger has never fired.
type TriggerState struct {
	Enabled       bool
	LastFiredDate string
	UpdatedAt     time.Time
}

// Profile is the student profile owned by the surrounding application. The
// timer core only ever increments FocusMinutes.
type Profile struct {
	Name         string
	Bio          string
	Avatar       string
	FocusMinutes int
	Streak       int
	Chapters     int
	UpdatedAt    time.Time
}
