package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/zenscholar/internal/application"
	"github.com/example/zenscholar/internal/persistence"
)

var sessionCounter uint64

var referenceTime = time.Date(2024, time.June, 1, 16, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures. It
// falls on an afternoon so trigger-hour comparisons behave predictably.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic focus session record that can be
// materialised for application or persistence tests.
type SessionFixture struct {
	ID            string
	ActivityID    string
	ActivityTitle string
	CategoryID    string
	Phase         application.Phase
	Start         time.Time
	End           time.Time
	Active        bool
	WorkMinutes   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic work-phase session fixture with
// optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := SessionFixture{
		ID:            fmt.Sprintf("session-%03d", idx),
		ActivityID:    fmt.Sprintf("activity-%03d", idx),
		ActivityTitle: fmt.Sprintf("Subject %03d", idx),
		CategoryID:    "study",
		Phase:         application.PhaseWork,
		Start:         start,
		End:           start.Add(application.DefaultWorkDuration),
		Active:        true,
		CreatedAt:     start,
		UpdatedAt:     start,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionActivity sets the activity reference fields.
func WithSessionActivity(id, title, categoryID string) SessionOption {
	return func(f *SessionFixture) {
		f.ActivityID = id
		f.ActivityTitle = title
		f.CategoryID = categoryID
	}
}

// WithSessionPhase sets the phase on the fixture.
func WithSessionPhase(phase application.Phase) SessionOption {
	return func(f *SessionFixture) {
		f.Phase = phase
	}
}

// WithSessionWindow sets the start and end bounds of the current phase.
func WithSessionWindow(start, end time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.Start = start
		f.End = end
	}
}

// WithSessionActive sets the active flag.
func WithSessionActive(active bool) SessionOption {
	return func(f *SessionFixture) {
		f.Active = active
	}
}

// WithSessionWorkMinutes sets the accumulated work minutes.
func WithSessionWorkMinutes(minutes int) SessionOption {
	return func(f *SessionFixture) {
		f.WorkMinutes = minutes
	}
}

// WithSessionTimestamps sets both created and updated timestamps.
func WithSessionTimestamps(created, updated time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID: f.ID,
		Activity: application.ActivityRef{
			ID:         f.ActivityID,
			Title:      f.ActivityTitle,
			CategoryID: f.CategoryID,
		},
		Phase:       f.Phase,
		Start:       f.Start,
		End:         f.End,
		Active:      f.Active,
		WorkMinutes: f.WorkMinutes,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.FocusSession value.
func (f SessionFixture) Persistence() persistence.FocusSession {
	return persistence.FocusSession{
		ID:            f.ID,
		ActivityID:    f.ActivityID,
		ActivityTitle: f.ActivityTitle,
		CategoryID:    f.CategoryID,
		Phase:         persistence.Phase(f.Phase),
		Start:         f.Start,
		End:           f.End,
		Active:        f.Active,
		WorkMinutes:   f.WorkMinutes,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// --------------------------- Trigger fixtures ----------------------------

// TriggerFixture represents deterministic daily-trigger bookkeeping.
type TriggerFixture struct {
	Enabled       bool
	LastFiredDate string
	UpdatedAt     time.Time
}

// TriggerOption configures the generated trigger fixture.
type TriggerOption func(*TriggerFixture)

// NewTriggerFixture returns an enabled, never-fired trigger fixture with
// optional overrides.
func NewTriggerFixture(opts ...TriggerOption) TriggerFixture {
	fixture := TriggerFixture{
		Enabled:   true,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTriggerEnabled sets the enabled flag.
func WithTriggerEnabled(enabled bool) TriggerOption {
	return func(f *TriggerFixture) {
		f.Enabled = enabled
	}
}

// WithTriggerFiredDate stamps the last-fired local date, "2006-01-02" layout.
func WithTriggerFiredDate(date string) TriggerOption {
	return func(f *TriggerFixture) {
		f.LastFiredDate = date
	}
}

// Application returns the fixture as an application.TriggerRecord value.
func (f TriggerFixture) Application() application.TriggerRecord {
	return application.TriggerRecord{
		Enabled:       f.Enabled,
		LastFiredDate: f.LastFiredDate,
	}
}

// Persistence returns the fixture as a persistence.TriggerState value.
func (f TriggerFixture) Persistence() persistence.TriggerState {
	return persistence.TriggerState{
		Enabled:       f.Enabled,
		LastFiredDate: f.LastFiredDate,
		UpdatedAt:     f.UpdatedAt,
	}
}

// --------------------------- Profile fixtures ----------------------------

// ProfileFixture represents a deterministic student profile record.
type ProfileFixture struct {
	Name         string
	Bio          string
	Avatar       string
	FocusMinutes int
	Streak       int
	Chapters     int
	UpdatedAt    time.Time
}

// ProfileOption configures the generated profile fixture.
type ProfileOption func(*ProfileFixture)

// NewProfileFixture returns a deterministic profile fixture with optional
// overrides.
func NewProfileFixture(opts ...ProfileOption) ProfileFixture {
	fixture := ProfileFixture{
		Name:      "Aiko",
		Bio:       "Second-year student.",
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProfileName overrides the student name.
func WithProfileName(name string) ProfileOption {
	return func(f *ProfileFixture) {
		f.Name = name
	}
}

// WithProfileFocusMinutes sets the accumulated focus minutes.
func WithProfileFocusMinutes(minutes int) ProfileOption {
	return func(f *ProfileFixture) {
		f.FocusMinutes = minutes
	}
}

// WithProfileProgress sets streak and completed chapters together.
func WithProfileProgress(streak, chapters int) ProfileOption {
	return func(f *ProfileFixture) {
		f.Streak = streak
		f.Chapters = chapters
	}
}

// Application returns the fixture as an application.StudentProfile value.
func (f ProfileFixture) Application() application.StudentProfile {
	return application.StudentProfile{
		Name:         f.Name,
		Bio:          f.Bio,
		Avatar:       f.Avatar,
		FocusMinutes: f.FocusMinutes,
		Streak:       f.Streak,
		Chapters:     f.Chapters,
	}
}

// Persistence returns the fixture as a persistence.Profile value.
func (f ProfileFixture) Persistence() persistence.Profile {
	return persistence.Profile{
		Name:         f.Name,
		Bio:          f.Bio,
		Avatar:       f.Avatar,
		FocusMinutes: f.FocusMinutes,
		Streak:       f.Streak,
		Chapters:     f.Chapters,
		UpdatedAt:    f.UpdatedAt,
	}
}
