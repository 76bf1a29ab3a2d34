package persistence

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed implementation of every repository interface.
// It backs tests and zero-config runs where no SQLite file is wanted.
type MemoryStore struct {
	mu         sync.RWMutex
	session    *FocusSession
	trigger    TriggerState
	hasTrigger bool
	profile    Profile
	hasProfile bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveActiveSession stores the session, replacing any previous record.
func (s *MemoryStore) SaveActiveSession(ctx context.Context, session FocusSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := session
	s.session = &clone
	return nil
}

// GetActiveSession retrieves the stored session.
func (s *MemoryStore) GetActiveSession(ctx context.Context) (FocusSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return FocusSession{}, ErrNotFound
	}
	return *s.session, nil
}

// DeleteActiveSession clears the stored session. Deleting an absent session
// is not an error.
func (s *MemoryStore) DeleteActiveSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}

// SaveTriggerState stores the trigger bookkeeping record.
func (s *MemoryStore) SaveTriggerState(ctx context.Context, state TriggerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trigger = state
	s.hasTrigger = true
	return nil
}

// GetTriggerState retrieves the trigger record, or a zero value when none was
// stored yet.
func (s *MemoryStore) GetTriggerState(ctx context.Context) (TriggerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasTrigger {
		return TriggerState{}, nil
	}
	return s.trigger, nil
}

// GetProfile retrieves the stored profile.
func (s *MemoryStore) GetProfile(ctx context.Context) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasProfile {
		return Profile{}, ErrNotFound
	}
	return s.profile, nil
}

// SaveProfile stores the profile record.
func (s *MemoryStore) SaveProfile(ctx context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = profile
	s.hasProfile = true
	return nil
}

// AddFocusMinutes increments the profile focus counter, creating the profile
// record when absent so early work completions are never dropped.
func (s *MemoryStore) AddFocusMinutes(ctx context.Context, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.FocusMinutes += minutes
	s.hasProfile = true
	return nil
}
