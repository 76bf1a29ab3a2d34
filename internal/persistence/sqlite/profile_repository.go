package sqlite

import (
	"context"
	"fmt"

	"github.com/example/zenscholar/internal/persistence"
)

// GetProfile retrieves the stored profile row.
func (s *Storage) GetProfile(ctx context.Context) (persistence.Profile, error) {
	query := `SELECT name, bio, avatar, focus_minutes, streak, chapters, updated_at FROM profile WHERE slot = 1`

	var profile persistence.Profile
	var updatedStr string

	err := s.db.QueryRowContext(ctx, query).Scan(
		&profile.Name,
		&profile.Bio,
		&profile.Avatar,
		&profile.FocusMinutes,
		&profile.Streak,
		&profile.Chapters,
		&updatedStr,
	)
	if err != nil {
		return persistence.Profile{}, mapRowError(err)
	}

	if profile.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
		return persistence.Profile{}, persistence.ErrNotFound
	}
	return profile, nil
}

// SaveProfile upserts the single profile row.
func (s *Storage) SaveProfile(ctx context.Context, profile persistence.Profile) error {
	query := `
		INSERT INTO profile (slot, name, bio, avatar, focus_minutes, streak, chapters, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			name = excluded.name,
			bio = excluded.bio,
			avatar = excluded.avatar,
			focus_minutes = excluded.focus_minutes,
			streak = excluded.streak,
			chapters = excluded.chapters,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		profile.Name,
		profile.Bio,
		profile.Avatar,
		profile.FocusMinutes,
		profile.Streak,
		profile.Chapters,
		formatTimestamp(profile.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// AddFocusMinutes increments the focus counter in place, creating the profile
// row when absent so early work completions are never dropped.
func (s *Storage) AddFocusMinutes(ctx context.Context, minutes int) error {
	query := `
		INSERT INTO profile (slot, name, bio, avatar, focus_minutes, streak, chapters, updated_at)
		VALUES (1, '', '', '', ?, 0, 0, '')
		ON CONFLICT(slot) DO UPDATE SET
			focus_minutes = profile.focus_minutes + excluded.focus_minutes
	`

	if _, err := s.db.ExecContext(ctx, query, minutes); err != nil {
		return fmt.Errorf("failed to add focus minutes: %w", err)
	}
	return nil
}
