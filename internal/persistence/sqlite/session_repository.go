package sqlite

import (
	"context"
	"fmt"

	"github.com/example/zenscholar/internal/persistence"
)

// SaveActiveSession upserts the single session row.
func (s *Storage) SaveActiveSession(ctx context.Context, session persistence.FocusSession) error {
	query := `
		INSERT INTO active_session (slot, id, activity_id, activity_title, category_id, phase, start_at, end_at, active, work_minutes, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			activity_id = excluded.activity_id,
			activity_title = excluded.activity_title,
			category_id = excluded.category_id,
			phase = excluded.phase,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			active = excluded.active,
			work_minutes = excluded.work_minutes,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.ActivityID,
		session.ActivityTitle,
		session.CategoryID,
		string(session.Phase),
		formatTimestamp(session.Start),
		formatTimestamp(session.End),
		boolToInt(session.Active),
		session.WorkMinutes,
		formatTimestamp(session.CreatedAt),
		formatTimestamp(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save active session: %w", err)
	}
	return nil
}

// GetActiveSession retrieves the stored session, mapping an absent or
// unreadable row to persistence.ErrNotFound so corrupt state degrades to
// "no session".
func (s *Storage) GetActiveSession(ctx context.Context) (persistence.FocusSession, error) {
	query := `
		SELECT id, activity_id, activity_title, category_id, phase, start_at, end_at, active, work_minutes, created_at, updated_at
		FROM active_session
		WHERE slot = 1
	`

	var session persistence.FocusSession
	var phase string
	var startStr, endStr, createdStr, updatedStr string
	var active int

	err := s.db.QueryRowContext(ctx, query).Scan(
		&session.ID,
		&session.ActivityID,
		&session.ActivityTitle,
		&session.CategoryID,
		&phase,
		&startStr,
		&endStr,
		&active,
		&session.WorkMinutes,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return persistence.FocusSession{}, mapRowError(err)
	}

	session.Phase = persistence.Phase(phase)
	session.Active = active != 0

	if session.Start, err = parseTimestamp(startStr); err != nil {
		return persistence.FocusSession{}, persistence.ErrNotFound
	}
	if session.End, err = parseTimestamp(endStr); err != nil {
		return persistence.FocusSession{}, persistence.ErrNotFound
	}
	if session.CreatedAt, err = parseTimestamp(createdStr); err != nil {
		return persistence.FocusSession{}, persistence.ErrNotFound
	}
	if session.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
		return persistence.FocusSession{}, persistence.ErrNotFound
	}

	return session, nil
}

// DeleteActiveSession clears the session row. Deleting an absent row is not
// an error.
func (s *Storage) DeleteActiveSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM active_session WHERE slot = 1`); err != nil {
		return fmt.Errorf("failed to delete active session: %w", err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
