package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/zenscholar/internal/persistence"
)

// SaveTriggerState upserts the single trigger bookkeeping row.
func (s *Storage) SaveTriggerState(ctx context.Context, state persistence.TriggerState) error {
	query := `
		INSERT INTO trigger_state (slot, enabled, last_fired_date, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			enabled = excluded.enabled,
			last_fired_date = excluded.last_fired_date,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		boolToInt(state.Enabled),
		state.LastFiredDate,
		formatTimestamp(state.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save trigger state: %w", err)
	}
	return nil
}

// GetTriggerState retrieves the trigger record. An absent row yields the zero
// value: never fired, not enabled.
func (s *Storage) GetTriggerState(ctx context.Context) (persistence.TriggerState, error) {
	query := `SELECT enabled, last_fired_date, updated_at FROM trigger_state WHERE slot = 1`

	var state persistence.TriggerState
	var enabled int
	var updatedStr string

	err := s.db.QueryRowContext(ctx, query).Scan(&enabled, &state.LastFiredDate, &updatedStr)
	if err != nil {
		if errors.Is(mapRowError(err), persistence.ErrNotFound) {
			return persistence.TriggerState{}, nil
		}
		return persistence.TriggerState{}, err
	}

	state.Enabled = enabled != 0
	if state.UpdatedAt, err = parseTimestamp(updatedStr); err != nil {
		return persistence.TriggerState{}, nil
	}
	return state, nil
}
