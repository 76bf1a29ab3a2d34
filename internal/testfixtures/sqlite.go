package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/zenscholar/internal/persistence"
	"github.com/example/zenscholar/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Sessions persistence.FocusSessionRepository
	Trigger  persistence.TriggerStateRepository
	Profile  persistence.ProfileRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. The harness is closed when the test finishes.
func NewSQLiteHarness(t testing.TB) *SQLiteHarness {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zenscholar-test.db")
	storage, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open sqlite storage: %v", err)
	}
	if err := storage.Migrate(context.Background()); err != nil {
		storage.Close()
		t.Fatalf("migrate sqlite storage: %v", err)
	}

	harness := &SQLiteHarness{
		Sessions: storage,
		Trigger:  storage,
		Profile:  storage,
		cleanup: func() {
			storage.Close()
		},
	}
	t.Cleanup(harness.Close)
	return harness
}
