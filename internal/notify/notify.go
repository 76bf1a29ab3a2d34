// Package notify abstracts the host platform's notification capability. The
// timer core never assumes a particular host; it receives a Notifier and
// treats every dispatch failure as non-fatal.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrPermissionDenied is returned when the user has not granted notification
// permission. Callers skip the dispatch and carry on.
var ErrPermissionDenied = errors.New("notify: permission denied")

// Notifier is the capability interface injected into the timer core.
type Notifier interface {
	// RequestPermission asks the host for dispatch permission. Permission
	// state is owned by the host; the core only reads the outcome.
	RequestPermission(ctx context.Context) (bool, error)
	// Notify dispatches a notification, failing softly when permission was
	// not granted.
	Notify(ctx context.Context, title, body string) error
}

// LogNotifier writes notifications to the structured log. It stands in for a
// host notification surface in headless runs and is always "granted".
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs a LogNotifier backed by the supplied logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// RequestPermission always grants.
func (n *LogNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// Notify logs the notification payload.
func (n *LogNotifier) Notify(ctx context.Context, title, body string) error {
	n.logger.InfoContext(ctx, "notification dispatched", "title", title, "body", body)
	return nil
}

// GatedNotifier wraps another notifier behind an explicit permission grant,
// mirroring hosts where dispatch silently fails until the user opts in.
type GatedNotifier struct {
	mu      sync.RWMutex
	granted bool
	inner   Notifier
}

// NewGatedNotifier wraps the inner notifier. Permission starts ungranted.
func NewGatedNotifier(inner Notifier) *GatedNotifier {
	return &GatedNotifier{inner: inner}
}

// RequestPermission grants permission and remembers the grant.
func (n *GatedNotifier) RequestPermission(ctx context.Context) (bool, error) {
	n.mu.Lock()
	n.granted = true
	n.mu.Unlock()
	return true, nil
}

// Notify forwards to the inner notifier once permission was granted and
// returns ErrPermissionDenied otherwise.
func (n *GatedNotifier) Notify(ctx context.Context, title, body string) error {
	n.mu.RLock()
	granted := n.granted
	n.mu.RUnlock()

	if !granted {
		return ErrPermissionDenied
	}
	if n.inner == nil {
		return nil
	}
	return n.inner.Notify(ctx, title, body)
}
