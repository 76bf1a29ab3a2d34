package notify

import (
	"context"
	"errors"
	"testing"
)

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

func (r *recordingNotifier) Notify(ctx context.Context, title, body string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestGatedNotifier(t *testing.T) {
	ctx := context.Background()
	inner := &recordingNotifier{}
	gated := NewGatedNotifier(inner)

	if err := gated.Notify(ctx, "Focus Session Over", "body"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied before the grant, got %v", err)
	}
	if len(inner.titles) != 0 {
		t.Fatalf("nothing may reach the inner notifier before the grant")
	}

	granted, err := gated.RequestPermission(ctx)
	if err != nil || !granted {
		t.Fatalf("expected the grant to succeed, got %v, %v", granted, err)
	}

	if err := gated.Notify(ctx, "Focus Session Over", "body"); err != nil {
		t.Fatalf("Notify returned error after grant: %v", err)
	}
	if len(inner.titles) != 1 || inner.titles[0] != "Focus Session Over" {
		t.Fatalf("expected the dispatch to reach the inner notifier, got %v", inner.titles)
	}
}
