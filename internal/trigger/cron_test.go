package trigger

import (
	"context"
	"testing"
	"time"
)

func TestStartRejectsBadInput(t *testing.T) {
	if _, err := NewCron("", "").Start(context.Background()); err == nil {
		t.Fatalf("expected error for empty schedule")
	}
	if _, err := NewCron("* * * * *", "Mars/Olympus").Start(context.Background()); err == nil {
		t.Fatalf("expected error for bogus timezone")
	}
	if _, err := NewCron("not a schedule", "").Start(context.Background()); err == nil {
		t.Fatalf("expected error for malformed schedule")
	}
}

func TestCronEmitsEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewCron("@every 100ms", "")
	events, err := c.Start(ctx)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}

	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Fatalf("no event within deadline")
	}

	cancel()
	// The channel closes once the context ends.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("events channel not closed after cancel")
		}
	}
}
