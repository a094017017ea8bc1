package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryGateCooldownWindow(t *testing.T) {
	gate := NewMemoryGate(3 * time.Second)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return base }
	ctx := context.Background()

	if ok, _ := gate.Allow(ctx, "station-1"); !ok {
		t.Fatal("fresh key must be allowed")
	}
	if err := gate.Mark(ctx, "station-1"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	gate.now = func() time.Time { return base.Add(time.Second) }
	if ok, _ := gate.Allow(ctx, "station-1"); ok {
		t.Error("key inside cooldown must be denied")
	}
	// Other keys are independent.
	if ok, _ := gate.Allow(ctx, "station-2"); !ok {
		t.Error("unrelated key must be allowed")
	}

	gate.now = func() time.Time { return base.Add(3 * time.Second) }
	if ok, _ := gate.Allow(ctx, "station-1"); !ok {
		t.Error("key past the cooldown must be allowed again")
	}
}
