package governor

import (
	"testing"
	"time"
)

func TestWindowEvictsOldTimestamps(t *testing.T) {
	w := newSlidingWindow(5)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	w.record(base)
	w.record(base.Add(30 * time.Second))
	w.record(base.Add(59 * time.Second))

	// Exactly at the horizon boundary the oldest entry ages out.
	w.evict(base.Add(60 * time.Second))
	if w.count() != 2 {
		t.Errorf("expected 2 timestamps after eviction, got %d", w.count())
	}

	w.evict(base.Add(2 * time.Minute))
	if w.count() != 0 {
		t.Errorf("expected empty window, got %d", w.count())
	}
}

func TestWindowSaturation(t *testing.T) {
	w := newSlidingWindow(2)
	now := time.Now()

	if w.saturated() {
		t.Fatal("empty window must not be saturated")
	}
	w.record(now)
	w.record(now)
	if !w.saturated() {
		t.Fatal("window at limit must be saturated")
	}
}

func TestWindowWaitTime(t *testing.T) {
	w := newSlidingWindow(2)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	w.record(base)
	w.record(base.Add(10 * time.Second))

	// Oldest is 10s old: wait 60 - 10 + 1 = 51s.
	if got := w.waitTime(base.Add(10 * time.Second)); got != 51*time.Second {
		t.Errorf("expected 51s wait, got %v", got)
	}

	// Empty window never waits.
	empty := newSlidingWindow(2)
	if got := empty.waitTime(base); got != 0 {
		t.Errorf("expected zero wait for empty window, got %v", got)
	}
}

func TestWindowLimitFloor(t *testing.T) {
	w := newSlidingWindow(0)
	if w.limit != 1 {
		t.Errorf("limit must be floored to 1, got %d", w.limit)
	}
}

// The count of timestamps within the trailing minute never exceeds the limit
// after an admission decision, for an arbitrary admission sequence.
func TestWindowInvariantUnderSequence(t *testing.T) {
	w := newSlidingWindow(3)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		w.evict(now)
		for w.saturated() {
			now = now.Add(w.waitTime(now))
			w.evict(now)
		}
		w.record(now)
		if w.count() > 3 {
			t.Fatalf("window invariant violated at admission %d: %d tracked", i, w.count())
		}
		now = now.Add(3 * time.Second)
	}
}
