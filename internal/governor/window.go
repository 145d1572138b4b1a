package governor

import (
	"time"
)

// windowHorizon is the trailing interval the external service counts
// requests over. The contract is "N requests per rolling minute", so a
// sliding window matches it exactly; fixed-aligned buckets would both
// under- and over-throttle at bucket boundaries.
const windowHorizon = time.Minute

// slidingWindow is a bounded, time-ordered queue of admitted request
// timestamps covering the trailing minute. It is owned exclusively by the
// Governor and mutated only by its admission check.
type slidingWindow struct {
	limit      int
	timestamps []time.Time
}

func newSlidingWindow(limit int) *slidingWindow {
	if limit < 1 {
		limit = 1
	}
	return &slidingWindow{limit: limit}
}

// evict drops all timestamps older than the horizon.
func (w *slidingWindow) evict(now time.Time) {
	cutoff := now.Add(-windowHorizon)
	i := 0
	for i < len(w.timestamps) && !w.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.timestamps = w.timestamps[i:]
	}
}

// saturated reports whether the window has reached its limit.
func (w *slidingWindow) saturated() bool {
	return len(w.timestamps) >= w.limit
}

// waitTime returns how long to block before the oldest tracked timestamp
// ages out of the horizon, plus a one second safety margin.
func (w *slidingWindow) waitTime(now time.Time) time.Duration {
	if len(w.timestamps) == 0 {
		return 0
	}
	wait := windowHorizon - now.Sub(w.timestamps[0]) + time.Second
	if wait < 0 {
		return 0
	}
	return wait
}

// record appends an admitted request timestamp.
func (w *slidingWindow) record(now time.Time) {
	w.timestamps = append(w.timestamps, now)
}

// count returns the number of tracked timestamps.
func (w *slidingWindow) count() int {
	return len(w.timestamps)
}
