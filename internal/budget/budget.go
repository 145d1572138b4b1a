// Package budget tracks the hard global ceilings on ancillary artifacts
// (screenshots, diagrams) for a single generation run. Counters are
// monotonic within a run and re-initialized at the start of each run.
package budget

import (
	"sync"
)

// Kind identifies one of the two independent allocation streams.
type Kind string

const (
	KindScreenshot Kind = "screenshot"
	KindDiagram    Kind = "diagram"
)

// Budget holds the caps and usage counters for one run. Reaching a cap is a
// normal termination condition for that stream, not an error: callers check
// TryAcquire and simply stop allocating.
//
// The current pipeline is single-threaded, but the mutex keeps the
// read-check-increment sequence atomic if a phase is ever parallelized.
type Budget struct {
	mu sync.Mutex

	maxScreenshots  int
	maxDiagrams     int
	screenshotsUsed int
	diagramsUsed    int
}

// New creates a budget for one run. Negative caps are treated as zero.
func New(maxScreenshots, maxDiagrams int) *Budget {
	if maxScreenshots < 0 {
		maxScreenshots = 0
	}
	if maxDiagrams < 0 {
		maxDiagrams = 0
	}
	return &Budget{maxScreenshots: maxScreenshots, maxDiagrams: maxDiagrams}
}

// TryAcquire consumes one slot from the given stream if any remain. It
// returns false once the cap is reached; counters never decrement.
func (b *Budget) TryAcquire(kind Kind) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch kind {
	case KindScreenshot:
		if b.screenshotsUsed >= b.maxScreenshots {
			return false
		}
		b.screenshotsUsed++
		return true
	case KindDiagram:
		if b.diagramsUsed >= b.maxDiagrams {
			return false
		}
		b.diagramsUsed++
		return true
	default:
		return false
	}
}

// Remaining reports how many slots are left in a stream.
func (b *Budget) Remaining(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch kind {
	case KindScreenshot:
		return b.maxScreenshots - b.screenshotsUsed
	case KindDiagram:
		return b.maxDiagrams - b.diagramsUsed
	default:
		return 0
	}
}

// Exhausted reports whether a stream has reached its cap.
func (b *Budget) Exhausted(kind Kind) bool {
	return b.Remaining(kind) <= 0
}

// Used reports how many slots a stream has consumed.
func (b *Budget) Used(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch kind {
	case KindScreenshot:
		return b.screenshotsUsed
	case KindDiagram:
		return b.diagramsUsed
	default:
		return 0
	}
}
