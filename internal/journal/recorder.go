package journal

import (
	"context"
	"log/slog"
)

// Recorder adapts a Journal to the event-recording hooks used across the
// pipeline. Write failures are logged and swallowed.
type Recorder struct {
	journal *Journal
}

// NewRecorder wraps a journal. A nil journal yields a recorder that drops
// everything, which keeps call sites free of enabled checks.
func NewRecorder(j *Journal) *Recorder {
	return &Recorder{journal: j}
}

// Record writes one event to the journal.
func (r *Recorder) Record(ctx context.Context, event string, fields map[string]any) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Record(ctx, event, fields); err != nil {
		slog.Warn("Failed to record journal event", "event", event, "error", err)
	}
}
