package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndReadBack(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	require.NoError(t, j.Record(ctx, "request_admitted", map[string]any{"category": "plan"}))
	require.NoError(t, j.Record(ctx, "window_wait", map[string]any{"wait": "12s"}))
	require.NoError(t, j.Record(ctx, "run_completed", nil))

	events, err := j.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)

	require.Equal(t, "request_admitted", events[0].Name)
	require.Equal(t, "plan", events[0].Fields["category"])
	require.Equal(t, "window_wait", events[1].Name)
	require.Nil(t, events[2].Fields)

	for _, e := range events {
		require.Equal(t, j.RunID(), e.RunID)
		require.False(t, e.Timestamp.IsZero())
	}
}

func TestRunIDIsUniquePerJournal(t *testing.T) {
	a, err := Open(":memory:")
	require.NoError(t, err)
	defer a.Close()

	b, err := Open(":memory:")
	require.NoError(t, err)
	defer b.Close()

	require.NotEmpty(t, a.RunID())
	require.NotEqual(t, a.RunID(), b.RunID())
}

func TestFileBackedJournalPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), "run_started", nil))
	runID := j.RunID()
	require.NoError(t, j.Close())

	// Reopening creates a new run, but the old rows are still on disk.
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	require.NotEqual(t, runID, reopened.RunID())

	events, err := reopened.Events(context.Background())
	require.NoError(t, err)
	require.Empty(t, events, "Events is scoped to the current run")
}

func TestNilJournalRecorderDropsEvents(t *testing.T) {
	r := NewRecorder(nil)
	r.Record(context.Background(), "request_admitted", nil) // must not panic
}

func TestRecorderWritesThrough(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	r := NewRecorder(j)
	r.Record(context.Background(), "retry", map[string]any{"attempt": 1})

	events, err := j.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "retry", events[0].Name)
}
