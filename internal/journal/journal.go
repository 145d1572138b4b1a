// Package journal persists run events to SQLite so a generation run can be
// inspected after the fact: every admitted request, window wait, retry and
// allocation decision lands here keyed by run ID.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event is one recorded journal entry.
type Event struct {
	ID        int64
	RunID     string
	Name      string
	Timestamp time.Time
	Fields    map[string]any
}

// Journal is a SQLite-backed run journal. Use ":memory:" for an ephemeral
// journal or a file path for one that survives the process.
type Journal struct {
	db    *sql.DB
	runID string
	mu    sync.RWMutex
}

// Open creates the journal and its schema. Each Journal belongs to a single
// run and stamps every event with a fresh run ID.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}

	j := &Journal{db: db, runID: uuid.NewString()}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		fields TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON run_events(run_id);
	CREATE INDEX IF NOT EXISTS idx_event ON run_events(event);
	`
	_, err := j.db.Exec(schema)
	return err
}

// RunID returns the identifier stamped onto this journal's events.
func (j *Journal) RunID() string {
	return j.runID
}

// Record appends one event. Failures are returned but callers generally log
// and continue, the journal must never abort a run.
func (j *Journal) Record(ctx context.Context, event string, fields map[string]any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var fieldsJSON []byte
	if fields != nil {
		var err error
		fieldsJSON, err = json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("marshal event fields: %w", err)
		}
	}

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO run_events (run_id, event, timestamp, fields) VALUES (?, ?, ?, ?)",
		j.runID, event, time.Now().Unix(), fieldsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

// Events returns all events recorded for this run, oldest first.
func (j *Journal) Events(ctx context.Context) ([]Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT id, run_id, event, timestamp, fields FROM run_events WHERE run_id = ? ORDER BY id",
		j.runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		var fieldsJSON []byte
		if err := rows.Scan(&e.ID, &e.RunID, &e.Name, &ts, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("unmarshal event fields: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run events: %w", err)
	}
	return events, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
