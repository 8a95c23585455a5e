package sinks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"dungeon-crawlers/sim/logging"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tick INTEGER NOT NULL,
	time TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT,
	severity INTEGER NOT NULL,
	actor_id TEXT,
	actor_kind TEXT,
	payload TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
`

// SQLiteSink journals events into a local SQLite database so a run can be
// inspected after the fact.
type SQLiteSink struct {
	mu      sync.Mutex
	db      *sql.DB
	insert  *sql.Stmt
	batch   int
	pending int
	tx      *sql.Tx
}

// NewSQLiteSink opens (or creates) the journal database at path. maxBatch
// bounds how many inserts share a transaction before an implicit commit.
func NewSQLiteSink(path string, maxBatch int) (*SQLiteSink, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite sink: open %s: %w", path, err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite sink: apply schema: %w", err)
	}
	if maxBatch <= 0 {
		maxBatch = 64
	}
	return &SQLiteSink{db: db, batch: maxBatch}, nil
}

func (s *SQLiteSink) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("sqlite sink: begin: %w", err)
		}
		s.tx = tx
		s.pending = 0
	}

	var payload []byte
	if event.Payload != nil {
		if data, err := json.Marshal(event.Payload); err == nil {
			payload = data
		}
	}
	_, err := s.tx.Exec(
		`INSERT INTO events (tick, time, type, category, severity, actor_id, actor_kind, payload) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Tick,
		event.Time.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		string(event.Type),
		event.Category,
		int(event.Severity),
		event.Actor.ID,
		string(event.Actor.Kind),
		string(payload),
	)
	if err != nil {
		s.tx.Rollback()
		s.tx = nil
		return fmt.Errorf("sqlite sink: insert: %w", err)
	}
	s.pending++
	if s.pending >= s.batch {
		return s.commitLocked()
	}
	return nil
}

func (s *SQLiteSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitLocked(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *SQLiteSink) commitLocked() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	s.pending = 0
	if err != nil {
		return fmt.Errorf("sqlite sink: commit: %w", err)
	}
	return nil
}
