// Package sqlite provides a durable core.MemoryStore backed by SQLite. The
// database serializes writers, so concurrent appends from different sessions
// are atomic without store-level locking.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/researchpilot/researchpilot/core"
	"github.com/researchpilot/researchpilot/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL,
	session_id TEXT NOT NULL,
	timestamp  TEXT NOT NULL,
	query      TEXT NOT NULL,
	response   TEXT NOT NULL,
	artifacts  TEXT
);
CREATE INDEX IF NOT EXISTS idx_records_session ON records (session_id, seq);
`

// Store is a SQLite-backed core.MemoryStore. Records are append-only; rows
// are never updated or deleted.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path, applies WAL mode and the
// schema, and returns the store.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Append inserts a record. Implements core.MemoryStore.
func (s *Store) Append(record core.Record) error {
	artifacts, err := json.Marshal(record.Artifacts)
	if err != nil {
		return core.NewMemoryIOError("append", fmt.Errorf("encode artifacts: %w", err))
	}

	_, err = s.db.Exec(
		`INSERT INTO records (id, session_id, timestamp, query, response, artifacts) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.SessionID, record.Timestamp.UTC().Format(time.RFC3339Nano),
		record.Query, record.Response, string(artifacts),
	)
	if err != nil {
		return core.NewMemoryIOError("append", err)
	}
	return nil
}

// RetrieveRelevant returns up to limit prior records for the session, newest
// last. Implements core.MemoryStore.
func (s *Store) RetrieveRelevant(sessionID, query string, limit int) ([]core.Record, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, timestamp, query, response, artifacts FROM records WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, core.NewMemoryIOError("retrieve", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		var (
			record    core.Record
			ts        string
			artifacts sql.NullString
		)
		if err := rows.Scan(&record.ID, &record.SessionID, &ts, &record.Query, &record.Response, &artifacts); err != nil {
			return nil, core.NewMemoryIOError("retrieve", err)
		}
		if record.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, core.NewMemoryIOError("retrieve", fmt.Errorf("decode timestamp: %w", err))
		}
		if artifacts.Valid && artifacts.String != "" && artifacts.String != "null" {
			if err := json.Unmarshal([]byte(artifacts.String), &record.Artifacts); err != nil {
				return nil, core.NewMemoryIOError("retrieve", fmt.Errorf("decode artifacts: %w", err))
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewMemoryIOError("retrieve", err)
	}

	return memory.SelectRelevant(records, query, limit), nil
}
