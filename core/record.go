package core

import "time"

// Record is a single persisted interaction. Records are append-only: once
// written they are never mutated, and ordering within a session follows
// append time. Beyond storage and retrieval the engine treats the artifact
// payload as opaque.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	// Artifacts holds structured items a stage chose to surface, keyed by a
	// producer-defined label (e.g. "findings", "stages").
	Artifacts map[string][]string `json:"artifacts,omitempty"`
}

// MemoryStore persists Records per session and retrieves the ones relevant to
// a follow-up query. Implementations must serialize physical writes so that
// concurrent appends from different sessions never interleave partially; a
// lost update on concurrent append is a correctness bug.
//
// Append fails with a MemoryIOError only on unrecoverable storage failure. A
// missing backing file is treated as an empty store auto-created on first
// write. RetrieveRelevant returns a bounded number of prior records for the
// session ordered oldest first (newest last), or an empty slice when the
// session is unknown.
type MemoryStore interface {
	Append(record Record) error
	RetrieveRelevant(sessionID, query string, limit int) ([]Record, error)
}
