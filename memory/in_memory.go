package memory

import (
	"sync"

	"github.com/researchpilot/researchpilot/core"
)

// InMemoryStore is a process-local core.MemoryStore. Records are kept per
// session in append order. Suitable for tests and demos; use FileStore or the
// sqlite adapter when records must survive the process.
//
// Concurrency: protected by RWMutex; appends from different sessions never
// interleave partially because each append happens under the write lock.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]core.Record // sessionID -> records, append order
}

// NewInMemoryStore creates an empty in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]core.Record)}
}

// Append adds a record to its session log.
func (m *InMemoryStore) Append(record core.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.SessionID] = append(m.records[record.SessionID], record)
	return nil
}

// RetrieveRelevant returns up to limit prior records for the session, newest
// last. Unknown sessions yield an empty slice.
func (m *InMemoryStore) RetrieveRelevant(sessionID, query string, limit int) ([]core.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SelectRelevant(m.records[sessionID], query, limit), nil
}

// Len reports the number of records stored for a session.
func (m *InMemoryStore) Len(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[sessionID])
}
