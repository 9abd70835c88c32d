package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/researchpilot/researchpilot/core"
)

// FileStore is a durable core.MemoryStore backed by a single JSON Lines file:
// one JSON object per record, append order, human-diffable. The file is
// loaded lazily on first access; a missing file is an empty store and is
// created on first append.
//
// Write discipline: every append runs under the write lock and rewrites the
// file through a temp file + rename, so a concurrent reader never observes a
// torn record and a crash mid-write leaves the previous file intact.
type FileStore struct {
	path string

	mu      sync.RWMutex
	loaded  bool
	records map[string][]core.Record
	order   []core.Record // global append order, preserved on rewrite
}

// NewFileStore creates a store persisting to path. The file is not touched
// until the first append or retrieval.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, records: make(map[string][]core.Record)}
}

// Append persists a record. Fails with a MemoryIOError only on unrecoverable
// storage failure.
func (f *FileStore) Append(record core.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.loadLocked(); err != nil {
		return core.NewMemoryIOError("append", err)
	}

	f.order = append(f.order, record)
	f.records[record.SessionID] = append(f.records[record.SessionID], record)

	if err := f.persistLocked(); err != nil {
		// Roll the in-memory view back so a later retry re-appends cleanly.
		f.order = f.order[:len(f.order)-1]
		recs := f.records[record.SessionID]
		f.records[record.SessionID] = recs[:len(recs)-1]
		return core.NewMemoryIOError("append", err)
	}
	return nil
}

// RetrieveRelevant returns up to limit prior records for the session, newest
// last. A missing or unreadable file degrades to an empty result with a
// MemoryIOError only for real I/O failures (absence is not one).
func (f *FileStore) RetrieveRelevant(sessionID, query string, limit int) ([]core.Record, error) {
	f.mu.Lock()
	if err := f.loadLocked(); err != nil {
		f.mu.Unlock()
		return nil, core.NewMemoryIOError("retrieve", err)
	}
	records := f.records[sessionID]
	f.mu.Unlock()

	return SelectRelevant(records, query, limit), nil
}

// loadLocked reads the backing file once. Caller holds the write lock.
func (f *FileStore) loadLocked() error {
	if f.loaded {
		return nil
	}

	file, err := os.Open(f.path)
	if os.IsNotExist(err) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var record core.Record
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("decode %s line %d: %w", f.path, line, err)
		}
		f.order = append(f.order, record)
		f.records[record.SessionID] = append(f.records[record.SessionID], record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	f.loaded = true
	return nil
}

// persistLocked atomically rewrites the backing file. Caller holds the write lock.
func (f *FileStore) persistLocked() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, record := range f.order {
		if err := enc.Encode(record); err != nil {
			tmp.Close()
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
