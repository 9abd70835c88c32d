package memory

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchpilot/researchpilot/core"
)

func record(id, session, query, response string, ts time.Time) core.Record {
	return core.Record{
		ID:        id,
		SessionID: session,
		Timestamp: ts,
		Query:     query,
		Response:  response,
	}
}

func TestInMemoryStoreSessionIsolation(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now().UTC()

	require.NoError(t, store.Append(record("1", "a", "transformers", "r1", now)))
	require.NoError(t, store.Append(record("2", "b", "transformers", "r2", now)))

	got, err := store.RetrieveRelevant("a", "transformers", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestInMemoryStoreConcurrentAppends(t *testing.T) {
	store := NewInMemoryStore()
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		session := fmt.Sprintf("session-%d", s)
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				_ = store.Append(record(fmt.Sprintf("%s-%d", session, id), session, "query", "response", now))
			}(i)
		}
	}
	wg.Wait()

	for s := 0; s < 4; s++ {
		got, err := store.RetrieveRelevant(fmt.Sprintf("session-%d", s), "query", 100)
		require.NoError(t, err)
		assert.Len(t, got, 25)
	}
}

func TestFileStoreRoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	store := NewFileStore(path)
	r := record("1", "s", "graph networks", "an answer", now)
	r.Artifacts = map[string][]string{"stages": {"research_analyst"}}
	require.NoError(t, store.Append(r))
	require.NoError(t, store.Append(record("2", "s", "another topic", "other", now.Add(time.Minute))))

	// A fresh instance must see both records.
	reopened := NewFileStore(path)
	got, err := reopened.RetrieveRelevant("s", "graph networks", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, []string{"research_analyst"}, got[0].Artifacts["stages"])
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")
	store := NewFileStore(path)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for s := 0; s < 4; s++ {
		session := fmt.Sprintf("session-%d", s)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				errs <- store.Append(record(fmt.Sprintf("%s-%d", session, id), session, "query", "response", now))
			}(i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Every session's records survive into a fresh instance intact.
	reopened := NewFileStore(path)
	for s := 0; s < 4; s++ {
		got, err := reopened.RetrieveRelevant(fmt.Sprintf("session-%d", s), "query", 100)
		require.NoError(t, err)
		assert.Len(t, got, 10)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "never-written.jsonl"))
	got, err := store.RetrieveRelevant("s", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectRelevantPrefersOverlapThenRecency(t *testing.T) {
	now := time.Now().UTC()
	records := []core.Record{
		record("old-match", "s", "quantum computing basics", "", now.Add(-3*time.Hour)),
		record("unrelated", "s", "sourdough starters", "", now.Add(-2*time.Hour)),
		record("new-match", "s", "quantum error correction", "", now.Add(-time.Hour)),
	}

	got := SelectRelevant(records, "quantum computing", 2)
	require.Len(t, got, 2)
	// Both matches win over the more recent unrelated record,
	// chronological order preserved.
	assert.Equal(t, "old-match", got[0].ID)
	assert.Equal(t, "new-match", got[1].ID)
}

func TestSelectRelevantBackfillsWithRecency(t *testing.T) {
	now := time.Now().UTC()
	records := []core.Record{
		record("oldest", "s", "alpha", "", now.Add(-3*time.Hour)),
		record("middle", "s", "beta", "", now.Add(-2*time.Hour)),
		record("newest", "s", "gamma", "", now.Add(-time.Hour)),
	}

	got := SelectRelevant(records, "delta unrelated", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "middle", got[0].ID)
	assert.Equal(t, "newest", got[1].ID)
}

func TestSelectRelevantZeroLimit(t *testing.T) {
	got := SelectRelevant([]core.Record{record("1", "s", "q", "", time.Now())}, "q", 0)
	assert.Empty(t, got)
}
