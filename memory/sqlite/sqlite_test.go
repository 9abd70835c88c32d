package sqlite

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

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "memory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, store.Append(core.Record{
		ID:        "r1",
		SessionID: "s1",
		Timestamp: ts,
		Query:     "diffusion models for audio",
		Response:  "an answer",
		Artifacts: map[string][]string{"findings": {"Hypothesis: X"}},
	}))

	got, err := store.RetrieveRelevant("s1", "diffusion audio", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
	assert.True(t, ts.Equal(got[0].Timestamp))
	assert.Equal(t, []string{"Hypothesis: X"}, got[0].Artifacts["findings"])
}

func TestStoreSessionIsolationAndOrder(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(core.Record{
			ID:        fmt.Sprintf("a-%d", i),
			SessionID: "a",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Query:     "shared topic",
			Response:  "r",
		}))
	}
	require.NoError(t, store.Append(core.Record{
		ID: "b-0", SessionID: "b", Timestamp: base, Query: "shared topic", Response: "r",
	}))

	got, err := store.RetrieveRelevant("a", "shared topic", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Newest three, oldest first.
	assert.Equal(t, "a-2", got[0].ID)
	assert.Equal(t, "a-4", got[2].ID)
}

func TestStoreConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for s := 0; s < 4; s++ {
		session := fmt.Sprintf("s%d", s)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				errs <- store.Append(core.Record{
					ID:        fmt.Sprintf("%s-%d", session, id),
					SessionID: session,
					Timestamp: now,
					Query:     "q",
					Response:  "r",
				})
			}(i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for s := 0; s < 4; s++ {
		got, err := store.RetrieveRelevant(fmt.Sprintf("s%d", s), "q", 100)
		require.NoError(t, err)
		assert.Len(t, got, 10)
	}
}

func TestStoreEmptySession(t *testing.T) {
	store := newTestStore(t)
	got, err := store.RetrieveRelevant("nobody", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
