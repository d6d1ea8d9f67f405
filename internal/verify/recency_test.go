package verify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillvet/internal/store"
)

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, fmt.Errorf("disk on fire")
}

func (failingStore) Set(ctx context.Context, key string, value []byte) error {
	return fmt.Errorf("disk on fire")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return fmt.Errorf("disk on fire")
}

func TestRecentMissingLedgerReadsEmpty(t *testing.T) {
	tracker := NewRecencyTracker(store.NewMemoryStore())

	recent := tracker.Recent(context.Background(), "python")
	assert.Empty(t, recent)
}

func TestRecentCorruptLedgerReadsEmpty(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(context.Background(), "recent:python", []byte("{not json")))

	tracker := NewRecencyTracker(s)
	assert.Empty(t, tracker.Recent(context.Background(), "python"))
}

func TestRecentFailsOpenOnStorageError(t *testing.T) {
	tracker := NewRecencyTracker(failingStore{})

	// A broken ledger must never block a session from starting.
	assert.Empty(t, tracker.Recent(context.Background(), "python"))
}

func TestRecordServedRoundTrip(t *testing.T) {
	ctx := context.Background()
	tracker := NewRecencyTracker(store.NewMemoryStore())

	require.NoError(t, tracker.RecordServed(ctx, "Python", []string{"q1", "q2", ""}))

	recent := tracker.Recent(ctx, "python")
	assert.Equal(t, map[string]bool{"q1": true, "q2": true}, recent)
}

func TestRecordServedKeyIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	tracker := NewRecencyTracker(store.NewMemoryStore())

	require.NoError(t, tracker.RecordServed(ctx, "  Machine Learning ", []string{"q1"}))
	assert.True(t, tracker.Recent(ctx, "machine learning")["q1"])
}

func TestRecordServedDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	tracker := NewRecencyTracker(s)

	require.NoError(t, tracker.RecordServed(ctx, "go", []string{"q1", "q2", "q1"}))
	require.NoError(t, tracker.RecordServed(ctx, "go", []string{"q2", "q3"}))

	var ids []string
	ok, err := store.GetJSON(ctx, s, "recent:go", &ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"q2", "q3", "q1"}, ids, "new ids lead, duplicates keep first occurrence")
}

func TestRecordServedCapsLedger(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	tracker := NewRecencyTracker(s)

	var first []string
	for i := range RecentQuestionLimit {
		first = append(first, fmt.Sprintf("old-%d", i))
	}
	require.NoError(t, tracker.RecordServed(ctx, "go", first))
	require.NoError(t, tracker.RecordServed(ctx, "go", []string{"new-1", "new-2"}))

	var ids []string
	ok, err := store.GetJSON(ctx, s, "recent:go", &ids)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, ids, RecentQuestionLimit)
	assert.Equal(t, "new-1", ids[0])
	assert.Equal(t, "new-2", ids[1])
	assert.NotContains(t, ids, fmt.Sprintf("old-%d", RecentQuestionLimit-1))
	assert.NotContains(t, ids, fmt.Sprintf("old-%d", RecentQuestionLimit-2))
}

func TestRecordServedReportsStorageError(t *testing.T) {
	tracker := NewRecencyTracker(failingStore{})
	assert.Error(t, tracker.RecordServed(context.Background(), "go", []string{"q1"}))
}
