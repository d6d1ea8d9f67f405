package verify

import (
	"context"
	"strings"

	"skillvet/internal/store"
)

// RecentQuestionLimit bounds the per-skill ledger of recently served
// question ids.
const RecentQuestionLimit = 30

// RecencyTracker keeps a durable, per-skill ledger of the question ids served
// most recently, so future sessions bias selection away from repeats.
type RecencyTracker struct {
	store store.Store
}

// NewRecencyTracker creates a tracker backed by the durable store.
func NewRecencyTracker(s store.Store) *RecencyTracker {
	return &RecencyTracker{store: s}
}

func recencyKey(skill string) string {
	return "recent:" + strings.ToLower(strings.TrimSpace(skill))
}

// Recent returns the set of recently served question ids for skill. A missing
// or corrupt ledger reads as empty; storage failures also fail open so a
// broken ledger never blocks a session from starting.
func (t *RecencyTracker) Recent(ctx context.Context, skill string) map[string]bool {
	var ids []string
	if _, err := store.GetJSON(ctx, t.store, recencyKey(skill), &ids); err != nil {
		return map[string]bool{}
	}

	recent := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			recent[id] = true
		}
	}
	return recent
}

// RecordServed merges ids into the ledger for skill, deduplicates preserving
// first occurrence, keeps the most recent entries, and persists. Callers
// invoke this once per completed session with every id served in it.
func (t *RecencyTracker) RecordServed(ctx context.Context, skill string, ids []string) error {
	key := recencyKey(skill)

	var existing []string
	if _, err := t.readLedger(ctx, key, &existing); err != nil {
		return err
	}

	// New ids go in front so truncation evicts the oldest entries.
	merged := make([]string, 0, len(ids)+len(existing))
	seen := make(map[string]bool, len(ids)+len(existing))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	for _, id := range existing {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		merged = append(merged, id)
	}
	if len(merged) > RecentQuestionLimit {
		merged = merged[:RecentQuestionLimit]
	}

	return store.SetJSON(ctx, t.store, key, merged)
}

func (t *RecencyTracker) readLedger(ctx context.Context, key string, out *[]string) (bool, error) {
	return store.GetJSON(ctx, t.store, key, out)
}
