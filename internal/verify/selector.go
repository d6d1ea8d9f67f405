package verify

import (
	"math/rand"

	"skillvet/internal/types"
)

// RandSource picks a uniform index in [0, n). It exists so tests can inject a
// seeded source and assert deterministic selections.
type RandSource interface {
	Intn(n int) int
}

// NewRand returns a seeded math/rand source.
func NewRand(seed int64) RandSource {
	return rand.New(rand.NewSource(seed))
}

// Selector picks one question per turn following the tiered fallback policy.
type Selector struct {
	rng RandSource
}

// NewSelector creates a selector with the given random source.
func NewSelector(rng RandSource) *Selector {
	return &Selector{rng: rng}
}

// Select returns one question from pool for the target band, or nil when
// every question has been used. Candidate tiers, in strict priority order:
//
//  1. band matches, not used, not recent
//  2. band matches, not used
//  3. not used, not recent
//  4. not used
//
// The first non-empty tier wins and one question is picked from it uniformly
// at random. Recency and band preferences degrade before the session stalls.
func (s *Selector) Select(target types.Band, pool []types.Question, used, recent map[string]bool) *types.Question {
	tiers := []func(q types.Question) bool{
		func(q types.Question) bool {
			return MapLevel(q.Level) == target && !used[q.ID] && !recent[q.ID]
		},
		func(q types.Question) bool {
			return MapLevel(q.Level) == target && !used[q.ID]
		},
		func(q types.Question) bool {
			return !used[q.ID] && !recent[q.ID]
		},
		func(q types.Question) bool {
			return !used[q.ID]
		},
	}

	for _, eligible := range tiers {
		var candidates []types.Question
		for _, q := range pool {
			if eligible(q) {
				candidates = append(candidates, q)
			}
		}
		if len(candidates) > 0 {
			picked := candidates[s.rng.Intn(len(candidates))]
			return &picked
		}
	}
	return nil
}
