// Package verify implements the adaptive skill verification core: difficulty
// band mapping, recency tracking, question selection, score-driven difficulty
// progression, and the session state machine tying them together.
package verify

import (
	"strings"

	"skillvet/internal/types"
)

// MapLevel maps a free-form question level label onto a canonical difficulty
// band. The mapping is lossy and many-to-one; labels that match no known
// marker ("Depth", "Scenario", empty) land on intermediate.
func MapLevel(level string) types.Band {
	l := strings.ToLower(level)
	switch {
	case containsAny(l, "beginner", "basic", "foundation", "easy"):
		return types.BandBeginner
	case containsAny(l, "trap", "advanced", "expert", "hard"):
		return types.BandAdvanced
	default:
		return types.BandIntermediate
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
