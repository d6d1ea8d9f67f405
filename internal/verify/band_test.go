package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skillvet/internal/types"
)

func TestMapLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  types.Band
	}{
		{"beginner label", "Beginner", types.BandBeginner},
		{"basic label", "basic", types.BandBeginner},
		{"foundation label", "Foundational", types.BandBeginner},
		{"easy label", "EASY", types.BandBeginner},
		{"trap label", "Trap", types.BandAdvanced},
		{"advanced label", "advanced", types.BandAdvanced},
		{"expert label", "Expert", types.BandAdvanced},
		{"hard label", "hard", types.BandAdvanced},
		{"intermediate label", "Intermediate", types.BandIntermediate},
		{"depth label", "Depth", types.BandIntermediate},
		{"scenario label", "Scenario", types.BandIntermediate},
		{"empty label", "", types.BandIntermediate},
		{"unknown label", "wildcard", types.BandIntermediate},
		{"embedded marker", "Advanced Scenario", types.BandAdvanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLevel(tt.level))
		})
	}
}

func TestBandRankRoundTrip(t *testing.T) {
	assert.Equal(t, types.BandBeginner, types.BandFromRank(types.BandBeginner.Rank()))
	assert.Equal(t, types.BandIntermediate, types.BandFromRank(types.BandIntermediate.Rank()))
	assert.Equal(t, types.BandAdvanced, types.BandFromRank(types.BandAdvanced.Rank()))

	// Out-of-range ranks clamp instead of wrapping.
	assert.Equal(t, types.BandBeginner, types.BandFromRank(-1))
	assert.Equal(t, types.BandAdvanced, types.BandFromRank(5))
}
