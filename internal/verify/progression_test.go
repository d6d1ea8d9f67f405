package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"skillvet/internal/types"
)

func TestNextBand(t *testing.T) {
	tests := []struct {
		name          string
		current       types.Band
		lastScore     float64
		correctStreak int
		weakStreak    int
		want          types.Band
	}{
		{"high score promotes", types.BandBeginner, 92, 1, 0, types.BandIntermediate},
		{"promote threshold is inclusive", types.BandIntermediate, 90, 1, 0, types.BandAdvanced},
		{"strong streak promotes", types.BandIntermediate, 78, 2, 0, types.BandAdvanced},
		{"strong single answer holds", types.BandIntermediate, 78, 1, 0, types.BandIntermediate},
		{"advanced cannot promote", types.BandAdvanced, 95, 3, 0, types.BandAdvanced},
		{"low score demotes", types.BandAdvanced, 30, 0, 1, types.BandIntermediate},
		{"demote threshold is inclusive", types.BandIntermediate, 35, 0, 1, types.BandBeginner},
		{"weak streak demotes", types.BandIntermediate, 44, 0, 2, types.BandBeginner},
		{"beginner cannot demote", types.BandBeginner, 10, 0, 3, types.BandBeginner},
		{"middling score holds", types.BandIntermediate, 60, 0, 0, types.BandIntermediate},
		{"promotion wins over demotion", types.BandIntermediate, 95, 2, 2, types.BandAdvanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBand(tt.current, tt.lastScore, tt.correctStreak, tt.weakStreak)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpdateStreaks(t *testing.T) {
	tests := []struct {
		name        string
		score       float64
		correct     int
		weak        int
		wantCorrect int
		wantWeak    int
	}{
		{"strong answer extends correct streak", 80, 1, 0, 2, 0},
		{"strong threshold is inclusive", 75, 0, 2, 1, 0},
		{"weak answer extends weak streak", 40, 2, 1, 0, 2},
		{"weak threshold is inclusive", 45, 1, 0, 0, 1},
		{"middle score resets both", 60, 2, 2, 0, 0},
		{"zero score", 0, 3, 0, 0, 1},
		{"perfect score", 100, 0, 3, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, weak := UpdateStreaks(tt.score, tt.correct, tt.weak)
			assert.Equal(t, tt.wantCorrect, correct)
			assert.Equal(t, tt.wantWeak, weak)
		})
	}
}
