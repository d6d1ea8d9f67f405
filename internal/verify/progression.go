package verify

import "skillvet/internal/types"

// Score thresholds driving difficulty transitions and streak bookkeeping.
const (
	promoteScore       = 90
	strongScore        = 75
	demoteScore        = 35
	weakScore          = 45
	promoteStreakCount = 2
	demoteStreakCount  = 2
)

// NextBand computes the band for the next question. Promotion wins over
// demotion when both clauses could fire. Streak values are inclusive of the
// answer that produced lastScore.
func NextBand(current types.Band, lastScore float64, correctStreak, weakStreak int) types.Band {
	promote := lastScore >= promoteScore ||
		(lastScore >= strongScore && correctStreak >= promoteStreakCount)
	if promote && current != types.BandAdvanced {
		return types.BandFromRank(current.Rank() + 1)
	}

	demote := lastScore <= demoteScore || weakStreak >= demoteStreakCount
	if demote && current != types.BandBeginner {
		return types.BandFromRank(current.Rank() - 1)
	}

	return current
}

// UpdateStreaks returns the streak counters after observing score. The
// correct streak survives only scores of 75 and above; the weak streak only
// scores of 45 and below.
func UpdateStreaks(score float64, correctStreak, weakStreak int) (int, int) {
	if score >= strongScore {
		correctStreak++
	} else {
		correctStreak = 0
	}
	if score <= weakScore {
		weakStreak++
	} else {
		weakStreak = 0
	}
	return correctStreak, weakStreak
}
