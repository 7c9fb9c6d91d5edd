// Package elo holds the pure rating math, free of any persistence so it
// can be tested in isolation.
package elo

import "math"

const (
	// DefaultRating seeds every entity that has never been rated.
	DefaultRating = 1200

	// DefaultK is the rating swing cap used by the match-update path.
	DefaultK = 32
)

// ExpectedScore is the logistic win probability of A against B.
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// NewRatings applies one ELO update for an outcome from A's perspective
// (1 = A won, 0 = B won). The deltas are symmetric and zero-sum apart
// from ±1 rounding drift.
func NewRatings(ratingA, ratingB int, outcome float64, k int) (int, int) {
	expected := ExpectedScore(ratingA, ratingB)
	newA := ratingA + int(math.Round(float64(k)*(outcome-expected)))
	newB := ratingB + int(math.Round(float64(k)*(expected-outcome)))
	return newA, newB
}

// KFactor is the tiered swing policy: provisional entities move fast,
// top-rated entities move slow. The match-update path uses DefaultK
// instead; this is an opt-in alternative.
func KFactor(rating, gamesPlayed int) int {
	switch {
	case gamesPlayed < 30:
		return 40
	case rating > 2400:
		return 16
	default:
		return 32
	}
}

// Tier maps a rating to its display band.
func Tier(rating int) string {
	switch {
	case rating < 1000:
		return "Bronze"
	case rating < 1200:
		return "Silver"
	case rating < 1400:
		return "Gold"
	case rating < 1600:
		return "Platinum"
	case rating < 1800:
		return "Diamond"
	case rating < 2000:
		return "Master"
	case rating < 2200:
		return "Grandmaster"
	default:
		return "Champion"
	}
}
