package bracket

import "sort"

// GroupMatchesByRound buckets matches per round for rendering a bracket,
// each round ordered by bracket position. The returned round numbers are
// sorted ascending.
func GroupMatchesByRound(matches []Match) (map[int][]Match, []int) {
	rounds := make(map[int][]Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].BracketPosition < rounds[r][j].BracketPosition
		})
	}

	return rounds, roundNums
}
