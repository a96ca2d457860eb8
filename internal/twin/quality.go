package twin

import "strings"

// scoreQuality is a heuristic answer-quality estimate in [0,1]: banded by
// answer length, with a small bonus per cited source. Used only to weight
// cache entries for later invalidation, never to reject an answer.
func scoreQuality(answer string, sourceCount int) float64 {
	words := len(strings.Fields(answer))
	var base float64
	switch {
	case words < 20:
		base = 0.3
	case words < 60:
		base = 0.6
	case words < 160:
		base = 0.8
	case words < 260:
		base = 0.7
	default:
		base = 0.5
	}
	bonus := 0.05 * float64(sourceCount)
	if bonus > 0.15 {
		bonus = 0.15
	}
	score := base + bonus
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
