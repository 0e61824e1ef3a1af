// Package levenshtein computes edit distances for domain typo detection.
package levenshtein

// Distance computes the Levenshtein edit distance between two strings,
// rune-wise, using two rolling rows.
func Distance(s, t string) int {
	a, b := []rune(s), []rune(t)
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return len(b)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j, bc := range b {
		curr[0] = j + 1
		for i, ac := range a {
			cost := 1
			if ac == bc {
				cost = 0
			}
			curr[i+1] = min(curr[i]+1, prev[i+1]+1, prev[i]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

// Closest returns the candidate nearest to s within maxDist edits.
// An exact match among the candidates returns ("", false): s is not a typo.
// Ties keep the earlier candidate.
func Closest(s string, candidates []string, maxDist int) (string, bool) {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		if c == s {
			return "", false
		}
		if d := Distance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, best != ""
}
