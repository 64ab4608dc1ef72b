// Package match finds the known topic closest to a user query.
package match

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Cutoff is the minimum similarity for a candidate to be accepted
const Cutoff = 0.6

// FindBestMatch returns the candidate most similar to query if its score is
// at least Cutoff. On equal scores the earlier candidate wins.
func FindBestMatch(query string, candidates []string) (string, bool) {
	q := split(query)
	m := difflib.NewMatcher(nil, nil)
	m.SetSeq2(q)

	var (
		best      string
		bestScore float64
		found     bool
	)

	for _, c := range candidates {
		m.SetSeq1(split(c))

		// upper bounds first, Ratio is quadratic
		if m.RealQuickRatio() < Cutoff || m.QuickRatio() < Cutoff {
			continue
		}

		score := m.Ratio()
		if score < Cutoff {
			continue
		}
		if !found || score > bestScore {
			best, bestScore, found = c, score, true
		}
	}

	return best, found
}

// Score returns similarity of a and b in [0, 1]
func Score(a, b string) float64 {
	return difflib.NewMatcher(split(a), split(b)).Ratio()
}

func split(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
