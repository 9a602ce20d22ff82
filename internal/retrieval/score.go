// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"math"
	"strings"
)

// Signal weights for Score.
const (
	exactTitleWeight   = 1.0
	titleOverlapWeight = 0.8
	summaryWeight      = 0.5
	backendRankDivisor = 100.0
	backendRankCap     = 0.3
)

// Score rates how well a candidate matches the raw (non-normalized) query.
// It is a deterministic heuristic, not a probabilistic model. Four signals
// are summed and the total is clamped to [0,1]:
//
//   - 1.0 if the lowercased, non-blank query is a substring of the lowercased title
//   - 0.8 x the share of query words that appear in the title
//   - 0.5 x the share of query words that appear in the summary
//   - |backendRank| / 100, capped at 0.3
func Score(query, title, summary string, backendRank float64) float64 {
	queryLower := strings.ToLower(query)
	titleLower := strings.ToLower(title)

	score := 0.0
	if strings.TrimSpace(queryLower) != "" && strings.Contains(titleLower, queryLower) {
		score += exactTitleWeight
	}

	queryWords := WordSet(queryLower, 1)
	score += titleOverlapWeight * Overlap(queryWords, WordSet(titleLower, 1))
	if summary != "" {
		score += summaryWeight * Overlap(queryWords, WordSet(summary, 1))
	}

	score += math.Min(math.Abs(backendRank)/backendRankDivisor, backendRankCap)

	return Clamp(score)
}

// Overlap returns |q ∩ t| / |q|, or 0 when q is empty.
func Overlap(q, t map[string]struct{}) float64 {
	if len(q) == 0 {
		return 0
	}
	n := 0
	for w := range q {
		if _, ok := t[w]; ok {
			n++
		}
	}
	return float64(n) / float64(len(q))
}

// Clamp limits v to [0,1]. NaN clamps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
