// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/wiki-retrieval/internal/retrieval"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// Review weights.
const (
	reviewTitleWeight   = 0.8
	reviewSummaryWeight = 0.4
	longWordTitleBonus  = 0.3
	longWordSumBonus    = 0.1
	anyTitleWordBonus   = 0.2

	reviewMinWordLen = 3
	longWordLen      = 4 // strictly longer than this
	titleWordLen     = 3 // strictly longer than this
)

// Assess scores how relevant candidate is to question, independent of the
// score it was retrieved with. Question, title, and summary words are tokens
// of at least three characters. The score sums:
//
//   - 0.8 x the share of question words found among title words
//   - 0.4 x the share of question words found among summary words
//   - 0.3 per question word longer than four characters found in the title text
//   - 0.1 per such word found in the summary text
//   - 0.2 once if any question word longer than three characters is in the title text
//
// and is clamped to [0,1].
func Assess(question string, candidate types.ScoredCandidate) float64 {
	if candidate.Article == nil {
		return 0
	}
	titleLower := strings.ToLower(candidate.Article.Title)
	summaryLower := strings.ToLower(candidate.Article.Summary)

	q := retrieval.WordSet(question, reviewMinWordLen)
	if len(q) == 0 {
		return 0
	}

	score := reviewTitleWeight * retrieval.Overlap(q, retrieval.WordSet(titleLower, reviewMinWordLen))
	if summaryLower != "" {
		score += reviewSummaryWeight * retrieval.Overlap(q, retrieval.WordSet(summaryLower, reviewMinWordLen))
	}

	titleHit := false
	for w := range q {
		n := utf8.RuneCountInString(w)
		if n > longWordLen {
			if strings.Contains(titleLower, w) {
				score += longWordTitleBonus
			}
			if strings.Contains(summaryLower, w) {
				score += longWordSumBonus
			}
		}
		if n > titleWordLen && strings.Contains(titleLower, w) {
			titleHit = true
		}
	}
	if titleHit {
		score += anyTitleWordBonus
	}

	return retrieval.Clamp(score)
}

// Review assesses the first limit candidates against question and keeps
// those whose assessment exceeds threshold. The assessment replaces the
// retrieval score, and the survivors are re-sorted by it with ties keeping
// input order. The input slice is not modified.
func Review(question string, candidates []types.ScoredCandidate, limit int, threshold float64, trace *types.TraceLog) []types.ScoredCandidate {
	if limit < 0 {
		limit = 0
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	kept := make([]types.ScoredCandidate, 0, len(candidates))
	for i, c := range candidates {
		title := ""
		if c.Article != nil {
			title = c.Article.Title
		}
		trace.Addf("Reviewing article %d of %d: '%s'", i+1, len(candidates), title)

		score := Assess(question, c)
		if score <= threshold {
			trace.Addf("Article '%s' not relevant to question (score: %.2f)", title, score)
			continue
		}
		trace.Addf("Article '%s' deemed relevant (score: %.2f)", title, score)
		c.RelevanceScore = score
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	trace.Addf("Final selection: %d relevant articles", len(kept))
	return kept
}
