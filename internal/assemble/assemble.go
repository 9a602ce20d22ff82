// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble packs ranked candidates into a character-budgeted,
// attributed context block and estimates how well it answers the question.
//
//	docs/ARCHITECTURE § Context Assembler.
package assemble

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/wiki-retrieval/internal/retrieval"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// Sentinel context texts.
const (
	// NoInformation is returned when no candidate can be included.
	NoInformation = "No relevant information found."

	// NoArticles is returned by the simple context path when the search
	// itself finds nothing.
	NoArticles = "No relevant Wikipedia articles found."
)

const (
	defaultMaxArticles = 5
	bodyFallbackLen    = 500
	truncateSlack      = 50
	minPartialLen      = 100
	ellipsis           = "..."

	attributionPrefix = "\n*Sources: "
	attributionSep    = ", "
	attributionSuffix = "*"

	coverageMinWordLen = 3
	idealSourceCount   = 3.0
)

// Assembler selects and packs candidates. The zero value is not usable; call New.
type Assembler struct {
	maxArticles int
	minScore    float64
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithMaxArticles caps how many candidates are considered. Default is 5.
func WithMaxArticles(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.maxArticles = n
		}
	}
}

// WithMinScore drops candidates scoring below min before packing.
// Default is 0, which keeps every candidate.
func WithMinScore(min float64) Option {
	return func(a *Assembler) {
		a.minScore = min
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{maxArticles: defaultMaxArticles}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a ContextResult for query from candidates. Each included
// candidate contributes a block of its title and its summary, or the first
// 500 characters of its body when the summary is empty. Blocks are packed
// with room held back for the attribution line that names every included
// title. The first block that does not fit is included in truncated form
// when more than 100 characters of text still fit, reserving at least 50
// characters for attribution, and packing stops there.
//
// ContextText never exceeds maxLength characters and, whenever a source is
// included, ends with the complete attribution line. When nothing can be
// included the result carries NoInformation, no sources, and zero confidence.
func (a *Assembler) Assemble(query string, candidates []types.ScoredCandidate, maxLength int) types.ContextResult {
	if maxLength < 0 {
		maxLength = 0
	}
	result := types.ContextResult{
		Query:   query,
		Sources: []types.ScoredCandidate{},
	}

	selected := a.selectCandidates(candidates)

	var (
		parts    []string
		titles   []string
		used     int // blocks plus separators
		titleLen int
	)
	for _, c := range selected {
		title := c.Article.Title
		text := c.Article.Summary
		if text == "" {
			text = truncateRunes(c.Article.Body, bodyFallbackLen)
		}

		sep := 0
		if len(parts) > 0 {
			sep = 1
		}
		tLen := utf8.RuneCountInString(title)
		attr := attributionLen(len(titles)+1, titleLen+tLen)

		block := formatBlock(title, text)
		blockLen := utf8.RuneCountInString(block)
		if used+sep+blockLen+attr > maxLength {
			room := maxLength - used - sep - attr - utf8.RuneCountInString(formatBlock(title, "")) - len(ellipsis)
			if slack := truncateSlack - attr; slack > 0 {
				room -= slack
			}
			if room > minPartialLen {
				parts = append(parts, formatBlock(title, truncateRunes(text, room)+ellipsis))
				titles = append(titles, title)
				result.Sources = append(result.Sources, c)
			}
			break
		}
		parts = append(parts, block)
		titles = append(titles, title)
		result.Sources = append(result.Sources, c)
		used += sep + blockLen
		titleLen += tLen
	}

	if len(result.Sources) == 0 {
		result.ContextText = truncateRunes(NoInformation, maxLength)
		return result
	}

	text := strings.Join(parts, "\n") + attributionPrefix + strings.Join(titles, attributionSep) + attributionSuffix

	result.ContextText = truncateRunes(text, maxLength)
	result.Confidence = Confidence(query, result.Sources)
	return result
}

// attributionLen is the length of the attribution line for n titles whose
// lengths sum to titleLen.
func attributionLen(n, titleLen int) int {
	return len(attributionPrefix) + titleLen + len(attributionSep)*(n-1) + len(attributionSuffix)
}

// selectCandidates returns, highest score first, up to maxArticles candidates
// with an article and a score of at least minScore.
func (a *Assembler) selectCandidates(candidates []types.ScoredCandidate) []types.ScoredCandidate {
	sorted := make([]types.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Article != nil {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})

	selected := make([]types.ScoredCandidate, 0, a.maxArticles)
	for _, c := range sorted {
		if len(selected) >= a.maxArticles {
			break
		}
		if c.RelevanceScore >= a.minScore {
			selected = append(selected, c)
		}
	}
	return selected
}

// Confidence estimates how well sources answer query:
//
//	0.5 x mean relevance + 0.3 x min(count/3, 1) + 0.2 x coverage
//
// where coverage is the share of distinct question words of at least three
// characters that occur in some source's title or summary. The result is
// clamped to [0,1]; no sources yield 0.
func Confidence(query string, sources []types.ScoredCandidate) float64 {
	if len(sources) == 0 {
		return 0
	}

	total := 0.0
	for _, s := range sources {
		total += s.RelevanceScore
	}
	avg := total / float64(len(sources))

	countFactor := float64(len(sources)) / idealSourceCount
	if countFactor > 1 {
		countFactor = 1
	}

	coverage := 0.0
	queryWords := retrieval.WordSet(query, coverageMinWordLen)
	if len(queryWords) > 0 {
		covered := make(map[string]struct{})
		for _, s := range sources {
			if s.Article == nil {
				continue
			}
			for w := range retrieval.WordSet(s.Article.Title+" "+s.Article.Summary, coverageMinWordLen) {
				if _, ok := queryWords[w]; ok {
					covered[w] = struct{}{}
				}
			}
		}
		coverage = float64(len(covered)) / float64(len(queryWords))
	}

	return retrieval.Clamp(0.5*avg + 0.3*countFactor + 0.2*coverage)
}

func formatBlock(title, text string) string {
	return "**" + title + "**\n" + text + "\n"
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
