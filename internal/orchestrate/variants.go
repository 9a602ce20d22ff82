// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"regexp"
	"strings"
)

const (
	maxVariants       = 5
	maxImportantWords = 3
)

var (
	// importantWordPattern matches a capitalized word or a lowercase word of
	// four or more letters. The exact pattern drives recall baselines.
	importantWordPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b|\b[a-z]{4,}\b`)

	keyTermPattern = regexp.MustCompile(`\b[A-Za-z]+\b`)

	stopWords = map[string]bool{
		"what": true, "is": true, "are": true, "how": true, "why": true, "when": true,
		"where": true, "who": true, "which": true, "the": true, "a": true, "an": true,
	}
)

// QueryVariants expands a question into up to five search strings, in order:
// the trimmed question, each of the first three important words that is
// longer than three characters, and the first two important words joined by
// a space. Duplicates are dropped case-insensitively, keeping the first.
func QueryVariants(question string) []string {
	candidates := []string{strings.TrimSpace(question)}

	words := importantWordPattern.FindAllString(question, -1)
	for i, w := range words {
		if i >= maxImportantWords {
			break
		}
		if len(w) > 3 {
			candidates = append(candidates, w)
		}
	}
	if len(words) >= 2 {
		candidates = append(candidates, words[0]+" "+words[1])
	}

	seen := make(map[string]bool)
	variants := make([]string, 0, maxVariants)
	for _, c := range candidates {
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		variants = append(variants, c)
		if len(variants) == maxVariants {
			break
		}
	}
	return variants
}

// KeyTerms strips question words and articles from question and returns the
// remaining alphabetic tokens longer than two letters, title-cased, once each
// in first-occurrence order.
func KeyTerms(question string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, w := range keyTermPattern.FindAllString(strings.ToLower(question), -1) {
		if stopWords[w] || len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		terms = append(terms, strings.ToUpper(w[:1])+w[1:])
	}
	return terms
}
