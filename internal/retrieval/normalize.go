// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const maxQueryTerms = 5

// Words splits s into word tokens: maximal runs of Unicode letters, digits,
// and combining marks. Case is preserved.
func Words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// WordSet returns the distinct lowercased tokens of s that have at least
// minLen characters.
func WordSet(s string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) >= minLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// NormalizeQuery reshapes a raw query into FTS5 MATCH syntax:
//
//	no tokens     -> the input unchanged
//	one token     -> the token
//	2 or 3 tokens -> a quoted phrase
//	4 or more     -> the first five tokens joined with AND
//
// Tokens past the fifth are dropped.
func NormalizeQuery(query string) string {
	words := Words(strings.ToLower(query))

	switch {
	case len(words) == 0:
		return query
	case len(words) == 1:
		return words[0]
	case len(words) <= 3:
		return `"` + strings.Join(words, " ") + `"`
	default:
		if len(words) > maxQueryTerms {
			words = words[:maxQueryTerms]
		}
		return strings.Join(words, " AND ")
	}
}
