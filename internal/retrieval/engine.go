// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval runs a single query against the corpus: it normalizes the
// query into FTS5 syntax, scores every full-text hit with a bounded heuristic,
// filters by a minimum score, and orders the survivors by score.
//
//	docs/ARCHITECTURE § Retrieval Engine.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// ErrCorpusRequired is returned when an Engine is built without a corpus.
var ErrCorpusRequired = errors.New("retrieval: corpus is required")

const maxSnippetLen = 200

// Searcher is the full-text capability of a corpus store. FullTextSearch
// returns an empty slice for no matches and an error for backend failures,
// including malformed query syntax.
type Searcher interface {
	FullTextSearch(ctx context.Context, query string, limit int) ([]types.Hit, error)
}

// Engine scores and ranks full-text hits for one query string. It holds no
// per-call state and is safe for concurrent use when its Searcher is.
type Engine struct {
	corpus  Searcher
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithTimeout bounds each corpus call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates an Engine reading from corpus.
func NewEngine(corpus Searcher, opts ...Option) (*Engine, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	e := &Engine{
		corpus: corpus,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Search returns up to limit candidates scoring at least minScore, highest
// score first. A blank query, a non-positive limit, or a backend failure
// yields an empty slice; failures are logged, never returned.
func (e *Engine) Search(ctx context.Context, query string, limit int, minScore float64) []types.ScoredCandidate {
	return e.SearchTrace(ctx, query, limit, minScore, nil)
}

// SearchTrace is Search with backend failures also recorded in trace.
func (e *Engine) SearchTrace(ctx context.Context, query string, limit int, minScore float64, trace *types.TraceLog) []types.ScoredCandidate {
	results := []types.ScoredCandidate{}
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return results
	}

	ftsQuery := NormalizeQuery(query)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	hits, err := e.corpus.FullTextSearch(ctx, ftsQuery, limit)
	if err != nil {
		e.logger.Error("search failed", "query", query, "fts_query", ftsQuery, "err", err)
		trace.Addf("Search failed for query '%s': %v", query, err)
		return results
	}

	for i := range hits {
		h := hits[i]
		score := Score(query, h.Title, h.Summary, h.BackendRank)
		if score < minScore {
			continue
		}
		article := h.Article
		results = append(results, types.ScoredCandidate{
			Article:        &article,
			RelevanceScore: score,
			Snippet:        CleanSnippet(h.Snippet),
		})
	}

	// Backend order is only a hint; ties keep it.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	e.logger.Debug("search complete", "query", query, "hits", len(hits), "kept", len(results))
	return results
}

// CleanSnippet collapses whitespace and truncates to 200 characters with an
// ellipsis marker.
func CleanSnippet(snippet string) string {
	snippet = strings.Join(strings.Fields(snippet), " ")
	if utf8.RuneCountInString(snippet) > maxSnippetLen {
		snippet = string([]rune(snippet)[:maxSnippetLen]) + "..."
	}
	return snippet
}
