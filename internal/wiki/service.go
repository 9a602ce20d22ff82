// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki is the caller-facing retrieval service. It wires the corpus
// store into the retrieval engine, the multi-query orchestrator, the
// reviewer, and the context assembler, and exposes the ancillary read paths
// of the store.
//
//	docs/ARCHITECTURE § Retrieval Service.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pdiddy/wiki-retrieval/internal/assemble"
	"github.com/pdiddy/wiki-retrieval/internal/orchestrate"
	"github.com/pdiddy/wiki-retrieval/internal/retrieval"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// ErrStoreRequired is returned when a Service is built without a store.
var ErrStoreRequired = errors.New("wiki: corpus store is required")

const (
	simpleSelectMinScore = 0.2
	minFactSnippetLen    = 20
	performanceLimit     = 5
)

// DefaultPerformanceQueries are the sample searches timed by SearchPerformance
// when the caller supplies none.
var DefaultPerformanceQueries = []string{
	"artificial intelligence",
	"climate change",
	"World War II",
	"quantum physics",
	"democracy",
}

// Store is the corpus capability surface the service reads from.
type Store interface {
	orchestrate.Corpus
	LookupID(ctx context.Context, externalID string) (*types.Article, error)
	RandomSample(ctx context.Context, count int) ([]types.Article, error)
	ByCategory(ctx context.Context, category string, limit int) ([]types.Article, error)
	PopularCategories(ctx context.Context, limit int) ([]types.CategoryCount, error)
	Stats(ctx context.Context) (types.CorpusStats, error)
}

// Service answers search and context requests against one corpus store.
// It is safe for concurrent use.
type Service struct {
	store  Store
	cfg    types.RetrievalConfig
	engine *retrieval.Engine
	orch   *orchestrate.Orchestrator
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewService creates a Service over store. Zero fields of cfg take their
// defaults.
func NewService(store Store, cfg types.RetrievalConfig, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Service{
		store:  store,
		cfg:    cfg.WithDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine, err := retrieval.NewEngine(store,
		retrieval.WithLogger(s.logger),
		retrieval.WithTimeout(s.cfg.QueryTimeout))
	if err != nil {
		return nil, err
	}
	s.engine = engine

	orch, err := orchestrate.NewOrchestrator(store,
		orchestrate.WithLogger(s.logger),
		orchestrate.WithWorkers(s.cfg.Workers),
		orchestrate.WithMinScore(s.cfg.VariantMinScore),
		orchestrate.WithTimeout(s.cfg.QueryTimeout))
	if err != nil {
		return nil, err
	}
	s.orch = orch

	return s, nil
}

// Close releases the worker pool. The store is owned by the caller and is
// not closed.
func (s *Service) Close() {
	s.orch.Release()
}

// Config returns the effective configuration.
func (s *Service) Config() types.RetrievalConfig {
	return s.cfg
}

// Search runs a single query. A non-positive limit uses the configured
// default limit.
func (s *Service) Search(ctx context.Context, query string, limit int, minScore float64) []types.ScoredCandidate {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return s.engine.Search(ctx, query, limit, minScore)
}

// SearchMultiQuery expands question into query variants, merges their
// results with the title backstops, and keeps the candidates the reviewer
// finds relevant to the whole question. A non-positive limit uses the
// configured default limit.
func (s *Service) SearchMultiQuery(ctx context.Context, question string, limit int) types.MultiQueryResult {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	requestID := uuid.NewString()

	merged := s.orch.Search(ctx, question, limit)
	reviewed := orchestrate.Review(question, merged.Candidates, limit, s.cfg.ReviewThreshold, merged.Trace)

	variants := merged.Variants
	if variants == nil {
		variants = []string{}
	}

	s.logger.Info("multi-query search",
		"request_id", requestID,
		"variants", len(variants),
		"merged", len(merged.Candidates),
		"kept", len(reviewed))

	return types.MultiQueryResult{
		RequestID:             requestID,
		Question:              question,
		Results:               reviewed,
		QueryVariants:         variants,
		TotalArticlesSearched: len(merged.Candidates),
		TraceLog:              merged.Trace.Entries(),
	}
}

// GetContext assembles a context block of at most maxLength characters for
// question from the reviewed multi-query results. A negative maxLength uses
// the configured default budget.
func (s *Service) GetContext(ctx context.Context, question string, maxLength int) types.ContextResult {
	if maxLength < 0 {
		maxLength = s.cfg.MaxContextLength
	}

	mq := s.SearchMultiQuery(ctx, question, s.cfg.ContextArticles)

	asm := assemble.New(
		assemble.WithMaxArticles(s.cfg.ContextArticles),
		assemble.WithMinScore(s.cfg.SelectMinScore))
	res := asm.Assemble(question, mq.Results, maxLength)

	res.RequestID = mq.RequestID
	res.QueryVariants = mq.QueryVariants
	res.TraceLog = append(mq.TraceLog, fmt.Sprintf("Built context from %d articles (%d characters)",
		len(res.Sources), utf8.RuneCountInString(res.ContextText)))
	return res
}

// SimpleContext assembles context from a single query: it searches for
// twice maxArticles candidates, keeps up to maxArticles scoring at least
// 0.2, and packs them into at most maxLength characters.
func (s *Service) SimpleContext(ctx context.Context, query string, maxLength, maxArticles int) types.ContextResult {
	if maxLength < 0 {
		maxLength = s.cfg.MaxContextLength
	}
	if maxArticles <= 0 {
		maxArticles = s.cfg.ContextArticles
	}

	results := s.engine.Search(ctx, query, maxArticles*2, s.cfg.MinScore)
	if len(results) == 0 {
		text := assemble.NoArticles
		if utf8.RuneCountInString(text) > maxLength {
			text = string([]rune(text)[:maxLength])
		}
		return types.ContextResult{
			Query:       query,
			Sources:     []types.ScoredCandidate{},
			ContextText: text,
		}
	}

	asm := assemble.New(
		assemble.WithMaxArticles(maxArticles),
		assemble.WithMinScore(simpleSelectMinScore))
	return asm.Assemble(query, results, maxLength)
}

// FactSnippets returns up to n highlighted snippets for query, each longer
// than 20 characters and suffixed with its source title.
func (s *Service) FactSnippets(ctx context.Context, query string, n int) []string {
	snippets := []string{}
	if n <= 0 {
		return snippets
	}

	results := s.engine.Search(ctx, query, n*2, s.cfg.MinScore)
	if len(results) > n {
		results = results[:n]
	}
	for _, r := range results {
		if utf8.RuneCountInString(r.Snippet) > minFactSnippetLen {
			snippets = append(snippets, r.Snippet+" (Source: "+r.Article.Title+")")
		}
	}
	return snippets
}

// GetArticle returns the article titled title, or nil when there is none.
func (s *Service) GetArticle(ctx context.Context, title string) (*types.Article, error) {
	return s.store.LookupTitle(ctx, strings.TrimSpace(title))
}

// GetArticleByID returns the article with the given external identifier, or
// nil when there is none.
func (s *Service) GetArticleByID(ctx context.Context, externalID string) (*types.Article, error) {
	return s.store.LookupID(ctx, strings.TrimSpace(externalID))
}

// Random returns up to count randomly chosen articles.
func (s *Service) Random(ctx context.Context, count int) ([]types.Article, error) {
	if count <= 0 {
		count = 1
	}
	return s.store.RandomSample(ctx, count)
}

// Category returns up to limit articles in category, ordered by title.
func (s *Service) Category(ctx context.Context, category string, limit int) ([]types.Article, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return s.store.ByCategory(ctx, category, limit)
}

// Categories returns the most populated categories.
func (s *Service) Categories(ctx context.Context, limit int) ([]types.CategoryCount, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	return s.store.PopularCategories(ctx, limit)
}

// Stats returns corpus statistics.
func (s *Service) Stats(ctx context.Context) (types.CorpusStats, error) {
	return s.store.Stats(ctx)
}

// SearchPerformance times a single-query search of each query with a limit of
// five. DefaultPerformanceQueries is used when queries is empty.
func (s *Service) SearchPerformance(ctx context.Context, queries []string) types.SearchPerformance {
	if len(queries) == 0 {
		queries = DefaultPerformanceQueries
	}

	start := time.Now()
	found := 0
	for _, q := range queries {
		found += len(s.engine.Search(ctx, q, performanceLimit, s.cfg.MinScore))
	}
	total := time.Since(start).Seconds()

	n := float64(len(queries))
	return types.SearchPerformance{
		QueriesTested:      len(queries),
		TotalTimeSeconds:   math.Round(total*1000) / 1000,
		AvgTimeMS:          math.Round(total/n*1000*10) / 10,
		ResultsFound:       found,
		AvgResultsPerQuery: math.Round(float64(found)/n*10) / 10,
	}
}
