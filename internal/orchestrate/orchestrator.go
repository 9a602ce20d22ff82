// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate turns a natural-language question into several search
// variants, runs them and the title backstops concurrently on a worker pool,
// merges the candidates by identity, and reviews the merged list against the
// question.
//
//	docs/ARCHITECTURE § Multi-Query Orchestrator.
package orchestrate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/pdiddy/wiki-retrieval/internal/retrieval"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// Backstop scores. A case-insensitive exact title match is treated as a
// perfect hit; a key-term title match as a near-perfect one.
const (
	ExactTitleScore = 1.0
	KeyTermScore    = 0.9
)

const defaultWorkers = 4

var (
	// ErrCorpusRequired is returned when an Orchestrator is built without a corpus.
	ErrCorpusRequired = errors.New("orchestrate: corpus is required")
)

// Corpus is what the orchestrator needs from a store: full-text search for
// the variants and exact title lookup for the backstops.
type Corpus interface {
	retrieval.Searcher
	LookupTitle(ctx context.Context, title string) (*types.Article, error)
}

// Orchestrator runs multi-query retrieval for a question.
type Orchestrator struct {
	corpus   Corpus
	engine   *retrieval.Engine
	pool     *ants.Pool
	minScore float64
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithWorkers sets the size of the pool that runs variant searches and title
// lookups. Default is 4, with a minimum of 1.
func WithWorkers(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if o.pool != nil {
			o.pool.Release()
		}
		o.pool = pool
		return nil
	}
}

// WithMinScore sets the per-variant minimum score. Default is 0.001, which
// keeps nearly everything the backend returns so the merge sees it.
func WithMinScore(min float64) Option {
	return func(o *Orchestrator) error {
		o.minScore = min
		return nil
	}
}

// WithTimeout bounds each corpus call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		o.timeout = d
		return nil
	}
}

// NewOrchestrator creates an Orchestrator over corpus.
func NewOrchestrator(corpus Corpus, opts ...Option) (*Orchestrator, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}

	pool, err := ants.NewPool(defaultWorkers)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		corpus:   corpus,
		pool:     pool,
		minScore: 0.001,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	// The engine is built after options so it sees the final logger and timeout.
	engine, err := retrieval.NewEngine(corpus,
		retrieval.WithLogger(o.logger),
		retrieval.WithTimeout(o.timeout))
	if err != nil {
		o.Release()
		return nil, err
	}
	o.engine = engine
	return o, nil
}

// Release releases the worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	if o.pool != nil {
		o.pool.Release()
	}
}

// Merged is the output of a multi-query search before review.
type Merged struct {
	Candidates []types.ScoredCandidate
	Variants   []string
	Trace      *types.TraceLog
}

type variantResult struct {
	results []types.ScoredCandidate
	trace   types.TraceLog
}

type lookupResult struct {
	article *types.Article
	err     error
}

// Search runs every query variant of question with the given per-variant
// limit, then the exact-title and key-term backstops. Candidates are merged
// by identity with the first occurrence kept, except that an exact title
// match always carries ExactTitleScore. The merged list is ordered by score;
// ties keep discovery order.
func (o *Orchestrator) Search(ctx context.Context, question string, limit int) Merged {
	trace := &types.TraceLog{}
	merged := Merged{Candidates: []types.ScoredCandidate{}, Trace: trace}

	question = strings.TrimSpace(question)
	if question == "" {
		return merged
	}

	variants := QueryVariants(question)
	terms := KeyTerms(question)
	merged.Variants = variants
	trace.Addf("Generated %d search queries", len(variants))

	// Each task writes only its own slot, so slot order fixes the merge order
	// regardless of which worker finishes first.
	variantOut := make([]variantResult, len(variants))
	var exactOut lookupResult
	termOut := make([]lookupResult, len(terms))

	var wg sync.WaitGroup
	for i, v := range variants {
		o.run(&wg, func() {
			out := &variantOut[i]
			out.results = o.engine.SearchTrace(ctx, v, limit, o.minScore, &out.trace)
		})
	}
	o.run(&wg, func() {
		exactOut.article, exactOut.err = o.lookup(ctx, question)
	})
	for i, term := range terms {
		o.run(&wg, func() {
			termOut[i].article, termOut[i].err = o.lookup(ctx, term)
		})
	}
	wg.Wait()

	index := make(map[string]int)
	add := func(c types.ScoredCandidate) {
		if _, ok := index[c.ExternalID()]; ok {
			return
		}
		index[c.ExternalID()] = len(merged.Candidates)
		merged.Candidates = append(merged.Candidates, c)
	}

	for i, v := range variants {
		trace.Addf("Searching Wikipedia with query: '%s'", v)
		trace.Append(&variantOut[i].trace)
		trace.Addf("Found %d articles for query '%s'", len(variantOut[i].results), v)
		for _, c := range variantOut[i].results {
			add(c)
		}
	}

	switch {
	case exactOut.err != nil:
		o.logger.Warn("exact title lookup failed", "title", question, "err", exactOut.err)
		trace.Addf("Exact match search failed: %v", exactOut.err)
	case exactOut.article != nil:
		a := exactOut.article
		trace.Addf("Found exact title match: '%s'", a.Title)
		if pos, ok := index[a.ExternalID]; ok {
			merged.Candidates[pos].RelevanceScore = ExactTitleScore
		} else {
			add(backstopCandidate(a, ExactTitleScore))
		}
	}

	for i, term := range terms {
		out := termOut[i]
		if out.err != nil {
			o.logger.Warn("key term lookup failed", "term", term, "err", out.err)
			trace.Addf("Key term search for '%s' failed: %v", term, out.err)
			continue
		}
		if out.article == nil {
			continue
		}
		if _, ok := index[out.article.ExternalID]; ok {
			continue
		}
		trace.Addf("Found key term match: '%s'", out.article.Title)
		add(backstopCandidate(out.article, KeyTermScore))
	}

	sort.SliceStable(merged.Candidates, func(i, j int) bool {
		return merged.Candidates[i].RelevanceScore > merged.Candidates[j].RelevanceScore
	})

	o.logger.Debug("multi-query search complete",
		"variants", len(variants), "key_terms", len(terms), "candidates", len(merged.Candidates))
	return merged
}

// run submits task to the pool, or runs it inline when the pool refuses it.
func (o *Orchestrator) run(wg *sync.WaitGroup, task func()) {
	wg.Add(1)
	wrapped := func() {
		defer wg.Done()
		task()
	}
	if err := o.pool.Submit(wrapped); err != nil {
		o.logger.Debug("pool rejected task, running inline", "err", err)
		wrapped()
	}
}

func (o *Orchestrator) lookup(ctx context.Context, title string) (*types.Article, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.corpus.LookupTitle(ctx, title)
}

func backstopCandidate(a *types.Article, score float64) types.ScoredCandidate {
	article := *a
	return types.ScoredCandidate{
		Article:        &article,
		RelevanceScore: score,
		Snippet:        retrieval.CleanSnippet(a.Summary),
	}
}
