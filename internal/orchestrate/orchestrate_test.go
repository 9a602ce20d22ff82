// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-retrieval/internal/retrieval"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// --- fake corpus ---

// fakeCorpus matches an article when any query token appears in its title or
// summary. It is safe for concurrent use because the orchestrator calls it
// from pool workers.
type fakeCorpus struct {
	articles  []types.Article
	noSearch  bool
	searchErr error
	lookupErr error

	mu       sync.Mutex
	searches []string
	lookups  []string
}

func (f *fakeCorpus) FullTextSearch(_ context.Context, query string, limit int) ([]types.Hit, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}
	hits := []types.Hit{}
	if f.noSearch {
		return hits, nil
	}
	for _, a := range f.articles {
		text := strings.ToLower(a.Title + " " + a.Summary)
		for _, tok := range retrieval.Words(query) {
			if tok == "AND" {
				continue
			}
			if strings.Contains(text, tok) {
				hits = append(hits, types.Hit{Article: a, BackendRank: -10})
				break
			}
		}
		if len(hits) == limit {
			break
		}
	}
	return hits, nil
}

func (f *fakeCorpus) LookupTitle(_ context.Context, title string) (*types.Article, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, title)
	f.mu.Unlock()

	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for i := range f.articles {
		if strings.EqualFold(f.articles[i].Title, title) {
			a := f.articles[i]
			return &a, nil
		}
	}
	return nil, nil
}

func sampleArticles() []types.Article {
	return []types.Article{
		{ExternalID: "ai", Title: "Artificial intelligence", Summary: "Artificial intelligence is intelligence demonstrated by machines."},
		{ExternalID: "db", Title: "Database", Summary: "An organized collection of structured information."},
		{ExternalID: "pl", Title: "Poland", Summary: "Poland is a country in Central Europe."},
	}
}

func newTestOrchestrator(t *testing.T, fc *fakeCorpus) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(fc, WithWorkers(3))
	require.NoError(t, err)
	t.Cleanup(o.Release)
	return o
}

func candidateIDs(cs []types.ScoredCandidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ExternalID()
	}
	return ids
}

// --- QueryVariants ---

func TestQueryVariants(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			"question with capitalized and long words",
			"What is artificial intelligence?",
			[]string{"What is artificial intelligence?", "What", "artificial", "intelligence", "What artificial"},
		},
		{
			"lowercase question",
			"what is the capital of poland",
			[]string{"what is the capital of poland", "what", "capital", "poland", "what capital"},
		},
		{"single word collapses to one", "Poland", []string{"Poland"}},
		{"case-insensitive dedup", "Database database", []string{"Database database", "Database"}},
		{"surrounding space trimmed", "  Poland  ", []string{"Poland"}},
		{"blank has no variants", "   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryVariants(tt.question))
		})
	}
}

func TestQueryVariantsAtMostFive(t *testing.T) {
	for _, q := range []string{
		"Alpha Beta Gamma Delta Epsilon Zeta",
		"where were the earliest written records of mesopotamia kept",
		"x",
	} {
		v := QueryVariants(q)
		assert.LessOrEqual(t, len(v), 5, q)
		seen := map[string]bool{}
		for _, s := range v {
			assert.False(t, seen[strings.ToLower(s)], "duplicate variant %q", s)
			seen[strings.ToLower(s)] = true
		}
	}
}

// --- KeyTerms ---

func TestKeyTerms(t *testing.T) {
	assert.Equal(t, []string{"Capital", "Poland"}, KeyTerms("What is the capital of Poland?"))
	assert.Equal(t, []string{"Database"}, KeyTerms("what is a database, a DATABASE?"))
	assert.Empty(t, KeyTerms("Who is the"))
	assert.Empty(t, KeyTerms(""))
}

// --- Orchestrator ---

func TestNewOrchestratorRequiresCorpus(t *testing.T) {
	_, err := NewOrchestrator(nil)
	require.ErrorIs(t, err, ErrCorpusRequired)
}

func TestSearchBlankQuestion(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles()}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "  ", 10)
	assert.NotNil(t, m.Candidates)
	assert.Empty(t, m.Candidates)
	assert.Empty(t, fc.searches)
	assert.Empty(t, fc.lookups)
}

func TestSearchMergesWithoutDuplicates(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles()}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "What is artificial intelligence?", 10)
	require.NotEmpty(t, m.Candidates)
	assert.Equal(t, "ai", m.Candidates[0].ExternalID())

	ids := candidateIDs(m.Candidates)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate candidate %s", id)
		seen[id] = true
	}
	for i := 1; i < len(m.Candidates); i++ {
		assert.GreaterOrEqual(t, m.Candidates[i-1].RelevanceScore, m.Candidates[i].RelevanceScore)
	}
	assert.Len(t, fc.searches, len(m.Variants))
}

func TestSearchTraceOrder(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles()}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "What is artificial intelligence?", 10)
	entries := m.Trace.Entries()
	require.GreaterOrEqual(t, len(entries), 4)
	assert.Equal(t, "Generated 5 search queries", entries[0])
	assert.Equal(t, "Searching Wikipedia with query: 'What is artificial intelligence?'", entries[1])
	assert.True(t, strings.HasPrefix(entries[2], "Found "))
	assert.Equal(t, "Searching Wikipedia with query: 'What'", entries[3])
}

func TestSearchExactTitleOverridesScore(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles()}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "Poland", 10)
	require.Len(t, m.Candidates, 1)
	assert.Equal(t, "pl", m.Candidates[0].ExternalID())
	assert.Equal(t, ExactTitleScore, m.Candidates[0].RelevanceScore)
	assert.Contains(t, m.Trace.Entries(), "Found exact title match: 'Poland'")
}

func TestSearchExactTitleBackstopInserts(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles(), noSearch: true}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "poland", 10)
	require.Len(t, m.Candidates, 1)
	c := m.Candidates[0]
	assert.Equal(t, "pl", c.ExternalID())
	assert.Equal(t, ExactTitleScore, c.RelevanceScore)
	assert.Equal(t, "Poland is a country in Central Europe.", c.Snippet)
}

func TestSearchKeyTermBackstop(t *testing.T) {
	fc := &fakeCorpus{articles: sampleArticles(), noSearch: true}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "What is Poland?", 10)
	require.Len(t, m.Candidates, 1)
	assert.Equal(t, "pl", m.Candidates[0].ExternalID())
	assert.Equal(t, KeyTermScore, m.Candidates[0].RelevanceScore)
	assert.Contains(t, m.Trace.Entries(), "Found key term match: 'Poland'")
}

func TestSearchBackendErrorsAreTraced(t *testing.T) {
	fc := &fakeCorpus{
		articles:  sampleArticles(),
		searchErr: errors.New("fts5: syntax error"),
		lookupErr: errors.New("database is locked"),
	}
	o := newTestOrchestrator(t, fc)

	m := o.Search(context.Background(), "Poland", 10)
	assert.Empty(t, m.Candidates)
	entries := m.Trace.Entries()
	assert.Contains(t, entries, "Search failed for query 'Poland': fts5: syntax error")
	assert.Contains(t, entries, "Exact match search failed: database is locked")
	assert.Contains(t, entries, "Key term search for 'Poland' failed: database is locked")
	assert.Equal(t, 1, countEntries(entries, "Exact match search failed"),
		"key term failures are reported under their own wording")
}

func countEntries(entries []string, prefix string) int {
	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

// --- Review ---

func candidate(id, title, summary string, score float64) types.ScoredCandidate {
	return types.ScoredCandidate{
		Article:        &types.Article{ExternalID: id, Title: title, Summary: summary},
		RelevanceScore: score,
	}
}

func TestAssess(t *testing.T) {
	q := "What is artificial intelligence?"
	ai := candidate("ai", "Artificial intelligence", "Artificial intelligence is intelligence demonstrated by machines.", 0.4)
	db := candidate("db", "Database", "An organized collection of structured information.", 0.4)

	assert.Equal(t, 1.0, Assess(q, ai))
	assert.Equal(t, 0.0, Assess(q, db))
	assert.Equal(t, 0.0, Assess("is it?", ai), "no words of three or more characters")
	assert.Equal(t, 0.0, Assess(q, types.ScoredCandidate{}))
}

func TestAssessPartialMatch(t *testing.T) {
	// machine, learning, database: a third of the title words plus the long
	// word bonus for "database" and the title bonus.
	got := Assess("machine learning database", candidate("db", "Database", "", 0))
	assert.InDelta(t, 0.8/3+0.3+0.2, got, 1e-9)
}

func TestReviewFiltersAndTraces(t *testing.T) {
	q := "What is artificial intelligence?"
	in := []types.ScoredCandidate{
		candidate("ai", "Artificial intelligence", "Artificial intelligence is intelligence demonstrated by machines.", 0.4),
		candidate("db", "Database", "An organized collection of structured information.", 0.3),
	}
	trace := &types.TraceLog{}

	out := Review(q, in, 10, 0.05, trace)
	require.Len(t, out, 1)
	assert.Equal(t, "ai", out[0].ExternalID())
	assert.Equal(t, 1.0, out[0].RelevanceScore)

	assert.Equal(t, []string{
		"Reviewing article 1 of 2: 'Artificial intelligence'",
		"Article 'Artificial intelligence' deemed relevant (score: 1.00)",
		"Reviewing article 2 of 2: 'Database'",
		"Article 'Database' not relevant to question (score: 0.00)",
		"Final selection: 1 relevant articles",
	}, trace.Entries())
}

func TestReviewResortsByAssessment(t *testing.T) {
	in := []types.ScoredCandidate{
		candidate("db", "Database", "", 0.9),
		candidate("ml", "Machine learning", "", 0.5),
	}
	out := Review("machine learning database", in, 10, 0.05, nil)
	assert.Equal(t, []string{"ml", "db"}, candidateIDs(out))
	assert.Equal(t, 0.9, in[0].RelevanceScore, "input must not be modified")
}

func TestReviewHonorsLimit(t *testing.T) {
	in := []types.ScoredCandidate{
		candidate("db", "Database", "", 0.9),
		candidate("ml", "Machine learning", "", 0.5),
	}
	out := Review("machine learning database", in, 1, 0.05, nil)
	assert.Equal(t, []string{"db"}, candidateIDs(out))
	assert.Empty(t, Review("machine learning database", in, 0, 0.05, nil))
}
