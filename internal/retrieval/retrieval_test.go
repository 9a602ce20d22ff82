// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// --- fake corpus ---

type fakeSearcher struct {
	hits      []types.Hit
	err       error
	gotQuery  string
	gotLimit  int
	callCount int
}

func (f *fakeSearcher) FullTextSearch(_ context.Context, query string, limit int) ([]types.Hit, error) {
	f.callCount++
	f.gotQuery = query
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func hit(id, title, summary string, rank float64) types.Hit {
	return types.Hit{
		Article: types.Article{
			ExternalID: id,
			Title:      title,
			Summary:    summary,
		},
		BackendRank: rank,
	}
}

// --- NormalizeQuery ---

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"single token", "Poland", "poland"},
		{"two tokens become a phrase", "Artificial Intelligence", `"artificial intelligence"`},
		{"three tokens become a phrase", "World Wide Web", `"world wide web"`},
		{"four tokens become AND", "what is machine learning", "what AND is AND machine AND learning"},
		{"tokens past five dropped", "a b c d e f g", "a AND b AND c AND d AND e"},
		{"punctuation stripped", "What is AI?", `"what is ai"`},
		{"no tokens passes through", "?!", "?!"},
		{"empty passes through", "", ""},
		{"unicode letters are word characters", "Łódź café", `"łódź café"`},
		{"digits are word characters", "World War 2", `"world war 2"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.query))
		})
	}
}

func TestNormalizeQueryIdempotentForSingleWord(t *testing.T) {
	for _, w := range []string{"Poland", "database", "Łódź", "x1"} {
		once := NormalizeQuery(w)
		assert.Equal(t, once, NormalizeQuery(once), w)
	}
}

func TestWordSetMinLength(t *testing.T) {
	set := WordSet("What is an AI system?", 3)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "what")
	assert.Contains(t, set, "system")
}

// --- Score ---

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		title   string
		summary string
		rank    float64
		want    float64
	}{
		{"no overlap and no rank is zero", "quantum", "Database", "An organized collection", 0, 0},
		{"exact substring clamps to one", "poland", "Poland", "", 0, 1},
		{"exact substring is case-insensitive", "WORLD WIDE", "World Wide Web", "", 0, 1},
		{"title overlap only", "machine vision", "Machine Learning", "", 0, 0.4},
		{"summary overlap only", "structured data", "Database", "structured information", 0, 0.25},
		{"rank only", "zzz", "Database", "", -5, 0.05},
		{"rank is capped", "zzz", "Database", "", -500, 0.3},
		{"blank query is zero", "", "Database", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.query, tt.title, tt.summary, tt.rank), 1e-9)
		})
	}
}

func TestScoreBounded(t *testing.T) {
	queries := []string{"", "a", "Artificial Intelligence", "what is the capital of poland", "!!!"}
	ranks := []float64{0, -1, -30, -1e9, 42}
	for _, q := range queries {
		for _, r := range ranks {
			s := Score(q, "Artificial Intelligence", "Artificial intelligence is intelligence demonstrated by machines", r)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5))
	assert.Equal(t, 1.0, Clamp(2.3))
	assert.Equal(t, 0.42, Clamp(0.42))
}

// --- Engine ---

func TestNewEngineRequiresCorpus(t *testing.T) {
	_, err := NewEngine(nil)
	require.ErrorIs(t, err, ErrCorpusRequired)
}

func TestEngineSearchBlankQuery(t *testing.T) {
	fs := &fakeSearcher{hits: []types.Hit{hit("a", "Alpha", "", 0)}}
	e, err := NewEngine(fs)
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\t\n"} {
		results := e.Search(context.Background(), q, 10, 0.1)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}
	assert.Equal(t, 0, fs.callCount, "blank queries must not reach the corpus")
}

func TestEngineSearchNormalizesAndPassesLimit(t *testing.T) {
	fs := &fakeSearcher{}
	e, err := NewEngine(fs)
	require.NoError(t, err)

	e.Search(context.Background(), "Artificial Intelligence", 7, 0)
	assert.Equal(t, `"artificial intelligence"`, fs.gotQuery)
	assert.Equal(t, 7, fs.gotLimit)
}

func TestEngineSearchSortsByScoreAndFilters(t *testing.T) {
	fs := &fakeSearcher{hits: []types.Hit{
		hit("db", "Database", "structured information", -15),
		hit("ml", "Machine Learning", "a method of data analysis", -3),
		hit("noise", "Unrelated", "", 0),
		hit("mlx", "Machine Learning", "a method of data analysis", -3),
	}}
	e, err := NewEngine(fs)
	require.NoError(t, err)

	results := e.Search(context.Background(), "machine learning", 10, 0.1)
	require.Len(t, results, 3)
	assert.Equal(t, "ml", results[0].ExternalID())
	assert.Equal(t, "mlx", results[1].ExternalID(), "ties keep backend order")
	assert.Equal(t, "db", results[2].ExternalID())
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RelevanceScore, results[i].RelevanceScore)
	}
}

func TestEngineSearchBackendErrorIsEmptyAndLogged(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	fs := &fakeSearcher{err: errors.New("fts5: syntax error near \"?\"")}
	e, err := NewEngine(fs, WithLogger(logger))
	require.NoError(t, err)

	trace := &types.TraceLog{}
	results := e.SearchTrace(context.Background(), "what?", 10, 0.1, trace)
	assert.Empty(t, results)
	assert.Contains(t, logBuf.String(), "search failed")
	require.Equal(t, 1, trace.Len())
	assert.Contains(t, trace.Entries()[0], "Search failed for query 'what?'")
}

func TestEngineSearchCleansSnippet(t *testing.T) {
	h := hit("a", "Alpha", "", -1)
	h.Snippet = "  the   <mark>alpha</mark>\n\tparticle " + strings.Repeat("x", 300)
	fs := &fakeSearcher{hits: []types.Hit{h}}
	e, err := NewEngine(fs)
	require.NoError(t, err)

	results := e.Search(context.Background(), "alpha", 5, 0)
	require.Len(t, results, 1)
	assert.True(t, strings.HasPrefix(results[0].Snippet, "the <mark>alpha</mark> particle "))
	assert.True(t, strings.HasSuffix(results[0].Snippet, "..."))
	assert.Equal(t, 203, len([]rune(results[0].Snippet)))
}

func TestCleanSnippet(t *testing.T) {
	assert.Equal(t, "", CleanSnippet(""))
	assert.Equal(t, "a b c", CleanSnippet(" a \n b\t\tc "))
	short := strings.Repeat("é", 200)
	assert.Equal(t, short, CleanSnippet(short))
}
