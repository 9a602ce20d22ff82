// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// --- mock retriever ---

type mockRetriever struct {
	results  []types.ScoredCandidate
	articles map[string]*types.Article
	stats    types.CorpusStats
	err      error

	gotLimit     int
	gotMinScore  float64
	gotMaxLength int
}

func (m *mockRetriever) Search(_ context.Context, _ string, limit int, minScore float64) []types.ScoredCandidate {
	m.gotLimit = limit
	m.gotMinScore = minScore
	return m.results
}

func (m *mockRetriever) SearchMultiQuery(_ context.Context, question string, limit int) types.MultiQueryResult {
	m.gotLimit = limit
	return types.MultiQueryResult{
		RequestID:             "req-1",
		Question:              question,
		Results:               m.results,
		QueryVariants:         []string{question},
		TotalArticlesSearched: len(m.results) + 1,
		TraceLog:              []string{"Generated 1 search queries"},
	}
}

func (m *mockRetriever) GetContext(_ context.Context, question string, maxLength int) types.ContextResult {
	m.gotMaxLength = maxLength
	return types.ContextResult{
		RequestID:   "req-2",
		Query:       question,
		Sources:     m.results,
		ContextText: "**Poland**\nPoland is a country.\n\n*Sources: Poland*",
		Confidence:  0.8,
	}
}

func (m *mockRetriever) GetArticle(_ context.Context, title string) (*types.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.articles[title], nil
}

func (m *mockRetriever) GetArticleByID(_ context.Context, id string) (*types.Article, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.articles {
		if a.ExternalID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockRetriever) Categories(_ context.Context, _ int) ([]types.CategoryCount, error) {
	return []types.CategoryCount{{Name: "Countries", Count: 1}}, m.err
}

func (m *mockRetriever) Stats(_ context.Context) (types.CorpusStats, error) {
	return m.stats, m.err
}

func (m *mockRetriever) Config() types.RetrievalConfig {
	return types.DefaultRetrievalConfig()
}

func polandArticle() *types.Article {
	return &types.Article{
		ExternalID: "Poland",
		Title:      "Poland",
		Summary:    "Poland is a country.",
		Body:       "Poland is a country in Central Europe.",
	}
}

func newMock() *mockRetriever {
	p := polandArticle()
	return &mockRetriever{
		results:  []types.ScoredCandidate{{Article: p, RelevanceScore: 1, Snippet: "<mark>Poland</mark> is"}},
		articles: map[string]*types.Article{"Poland": p},
		stats:    types.CorpusStats{TotalArticles: 1},
	}
}

func newReadRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

// --- server ---

func TestNewServer(t *testing.T) {
	t.Run("nil service returns error", func(t *testing.T) {
		server, err := NewServer(nil)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingService)
	})

	t.Run("valid service creates server", func(t *testing.T) {
		server, err := NewServer(newMock())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

// --- tools ---

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ranked results", func(t *testing.T) {
		mock := newMock()
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "poland", Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "Poland", output.Results[0].ArticleID)
		assert.Equal(t, 1.0, output.Results[0].Score)
		assert.Equal(t, "<mark>Poland</mark> is", output.Results[0].Snippet)
		assert.Equal(t, 3, mock.gotLimit)
	})

	t.Run("default min score comes from config", func(t *testing.T) {
		mock := newMock()
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, _, err = server.handleSearch(ctx, nil, SearchInput{Query: "poland"})
		require.NoError(t, err)
		assert.Equal(t, 0.1, mock.gotMinScore)
	})

	t.Run("no results is an empty list", func(t *testing.T) {
		mock := newMock()
		mock.results = nil
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "volcano"})
		require.NoError(t, err)
		assert.NotNil(t, output.Results)
		assert.Equal(t, 0, output.Count)
	})
}

func TestServer_handleMultiQuery(t *testing.T) {
	server, err := NewServer(newMock())
	require.NoError(t, err)

	_, output, err := server.handleMultiQuery(context.Background(), nil, MultiQueryInput{Question: "Poland"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", output.RequestID)
	assert.Equal(t, 1, output.Count)
	assert.Equal(t, 2, output.TotalArticlesSearched)
	assert.Equal(t, []string{"Poland"}, output.QueryVariants)
	assert.Equal(t, []string{"Generated 1 search queries"}, output.TraceLog)
}

func TestServer_handleContext(t *testing.T) {
	ctx := context.Background()

	t.Run("returns assembled context", func(t *testing.T) {
		mock := newMock()
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleContext(ctx, nil, ContextInput{Question: "Poland", MaxLength: 500})
		require.NoError(t, err)
		assert.Contains(t, output.Context, "*Sources: Poland*")
		assert.Equal(t, 0.8, output.Confidence)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, 500, mock.gotMaxLength)
	})

	t.Run("default max length is 2000", func(t *testing.T) {
		mock := newMock()
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, _, err = server.handleContext(ctx, nil, ContextInput{Question: "Poland"})
		require.NoError(t, err)
		assert.Equal(t, 2000, mock.gotMaxLength)
	})
}

func TestServer_handleArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("by title", func(t *testing.T) {
		server, err := NewServer(newMock())
		require.NoError(t, err)

		_, output, err := server.handleArticle(ctx, nil, ArticleInput{Title: "Poland"})
		require.NoError(t, err)
		assert.Equal(t, "Poland", output.ArticleID)
		assert.Equal(t, "Poland is a country in Central Europe.", output.Content)
		assert.NotNil(t, output.Categories)
	})

	t.Run("by id", func(t *testing.T) {
		server, err := NewServer(newMock())
		require.NoError(t, err)

		_, output, err := server.handleArticle(ctx, nil, ArticleInput{ArticleID: "Poland"})
		require.NoError(t, err)
		assert.Equal(t, "Poland", output.Title)
	})

	t.Run("not found", func(t *testing.T) {
		server, err := NewServer(newMock())
		require.NoError(t, err)

		_, _, err = server.handleArticle(ctx, nil, ArticleInput{Title: "Atlantis"})
		require.ErrorIs(t, err, ErrArticleNotFound)
	})

	t.Run("requires a key", func(t *testing.T) {
		server, err := NewServer(newMock())
		require.NoError(t, err)

		_, _, err = server.handleArticle(ctx, nil, ArticleInput{})
		require.Error(t, err)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		mock := newMock()
		mock.err = errors.New("database is locked")
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, _, err = server.handleArticle(ctx, nil, ArticleInput{Title: "Poland"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
	})
}

// --- resources ---

func TestExtractArticleTitle(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"plain title", "wiki://articles/Poland", "Poland"},
		{"percent-encoded title", "wiki://articles/World%20Wide%20Web", "World Wide Web"},
		{"invalid prefix", "file://articles/Poland", ""},
		{"bad escape", "wiki://articles/%zz", ""},
		{"empty URI", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractArticleTitle(tt.uri))
		})
	}
}

func TestServer_handleArticleResource(t *testing.T) {
	ctx := context.Background()
	server, err := NewServer(newMock())
	require.NoError(t, err)

	res, err := server.handleArticleResource(ctx, newReadRequest("wiki://articles/Poland"))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "text/plain", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "# Poland")

	_, err = server.handleArticleResource(ctx, newReadRequest("wiki://articles/Atlantis"))
	assert.Error(t, err)
}

func TestServer_handleStatsResource(t *testing.T) {
	ctx := context.Background()

	server, err := NewServer(newMock())
	require.NoError(t, err)
	res, err := server.handleStatsResource(ctx, newReadRequest("wiki://stats"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"total_articles": 1`)

	mock := newMock()
	mock.err = errors.New("disk I/O error")
	server, err = NewServer(mock)
	require.NoError(t, err)
	_, err = server.handleStatsResource(ctx, newReadRequest("wiki://stats"))
	assert.Error(t, err)
}

func TestServer_handleCategoriesResource(t *testing.T) {
	server, err := NewServer(newMock())
	require.NoError(t, err)

	res, err := server.handleCategoriesResource(context.Background(), newReadRequest("wiki://categories"))
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, `"name": "Countries"`)
}
