// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query    string  `json:"query" jsonschema:"the search query"`
	Limit    int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum relevance score in [0,1] (default 0.1)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput represents a single ranked article.
type ResultOutput struct {
	ArticleID string  `json:"article_id"`
	Title     string  `json:"title"`
	Summary   string  `json:"summary,omitempty"`
	Score     float64 `json:"score"`
	Snippet   string  `json:"snippet,omitempty"`
}

// MultiQueryInput is the input schema for the search_multi_query tool.
type MultiQueryInput struct {
	Question string `json:"question" jsonschema:"a natural-language question"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results per query variant (default 10)"`
}

// MultiQueryOutput is the output schema for the search_multi_query tool.
type MultiQueryOutput struct {
	RequestID             string         `json:"request_id"`
	Results               []ResultOutput `json:"results"`
	Count                 int            `json:"count"`
	QueryVariants         []string       `json:"search_queries"`
	TotalArticlesSearched int            `json:"total_articles_searched"`
	TraceLog              []string       `json:"status_log"`
}

// ContextInput is the input schema for the get_context tool.
type ContextInput struct {
	Question  string `json:"question" jsonschema:"a natural-language question"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"maximum context length in characters (default 2000)"`
}

// ContextOutput is the output schema for the get_context tool.
type ContextOutput struct {
	RequestID     string         `json:"request_id"`
	Context       string         `json:"context"`
	Sources       []ResultOutput `json:"sources"`
	Confidence    float64        `json:"confidence"`
	QueryVariants []string       `json:"search_queries,omitempty"`
	TraceLog      []string       `json:"status_log,omitempty"`
}

// ArticleInput is the input schema for the get_article tool.
type ArticleInput struct {
	Title     string `json:"title,omitempty" jsonschema:"exact article title (case-insensitive)"`
	ArticleID string `json:"article_id,omitempty" jsonschema:"external article identifier, used when title is empty"`
}

// ArticleOutput is the output schema for the get_article tool.
type ArticleOutput struct {
	ArticleID  string   `json:"article_id"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	Categories []string `json:"categories"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Rank encyclopedia articles for a single query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_multi_query",
		Description: "Answer-oriented search: expand a question into query variants, merge and review the results",
	}, s.handleMultiQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_context",
		Description: "Assemble a length-bounded, attributed context block for a question",
	}, s.handleContext)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_article",
		Description: "Fetch one article by exact title or identifier",
	}, s.handleArticle)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	minScore := input.MinScore
	if minScore <= 0 {
		minScore = s.svc.Config().MinScore
	}

	results := s.svc.Search(ctx, input.Query, input.Limit, minScore)
	return nil, SearchOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}, nil
}

func (s *Server) handleMultiQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MultiQueryInput,
) (*mcp.CallToolResult, MultiQueryOutput, error) {
	res := s.svc.SearchMultiQuery(ctx, input.Question, input.Limit)
	return nil, MultiQueryOutput{
		RequestID:             res.RequestID,
		Results:               toResultOutputs(res.Results),
		Count:                 len(res.Results),
		QueryVariants:         res.QueryVariants,
		TotalArticlesSearched: res.TotalArticlesSearched,
		TraceLog:              res.TraceLog,
	}, nil
}

func (s *Server) handleContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextInput,
) (*mcp.CallToolResult, ContextOutput, error) {
	maxLength := input.MaxLength
	if maxLength <= 0 {
		maxLength = s.svc.Config().MaxContextLength
	}

	res := s.svc.GetContext(ctx, input.Question, maxLength)
	return nil, ContextOutput{
		RequestID:     res.RequestID,
		Context:       res.ContextText,
		Sources:       toResultOutputs(res.Sources),
		Confidence:    res.Confidence,
		QueryVariants: res.QueryVariants,
		TraceLog:      res.TraceLog,
	}, nil
}

func (s *Server) handleArticle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ArticleInput,
) (*mcp.CallToolResult, ArticleOutput, error) {
	var (
		a   *types.Article
		err error
		key string
	)
	switch {
	case strings.TrimSpace(input.Title) != "":
		key = input.Title
		a, err = s.svc.GetArticle(ctx, input.Title)
	case strings.TrimSpace(input.ArticleID) != "":
		key = input.ArticleID
		a, err = s.svc.GetArticleByID(ctx, input.ArticleID)
	default:
		return nil, ArticleOutput{}, fmt.Errorf("title or article_id is required")
	}
	if err != nil {
		return nil, ArticleOutput{}, fmt.Errorf("looking up article: %w", err)
	}
	if a == nil {
		return nil, ArticleOutput{}, fmt.Errorf("%w: %s", ErrArticleNotFound, key)
	}

	return nil, toArticleOutput(a), nil
}

func toResultOutputs(cs []types.ScoredCandidate) []ResultOutput {
	out := make([]ResultOutput, 0, len(cs))
	for _, c := range cs {
		if c.Article == nil {
			continue
		}
		out = append(out, ResultOutput{
			ArticleID: c.Article.ExternalID,
			Title:     c.Article.Title,
			Summary:   c.Article.Summary,
			Score:     c.RelevanceScore,
			Snippet:   c.Snippet,
		})
	}
	return out
}

func toArticleOutput(a *types.Article) ArticleOutput {
	cats := a.Categories
	if cats == nil {
		cats = []string{}
	}
	return ArticleOutput{
		ArticleID:  a.ExternalID,
		Title:      a.Title,
		Summary:    a.Summary,
		Content:    a.Body,
		Categories: cats,
	}
}
