// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the wiki-retrieval engine:
// corpus articles, scored candidates, multi-query results, and assembled
// context.
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// Article is an immutable corpus record. Articles are created when the corpus
// is loaded and are never mutated by the retrieval core.
type Article struct {
	// ID is the internal numeric surrogate assigned by the corpus store.
	ID int64 `json:"id" yaml:"id"`

	// ExternalID is the stable, unique string identifier of the article.
	ExternalID string `json:"article_id" yaml:"article_id"`

	// Title is the article title. Unique in practice, not enforced.
	Title string `json:"title" yaml:"title"`

	// Summary is the lead paragraph. May be empty.
	Summary string `json:"summary" yaml:"summary"`

	// Body is the full article text.
	Body string `json:"content,omitempty" yaml:"content,omitempty"`

	// Categories lists the article categories. Order is not significant.
	Categories []string `json:"categories" yaml:"categories"`
}

// Hit is one full-text search match returned by a corpus store, carrying the
// backend's own relevance signal and an optional highlighted excerpt.
type Hit struct {
	Article

	// BackendRank is the corpus-native ranking value (FTS5 bm25 rank).
	// Only its magnitude is meaningful to the scorer.
	BackendRank float64 `json:"backend_rank" yaml:"backend_rank"`

	// Snippet is the raw highlighted excerpt, possibly empty.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// ScoredCandidate is a transient retrieval result: an article reference with
// a relevance score in [0,1] and a cleaned snippet.
type ScoredCandidate struct {
	Article *Article `json:"article" yaml:"article"`

	// RelevanceScore is always clamped to [0,1].
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// Snippet is whitespace-collapsed and at most 200 characters plus an
	// ellipsis marker.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// ExternalID returns the identity key used for deduplication.
func (c ScoredCandidate) ExternalID() string {
	if c.Article == nil {
		return ""
	}
	return c.Article.ExternalID
}

// MultiQueryResult is the outcome of expanding a question into query
// variants, merging their results, and reviewing the merged candidates.
type MultiQueryResult struct {
	// RequestID correlates the trace log with caller-side logs.
	RequestID string `json:"request_id" yaml:"request_id"`

	Question string `json:"question" yaml:"question"`

	// Results are sorted by relevance, highest first, with no duplicate
	// external IDs.
	Results []ScoredCandidate `json:"results" yaml:"results"`

	// QueryVariants lists the search strings issued, in generation order.
	QueryVariants []string `json:"search_queries" yaml:"search_queries"`

	// TotalArticlesSearched counts distinct candidates merged before review.
	TotalArticlesSearched int `json:"total_articles_searched" yaml:"total_articles_searched"`

	TraceLog []string `json:"status_log" yaml:"status_log"`
}

// ContextResult is the terminal artifact handed to downstream consumers.
type ContextResult struct {
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`

	// Query is the original question.
	Query string `json:"query" yaml:"query"`

	// Sources are the included candidates, highest relevance first.
	Sources []ScoredCandidate `json:"sources" yaml:"sources"`

	// ContextText never exceeds the caller-supplied character budget.
	ContextText string `json:"context" yaml:"context"`

	// Confidence is clamped to [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	QueryVariants []string `json:"search_queries,omitempty" yaml:"search_queries,omitempty"`

	TraceLog []string `json:"status_log,omitempty" yaml:"status_log,omitempty"`
}

// CategoryCount pairs a category name with the number of articles in it.
type CategoryCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// CorpusStats summarizes the contents of a corpus store.
type CorpusStats struct {
	TotalArticles      int     `json:"total_articles" yaml:"total_articles"`
	TotalWords         int64   `json:"total_words" yaml:"total_words"`
	AvgWordsPerArticle float64 `json:"avg_words_per_article" yaml:"avg_words_per_article"`
	MinWords           int     `json:"min_words" yaml:"min_words"`
	MaxWords           int     `json:"max_words" yaml:"max_words"`
	DatabaseSizeMB     float64 `json:"database_size_mb" yaml:"database_size_mb"`
	TotalCategories    int     `json:"total_categories" yaml:"total_categories"`
}

// SearchPerformance reports timings of a batch of sample searches.
type SearchPerformance struct {
	QueriesTested      int     `json:"queries_tested" yaml:"queries_tested"`
	TotalTimeSeconds   float64 `json:"total_time" yaml:"total_time"`
	AvgTimeMS          float64 `json:"avg_time_ms" yaml:"avg_time_ms"`
	ResultsFound       int     `json:"results_found" yaml:"results_found"`
	AvgResultsPerQuery float64 `json:"avg_results_per_query" yaml:"avg_results_per_query"`
}
