package types

import "time"

// Corpus drivers. DriverModernc is the pure-Go SQLite build with FTS5
// compiled in; DriverMattn is the CGO build and needs the sqlite_fts5 tag.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// CorpusConfig locates the corpus database.
type CorpusConfig struct {
	// Path is the SQLite database file (e.g. "wikipedia.db").
	Path string `json:"path" yaml:"path"`

	// Driver selects the database/sql driver: "sqlite" (default) or "sqlite3".
	Driver string `json:"driver" yaml:"driver"`
}

// RetrievalConfig holds the tunables of the retrieval, review, and assembly
// stages. Zero values are replaced by DefaultRetrievalConfig values.
type RetrievalConfig struct {
	// DefaultLimit is the result limit when a caller passes zero (default 10).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`

	// MinScore is the default threshold for single-query search (default 0.1).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// VariantMinScore is the recall-oriented threshold applied to each query
	// variant during multi-query search (default 0.001).
	VariantMinScore float64 `json:"variant_min_score" yaml:"variant_min_score"`

	// ReviewThreshold is the minimum reviewed score a merged candidate must
	// exceed to be kept (default 0.05).
	ReviewThreshold float64 `json:"review_threshold" yaml:"review_threshold"`

	// ContextArticles is the candidate limit used when assembling context
	// (default 5).
	ContextArticles int `json:"context_articles" yaml:"context_articles"`

	// MaxContextLength is the default context budget in characters (default 2000).
	MaxContextLength int `json:"max_context_length" yaml:"max_context_length"`

	// SelectMinScore is the minimum score for a candidate to be packed into
	// context. Zero disables the filter.
	SelectMinScore float64 `json:"select_min_score" yaml:"select_min_score"`

	// Workers bounds concurrent corpus access per multi-query call (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// QueryTimeout bounds each corpus call. Zero means no timeout.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`
}

// DefaultRetrievalConfig returns the configuration used when nothing is set.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		DefaultLimit:     10,
		MinScore:         0.1,
		VariantMinScore:  0.001,
		ReviewThreshold:  0.05,
		ContextArticles:  5,
		MaxContextLength: 2000,
		Workers:          4,
	}
}

// WithDefaults fills zero fields from DefaultRetrievalConfig. Thresholds are
// left alone when negative so callers can disable them explicitly.
func (c RetrievalConfig) WithDefaults() RetrievalConfig {
	d := DefaultRetrievalConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.MinScore == 0 {
		c.MinScore = d.MinScore
	}
	if c.VariantMinScore == 0 {
		c.VariantMinScore = d.VariantMinScore
	}
	if c.ReviewThreshold == 0 {
		c.ReviewThreshold = d.ReviewThreshold
	}
	if c.ContextArticles <= 0 {
		c.ContextArticles = d.ContextArticles
	}
	if c.MaxContextLength <= 0 {
		c.MaxContextLength = d.MaxContextLength
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// ServeConfig holds settings for the MCP server.
type ServeConfig struct {
	// Port selects HTTP transport when positive; stdio otherwise.
	Port int `json:"port" yaml:"port"`
}

// Config groups all configuration sections.
type Config struct {
	Corpus    CorpusConfig    `json:"corpus" yaml:"corpus"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Serve     ServeConfig     `json:"serve" yaml:"serve"`
}
