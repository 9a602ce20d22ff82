// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus is the read-only article store behind the retrieval engine.
// Articles live in a SQLite database with an FTS5 index over title, content,
// and summary; the retrieval core consumes the store through full-text search
// and exact lookups.
//
//	docs/ARCHITECTURE § Corpus Store.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

const (
	articlesTable = "wikipedia_articles"
	ftsTable      = "wikipedia_fts"
	metadataTable = "wikipedia_metadata"
)

// ErrSchema is returned by Open when the database lacks the article or
// full-text tables.
var ErrSchema = errors.New("corpus database not properly initialized")

// Store manages the corpus SQLite database. A Store is safe for concurrent
// reads.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing corpus database read-only and verifies its schema.
// A missing file or missing tables is an initialization failure.
func Open(cfg types.CorpusConfig) (*Store, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("corpus database not found: %s: %w", cfg.Path, err)
	}

	s, err := open(cfg, true)
	if err != nil {
		return nil, err
	}

	if err := s.verifySchema(); err != nil {
		s.db.Close()
		return nil, err
	}
	return s, nil
}

// Create opens or creates the corpus database at cfg.Path and creates the
// schema if it does not exist. It is used by the loader.
func Create(cfg types.CorpusConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating corpus directory: %w", err)
		}
	}

	s, err := open(cfg, false)
	if err != nil {
		return nil, err
	}

	if err := s.createSchema(); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// open connects to cfg.Path. Read-only connections use a file: URI with
// mode=ro and leave the journal mode alone; writable ones switch it to WAL.
func open(cfg types.CorpusConfig, readOnly bool) (*Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = types.DriverModernc
	}

	var dsn string
	switch {
	case driver == types.DriverModernc && readOnly:
		dsn = "file:" + cfg.Path + "?mode=ro&_pragma=busy_timeout(5000)"
	case driver == types.DriverModernc:
		dsn = cfg.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	case driver == types.DriverMattn && readOnly:
		dsn = "file:" + cfg.Path + "?mode=ro&_busy_timeout=5000"
	case driver == types.DriverMattn:
		dsn = cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		return nil, fmt.Errorf("unsupported corpus driver %q: use %s or %s",
			driver, types.DriverModernc, types.DriverMattn)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) verifySchema() error {
	var count int
	err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name IN (?, ?)`,
		articlesTable, ftsTable,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if count < 2 {
		return fmt.Errorf("%s: %w", s.path, ErrSchema)
	}
	return nil
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS wikipedia_articles (
			id INTEGER PRIMARY KEY,
			article_id TEXT UNIQUE,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT,
			categories TEXT,
			word_count INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS wikipedia_metadata (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_title ON wikipedia_articles(title)`,
		`CREATE INDEX IF NOT EXISTS idx_article_id ON wikipedia_articles(article_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 external-content table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?`, ftsTable,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE wikipedia_fts USING fts5(
				title, content, summary,
				content='wikipedia_articles',
				content_rowid='id'
			)`,
			`CREATE TRIGGER wikipedia_ai AFTER INSERT ON wikipedia_articles BEGIN
				INSERT INTO wikipedia_fts(rowid, title, content, summary)
				VALUES (new.id, new.title, new.content, new.summary);
			END`,
			`CREATE TRIGGER wikipedia_ad AFTER DELETE ON wikipedia_articles BEGIN
				INSERT INTO wikipedia_fts(wikipedia_fts, rowid, title, content, summary)
				VALUES ('delete', old.id, old.title, old.content, old.summary);
			END`,
			`CREATE TRIGGER wikipedia_au AFTER UPDATE ON wikipedia_articles BEGIN
				INSERT INTO wikipedia_fts(wikipedia_fts, rowid, title, content, summary)
				VALUES ('delete', old.id, old.title, old.content, old.summary);
				INSERT INTO wikipedia_fts(rowid, title, content, summary)
				VALUES (new.id, new.title, new.content, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SetMetadata records a key/value pair in the metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wikipedia_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing metadata %s: %w", key, err)
	}
	return nil
}

// Metadata returns all metadata entries.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM wikipedia_metadata`)
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		meta[key] = value.String
	}
	return meta, rows.Err()
}
