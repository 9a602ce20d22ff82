// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

const articleColumns = `a.id, a.article_id, a.title, a.summary, a.content, a.categories`

// safeCategories guards json_each against rows whose categories column is
// not a JSON list.
const safeCategories = `CASE WHEN json_valid(a.categories) THEN a.categories ELSE '[]' END`

// FullTextSearch runs an FTS5 MATCH query and returns up to limit hits, best
// backend rank first. An empty slice means no matches; malformed query
// syntax is reported as an error.
func (s *Store) FullTextSearch(ctx context.Context, query string, limit int) ([]types.Hit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleColumns+`, wikipedia_fts.rank,
			snippet(wikipedia_fts, 1, '<mark>', '</mark>', '...', 32)
		FROM wikipedia_fts
		JOIN wikipedia_articles a ON a.id = wikipedia_fts.rowid
		WHERE wikipedia_fts MATCH ?
		ORDER BY wikipedia_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("full-text search %q: %w", query, err)
	}
	defer rows.Close()

	hits := []types.Hit{}
	for rows.Next() {
		var (
			h       types.Hit
			extID   sql.NullString
			summary sql.NullString
			cats    sql.NullString
			rank    sql.NullFloat64
			snippet sql.NullString
		)
		if err := rows.Scan(
			&h.ID, &extID, &h.Title, &summary, &h.Body, &cats,
			&rank, &snippet,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		h.ExternalID = extID.String
		h.Summary = summary.String
		h.Categories = decodeCategories(cats)
		h.BackendRank = rank.Float64
		h.Snippet = snippet.String
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("full-text search %q: %w", query, err)
	}
	return hits, nil
}

// LookupTitle returns the article whose title equals title, ignoring ASCII
// case, or nil when there is none. An exact-case match is preferred.
func (s *Store) LookupTitle(ctx context.Context, title string) (*types.Article, error) {
	return s.lookup(ctx, `a.title = ? COLLATE NOCASE ORDER BY a.title = ? DESC, a.id`, title, title)
}

// LookupID returns the article with the given external identifier, or nil
// when there is none.
func (s *Store) LookupID(ctx context.Context, externalID string) (*types.Article, error) {
	return s.lookup(ctx, `a.article_id = ?`, externalID)
}

func (s *Store) lookup(ctx context.Context, where string, args ...any) (*types.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM wikipedia_articles a WHERE `+where+` LIMIT 1`, args...)

	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up article %q: %w", args[0], err)
	}
	return a, nil
}

// RandomSample returns up to count articles in random order.
func (s *Store) RandomSample(ctx context.Context, count int) ([]types.Article, error) {
	return s.list(ctx,
		`SELECT `+articleColumns+` FROM wikipedia_articles a ORDER BY RANDOM() LIMIT ?`, count)
}

// ByCategory returns up to limit articles whose category list contains
// category, ordered by title.
func (s *Store) ByCategory(ctx context.Context, category string, limit int) ([]types.Article, error) {
	return s.list(ctx,
		`SELECT `+articleColumns+` FROM wikipedia_articles a
		WHERE EXISTS (SELECT 1 FROM json_each(`+safeCategories+`) WHERE value = ?)
		ORDER BY a.title
		LIMIT ?`, category, limit)
}

// All returns every article ordered by id. It is used for export.
func (s *Store) All(ctx context.Context) ([]types.Article, error) {
	return s.list(ctx, `SELECT `+articleColumns+` FROM wikipedia_articles a ORDER BY a.id`)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]types.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	articles := []types.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

// PopularCategories returns the most common categories, largest first.
// Ties are ordered by name.
func (s *Store) PopularCategories(ctx context.Context, limit int) ([]types.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.value, count(*) AS n
		FROM wikipedia_articles a, json_each(`+safeCategories+`) c
		GROUP BY c.value
		ORDER BY n DESC, c.value
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	counts := []types.CategoryCount{}
	for rows.Next() {
		var cc types.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

// Stats summarizes article and word counts, file size, and categories.
func (s *Store) Stats(ctx context.Context) (types.CorpusStats, error) {
	var (
		st       types.CorpusStats
		total    sql.NullInt64
		avg      sql.NullFloat64
		minWords sql.NullInt64
		maxWords sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*), sum(word_count), avg(word_count), min(word_count), max(word_count)
		FROM wikipedia_articles`,
	).Scan(&st.TotalArticles, &total, &avg, &minWords, &maxWords)
	if err != nil {
		return st, fmt.Errorf("reading article stats: %w", err)
	}
	st.TotalWords = total.Int64
	st.AvgWordsPerArticle = math.Round(avg.Float64*10) / 10
	st.MinWords = int(minWords.Int64)
	st.MaxWords = int(maxWords.Int64)

	err = s.db.QueryRowContext(ctx,
		`SELECT count(DISTINCT c.value)
		FROM wikipedia_articles a, json_each(`+safeCategories+`) c`,
	).Scan(&st.TotalCategories)
	if err != nil {
		return st, fmt.Errorf("counting categories: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		st.DatabaseSizeMB = math.Round(float64(info.Size())/(1024*1024)*10) / 10
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (*types.Article, error) {
	var (
		a       types.Article
		extID   sql.NullString
		summary sql.NullString
		cats    sql.NullString
	)
	if err := row.Scan(&a.ID, &extID, &a.Title, &summary, &a.Body, &cats); err != nil {
		return nil, err
	}
	a.ExternalID = extID.String
	a.Summary = summary.String
	a.Categories = decodeCategories(cats)
	return &a, nil
}

// decodeCategories reads the categories column. It holds a JSON list; older
// corpora store a comma-separated string instead.
func decodeCategories(ns sql.NullString) []string {
	cats := []string{}
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return cats
	}
	if err := json.Unmarshal([]byte(ns.String), &cats); err == nil {
		if cats == nil {
			return []string{}
		}
		return cats
	}
	cats = cats[:0]
	for _, c := range strings.Split(ns.String, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cats = append(cats, c)
		}
	}
	return cats
}
