// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// ArticleFile is the on-disk representation of a batch of articles accepted
// by Load. Files ending in .json are decoded as JSON, everything else as YAML.
type ArticleFile struct {
	Articles []types.Article `json:"articles" yaml:"articles"`
}

// LoadSummary holds counts from a corpus load run.
type LoadSummary struct {
	Files    int
	Articles int
	Failed   int
}

// Load reads article files (or directories of them) and upserts their
// records into the corpus, keyed by external ID. Articles without an
// external ID get one derived from the title. Per-file progress is written
// to w; a file that fails to parse or insert is counted and skipped.
func (s *Store) Load(ctx context.Context, w io.Writer, paths ...string) (LoadSummary, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return LoadSummary{}, err
	}

	var summary LoadSummary
	for _, path := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		articles, err := readArticleFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		if err := s.insertArticles(ctx, articles); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "loaded  %s (%d articles)\n", path, len(articles))
		summary.Files++
		summary.Articles += len(articles)
	}

	fmt.Fprintf(w, "\nfiles: %d, articles: %d, failed: %d\n",
		summary.Files, summary.Articles, summary.Failed)

	if summary.Articles > 0 {
		var count int
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM wikipedia_articles`).Scan(&count); err != nil {
			return summary, fmt.Errorf("counting articles: %w", err)
		}
		if err := s.SetMetadata(ctx, "article_count", strconv.Itoa(count)); err != nil {
			return summary, err
		}
		if err := s.SetMetadata(ctx, "loaded_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// InsertArticles upserts articles in a single transaction.
func (s *Store) InsertArticles(ctx context.Context, articles []types.Article) error {
	return s.insertArticles(ctx, articles)
}

func (s *Store) insertArticles(ctx context.Context, articles []types.Article) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO wikipedia_articles (article_id, title, content, summary, categories, word_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(article_id) DO UPDATE SET
			title=excluded.title, content=excluded.content, summary=excluded.summary,
			categories=excluded.categories, word_count=excluded.word_count`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" {
			return fmt.Errorf("article %q has no title", a.ExternalID)
		}
		extID := a.ExternalID
		if extID == "" {
			extID = externalIDFromTitle(a.Title)
		}
		cats := a.Categories
		if cats == nil {
			cats = []string{}
		}
		catsJSON, _ := json.Marshal(cats)

		if _, err := stmt.ExecContext(ctx,
			extID, a.Title, a.Body, a.Summary, string(catsJSON), len(strings.Fields(a.Body)),
		); err != nil {
			return fmt.Errorf("inserting article %s: %w", extID, err)
		}
	}

	return tx.Commit()
}

// externalIDFromTitle derives an identifier in the style of encyclopedia
// page names ("World Wide Web" -> "World_Wide_Web").
func externalIDFromTitle(title string) string {
	return strings.Join(strings.Fields(title), "_")
}

func readArticleFile(path string) ([]types.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var af ArticleFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &af); err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &af); err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
	}
	return af.Articles, nil
}

// expandPaths replaces directories with the article files they contain,
// sorted by name.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".yaml", ".yml", ".json":
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
