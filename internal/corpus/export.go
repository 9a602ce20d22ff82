// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the corpus, or one category of it, to path in the format
// Load accepts.
func (s *Store) ExportYAML(ctx context.Context, path, category string) error {
	af, err := s.exportFile(ctx, category)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(&af)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the corpus, or one category of it, to path in the format
// Load accepts.
func (s *Store) ExportJSON(ctx context.Context, path, category string) error {
	af, err := s.exportFile(ctx, category)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(&af, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportFile(ctx context.Context, category string) (ArticleFile, error) {
	var (
		articles []types.Article
		err      error
	)
	if category != "" {
		articles, err = s.ByCategory(ctx, category, exportLimit)
	} else {
		articles, err = s.All(ctx)
	}
	if err != nil {
		return ArticleFile{}, fmt.Errorf("querying for export: %w", err)
	}

	// Surrogate ids are assigned on load and are not part of the file format.
	for i := range articles {
		articles[i].ID = 0
	}
	return ArticleFile{Articles: articles}, nil
}
