// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// ContextFile is the on-disk form of an assembled context. A caller can save
// the context handed to a downstream consumer and reload it later without
// re-querying the corpus.
type ContextFile struct {
	Config  ContextFileConfig   `yaml:"config"`
	Result  types.ContextResult `yaml:"result"`
	Summary ContextSummary      `yaml:"summary"`
}

// ContextFileConfig stores the budget that produced the result.
type ContextFileConfig struct {
	MaxLength int    `yaml:"max_length"`
	Mode      string `yaml:"mode"`
}

// ContextSummary stores result statistics and a timestamp.
type ContextSummary struct {
	Sources    int       `yaml:"sources"`
	Characters int       `yaml:"characters"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteContextFile saves an assembled context to a YAML file.
func WriteContextFile(path string, res types.ContextResult, maxLength int, mode string) error {
	cf := ContextFile{
		Config: ContextFileConfig{
			MaxLength: maxLength,
			Mode:      mode,
		},
		Result: res,
		Summary: ContextSummary{
			Sources:    len(res.Sources),
			Characters: len([]rune(res.ContextText)),
			Timestamp:  time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling context file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadContextFile loads a previously saved context file from disk.
func ReadContextFile(path string) (*ContextFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	var cf ContextFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}
	return &cf, nil
}
