// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the wiki-retrieval CLI.
// See docs/ARCHITECTURE § Command Line Interface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-retrieval/internal/corpus"
	"github.com/pdiddy/wiki-retrieval/internal/wiki"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultDBPath = "wikipedia.db"

// rootCmd is the base command for the wiki-retrieval CLI.
var rootCmd = &cobra.Command{
	Use:   "wiki-retrieval",
	Short: "Offline encyclopedia search and context assembly",
	Long: `wiki-retrieval searches a local SQLite snapshot of encyclopedia articles and
assembles length-bounded, attributed context for questions, suitable for
feeding a language model.

Load articles with "load", then query with "search" (single query) or "ask"
(multi-query retrieval, review, and context assembly). "serve" exposes the
same operations over the Model Context Protocol.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./wiki-retrieval.yaml or ~/.config/wiki-retrieval/config.yaml)")
	rootCmd.PersistentFlags().String("db", defaultDBPath, "corpus database file")
	rootCmd.PersistentFlags().String("driver", types.DriverModernc, "database driver: sqlite (pure Go) or sqlite3 (cgo, needs sqlite_fts5 tag)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")

	viper.BindPFlag("corpus.path", rootCmd.PersistentFlags().Lookup("db"))       //nolint:errcheck
	viper.BindPFlag("corpus.driver", rootCmd.PersistentFlags().Lookup("driver")) //nolint:errcheck
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wiki-retrieval")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wiki-retrieval"))
		}
	}

	d := types.DefaultRetrievalConfig()
	viper.SetDefault("retrieval.default_limit", d.DefaultLimit)
	viper.SetDefault("retrieval.min_score", d.MinScore)
	viper.SetDefault("retrieval.variant_min_score", d.VariantMinScore)
	viper.SetDefault("retrieval.review_threshold", d.ReviewThreshold)
	viper.SetDefault("retrieval.context_articles", d.ContextArticles)
	viper.SetDefault("retrieval.max_context_length", d.MaxContextLength)
	viper.SetDefault("retrieval.select_min_score", d.SelectMinScore)
	viper.SetDefault("retrieval.workers", d.Workers)
	viper.SetDefault("retrieval.query_timeout", d.QueryTimeout)

	viper.SetEnvPrefix("WIKI_RETRIEVAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the effective configuration from flags, environment, and
// the config file, in that order of precedence.
func loadConfig() types.Config {
	return types.Config{
		Corpus: types.CorpusConfig{
			Path:   viper.GetString("corpus.path"),
			Driver: viper.GetString("corpus.driver"),
		},
		Retrieval: types.RetrievalConfig{
			DefaultLimit:     viper.GetInt("retrieval.default_limit"),
			MinScore:         viper.GetFloat64("retrieval.min_score"),
			VariantMinScore:  viper.GetFloat64("retrieval.variant_min_score"),
			ReviewThreshold:  viper.GetFloat64("retrieval.review_threshold"),
			ContextArticles:  viper.GetInt("retrieval.context_articles"),
			MaxContextLength: viper.GetInt("retrieval.max_context_length"),
			SelectMinScore:   viper.GetFloat64("retrieval.select_min_score"),
			Workers:          viper.GetInt("retrieval.workers"),
			QueryTimeout:     viper.GetDuration("retrieval.query_timeout"),
		},
		Serve: types.ServeConfig{
			Port: viper.GetInt("serve.port"),
		},
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openService opens the configured corpus read-only and builds a retrieval
// service over it. The returned function releases both.
func openService(cmd *cobra.Command) (*wiki.Service, func(), error) {
	cfg := loadConfig()

	store, err := corpus.Open(cfg.Corpus)
	if err != nil {
		return nil, nil, err
	}

	svc, err := wiki.NewService(store, cfg.Retrieval, wiki.WithLogger(newLogger(cmd)))
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return svc, func() {
		svc.Close()
		store.Close()
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
