// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-retrieval/internal/corpus"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the article corpus (load, export, stats)",
	Long: `Corpus manages the local SQLite database of encyclopedia articles.
Use subcommands to load article files, export them, and inspect the corpus.`,
}

// --- load subcommand ---

var corpusLoadCmd = &cobra.Command{
	Use:   "load <path>...",
	Short: "Load article files into the corpus",
	Long: `Load reads YAML or JSON article files (or directories of them) and
upserts the articles into the corpus database, creating the schema and
full-text index when the database does not exist yet. Articles are keyed
by external ID; reloading a file replaces its articles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCorpusLoad,
}

func runCorpusLoad(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	if dir := filepath.Dir(cfg.Corpus.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	store, err := corpus.Create(cfg.Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Load(cmd.Context(), os.Stdout, args...)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed loading", summary.Failed)
	}
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus to YAML or JSON",
	Long: `Export writes the full corpus (or one category of it) to a file in the
format load accepts.`,
	RunE: runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	category, _ := cmd.Flags().GetString("category")
	output, _ := cmd.Flags().GetString("output")

	store, err := corpus.Open(loadConfig().Corpus)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "":
		if output == "" {
			output = "export.yaml"
		}
		if err := store.ExportYAML(cmd.Context(), output, category); err != nil {
			return err
		}
	case "json":
		if output == "" {
			output = "export.json"
		}
		if err := store.ExportJSON(cmd.Context(), output, category); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Println("Exported to", output)
	return nil
}

// --- stats subcommand ---

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus statistics",
	Long: `Stats prints article counts and word-count statistics for the corpus.
With --perf, it also times a handful of sample searches.`,
	RunE: runCorpusStats,
}

// statsOutput is the --json shape of the stats subcommand.
type statsOutput struct {
	Corpus      types.CorpusStats        `json:"corpus"`
	Performance *types.SearchPerformance `json:"performance,omitempty"`
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	perf, _ := cmd.Flags().GetBool("perf")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := statsOutput{Corpus: st}
	if perf {
		p := svc.SearchPerformance(cmd.Context(), nil)
		out.Performance = &p
	}
	if jsonOutput {
		return encodeJSON(os.Stdout, out)
	}

	fmt.Printf("Articles:        %d\n", st.TotalArticles)
	fmt.Printf("Categories:      %d\n", st.TotalCategories)
	fmt.Printf("Words (total):   %d\n", st.TotalWords)
	fmt.Printf("Words (min/avg/max): %d / %.1f / %d\n", st.MinWords, st.AvgWordsPerArticle, st.MaxWords)
	fmt.Printf("Database size:   %.2f MB\n", st.DatabaseSizeMB)

	if p := out.Performance; p != nil {
		fmt.Println()
		fmt.Printf("Queries tested:  %d\n", p.QueriesTested)
		fmt.Printf("Total time:      %.3fs\n", p.TotalTimeSeconds)
		fmt.Printf("Avg time:        %.1fms\n", p.AvgTimeMS)
		fmt.Printf("Results found:   %d (%.1f per query)\n", p.ResultsFound, p.AvgResultsPerQuery)
	}
	return nil
}

// --- categories subcommand ---

var corpusCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the most populated categories",
	RunE:  runCorpusCategories,
}

func runCorpusCategories(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	cats, err := svc.Categories(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return encodeJSON(os.Stdout, cats)
	}

	fmt.Fprintf(os.Stdout, "%-40s  %s\n", "Category", "Articles")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 50))
	for _, c := range cats {
		fmt.Fprintf(os.Stdout, "%-40s  %d\n", clip(c.Name, 40), c.Count)
	}
	fmt.Fprintf(os.Stdout, "\n%d categories\n", len(cats))
	return nil
}

func init() {
	// Export flags.
	corpusExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	corpusExportCmd.Flags().String("category", "", "export only articles in this category")
	corpusExportCmd.Flags().String("output", "", "output file (default export.yaml or export.json)")

	// Stats flags.
	corpusStatsCmd.Flags().Bool("perf", false, "time sample searches")
	corpusStatsCmd.Flags().Bool("json", false, "output statistics as JSON")

	// Categories flags.
	corpusCategoriesCmd.Flags().Int("limit", 20, "maximum categories to list")
	corpusCategoriesCmd.Flags().Bool("json", false, "output categories as JSON")

	// Wire subcommands.
	corpusCmd.AddCommand(corpusLoadCmd)
	corpusCmd.AddCommand(corpusExportCmd)
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusCategoriesCmd)

	rootCmd.AddCommand(corpusCmd)
}
