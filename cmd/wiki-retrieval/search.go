// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank articles for a query",
	Long: `Search runs a full-text query against the corpus and ranks the hits by
relevance. With --multi, the query is treated as a question: it is expanded
into query variants, merged with exact-title and key-term matches, and
reviewed against the whole question.

Use --trace with --multi to print the retrieval status log.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := queryFromArgs(cmd, args)
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query required: provide search terms or --query")
	}

	limit, _ := cmd.Flags().GetInt("limit")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	multi, _ := cmd.Flags().GetBool("multi")
	trace, _ := cmd.Flags().GetBool("trace")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if multi {
		res := svc.SearchMultiQuery(cmd.Context(), query, limit)
		if jsonOutput {
			return encodeJSON(os.Stdout, res)
		}
		if trace {
			printTrace(os.Stdout, res.TraceLog)
		}
		return formatResults(os.Stdout, res.Results)
	}

	if minScore <= 0 {
		minScore = svc.Config().MinScore
	}
	results := svc.Search(cmd.Context(), query, limit, minScore)
	if jsonOutput {
		return encodeJSON(os.Stdout, results)
	}
	return formatResults(os.Stdout, results)
}

func formatResults(w io.Writer, results []types.ScoredCandidate) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-6s  %-30s  %s\n", "Rank", "Score", "Title", "Snippet")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, r := range results {
		title := ""
		if r.Article != nil {
			title = r.Article.Title
		}
		fmt.Fprintf(w, "%-4d  %-6.3f  %-30s  %s\n",
			i+1, r.RelevanceScore, clip(title, 30), clip(stripMarks(r.Snippet), 58))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func printTrace(w io.Writer, entries []string) {
	for _, e := range entries {
		fmt.Fprintln(w, "  >", e)
	}
	fmt.Fprintln(w)
}

// --- shared helpers ---

func queryFromArgs(cmd *cobra.Command, args []string) string {
	q, _ := cmd.Flags().GetString("query")
	if q == "" && len(args) > 0 {
		q = strings.Join(args, " ")
	}
	return q
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

var markReplacer = strings.NewReplacer("<mark>", "", "</mark>", "", "\n", " ")

func stripMarks(s string) string {
	return markReplacer.Replace(s)
}

func init() {
	searchCmd.Flags().String("query", "", "search query (alternative to positional arguments)")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Float64("min-score", 0, "minimum relevance score (0 = use default)")
	searchCmd.Flags().Bool("multi", false, "treat the query as a question and run multi-query search")
	searchCmd.Flags().Bool("trace", false, "print the retrieval status log (with --multi)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
