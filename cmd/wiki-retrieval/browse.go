// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// --- article command ---

var articleCmd = &cobra.Command{
	Use:   "article [title]",
	Short: "Print one article by title or ID",
	Long: `Article prints the full text of the article with the given title
(case-insensitive). Use --id to look it up by external identifier instead.`,
	RunE: runArticle,
}

func runArticle(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	title := strings.Join(args, " ")
	if id == "" && strings.TrimSpace(title) == "" {
		return fmt.Errorf("title or --id required")
	}

	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	var a *types.Article
	if id != "" {
		a, err = svc.GetArticleByID(cmd.Context(), id)
	} else {
		a, err = svc.GetArticle(cmd.Context(), title)
	}
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("article not found")
	}

	if jsonOutput {
		return encodeJSON(os.Stdout, a)
	}
	fmt.Printf("# %s\n\n", a.Title)
	if len(a.Categories) > 0 {
		fmt.Printf("Categories: %s\n\n", strings.Join(a.Categories, ", "))
	}
	fmt.Println(a.Body)
	return nil
}

// --- random command ---

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "List randomly chosen articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		svc, closeFn, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		articles, err := svc.Random(cmd.Context(), count)
		if err != nil {
			return err
		}
		return formatArticles(articles, jsonOutput)
	},
}

// --- category command ---

var categoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "List articles in a category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		svc, closeFn, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		articles, err := svc.Category(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		return formatArticles(articles, jsonOutput)
	},
}

func formatArticles(articles []types.Article, jsonOutput bool) error {
	if jsonOutput {
		return encodeJSON(os.Stdout, articles)
	}

	if len(articles) == 0 {
		fmt.Println("No articles found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %s\n", "Title", "Summary")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, a := range articles {
		fmt.Fprintf(os.Stdout, "%-30s  %s\n", clip(a.Title, 30), clip(a.Summary, 68))
	}
	fmt.Fprintf(os.Stdout, "\n%d articles\n", len(articles))
	return nil
}

func init() {
	articleCmd.Flags().String("id", "", "look up by external article ID")
	articleCmd.Flags().Bool("json", false, "output the article as JSON")

	randomCmd.Flags().Int("count", 5, "number of articles")
	randomCmd.Flags().Bool("json", false, "output articles as JSON")

	categoryCmd.Flags().Int("limit", 0, "maximum articles (0 = use default)")
	categoryCmd.Flags().Bool("json", false, "output articles as JSON")

	rootCmd.AddCommand(articleCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(categoryCmd)
}
