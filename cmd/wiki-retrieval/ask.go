// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/wiki-retrieval/internal/assemble"
	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

const (
	modeMulti  = "multi"
	modeSimple = "simple"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Assemble attributed context for a question",
	Long: `Ask retrieves the articles most relevant to a question and packs their
summaries into a length-bounded context block ending with a source
attribution line. The block and its confidence estimate are printed.

With --simple, a single query is run instead of multi-query retrieval.
Use --save to write the result to a YAML context file.`,
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := queryFromArgs(cmd, args)
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question required: provide a question or --query")
	}

	maxLength, _ := cmd.Flags().GetInt("max-length")
	maxArticles, _ := cmd.Flags().GetInt("max-articles")
	simple, _ := cmd.Flags().GetBool("simple")
	trace, _ := cmd.Flags().GetBool("trace")
	savePath, _ := cmd.Flags().GetString("save")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	if maxLength < 0 {
		maxLength = svc.Config().MaxContextLength
	}

	var (
		res  types.ContextResult
		mode = modeMulti
	)
	if simple {
		mode = modeSimple
		res = svc.SimpleContext(cmd.Context(), question, maxLength, maxArticles)
	} else {
		res = svc.GetContext(cmd.Context(), question, maxLength)
	}

	if savePath != "" {
		if err := assemble.WriteContextFile(savePath, res, maxLength, mode); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Saved context to", savePath)
	}

	if jsonOutput {
		return encodeJSON(os.Stdout, res)
	}

	if trace {
		printTrace(os.Stdout, res.TraceLog)
	}
	fmt.Println(res.ContextText)
	fmt.Printf("\nConfidence: %.2f (%d sources)\n", res.Confidence, len(res.Sources))
	return nil
}

func init() {
	askCmd.Flags().String("query", "", "question (alternative to positional arguments)")
	askCmd.Flags().Int("max-length", -1, "maximum context length in characters (-1 = use default)")
	askCmd.Flags().Int("max-articles", 0, "maximum articles packed in --simple mode (0 = use default)")
	askCmd.Flags().Bool("simple", false, "use single-query retrieval")
	askCmd.Flags().Bool("trace", false, "print the retrieval status log")
	askCmd.Flags().String("save", "", "write the context result to a YAML file")
	askCmd.Flags().Bool("json", false, "output the context result as JSON")

	rootCmd.AddCommand(askCmd)
}
