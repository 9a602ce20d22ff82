// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts [query]",
	Short: "Print highlighted snippets with their sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := queryFromArgs(cmd, args)
		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("query required: provide search terms or --query")
		}
		count, _ := cmd.Flags().GetInt("count")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		svc, closeFn, err := openService(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		facts := svc.FactSnippets(cmd.Context(), query, count)
		if jsonOutput {
			return encodeJSON(os.Stdout, facts)
		}
		if len(facts) == 0 {
			fmt.Println("No facts found.")
			return nil
		}
		for i, f := range facts {
			fmt.Printf("%d. %s\n", i+1, stripMarks(f))
		}
		return nil
	},
}

func init() {
	factsCmd.Flags().String("query", "", "search query (alternative to positional arguments)")
	factsCmd.Flags().Int("count", 3, "number of snippets")
	factsCmd.Flags().Bool("json", false, "output snippets as JSON")

	rootCmd.AddCommand(factsCmd)
}
