// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/wiki-retrieval/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose retrieval over the Model Context Protocol",
	Long: `Serve starts an MCP server offering the search, search_multi_query,
get_context, and get_article tools plus stats, categories, and article
resources. The server speaks stdio by default; pass --port to serve
streamable HTTP instead.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	server, err := mcp.NewServer(svc)
	if err != nil {
		return err
	}

	port := viper.GetInt("serve.port")
	if port > 0 {
		addr := fmt.Sprintf("localhost:%d", port)
		fmt.Fprintln(os.Stderr, "Serving MCP over HTTP on", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "serve HTTP on this port (0 = stdio)")
	viper.BindPFlag("serve.port", serveCmd.Flags().Lookup("port")) //nolint:errcheck

	rootCmd.AddCommand(serveCmd)
}
