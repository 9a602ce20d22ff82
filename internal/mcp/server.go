// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pdiddy/wiki-retrieval/pkg/types"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Retriever is the part of the retrieval service the MCP server calls.
type Retriever interface {
	Search(ctx context.Context, query string, limit int, minScore float64) []types.ScoredCandidate
	SearchMultiQuery(ctx context.Context, question string, limit int) types.MultiQueryResult
	GetContext(ctx context.Context, question string, maxLength int) types.ContextResult
	GetArticle(ctx context.Context, title string) (*types.Article, error)
	GetArticleByID(ctx context.Context, externalID string) (*types.Article, error)
	Categories(ctx context.Context, limit int) ([]types.CategoryCount, error)
	Stats(ctx context.Context) (types.CorpusStats, error)
	Config() types.RetrievalConfig
}

// Server is the MCP server for the corpus.
type Server struct {
	svc    Retriever
	server *mcp.Server
}

// NewServer creates a new MCP server backed by svc.
func NewServer(svc Retriever) (*Server, error) {
	if svc == nil {
		return nil, ErrMissingService
	}

	impl := &mcp.Implementation{
		Name:    "wiki-retrieval",
		Version: Version,
	}

	s := &Server{
		svc:    svc,
		server: mcp.NewServer(impl, nil),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
