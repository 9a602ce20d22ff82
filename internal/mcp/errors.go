// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcp exposes the retrieval service over the Model Context Protocol,
// so assistants can search the offline corpus and request assembled context.
package mcp

import "errors"

// ErrMissingService is returned when the retrieval service is not provided.
var ErrMissingService = errors.New("mcp: retrieval service is required")

// ErrArticleNotFound is returned by get_article when no article matches.
var ErrArticleNotFound = errors.New("article not found")
