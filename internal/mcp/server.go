// Package mcp exposes the API catalog as MCP tools, so MCP clients can call
// the same REST endpoints the chat agent routes to.
package mcp

import (
	"context"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/common"
	"github.com/bobmcallan/apichat/internal/config"
	"github.com/mark3labs/mcp-go/server"
)

// Caller invokes a catalog API by name.
type Caller interface {
	Call(ctx context.Context, name string, params map[string]string) (any, error)
}

// NewServer creates an MCP server with one tool per catalog descriptor plus
// get_version.
func NewServer(cat *catalog.Catalog, caller Caller, logger *common.Logger) *server.MCPServer {
	srv := server.NewMCPServer(
		config.Name,
		config.GetVersion(),
		server.WithToolCapabilities(true),
	)

	count := RegisterToolsFromCatalog(srv, caller, cat, logger)
	srv.AddTool(VersionTool(), VersionToolHandler(cat))

	logger.Info().
		Int("tools", count).
		Int("descriptors", cat.Len()).
		Msg("MCP server initialized")

	return srv
}

// RegisterToolsFromCatalog registers a tool for every descriptor. Names
// resolve to the first matching descriptor, so later duplicates are skipped.
func RegisterToolsFromCatalog(s *server.MCPServer, caller Caller, cat *catalog.Catalog, logger *common.Logger) int {
	seen := make(map[string]bool, cat.Len())
	count := 0
	for _, d := range cat.Descriptors() {
		if seen[d.Name] {
			logger.Warn().Str("name", d.Name).Str("path", d.Path).Msg("skipping duplicate catalog tool")
			continue
		}
		if d.Name == versionToolName {
			logger.Warn().Str("path", d.Path).Msg("catalog tool shadows get_version, skipping")
			continue
		}
		seen[d.Name] = true
		s.AddTool(BuildMCPTool(d), GenericToolHandler(caller, d, logger))
		count++
	}
	return count
}
