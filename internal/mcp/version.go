package mcp

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/config"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const versionToolName = "get_version"

// versionInfo is the get_version payload.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
	APIs    int    `json:"apis"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool(versionToolName,
		mcp.WithDescription("Get the apichat version and the number of catalog APIs. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports build information and the catalog size.
func VersionToolHandler(cat *catalog.Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(versionInfo{
			Version: config.Version,
			Build:   config.Build,
			Commit:  config.GitCommit,
			APIs:    cat.Len(),
		})
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(out))},
		}, nil
	}
}
