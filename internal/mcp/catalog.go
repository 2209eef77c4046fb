package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// BuildMCPTool converts a descriptor into an mcp.Tool with a matching input schema.
func BuildMCPTool(d catalog.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(describe(d))}
	for _, p := range d.Parameters {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(d.Name, opts...)
}

func describe(d catalog.Descriptor) string {
	return fmt.Sprintf("%s %s", d.Method, d.Path)
}

// buildParamOption maps a catalog parameter to the mcp-go property option for its type.
func buildParamOption(p catalog.Parameter) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "number", "integer":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	case "array":
		opts = append([]mcp.PropertyOption{mcp.WithStringItems()}, opts...)
		return mcp.WithArray(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

// GenericToolHandler routes an MCP tool call through caller to the
// descriptor's REST endpoint.
func GenericToolHandler(caller Caller, d catalog.Descriptor, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := make(map[string]string)
		for name, val := range r.GetArguments() {
			if val == nil {
				continue
			}
			params[name] = argString(val)
		}

		logger.Debug().Str("tool", d.Name).Int("params", len(params)).Msg("mcp tool call")

		result, err := caller.Call(ctx, d.Name, params)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		out, err := json.Marshal(result)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: failed to encode response: %v", err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(out))}}, nil
	}
}

// argString renders an argument the way the chat agent renders action
// params: strings as-is, whole numbers without a fraction, the rest as JSON.
func argString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
