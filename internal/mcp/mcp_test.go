package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/bobmcallan/apichat/internal/common"
	"github.com/bobmcallan/apichat/internal/invoker"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Descriptor{
		{
			Name:   "users",
			Method: "GET",
			Path:   "/users",
			Parameters: []catalog.Parameter{
				{Name: "limit", In: "query", Type: "integer", Description: "Max rows"},
				{Name: "active", In: "query", Type: "boolean"},
			},
		},
		{
			Name:   "orders",
			Method: "POST",
			Path:   "/orders",
			Parameters: []catalog.Parameter{
				{Name: "sku", In: "body", Type: "string", Required: true},
				{Name: "tags", In: "body", Type: "array"},
			},
		},
		{
			Name:   "users",
			Method: "DELETE",
			Path:   "/admin/users",
		},
	})
}

// listTools calls tools/list on the MCPServer and returns the tools.
func listTools(t *testing.T, s *mcpserver.MCPServer) []mcpgo.Tool {
	t.Helper()

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var toolsResult mcpgo.ListToolsResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolsResult))
	return toolsResult.Tools
}

// callTool calls a tool on the MCPServer and returns the result.
func callTool(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]interface{}) *mcpgo.CallToolResult {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":` + string(paramsJSON) + `}`)
	result := s.HandleMessage(t.Context(), msg)

	resp, ok := result.(mcpgo.JSONRPCResponse)
	require.True(t, ok, "expected JSONRPCResponse, got %T", result)

	resultJSON, err := json.Marshal(resp.Result)
	require.NoError(t, err)

	var toolResult mcpgo.CallToolResult
	require.NoError(t, json.Unmarshal(resultJSON, &toolResult))
	return &toolResult
}

// extractText extracts the text field from an MCP content block.
func extractText(t *testing.T, content mcpgo.Content) string {
	t.Helper()
	contentJSON, err := json.Marshal(content)
	require.NoError(t, err)
	var tc struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(contentJSON, &tc))
	return tc.Text
}

type stubCaller struct {
	name   string
	params map[string]string
	result any
	err    error
}

func (s *stubCaller) Call(_ context.Context, name string, params map[string]string) (any, error) {
	s.name = name
	s.params = params
	return s.result, s.err
}

// --- Tests ---

func TestNewServer_ListsCatalogTools(t *testing.T) {
	srv := NewServer(testCatalog(), &stubCaller{}, common.NewSilentLogger())

	tools := listTools(t, srv)
	byName := map[string]mcpgo.Tool{}
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	require.Len(t, tools, 3, "users, orders, get_version")
	require.Contains(t, byName, "users")
	assert.Equal(t, "GET /users", byName["users"].Description, "first users descriptor wins")
	assert.Contains(t, byName, "orders")
	assert.Contains(t, byName, "get_version")
}

func TestBuildMCPTool_ParamTypes(t *testing.T) {
	tool := BuildMCPTool(catalog.Descriptor{
		Name:   "mixed",
		Method: "GET",
		Path:   "/mixed",
		Parameters: []catalog.Parameter{
			{Name: "n", Type: "number"},
			{Name: "i", Type: "integer"},
			{Name: "b", Type: "boolean"},
			{Name: "a", Type: "array"},
			{Name: "s", Type: "string", Required: true},
			{Name: "o", Type: "object"},
		},
	})

	want := map[string]string{
		"n": "number",
		"i": "number",
		"b": "boolean",
		"a": "array",
		"s": "string",
		"o": "string",
	}
	for name, typ := range want {
		prop, ok := tool.InputSchema.Properties[name].(map[string]any)
		require.True(t, ok, "missing property %s", name)
		assert.Equal(t, typ, prop["type"], "property %s", name)
	}
	assert.Equal(t, []string{"s"}, tool.InputSchema.Required)
}

func TestGenericToolHandler_StringifiesArguments(t *testing.T) {
	caller := &stubCaller{result: map[string]any{"ok": true}}
	srv := NewServer(testCatalog(), caller, common.NewSilentLogger())

	result := callTool(t, srv, "orders", map[string]interface{}{
		"sku":   "A-1",
		"qty":   3,
		"price": 9.5,
		"gift":  false,
		"tags":  []string{"red", "big"},
		"note":  nil,
	})

	require.False(t, result.IsError, "unexpected error result: %s", extractText(t, result.Content[0]))
	assert.Equal(t, "orders", caller.name)
	assert.Equal(t, map[string]string{
		"sku":   "A-1",
		"qty":   "3",
		"price": "9.5",
		"gift":  "false",
		"tags":  `["red","big"]`,
	}, caller.params, "null arguments are dropped")
	assert.Equal(t, `{"ok":true}`, extractText(t, result.Content[0]))
}

func TestGenericToolHandler_CallerError(t *testing.T) {
	caller := &stubCaller{err: errors.New("API Error: 500 - boom")}
	srv := NewServer(testCatalog(), caller, common.NewSilentLogger())

	result := callTool(t, srv, "users", nil)
	require.True(t, result.IsError)
	assert.Equal(t, "Error: API Error: 500 - boom", extractText(t, result.Content[0]))
}

func TestGenericToolHandler_ThroughInvoker(t *testing.T) {
	var gotQuery string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" || r.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "missing")
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"name":"Al"}]`)
	}))
	defer api.Close()

	cat := testCatalog()
	inv := invoker.New(api.URL, cat, common.NewSilentLogger())
	srv := NewServer(cat, inv, common.NewSilentLogger())

	result := callTool(t, srv, "users", map[string]interface{}{"limit": 10})
	require.False(t, result.IsError, "unexpected error result: %s", extractText(t, result.Content[0]))
	assert.Equal(t, "limit=10", gotQuery)
	assert.Equal(t, `[{"id":1,"name":"Al"}]`, extractText(t, result.Content[0]))
}

func TestGenericToolHandler_InvokerStatusError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "missing")
	}))
	defer api.Close()

	cat := testCatalog()
	srv := NewServer(cat, invoker.New(api.URL, cat, common.NewSilentLogger()), common.NewSilentLogger())

	result := callTool(t, srv, "users", nil)
	require.True(t, result.IsError)
	assert.Equal(t, "Error: API Error: 404 - missing", extractText(t, result.Content[0]))
}

func TestRegisterToolsFromCatalog_SkipsVersionShadow(t *testing.T) {
	cat := catalog.New([]catalog.Descriptor{{Name: "get_version", Method: "GET", Path: "/get_version"}})
	srv := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))

	assert.Zero(t, RegisterToolsFromCatalog(srv, &stubCaller{}, cat, common.NewSilentLogger()))
}
