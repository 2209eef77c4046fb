package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/bobmcallan/apichat/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt_EmbedsGrammarAndCatalog(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{Name: "users", Method: "GET", Path: "/api/users", Parameters: []catalog.Parameter{
			{Name: "q", In: "query", Description: "name <filter>", Type: "string"},
		}},
	}

	prompt, err := BuildSystemPrompt(descriptors, nil)
	require.NoError(t, err)

	assert.Contains(t, prompt, `{"action": "chat", "response": "normal response"}`)
	assert.Contains(t, prompt, `{"action": "tool_name", "query": "text to pass to the tool"}`)
	assert.Contains(t, prompt, `{"action": "api", "query": {"name": "api_name"`)
	assert.NotContains(t, prompt, "The available tools are")

	assert.Contains(t, prompt, "The available APIs are:\n[\n  {\n    \"name\": \"users\",")
	assert.Contains(t, prompt, `"description": "name <filter>"`, "no HTML escaping in the dump")
	assert.Contains(t, prompt, `"in": "query"`)
}

func TestBuildSystemPrompt_DumpRoundTrips(t *testing.T) {
	descriptors := []catalog.Descriptor{
		{Name: "a", Method: "GET", Path: "/a", Parameters: []catalog.Parameter{}},
		{Name: "b", Method: "POST", Path: "/b", Parameters: []catalog.Parameter{{Name: "x", In: "body", Required: true, Type: "integer"}}},
	}
	prompt, err := BuildSystemPrompt(descriptors, nil)
	require.NoError(t, err)

	start := strings.Index(prompt, "The available APIs are:\n") + len("The available APIs are:\n")
	end := strings.Index(prompt, "\n\nFor each API")
	require.True(t, start > 0 && end > start)

	var decoded []catalog.Descriptor
	require.NoError(t, json.Unmarshal([]byte(prompt[start:end]), &decoded))
	assert.Equal(t, descriptors, decoded)
}

func TestBuildSystemPrompt_EmptyCatalogAndTools(t *testing.T) {
	prompt, err := BuildSystemPrompt(nil, []string{"current_time", "word_count"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "The available APIs are:\n[]\n")
	assert.Contains(t, prompt, "The available tools are: current_time, word_count")
}

func TestBuildHumanizePrompt(t *testing.T) {
	prompt, err := BuildHumanizePrompt("who is 5?", map[string]any{"id": json.Number("5"), "name": "Al"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "### User Question:\n\"who is 5?\"")
	assert.Contains(t, prompt, "### API Response (JSON):\n{\n  \"id\": 5,\n  \"name\": \"Al\"\n}")
	assert.Contains(t, prompt, "Do NOT invent or assume any information.")
}

func TestBuildHumanizePrompt_ErrorString(t *testing.T) {
	prompt, err := BuildHumanizePrompt("q", "API Error: 404 - missing")
	require.NoError(t, err)
	assert.Contains(t, prompt, "### API Response (JSON):\n\"API Error: 404 - missing\"")
}
