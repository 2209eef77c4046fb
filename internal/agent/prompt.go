package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobmcallan/apichat/internal/catalog"
)

// humanizeSystemPrompt is the fixed system message of the humanizer call.
const humanizeSystemPrompt = "You are a helpful assistant."

const systemPromptHeader = `
You are an AI assistant with access to specialized tools.
When the user makes a request, decide whether to:
1. Respond directly
2. Use an external tool

Respond in the following format:
{"action": "tool_name", "query": "text to pass to the tool"}
or
{"action": "chat", "response": "normal response"}
or
{"action": "api", "query": {"name": "api_name", "params": {"parameter1": "value1", "parameter2": "value2"}}}
`

const systemPromptFooter = `
For each API, the required parameters are specified. If you choose to use an API, include all required parameters in the "params" field.
If the request does not require a tool or an API, respond directly.
`

// BuildSystemPrompt renders the routing instructions followed by the API
// descriptors as indented JSON. toolNames, when present, are listed so the
// model knows which "tool_name" values exist.
func BuildSystemPrompt(descriptors []catalog.Descriptor, toolNames []string) (string, error) {
	if descriptors == nil {
		descriptors = []catalog.Descriptor{}
	}
	dump, err := marshalIndent(descriptors)
	if err != nil {
		return "", fmt.Errorf("failed to render API catalog: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(systemPromptHeader)
	if len(toolNames) > 0 {
		sb.WriteString("\nThe available tools are: ")
		sb.WriteString(strings.Join(toolNames, ", "))
		sb.WriteString("\n")
	}
	sb.WriteString("\nThe available APIs are:\n")
	sb.WriteString(dump)
	sb.WriteString("\n")
	sb.WriteString(systemPromptFooter)
	return sb.String(), nil
}

// BuildHumanizePrompt asks the model to explain apiResponse to the user,
// using only what the response contains.
func BuildHumanizePrompt(userInput string, apiResponse any) (string, error) {
	dump, err := marshalIndent(apiResponse)
	if err != nil {
		return "", fmt.Errorf("failed to render API response: %w", err)
	}

	return fmt.Sprintf(`
You are an AI assistant. Your task is to provide a human-readable answer to the user by accurately interpreting the API response.

### User Question:
"%s"

### API Response (JSON):
%s

### Instructions:
- Base your response ONLY on the API response. Do NOT invent or assume any information.
- If the API response contains an error or missing data, inform the user clearly.
- Summarize the API response in a natural, easy-to-understand way.
- If relevant, include key details but avoid excessive repetition.

Now, generate the response:
`, userInput, dump), nil
}

// marshalIndent renders v with two-space indentation and no HTML escaping.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
