package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bobmcallan/apichat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type capturedFormat struct {
	Type string `json:"type"`
}

type capturedRequest struct {
	Model          string            `json:"model"`
	Messages       []capturedMessage `json:"messages"`
	ResponseFormat *capturedFormat   `json:"response_format"`
}

func completionServer(t *testing.T, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, jsonMode bool) *OpenAIClient {
	t.Helper()
	c, err := NewOpenAIClient(Config{BaseURL: baseURL + "/v1", Model: "mistral", JSONMode: jsonMode}, common.NewSilentLogger())
	require.NoError(t, err)
	return c
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(Config{Model: "mistral"}, common.NewSilentLogger())
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{BaseURL: "http://localhost:11434/v1"}, common.NewSilentLogger())
	assert.Error(t, err)

	c, err := NewOpenAIClient(Config{BaseURL: "http://localhost:11434/v1/", Model: "mistral"}, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, "mistral", c.Model())
}

func TestChat_ReturnsFirstChoice(t *testing.T) {
	var captured capturedRequest
	srv := completionServer(t, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "mistral",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"action\":\"chat\",\"response\":\"hi\"}"}, "finish_reason": "stop"}]
	}`, &captured)

	c := newTestClient(t, srv.URL, true)
	out, err := c.Chat(t.Context(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "system prompt"},
			{Role: RoleUser, Content: "hello"},
		},
		JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"chat","response":"hi"}`, out)

	assert.Equal(t, "mistral", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system prompt", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestChat_JSONModeDisabled(t *testing.T) {
	var captured capturedRequest
	srv := completionServer(t, `{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`, &captured)

	c := newTestClient(t, srv.URL, false)
	_, err := c.Chat(t.Context(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, JSON: true})
	require.NoError(t, err)
	assert.Nil(t, captured.ResponseFormat)
}

func TestChat_NoChoices(t *testing.T) {
	srv := completionServer(t, `{"id": "chatcmpl-2", "choices": []}`, nil)

	c := newTestClient(t, srv.URL, true)
	_, err := c.Chat(t.Context(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.True(t, errors.Is(err, ErrNoContent))
}

func TestChat_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "model not loaded"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, true)
	_, err := c.Chat(t.Context(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model request failed")
}
