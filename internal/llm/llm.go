// Package llm is the chat-completion boundary. Everything above it talks to
// a ChatModel; the default implementation targets any OpenAI-compatible
// endpoint such as Ollama's /v1.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/apichat/internal/common"
	"github.com/sashabaranov/go-openai"
)

// ErrNoContent is returned when the model reply carries no message.
var ErrNoContent = errors.New("model response has no content")

// Role tags a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// Request is a single non-streaming chat exchange.
type Request struct {
	Messages []Message
	// JSON asks the endpoint to constrain the reply to a JSON object,
	// when the client has JSON mode enabled.
	JSON bool
}

// ChatModel sends a chat exchange and returns the reply text.
type ChatModel interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// Config configures an OpenAIClient.
type Config struct {
	BaseURL  string
	Model    string
	APIKey   string
	JSONMode bool
	Timeout  time.Duration // zero means no timeout
}

// OpenAIClient implements ChatModel over go-openai.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	jsonMode bool
	logger   *common.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg Config, logger *common.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("model base URL is empty")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("model name is empty")
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// Ollama ignores the key but the header must be well-formed.
		apiKey = "ollama"
	}
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(oc),
		model:    cfg.Model,
		jsonMode: cfg.JSONMode,
		logger:   logger,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat sends req and returns the content of the first choice.
func (c *OpenAIClient) Chat(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	creq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	}
	if req.JSON && c.jsonMode {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	c.logger.Debug().Str("model", c.model).Int("messages", len(msgs)).Bool("json", creq.ResponseFormat != nil).Msg("model request")

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, creq)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error().Str("model", c.model).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("model request failed")
		return "", fmt.Errorf("model request failed: %w", err)
	}

	c.logger.Debug().Int("choices", len(resp.Choices)).Int("total_tokens", resp.Usage.TotalTokens).Int64("duration_ms", duration.Milliseconds()).Msg("model response")

	if len(resp.Choices) == 0 {
		return "", ErrNoContent
	}
	return resp.Choices[0].Message.Content, nil
}
