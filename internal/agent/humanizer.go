package agent

import (
	"context"
	"strings"

	"github.com/bobmcallan/apichat/internal/common"
	"github.com/bobmcallan/apichat/internal/llm"
)

// Humanizer turns a raw API response into prose with a second, independent
// model call. It shares no conversation state with the routing call.
type Humanizer struct {
	model  llm.ChatModel
	logger *common.Logger
}

// NewHumanizer creates a Humanizer backed by model.
func NewHumanizer(model llm.ChatModel, logger *common.Logger) *Humanizer {
	return &Humanizer{model: model, logger: logger}
}

// Humanize summarizes apiResponse (decoded JSON or an error message) as an
// answer to userInput.
func (h *Humanizer) Humanize(ctx context.Context, userInput string, apiResponse any) (string, error) {
	prompt, err := BuildHumanizePrompt(userInput, apiResponse)
	if err != nil {
		return "", err
	}

	h.logger.Debug().Int("prompt_bytes", len(prompt)).Msg("humanizing api response")

	reply, err := h.model.Chat(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: humanizeSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &ModelError{Stage: StageHumanize, Err: err}
	}
	// An absent content field decodes as "".
	if strings.TrimSpace(reply) == "" {
		return "", &ModelError{Stage: StageHumanize, Err: llm.ErrNoContent}
	}
	return reply, nil
}
