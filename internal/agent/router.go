// Package agent routes user input through the language model to a direct
// reply, a local tool, or a catalog API call.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/apichat/internal/common"
	"github.com/bobmcallan/apichat/internal/llm"
	"github.com/bobmcallan/apichat/internal/tools"
	"github.com/google/uuid"
)

// ToolSet is the router's view of the tool registry: membership and lookup.
type ToolSet interface {
	Has(name string) bool
	Get(name string) tools.Func
}

// APICaller invokes a catalog API by name.
type APICaller interface {
	Call(ctx context.Context, name string, params map[string]string) (any, error)
}

// Config is everything the router needs. It is built once at startup and
// never changes afterwards.
type Config struct {
	SystemPrompt string
	Model        llm.ChatModel
	Tools        ToolSet
	APIs         APICaller
	Humanizer    *Humanizer
	Logger       *common.Logger
}

// Router handles one user turn at a time. It keeps no state between turns.
type Router struct {
	cfg Config
}

// NewRouter validates cfg and returns a Router.
func NewRouter(cfg Config) (*Router, error) {
	switch {
	case cfg.SystemPrompt == "":
		return nil, errors.New("system prompt is empty")
	case cfg.Model == nil:
		return nil, errors.New("model is nil")
	case cfg.Tools == nil:
		return nil, errors.New("tool set is nil")
	case cfg.APIs == nil:
		return nil, errors.New("api caller is nil")
	case cfg.Logger == nil:
		return nil, errors.New("logger is nil")
	}
	if cfg.Humanizer == nil {
		cfg.Humanizer = NewHumanizer(cfg.Model, cfg.Logger)
	}
	return &Router{cfg: cfg}, nil
}

// Route answers userInput. Failures, including panics in tools, are
// rendered into the returned string, so the caller always has something to print.
func (r *Router) Route(ctx context.Context, userInput string) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.cfg.Logger.Error().Str("panic", fmt.Sprint(p)).Msg("turn panicked")
			out = Render(fmt.Errorf("panic: %v", p))
		}
	}()

	out, err := r.Dispatch(ctx, userInput)
	if err != nil {
		return Render(err)
	}
	return out
}

// Dispatch asks the model for an action and executes it.
func (r *Router) Dispatch(ctx context.Context, userInput string) (string, error) {
	logger := r.cfg.Logger.WithCorrelationId(uuid.NewString())
	start := time.Now()

	reply, err := r.cfg.Model.Chat(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: r.cfg.SystemPrompt},
			{Role: llm.RoleUser, Content: userInput},
		},
		JSON: true,
	})
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("routing call failed")
		return "", &ModelError{Stage: StageRoute, Err: err}
	}

	action, err := ParseAction(reply, r.cfg.Tools.Has)
	if err != nil {
		logger.Warn().Str("error", err.Error()).Int("reply_bytes", len(reply)).Msg("unusable action envelope")
		return "", err
	}

	out, err := r.execute(ctx, logger, userInput, action)
	if err != nil {
		logger.Warn().Str("error", err.Error()).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("turn failed")
		return "", err
	}
	logger.Info().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("turn completed")
	return out, nil
}

func (r *Router) execute(ctx context.Context, logger *common.Logger, userInput string, action Action) (string, error) {
	switch a := action.(type) {
	case ChatAction:
		logger.Info().Str("action", actionChat).Msg("direct reply")
		return a.Response, nil

	case ToolAction:
		logger.Info().Str("action", "tool").Str("tool", a.Tool).Msg("running tool")
		fn := r.cfg.Tools.Get(a.Tool)
		if fn == nil {
			return "", &UnrecognizedActionError{Action: a.Tool}
		}
		out, err := fn(ctx, a.Query)
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", a.Tool, err)
		}
		return out, nil

	case APIAction:
		logger.Info().Str("action", actionAPI).Str("api", a.Name).Int("params", len(a.Params)).Msg("calling api")
		var apiResponse any
		result, err := r.cfg.APIs.Call(ctx, a.Name, a.Params)
		if err != nil {
			// The model explains failures to the user like any other response.
			logger.Warn().Str("api", a.Name).Str("error", err.Error()).Msg("api call failed")
			apiResponse = err.Error()
		} else {
			apiResponse = result
		}
		logger.Debug().Str("user_input", userInput).Msg("humanizing api response")
		return r.cfg.Humanizer.Humanize(ctx, userInput, apiResponse)

	default:
		return "", fmt.Errorf("unhandled action type %T", action)
	}
}
