package agent

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/apichat/internal/llm"
)

// ErrInvalidFormat is returned when the model reply is not a JSON object.
var ErrInvalidFormat = errors.New("model response is not a JSON object")

// MissingFieldError names a field absent from the action envelope.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field in response: '%s'", e.Field)
}

// UnrecognizedActionError is returned for an action value that is neither
// "chat", "api" nor a registered tool.
type UnrecognizedActionError struct {
	Action string
}

func (e *UnrecognizedActionError) Error() string {
	return fmt.Sprintf("unrecognized action %q", e.Action)
}

// Model call stages.
const (
	StageRoute    = "route"
	StageHumanize = "humanize"
)

// ModelError wraps a failed model call with the stage it happened in.
type ModelError struct {
	Stage string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s model call: %v", e.Stage, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// User-visible messages.
const (
	MsgInvalidFormat      = "⚠️ Error in response format."
	MsgUnrecognizedAction = "⚠️ Unrecognized action."
	MsgHumanizeFailed     = "⚠️ Error generating the response."
)

// Render turns an error from Dispatch into the string shown to the user.
func Render(err error) string {
	var missing *MissingFieldError
	var unrecognized *UnrecognizedActionError
	var modelErr *ModelError

	switch {
	case errors.Is(err, ErrInvalidFormat):
		return MsgInvalidFormat
	case errors.As(err, &missing):
		return fmt.Sprintf("⚠️ Missing field in response: '%s'", missing.Field)
	case errors.As(err, &unrecognized):
		return MsgUnrecognizedAction
	case errors.As(err, &modelErr) && modelErr.Stage == StageHumanize && errors.Is(err, llm.ErrNoContent):
		return MsgHumanizeFailed
	case errors.As(err, &modelErr) && modelErr.Stage == StageRoute:
		return fmt.Sprintf("⚠️ Error: %v", modelErr.Err)
	default:
		return fmt.Sprintf("⚠️ Error processing response: %v", err)
	}
}
