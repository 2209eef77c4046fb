package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Action is the model's decision for one turn. Exactly one variant is
// produced per turn: ChatAction, ToolAction or APIAction.
type Action interface {
	isAction()
}

// ChatAction answers the user directly.
type ChatAction struct {
	Response string
}

// ToolAction runs a registered local tool with a single query argument.
type ToolAction struct {
	Tool  string
	Query string
}

// APIAction calls a catalog API by name.
type APIAction struct {
	Name   string
	Params map[string]string
}

func (ChatAction) isAction() {}
func (ToolAction) isAction() {}
func (APIAction) isAction()  {}

const (
	actionChat = "chat"
	actionAPI  = "api"
)

// ParseAction decodes the model's reply into an Action. isTool reports
// whether an action value names a registered tool. "chat" takes precedence
// over a tool of the same name, and tools over "api".
func ParseAction(content string, isTool func(string) bool) (Action, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &env); err != nil || env == nil {
		return nil, ErrInvalidFormat
	}

	rawAction, ok := env["action"]
	if !ok {
		return nil, &MissingFieldError{Field: "action"}
	}
	var action string
	if err := json.Unmarshal(rawAction, &action); err != nil {
		return nil, &UnrecognizedActionError{Action: string(rawAction)}
	}

	switch {
	case action == actionChat:
		raw, ok := env["response"]
		if !ok {
			return nil, &MissingFieldError{Field: "response"}
		}
		return ChatAction{Response: stringValue(raw)}, nil

	case isTool != nil && isTool(action):
		raw, ok := env["query"]
		if !ok {
			return nil, &MissingFieldError{Field: "query"}
		}
		return ToolAction{Tool: action, Query: stringValue(raw)}, nil

	case action == actionAPI:
		raw, ok := env["query"]
		if !ok {
			return nil, &MissingFieldError{Field: "query"}
		}
		return parseAPIQuery(raw)

	default:
		return nil, &UnrecognizedActionError{Action: action}
	}
}

func parseAPIQuery(raw json.RawMessage) (Action, error) {
	var query map[string]json.RawMessage
	if err := json.Unmarshal(raw, &query); err != nil || query == nil {
		return nil, errors.New("api query is not an object")
	}

	rawName, ok := query["name"]
	if !ok {
		return nil, &MissingFieldError{Field: "name"}
	}

	params := map[string]string{}
	if rawParams, ok := query["params"]; ok && !isNull(rawParams) {
		var values map[string]json.RawMessage
		if err := json.Unmarshal(rawParams, &values); err != nil {
			return nil, fmt.Errorf("api params is not an object: %w", err)
		}
		for k, v := range values {
			if isNull(v) {
				continue
			}
			params[k] = stringValue(v)
		}
	}

	return APIAction{Name: stringValue(rawName), Params: params}, nil
}

// stringValue renders a JSON value as text: strings unquoted, everything
// else as its compact JSON literal (42, true, {"a":1}).
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
