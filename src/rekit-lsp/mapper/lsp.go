package mapper

import (
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// decodeParams unmarshals the params of req into a new T. Failures are reported as parse errors.
func decodeParams[T any](req jsonrpc2.Request) (*T, error) {
	params := new(T)
	if err := json.Unmarshal(req.Params(), params); err != nil {
		return nil, wrapErrParse(err)
	}
	return params, nil
}

func RequestToInitializeParams(req jsonrpc2.Request) (*protocol.InitializeParams, error) {
	return decodeParams[protocol.InitializeParams](req)
}

func RequestToInitializedParams(req jsonrpc2.Request) (*protocol.InitializedParams, error) {
	return decodeParams[protocol.InitializedParams](req)
}

func RequestToCodeActionParams(req jsonrpc2.Request) (*protocol.CodeActionParams, error) {
	return decodeParams[protocol.CodeActionParams](req)
}

// RequestToExecuteCommandParams keeps every argument as raw JSON; commands decode their own argument type.
func RequestToExecuteCommandParams(req jsonrpc2.Request) (*protocol.ExecuteCommandParams, error) {
	var raw struct {
		Command   string            `json:"command"`
		Arguments []json.RawMessage `json:"arguments,omitempty"`
	}
	if err := json.Unmarshal(req.Params(), &raw); err != nil {
		return nil, wrapErrParse(err)
	}

	params := &protocol.ExecuteCommandParams{Command: raw.Command}
	for _, arg := range raw.Arguments {
		params.Arguments = append(params.Arguments, []byte(arg))
	}
	return params, nil
}

// NewCodeAction creates a code action that runs command with a single argument object.
func NewCodeAction(title string, command string, kind protocol.CodeActionKind, arguments interface{}) protocol.CodeAction {
	return protocol.CodeAction{
		Title: title,
		Kind:  kind,
		Command: &protocol.Command{
			Title:     title,
			Command:   command,
			Arguments: []interface{}{arguments},
		},
	}
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
