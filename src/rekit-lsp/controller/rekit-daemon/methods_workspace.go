package rekitdaemon

import (
	"context"
	"fmt"
	"slices"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/controller/sidebar"
	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"go.lsp.dev/protocol"
)

// CodeAction offers the Rekit commands that apply to the document the request was made for.
func (c *controller) CodeAction(ctx context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	if only := params.Context.Only; len(only) > 0 && !slices.Contains(only, sidebar.CodeActionKind) {
		return []protocol.CodeAction{}, nil
	}

	path, err := mapper.DocumentURIToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("resolving code action target: %w", err)
	}
	return c.sidebar.CodeActions(ctx, path)
}

func (c *controller) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	return nil, c.sidebar.ExecuteCommand(ctx, params)
}
