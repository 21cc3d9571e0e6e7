package rekitdaemon

import (
	"context"

	"github.com/rekit/rekit-lsp/src/rekit-lsp/mapper"
	"go.lsp.dev/jsonrpc2"
)

func (r *jsonRPCRouter) CodeAction(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToCodeActionParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.rekitdaemon.CodeAction(ctx, params)
	return reply(ctx, result, err)
}

func (r *jsonRPCRouter) ExecuteCommand(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToExecuteCommandParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.rekitdaemon.ExecuteCommand(ctx, params)
	return reply(ctx, result, err)
}
