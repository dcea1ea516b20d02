package stackide

import (
	"context"

	"go.lsp.dev/jsonrpc2"
)

// Status lists every tracked worker.
func (r *jsonRPCRouter) Status(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result, err := r.stackide.Status(ctx)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, result, nil)
}

// Restart kills every worker and starts fresh ones. Outstanding complaints may be shown again.
func (r *jsonRPCRouter) Restart(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	err := r.stackide.Restart(ctx)
	return reply(ctx, nil, err)
}
