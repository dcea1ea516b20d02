package stackide

import (
	"context"

	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
)

// OpenProject registers an editor window and its folders, starting a worker for it.
func (r *jsonRPCRouter) OpenProject(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToOpenProjectParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.stackide.OpenProject(ctx, params)
	return reply(ctx, nil, err)
}

// CloseProject forgets an editor window, retiring its worker.
func (r *jsonRPCRouter) CloseProject(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.stackide.CloseProject(ctx, params)
	return reply(ctx, nil, err)
}

// IsRunning reports whether the project has an active worker.
func (r *jsonRPCRouter) IsRunning(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	running, err := r.stackide.IsRunning(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, running, nil)
}
