package stackide

import (
	"context"

	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
)

// Request forwards an arbitrary tagged request to the project's worker.
func (r *jsonRPCRouter) Request(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToRawRequestParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.stackide.Request(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	// A nil result marshals as null.
	return reply(ctx, result, nil)
}

func (r *jsonRPCRouter) GetSourceErrors(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.stackide.GetSourceErrors(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, result, nil)
}

func (r *jsonRPCRouter) GetExpTypes(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToSpanParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.stackide.GetExpTypes(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, result, nil)
}

func (r *jsonRPCRouter) GetSpanInfo(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToSpanParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.stackide.GetSpanInfo(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, result, nil)
}

func (r *jsonRPCRouter) GetAutocompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToAutocompletionParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	result, err := r.stackide.GetAutocompletion(ctx, params)
	if err != nil {
		return reply(ctx, nil, err)
	}

	return reply(ctx, result, nil)
}

// UpdateSession asks the worker to reload. It does not wait for the worker.
func (r *jsonRPCRouter) UpdateSession(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	params, err := mapper.RequestToProjectParams(req)
	if err != nil {
		return reply(ctx, nil, err)
	}

	err = r.stackide.UpdateSession(ctx, params)
	return reply(ctx, nil, err)
}
