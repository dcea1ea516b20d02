package stackide

import (
	"context"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	controller "github.com/uber/stackide-proxy/src/stackide/controller/stackide"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
)

// Methods accepted from editors.
const (
	MethodOpenProject       = "stackide/openProject"
	MethodCloseProject      = "stackide/closeProject"
	MethodIsRunning         = "stackide/isRunning"
	MethodRequest           = "stackide/request"
	MethodGetSourceErrors   = "stackide/getSourceErrors"
	MethodGetExpTypes       = "stackide/getExpTypes"
	MethodGetSpanInfo       = "stackide/getSpanInfo"
	MethodGetAutocompletion = "stackide/getAutocompletion"
	MethodUpdateSession     = "stackide/updateSession"
	MethodStatus            = "stackide/status"
	MethodRestart           = "stackide/restart"
)

type jsonRPCRouter struct {
	stackide controller.Controller
	uuid     uuid.UUID
	stats    tally.Scope
}

// HandleReq handles routing for a single request.
func (r *jsonRPCRouter) HandleReq(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	ctx = mapper.ConnectionUUIDToContext(ctx, r.uuid)
	if r.stats != nil {
		r.stats.Tagged(map[string]string{"method": req.Method()}).Counter("requests").Inc(1)
	}

	// Domain errors are translated before they reach the editor.
	reply = replyWithJSONRPCErrors(reply)

	switch req.Method() {
	// Project lifecycle.
	case MethodOpenProject:
		return r.OpenProject(ctx, reply, req)

	case MethodCloseProject:
		return r.CloseProject(ctx, reply, req)

	case MethodIsRunning:
		return r.IsRunning(ctx, reply, req)

	// Worker requests.
	case MethodRequest:
		return r.Request(ctx, reply, req)

	case MethodGetSourceErrors:
		return r.GetSourceErrors(ctx, reply, req)

	case MethodGetExpTypes:
		return r.GetExpTypes(ctx, reply, req)

	case MethodGetSpanInfo:
		return r.GetSpanInfo(ctx, reply, req)

	case MethodGetAutocompletion:
		return r.GetAutocompletion(ctx, reply, req)

	case MethodUpdateSession:
		return r.UpdateSession(ctx, reply, req)

	// Administration.
	case MethodStatus:
		return r.Status(ctx, reply, req)

	case MethodRestart:
		return r.Restart(ctx, reply, req)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (r *jsonRPCRouter) UUID() uuid.UUID {
	return r.uuid
}

func replyWithJSONRPCErrors(reply jsonrpc2.Replier) jsonrpc2.Replier {
	return func(ctx context.Context, result interface{}, err error) error {
		return reply(ctx, result, mapper.ToJSONRPCError(err))
	}
}
