package mapper

import (
	stderr "errors"

	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"go.lsp.dev/jsonrpc2"
)

// JSON-RPC error codes in the implementation-defined server error range.
const (
	CodeWorkerUnavailable jsonrpc2.Code = -32001
	CodeProjectNotFound   jsonrpc2.Code = -32002
	CodeBadWorkerPayload  jsonrpc2.Code = -32003
	CodeNoReply           jsonrpc2.Code = -32004
)

// ToJSONRPCError translates service domain errors into JSON-RPC errors for editors.
func ToJSONRPCError(e error) error {
	if e == nil {
		return nil
	}

	if errors.IsUnavailable(e) {
		return jsonrpc2.NewError(CodeWorkerUnavailable, e.Error())
	}

	var nf *errors.ProjectNotFoundError
	if stderr.As(e, &nf) {
		return jsonrpc2.NewError(CodeProjectNotFound, e.Error())
	}

	if stderr.Is(e, errors.ErrNoReply) {
		return jsonrpc2.NewError(CodeNoReply, e.Error())
	}

	if stderr.Is(e, errors.ErrDecode) {
		return jsonrpc2.NewError(CodeBadWorkerPayload, e.Error())
	}

	return e
}
