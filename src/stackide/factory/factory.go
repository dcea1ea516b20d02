package factory

import (
	"fmt"
	"math/rand"

	"github.com/gofrs/uuid"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	"go.lsp.dev/jsonrpc2"
)

// UUID is a user-defined factory for a random uuid.UUID.
func UUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

// JSONRPCRequest is a user-defined factory for a JSON-RPC request containing the specified method and parameters.
func JSONRPCRequest(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewCall(jsonrpc2.NewNumberID(5), method, params)
	return req
}

// JSONRPCNotification is JSONRPCRequest without an id.
func JSONRPCNotification(method string, params interface{}) jsonrpc2.Request {
	req, _ := jsonrpc2.NewNotification(method, params)
	return req
}

// Project returns a project keyed by id whose single folder is root.
func Project(id int, root string) entity.Project {
	return entity.Project{
		Key:     entity.ProjectKey(fmt.Sprintf("window-%d", id)),
		Folders: []string{root},
		Owner:   UUID(),
	}
}

// SourceSpan returns a random span in filePath.
func SourceSpan(filePath string) entity.SourceSpan {
	fromLine := 1 + rand.Intn(100)
	return entity.SourceSpan{
		FilePath:   filePath,
		FromLine:   fromLine,
		FromColumn: 1 + rand.Intn(80),
		ToLine:     fromLine + rand.Intn(10),
		ToColumn:   1 + rand.Intn(80),
	}
}
