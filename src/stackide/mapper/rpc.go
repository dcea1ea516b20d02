package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/uri"
)

// RequestToOpenProjectParams maps the parameters from a jsonrpc2.Request into entity.OpenProjectParams.
func RequestToOpenProjectParams(req jsonrpc2.Request) (*entity.OpenProjectParams, error) {
	params := entity.OpenProjectParams{}
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// RequestToProjectParams maps the parameters from a jsonrpc2.Request into entity.ProjectParams.
func RequestToProjectParams(req jsonrpc2.Request) (*entity.ProjectParams, error) {
	params := entity.ProjectParams{}
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// RequestToRawRequestParams maps the parameters from a jsonrpc2.Request into entity.RawRequestParams.
func RequestToRawRequestParams(req jsonrpc2.Request) (*entity.RawRequestParams, error) {
	params := entity.RawRequestParams{}
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	if params.Tag == "" {
		return nil, fmt.Errorf("%s: missing tag", jsonrpc2.ErrInvalidParams)
	}
	return &params, nil
}

// RequestToSpanParams maps the parameters from a jsonrpc2.Request into entity.SpanParams.
func RequestToSpanParams(req jsonrpc2.Request) (*entity.SpanParams, error) {
	params := entity.SpanParams{}
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// RequestToAutocompletionParams maps the parameters from a jsonrpc2.Request into entity.AutocompletionParams.
func RequestToAutocompletionParams(req jsonrpc2.Request) (*entity.AutocompletionParams, error) {
	params := entity.AutocompletionParams{}
	if err := unmarshalParams(req, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// OpenProjectParamsToProject converts editor folder URIs to filesystem paths.
func OpenProjectParamsToProject(params *entity.OpenProjectParams, owner uuid.UUID) entity.Project {
	folders := make([]string, 0, len(params.Folders))
	for _, folder := range params.Folders {
		if path := folderToPath(folder); path != "" {
			folders = append(folders, path)
		}
	}
	return entity.Project{
		Key:     params.Key,
		Folders: folders,
		Owner:   owner,
	}
}

// folderToPath accepts file URIs and absolute paths. Anything else maps to "".
func folderToPath(folder uri.URI) string {
	raw := string(folder)
	switch {
	case strings.HasPrefix(raw, uri.FileScheme+"://"):
		return folder.Filename()
	case filepath.IsAbs(raw):
		return filepath.Clean(raw)
	default:
		return ""
	}
}

// ConnectionUUIDToContext stores the editor connection UUID in the context.
func ConnectionUUIDToContext(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, entity.ConnectionContextKey, id)
}

// ContextToConnectionUUID extracts the editor connection UUID from a context.
func ContextToConnectionUUID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(entity.ConnectionContextKey).(uuid.UUID)
	return id, ok
}

func unmarshalParams(req jsonrpc2.Request, v interface{}) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return wrapErrParse(err)
	}
	return nil
}

func wrapErrParse(err error) error {
	return fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err)
}
