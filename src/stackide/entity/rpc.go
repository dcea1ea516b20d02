package entity

import (
	"encoding/json"

	"go.lsp.dev/uri"
)

type keyType string

// ConnectionContextKey identifies the editor connection UUID in a context.
const ConnectionContextKey keyType = "ConnectionUUID"

// OpenProjectParams registers a project (an editor window) and its folders.
type OpenProjectParams struct {
	Key     ProjectKey `json:"key"`
	Folders []uri.URI  `json:"folders"`
}

// ProjectParams names a single project.
type ProjectParams struct {
	Key ProjectKey `json:"key"`
}

// RawRequestParams forwards an arbitrary request to a project's worker.
type RawRequestParams struct {
	Key            ProjectKey      `json:"key"`
	Tag            string          `json:"tag"`
	Contents       json.RawMessage `json:"contents,omitempty"`
	ExpectResponse bool            `json:"expectResponse"`
}

// SpanParams asks about a source span of a project.
type SpanParams struct {
	Key  ProjectKey `json:"key"`
	Span SourceSpan `json:"span"`
}

// AutocompletionParams asks for completions of Prefix in FilePath.
type AutocompletionParams struct {
	Key      ProjectKey `json:"key"`
	FilePath string     `json:"filePath"`
	Prefix   string     `json:"prefix"`
}

// SourceErrorsNotification is pushed to editors when a worker reports its errors after starting.
type SourceErrorsNotification struct {
	Key       ProjectKey    `json:"key"`
	Errors    []SourceError `json:"errors"`
	ShowPopup bool          `json:"showPopup"`
}
