package entity

import "fmt"

// Error kinds reported by the worker.
const (
	KindError      = "KindError"
	KindWarning    = "KindWarning"
	KindServerDied = "KindServerDied"
)

// SourceSpan is a region of a source file, relative to the project root. Lines and columns are 1-based.
type SourceSpan struct {
	FilePath   string `json:"spanFilePath"`
	FromLine   int    `json:"spanFromLine"`
	FromColumn int    `json:"spanFromColumn"`
	ToLine     int    `json:"spanToLine"`
	ToColumn   int    `json:"spanToColumn"`
}

// SourceError is a compiler error or warning.
type SourceError struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Span    *SourceSpan `json:"span,omitempty"`
	// TextSpan holds the description of errors that have no proper span.
	TextSpan string `json:"textSpan,omitempty"`
}

// String renders the error as file:line:column: kind:\nmessage.
func (e SourceError) String() string {
	if e.Span == nil {
		return fmt.Sprintf("%s: %s:\n%s", e.TextSpan, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s:\n%s", e.Span.FilePath, e.Span.FromLine, e.Span.FromColumn, e.Kind, e.Message)
}

// IsWarning reports whether the error is only a warning.
func (e SourceError) IsWarning() bool {
	return e.Kind == KindWarning
}

// ExpType is the type of an expression enclosing a span.
// Workers return them innermost first.
type ExpType struct {
	Type string      `json:"type"`
	Span *SourceSpan `json:"span,omitempty"`
}

// IDImportedFrom names the module an identifier was imported from.
type IDImportedFrom struct {
	Module  string `json:"module"`
	Package string `json:"package"`
}

// IDScope describes where an identifier comes from.
type IDScope struct {
	ImportedFrom *IDImportedFrom `json:"importedFrom,omitempty"`
}

// IDProp describes an identifier.
type IDProp struct {
	Name    string      `json:"name"`
	Type    string      `json:"type,omitempty"`
	Module  string      `json:"module"`
	Package string      `json:"package"`
	DefSpan *SourceSpan `json:"defSpan,omitempty"`
}

// SpanInfo is the identifier information at a span.
type SpanInfo struct {
	// Kind is SpanId for plain identifiers and SpanQQ for quasi-quotes.
	Kind  string      `json:"kind"`
	Prop  IDProp      `json:"prop"`
	Scope *IDScope    `json:"scope,omitempty"`
	Span  *SourceSpan `json:"span,omitempty"`
}

// Source describes where the identifier is defined, or imported from.
func (s SpanInfo) Source() string {
	switch {
	case s.Prop.DefSpan != nil:
		return fmt.Sprintf("(Defined in %s:%d:%d)", s.Prop.DefSpan.FilePath, s.Prop.DefSpan.FromLine, s.Prop.DefSpan.FromColumn)
	case s.Scope != nil && s.Scope.ImportedFrom != nil:
		return fmt.Sprintf("(Imported from %s)", s.Scope.ImportedFrom.Module)
	default:
		return ""
	}
}

// Completion is a single autocompletion candidate.
type Completion struct {
	Prop  IDProp   `json:"prop"`
	Scope *IDScope `json:"scope,omitempty"`
}
