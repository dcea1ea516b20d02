// Package mapper converts worker payloads and service errors between their wire and domain forms.
package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/uber/stackide-proxy/src/stackide/entity"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
)

const _properSpan = "ProperSpan"

type eitherSpan struct {
	Tag      string          `json:"tag"`
	Contents json.RawMessage `json:"contents"`
}

type sourceError struct {
	ErrorKind string     `json:"errorKind"`
	ErrorMsg  string     `json:"errorMsg"`
	ErrorSpan eitherSpan `json:"errorSpan"`
}

type moduleID struct {
	ModuleName    string `json:"moduleName"`
	ModulePackage struct {
		PackageName string `json:"packageName"`
	} `json:"modulePackage"`
}

type idProp struct {
	IDName      string     `json:"idName"`
	IDType      *string    `json:"idType"`
	IDDefSpan   eitherSpan `json:"idDefSpan"`
	IDDefinedIn moduleID   `json:"idDefinedIn"`
}

type idScope struct {
	IDImportedFrom *moduleID `json:"idImportedFrom"`
}

type idInfo struct {
	IDProp  idProp  `json:"idProp"`
	IDScope idScope `json:"idScope"`
}

type spanInfo struct {
	Tag      string `json:"tag"`
	Contents idInfo `json:"contents"`
}

// ContentsToSourceErrors converts ResponseGetSourceErrors contents.
func ContentsToSourceErrors(contents json.RawMessage) ([]entity.SourceError, error) {
	var items []sourceError
	if err := unmarshal(contents, &items); err != nil {
		return nil, fmt.Errorf("parsing source errors: %w", err)
	}

	result := make([]entity.SourceError, 0, len(items))
	for _, item := range items {
		e := entity.SourceError{
			Kind:    item.ErrorKind,
			Message: item.ErrorMsg,
		}
		span, text, err := eitherSpanToSourceSpan(item.ErrorSpan)
		if err != nil {
			return nil, fmt.Errorf("parsing source error span: %w", err)
		}
		e.Span = span
		e.TextSpan = text
		result = append(result, e)
	}
	return result, nil
}

// ContentsToExpTypes converts ResponseGetExpTypes contents, a list of [type, span] pairs.
func ContentsToExpTypes(contents json.RawMessage) ([]entity.ExpType, error) {
	var items [][]json.RawMessage
	if err := unmarshal(contents, &items); err != nil {
		return nil, fmt.Errorf("parsing exp types: %w", err)
	}

	result := make([]entity.ExpType, 0, len(items))
	for _, item := range items {
		if len(item) < 2 {
			return nil, fmt.Errorf("parsing exp types: %w: expected [type, span], got %d elements", errors.ErrDecode, len(item))
		}
		var expType entity.ExpType
		if err := json.Unmarshal(item[0], &expType.Type); err != nil {
			return nil, fmt.Errorf("parsing exp type: %w: %v", errors.ErrDecode, err)
		}
		span, err := rawToSourceSpan(item[1])
		if err != nil {
			return nil, fmt.Errorf("parsing exp type span: %w", err)
		}
		expType.Span = span
		result = append(result, expType)
	}
	return result, nil
}

// ContentsToSpanInfos converts ResponseGetSpanInfo contents, a list of [spanInfo, span] pairs.
func ContentsToSpanInfos(contents json.RawMessage) ([]entity.SpanInfo, error) {
	var items [][]json.RawMessage
	if err := unmarshal(contents, &items); err != nil {
		return nil, fmt.Errorf("parsing span info: %w", err)
	}

	result := make([]entity.SpanInfo, 0, len(items))
	for _, item := range items {
		if len(item) < 2 {
			return nil, fmt.Errorf("parsing span info: %w: expected [info, span], got %d elements", errors.ErrDecode, len(item))
		}
		var info spanInfo
		if err := json.Unmarshal(item[0], &info); err != nil {
			return nil, fmt.Errorf("parsing span info: %w: %v", errors.ErrDecode, err)
		}
		prop, err := idPropToIDProp(info.Contents.IDProp)
		if err != nil {
			return nil, err
		}
		span, err := rawToSourceSpan(item[1])
		if err != nil {
			return nil, fmt.Errorf("parsing span info span: %w", err)
		}
		result = append(result, entity.SpanInfo{
			Kind:  info.Tag,
			Prop:  prop,
			Scope: idScopeToIDScope(info.Contents.IDScope),
			Span:  span,
		})
	}
	return result, nil
}

// ContentsToCompletions converts ResponseGetAutocompletion contents.
func ContentsToCompletions(contents json.RawMessage) ([]entity.Completion, error) {
	var items []idInfo
	if err := unmarshal(contents, &items); err != nil {
		return nil, fmt.Errorf("parsing autocompletion: %w", err)
	}

	result := make([]entity.Completion, 0, len(items))
	for _, item := range items {
		prop, err := idPropToIDProp(item.IDProp)
		if err != nil {
			return nil, err
		}
		result = append(result, entity.Completion{
			Prop:  prop,
			Scope: idScopeToIDScope(item.IDScope),
		})
	}
	return result, nil
}

func idPropToIDProp(p idProp) (entity.IDProp, error) {
	prop := entity.IDProp{
		Name:    p.IDName,
		Module:  p.IDDefinedIn.ModuleName,
		Package: p.IDDefinedIn.ModulePackage.PackageName,
	}
	if p.IDType != nil {
		prop.Type = *p.IDType
	}
	span, _, err := eitherSpanToSourceSpan(p.IDDefSpan)
	if err != nil {
		return entity.IDProp{}, fmt.Errorf("parsing definition span of %q: %w", p.IDName, err)
	}
	prop.DefSpan = span
	return prop, nil
}

func idScopeToIDScope(s idScope) *entity.IDScope {
	if s.IDImportedFrom == nil {
		return nil
	}
	return &entity.IDScope{
		ImportedFrom: &entity.IDImportedFrom{
			Module:  s.IDImportedFrom.ModuleName,
			Package: s.IDImportedFrom.ModulePackage.PackageName,
		},
	}
}

// eitherSpanToSourceSpan returns the span of a ProperSpan, or the text of any other span.
func eitherSpanToSourceSpan(s eitherSpan) (*entity.SourceSpan, string, error) {
	if s.Tag != _properSpan {
		var text string
		if len(s.Contents) > 0 {
			// Non-string text spans are ignored.
			_ = json.Unmarshal(s.Contents, &text)
		}
		return nil, text, nil
	}
	span, err := rawToSourceSpan(s.Contents)
	return span, "", err
}

func rawToSourceSpan(raw json.RawMessage) (*entity.SourceSpan, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var span entity.SourceSpan
	if err := json.Unmarshal(raw, &span); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrDecode, err)
	}
	return &span, nil
}

func unmarshal(contents json.RawMessage, v interface{}) error {
	if len(contents) == 0 {
		return nil
	}
	if err := json.Unmarshal(contents, v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDecode, err)
	}
	return nil
}
