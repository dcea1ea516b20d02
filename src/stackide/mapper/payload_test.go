package mapper

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	stackerrors "github.com/uber/stackide-proxy/src/stackide/internal/errors"
)

const _spanJSON = `{"spanFilePath":"src/Lib.hs","spanFromLine":3,"spanFromColumn":7,"spanToLine":3,"spanToColumn":10}`

var _span = &entity.SourceSpan{FilePath: "src/Lib.hs", FromLine: 3, FromColumn: 7, ToLine: 3, ToColumn: 10}

func TestContentsToSourceErrors(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     []entity.SourceError
		wantErr  bool
	}{
		{
			name:     "empty list",
			contents: `[]`,
			want:     []entity.SourceError{},
		},
		{
			name: "proper and text spans",
			contents: `[
				{"errorKind":"KindError","errorMsg":"Not in scope: 'foo'","errorSpan":{"tag":"ProperSpan","contents":` + _spanJSON + `}},
				{"errorKind":"KindServerDied","errorMsg":"ghc died","errorSpan":{"tag":"TextSpan","contents":"<unknown>"}}
			]`,
			want: []entity.SourceError{
				{Kind: entity.KindError, Message: "Not in scope: 'foo'", Span: _span},
				{Kind: entity.KindServerDied, Message: "ghc died", TextSpan: "<unknown>"},
			},
		},
		{
			name:     "not a list",
			contents: `{"errorKind":"KindError"}`,
			wantErr:  true,
		},
		{
			name:     "malformed span",
			contents: `[{"errorKind":"KindError","errorMsg":"x","errorSpan":{"tag":"ProperSpan","contents":"src/Lib.hs"}}]`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentsToSourceErrors(json.RawMessage(tt.contents))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, stackerrors.ErrDecode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentsToExpTypes(t *testing.T) {
	t.Run("innermost first", func(t *testing.T) {
		contents := `[["Int",` + _spanJSON + `],["[Int]",null]]`
		got, err := ContentsToExpTypes(json.RawMessage(contents))
		require.NoError(t, err)
		assert.Equal(t, []entity.ExpType{
			{Type: "Int", Span: _span},
			{Type: "[Int]"},
		}, got)
	})

	t.Run("short pair", func(t *testing.T) {
		_, err := ContentsToExpTypes(json.RawMessage(`[["Int"]]`))
		assert.True(t, errors.Is(err, stackerrors.ErrDecode))
	})

	t.Run("type is not a string", func(t *testing.T) {
		_, err := ContentsToExpTypes(json.RawMessage(`[[1,` + _spanJSON + `]]`))
		assert.True(t, errors.Is(err, stackerrors.ErrDecode))
	})
}

func TestContentsToSpanInfos(t *testing.T) {
	contents := `[[
		{"tag":"SpanId","contents":{
			"idProp":{"idName":"putStrLn","idType":"String -> IO ()","idDefSpan":{"tag":"TextSpan","contents":"<no location info>"},
				"idDefinedIn":{"moduleName":"System.IO","modulePackage":{"packageName":"base"}}},
			"idScope":{"idImportedFrom":{"moduleName":"Prelude","modulePackage":{"packageName":"base"}}}}},
		` + _spanJSON + `
	],[
		{"tag":"SpanId","contents":{
			"idProp":{"idName":"helper","idDefSpan":{"tag":"ProperSpan","contents":` + _spanJSON + `},
				"idDefinedIn":{"moduleName":"Lib","modulePackage":{"packageName":"main"}}},
			"idScope":{}}},
		` + _spanJSON + `
	]]`

	got, err := ContentsToSpanInfos(json.RawMessage(contents))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, entity.SpanInfo{
		Kind: "SpanId",
		Prop: entity.IDProp{Name: "putStrLn", Type: "String -> IO ()", Module: "System.IO", Package: "base"},
		Scope: &entity.IDScope{
			ImportedFrom: &entity.IDImportedFrom{Module: "Prelude", Package: "base"},
		},
		Span: _span,
	}, got[0])
	assert.Equal(t, "(Imported from Prelude)", got[0].Source())

	assert.Equal(t, entity.SpanInfo{
		Kind: "SpanId",
		Prop: entity.IDProp{Name: "helper", Module: "Lib", Package: "main", DefSpan: _span},
		Span: _span,
	}, got[1])
	assert.Equal(t, "(Defined in src/Lib.hs:3:7)", got[1].Source())
}

func TestContentsToCompletions(t *testing.T) {
	contents := `[
		{"idProp":{"idName":"map","idType":"(a -> b) -> [a] -> [b]","idDefSpan":{"tag":"TextSpan","contents":""},
			"idDefinedIn":{"moduleName":"GHC.Base","modulePackage":{"packageName":"base"}}},
		 "idScope":{"idImportedFrom":{"moduleName":"Prelude","modulePackage":{"packageName":"base"}}}},
		{"idProp":{"idName":"mapM_","idDefSpan":{"tag":"TextSpan","contents":""},
			"idDefinedIn":{"moduleName":"Data.Foldable","modulePackage":{"packageName":"base"}}},
		 "idScope":{}}
	]`

	got, err := ContentsToCompletions(json.RawMessage(contents))
	require.NoError(t, err)
	assert.Equal(t, []entity.Completion{
		{
			Prop:  entity.IDProp{Name: "map", Type: "(a -> b) -> [a] -> [b]", Module: "GHC.Base", Package: "base"},
			Scope: &entity.IDScope{ImportedFrom: &entity.IDImportedFrom{Module: "Prelude", Package: "base"}},
		},
		{
			Prop: entity.IDProp{Name: "mapM_", Module: "Data.Foldable", Package: "base"},
		},
	}, got)
}

func TestEmptyContents(t *testing.T) {
	errs, err := ContentsToSourceErrors(nil)
	require.NoError(t, err)
	assert.Empty(t, errs)

	completions, err := ContentsToCompletions(nil)
	require.NoError(t, err)
	assert.Empty(t, completions)
}
