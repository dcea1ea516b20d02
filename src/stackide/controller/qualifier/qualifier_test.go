package qualifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"github.com/uber/stackide-proxy/src/stackide/internal/fs/fsmock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func makeProject(t *testing.T, files ...string) string {
	dir := filepath.Join(t.TempDir(), "helloworld")
	require.NoError(t, os.Mkdir(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
	}
	return dir
}

func TestQualify(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantReason func(dir string) string
	}{
		{
			name:  "eligible",
			files: []string{"helloworld.cabal", "stack.yaml"},
		},
		{
			name:  "no cabal file",
			files: []string{"stack.yaml", "Main.hs"},
			wantReason: func(dir string) string {
				return "No cabal file found in " + dir
			},
		},
		{
			name:  "cabal file named differently",
			files: []string{"other.cabal", "stack.yaml"},
			wantReason: func(dir string) string {
				return "Expected cabal file " + filepath.Join(dir, "helloworld.cabal") + " not found"
			},
		},
		{
			name:  "no stack.yaml",
			files: []string{"helloworld.cabal"},
			wantReason: func(dir string) string {
				return "No stack.yaml in path " + dir
			},
		},
		{
			name:  "checks run in order",
			files: nil,
			wantReason: func(dir string) string {
				return "No cabal file found in " + dir
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := makeProject(t, tt.files...)
			q := New(Params{FS: fs.New(), Logger: zap.NewNop().Sugar()})

			got := q.Qualify(context.Background(), dir)
			if tt.wantReason == nil {
				assert.Equal(t, Result{Eligible: true}, got)
				return
			}
			assert.Equal(t, Result{Reason: tt.wantReason(dir)}, got)
		})
	}
}

func TestQualifyLogLevels(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	q := New(Params{FS: fs.New(), Logger: zap.New(core).Sugar()})

	q.Qualify(context.Background(), makeProject(t))
	q.Qualify(context.Background(), makeProject(t, "helloworld.cabal"))

	logs := recorded.AllUntimed()
	require.Len(t, logs, 2)
	assert.Equal(t, zap.InfoLevel, logs[0].Level)
	assert.Equal(t, zap.WarnLevel, logs[1].Level)
}

func TestQualifyFilesystemErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	fsMock := fsmock.NewMockStackFS(ctrl)
	q := New(Params{FS: fsMock, Logger: zap.NewNop().Sugar()})

	fsMock.EXPECT().Glob("/p/helloworld/*.cabal").Return(nil, errors.New("bad pattern"))
	assert.False(t, q.Qualify(context.Background(), "/p/helloworld").Eligible)

	fsMock.EXPECT().Glob("/p/helloworld/*.cabal").Return([]string{"/p/helloworld/helloworld.cabal"}, nil)
	fsMock.EXPECT().FileExists("/p/helloworld/helloworld.cabal").Return(false, errors.New("permission denied"))
	assert.Equal(t,
		Result{Reason: "Expected cabal file /p/helloworld/helloworld.cabal not found"},
		q.Qualify(context.Background(), "/p/helloworld"),
	)
}

func TestExpectedCabalFile(t *testing.T) {
	assert.Equal(t, "/home/user/helloworld/helloworld.cabal", ExpectedCabalFile("/home/user/helloworld"))
	assert.Equal(t, "/home/user/helloworld/helloworld.cabal", ExpectedCabalFile("/home/user/helloworld/"))
}
