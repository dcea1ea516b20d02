// Package qualifier decides whether a folder is a project a worker can be started for.
package qualifier

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/uber/stackide-proxy/src/stackide/internal/fs"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=qualifiermock/qualifier_mock.go -package=qualifiermock . Qualifier

const (
	_cabalExt      = ".cabal"
	_stackYAMLFile = "stack.yaml"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Result of qualifying a folder. Reason explains why an ineligible folder was rejected.
type Result struct {
	Eligible bool
	Reason   string
}

// Qualifier checks a project root before a worker is launched for it.
type Qualifier interface {
	Qualify(ctx context.Context, path string) Result
}

// Params are inbound parameters to initialize a new Qualifier.
type Params struct {
	fx.In

	FS     fs.StackFS
	Logger *zap.SugaredLogger
}

type qualifier struct {
	fs     fs.StackFS
	logger *zap.SugaredLogger
}

// New creates a Qualifier backed by the filesystem.
func New(p Params) Qualifier {
	return &qualifier{
		fs:     p.FS,
		logger: p.Logger.Named("qualifier"),
	}
}

// Qualify requires, in order: some cabal file, a cabal file named after the folder, and a stack.yaml.
func (q *qualifier) Qualify(ctx context.Context, path string) Result {
	if !q.hasCabalFile(path) {
		reason := fmt.Sprintf("No cabal file found in %s", path)
		q.logger.Info(reason)
		return Result{Reason: reason}
	}

	expected := ExpectedCabalFile(path)
	if !q.fileExists(expected) {
		reason := fmt.Sprintf("Expected cabal file %s not found", expected)
		q.logger.Warn(reason)
		return Result{Reason: reason}
	}

	if !q.fileExists(filepath.Join(path, _stackYAMLFile)) {
		reason := fmt.Sprintf("No stack.yaml in path %s", path)
		q.logger.Warn(reason)
		return Result{Reason: reason}
	}

	return Result{Eligible: true}
}

// ExpectedCabalFile is the cabal file a worker started in path loads: it is named after the folder.
func ExpectedCabalFile(path string) string {
	return filepath.Join(path, filepath.Base(filepath.Clean(path))+_cabalExt)
}

func (q *qualifier) hasCabalFile(path string) bool {
	matches, err := q.fs.Glob(filepath.Join(path, "*"+_cabalExt))
	if err != nil {
		q.logger.Debugw("looking for cabal files", "path", path, "error", err)
		return false
	}
	return len(matches) > 0
}

func (q *qualifier) fileExists(path string) bool {
	exists, err := q.fs.FileExists(path)
	if err != nil {
		q.logger.Debugw("checking file", "path", path, "error", err)
		return false
	}
	return exists
}
