package executor

import (
	"os/exec"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _pathPrefix = "PATH="

// Module provides a module to inject using fx.
var Module = fx.Provide(func(logger *zap.SugaredLogger) Executor {
	return NewExecutor(WithLogger(logger.Named("executor")))
})

// Executor wraps the start of long-lived "os/exec".Cmd's to allow adding logs/metrics to
// each spawn and makes it easier to test.
type Executor interface {
	// Start logs and starts the Cmd specified without waiting for it to finish.
	Start(cmd *exec.Cmd) error
}

// executorImp implements Executor
type executorImp struct {
	Logger *zap.SugaredLogger
	// StartFunc may be nil to use executorImp in tests.
	StartFunc func(e *exec.Cmd) error
}

// Option defines options to customize executorImp's behavior
type Option func(*executorImp)

// WithLogger overrides the default noop logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(executor *executorImp) {
		executor.Logger = logger
	}
}

// WithStartFunc provides customized start behavior for executorImp
func WithStartFunc(startFunc func(e *exec.Cmd) error) Option {
	return func(executor *executorImp) {
		executor.StartFunc = startFunc
	}
}

// NewExecutor creates a new executorImp with a noop logger and a default start function
func NewExecutor(opts ...Option) Executor {
	executor := &executorImp{
		Logger:    zap.NewNop().Sugar(),
		StartFunc: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
	for _, opt := range opts {
		opt(executor)
	}
	return executor
}

// Start logs the Path/Dir/Args and calls StartFunc if it is set.
func (l *executorImp) Start(cmd *exec.Cmd) error {
	l.logCommand(cmd)

	if l.StartFunc == nil {
		l.Logger.Warn("missing StartFunc - skipped execution")
		return nil
	}

	return l.StartFunc(cmd)
}

// Logs the command specified: Path, Dir, Args and the PATH it runs with (if overridden)
func (l *executorImp) logCommand(cmd *exec.Cmd) {
	logKeysAndValues := []interface{}{
		"Path", cmd.Path,
		"Dir", cmd.Dir,
		"Args", cmd.Args[1:], // First arg is always the command itself
	}

	// The last PATH entry wins, as it does for exec.
	for i := len(cmd.Env) - 1; i >= 0; i-- {
		if strings.HasPrefix(cmd.Env[i], _pathPrefix) {
			logKeysAndValues = append(logKeysAndValues, "PATH", strings.TrimPrefix(cmd.Env[i], _pathPrefix))
			break
		}
	}

	l.Logger.Infow("Exec", logKeysAndValues...)
}
