package executor

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Instantiates the new Executor through fx provider
func fxExecutor(t *testing.T, opts ...Option) (Executor, *observer.ObservedLogs) {
	var e Executor
	core, recorded := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	fxtest.New(t,
		fx.Provide(
			func() Executor {
				return NewExecutor(append([]Option{WithLogger(logger)}, opts...)...)
			},
		),
		fx.Populate(&e),
	).RequireStart().RequireStop()

	return e, recorded
}

func TestStart(t *testing.T) {
	t.Run("StartAndWait", func(t *testing.T) {
		e, recorded := fxExecutor(t)
		binPath, err := exec.LookPath("true")
		if errors.Is(err, exec.ErrNotFound) {
			t.Skip("no true available")
		}
		require.NoError(t, err)

		cmd := exec.Command("true", "1", "2")
		cmd.Dir = "/"
		require.NoError(t, e.Start(cmd))
		require.NoError(t, cmd.Wait())

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "Exec", logs[0].Message)
		assert.Equal(t, map[string]interface{}{
			"Path": binPath,
			"Dir":  "/",
			"Args": []interface{}{"1", "2"},
		}, logs[0].ContextMap())
	})

	t.Run("LogsOverriddenPath", func(t *testing.T) {
		var started *exec.Cmd
		e, recorded := fxExecutor(t, WithStartFunc(func(cmd *exec.Cmd) error {
			started = cmd
			return nil
		}))

		cmd := exec.Command("stack", "ide", "start", "helloworld")
		cmd.Dir = "/tmp/helloworld"
		cmd.Env = []string{"HOME=/home/user", "PATH=/usr/bin", "PATH=/opt/stack/bin:/usr/bin"}
		require.NoError(t, e.Start(cmd))
		assert.Same(t, cmd, started)

		logs := recorded.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "/opt/stack/bin:/usr/bin", logs[0].ContextMap()["PATH"])
		assert.Equal(t, []interface{}{"ide", "start", "helloworld"}, logs[0].ContextMap()["Args"])
	})

	t.Run("StartError", func(t *testing.T) {
		e, _ := fxExecutor(t, WithStartFunc(func(cmd *exec.Cmd) error {
			return errors.New("sample error")
		}))
		err := e.Start(exec.Command("stack", "ide", "start"))
		assert.EqualError(t, err, "sample error")
	})

	t.Run("NilStartFunc", func(t *testing.T) {
		e, recorded := fxExecutor(t, WithStartFunc(nil))
		assert.NoError(t, e.Start(exec.Command("stack")))

		logs := recorded.TakeAll()
		require.Len(t, logs, 2)
		assert.Equal(t, "missing StartFunc - skipped execution", logs[1].Message)
	})
}
