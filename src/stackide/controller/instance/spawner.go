package instance

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	"github.com/uber/stackide-proxy/src/stackide/internal/clock"
	"github.com/uber/stackide-proxy/src/stackide/internal/connection"
	"github.com/uber/stackide-proxy/src/stackide/internal/dispatch"
	"github.com/uber/stackide-proxy/src/stackide/internal/executor"
	"github.com/uber/stackide-proxy/src/stackide/internal/logfilewriter"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"github.com/uber/stackide-proxy/src/stackide/internal/settings"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _configKey = "supervisor"

// Config is the part of the "supervisor" config key used to start workers.
type Config struct {
	Tool            string        `yaml:"tool"`
	ToolArgs        []string      `yaml:"toolArgs"`
	PendingTimeout  time.Duration `yaml:"pendingTimeout"`
	ExpectedVersion []int         `yaml:"expectedVersion"`
}

// Spawner starts a worker for a project.
type Spawner interface {
	// Spawn returns a live instance, or an error wrapping errors.ErrToolNotFound when the tool is missing.
	Spawn(ctx context.Context, project entity.Project) (Instance, error)
}

// SpawnerParams are inbound parameters to initialize a new Spawner.
type SpawnerParams struct {
	fx.In

	Config     config.Provider
	Executor   executor.Executor
	Clock      clock.Clock
	Queue      dispatch.Queue
	Complainer complaints.Complainer
	IdeGateway ideclient.Gateway
	Settings   settings.Store
	Output     logfilewriter.Factory
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type spawner struct {
	cfg      Config
	expected protocol.Version
	p        SpawnerParams
	logger   *zap.SugaredLogger
	stats    tally.Scope
}

// NewSpawner creates a Spawner running the configured tool.
func NewSpawner(p SpawnerParams) (Spawner, error) {
	cfg := Config{
		Tool:           "stack",
		ToolArgs:       []string{"ide", "start"},
		PendingTimeout: 2 * time.Minute,
	}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	expected := protocol.ExpectedVersion
	if len(cfg.ExpectedVersion) > 0 {
		v, err := protocol.VersionFromSlice(cfg.ExpectedVersion)
		if err != nil {
			return nil, fmt.Errorf("getting config field %q: %w", _configKey+".expectedVersion", err)
		}
		expected = v
	}

	return &spawner{
		cfg:      cfg,
		expected: expected,
		p:        p,
		logger:   p.Logger.Named("spawner"),
		stats:    p.Stats,
	}, nil
}

func (s *spawner) Spawn(ctx context.Context, project entity.Project) (Instance, error) {
	root := project.Root()
	logger := s.logger.With("project", project.Key, "root", root)

	var stderr io.Writer
	closeOutput := func() {}
	if w, err := s.p.Output.Open(string(project.Key)); err != nil {
		logger.Warnw("worker output file unavailable, sending it to the editor log", zap.Error(err))
		stderr = s.p.IdeGateway.GetLogMessageWriter(ownerContext(project), project.Name())
	} else {
		stderr = w
		closeOutput = func() {
			if err := w.Close(); err != nil {
				logger.Warnw("closing worker output", zap.Error(err))
			}
		}
	}

	args := append(append([]string{}, s.cfg.ToolArgs...), project.Name())
	conn, err := connection.Spawn(ctx, connection.Params{
		Executor: s.p.Executor,
		Logger:   logger,
		Stats:    s.stats,
		Tool:     s.cfg.Tool,
		Args:     args,
		Dir:      root,
		Env:      s.environ(),
		Stderr:   stderr,
	})
	if err != nil {
		closeOutput()
		return nil, err
	}
	logger.Infow("worker started", "pid", conn.Pid())

	return NewLive(LiveParams{
		Project:         project,
		Conn:            conn,
		Queue:           s.p.Queue,
		Complainer:      s.p.Complainer,
		IdeGateway:      s.p.IdeGateway,
		Logger:          s.logger,
		Stats:           s.stats,
		ExpectedVersion: s.expected,
		PendingTimeout:  s.cfg.PendingTimeout,
		Now:             s.p.Clock.Now,
		OnExit:          closeOutput,
	}), nil
}

// ownerContext routes editor notifications about project to the editor that opened it.
func ownerContext(project entity.Project) context.Context {
	if project.Owner == uuid.Nil {
		return context.Background()
	}
	return mapper.ConnectionUUIDToContext(context.Background(), project.Owner)
}

// environ returns the proxy environment with PATH augmented by the user settings.
func (s *spawner) environ() []string {
	env := os.Environ()
	path := s.p.Settings.Current().AugmentPath(os.Getenv("PATH"))

	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+path)
}
