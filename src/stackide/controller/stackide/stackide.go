// Package stackide implements the business logic behind the editor facing JSON-RPC methods.
package stackide

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/supervisor"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	"github.com/uber/stackide-proxy/src/stackide/internal/clock"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"github.com/uber/stackide-proxy/src/stackide/repository/project"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=stackidemock/stackide_mock.go -package=stackidemock . Controller

const _configKey = "stackide"

// Controller orchestrates the business logic for each request.
type Controller interface {
	// InitConnection registers a new editor connection and returns its UUID.
	InitConnection(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error)
	// EndConnection forgets an editor connection along with every project it opened.
	EndConnection(ctx context.Context, id uuid.UUID) error

	OpenProject(ctx context.Context, params *entity.OpenProjectParams) error
	CloseProject(ctx context.Context, params *entity.ProjectParams) error
	IsRunning(ctx context.Context, params *entity.ProjectParams) (bool, error)

	// Request forwards an arbitrary request. Contents are returned only when a response is expected.
	Request(ctx context.Context, params *entity.RawRequestParams) (json.RawMessage, error)
	GetSourceErrors(ctx context.Context, params *entity.ProjectParams) ([]entity.SourceError, error)
	GetExpTypes(ctx context.Context, params *entity.SpanParams) ([]entity.ExpType, error)
	GetSpanInfo(ctx context.Context, params *entity.SpanParams) ([]entity.SpanInfo, error)
	GetAutocompletion(ctx context.Context, params *entity.AutocompletionParams) ([]entity.Completion, error)
	UpdateSession(ctx context.Context, params *entity.ProjectParams) error

	Status(ctx context.Context) ([]entity.InstanceStatus, error)
	// Restart kills every worker and relaunches them.
	Restart(ctx context.Context) error
}

// Config is the "stackide" config key.
type Config struct {
	// RequestTimeout bounds how long a method waits for its worker reply.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// IdleTimeout shuts the daemon down after this long without editors. Zero disables it.
	IdleTimeout time.Duration `yaml:"idleTimeout"`
}

// Params are inbound parameters to initialize a new controller.
type Params struct {
	fx.In

	Shutdowner fx.Shutdowner
	Config     config.Provider
	Clock      clock.Clock
	Projects   project.Repository
	Supervisor supervisor.Supervisor
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type controller struct {
	cfg        Config
	shutdowner fx.Shutdowner
	clock      clock.Clock
	projects   project.Repository
	supervisor supervisor.Supervisor
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	stats      tally.Scope

	mu          sync.Mutex
	connections map[uuid.UUID]struct{}
	idleTimer   clock.Timer
}

// New constructs the controller. The idle timer starts running before the first editor connects.
func New(p Params) (Controller, error) {
	cfg := Config{RequestTimeout: 30 * time.Second}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("invalid %q: must be positive", _configKey+".requestTimeout")
	}

	c := &controller{
		cfg:         cfg,
		shutdowner:  p.Shutdowner,
		clock:       p.Clock,
		projects:    p.Projects,
		supervisor:  p.Supervisor,
		ideGateway:  p.IdeGateway,
		logger:      p.Logger,
		stats:       p.Stats.SubScope("stackide"),
		connections: make(map[uuid.UUID]struct{}),
	}
	c.refreshIdleTimer()
	return c, nil
}

func (c *controller) InitConnection(ctx context.Context, conn *jsonrpc2.Conn) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	if err := c.ideGateway.RegisterClient(ctx, id, conn); err != nil {
		return uuid.Nil, err
	}

	c.mu.Lock()
	c.connections[id] = struct{}{}
	c.mu.Unlock()
	c.refreshIdleTimer()
	return id, nil
}

func (c *controller) EndConnection(ctx context.Context, id uuid.UUID) error {
	defer c.refreshIdleTimer()

	c.mu.Lock()
	delete(c.connections, id)
	c.mu.Unlock()

	if err := c.ideGateway.DeregisterClient(ctx, id); err != nil {
		c.logger.Warnw("deregistering editor", "uuid", id, zap.Error(err))
	}

	keys, err := c.projects.DeleteOwnedBy(ctx, id)
	if err != nil {
		return fmt.Errorf("removing projects of %s: %w", id, err)
	}
	if len(keys) > 0 {
		c.logger.Infow("editor disconnected, closing its projects", "uuid", id, "projects", keys)
		c.supervisor.Check(ctx)
	}
	return nil
}

// refreshIdleTimer stops the idle timer and restarts it only if no editor is connected.
func (c *controller) refreshIdleTimer() {
	if c.cfg.IdleTimeout <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idleTimer != nil {
		c.idleTimer.Stop()
		c.idleTimer = nil
	}
	c.stats.Gauge("connections").Update(float64(len(c.connections)))
	if len(c.connections) > 0 {
		return
	}

	c.idleTimer = c.clock.AfterFunc(c.cfg.IdleTimeout, func() {
		c.logger.Infow("no editors connected, shutting down", "idleTimeout", c.cfg.IdleTimeout)
		if err := c.shutdowner.Shutdown(); err != nil {
			c.logger.Errorw("shutdown failed", zap.Error(err))
			os.Exit(1)
		}
	})
}

func (c *controller) OpenProject(ctx context.Context, params *entity.OpenProjectParams) error {
	if params.Key == "" {
		return fmt.Errorf("%w: missing key", jsonrpc2.ErrInvalidParams)
	}

	owner, _ := mapper.ContextToConnectionUUID(ctx)
	p := mapper.OpenProjectParamsToProject(params, owner)
	if err := c.projects.Set(ctx, p); err != nil {
		return err
	}
	c.logger.Infow("project opened", "project", p.Key, "folders", p.Folders)
	c.supervisor.Check(ctx)
	return nil
}

func (c *controller) CloseProject(ctx context.Context, params *entity.ProjectParams) error {
	if _, err := c.projects.Get(ctx, params.Key); err != nil {
		return err
	}
	if err := c.projects.Delete(ctx, params.Key); err != nil {
		return err
	}
	c.logger.Infow("project closed", "project", params.Key)
	c.supervisor.Check(ctx)
	return nil
}

func (c *controller) IsRunning(ctx context.Context, params *entity.ProjectParams) (bool, error) {
	return c.supervisor.IsRunning(params.Key), nil
}

func (c *controller) Request(ctx context.Context, params *entity.RawRequestParams) (json.RawMessage, error) {
	var contents interface{}
	if len(params.Contents) > 0 {
		contents = params.Contents
	}
	req := protocol.Request{Tag: protocol.Tag(params.Tag), Contents: contents}

	if !params.ExpectResponse {
		return nil, c.supervisor.SendRequest(ctx, params.Key, req, nil)
	}
	return c.await(ctx, params.Key, req)
}

func (c *controller) GetSourceErrors(ctx context.Context, params *entity.ProjectParams) ([]entity.SourceError, error) {
	contents, err := c.await(ctx, params.Key, protocol.GetSourceErrors())
	if err != nil {
		return nil, err
	}
	return mapper.ContentsToSourceErrors(contents)
}

func (c *controller) GetExpTypes(ctx context.Context, params *entity.SpanParams) ([]entity.ExpType, error) {
	contents, err := c.await(ctx, params.Key, protocol.GetExpTypes(params.Span))
	if err != nil {
		return nil, err
	}
	return mapper.ContentsToExpTypes(contents)
}

func (c *controller) GetSpanInfo(ctx context.Context, params *entity.SpanParams) ([]entity.SpanInfo, error) {
	contents, err := c.await(ctx, params.Key, protocol.GetSpanInfo(params.Span))
	if err != nil {
		return nil, err
	}
	return mapper.ContentsToSpanInfos(contents)
}

func (c *controller) GetAutocompletion(ctx context.Context, params *entity.AutocompletionParams) ([]entity.Completion, error) {
	contents, err := c.await(ctx, params.Key, protocol.GetAutocompletion(params.FilePath, params.Prefix))
	if err != nil {
		return nil, err
	}
	return mapper.ContentsToCompletions(contents)
}

func (c *controller) UpdateSession(ctx context.Context, params *entity.ProjectParams) error {
	return c.supervisor.SendRequest(ctx, params.Key, protocol.UpdateSession(), nil)
}

func (c *controller) Status(ctx context.Context) ([]entity.InstanceStatus, error) {
	return c.supervisor.Status(ctx), nil
}

func (c *controller) Restart(ctx context.Context) error {
	c.supervisor.Reset(ctx)
	c.supervisor.Check(ctx)
	return nil
}

// await sends req and blocks until its reply arrives, ctx is done or the request timeout elapses.
// Replies without contents never arrive.
func (c *controller) await(ctx context.Context, key entity.ProjectKey, req protocol.Request) (json.RawMessage, error) {
	replies := make(chan json.RawMessage, 1)
	if err := c.supervisor.SendRequest(ctx, key, req, func(contents json.RawMessage) {
		replies <- contents
	}); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	start := c.clock.Now()
	select {
	case contents := <-replies:
		c.stats.Timer("request_latency").Record(c.clock.Now().Sub(start))
		return contents, nil
	case <-ctx.Done():
		c.stats.Counter("request_timeouts").Inc(1)
		return nil, fmt.Errorf("%s %s after %s: %w", key, req.Tag, c.cfg.RequestTimeout, errors.ErrNoReply)
	}
}
