// Package supervisor keeps exactly one worker instance per open project.
package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints"
	"github.com/uber/stackide-proxy/src/stackide/controller/instance"
	"github.com/uber/stackide-proxy/src/stackide/controller/qualifier"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	"github.com/uber/stackide-proxy/src/stackide/internal/clock"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"github.com/uber/stackide-proxy/src/stackide/internal/settings"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"github.com/uber/stackide-proxy/src/stackide/repository/project"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

//go:generate mockgen -destination=supervisormock/supervisor_mock.go -package=supervisormock . Supervisor

const (
	_configKey = "supervisor"

	// MethodSourceErrors is the notification carrying the errors a worker reports after starting.
	MethodSourceErrors = "stackide/sourceErrors"

	// MsgStackNotFound is shown once when the worker tool cannot be found.
	MsgStackNotFound = "Could not find program 'stack'!\n\n" +
		"Make sure that 'stack' and 'stack-ide' are both installed. " +
		"If they are not on the system path, edit the 'add_to_PATH' setting in the stackide-proxy settings file."

	_reasonNoFolder     = "No folder to monitor for window %s"
	_reasonToolNotFound = "instance init failed -- stack not found"
	_reasonUnknown      = "instance init failed -- unknown error"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Supervisor reconciles the set of running workers against the projects open in editors.
type Supervisor interface {
	// Check reconciles against the project repository and purges expired requests.
	Check(ctx context.Context)
	// Reconcile makes the tracked instances match current. Calls are serialized.
	Reconcile(ctx context.Context, current []entity.Project)
	// ForProject returns the instance for key only if it is active.
	ForProject(key entity.ProjectKey) (instance.Instance, bool)
	IsRunning(key entity.ProjectKey) bool
	// SendRequest forwards req to the active instance of key.
	// It returns errors.ErrNoInstance for projects that cannot get a worker and errors.ErrNotRunning otherwise.
	SendRequest(ctx context.Context, key entity.ProjectKey, req protocol.Request, onResponse instance.ResponseHandler) error
	Status(ctx context.Context) []entity.InstanceStatus
	// KillAll ends every tracked instance. They are relaunched on the next check.
	KillAll(ctx context.Context)
	// Reset kills every instance and forgets the complaints already shown.
	Reset(ctx context.Context)
}

// Config is the "supervisor" config key.
type Config struct {
	ReconcileInterval time.Duration `yaml:"reconcileInterval"`
	KickOffDelay      time.Duration `yaml:"kickOffDelay"`
	TerminateTimeout  time.Duration `yaml:"terminateTimeout"`
	// RespawnInterval is the sustained rate at which a dead worker may be respawned.
	// Zero, the default, respawns a dead worker on every reconcile.
	RespawnInterval time.Duration `yaml:"respawnInterval"`
	RespawnBurst    int           `yaml:"respawnBurst"`
}

// Params are inbound parameters to initialize a new Supervisor.
type Params struct {
	fx.In

	Config     config.Provider
	Lifecycle  fx.Lifecycle
	Clock      clock.Clock
	Projects   project.Repository
	Spawner    instance.Spawner
	Qualifier  qualifier.Qualifier
	Complainer complaints.Complainer
	IdeGateway ideclient.Gateway
	Settings   settings.Store
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type supervisor struct {
	cfg        Config
	clock      clock.Clock
	projects   project.Repository
	spawner    instance.Spawner
	qualifier  qualifier.Qualifier
	complainer complaints.Complainer
	ideGateway ideclient.Gateway
	settings   settings.Store
	logger     *zap.SugaredLogger
	stats      tally.Scope

	// reconcileMu serializes writers of tracked and guards limiters and kickOffs.
	reconcileMu sync.Mutex
	limiters    map[entity.ProjectKey]*rate.Limiter
	kickOffs    map[instance.Instance]clock.Timer

	mu      sync.RWMutex
	tracked map[entity.ProjectKey]instance.Instance

	cancel   context.CancelFunc
	loopDone chan struct{}
}

// New creates a Supervisor whose reconcile loop runs for the lifetime of the application.
func New(p Params) (Supervisor, error) {
	cfg := Config{
		ReconcileInterval: time.Second,
		KickOffDelay:      300 * time.Millisecond,
		TerminateTimeout:  5 * time.Second,
		RespawnBurst:      1,
	}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if cfg.ReconcileInterval <= 0 {
		return nil, fmt.Errorf("invalid %q: must be positive", _configKey+".reconcileInterval")
	}

	s := &supervisor{
		cfg:        cfg,
		clock:      p.Clock,
		projects:   p.Projects,
		spawner:    p.Spawner,
		qualifier:  p.Qualifier,
		complainer: p.Complainer,
		ideGateway: p.IdeGateway,
		settings:   p.Settings,
		logger:     p.Logger.With("plugin", "supervisor"),
		stats:      p.Stats.SubScope("supervisor"),
		limiters:   make(map[entity.ProjectKey]*rate.Limiter),
		kickOffs:   make(map[instance.Instance]clock.Timer),
		tracked:    make(map[entity.ProjectKey]instance.Instance),
	}

	s.settings.OnChange(func(ctx context.Context, _ settings.Settings) {
		s.logger.Infow("settings changed, restarting workers")
		s.Reset(ctx)
	})

	p.Lifecycle.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.shutdown,
	})

	return s, nil
}

func (s *supervisor) start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loopDone = make(chan struct{})

	s.Check(loopCtx)
	go s.loop(loopCtx)
	return nil
}

func (s *supervisor) loop(ctx context.Context) {
	defer close(s.loopDone)

	ticker := s.clock.NewTicker(s.cfg.ReconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.Check(ctx)
		}
	}
}

// shutdown stops the loop and closes every tracked instance concurrently.
func (s *supervisor) shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
		<-s.loopDone
	}

	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	for inst, timer := range s.kickOffs {
		timer.Stop()
		delete(s.kickOffs, inst)
	}

	s.mu.Lock()
	tracked := s.tracked
	s.tracked = make(map[entity.ProjectKey]instance.Instance)
	s.mu.Unlock()
	s.stats.Gauge("tracked_instances").Update(0)

	closeCtx, cancel := context.WithTimeout(ctx, s.cfg.TerminateTimeout)
	defer cancel()

	var (
		errsMu sync.Mutex
		errs   error
	)
	group, groupCtx := errgroup.WithContext(closeCtx)
	for key, inst := range tracked {
		key, inst := key, inst
		group.Go(func() error {
			if err := inst.Close(groupCtx); err != nil {
				errsMu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("closing worker for %s: %w", key, err))
				errsMu.Unlock()
			}
			return nil
		})
	}
	group.Wait()

	if errs != nil {
		s.logger.Warnw("workers did not shut down cleanly", zap.Error(errs))
	}
	return errs
}

func (s *supervisor) Check(ctx context.Context) {
	current, err := s.projects.Snapshot(ctx)
	if err != nil {
		s.logger.Errorw("failed to read projects", zap.Error(err))
		return
	}
	s.Reconcile(ctx, current)

	now := s.clock.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.tracked {
		inst.PurgeExpired(now)
	}
}

func (s *supervisor) Reconcile(ctx context.Context, current []entity.Project) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	wanted := make(map[entity.ProjectKey]entity.Project, len(current))
	for _, p := range current {
		if _, ok := wanted[p.Key]; !ok {
			wanted[p.Key] = p
		}
	}

	s.mu.RLock()
	tracked := make(map[entity.ProjectKey]instance.Instance, len(s.tracked))
	for key, inst := range s.tracked {
		tracked[key] = inst
	}
	s.mu.RUnlock()

	next := make(map[entity.ProjectKey]instance.Instance, len(wanted))
	for key, inst := range tracked {
		if _, ok := wanted[key]; !ok {
			if inst.IsActive() {
				s.logger.Infow("stopping stale worker", "project", key, "instance", inst.String())
				inst.End(ctx)
			}
			s.forget(key, inst)
			s.stats.Counter("retired").Inc(1)
			continue
		}

		if inst.IsAlive() {
			next[key] = inst
			continue
		}

		s.stopKickOff(inst)
		if !s.limiter(key).Allow() {
			s.logger.Debugw("respawn throttled", "project", key)
			s.stats.Counter("respawn_throttled").Inc(1)
			next[key] = inst
		}
	}

	keys := make([]entity.ProjectKey, 0, len(wanted))
	for key := range wanted {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, key := range keys {
		if _, ok := next[key]; ok {
			continue
		}
		next[key] = s.launch(ctx, wanted[key])
	}

	s.mu.Lock()
	s.tracked = next
	s.mu.Unlock()
	s.stats.Gauge("tracked_instances").Update(float64(len(next)))
}

// launch never fails. Projects that cannot get a worker get a NoInstance explaining why.
func (s *supervisor) launch(ctx context.Context, p entity.Project) (inst instance.Instance) {
	logger := s.logger.With("project", p.Key)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("worker launch panicked", "panic", r, "stack", string(debug.Stack()))
			s.stats.Counter("spawn_failures").Inc(1)
			inst = instance.NoInstance(_reasonUnknown, logger)
		}
	}()

	root := p.Root()
	if root == "" {
		reason := fmt.Sprintf(_reasonNoFolder, p.Key)
		logger.Infow(reason)
		return instance.NoInstance(reason, logger)
	}

	if result := s.qualifier.Qualify(ctx, root); !result.Eligible {
		return instance.NoInstance(result.Reason, logger)
	}

	logger.Infow("launching worker", "root", root)
	inst, err := s.spawner.Spawn(ctx, p)
	if err != nil {
		s.stats.Counter("spawn_failures").Inc(1)
		if errors.IsSpawnError(err) {
			logger.Errorw(_reasonToolNotFound, zap.Error(err))
			s.complainer.Complain(ctx, complaints.IDStackNotFound, MsgStackNotFound)
			return instance.NoInstance(_reasonToolNotFound, logger)
		}
		logger.Errorw(_reasonUnknown, zap.Error(err), "stack", string(debug.Stack()))
		return instance.NoInstance(_reasonUnknown, logger)
	}
	s.stats.Counter("spawns").Inc(1)

	s.scheduleKickOff(p, inst)
	return inst
}

// scheduleKickOff asks a fresh worker for its source errors once it had time to load the project.
func (s *supervisor) scheduleKickOff(p entity.Project, inst instance.Instance) {
	notifyCtx := context.Background()
	if p.Owner != uuid.Nil {
		notifyCtx = mapper.ConnectionUUIDToContext(notifyCtx, p.Owner)
	}

	s.kickOffs[inst] = s.clock.AfterFunc(s.cfg.KickOffDelay, func() {
		inst.SendRequest(notifyCtx, protocol.GetSourceErrors(), func(contents json.RawMessage) {
			s.publishSourceErrors(notifyCtx, p.Key, contents)
		})
	})
}

func (s *supervisor) publishSourceErrors(ctx context.Context, key entity.ProjectKey, contents json.RawMessage) {
	sourceErrors, err := mapper.ContentsToSourceErrors(contents)
	if err != nil {
		s.logger.Warnw("failed to parse source errors", "project", key, zap.Error(err))
		return
	}

	notification := entity.SourceErrorsNotification{
		Key:       key,
		Errors:    sourceErrors,
		ShowPopup: s.settings.Current().ShowPopup,
	}
	if err := s.ideGateway.Notify(ctx, MethodSourceErrors, notification); err != nil {
		s.logger.Warnw("failed to publish source errors", "project", key, zap.Error(err))
	}
}

func (s *supervisor) stopKickOff(inst instance.Instance) {
	if timer, ok := s.kickOffs[inst]; ok {
		timer.Stop()
		delete(s.kickOffs, inst)
	}
}

func (s *supervisor) forget(key entity.ProjectKey, inst instance.Instance) {
	s.stopKickOff(inst)
	delete(s.limiters, key)
}

func (s *supervisor) limiter(key entity.ProjectKey) *rate.Limiter {
	l, ok := s.limiters[key]
	if !ok {
		limit := rate.Inf
		if s.cfg.RespawnInterval > 0 {
			limit = rate.Every(s.cfg.RespawnInterval)
		}
		l = rate.NewLimiter(limit, s.cfg.RespawnBurst)
		s.limiters[key] = l
	}
	return l
}

func (s *supervisor) ForProject(key entity.ProjectKey) (instance.Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.tracked[key]
	if !ok || !inst.IsActive() {
		return nil, false
	}
	return inst, true
}

func (s *supervisor) IsRunning(key entity.ProjectKey) bool {
	_, ok := s.ForProject(key)
	return ok
}

func (s *supervisor) SendRequest(ctx context.Context, key entity.ProjectKey, req protocol.Request, onResponse instance.ResponseHandler) error {
	s.mu.RLock()
	inst, ok := s.tracked[key]
	s.mu.RUnlock()

	switch {
	case ok && inst.IsActive():
		inst.SendRequest(ctx, req, onResponse)
		return nil
	case ok && inst.Reason() != "":
		return fmt.Errorf("%s: %s: %w", key, inst.Reason(), errors.ErrNoInstance)
	default:
		return fmt.Errorf("%s: %w", key, errors.ErrNotRunning)
	}
}

func (s *supervisor) Status(ctx context.Context) []entity.InstanceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]entity.InstanceStatus, 0, len(s.tracked))
	for key, inst := range s.tracked {
		statuses = append(statuses, entity.InstanceStatus{
			Key:     key,
			Alive:   inst.IsAlive(),
			Active:  inst.IsActive(),
			Reason:  inst.Reason(),
			Pending: inst.PendingCount(),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Key < statuses[j].Key })
	return statuses
}

func (s *supervisor) KillAll(ctx context.Context) {
	s.reconcileMu.Lock()
	defer s.reconcileMu.Unlock()

	s.mu.RLock()
	tracked := make([]instance.Instance, 0, len(s.tracked))
	for _, inst := range s.tracked {
		tracked = append(tracked, inst)
	}
	s.mu.RUnlock()

	s.logger.Infow("killing all workers", "count", len(tracked))
	for _, inst := range tracked {
		s.stopKickOff(inst)
		inst.End(ctx)
	}
	// Deliberate restarts are not throttled.
	s.limiters = make(map[entity.ProjectKey]*rate.Limiter)
}

func (s *supervisor) Reset(ctx context.Context) {
	s.logger.Infow("resetting")
	s.KillAll(ctx)
	s.complainer.Reset()
}
