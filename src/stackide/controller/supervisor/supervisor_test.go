package supervisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints"
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints/complaintsmock"
	"github.com/uber/stackide-proxy/src/stackide/controller/instance"
	"github.com/uber/stackide-proxy/src/stackide/controller/instance/instancemock"
	"github.com/uber/stackide-proxy/src/stackide/controller/qualifier"
	"github.com/uber/stackide-proxy/src/stackide/controller/qualifier/qualifiermock"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	"github.com/uber/stackide-proxy/src/stackide/factory"
	"github.com/uber/stackide-proxy/src/stackide/gateway/ide-client/ideclientmock"
	"github.com/uber/stackide-proxy/src/stackide/internal/clock"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"github.com/uber/stackide-proxy/src/stackide/internal/settings"
	"github.com/uber/stackide-proxy/src/stackide/internal/settings/settingsmock"
	projectrepo "github.com/uber/stackide-proxy/src/stackide/repository/project"
	lsp "go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx/fxtest"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeTimer struct {
	stopped atomic.Bool
}

func (t *fakeTimer) Stop() bool { return !t.stopped.Swap(true) }

type fakeTicker struct {
	c chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               {}

// fakeClock runs AfterFunc callbacks only when fire is called.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []func()
	timers  []*fakeTimer
	ticker  *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ticker: &fakeTicker{c: make(chan time.Time)},
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{}
	c.pending = append(c.pending, f)
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) NewTicker(time.Duration) clock.Ticker { return c.ticker }

// fire runs every scheduled callback whose timer was not stopped.
func (c *fakeClock) fire() int {
	c.mu.Lock()
	pending, timers := c.pending, c.timers
	c.pending, c.timers = nil, nil
	c.mu.Unlock()

	fired := 0
	for i, f := range pending {
		if !timers[i].stopped.Swap(true) {
			f()
			fired++
		}
	}
	return fired
}

type sentRequest struct {
	req     protocol.Request
	handler instance.ResponseHandler
}

type fakeInstance struct {
	name   string
	alive  atomic.Bool
	active atomic.Bool

	mu       sync.Mutex
	sent     []sentRequest
	ends     int
	closes   int
	closeErr error
	purges   []time.Time
}

func newFakeInstance(name string) *fakeInstance {
	i := &fakeInstance{name: name}
	i.alive.Store(true)
	i.active.Store(true)
	return i
}

func (i *fakeInstance) IsAlive() bool  { return i.alive.Load() }
func (i *fakeInstance) IsActive() bool { return i.active.Load() }
func (i *fakeInstance) Reason() string { return "" }
func (i *fakeInstance) String() string { return i.name }

func (i *fakeInstance) SendRequest(ctx context.Context, req protocol.Request, onResponse instance.ResponseHandler) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, sentRequest{req: req, handler: onResponse})
}

func (i *fakeInstance) End(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ends++
	i.active.Store(false)
	i.alive.Store(false)
}

func (i *fakeInstance) Close(ctx context.Context) error {
	i.End(ctx)
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closes++
	return i.closeErr
}

func (i *fakeInstance) PendingCount() int { return 0 }

func (i *fakeInstance) PurgeExpired(now time.Time) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.purges = append(i.purges, now)
	return 0
}

func (i *fakeInstance) die() {
	i.active.Store(false)
	i.alive.Store(false)
}

func (i *fakeInstance) endCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.ends
}

func (i *fakeInstance) requests() []sentRequest {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]sentRequest(nil), i.sent...)
}

type fixture struct {
	sup        *supervisor
	clock      *fakeClock
	projects   projectrepo.Repository
	spawner    *instancemock.MockSpawner
	qualifier  *qualifiermock.MockQualifier
	complainer *complaintsmock.MockComplainer
	gateway    *ideclientmock.MockGateway
	settings   *settingsmock.MockStore
	listener   settings.Listener
	stats      tally.TestScope
	lc         *fxtest.Lifecycle
}

func newFixture(t *testing.T, yaml string) *fixture {
	ctrl := gomock.NewController(t)
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)))
	require.NoError(t, err)

	f := &fixture{
		clock:      newFakeClock(),
		spawner:    instancemock.NewMockSpawner(ctrl),
		qualifier:  qualifiermock.NewMockQualifier(ctrl),
		complainer: complaintsmock.NewMockComplainer(ctrl),
		gateway:    ideclientmock.NewMockGateway(ctrl),
		settings:   settingsmock.NewMockStore(ctrl),
		stats:      tally.NewTestScope("testing", nil),
		lc:         fxtest.NewLifecycle(t),
	}
	f.projects = projectrepo.New(f.stats)
	f.settings.EXPECT().OnChange(gomock.Any()).Do(func(l settings.Listener) { f.listener = l })
	f.settings.EXPECT().Current().Return(settings.Settings{ShowPopup: true}).AnyTimes()

	sup, err := New(Params{
		Config:     provider,
		Lifecycle:  f.lc,
		Clock:      f.clock,
		Projects:   f.projects,
		Spawner:    f.spawner,
		Qualifier:  f.qualifier,
		Complainer: f.complainer,
		IdeGateway: f.gateway,
		Settings:   f.settings,
		Logger:     zap.NewNop().Sugar(),
		Stats:      f.stats,
	})
	require.NoError(t, err)
	f.sup = sup.(*supervisor)
	return f
}

func (f *fixture) eligible() {
	f.qualifier.EXPECT().Qualify(gomock.Any(), gomock.Any()).Return(qualifier.Result{Eligible: true}).AnyTimes()
}

func (f *fixture) counter(name string) int64 {
	if c, ok := f.stats.Snapshot().Counters()["testing.supervisor."+name+"+"]; ok {
		return c.Value()
	}
	return 0
}

func projects(ids ...int) []entity.Project {
	ps := make([]entity.Project, 0, len(ids))
	for _, id := range ids {
		ps = append(ps, factory.Project(id, fmt.Sprintf("/home/user/project%d", id)))
	}
	return ps
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "wrong type", yaml: "supervisor:\n  respawnBurst: lots"},
		{name: "zero interval", yaml: "supervisor:\n  reconcileInterval: 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := config.NewYAML(config.Source(strings.NewReader(tt.yaml)))
			require.NoError(t, err)
			_, err = New(Params{Config: provider, Logger: zap.NewNop().Sugar(), Stats: tally.NoopScope})
			assert.Error(t, err)
		})
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	current := projects(1, 2)
	a, b := newFakeInstance("a"), newFakeInstance("b")
	f.spawner.EXPECT().Spawn(gomock.Any(), current[0]).Return(a, nil).Times(1)
	f.spawner.EXPECT().Spawn(gomock.Any(), current[1]).Return(b, nil).Times(1)

	ctx := context.Background()
	f.sup.Reconcile(ctx, current)
	f.sup.Reconcile(ctx, current)
	f.sup.Reconcile(ctx, current)

	statuses := f.sup.Status(ctx)
	require.Len(t, statuses, 2)
	assert.Equal(t, current[0].Key, statuses[0].Key)
	assert.Equal(t, current[1].Key, statuses[1].Key)
	assert.Equal(t, 0, a.endCount())
	assert.Equal(t, int64(2), f.counter("spawns"))
}

func TestReconcileOneInstancePerProject(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	p := projects(1)[0]
	f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(newFakeInstance("a"), nil).Times(1)

	f.sup.Reconcile(context.Background(), []entity.Project{p, p, p})
	assert.Len(t, f.sup.Status(context.Background()), 1)
}

func TestReconcileRetiresStale(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	current := projects(1, 2)
	a, b := newFakeInstance("a"), newFakeInstance("b")
	f.spawner.EXPECT().Spawn(gomock.Any(), current[0]).Return(a, nil)
	f.spawner.EXPECT().Spawn(gomock.Any(), current[1]).Return(b, nil)

	ctx := context.Background()
	f.sup.Reconcile(ctx, current)
	// An inactive stale instance is dropped without being ended again.
	b.active.Store(false)
	f.sup.Reconcile(ctx, nil)

	assert.Equal(t, 1, a.endCount())
	assert.Equal(t, 0, b.endCount())
	assert.Empty(t, f.sup.Status(ctx))
	assert.False(t, f.sup.IsRunning(current[0].Key))
	assert.Equal(t, int64(2), f.counter("retired"))
}

func TestReconcileRespawnsDead(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	p := projects(1)[0]

	ctx := context.Background()
	var previous *fakeInstance
	for i := 0; i < 5; i++ {
		next := newFakeInstance(fmt.Sprintf("worker-%d", i))
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(next, nil)
		if previous != nil {
			previous.die()
		}
		f.sup.Reconcile(ctx, []entity.Project{p})

		inst, ok := f.sup.ForProject(p.Key)
		require.True(t, ok, "respawn %d", i)
		assert.Same(t, next, inst)
		previous = next
	}
	assert.Zero(t, f.counter("respawn_throttled"))
}

func TestReconcileThrottlesRespawnWhenConfigured(t *testing.T) {
	f := newFixture(t, "supervisor:\n  respawnInterval: 1h\n  respawnBurst: 1\n")
	f.eligible()
	p := projects(1)[0]
	first, second := newFakeInstance("first"), newFakeInstance("second")
	gomock.InOrder(
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(first, nil),
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(second, nil),
	)

	ctx := context.Background()
	f.sup.Reconcile(ctx, []entity.Project{p})
	first.die()
	f.sup.Reconcile(ctx, []entity.Project{p})

	inst, ok := f.sup.ForProject(p.Key)
	require.True(t, ok)
	assert.Same(t, second, inst)

	// One respawn per hour, so the dead entry is kept until then.
	second.die()
	f.sup.Reconcile(ctx, []entity.Project{p})
	statuses := f.sup.Status(ctx)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Alive)
	assert.Equal(t, int64(1), f.counter("respawn_throttled"))
}

func TestReconcileKeepsInactiveButAlive(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	p := projects(1)[0]
	a := newFakeInstance("a")
	f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(a, nil).Times(1)

	ctx := context.Background()
	f.sup.Reconcile(ctx, []entity.Project{p})
	a.active.Store(false)
	f.sup.Reconcile(ctx, []entity.Project{p})

	assert.False(t, f.sup.IsRunning(p.Key))
	assert.Len(t, f.sup.Status(ctx), 1)
}

func TestLaunchFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no folder", func(t *testing.T) {
		f := newFixture(t, "")
		p := entity.Project{Key: "window-7"}
		f.sup.Reconcile(ctx, []entity.Project{p})

		statuses := f.sup.Status(ctx)
		require.Len(t, statuses, 1)
		assert.Equal(t, "No folder to monitor for window window-7", statuses[0].Reason)
		assert.True(t, statuses[0].Alive)
		assert.False(t, statuses[0].Active)
	})

	t.Run("not a stack project", func(t *testing.T) {
		f := newFixture(t, "")
		p := projects(1)[0]
		f.qualifier.EXPECT().Qualify(gomock.Any(), p.Root()).
			Return(qualifier.Result{Reason: "No stack.yaml in path " + p.Root()})

		f.sup.Reconcile(ctx, []entity.Project{p})
		f.sup.Reconcile(ctx, []entity.Project{p})

		statuses := f.sup.Status(ctx)
		require.Len(t, statuses, 1)
		assert.Equal(t, "No stack.yaml in path /home/user/project1", statuses[0].Reason)
	})

	t.Run("stack not found", func(t *testing.T) {
		f := newFixture(t, "")
		f.eligible()
		p := projects(1)[0]
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(nil, fmt.Errorf("spawning: %w", errors.ErrToolNotFound))
		f.complainer.EXPECT().Complain(gomock.Any(), complaints.IDStackNotFound, MsgStackNotFound).Return(true)

		f.sup.Reconcile(ctx, []entity.Project{p})

		statuses := f.sup.Status(ctx)
		require.Len(t, statuses, 1)
		assert.Equal(t, "instance init failed -- stack not found", statuses[0].Reason)
		assert.Equal(t, int64(1), f.counter("spawn_failures"))
	})

	t.Run("unknown error", func(t *testing.T) {
		f := newFixture(t, "")
		f.eligible()
		p := projects(1)[0]
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(nil, errors.New("permission denied"))

		f.sup.Reconcile(ctx, []entity.Project{p})
		assert.Equal(t, "instance init failed -- unknown error", f.sup.Status(ctx)[0].Reason)
	})

	t.Run("panic", func(t *testing.T) {
		f := newFixture(t, "")
		f.eligible()
		p := projects(1)[0]
		f.spawner.EXPECT().Spawn(gomock.Any(), p).DoAndReturn(func(context.Context, entity.Project) (instance.Instance, error) {
			panic("boom")
		})

		f.sup.Reconcile(ctx, []entity.Project{p})
		assert.Equal(t, "instance init failed -- unknown error", f.sup.Status(ctx)[0].Reason)
	})
}

func TestStackNotFoundComplainsOnce(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	ctrl := gomock.NewController(t)
	gateway := ideclientmock.NewMockGateway(ctrl)
	f.sup.complainer = complaints.New(complaints.Params{IdeGateway: gateway, Logger: zap.NewNop().Sugar(), Stats: tally.NoopScope})

	gateway.EXPECT().ShowMessage(gomock.Any(), &lsp.ShowMessageParams{Type: lsp.MessageTypeError, Message: MsgStackNotFound}).Return(nil).Times(1)
	f.spawner.EXPECT().Spawn(gomock.Any(), gomock.Any()).Return(nil, errors.ErrToolNotFound).Times(3)

	f.sup.Reconcile(context.Background(), projects(1, 2, 3))
}

func TestKickOffPublishesSourceErrors(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	p := projects(1)[0]
	a := newFakeInstance("a")
	f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(a, nil)

	f.sup.Reconcile(context.Background(), []entity.Project{p})
	assert.Empty(t, a.requests())
	require.Equal(t, 1, f.clock.fire())

	sent := a.requests()
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.TagRequestGetSourceErrors, sent[0].req.Tag)
	require.NotNil(t, sent[0].handler)

	f.gateway.EXPECT().
		Notify(gomock.Any(), MethodSourceErrors, gomock.Any()).
		DoAndReturn(func(ctx context.Context, method string, params interface{}) error {
			n, ok := params.(entity.SourceErrorsNotification)
			require.True(t, ok)
			assert.Equal(t, p.Key, n.Key)
			assert.True(t, n.ShowPopup)
			require.Len(t, n.Errors, 1)
			assert.Equal(t, "ghc died", n.Errors[0].Message)
			return nil
		})
	sent[0].handler(json.RawMessage(`[{"errorKind":"KindServerDied","errorMsg":"ghc died","errorSpan":{"tag":"TextSpan","contents":"<unknown>"}}]`))

	// Malformed contents are logged and dropped.
	sent[0].handler(json.RawMessage(`{}`))
}

func TestKickOffCancelledForRetiredInstance(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	p := projects(1)[0]
	a := newFakeInstance("a")
	f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(a, nil)

	f.sup.Reconcile(context.Background(), []entity.Project{p})
	f.sup.Reconcile(context.Background(), nil)

	assert.Equal(t, 0, f.clock.fire())
	assert.Empty(t, a.requests())
}

func TestSendRequest(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	current := projects(1, 2)
	a, b := newFakeInstance("a"), newFakeInstance("b")
	f.spawner.EXPECT().Spawn(gomock.Any(), current[0]).Return(a, nil)
	f.spawner.EXPECT().Spawn(gomock.Any(), current[1]).Return(b, nil)

	ctx := context.Background()
	f.sup.Reconcile(ctx, current)
	b.active.Store(false)

	require.NoError(t, f.sup.SendRequest(ctx, current[0].Key, protocol.UpdateSession(), nil))
	assert.Len(t, a.requests(), 1)

	err := f.sup.SendRequest(ctx, current[1].Key, protocol.UpdateSession(), nil)
	assert.ErrorIs(t, err, errors.ErrNotRunning)
	err = f.sup.SendRequest(ctx, "window-99", protocol.UpdateSession(), nil)
	assert.ErrorIs(t, err, errors.ErrNotRunning)

	assert.True(t, f.sup.IsRunning(current[0].Key))
	assert.False(t, f.sup.IsRunning(current[1].Key))

	noFolder := entity.Project{Key: "window-3"}
	f.sup.Reconcile(ctx, append(current, noFolder))
	err = f.sup.SendRequest(ctx, noFolder.Key, protocol.UpdateSession(), nil)
	assert.ErrorIs(t, err, errors.ErrNoInstance)
	assert.Contains(t, err.Error(), "No folder to monitor")
}

func TestResetRestartsEverything(t *testing.T) {
	f := newFixture(t, "supervisor:\n  respawnInterval: 1h\n  respawnBurst: 1\n")
	f.eligible()
	p := projects(1)[0]
	first, second, third := newFakeInstance("first"), newFakeInstance("second"), newFakeInstance("third")
	gomock.InOrder(
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(first, nil),
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(second, nil),
		f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(third, nil),
	)
	f.complainer.EXPECT().Reset().Times(2)

	ctx := context.Background()
	f.sup.Reconcile(ctx, []entity.Project{p})
	f.sup.Reset(ctx)
	assert.Equal(t, 1, first.endCount())
	f.sup.Reconcile(ctx, []entity.Project{p})

	// Settings changes restart too, without being throttled.
	f.listener(ctx, settings.Settings{})
	assert.Equal(t, 1, second.endCount())
	f.sup.Reconcile(ctx, []entity.Project{p})

	inst, ok := f.sup.ForProject(p.Key)
	require.True(t, ok)
	assert.Same(t, third, inst)
}

func TestCheckUsesRepositoryAndPurges(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	ctx := context.Background()
	p := projects(1)[0]
	require.NoError(t, f.projects.Set(ctx, p))
	a := newFakeInstance("a")
	f.spawner.EXPECT().Spawn(gomock.Any(), p).Return(a, nil)

	f.sup.Check(ctx)

	assert.True(t, f.sup.IsRunning(p.Key))
	a.mu.Lock()
	defer a.mu.Unlock()
	assert.Equal(t, []time.Time{f.clock.Now()}, a.purges)
}

func TestLifecycle(t *testing.T) {
	f := newFixture(t, "")
	f.eligible()
	ctx := context.Background()
	current := projects(1, 2)
	for _, p := range current {
		require.NoError(t, f.projects.Set(ctx, p))
	}
	a, b := newFakeInstance("a"), newFakeInstance("b")
	b.closeErr = errors.New("kill failed")
	f.spawner.EXPECT().Spawn(gomock.Any(), current[0]).Return(a, nil)
	f.spawner.EXPECT().Spawn(gomock.Any(), current[1]).Return(b, nil)

	require.NoError(t, f.lc.Start(ctx))
	assert.True(t, f.sup.IsRunning(current[0].Key))

	// A tick reconciles again without spawning.
	f.clock.ticker.c <- f.clock.Now()

	err := f.lc.Stop(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kill failed")
	assert.Equal(t, 1, a.closes)
	assert.Equal(t, 1, b.closes)
	assert.Empty(t, f.sup.Status(ctx))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
