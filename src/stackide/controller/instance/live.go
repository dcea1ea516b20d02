package instance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints"
	"github.com/uber/stackide-proxy/src/stackide/entity"
	"github.com/uber/stackide-proxy/src/stackide/factory"
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	"github.com/uber/stackide-proxy/src/stackide/internal/dispatch"
	"github.com/uber/stackide-proxy/src/stackide/internal/errors"
	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	lsp "go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// MsgUpgradeStackIDE is shown when a worker speaks an older protocol than expected.
const MsgUpgradeStackIDE = "Please upgrade stack-ide to a newer version."

// Conn is the transport a live instance talks over. *connection.Conn implements it.
type Conn interface {
	Send(req protocol.Request) error
	Inbound() <-chan protocol.Inbound
	Done() <-chan struct{}
	ExitErr() error
	Terminate(ctx context.Context) error
}

// LiveParams configure a live instance.
type LiveParams struct {
	Project    entity.Project
	Conn       Conn
	Queue      dispatch.Queue
	Complainer complaints.Complainer
	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope

	ExpectedVersion protocol.Version
	// PendingTimeout bounds how long a request waits for a reply. Zero keeps requests until the worker ends.
	PendingTimeout time.Duration
	Now            func() time.Time
	// OnExit runs once after the worker process has exited.
	OnExit func()
}

type pendingRequest struct {
	tag     protocol.Tag
	handler ResponseHandler
	sentAt  time.Time
}

type live struct {
	project    entity.Project
	conn       Conn
	queue      dispatch.Queue
	complainer complaints.Complainer
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	stats      tally.Scope

	expected       protocol.Version
	pendingTimeout time.Duration
	now            func() time.Time
	onExit         func()

	// notifyCtx routes user-visible messages to the editor owning the project.
	notifyCtx context.Context

	active atomic.Bool
	alive  atomic.Bool

	mu      sync.Mutex
	pending map[string]pendingRequest

	endOnce      sync.Once
	consumerDone chan struct{}
}

// NewLive wraps a started worker and begins consuming its messages.
func NewLive(p LiveParams) Instance {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	i := &live{
		project:        p.Project,
		conn:           p.Conn,
		queue:          p.Queue,
		complainer:     p.Complainer,
		ideGateway:     p.IdeGateway,
		logger:         p.Logger.With("project", p.Project.Key),
		stats:          p.Stats.SubScope("instance"),
		expected:       p.ExpectedVersion,
		pendingTimeout: p.PendingTimeout,
		now:            now,
		onExit:         p.OnExit,
		notifyCtx:      ownerContext(p.Project),
		pending:        make(map[string]pendingRequest),
		consumerDone:   make(chan struct{}),
	}
	i.alive.Store(true)
	i.active.Store(true)

	go i.consume()
	return i
}

func (i *live) IsAlive() bool  { return i.alive.Load() }
func (i *live) IsActive() bool { return i.active.Load() }
func (i *live) Reason() string { return "" }

func (i *live) String() string {
	return fmt.Sprintf("StackIDE(%s, %s)", i.project.Key, i.project.Root())
}

func (i *live) SendRequest(ctx context.Context, req protocol.Request, onResponse ResponseHandler) {
	if !i.IsActive() {
		i.logger.Warnw("dropping request to inactive worker", "tag", req.Tag)
		return
	}

	req.Seq = ""
	if onResponse != nil {
		req.Seq = factory.UUID().String()
		i.mu.Lock()
		i.pending[req.Seq] = pendingRequest{tag: req.Tag, handler: onResponse, sentAt: i.now()}
		i.mu.Unlock()
	}

	if err := i.conn.Send(req); err != nil {
		if req.Seq != "" {
			i.mu.Lock()
			delete(i.pending, req.Seq)
			i.mu.Unlock()
		}
		i.logger.Errorw("failed to send request, deactivating worker", "tag", req.Tag, zap.Error(err))
		i.stats.Counter("send_failures").Inc(1)
		i.active.Store(false)
		return
	}
	i.stats.Counter("requests_sent").Inc(1)
}

func (i *live) End(ctx context.Context) {
	i.endOnce.Do(func() {
		if i.IsActive() {
			if err := i.conn.Send(protocol.ShutdownSession()); err != nil {
				i.logger.Warnw("failed to send shutdown", zap.Error(err))
			}
		}
		i.retire()
		i.logger.Infow("worker ended")
	})
}

func (i *live) Close(ctx context.Context) error {
	i.End(ctx)
	err := i.conn.Terminate(ctx)

	select {
	case <-i.consumerDone:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (i *live) PendingCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.pending)
}

func (i *live) PurgeExpired(now time.Time) int {
	if i.pendingTimeout <= 0 {
		return 0
	}

	i.mu.Lock()
	purged := 0
	for seq, p := range i.pending {
		if now.Sub(p.sentAt) >= i.pendingTimeout {
			delete(i.pending, seq)
			purged++
		}
	}
	i.mu.Unlock()

	if purged > 0 {
		i.logger.Warnw("purged requests without reply", "count", purged, "timeout", i.pendingTimeout)
		i.stats.Counter("purged").Inc(int64(purged))
	}
	return purged
}

// retire marks the instance inactive then dead and drops every pending request.
func (i *live) retire() {
	i.active.Store(false)
	i.alive.Store(false)

	i.mu.Lock()
	dropped := len(i.pending)
	i.pending = make(map[string]pendingRequest)
	i.mu.Unlock()

	if dropped > 0 {
		i.logger.Infow("dropped pending requests", "count", dropped)
	}
}

func (i *live) consume() {
	defer close(i.consumerDone)

	for msg := range i.conn.Inbound() {
		i.handleMessage(msg)
	}
	i.active.Store(false)

	<-i.conn.Done()
	if err := i.conn.ExitErr(); err != nil {
		i.logger.Warnw("worker exited", zap.Error(err))
	} else {
		i.logger.Infow("worker exited")
	}
	i.retire()
	if i.onExit != nil {
		i.onExit()
	}
}

func (i *live) handleMessage(msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.Reply:
		i.handleReply(m)
	case protocol.Welcome:
		i.handleWelcome(m)
	case protocol.SessionUpdate:
		if m.Progress == "" {
			return
		}
		progress := m.Progress
		i.queue.Post(func() {
			params := &lsp.LogMessageParams{
				Type:    lsp.MessageTypeInfo,
				Message: fmt.Sprintf("[%s] %s", i.project.Name(), progress),
			}
			if err := i.ideGateway.LogMessage(i.notifyCtx, params); err != nil {
				i.logger.Debugw("failed to report progress", zap.Error(err))
			}
		})
	case protocol.Unrecognized:
		i.logger.Infow("unhandled response", "tag", m.Tag, "message", string(m.Raw))
	}
}

func (i *live) handleReply(m protocol.Reply) {
	i.mu.Lock()
	p, ok := i.pending[m.Seq]
	delete(i.pending, m.Seq)
	i.mu.Unlock()

	if !ok {
		err := &errors.HandlerNotFoundError{Seq: m.Seq}
		i.logger.Warnw(err.Error(), "tag", m.Tag)
		i.stats.Counter("orphan_responses").Inc(1)
		return
	}
	i.stats.Counter("responses").Inc(1)
	i.stats.Timer("response_latency").Record(i.now().Sub(p.sentAt))

	if !protocol.HasContents(m.Contents) {
		i.logger.Debugw("reply without contents", "tag", p.tag, "seq", m.Seq)
		return
	}
	contents := m.Contents
	if !i.queue.Post(func() { p.handler(contents) }) {
		i.logger.Warnw("dropped reply, dispatch queue unavailable", "tag", p.tag, "seq", m.Seq)
	}
}

func (i *live) handleWelcome(m protocol.Welcome) {
	switch cmp := m.Version.Compare(i.expected); {
	case cmp < 0:
		err := &errors.VersionMismatchError{Got: m.Version, Expected: i.expected, Older: true}
		i.logger.Errorw("unsupported worker version", zap.Error(err))
		i.queue.Post(func() {
			i.complainer.Complain(context.Background(), complaints.IDWrongStackIDEVersion, MsgUpgradeStackIDE)
		})
	case cmp > 0:
		err := &errors.VersionMismatchError{Got: m.Version, Expected: i.expected}
		i.logger.Warnw("newer worker version, continuing", zap.Error(err))
	default:
		i.logger.Debugw("worker version matches", "version", m.Version.String())
	}
}
