// Package complaints shows one-off error messages to the user, each at most once until reset.
package complaints

import (
	"context"
	"sync"

	tally "github.com/uber-go/tally"
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	lsp "go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=complaintsmock/complaints_mock.go -package=complaintsmock . Complainer

// Complaint ids raised by the proxy.
const (
	IDStackNotFound        = "stack-not-found"
	IDWrongStackIDEVersion = "wrong-stack-ide-version"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Complainer de-duplicates user-facing error messages by id.
type Complainer interface {
	// Complain shows msg unless a complaint with the same id was shown since the last Reset. It reports whether msg was shown.
	Complain(ctx context.Context, id string, msg string) bool
	Reset()
}

// Params are inbound parameters to initialize a new Complainer.
type Params struct {
	fx.In

	IdeGateway ideclient.Gateway
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

type complainer struct {
	ideGateway ideclient.Gateway
	logger     *zap.SugaredLogger
	stats      tally.Scope

	mu    sync.Mutex
	shown map[string]struct{}
}

// New creates a Complainer that shows complaints to every connected editor.
func New(p Params) Complainer {
	return &complainer{
		ideGateway: p.IdeGateway,
		logger:     p.Logger.Named("complaints"),
		stats:      p.Stats.SubScope("complaints"),
		shown:      make(map[string]struct{}),
	}
}

func (c *complainer) Complain(ctx context.Context, id string, msg string) bool {
	c.mu.Lock()
	if _, ok := c.shown[id]; ok {
		c.mu.Unlock()
		return false
	}
	c.shown[id] = struct{}{}
	c.mu.Unlock()

	c.stats.Counter("complaints_shown").Inc(1)
	c.logger.Errorw("complaint", "id", id, "message", msg)
	if err := c.ideGateway.ShowMessage(ctx, &lsp.ShowMessageParams{
		Type:    lsp.MessageTypeError,
		Message: msg,
	}); err != nil {
		c.logger.Warnw("showing complaint", "id", id, "error", err)
	}
	return true
}

func (c *complainer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shown = make(map[string]struct{})
}
