// Package instance correlates requests and responses with one worker per project.
package instance

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/uber/stackide-proxy/src/stackide/internal/protocol"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=instancemock/instance_mock.go -package=instancemock . Instance,Spawner

// ResponseHandler receives the contents of a reply. It runs on the dispatch queue, never on a reader goroutine.
type ResponseHandler func(contents json.RawMessage)

// Instance is what the supervisor tracks for a project: either a running worker or a NoInstance placeholder.
type Instance interface {
	// IsAlive is false once the instance has ended. It never becomes true again.
	IsAlive() bool
	// IsActive reports whether requests can be sent. Active implies alive.
	IsActive() bool
	// Reason explains why there is no worker. Empty for live instances.
	Reason() string
	// SendRequest sends req. With a non-nil handler, the reply's contents are delivered to it at most once.
	SendRequest(ctx context.Context, req protocol.Request, onResponse ResponseHandler)
	// End asks the worker to shut down and marks the instance dead.
	End(ctx context.Context)
	// Close ends the instance and waits for the worker to exit, killing it when ctx expires.
	Close(ctx context.Context) error
	PendingCount() int
	// PurgeExpired drops requests that have waited too long for a reply. Their handlers are never called.
	PurgeExpired(now time.Time) int
	String() string
}

// noInstance stands in for a project that could not or should not get a worker.
type noInstance struct {
	reason string
	logger *zap.SugaredLogger
	ended  atomic.Bool
}

// NoInstance returns an Instance that is alive until ended and never active.
func NoInstance(reason string, logger *zap.SugaredLogger) Instance {
	return &noInstance{
		reason: reason,
		logger: logger,
	}
}

func (n *noInstance) IsAlive() bool  { return !n.ended.Load() }
func (n *noInstance) IsActive() bool { return false }
func (n *noInstance) Reason() string { return n.reason }

func (n *noInstance) SendRequest(ctx context.Context, req protocol.Request, onResponse ResponseHandler) {
	n.logger.Debugw("dropping request, no worker", "tag", req.Tag, "reason", n.reason)
}

func (n *noInstance) End(ctx context.Context) {
	n.ended.Store(true)
}

func (n *noInstance) Close(ctx context.Context) error {
	n.End(ctx)
	return nil
}

func (n *noInstance) PendingCount() int              { return 0 }
func (n *noInstance) PurgeExpired(now time.Time) int { return 0 }
func (n *noInstance) String() string                 { return fmt.Sprintf("NoInstance(%s)", n.reason) }
