// Package stackide implements the stackide-proxy JSON-RPC handlers.
package stackide

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	tally "github.com/uber-go/tally"
	controller "github.com/uber/stackide-proxy/src/stackide/controller/stackide"
	"github.com/uber/stackide-proxy/src/stackide/internal/jsonrpcfx"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler accepts editor connections from the JSON-RPC inbound.
type Handler = jsonrpcfx.ConnectionManager

// Params are inbound parameters to initialize a new Handler.
type Params struct {
	fx.In

	Controller controller.Controller
	JSONRPC    jsonrpcfx.JSONRPCModule
	Logger     *zap.SugaredLogger
	Stats      tally.Scope
}

// New constructs the Handler and registers it with the JSON-RPC inbound.
func New(p Params) (Handler, error) {
	c := &jsonRPCConnectionManager{
		ctrl:   p.Controller,
		logger: p.Logger,
		stats:  p.Stats.SubScope("json_rpc"),
	}
	if err := p.JSONRPC.RegisterConnectionManager(c); err != nil {
		return nil, err
	}
	return c, nil
}

type jsonRPCConnectionManager struct {
	ctrl   controller.Controller
	logger *zap.SugaredLogger
	stats  tally.Scope
}

// NewConnection will store a new connection and return a router that includes its UUID.
func (c *jsonRPCConnectionManager) NewConnection(ctx context.Context, conn *jsonrpc2.Conn) (router jsonrpcfx.Router, err error) {
	id, err := c.ctrl.InitConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("error while creating new connection: %w", err)
	}
	c.stats.Counter("connections").Inc(1)

	r := jsonRPCRouter{
		stackide: c.ctrl,
		uuid:     id,
		stats:    c.stats,
	}

	return &r, nil
}

// RemoveConnection cleans up a closed connection, closing every project it opened.
func (c *jsonRPCConnectionManager) RemoveConnection(ctx context.Context, id uuid.UUID) {
	ctx = mapper.ConnectionUUIDToContext(ctx, id)
	if err := c.ctrl.EndConnection(ctx, id); err != nil {
		c.logger.Warnw("ending connection", zap.Stringer("uuid", id), zap.Error(err))
	}
}
