package ideclient

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
	lsp "go.lsp.dev/protocol"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=ideclientmock/ide_client_mock.go -package=ideclientmock . Gateway

const _errSendToClient = "sending notification to editor: %w"

// Gateway is used to send outbound notifications to connected editors.
// A context carrying a connection UUID routes to that editor only, any other context broadcasts to every editor.
type Gateway interface {
	// RegisterClient registers a new client with the gateway. Should be called each time a new editor connects.
	RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error
	// DeregisterClient removes a client from the gateway. Should be called each time an editor connection is closed.
	DeregisterClient(ctx context.Context, id uuid.UUID) error

	ShowMessage(ctx context.Context, params *lsp.ShowMessageParams) error
	LogMessage(ctx context.Context, params *lsp.LogMessageParams) error
	// Notify sends a custom notification.
	Notify(ctx context.Context, method string, params interface{}) error

	// GetLogMessageWriter returns an io.Writer whose lines are sent as log messages.
	GetLogMessageWriter(ctx context.Context, prefix string) io.Writer
}

type gateway struct {
	clients     map[uuid.UUID]lsp.Client
	connections map[uuid.UUID]jsonrpc2.Conn
	clientsMu   sync.Mutex
	logger      *zap.Logger
}

type target struct {
	client lsp.Client
	conn   jsonrpc2.Conn
}

// New returns a Gateway for sending editor notifications.
func New(logger *zap.Logger) Gateway {
	return &gateway{
		clients:     make(map[uuid.UUID]lsp.Client),
		connections: make(map[uuid.UUID]jsonrpc2.Conn),
		logger:      logger,
	}
}

func (g *gateway) RegisterClient(ctx context.Context, id uuid.UUID, conn *jsonrpc2.Conn) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	g.clients[id] = lsp.ClientDispatcher(*conn, g.logger)
	g.connections[id] = *conn

	return nil
}

func (g *gateway) DeregisterClient(ctx context.Context, id uuid.UUID) error {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	delete(g.clients, id)
	delete(g.connections, id)

	return nil
}

func (g *gateway) ShowMessage(ctx context.Context, params *lsp.ShowMessageParams) error {
	return g.forEach(ctx, func(t target) error {
		return t.client.ShowMessage(ctx, params)
	})
}

func (g *gateway) LogMessage(ctx context.Context, params *lsp.LogMessageParams) error {
	return g.forEach(ctx, func(t target) error {
		return t.client.LogMessage(ctx, params)
	})
}

func (g *gateway) Notify(ctx context.Context, method string, params interface{}) error {
	return g.forEach(ctx, func(t target) error {
		return t.conn.Notify(ctx, method, params)
	})
}

// forEach calls send for the targeted editor, or for every editor, and combines the errors.
func (g *gateway) forEach(ctx context.Context, send func(t target) error) error {
	targets, err := g.getTargets(ctx)
	if err != nil {
		return fmt.Errorf(_errSendToClient, err)
	}

	var errs error
	for _, t := range targets {
		errs = multierr.Append(errs, send(t))
	}
	if errs != nil {
		return fmt.Errorf(_errSendToClient, errs)
	}
	return nil
}

func (g *gateway) getTargets(ctx context.Context) ([]target, error) {
	g.clientsMu.Lock()
	defer g.clientsMu.Unlock()

	if id, ok := mapper.ContextToConnectionUUID(ctx); ok {
		client, ok := g.clients[id]
		if !ok {
			return nil, fmt.Errorf("client with id %q not found", id)
		}
		return []target{{client: client, conn: g.connections[id]}}, nil
	}

	targets := make([]target, 0, len(g.clients))
	for id, client := range g.clients {
		targets = append(targets, target{client: client, conn: g.connections[id]})
	}
	return targets, nil
}

type logMessageWriter struct {
	gateway *gateway
	ctx     context.Context
	prefix  string
}

func (g *gateway) GetLogMessageWriter(ctx context.Context, prefix string) io.Writer {
	return &logMessageWriter{
		gateway: g,
		ctx:     ctx,
		prefix:  prefix,
	}
}

func (w *logMessageWriter) Write(p []byte) (n int, err error) {
	str := strings.TrimSuffix(string(p), "\n")
	if err := w.gateway.LogMessage(w.ctx, &lsp.LogMessageParams{
		Message: fmt.Sprintf("[%s] %s", w.prefix, str),
		Type:    lsp.MessageTypeLog,
	}); err != nil {
		return 0, fmt.Errorf("writing to editor log message writer: %w", err)
	}
	return len(p), nil
}
