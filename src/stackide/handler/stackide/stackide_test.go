package stackide

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally"
	"github.com/uber/stackide-proxy/src/stackide/controller/stackide/stackidemock"
	"github.com/uber/stackide-proxy/src/stackide/factory"
	"github.com/uber/stackide-proxy/src/stackide/internal/jsonrpcfx/jsonrpcfxmock"
	"github.com/uber/stackide-proxy/src/stackide/internal/mock/jsonrpc2mock"
	"github.com/uber/stackide-proxy/src/stackide/mapper"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("registers with the inbound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
		jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(nil)

		h, err := New(Params{
			Controller: stackidemock.NewMockController(ctrl),
			JSONRPC:    jsonRPCMock,
			Logger:     zap.NewNop().Sugar(),
			Stats:      tally.NewTestScope("testing", make(map[string]string, 0)),
		})
		require.NoError(t, err)
		assert.IsType(t, &jsonRPCConnectionManager{}, h)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		jsonRPCMock := jsonrpcfxmock.NewMockJSONRPCModule(ctrl)
		jsonRPCMock.EXPECT().RegisterConnectionManager(gomock.Any()).Return(errors.New("duplicate"))

		_, err := New(Params{
			Controller: stackidemock.NewMockController(ctrl),
			JSONRPC:    jsonRPCMock,
			Logger:     zap.NewNop().Sugar(),
			Stats:      tally.NoopScope,
		})
		assert.Error(t, err)
	})
}

func TestNewConnection(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	c := stackidemock.NewMockController(ctrl)
	testScope := tally.NewTestScope("testing", make(map[string]string, 0))

	mgr := jsonRPCConnectionManager{
		stats: testScope,
		ctrl:  c,
	}

	mockConn := jsonrpc2mock.NewMockConn(ctrl)
	var conn jsonrpc2.Conn = mockConn

	t.Run("create success", func(t *testing.T) {
		id := factory.UUID()
		c.EXPECT().InitConnection(gomock.Any(), &conn).Return(id, nil)
		router, err := mgr.NewConnection(ctx, &conn)
		require.NoError(t, err)
		assert.IsType(t, &jsonRPCRouter{}, router)
		assert.Equal(t, id, router.UUID())
		assert.Equal(t, int64(1), testScope.Snapshot().Counters()["testing.connections+"].Value())
	})

	t.Run("create failure", func(t *testing.T) {
		c.EXPECT().InitConnection(gomock.Any(), gomock.Any()).Return(uuid.Nil, errors.New("error"))
		_, err := mgr.NewConnection(ctx, &conn)
		assert.Error(t, err)
	})
}

func TestRemoveConnection(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	core, logs := observer.New(zapcore.DebugLevel)

	c := stackidemock.NewMockController(ctrl)
	mgr := jsonRPCConnectionManager{
		ctrl:   c,
		logger: zap.New(core).Sugar(),
		stats:  tally.NoopScope,
	}

	id := factory.UUID()
	c.EXPECT().EndConnection(gomock.Any(), id).DoAndReturn(func(ctx context.Context, id uuid.UUID) error {
		resultID, ok := mapper.ContextToConnectionUUID(ctx)
		assert.True(t, ok)
		assert.Equal(t, id, resultID)
		return nil
	})
	mgr.RemoveConnection(ctx, id)
	assert.Zero(t, logs.Len())

	c.EXPECT().EndConnection(gomock.Any(), id).Return(errors.New("repository error"))
	mgr.RemoveConnection(ctx, id)
	assert.Equal(t, 1, logs.FilterMessage("ending connection").Len())
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newMockReplier() jsonrpc2.Replier {
	return func(ctx context.Context, result interface{}, err error) error {
		return err
	}
}

// recordingReplier keeps the last reply.
type recordingReplier struct {
	result interface{}
	err    error
}

func (r *recordingReplier) reply(ctx context.Context, result interface{}, err error) error {
	r.result = result
	r.err = err
	return err
}
