package factory

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUID(t *testing.T) {
	a, b := UUID(), UUID()
	assert.NotEqual(t, uuid.Nil, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte(uuid.V4), a.Version())
}

func TestJSONRPCRequest(t *testing.T) {
	req := JSONRPCRequest("stackide/isRunning", map[string]string{"key": "window-1"})
	assert.Equal(t, "stackide/isRunning", req.Method())
	assert.JSONEq(t, `{"key":"window-1"}`, string(req.Params()))

	notif := JSONRPCNotification("stackide/sourceErrors", nil)
	assert.Equal(t, "stackide/sourceErrors", notif.Method())
}

func TestProject(t *testing.T) {
	p := Project(3, "/home/user/helloworld")
	assert.Equal(t, "window-3", string(p.Key))
	assert.Equal(t, "/home/user/helloworld", p.Root())
	assert.NotEqual(t, uuid.Nil, p.Owner)
}

func TestSourceSpan(t *testing.T) {
	span := SourceSpan("src/Lib.hs")
	assert.Equal(t, "src/Lib.hs", span.FilePath)
	assert.GreaterOrEqual(t, span.ToLine, span.FromLine)
}
