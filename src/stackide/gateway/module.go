package gateway

import (
	ideclient "github.com/uber/stackide-proxy/src/stackide/gateway/ide-client"
	"go.uber.org/fx"
)

// Module provides the outbound gateways.
var Module = fx.Provide(ideclient.New)
