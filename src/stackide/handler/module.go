package handler

import (
	controller "github.com/uber/stackide-proxy/src/stackide/controller"
	handler "github.com/uber/stackide-proxy/src/stackide/handler/stackide"
	"github.com/uber/stackide-proxy/src/stackide/repository/project"
	"go.uber.org/fx"
)

// Module provides the stackide-proxy server into an Fx application.
var Module = fx.Options(
	controller.Module,
	fx.Provide(project.New),
	fx.Provide(handler.New),
	fx.Invoke(outputProcessInfo),
	fx.Invoke(func(h handler.Handler) {}),
)
