package controller

import (
	"github.com/uber/stackide-proxy/src/stackide/controller/complaints"
	"github.com/uber/stackide-proxy/src/stackide/controller/instance"
	"github.com/uber/stackide-proxy/src/stackide/controller/qualifier"
	"github.com/uber/stackide-proxy/src/stackide/controller/stackide"
	"github.com/uber/stackide-proxy/src/stackide/controller/supervisor"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(stackide.New),
	fx.Provide(supervisor.New),
	fx.Provide(instance.NewSpawner),
	fx.Provide(complaints.New),
	fx.Provide(qualifier.New),
)
