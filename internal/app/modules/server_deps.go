package modules

import (
	"github.com/healthbootstrap/orgbootstrap/internal/api/handlers"
	"github.com/healthbootstrap/orgbootstrap/internal/api/middleware"
	"github.com/healthbootstrap/orgbootstrap/internal/config"
	"github.com/healthbootstrap/orgbootstrap/internal/rpc"
)

// NewServerDeps builds the RPC wrapper instances the HTTP layer calls into.
func NewServerDeps(cfg *config.Config, infra *Infrastructure) handlers.ServerDeps {
	return handlers.ServerDeps{
		Pool: infra.Pool,
		JWTCfg: middleware.JWTConfig{
			SigningKey: []byte(cfg.Security.SessionSecret),
			Issuer:     "orgbootstrap",
			ExpiresIn:  cfg.Session.Lifetime,
		},
		Bootstrapper: rpc.NewBootstrapper(infra.Store, infra.Notifier),
		Events:       rpc.NewEventOps(infra.Store),
		Contacts:     rpc.NewContactReader(infra.EntClient),
		Users:        rpc.NewUserMutator(infra.Store),
		Schedules:    rpc.NewScheduleOps(infra.EntClient, infra.Store),
		Access:       rpc.NewAccessReader(infra.EntClient),
		SoftDeleter:  rpc.NewSoftDeleter(infra.EntClient, infra.Store),
	}
}
