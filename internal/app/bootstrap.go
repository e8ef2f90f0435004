// Package app — composition root. ADR-0022: bootstrap stays orchestration-only.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/healthbootstrap/orgbootstrap/internal/api/handlers"
	"github.com/healthbootstrap/orgbootstrap/internal/app/modules"
	"github.com/healthbootstrap/orgbootstrap/internal/config"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	Infra  *modules.Infrastructure
}

// Bootstrap initializes all dependencies using manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	if err := infra.InitRiver(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("init river: %w", err)
	}

	serverDeps := modules.NewServerDeps(cfg, infra)
	server := handlers.NewServer(serverDeps)

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, serverDeps.JWTCfg),
		Infra:  infra,
	}, nil
}
