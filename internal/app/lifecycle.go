package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// Start starts all background services: the River client, the workflow_queue
// LISTEN connection, and the runner loop that claims rows off it.
func (a *Application) Start(ctx context.Context) error {
	infra := a.Infra
	if infra == nil {
		return fmt.Errorf("application infrastructure is not initialized")
	}

	if infra.RiverClient != nil {
		if err := infra.RiverClient.Start(ctx); err != nil {
			return fmt.Errorf("start river client: %w", err)
		}
		logger.Info("River client started, bootstrap jobs will now be consumed")
	}

	if infra.Listener != nil {
		if err := infra.Listener.Start(ctx); err != nil {
			return fmt.Errorf("start workflow_queue listener: %w", err)
		}
		logger.Info("workflow_queue listener started")
	}

	if infra.Runner != nil {
		go func() {
			if err := infra.Runner.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("workflow_queue runner exited", zap.Error(err))
			}
		}()
		logger.Info("workflow_queue runner started")
	}

	return nil
}

// Shutdown gracefully shuts down all application components.
func (a *Application) Shutdown() {
	shutdownCtx := context.Background()
	infra := a.Infra
	if infra == nil {
		return
	}

	if infra.Listener != nil {
		infra.Listener.Stop(shutdownCtx)
	}

	if infra.RiverClient != nil {
		if err := infra.RiverClient.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop river client", zap.Error(err))
		}
		logger.Info("River client stopped")
	}

	infra.Close()
}
