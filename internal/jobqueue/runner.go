package jobqueue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// pollInterval bounds how long a worker ever waits to notice a pending row
// when no NOTIFY arrives — the notify channel is an optimization, not the
// sole delivery mechanism (spec.md §4.3 step 1).
const pollInterval = 5 * time.Second

// Starter begins a workflow execution for a claimed row and returns the
// runtime's (workflow_id, workflow_run_id) pair. internal/workflow provides
// the concrete implementation; jobqueue depends only on this interface so it
// never imports the workflow package directly.
type Starter interface {
	Start(ctx context.Context, row *ent.WorkflowQueue) (workflowID, workflowRunID string, err error)
	// IsLive reports whether workflowID still has a live execution in the
	// runtime, used during crash reconciliation (S5).
	IsLive(ctx context.Context, workflowID string) (bool, error)
}

// Runner is the worker-side claim loop: one per worker process.
type Runner struct {
	workerID string
	claimer  *Claimer
	listener *Listener
	starter  Starter
}

// NewRunner creates a Runner with a freshly generated worker id.
func NewRunner(claimer *Claimer, listener *Listener, starter Starter) *Runner {
	id, err := uuid.NewV7()
	workerID := "worker-" + id.String()
	if err != nil {
		workerID = "worker-unknown"
	}
	return &Runner{workerID: workerID, claimer: claimer, listener: listener, starter: starter}
}

// Run reconciles in-flight rows left by a prior crash, then loops claiming
// pending rows until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.reconcile(ctx); err != nil {
		logger.Error("workflow queue reconciliation failed", zap.Error(err))
	}
	r.drainPending(ctx)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.drainPending(ctx)
		case rowID := <-r.listener.Notify():
			r.tryClaimOne(ctx, rowID)
		}
	}
}

// reconcile implements the crash-recovery half of S5: any row left
// processing by a worker that died is checked against the runtime. A live
// execution is left alone (a live worker, possibly this one restarting,
// will finish it); a dead one is reopened for another worker to claim.
func (r *Runner) reconcile(ctx context.Context) error {
	rows, err := r.claimer.ProcessingRows(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.WorkflowID == nil || *row.WorkflowID == "" {
			// Claimed but crashed before a workflow ever started.
			if err := r.claimer.ResetToPending(ctx, row.ID); err != nil {
				logger.Error("reset orphaned workflow_queue row", zap.String("row_id", row.ID), zap.Error(err))
			}
			continue
		}
		live, err := r.starter.IsLive(ctx, *row.WorkflowID)
		if err != nil {
			logger.Error("check workflow liveness", zap.String("workflow_id", *row.WorkflowID), zap.Error(err))
			continue
		}
		if !live {
			if err := r.claimer.ResetToPending(ctx, row.ID); err != nil {
				logger.Error("reset dead-workflow row", zap.String("row_id", row.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (r *Runner) drainPending(ctx context.Context) {
	rows, err := r.claimer.PendingRows(ctx, 50)
	if err != nil {
		logger.Error("list pending workflow_queue rows", zap.Error(err))
		return
	}
	for _, row := range rows {
		r.tryClaimOne(ctx, row.ID)
	}
}

func (r *Runner) tryClaimOne(ctx context.Context, rowID string) {
	row, claimed, err := r.claimer.Claim(ctx, rowID, r.workerID)
	if err != nil {
		logger.Error("claim workflow_queue row", zap.String("row_id", rowID), zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	workflowID, workflowRunID, err := r.starter.Start(ctx, row)
	if err != nil {
		logger.Error("start workflow for claimed row", zap.String("row_id", row.ID), zap.Error(err))
		if markErr := r.claimer.MarkFailed(ctx, row.ID, err, ""); markErr != nil {
			logger.Error("mark claimed row failed after start error", zap.String("row_id", row.ID), zap.Error(markErr))
		}
		return
	}
	if err := r.claimer.SetWorkflowCorrelation(ctx, row.ID, workflowID, workflowRunID); err != nil {
		logger.Error("persist workflow correlation", zap.String("row_id", row.ID), zap.Error(err))
	}
}
