// Package jobqueue implements the worker-side half of the job queue and
// worker protocol: claiming a pending workflow_queue row exactly once,
// recording workflow correlation ids, and reporting lifecycle status back
// onto the row.
package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/workflowqueue"
)

// Claimer performs the atomic conditional-update claim.
type Claimer struct {
	client *ent.Client
}

// NewClaimer creates a Claimer.
func NewClaimer(client *ent.Client) *Claimer {
	return &Claimer{client: client}
}

// Claim attempts to claim one pending row by id on behalf of workerID. The
// conditional update (status='pending' in the WHERE clause) is the only
// concurrency primitive used: under N parallel workers racing the same row,
// exactly one UPDATE affects a row.
func (c *Claimer) Claim(ctx context.Context, rowID, workerID string) (*ent.WorkflowQueue, bool, error) {
	now := time.Now().UTC()
	affected, err := c.client.WorkflowQueue.Update().
		Where(workflowqueue.ID(rowID), workflowqueue.StatusEQ(workflowqueue.StatusPending)).
		SetStatus(workflowqueue.StatusProcessing).
		SetWorkerID(workerID).
		SetClaimedAt(now).
		Save(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("claim workflow_queue row %s: %w", rowID, err)
	}
	if affected == 0 {
		return nil, false, nil
	}

	row, err := c.client.WorkflowQueue.Get(ctx, rowID)
	if err != nil {
		return nil, false, fmt.Errorf("load claimed row %s: %w", rowID, err)
	}
	return row, true, nil
}

// PendingRows lists rows still pending, used on worker startup to pick up
// rows seeded before the worker was listening (and as the fallback poll
// path when NOTIFY delivery is missed).
func (c *Claimer) PendingRows(ctx context.Context, limit int) ([]*ent.WorkflowQueue, error) {
	if limit <= 0 {
		limit = 50
	}
	return c.client.WorkflowQueue.Query().
		Where(workflowqueue.StatusEQ(workflowqueue.StatusPending)).
		Order(ent.Asc(workflowqueue.FieldCreatedAt)).
		Limit(limit).
		All(ctx)
}

// ProcessingRows lists rows currently marked processing, used at worker
// startup to reconcile against the workflow runtime's live executions (S5).
func (c *Claimer) ProcessingRows(ctx context.Context) ([]*ent.WorkflowQueue, error) {
	return c.client.WorkflowQueue.Query().
		Where(workflowqueue.StatusEQ(workflowqueue.StatusProcessing)).
		All(ctx)
}

// SetWorkflowCorrelation writes workflow_id/workflow_run_id back onto a
// claimed row once the workflow execution has been started.
func (c *Claimer) SetWorkflowCorrelation(ctx context.Context, rowID, workflowID, workflowRunID string) error {
	return c.client.WorkflowQueue.UpdateOneID(rowID).
		SetWorkflowID(workflowID).
		SetWorkflowRunID(workflowRunID).
		Exec(ctx)
}

// MarkCompleted records a successful workflow completion.
func (c *Claimer) MarkCompleted(ctx context.Context, rowID string, result []byte) error {
	return c.client.WorkflowQueue.UpdateOneID(rowID).
		SetStatus(workflowqueue.StatusCompleted).
		SetCompletedAt(time.Now().UTC()).
		SetResultPayload(result).
		Exec(ctx)
}

// MarkFailed records a terminal workflow failure and increments retry_count.
func (c *Claimer) MarkFailed(ctx context.Context, rowID string, cause error, stack string) error {
	return c.client.WorkflowQueue.UpdateOneID(rowID).
		SetStatus(workflowqueue.StatusFailed).
		SetFailedAt(time.Now().UTC()).
		SetErrorMessage(cause.Error()).
		SetErrorStack(stack).
		AddRetryCount(1).
		Exec(ctx)
}

// ResetToPending reopens a row that a dead worker left in processing,
// allowing another worker to reclaim it (crash reconciliation, S5).
func (c *Claimer) ResetToPending(ctx context.Context, rowID string) error {
	affected, err := c.client.WorkflowQueue.Update().
		Where(workflowqueue.ID(rowID), workflowqueue.StatusEQ(workflowqueue.StatusProcessing)).
		SetStatus(workflowqueue.StatusPending).
		ClearWorkerID().
		ClearClaimedAt().
		Save(ctx)
	if err != nil {
		return fmt.Errorf("reset workflow_queue row %s to pending: %w", rowID, err)
	}
	if affected == 0 {
		return fmt.Errorf("workflow_queue row %s was not in processing state", rowID)
	}
	return nil
}
