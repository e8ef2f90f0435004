package workflow

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/workflowqueue"
)

// liveJobStates are the River job states a Starter.IsLive check treats as
// "still owned by a running worker" (spec.md S5 crash reconciliation).
var liveJobStates = map[string]struct{}{
	"running":   {},
	"available": {},
	"retryable": {},
	"scheduled": {},
}

// Starter implements internal/jobqueue.Starter, the interface the worker
// runner uses to begin a workflow execution and to probe whether a
// previously-claimed row's execution is still alive after a crash.
type Starter struct {
	client      *ent.Client
	riverClient *river.Client[pgx.Tx]
}

// NewStarter creates a Starter backed by client for queue-row/river_job
// lookups and riverClient for job submission.
func NewStarter(client *ent.Client, riverClient *river.Client[pgx.Tx]) *Starter {
	return &Starter{client: client, riverClient: riverClient}
}

// Start enqueues the River job that will execute row's bootstrap workflow.
// workflowID is a stable, content-derived key ("bootstrap:<slug>"); River's
// ByArgs uniqueness on BootstrapOrganizationArgs.RowID prevents a second
// enqueue for the same row while one is already in flight.
func (s *Starter) Start(ctx context.Context, row *ent.WorkflowQueue) (workflowID, workflowRunID string, err error) {
	workflowID = "bootstrap:" + row.OrganizationSlug

	result, err := s.riverClient.Insert(ctx, BootstrapOrganizationArgs{RowID: row.ID}, nil)
	if err != nil {
		return "", "", fmt.Errorf("enqueue bootstrap job for row %s: %w", row.ID, err)
	}
	return workflowID, fmt.Sprintf("%d", result.Job.ID), nil
}

// IsLive reports whether the row carrying workflow_id=workflowID still has
// a River job in a live state. It resolves workflowID back to the row's
// own workflow_run_id (the River job's numeric id) and checks river_job
// directly — River's public client API has no stable by-id state query, and
// river_job lives in the same Postgres database this service already owns.
func (s *Starter) IsLive(ctx context.Context, workflowID string) (bool, error) {
	row, err := s.client.WorkflowQueue.Query().
		Where(workflowqueue.WorkflowID(workflowID)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("query workflow_queue row for workflow_id %s: %w", workflowID, err)
	}
	if row.WorkflowRunID == nil || *row.WorkflowRunID == "" {
		return false, nil
	}
	return s.queryJobState(ctx, *row.WorkflowRunID)
}

func (s *Starter) queryJobState(ctx context.Context, jobID string) (bool, error) {
	rows, err := s.client.QueryContext(ctx, `SELECT state FROM river_job WHERE id = $1`, jobID)
	if err != nil {
		return false, fmt.Errorf("query river_job state for %s: %w", jobID, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return false, rows.Err()
	}
	var state string
	if err := rows.Scan(&state); err != nil {
		return false, err
	}
	_, live := liveJobStates[state]
	return live, nil
}
