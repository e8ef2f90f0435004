package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/dnsprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/emailprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/jobqueue"
	"github.com/healthbootstrap/orgbootstrap/internal/notification"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// RootDomain is the zone new organization subdomains are provisioned under.
type RootDomain string

// Workflow executes the bootstrap saga for one workflow_queue row.
type Workflow struct {
	client        *ent.Client
	store         *eventstore.Store
	claimer       *jobqueue.Claimer
	dns           dnsprovider.Provider
	dnsVerify     dnsprovider.Verifier
	email         emailprovider.Provider
	root          RootDomain
	ingressTarget string
	alerts        *notification.Triggers
}

// NewWorkflow creates a Workflow with its activity dependencies. ingressTarget
// is the canonical hostname every provisioned subdomain's CNAME points at.
func NewWorkflow(
	client *ent.Client,
	store *eventstore.Store,
	claimer *jobqueue.Claimer,
	dns dnsprovider.Provider,
	dnsVerify dnsprovider.Verifier,
	email emailprovider.Provider,
	root RootDomain,
	ingressTarget string,
	alerts *notification.Triggers,
) *Workflow {
	return &Workflow{
		client: client, store: store, claimer: claimer,
		dns: dns, dnsVerify: dnsVerify, email: email, root: root,
		ingressTarget: ingressTarget, alerts: alerts,
	}
}

// Worker adapts Workflow to River's worker interface. One job method, six
// sequential activity steps, idempotency re-derived from projected state on
// every attempt — the teacher's VMCreateWorker.Work shape, generalized.
type Worker struct {
	river.WorkerDefaults[BootstrapOrganizationArgs]
	wf *Workflow
}

// NewWorker creates a Worker.
func NewWorker(wf *Workflow) *Worker { return &Worker{wf: wf} }

func (w *Worker) Work(ctx context.Context, job *river.Job[BootstrapOrganizationArgs]) error {
	return w.wf.Run(ctx, job.Args.RowID)
}

// Run executes activities 1-6 in order, falling back to compensation on a
// NonRetryableError.
func (wf *Workflow) Run(ctx context.Context, rowID string) error {
	row, err := wf.client.WorkflowQueue.Get(ctx, rowID)
	if err != nil {
		return fmt.Errorf("fetch workflow_queue row %s: %w", rowID, err)
	}

	var req BootstrapRequest
	if err := json.Unmarshal(row.RequestPayload, &req); err != nil {
		return river.JobCancel(fmt.Errorf("unmarshal bootstrap request for row %s: %w", rowID, err))
	}

	logger.Info("bootstrap workflow run",
		zap.String("row_id", rowID),
		zap.String("slug", req.Slug),
	)

	orgID, err := wf.createOrganization(ctx, row, req)
	if err != nil {
		return wf.handleActivityError(ctx, row, req, orgID, err)
	}

	if req.RequiresSubdomain() {
		if err := wf.configureDNS(ctx, orgID, req); err != nil {
			return wf.handleActivityError(ctx, row, req, orgID, err)
		}
		if err := wf.verifyDNS(ctx, orgID, req); err != nil {
			return wf.handleActivityError(ctx, row, req, orgID, err)
		}
	}

	invitationIDs, err := wf.generateInvitations(ctx, orgID, req)
	if err != nil {
		return wf.handleActivityError(ctx, row, req, orgID, err)
	}

	if err := wf.sendInvitationEmails(ctx, orgID, req, invitationIDs); err != nil {
		return wf.handleActivityError(ctx, row, req, orgID, err)
	}

	if err := wf.activateOrganization(ctx, orgID); err != nil {
		return wf.handleActivityError(ctx, row, req, orgID, err)
	}

	if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   orgID,
		StreamType: "organization",
		EventType:  "organization.bootstrap.completed",
		EventData:  map[string]string{"organization_id": orgID},
		Metadata:   eventstore.EventMetadata{CorrelationID: rowID},
	}); err != nil {
		return fmt.Errorf("emit organization.bootstrap.completed: %w", err)
	}

	result, _ := json.Marshal(map[string]string{"organization_id": orgID})
	if err := wf.claimer.MarkCompleted(ctx, rowID, result); err != nil {
		logger.Error("mark workflow_queue row completed", zap.String("row_id", rowID), zap.Error(err))
	}
	return nil
}

// handleActivityError classifies err: non-retryable failures run
// compensation and stop the job; retryable failures are returned bare so
// River retries the whole Run per its backoff policy.
func (wf *Workflow) handleActivityError(ctx context.Context, row *ent.WorkflowQueue, req BootstrapRequest, orgID string, err error) error {
	var nonRetryable *NonRetryableError
	if !errors.As(err, &nonRetryable) {
		return err
	}

	if compErr := wf.compensate(ctx, orgID, req); compErr != nil {
		logger.Error("compensation failed",
			zap.String("row_id", row.ID),
			zap.Error(compErr),
		)
		workflowID := "bootstrap:" + req.Slug
		wf.alerts.OnCompensationFailed(ctx, workflowID, orgID, err, compErr)
		_ = wf.claimer.MarkFailed(ctx, row.ID, fmt.Errorf("compensation failed after %w: %w", err, compErr), "")
		return river.JobCancel(fmt.Errorf("workflow compensation failure: %w", compErr))
	}

	_ = wf.claimer.MarkFailed(ctx, row.ID, err, "")
	return river.JobCancel(err)
}
