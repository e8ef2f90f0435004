package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entworkflowqueue "github.com/healthbootstrap/orgbootstrap/ent/workflowqueue"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// OrganizationBootstrapInitiatedPayload is the event_data shape for
// organization.bootstrap.initiated events on the workflow_queue stream_type.
// stream_id is the workflow_queue row's own id, minted by the RPC that
// accepts the bootstrap request.
type OrganizationBootstrapInitiatedPayload struct {
	OrganizationSlug string          `json:"organization_slug"`
	RequestPayload   json.RawMessage `json:"request_payload"`
}

// handleWorkflowQueue seeds the job queue row a worker will later claim.
// It performs no notification of its own: handlers do not reach outside the
// transaction they're given. Realtime delivery (pg_notify) is the
// responsibility of the RPC layer that called eventstore.Store.Emit, once
// Emit has returned successfully.
func handleWorkflowQueue(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventOrganizationBootstrapInitiated:
		var p OrganizationBootstrapInitiatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal organization.bootstrap.initiated: %w", err)
		}
		return tx.WorkflowQueue.Create().
			SetID(ev.StreamID).
			SetOrganizationSlug(p.OrganizationSlug).
			SetRequestPayload([]byte(p.RequestPayload)).
			OnConflictColumns(entworkflowqueue.FieldID).
			DoNothing().
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
