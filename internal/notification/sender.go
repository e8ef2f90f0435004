// Package notification implements the operator-facing alert channel
// spec.md §7 requires: a non-retryable bootstrap workflow failure whose
// compensation also failed needs a human to intervene, since nothing else
// will retry it.
//
// ADR-0015 §20 (as adapted here): alerts are synchronous DB writes within
// the same request/job as the failure itself, not routed through River
// Queue — a second moving part is the last thing a failure path needs.
//
// Import Path: github.com/healthbootstrap/orgbootstrap/internal/notification
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/ent"
	entoperatoralert "github.com/healthbootstrap/orgbootstrap/ent/operatoralert"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// Severity constants matching ent/schema/operator_alert.go's enum.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Params holds the fields required to raise an operator alert.
type Params struct {
	WorkflowID     string // stable "bootstrap:<slug>" key
	OrganizationID string // empty if the organization was never created
	Severity       string // one of Severity* constants above
	Message        string
}

// Sender raises operator alerts. V1 has a single implementation backed by
// the operator_alert projection table; a future version could add a
// webhook/pager sender behind the same interface.
type Sender interface {
	Send(ctx context.Context, params Params) error
}

// InboxSender writes alerts to the operator_alert table synchronously.
type InboxSender struct {
	client *ent.Client
}

// NewInboxSender creates a new inbox sender.
func NewInboxSender(client *ent.Client) *InboxSender {
	return &InboxSender{client: client}
}

// Send stores a single operator alert.
func (s *InboxSender) Send(ctx context.Context, params Params) error {
	if err := validateParams(params); err != nil {
		return fmt.Errorf("alert params invalid: %w", err)
	}

	severity := params.Severity
	if severity == "" {
		severity = SeverityCritical
	}

	create := s.client.OperatorAlert.Create().
		SetID(uuid.NewString()).
		SetWorkflowID(params.WorkflowID).
		SetSeverity(entoperatoralert.Severity(severity)).
		SetMessage(params.Message)
	if params.OrganizationID != "" {
		create = create.SetOrganizationID(params.OrganizationID)
	}

	if _, err := create.Save(ctx); err != nil {
		return fmt.Errorf("create operator alert for workflow %s: %w", params.WorkflowID, err)
	}

	logger.Warn("operator alert raised",
		zap.String("workflow_id", params.WorkflowID),
		zap.String("severity", severity),
		zap.String("message", params.Message),
	)
	return nil
}

// compile-time check
var _ Sender = (*InboxSender)(nil)

func validateParams(p Params) error {
	if p.WorkflowID == "" {
		return fmt.Errorf("workflow_id is required")
	}
	if p.Message == "" {
		return fmt.Errorf("message is required")
	}
	return nil
}
