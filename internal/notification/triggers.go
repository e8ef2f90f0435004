package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// Triggers encapsulates the alert trigger points the bootstrap workflow
// raises (spec.md §4.4, §7). There is exactly one trigger today:
// compensation failure after a non-retryable activity error. It is kept as
// its own type, rather than inlined into the workflow package, so a future
// trigger point (e.g. stuck-in-processing detection) has somewhere to live
// alongside it.
type Triggers struct {
	sender Sender
}

// NewTriggers creates a new alert trigger service.
func NewTriggers(sender Sender) *Triggers {
	return &Triggers{sender: sender}
}

// OnCompensationFailed fires when a bootstrap workflow's compensation
// sequence itself errors out after a non-retryable activity failure —
// the one case spec.md §7 says requires operator intervention, since the
// saga has no further automatic recourse.
func (t *Triggers) OnCompensationFailed(ctx context.Context, workflowID, organizationID string, activityErr, compensationErr error) {
	err := t.sender.Send(ctx, Params{
		WorkflowID:     workflowID,
		OrganizationID: organizationID,
		Severity:       SeverityCritical,
		Message: fmt.Sprintf(
			"bootstrap workflow failed and compensation could not complete: activity error: %v; compensation error: %v",
			activityErr, compensationErr,
		),
	})
	if err != nil {
		logger.Error("failed to raise operator alert",
			zap.String("workflow_id", workflowID),
			zap.Error(err),
		)
	}
}
