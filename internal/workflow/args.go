package workflow

import "github.com/riverqueue/river"

// BootstrapOrganizationArgs carries only the workflow_queue row id (claim-
// check pattern): the full request payload is fetched from the queue row
// inside Work, never embedded in the job args themselves.
type BootstrapOrganizationArgs struct {
	RowID string `json:"row_id"`
}

// Kind returns the job kind identifier for bootstrap execution.
func (BootstrapOrganizationArgs) Kind() string { return "bootstrap_organization" }

// InsertOpts keys uniqueness on the job args so a duplicate NOTIFY for a
// row already enqueued cannot start a second execution (spec.md §4.3's
// "at-most-once workflow start" guarantee).
func (BootstrapOrganizationArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       "bootstrap",
		MaxAttempts: 8,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}
