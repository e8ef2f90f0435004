package projection

import (
	"context"
	"fmt"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/event"
)

// rebuildBatchSize bounds how many events Rebuild loads per page, so a full
// replay never holds the entire event log in memory at once.
const rebuildBatchSize = 500

// Rebuild implements rebuild_projections() (spec.md §4.2): truncate every
// projection table, then replay the full event log in sequence_number order
// through this Router. Handlers are idempotent by construction, so a replay
// that is interrupted partway and restarted from scratch converges to the
// same state.
func (r *Router) Rebuild(ctx context.Context, client *ent.Client) error {
	if err := truncateProjections(ctx, client); err != nil {
		return fmt.Errorf("truncate projections: %w", err)
	}

	var lastSeq int64
	for {
		batch, err := client.Event.Query().
			Where(event.SequenceNumberGT(lastSeq)).
			Order(ent.Asc(event.FieldSequenceNumber)).
			Limit(rebuildBatchSize).
			All(ctx)
		if err != nil {
			return fmt.Errorf("load event batch after sequence_number %d: %w", lastSeq, err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, ev := range batch {
			if err := r.replayOne(ctx, client, ev); err != nil {
				return fmt.Errorf("replay event %s (seq %d): %w", ev.ID, ev.SequenceNumber, err)
			}
			lastSeq = ev.SequenceNumber
		}
	}
}

func (r *Router) replayOne(ctx context.Context, client *ent.Client, ev *ent.Event) error {
	tx, err := client.Tx(ctx)
	if err != nil {
		return err
	}
	if err := r.Dispatch(ctx, tx, ev); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// truncateProjections clears every projection table Rebuild repopulates.
// The event log itself (ent.Event) is never touched here.
func truncateProjections(ctx context.Context, client *ent.Client) error {
	if _, err := client.Organization.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Contact.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Address.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Phone.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.OrgContactLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.OrgAddressLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.OrgPhoneLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.ContactAddressLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.ContactPhoneLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.PhoneAddressLink.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.User.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.UserAddress.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.UserPhone.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.UserRoleAssignment.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Role.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Permission.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.RolePermission.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Invitation.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.WorkflowQueue.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.Schedule.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.ScheduleAssignment.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.AccessGrant.Delete().Exec(ctx); err != nil {
		return err
	}
	if _, err := client.ImpersonationSession.Delete().Exec(ctx); err != nil {
		return err
	}
	return nil
}
