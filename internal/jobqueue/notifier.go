package jobqueue

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier sends the pg_notify that wakes workers waiting on a Listener.
// It is used by the RPC layer after eventstore.Store.Emit returns
// successfully for organization.bootstrap.initiated — never by a
// projection handler, which has no access to anything outside its own
// transaction.
type Notifier struct {
	pool *pgxpool.Pool
}

// NewNotifier creates a Notifier backed by the shared connection pool.
func NewNotifier(pool *pgxpool.Pool) *Notifier {
	return &Notifier{pool: pool}
}

// NotifyPending announces a newly-seeded workflow_queue row.
func (n *Notifier) NotifyPending(ctx context.Context, rowID string) error {
	if _, err := n.pool.Exec(ctx, "SELECT pg_notify($1, $2)", PendingChannel, rowID); err != nil {
		return fmt.Errorf("notify %s for row %s: %w", PendingChannel, rowID, err)
	}
	return nil
}
