package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// PendingChannel is the Postgres NOTIFY channel carrying newly-pending
// workflow_queue row ids (spec.md §4.3 step 1).
const PendingChannel = "workflow_queue_pending"

// Listener holds a dedicated LISTEN connection and delivers one signal per
// NOTIFY on PendingChannel. The payload carries the newly pending row's id;
// subscribers re-derive state from the database rather than trusting the
// payload alone, since a notification can be delivered more than once or
// arrive after the row has already been claimed by another worker.
type Listener struct {
	connString string

	mu   sync.Mutex
	conn *pgx.Conn

	notify chan string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewListener creates a Listener. Call Start before reading from Notify.
func NewListener(connString string) *Listener {
	return &Listener{
		connString: connString,
		notify:     make(chan string, 64),
	}
}

// Notify returns the channel that receives each NOTIFY payload (a
// workflow_queue row id) delivered on PendingChannel.
func (l *Listener) Notify() <-chan string {
	return l.notify
}

// Start opens the dedicated LISTEN connection and begins the receive loop.
func (l *Listener) Start(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PendingChannel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	loopCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.receiveLoop(loopCtx)
	return nil
}

// Stop cancels the receive loop and closes the LISTEN connection.
func (l *Listener) Stop(ctx context.Context) {
	if l.cancel != nil {
		l.cancel()
	}
	if l.done != nil {
		<-l.done
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
}

func (l *Listener) receiveLoop(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		l.mu.Lock()
		conn := l.conn
		l.mu.Unlock()
		if conn == nil {
			l.reconnect(ctx)
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		n, err := conn.WaitForNotification(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if waitCtx.Err() != nil {
				continue
			}
			logger.Error("workflow queue NOTIFY receive error", zap.Error(err))
			l.reconnect(ctx)
			continue
		}

		select {
		case l.notify <- n.Payload:
		default:
			logger.Warn("workflow queue notify channel full, dropping signal; fallback poll will recover")
		}
	}
}

func (l *Listener) reconnect(ctx context.Context) {
	l.mu.Lock()
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
	l.mu.Unlock()

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		conn, err := pgx.Connect(ctx, l.connString)
		if err != nil {
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PendingChannel}.Sanitize()); err != nil {
			_ = conn.Close(ctx)
			backoff = min(backoff*2, 30*time.Second)
			continue
		}

		l.mu.Lock()
		l.conn = conn
		l.mu.Unlock()
		logger.Info("workflow queue listener reconnected")
		return
	}
}
