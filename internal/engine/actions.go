package engine

import (
	"context"

	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/pkg/errors"
)

// Confirm applies the pending operation id to the ledger.  At most one
// confirm is in flight at any time; a second call arriving while one runs is
// rejected locally without touching the gateway.  Whatever the outcome, the
// in-flight marker clears and the queue is refreshed, so a stale id resolved
// elsewhere disappears from the console on its own.
func (e *Engine) Confirm(ctx context.Context, id int64) error {
	e.mu.Lock()
	if e.confirmingID != nil {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeActionInFlight, "a confirm is already in flight")
	}
	e.confirmingID = &id
	e.mu.Unlock()

	err := e.gw.Confirm(ctx, id)

	e.mu.Lock()
	e.confirmingID = nil
	e.mu.Unlock()

	e.finishDecision(ctx, kafka.ActionConfirm, "confirm", id, err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "confirming operation")
	}
	return nil
}

// Cancel discards the pending operation id.  Same discipline as Confirm,
// with its own independent in-flight marker.
func (e *Engine) Cancel(ctx context.Context, id int64) error {
	e.mu.Lock()
	if e.cancellingID != nil {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeActionInFlight, "a cancel is already in flight")
	}
	e.cancellingID = &id
	e.mu.Unlock()

	err := e.gw.Cancel(ctx, id)

	e.mu.Lock()
	e.cancellingID = nil
	e.mu.Unlock()

	e.finishDecision(ctx, kafka.ActionCancel, "cancel", id, err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "cancelling operation")
	}
	return nil
}

// finishDecision records the outcome of a confirm/cancel and refreshes the
// queue regardless of it.
func (e *Engine) finishDecision(ctx context.Context, auditAction, action string, id int64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		e.logger.Warn("operation decision failed",
			logging.String("action", action),
			logging.Int64("id", id),
			logging.Err(err),
		)
	}
	e.metrics.Decisions.WithLabelValues(action, result).Inc()
	e.audit.Publish(ctx, auditAction, err == nil, map[string]interface{}{"id": id})

	if refreshErr := e.RefreshQueue(ctx); refreshErr != nil {
		e.logger.Warn("queue refresh after decision failed", logging.Err(refreshErr))
	}
}
