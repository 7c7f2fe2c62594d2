package engine

import (
	"context"

	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/monitoring/logging"
)

// RefreshQueue replaces the pending-operations cache with a fresh gateway
// fetch.  Concurrent callers (the poll tick, a just-confirmed operator)
// collapse into a single outbound request.  On failure the previous snapshot
// is kept; a transient refresh error must not blank the operator's queue.
func (e *Engine) RefreshQueue(ctx context.Context) error {
	_, err, _ := e.sf.Do("pending", func() (interface{}, error) {
		start := e.now()
		ops, err := e.gw.PendingOperations(ctx)
		e.metrics.GatewayLatency.WithLabelValues("pending").Observe(e.now().Sub(start).Seconds())
		if err != nil {
			e.logger.Warn("pending queue refresh failed", logging.Err(err))
			return nil, err
		}

		e.mu.Lock()
		e.pending = ops
		e.mu.Unlock()
		e.metrics.PendingDepth.Set(float64(len(ops)))
		return nil, nil
	})
	return err
}

// Pending returns a copy of the cached queue, in server order.  The first
// element is the next operation to decide.
func (e *Engine) Pending() []reconcile.PendingOperation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]reconcile.PendingOperation, len(e.pending))
	copy(out, e.pending)
	return out
}

// NextPending returns the head of the queue, or nil when it is empty.
func (e *Engine) NextPending() *reconcile.PendingOperation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.pending) == 0 {
		return nil
	}
	head := e.pending[0]
	return &head
}
