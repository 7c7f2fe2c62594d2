package engine

import (
	"context"

	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/monitoring/logging"
)

// refreshHistory reloads the applied-payments log.  It runs on its own
// slower cadence; a failure keeps the previous entries.
func (e *Engine) refreshHistory(ctx context.Context) {
	start := e.now()
	entries, err := e.gw.PaymentsLog(ctx, e.cfg.HistoryLimit)
	e.metrics.GatewayLatency.WithLabelValues("payments_log").Observe(e.now().Sub(start).Seconds())
	if err != nil {
		e.logger.Warn("payments log refresh failed", logging.Err(err))
		return
	}

	e.mu.Lock()
	e.payments = entries
	e.mu.Unlock()
}

// History returns the cached payments log filtered by f, preserving the
// backend's order.
func (e *Engine) History(f reconcile.HistoryFilter) []reconcile.PaymentLogEntry {
	e.mu.RLock()
	entries := make([]reconcile.PaymentLogEntry, len(e.payments))
	copy(entries, e.payments)
	e.mu.RUnlock()

	return reconcile.FilterHistory(entries, f)
}
