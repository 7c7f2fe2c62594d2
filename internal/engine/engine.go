// Package engine hosts the reconciliation loop of the operations console: it
// polls the gateway for payment alerts, merges new events into the console
// state according to the active mode, keeps the pending-operations queue
// fresh, and carries the operator's confirm/cancel/upload actions.
package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/monitoring/metrics"
	"github.com/colops/console/internal/state"
)

// Mode selects how fetched alerts are treated.
type Mode string

const (
	// ModeAuto lets the backend apply exact matches to the ledger as part
	// of each fetch.
	ModeAuto Mode = "auto"

	// ModeManual previews alerts without applying anything; every ledger
	// write goes through an explicit confirm.
	ModeManual Mode = "manual"
)

// Engine owns the console's reconciliation state.  All exported methods are
// safe for concurrent use; the poll loop runs in a single goroutine started
// by Start.
type Engine struct {
	cfg     config.EngineConfig
	gw      gateway.Gateway
	store   state.Store
	audit   *kafka.Publisher
	metrics *metrics.Metrics
	logger  logging.Logger
	now     func() time.Time

	sf singleflight.Group

	mu               sync.RWMutex
	running          bool
	mode             Mode
	lastSeenEventID  string
	latestSubject    string
	latestMatches    []reconcile.MatchCandidate
	pending          []reconcile.PendingOperation
	confirmingID     *int64
	cancellingID     *int64
	uploading        bool
	justUpdatedUntil time.Time
	lastCheck        time.Time
	lastErr          string
	uploadHistory    []reconcile.ManualUploadRecord
	payments         []reconcile.PaymentLogEntry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New builds an Engine and restores persisted state: the saved mode (default
// auto) and the last-applied match set.  Restore failures are silent; the
// store is best-effort by contract.
func New(
	cfg config.EngineConfig,
	gw gateway.Gateway,
	store state.Store,
	audit *kafka.Publisher,
	m *metrics.Metrics,
	logger logging.Logger,
) *Engine {
	e := &Engine{
		cfg:     cfg,
		gw:      gw,
		store:   store,
		audit:   audit,
		metrics: m,
		logger:  logger.Named("engine"),
		now:     time.Now,
		mode:    ModeAuto,
	}

	ctx := context.Background()
	if saved, err := store.Get(ctx, state.KeyAutoMode); err == nil && saved == state.ModeOff {
		e.mode = ModeManual
	}
	var matches []reconcile.MatchCandidate
	if state.GetJSON(ctx, store, state.KeyLatestMatches, &matches) {
		e.latestMatches = matches
	}
	return e
}

// Start launches the poll loop.  Calling Start on a running engine is a
// no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	stopCh := e.stopCh
	e.mu.Unlock()

	e.logger.Info("starting reconciliation loop",
		logging.Duration("poll_interval", e.cfg.PollInterval),
		logging.Duration("history_interval", e.cfg.HistoryInterval),
		logging.String("mode", string(e.Mode())),
	)

	e.wg.Add(1)
	go e.run(ctx, stopCh)
}

// Stop halts the poll loop and waits for it to exit.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.wg.Wait()
	e.logger.Info("reconciliation loop stopped")
}

func (e *Engine) run(ctx context.Context, stopCh <-chan struct{}) {
	defer e.wg.Done()

	pollTicker := time.NewTicker(e.cfg.PollInterval)
	defer pollTicker.Stop()
	historyTicker := time.NewTicker(e.cfg.HistoryInterval)
	defer historyTicker.Stop()

	// Prime both caches immediately so the console is useful before the
	// first tick fires.
	e.pollOnce(ctx)
	e.refreshHistory(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			e.pollOnce(ctx)
		case <-historyTicker.C:
			e.refreshHistory(ctx)
		}
	}
}

// pollOnce runs one reconciliation cycle: fetch the latest alert for the
// active mode, merge it if new, then refresh the pending queue.  The merge
// always happens before the queue refresh.  A fetch failure records the
// error and ends the cycle; the next tick retries.
func (e *Engine) pollOnce(ctx context.Context) {
	mode := e.Mode()

	e.mu.Lock()
	e.lastCheck = e.now()
	e.lastErr = ""
	e.mu.Unlock()

	var (
		ev  *reconcile.Event
		err error
	)
	start := e.now()
	if mode == ModeAuto {
		ev, err = e.gw.LatestAutoEvent(ctx)
	} else {
		ev, err = e.gw.LatestPreviewEvent(ctx)
	}
	e.metrics.GatewayLatency.WithLabelValues("latest_event").Observe(e.now().Sub(start).Seconds())

	if err != nil {
		e.mu.Lock()
		e.lastErr = "error fetching latest bank alert"
		e.mu.Unlock()
		e.metrics.PollCycles.WithLabelValues("error").Inc()
		e.logger.Warn("alert fetch failed", logging.String("mode", string(mode)), logging.Err(err))
		return
	}

	if ev != nil {
		e.mergeEvent(ctx, mode, ev)
	}

	if err := e.RefreshQueue(ctx); err != nil {
		e.mu.Lock()
		e.lastErr = "error fetching pending operations"
		e.mu.Unlock()
		e.metrics.PollCycles.WithLabelValues("error").Inc()
		return
	}
	e.metrics.PollCycles.WithLabelValues("ok").Inc()
}

// mergeEvent applies a fetched event if its identity differs from the last
// seen one.  The match set is only replaced when the incoming set is
// non-empty, so a quiet refetch never blanks the operator's view.
func (e *Engine) mergeEvent(ctx context.Context, mode Mode, ev *reconcile.Event) {
	e.mu.Lock()
	if !reconcile.IsNew(ev, e.lastSeenEventID) {
		e.mu.Unlock()
		return
	}
	e.lastSeenEventID = ev.Identity()
	e.latestSubject = ev.Subject
	replaced := false
	if len(ev.Matches) > 0 {
		e.latestMatches = ev.Matches
		replaced = true
	}
	e.justUpdatedUntil = e.now().Add(e.cfg.JustUpdatedTTL)
	matches := e.latestMatches
	e.mu.Unlock()

	if replaced {
		if err := state.SetJSON(ctx, e.store, state.KeyLatestMatches, matches); err != nil {
			e.logger.Warn("persisting match set failed", logging.Err(err))
		}
	}

	e.metrics.EventsApplied.WithLabelValues(string(mode)).Inc()
	e.audit.Publish(ctx, kafka.ActionMatchesApplied, true, map[string]interface{}{
		"mode":    string(mode),
		"subject": ev.Subject,
		"matches": len(ev.Matches),
	})
	e.logger.Info("new alert merged",
		logging.String("mode", string(mode)),
		logging.String("subject", ev.Subject),
		logging.Int("matches", len(ev.Matches)),
	)
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// SetMode switches between auto and manual.  The switch takes effect before
// the method returns: the last-seen event id is reset so the next cycle
// re-evaluates the latest alert under the new mode, and the choice is
// persisted.  Switching to the current mode is a no-op.
func (e *Engine) SetMode(ctx context.Context, mode Mode) {
	e.mu.Lock()
	if e.mode == mode {
		e.mu.Unlock()
		return
	}
	e.mode = mode
	e.lastSeenEventID = ""
	e.mu.Unlock()

	sentinel := state.ModeOn
	if mode == ModeManual {
		sentinel = state.ModeOff
	}
	if err := e.store.Set(ctx, state.KeyAutoMode, sentinel); err != nil {
		e.logger.Warn("persisting mode failed", logging.Err(err))
	}

	e.audit.Publish(ctx, kafka.ActionModeSwitch, true, map[string]interface{}{"mode": string(mode)})
	e.logger.Info("mode switched", logging.String("mode", string(mode)))
}

// LatestMatches returns a copy of the last applied match set.
func (e *Engine) LatestMatches() []reconcile.MatchCandidate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]reconcile.MatchCandidate, len(e.latestMatches))
	copy(out, e.latestMatches)
	return out
}
