// Package reminders drives the invoice reminder workflow: it lists unpaid
// invoices with their computed escalation state and carries the operator's
// toggle, pause and send actions to the backend.
package reminders

import (
	"context"
	"sort"
	"time"

	"github.com/colops/console/internal/domain/escalation"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/monitoring/metrics"
	"github.com/colops/console/pkg/errors"
)

// InvoiceView pairs a backend invoice snapshot with its evaluation at the
// time of the listing.
type InvoiceView struct {
	escalation.Invoice
	Evaluation escalation.Evaluation `json:"evaluation"`
}

// Overview is the reminder monitor's full picture: tracked and untracked
// invoices, both sorted by invoice date descending then row index.
type Overview struct {
	Active      []InvoiceView `json:"active"`
	Inactive    []InvoiceView `json:"inactive"`
	TotalCount  int           `json:"total_count"`
	TotalAmount float64       `json:"total_amount"`
}

// Service implements the reminder operations.
type Service struct {
	gw      gateway.Gateway
	th      escalation.Thresholds
	audit   *kafka.Publisher
	metrics *metrics.Metrics
	logger  logging.Logger
	now     func() time.Time
}

// NewService builds a Service evaluating against th.
func NewService(
	gw gateway.Gateway,
	th escalation.Thresholds,
	audit *kafka.Publisher,
	m *metrics.Metrics,
	logger logging.Logger,
) *Service {
	return &Service{
		gw:      gw,
		th:      th,
		audit:   audit,
		metrics: m,
		logger:  logger.Named("reminders"),
		now:     time.Now,
	}
}

// List fetches the unpaid invoices and returns them evaluated and
// partitioned by tracking state.
func (s *Service) List(ctx context.Context) (*Overview, error) {
	invoices, err := s.gw.UnpaidInvoices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "listing unpaid invoices")
	}

	now := s.now()
	ov := &Overview{TotalCount: len(invoices)}
	for _, inv := range invoices {
		view := InvoiceView{Invoice: inv, Evaluation: escalation.Evaluate(&inv, s.th, now)}
		ov.TotalAmount += inv.Amount
		if inv.ReminderActive {
			ov.Active = append(ov.Active, view)
		} else {
			ov.Inactive = append(ov.Inactive, view)
		}
	}

	sortViews(ov.Active)
	sortViews(ov.Inactive)
	return ov, nil
}

// Toggle turns tracking on or off for the invoice at row and returns the
// refreshed overview.
func (s *Service) Toggle(ctx context.Context, row int, active bool) (*Overview, error) {
	err := s.gw.ToggleReminder(ctx, row, active)
	s.record(ctx, kafka.ActionReminderToggle, "toggle", row, err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "toggling reminder")
	}
	return s.List(ctx)
}

// Pause pauses or resumes tracking for the invoice at row and returns the
// refreshed overview.
func (s *Service) Pause(ctx context.Context, row int, paused bool) (*Overview, error) {
	err := s.gw.PauseReminder(ctx, row, paused)
	s.record(ctx, kafka.ActionReminderPause, "pause", row, err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "pausing reminder")
	}
	return s.List(ctx)
}

// Send dispatches the awaited reminder stage for the invoice at row.  The
// send is refused locally unless the current evaluation allows it, so an
// operator acting on a stale screen cannot fire a reminder early.
func (s *Service) Send(ctx context.Context, row int) (*Overview, error) {
	invoices, err := s.gw.UnpaidInvoices(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading invoice before send")
	}

	inv := findByRow(invoices, row)
	if inv == nil {
		return nil, errors.New(errors.ErrCodeInvoiceNotTracked, "invoice not found").
			WithDetail("no unpaid invoice at the requested row")
	}

	ev := escalation.Evaluate(inv, s.th, s.now())
	if ev.State == escalation.StatePaused {
		return nil, errors.New(errors.ErrCodeReminderPaused, "reminders are paused for this invoice")
	}
	if !ev.CanSend {
		return nil, errors.New(errors.ErrCodeReminderNotDue, "reminder is not due yet").
			WithDetail(ev.Label)
	}

	err = s.gw.SendReminder(ctx, row)
	s.record(ctx, kafka.ActionReminderSend, "send", row, err)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "sending reminder")
	}

	s.logger.Info("reminder sent",
		logging.Int("row", row),
		logging.Int("stage", ev.Stage),
		logging.String("client", inv.Client),
	)
	return s.List(ctx)
}

func (s *Service) record(ctx context.Context, auditAction, action string, row int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		s.logger.Warn("reminder action failed",
			logging.String("action", action),
			logging.Int("row", row),
			logging.Err(err),
		)
	}
	s.metrics.ReminderActions.WithLabelValues(action, result).Inc()
	s.audit.Publish(ctx, auditAction, err == nil, map[string]interface{}{"row": row})
}

func findByRow(invoices []escalation.Invoice, row int) *escalation.Invoice {
	for i := range invoices {
		if invoices[i].RowIndex == row {
			return &invoices[i]
		}
	}
	return nil
}

// sortViews orders by invoice date descending, breaking ties on row index so
// the order is stable across refreshes.  Unparseable dates sort last.
func sortViews(views []InvoiceView) {
	sort.SliceStable(views, func(i, j int) bool {
		ti, tj := parseInvoiceDate(views[i].InvoiceDate), parseInvoiceDate(views[j].InvoiceDate)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return views[i].RowIndex < views[j].RowIndex
	})
}

var invoiceDateLayouts = []string{time.RFC3339, "2006-01-02", "02/01/2006"}

func parseInvoiceDate(s string) time.Time {
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
