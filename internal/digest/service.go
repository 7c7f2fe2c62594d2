// Package digest exposes the daily collection digest: the backend renders a
// summary of outstanding client balances and mails it on a schedule; this
// service lets an operator inspect the schedule, change it, preview the next
// message and trigger an immediate send.
package digest

import (
	"context"

	domain "github.com/colops/console/internal/domain/digest"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/monitoring/metrics"
	"github.com/colops/console/pkg/errors"
)

// DefaultSchedule is assumed while the backend has no schedule stored yet.
var DefaultSchedule = domain.Schedule{
	Enabled:  true,
	Hour:     17,
	Minute:   0,
	Timezone: "Africa/Tunis",
}

// Service implements the digest operations against the ledger gateway.
type Service struct {
	gw      gateway.Gateway
	audit   *kafka.Publisher
	metrics *metrics.Metrics
	logger  logging.Logger
}

// NewService builds a Service.
func NewService(gw gateway.Gateway, audit *kafka.Publisher, m *metrics.Metrics, logger logging.Logger) *Service {
	return &Service{
		gw:      gw,
		audit:   audit,
		metrics: m,
		logger:  logger.Named("digest"),
	}
}

// Schedule returns the stored delivery schedule, or DefaultSchedule when the
// backend has none.
func (s *Service) Schedule(ctx context.Context) (*domain.Schedule, error) {
	sched, err := s.gw.DigestSchedule(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading digest schedule")
	}
	if sched == nil {
		def := DefaultSchedule
		return &def, nil
	}
	return sched, nil
}

// UpdateSchedule validates and stores a new delivery schedule, returning the
// schedule as stored.
func (s *Service) UpdateSchedule(ctx context.Context, sched domain.Schedule) (*domain.Schedule, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	err := s.gw.UpdateDigestSchedule(ctx, sched)
	s.record(ctx, kafka.ActionDigestSchedule, "schedule", err, map[string]interface{}{
		"enabled": sched.Enabled,
		"hour":    sched.Hour,
		"minute":  sched.Minute,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "updating digest schedule")
	}
	return s.Schedule(ctx)
}

// Preview fetches the rendered digest with per-month totals filled in.
func (s *Service) Preview(ctx context.Context) (*domain.Preview, error) {
	preview, err := s.gw.DigestPreview(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "loading digest preview")
	}
	preview.FillTotals()
	return preview, nil
}

// SendNow dispatches the digest immediately and returns the refreshed
// preview, so the caller sees the post-send picture.
func (s *Service) SendNow(ctx context.Context) (*domain.Preview, error) {
	err := s.gw.SendDigestNow(ctx)
	s.record(ctx, kafka.ActionDigestSend, "send", err, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "sending digest")
	}

	s.logger.Info("digest sent")
	return s.Preview(ctx)
}

func (s *Service) record(ctx context.Context, auditAction, action string, err error, detail map[string]interface{}) {
	result := "ok"
	if err != nil {
		result = "error"
		s.logger.Warn("digest action failed",
			logging.String("action", action),
			logging.Err(err),
		)
	}
	s.metrics.DigestActions.WithLabelValues(action, result).Inc()
	s.audit.Publish(ctx, auditAction, err == nil, detail)
}
