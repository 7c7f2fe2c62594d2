// Package kafka publishes console audit events.  Every operator-visible
// mutation (confirm, cancel, upload, mode switch, reminder action) emits one
// record; downstream consumers reconstruct who did what to the ledger and
// when.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/monitoring/logging"
)

// Audit actions emitted by the engine and the reminder service.
const (
	ActionConfirm        = "operation.confirm"
	ActionCancel         = "operation.cancel"
	ActionUpload         = "upload.processed"
	ActionModeSwitch     = "mode.switch"
	ActionMatchesApplied = "matches.applied"
	ActionReminderToggle = "reminder.toggle"
	ActionReminderPause  = "reminder.pause"
	ActionReminderSend   = "reminder.send"
	ActionDigestSchedule = "digest.schedule"
	ActionDigestSend     = "digest.send"
)

// Event is the audit record serialized to the topic.
type Event struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Success   bool                   `json:"success"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
}

// Publisher writes audit events.  The zero-value (nil) Publisher is valid and
// drops everything, so callers never have to branch on whether auditing is
// configured.
type Publisher struct {
	writer *kafkago.Writer
	logger logging.Logger
}

// NewPublisher builds a Publisher for cfg, or nil when no brokers are
// configured.  Publishing is fire-and-forget: failures are logged, never
// propagated, because an audit outage must not block ledger operations.
func NewPublisher(cfg config.KafkaConfig, logger logging.Logger) *Publisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			BatchTimeout: cfg.BatchTimeout,
			Async:        true,
		},
		logger: logger.Named("audit"),
	}
}

// Publish emits one audit event.  Safe on a nil receiver.
func (p *Publisher) Publish(ctx context.Context, action string, success bool, detail map[string]interface{}) {
	if p == nil {
		return
	}
	ev := Event{
		ID:        uuid.NewString(),
		Action:    action,
		Timestamp: time.Now().UTC(),
		Success:   success,
		Detail:    detail,
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("audit event marshal failed", logging.Err(err))
		return
	}
	msg := kafkago.Message{Key: []byte(action), Value: raw}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("audit publish failed", logging.String("action", action), logging.Err(err))
	}
}

// Close flushes and releases the writer.  Safe on a nil receiver.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
