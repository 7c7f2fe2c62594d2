// Package escalation computes the reminder escalation state of an unpaid
// invoice as a pure function of its stored timestamps, its pause flag, and
// the current wall-clock time.
package escalation

import "time"

// Invoice is the backend's snapshot of an unpaid invoice under (or eligible
// for) reminder tracking.  The evaluator only reads it; all mutation happens
// server-side.
type Invoice struct {
	RowIndex      int     `json:"row_index"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	Client        string  `json:"client"`
	ClientEmail   string  `json:"client_email,omitempty"`
	InvoiceDate   string  `json:"invoice_date,omitempty"`
	Amount        float64 `json:"amount"`

	// ReminderActive reports whether the invoice is under active tracking.
	ReminderActive bool `json:"reminder_active"`

	// CanActivate is false when no recipient email is configured, which
	// blocks activation entirely.
	CanActivate bool `json:"can_activate"`

	// Paused suspends evaluation regardless of elapsed time.
	Paused bool `json:"reminder_paused"`

	// ReminderStart anchors the first stage; nil until tracking starts.
	ReminderStart *time.Time `json:"reminder_start,omitempty"`

	// FirstReminderAt/SecondReminderAt/ThirdReminderAt record when each
	// stage's email was actually sent; nil until then.
	FirstReminderAt  *time.Time `json:"first_reminder_at,omitempty"`
	SecondReminderAt *time.Time `json:"second_reminder_at,omitempty"`
	ThirdReminderAt  *time.Time `json:"third_reminder_at,omitempty"`

	// To and Cc are the configured reminder recipients.
	To []string `json:"reminder_to,omitempty"`
	Cc []string `json:"reminder_cc,omitempty"`
}

// Thresholds configures the per-stage delays, in days.  The first value
// counts from ReminderStart; the second and third count from the previous
// stage's sent timestamp.
type Thresholds struct {
	FirstDays  int
	SecondDays int
	ThirdDays  int
}

// delay returns the configured day count for the given 1-based stage.
func (t Thresholds) delay(stage int) int {
	switch stage {
	case 1:
		return t.FirstDays
	case 2:
		return t.SecondDays
	default:
		return t.ThirdDays
	}
}
