// Package reconcile defines the value objects and pure decision logic of the
// payment-notification reconciliation domain: fetched alert events, match
// candidates, pending operations awaiting a human decision, and the
// duplicate-detection signature.
package reconcile

import (
	"strconv"
	"strings"
)

// MatchType classifies how confidently a detected amount was associated with
// a ledger row.
type MatchType string

const (
	// MatchExact means the detected amount equals the invoice amount.
	MatchExact MatchType = "exact"

	// MatchTolerance means the detected amount fell within the backend's
	// configured tolerance of the invoice amount.
	MatchTolerance MatchType = "tolerance"
)

// MatchCandidate is a proposed association between a detected amount and an
// invoice/client, scored by the backend.  The engine treats candidates as
// opaque: it reconciles and acts on them but never re-scores them.
type MatchCandidate struct {
	AmountDetected float64   `json:"amount_detected"`
	InvoiceAmount  float64   `json:"invoice_amount"`
	Diff           float64   `json:"diff"`
	Client         string    `json:"client"`
	MatchType      MatchType `json:"match_type"`
	RowIndex       int       `json:"row_index"`
}

// Event is one fetched snapshot from the gateway describing a detected
// payment alert and its candidate matches.
type Event struct {
	// Subject is the alert email subject line.
	Subject string `json:"email_subject"`

	// ID is the gateway-assigned stable identifier.  It may be empty, in
	// which case Identity falls back to the content signature.
	ID string `json:"email_id,omitempty"`

	// Amounts are the detected payment amounts, in detection order.
	Amounts []float64 `json:"amounts"`

	// Dates optionally parallels Amounts with detected value dates.
	Dates []string `json:"dates,omitempty"`

	// Matches are the backend-scored candidates for this event.
	Matches []MatchCandidate `json:"matches"`
}

// Signature derives a content identity for an event that carries no stable
// id: the subject and the ordered amount sequence joined with "|" and ",".
// Reordering amounts therefore yields a different signature.  Two distinct
// real-world events that happen to share subject and amounts are
// indistinguishable; the stable id takes precedence whenever present.
func (e *Event) Signature() string {
	parts := make([]string, len(e.Amounts))
	for i, a := range e.Amounts {
		parts[i] = strconv.FormatFloat(a, 'f', -1, 64)
	}
	return e.Subject + "|" + strings.Join(parts, ",")
}

// Identity returns the stable gateway id when present, otherwise the content
// signature.  It is the value compared by IsNew and stored as the last-seen
// event id.
func (e *Event) Identity() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Signature()
}

// TotalDetected returns the sum of the detected amounts of the given match
// candidates.  Used for the auto-mode activity total.
func TotalDetected(matches []MatchCandidate) float64 {
	var sum float64
	for _, m := range matches {
		sum += m.AmountDetected
	}
	return sum
}

// PendingOperation is a queue entry awaiting a human confirm/cancel decision.
// Instances are owned exclusively by the engine's queue cache and are only
// ever replaced wholesale from a gateway fetch.
type PendingOperation struct {
	ID            int64    `json:"id"`
	Date          string   `json:"date"`
	AmountTND     float64  `json:"amount_tnd"`
	MatchedClient *string  `json:"matched_client"`
	NearestDiff   float64  `json:"nearest_diff"`
	Confidence    float64  `json:"confidence"`
	HoursLeft     float64  `json:"hours_left"`
}

// TotalPending returns the sum of the amounts of the given pending
// operations.  Used for the manual-mode activity total.
func TotalPending(ops []PendingOperation) float64 {
	var sum float64
	for _, op := range ops {
		sum += op.AmountTND
	}
	return sum
}

// PaymentLogEntry is one row of the applied-payments history kept by the
// backend ledger.
type PaymentLogEntry struct {
	Date      string  `json:"date"`
	Client    string  `json:"client"`
	Amount    float64 `json:"amount"`
	MatchType string  `json:"match_type"`
	Source    string  `json:"source"`
}

// HistoryFilter selects payment-log entries.  Zero values match everything.
type HistoryFilter struct {
	// Client is a case-insensitive substring match on the client name.
	Client string

	// MatchType keeps only entries with this exact match type ("" = all).
	MatchType string

	// Source keeps only entries from this source ("" = all).
	Source string
}

// FilterHistory returns the entries accepted by f, preserving order.
func FilterHistory(entries []PaymentLogEntry, f HistoryFilter) []PaymentLogEntry {
	out := make([]PaymentLogEntry, 0, len(entries))
	needle := strings.ToLower(f.Client)
	for _, e := range entries {
		if needle != "" && !strings.Contains(strings.ToLower(e.Client), needle) {
			continue
		}
		if f.MatchType != "" && e.MatchType != f.MatchType {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}
		out = append(out, e)
	}
	return out
}
