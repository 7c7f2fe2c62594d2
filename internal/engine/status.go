package engine

import (
	"time"

	"github.com/colops/console/internal/domain/reconcile"
)

// Status is a point-in-time snapshot of the console state, assembled for the
// status endpoint and for operators' dashboards.
type Status struct {
	Mode          Mode       `json:"mode"`
	Running       bool       `json:"running"`
	LastCheck     *time.Time `json:"last_check,omitempty"`
	JustUpdated   bool       `json:"just_updated"`
	Error         string     `json:"error,omitempty"`
	StatusText    string     `json:"status_text"`
	LatestSubject string     `json:"latest_subject,omitempty"`

	// TotalAmount is mode-scoped: in auto mode the sum of the detected
	// amounts of the applied match set, in manual mode the sum of the
	// pending queue.
	TotalAmount float64 `json:"total_amount"`

	PendingCount int    `json:"pending_count"`
	ConfirmingID *int64 `json:"confirming_id,omitempty"`
	CancellingID *int64 `json:"cancelling_id,omitempty"`
	Uploading    bool   `json:"uploading"`
	UploadsCount int    `json:"uploads_count"`
}

// Status assembles a consistent snapshot under one lock acquisition.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.now()
	justUpdated := now.Before(e.justUpdatedUntil)

	s := Status{
		Mode:          e.mode,
		Running:       e.running,
		JustUpdated:   justUpdated,
		Error:         e.lastErr,
		LatestSubject: e.latestSubject,
		PendingCount:  len(e.pending),
		ConfirmingID:  e.confirmingID,
		CancellingID:  e.cancellingID,
		Uploading:     e.uploading,
		UploadsCount:  len(e.uploadHistory),
	}
	if !e.lastCheck.IsZero() {
		t := e.lastCheck
		s.LastCheck = &t
	}

	if e.mode == ModeAuto {
		s.TotalAmount = reconcile.TotalDetected(e.latestMatches)
	} else {
		s.TotalAmount = reconcile.TotalPending(e.pending)
	}

	s.StatusText = statusText(s)
	return s
}

// statusText renders the operator-facing one-liner for a snapshot.
func statusText(s Status) string {
	switch {
	case !s.Running:
		return "Listener stopped."
	case s.Error != "":
		return "Error while listening"
	case s.Mode == ModeAuto && s.JustUpdated:
		return "New bank alert processed!"
	case s.Mode == ModeAuto:
		return "Auto mode: listening for bank alerts…"
	case s.JustUpdated:
		return "Manual mode: new preview loaded."
	default:
		return "Manual mode: awaiting actions."
	}
}
