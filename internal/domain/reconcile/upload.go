package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion is a near-match proposal for an amount the backend could not
// associate with a ledger row.
type Suggestion struct {
	Client   string  `json:"client"`
	RowIndex int     `json:"row_index"`
	Amount   float64 `json:"amount"`
	Diff     float64 `json:"diff"`
}

// UnmatchedAmount is a detected amount with no accepted match, together with
// the backend's closest candidates.
type UnmatchedAmount struct {
	Amount      float64      `json:"amount"`
	Date        string       `json:"date,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// UploadOperation is one OCR-extracted operation from an uploaded image.
// RowIndex is nil when the backend found no ledger row for it.
type UploadOperation struct {
	AmountTND float64 `json:"amount_tnd"`
	Date      string  `json:"date,omitempty"`
	Client    string  `json:"client,omitempty"`
	RowIndex  *int    `json:"row_index"`
}

// UploadMeta carries the backend's extraction metadata for an upload batch.
type UploadMeta struct {
	MessageID string   `json:"message_id,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	OCRTotal  *float64 `json:"ocr_total,omitempty"`
}

// UploadResult is the gateway's response to a manual image upload.
type UploadResult struct {
	Meta       UploadMeta        `json:"meta"`
	Operations []UploadOperation `json:"operations"`
	Unmatched  []UnmatchedAmount `json:"unmatched"`
}

// ManualUploadRecord summarizes one manual upload batch for the session
// history.  Records live only for the process lifetime and are kept
// newest-first.
type ManualUploadRecord struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	ImagesCount int               `json:"images_count"`
	OpsCount    int               `json:"ops_count"`
	TotalAmount float64           `json:"total_amount"`
	Unmatched   []UnmatchedAmount `json:"unmatched"`
}

// NewManualUploadRecord derives the history record for an upload of
// imagesCount files that produced res.
//
// OpsCount counts only operations the backend matched to a ledger row.  The
// total is the server-reported OCR total when present; otherwise the sum of
// the matched operations' amounts.  The record id falls back to a generated
// uuid when the gateway supplied no message id.
func NewManualUploadRecord(imagesCount int, res *UploadResult, now time.Time) ManualUploadRecord {
	matched := 0
	var matchedSum float64
	for _, op := range res.Operations {
		if op.RowIndex != nil {
			matched++
			matchedSum += op.AmountTND
		}
	}

	total := matchedSum
	if res.Meta.OCRTotal != nil {
		total = *res.Meta.OCRTotal
	}

	id := res.Meta.MessageID
	if id == "" {
		id = "manual-" + uuid.NewString()
	}

	return ManualUploadRecord{
		ID:          id,
		Timestamp:   now,
		ImagesCount: imagesCount,
		OpsCount:    matched,
		TotalAmount: total,
		Unmatched:   res.Unmatched,
	}
}
