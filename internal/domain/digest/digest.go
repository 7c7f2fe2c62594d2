// Package digest defines the value objects of the daily collection digest:
// the delivery schedule and the pending-by-month preview the backend renders
// for it.
package digest

import (
	"sort"

	"github.com/colops/console/pkg/errors"
)

// Schedule is the digest delivery configuration held by the backend.
type Schedule struct {
	Enabled  bool   `json:"enabled"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Timezone string `json:"timezone,omitempty"`
}

// Validate rejects out-of-range delivery times before they reach the wire.
func (s Schedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return errors.InvalidParam("digest hour must be between 0 and 23")
	}
	if s.Minute < 0 || s.Minute > 59 {
		return errors.InvalidParam("digest minute must be between 0 and 59")
	}
	return nil
}

// PendingItem is one outstanding client balance inside a month bucket.
type PendingItem struct {
	Client string  `json:"client"`
	Amount float64 `json:"amount"`
}

// MonthBucket groups the pending items of one month.  Total is derived from
// the items when the backend leaves it unset.
type MonthBucket struct {
	Items []PendingItem `json:"items"`
	Total float64       `json:"total"`
}

// Preview is the rendered digest: the message text and the pending amounts
// bucketed by month key ("2025-06").
type Preview struct {
	Text           string                 `json:"text"`
	PendingByMonth map[string]MonthBucket `json:"pending_by_month"`
}

// FillTotals computes each bucket's total from its items wherever the backend
// reported none.  Buckets that already carry a total keep it.
func (p *Preview) FillTotals() {
	for month, bucket := range p.PendingByMonth {
		if bucket.Total != 0 {
			continue
		}
		var sum float64
		for _, it := range bucket.Items {
			sum += it.Amount
		}
		bucket.Total = sum
		p.PendingByMonth[month] = bucket
	}
}

// Months returns the bucket keys in ascending order, so callers can render
// the preview deterministically.
func (p *Preview) Months() []string {
	months := make([]string, 0, len(p.PendingByMonth))
	for m := range p.PendingByMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}
