package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colops/console/pkg/errors"
)

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name    string
		sched   Schedule
		wantErr bool
	}{
		{"default delivery time", Schedule{Enabled: true, Hour: 17, Minute: 0}, false},
		{"midnight", Schedule{Hour: 0, Minute: 0}, false},
		{"last minute of day", Schedule{Hour: 23, Minute: 59}, false},
		{"hour too large", Schedule{Hour: 24}, true},
		{"negative hour", Schedule{Hour: -1}, true},
		{"minute too large", Schedule{Hour: 12, Minute: 60}, true},
		{"negative minute", Schedule{Hour: 12, Minute: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sched.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFillTotals_SumsItemsWhenUnset(t *testing.T) {
	p := &Preview{PendingByMonth: map[string]MonthBucket{
		"2025-05": {Items: []PendingItem{{Client: "Acme", Amount: 100.5}, {Client: "Beta", Amount: 49.5}}},
		"2025-06": {Items: []PendingItem{{Client: "Acme", Amount: 10}}, Total: 999},
	}}

	p.FillTotals()

	assert.InDelta(t, 150, p.PendingByMonth["2025-05"].Total, 1e-9)
	// A backend-reported total is kept as is.
	assert.InDelta(t, 999, p.PendingByMonth["2025-06"].Total, 1e-9)
}

func TestMonths_SortedAscending(t *testing.T) {
	p := &Preview{PendingByMonth: map[string]MonthBucket{
		"2025-06": {},
		"2024-12": {},
		"2025-01": {},
	}}
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-06"}, p.Months())
}

func TestMonths_EmptyPreview(t *testing.T) {
	p := &Preview{}
	assert.Empty(t, p.Months())
}
