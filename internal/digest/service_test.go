package digest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/colops/console/internal/domain/digest"
	"github.com/colops/console/internal/domain/escalation"
	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/monitoring/metrics"
	"github.com/colops/console/pkg/errors"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) LatestAutoEvent(ctx context.Context) (*reconcile.Event, error) {
	args := m.Called(ctx)
	ev, _ := args.Get(0).(*reconcile.Event)
	return ev, args.Error(1)
}

func (m *mockGateway) LatestPreviewEvent(ctx context.Context) (*reconcile.Event, error) {
	args := m.Called(ctx)
	ev, _ := args.Get(0).(*reconcile.Event)
	return ev, args.Error(1)
}

func (m *mockGateway) PendingOperations(ctx context.Context) ([]reconcile.PendingOperation, error) {
	args := m.Called(ctx)
	ops, _ := args.Get(0).([]reconcile.PendingOperation)
	return ops, args.Error(1)
}

func (m *mockGateway) Confirm(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) Cancel(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) Upload(ctx context.Context, files []gateway.UploadFile) (*reconcile.UploadResult, error) {
	args := m.Called(ctx, files)
	res, _ := args.Get(0).(*reconcile.UploadResult)
	return res, args.Error(1)
}

func (m *mockGateway) PaymentsLog(ctx context.Context, limit int) ([]reconcile.PaymentLogEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]reconcile.PaymentLogEntry)
	return entries, args.Error(1)
}

func (m *mockGateway) UnpaidInvoices(ctx context.Context) ([]escalation.Invoice, error) {
	args := m.Called(ctx)
	invs, _ := args.Get(0).([]escalation.Invoice)
	return invs, args.Error(1)
}

func (m *mockGateway) ToggleReminder(ctx context.Context, row int, active bool) error {
	return m.Called(ctx, row, active).Error(0)
}

func (m *mockGateway) PauseReminder(ctx context.Context, row int, paused bool) error {
	return m.Called(ctx, row, paused).Error(0)
}

func (m *mockGateway) SendReminder(ctx context.Context, row int) error {
	return m.Called(ctx, row).Error(0)
}

func (m *mockGateway) DigestSchedule(ctx context.Context) (*domain.Schedule, error) {
	args := m.Called(ctx)
	sched, _ := args.Get(0).(*domain.Schedule)
	return sched, args.Error(1)
}

func (m *mockGateway) UpdateDigestSchedule(ctx context.Context, s domain.Schedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockGateway) DigestPreview(ctx context.Context) (*domain.Preview, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*domain.Preview)
	return p, args.Error(1)
}

func (m *mockGateway) SendDigestNow(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestService(gw gateway.Gateway) *Service {
	return NewService(gw, nil, metrics.NewUnregistered(), logging.NewNop())
}

func TestSchedule_FallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("DigestSchedule", ctx).Return((*domain.Schedule)(nil), nil)

	sched, err := newTestService(gw).Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, *sched)
}

func TestSchedule_ReturnsStored(t *testing.T) {
	ctx := context.Background()
	stored := &domain.Schedule{Enabled: false, Hour: 8, Minute: 30, Timezone: "Europe/Paris"}
	gw := new(mockGateway)
	gw.On("DigestSchedule", ctx).Return(stored, nil)

	sched, err := newTestService(gw).Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, sched)
}

func TestUpdateSchedule_RejectsBadTimeLocally(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)

	_, err := newTestService(gw).UpdateSchedule(ctx, domain.Schedule{Hour: 24})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	gw.AssertNotCalled(t, "UpdateDigestSchedule", ctx, mock.Anything)
}

func TestUpdateSchedule_StoresAndReloads(t *testing.T) {
	ctx := context.Background()
	next := domain.Schedule{Enabled: true, Hour: 9, Minute: 15}
	gw := new(mockGateway)
	gw.On("UpdateDigestSchedule", ctx, next).Return(nil)
	gw.On("DigestSchedule", ctx).Return(&next, nil)

	sched, err := newTestService(gw).UpdateSchedule(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, next, *sched)
	gw.AssertExpectations(t)
}

func TestPreview_FillsMonthTotals(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("DigestPreview", ctx).Return(&domain.Preview{
		Text: "2 clients pending",
		PendingByMonth: map[string]domain.MonthBucket{
			"2025-05": {Items: []domain.PendingItem{{Client: "Acme", Amount: 120}, {Client: "Beta", Amount: 80}}},
		},
	}, nil)

	preview, err := newTestService(gw).Preview(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 200, preview.PendingByMonth["2025-05"].Total, 1e-9)
}

func TestSendNow_ReturnsRefreshedPreview(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("SendDigestNow", ctx).Return(nil)
	gw.On("DigestPreview", ctx).Return(&domain.Preview{Text: "nothing pending"}, nil)

	preview, err := newTestService(gw).SendNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nothing pending", preview.Text)
	gw.AssertExpectations(t)
}

func TestSendNow_FailureDoesNotReload(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("SendDigestNow", ctx).Return(errors.New(errors.ErrCodeGatewayUnavailable, "down"))

	_, err := newTestService(gw).SendNow(ctx)
	require.Error(t, err)
	gw.AssertNotCalled(t, "DigestPreview", ctx)
}
