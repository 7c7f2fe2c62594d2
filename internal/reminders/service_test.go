package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/colops/console/internal/domain/digest"
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

func (m *mockGateway) DigestSchedule(ctx context.Context) (*digest.Schedule, error) {
	args := m.Called(ctx)
	sched, _ := args.Get(0).(*digest.Schedule)
	return sched, args.Error(1)
}

func (m *mockGateway) UpdateDigestSchedule(ctx context.Context, s digest.Schedule) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockGateway) DigestPreview(ctx context.Context) (*digest.Preview, error) {
	args := m.Called(ctx)
	p, _ := args.Get(0).(*digest.Preview)
	return p, args.Error(1)
}

func (m *mockGateway) SendDigestNow(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var thresholds = escalation.Thresholds{FirstDays: 30, SecondDays: 15, ThirdDays: 15}

func newTestService(gw gateway.Gateway) *Service {
	return NewService(gw, thresholds, nil, metrics.NewUnregistered(), logging.NewNop())
}

func tp(t time.Time) *time.Time { return &t }

func TestList_PartitionsAndSorts(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 1, Client: "Old Active", InvoiceDate: "2025-01-10", Amount: 100, ReminderActive: true},
		{RowIndex: 2, Client: "New Active", InvoiceDate: "2025-05-20", Amount: 200, ReminderActive: true},
		{RowIndex: 3, Client: "Inactive", InvoiceDate: "2025-03-01", Amount: 50},
	}, nil)

	ov, err := newTestService(gw).List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, ov.TotalCount)
	assert.InDelta(t, 350, ov.TotalAmount, 1e-9)

	require.Len(t, ov.Active, 2)
	assert.Equal(t, "New Active", ov.Active[0].Client)
	assert.Equal(t, "Old Active", ov.Active[1].Client)

	require.Len(t, ov.Inactive, 1)
	assert.Equal(t, "Inactive", ov.Inactive[0].Client)
}

func TestList_AttachesEvaluation(t *testing.T) {
	ctx := context.Background()
	start := time.Now().AddDate(0, 0, -31)
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 1, Client: "Due", ReminderActive: true, ReminderStart: tp(start)},
	}, nil)

	ov, err := newTestService(gw).List(ctx)
	require.NoError(t, err)

	ev := ov.Active[0].Evaluation
	assert.Equal(t, escalation.StateAwaitingFirst, ev.State)
	assert.True(t, ev.CanSend)
}

func TestToggle_ReloadsList(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("ToggleReminder", ctx, 4, true).Return(nil)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 4, Client: "Acme", ReminderActive: true},
	}, nil)

	ov, err := newTestService(gw).Toggle(ctx, 4, true)
	require.NoError(t, err)
	require.Len(t, ov.Active, 1)
	gw.AssertExpectations(t)
}

func TestPause_FailureDoesNotReload(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("PauseReminder", ctx, 4, true).Return(errors.New(errors.ErrCodeGatewayUnavailable, "down"))

	_, err := newTestService(gw).Pause(ctx, 4, true)
	require.Error(t, err)
	gw.AssertNotCalled(t, "UnpaidInvoices", ctx)
}

func TestSend_RefusedWhenNotDue(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 4, Client: "Acme", ReminderActive: true, ReminderStart: tp(time.Now().AddDate(0, 0, -5))},
	}, nil)

	_, err := newTestService(gw).Send(ctx, 4)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReminderNotDue))
	gw.AssertNotCalled(t, "SendReminder", ctx, 4)
}

func TestSend_RefusedWhenPaused(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 4, Client: "Acme", Paused: true, ReminderStart: tp(time.Now().AddDate(0, -2, 0))},
	}, nil)

	_, err := newTestService(gw).Send(ctx, 4)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeReminderPaused))
}

func TestSend_UnknownRow(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{}, nil)

	_, err := newTestService(gw).Send(ctx, 99)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvoiceNotTracked))
}

func TestSend_DueReminderGoesOut(t *testing.T) {
	ctx := context.Background()
	gw := new(mockGateway)
	gw.On("UnpaidInvoices", ctx).Return([]escalation.Invoice{
		{RowIndex: 4, Client: "Acme", ReminderActive: true, ReminderStart: tp(time.Now().AddDate(0, 0, -31))},
	}, nil)
	gw.On("SendReminder", ctx, 4).Return(nil)

	ov, err := newTestService(gw).Send(ctx, 4)
	require.NoError(t, err)
	require.NotNil(t, ov)
	gw.AssertExpectations(t)
}
