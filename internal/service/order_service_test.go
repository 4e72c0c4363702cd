package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, studentID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, vendorID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) ListByRunner(ctx context.Context, runnerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, runnerID, limit, offset)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *mockOrderRepo) StartPreparing(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) MarkReady(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) CancelUnpaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) ConsumePickupCode(ctx context.Context, orderID uuid.UUID, code string) (*models.Order, error) {
	args := m.Called(ctx, orderID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByActiveCode(ctx context.Context, code string) (*models.Order, bool, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Order), args.Bool(1), args.Error(2)
}

type mockEscrow struct {
	mock.Mock
}

func (m *mockEscrow) Hold(ctx context.Context, orderID uuid.UUID, amount float64, releaseKey string) (*models.Escrow, error) {
	args := m.Called(ctx, orderID, amount, releaseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Escrow), args.Error(1)
}

func (m *mockEscrow) Release(ctx context.Context, orderID uuid.UUID, runnerFee float64, viaKey bool, fromStatuses []string) (*models.Escrow, error) {
	args := m.Called(ctx, orderID, runnerFee, viaKey, fromStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Escrow), args.Error(1)
}

func (m *mockEscrow) Refund(ctx context.Context, orderID uuid.UUID, targetStatus string, fromStatuses []string) (*models.Escrow, error) {
	args := m.Called(ctx, orderID, targetStatus, fromStatuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Escrow), args.Error(1)
}

func (m *mockEscrow) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Escrow, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Escrow), args.Error(1)
}

// stubSettings serves a fixed settings record without a repository.
type stubSettings struct {
	settings models.PlatformSettings
}

func (s *stubSettings) Snapshot(ctx context.Context) (*models.PlatformSettings, error) {
	snap := s.settings
	return &snap, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) MissionOpened(mission models.Mission) {
	m.Called(mission)
}

func (m *mockNotifier) MissionTaken(orderID uuid.UUID) {
	m.Called(orderID)
}

func activeSettings(fee float64) *stubSettings {
	return &stubSettings{settings: models.PlatformSettings{ID: 1, RunnerFlatFee: fee}}
}

func strPtr(s string) *string { return &s }

func TestOrderService_CreateOrder_TotalsServerSide(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	studentID, vendorID := uuid.New(), uuid.New()

	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil)

	order, err := svc.CreateOrder(ctx, studentID, vendorID, []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: 12.50},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 25.00},
	}, models.FulfillmentDelivery, strPtr("Hall B, Room 12"))

	assert.NoError(t, err)
	assert.Equal(t, 50.0, order.TotalAmount)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Len(t, order.Items, 2)
	orders.AssertExpectations(t)
}

func TestOrderService_CreateOrder_KillSwitch(t *testing.T) {
	svc := NewOrderService(new(mockOrderRepo), new(mockEscrow),
		&stubSettings{settings: models.PlatformSettings{ID: 1, OrderingSuspended: true}}, nil)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), uuid.New(), []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 10},
	}, models.FulfillmentPickup, nil)

	assert.ErrorIs(t, err, ErrOrderingSuspended)
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	svc := NewOrderService(new(mockOrderRepo), new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, uuid.New(), uuid.New(), nil, models.FulfillmentPickup, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrder(ctx, uuid.New(), uuid.New(), []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 10},
	}, "TELEPORT", nil)
	assert.ErrorIs(t, err, ErrValidation)

	// Delivery without an address.
	_, err = svc.CreateOrder(ctx, uuid.New(), uuid.New(), []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: 10},
	}, models.FulfillmentDelivery, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrder(ctx, uuid.New(), uuid.New(), []OrderItemInput{
		{ProductID: uuid.New(), Quantity: 0, UnitPrice: 10},
	}, models.FulfillmentPickup, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_ConfirmPayment_HoldsEscrow(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	paid := &models.Order{ID: orderID, Status: models.OrderStatusPaid, TotalAmount: 50}
	escrow.On("Hold", ctx, orderID, 50.0, mock.MatchedBy(looksLikeCode)).
		Return(&models.Escrow{OrderID: orderID, Amount: 50, Status: models.EscrowStatusHeld}, nil)
	orders.On("GetByID", ctx, orderID).Return(paid, nil)

	order, err := svc.ConfirmPayment(ctx, orderID, 50)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	escrow.AssertExpectations(t)
}

func TestOrderService_ConfirmPayment_ReplayIsIdempotent(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	escrow.On("Hold", ctx, orderID, 50.0, mock.Anything).Return(nil, repository.ErrAlreadyProcessed)

	_, err := svc.ConfirmPayment(ctx, orderID, 50)
	assert.ErrorIs(t, err, repository.ErrAlreadyProcessed)
	escrow.AssertNumberOfCalls(t, "Hold", 1)
}

func TestOrderService_ConfirmPayment_RetriesCodeCollision(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	dup := &pq.Error{Code: uniqueViolation}
	paid := &models.Order{ID: orderID, Status: models.OrderStatusPaid}
	escrow.On("Hold", ctx, orderID, 50.0, mock.Anything).Return(nil, dup).Once()
	escrow.On("Hold", ctx, orderID, 50.0, mock.Anything).
		Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusHeld}, nil).Once()
	orders.On("GetByID", ctx, orderID).Return(paid, nil)

	_, err := svc.ConfirmPayment(ctx, orderID, 50)
	assert.NoError(t, err)
	escrow.AssertNumberOfCalls(t, "Hold", 2)
}

// A fresh release key can also equal another order's pickup code, which the
// unique indexes never see; the storage layer reports it as ErrCodeTaken and
// the key gets regenerated the same way.
func TestOrderService_ConfirmPayment_RetriesCrossColumnCollision(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	paid := &models.Order{ID: orderID, Status: models.OrderStatusPaid}
	escrow.On("Hold", ctx, orderID, 50.0, mock.Anything).Return(nil, repository.ErrCodeTaken).Once()
	escrow.On("Hold", ctx, orderID, 50.0, mock.Anything).
		Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusHeld}, nil).Once()
	orders.On("GetByID", ctx, orderID).Return(paid, nil)

	_, err := svc.ConfirmPayment(ctx, orderID, 50)
	assert.NoError(t, err)
	escrow.AssertNumberOfCalls(t, "Hold", 2)
}

func TestOrderService_ConfirmPayment_AmountMismatch(t *testing.T) {
	escrow := new(mockEscrow)
	svc := NewOrderService(new(mockOrderRepo), escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	escrow.On("Hold", ctx, orderID, 45.0, mock.Anything).Return(nil, repository.ErrAmountMismatch)

	_, err := svc.ConfirmPayment(ctx, orderID, 45)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_MarkReady_PushesMission(t *testing.T) {
	orders := new(mockOrderRepo)
	notifier := new(mockNotifier)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), notifier)
	ctx := context.Background()
	orderID, vendorID := uuid.New(), uuid.New()

	ready := &models.Order{
		ID:              orderID,
		VendorID:        vendorID,
		TotalAmount:     50,
		FulfillmentType: models.FulfillmentDelivery,
		Status:          models.OrderStatusReady,
		DeliveryAddress: strPtr("Hall B"),
	}
	orders.On("MarkReady", ctx, orderID, vendorID).Return(ready, nil)
	notifier.On("MissionOpened", mock.MatchedBy(func(m models.Mission) bool {
		return m.OrderID == orderID && m.RunnerFee == 5.0
	})).Return()

	_, err := svc.MarkReady(ctx, orderID, vendorID)
	assert.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestOrderService_MarkReady_PickupOrderSkipsPush(t *testing.T) {
	orders := new(mockOrderRepo)
	notifier := new(mockNotifier)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), notifier)
	ctx := context.Background()
	orderID, vendorID := uuid.New(), uuid.New()

	ready := &models.Order{ID: orderID, VendorID: vendorID, FulfillmentType: models.FulfillmentPickup, Status: models.OrderStatusReady}
	orders.On("MarkReady", ctx, orderID, vendorID).Return(ready, nil)

	_, err := svc.MarkReady(ctx, orderID, vendorID)
	assert.NoError(t, err)
	notifier.AssertNotCalled(t, "MissionOpened", mock.Anything)
}

func TestOrderService_MarkReady_WrongVendor(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	orderID, vendorID := uuid.New(), uuid.New()

	orders.On("MarkReady", ctx, orderID, vendorID).Return(nil, repository.ErrNotOwner)

	_, err := svc.MarkReady(ctx, orderID, vendorID)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestOrderService_CancelOrder_UnpaidJustCancels(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID, studentID := uuid.New(), uuid.New()

	created := &models.Order{ID: orderID, StudentID: studentID, Status: models.OrderStatusCreated}
	cancelled := &models.Order{ID: orderID, StudentID: studentID, Status: models.OrderStatusCancelled}
	orders.On("GetByID", ctx, orderID).Return(created, nil)
	orders.On("CancelUnpaid", ctx, orderID).Return(cancelled, nil)

	order, err := svc.CancelOrder(ctx, orderID, studentID, models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	escrow.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CancelOrder_PaidRefundsEscrow(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID, studentID := uuid.New(), uuid.New()

	preparing := &models.Order{ID: orderID, StudentID: studentID, Status: models.OrderStatusPreparing, TotalAmount: 20}
	cancelled := &models.Order{ID: orderID, StudentID: studentID, Status: models.OrderStatusCancelled}
	orders.On("GetByID", ctx, orderID).Return(preparing, nil).Once()
	escrow.On("Refund", ctx, orderID, models.OrderStatusCancelled,
		[]string{models.OrderStatusPaid, models.OrderStatusPreparing, models.OrderStatusReady}).
		Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusRefunded}, nil)
	orders.On("GetByID", ctx, orderID).Return(cancelled, nil).Once()

	order, err := svc.CancelOrder(ctx, orderID, studentID, models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	escrow.AssertExpectations(t)
}

func TestOrderService_CancelOrder_Stranger(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	orders.On("GetByID", ctx, orderID).
		Return(&models.Order{ID: orderID, StudentID: uuid.New(), VendorID: uuid.New(), Status: models.OrderStatusPaid}, nil)

	_, err := svc.CancelOrder(ctx, orderID, uuid.New(), models.RoleStudent)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestOrderService_CancelOrder_AfterPickupRejected(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	orderID, studentID := uuid.New(), uuid.New()

	orders.On("GetByID", ctx, orderID).
		Return(&models.Order{ID: orderID, StudentID: studentID, Status: models.OrderStatusPickedUp}, nil)

	_, err := svc.CancelOrder(ctx, orderID, studentID, models.RoleStudent)
	assert.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestOrderService_VerifyCode_PickupConfirm(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	orderID, runnerID := uuid.New(), uuid.New()

	ready := &models.Order{
		ID:              orderID,
		FulfillmentType: models.FulfillmentDelivery,
		Status:          models.OrderStatusReady,
		RunnerID:        &runnerID,
		PickupCode:      strPtr("123456"),
		ReleaseKey:      strPtr("654321"),
	}
	pickedUp := &models.Order{ID: orderID, Status: models.OrderStatusPickedUp}
	orders.On("FindByActiveCode", ctx, "123456").Return(ready, false, nil)
	orders.On("ConsumePickupCode", ctx, orderID, "123456").Return(pickedUp, nil)

	order, outcome, err := svc.VerifyCode(ctx, "123456")
	assert.NoError(t, err)
	assert.Equal(t, VerificationPickup, outcome)
	assert.Equal(t, models.OrderStatusPickedUp, order.Status)
}

func TestOrderService_VerifyCode_ReleaseConfirmPaysRunnerFee(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID, runnerID := uuid.New(), uuid.New()

	pickedUp := &models.Order{
		ID:              orderID,
		FulfillmentType: models.FulfillmentDelivery,
		Status:          models.OrderStatusPickedUp,
		RunnerID:        &runnerID,
		ReleaseKey:      strPtr("654321"),
		TotalAmount:     50,
	}
	completed := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}
	orders.On("FindByActiveCode", ctx, "654321").Return(pickedUp, false, nil)
	escrow.On("Release", ctx, orderID, 5.0, true, []string{models.OrderStatusPickedUp}).
		Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusReleased}, nil)
	orders.On("GetByID", ctx, orderID).Return(completed, nil)

	order, outcome, err := svc.VerifyCode(ctx, "654321")
	assert.NoError(t, err)
	assert.Equal(t, VerificationRelease, outcome)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	escrow.AssertExpectations(t)
}

func TestOrderService_VerifyCode_PickupOrderReleaseAtCounter(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID := uuid.New()

	ready := &models.Order{
		ID:              orderID,
		FulfillmentType: models.FulfillmentPickup,
		Status:          models.OrderStatusReady,
		ReleaseKey:      strPtr("222333"),
	}
	completed := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}
	orders.On("FindByActiveCode", ctx, "222333").Return(ready, false, nil)
	escrow.On("Release", ctx, orderID, 5.0, true, []string{models.OrderStatusReady}).
		Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusReleased}, nil)
	orders.On("GetByID", ctx, orderID).Return(completed, nil)

	_, outcome, err := svc.VerifyCode(ctx, "222333")
	assert.NoError(t, err)
	assert.Equal(t, VerificationRelease, outcome)
}

func TestOrderService_VerifyCode_ConsumedReplay(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()

	orders.On("FindByActiveCode", ctx, "654321").
		Return(&models.Order{ID: uuid.New(), Status: models.OrderStatusCompleted}, true, nil)

	_, _, err := svc.VerifyCode(ctx, "654321")
	assert.ErrorIs(t, err, repository.ErrAlreadyProcessed)
}

func TestOrderService_VerifyCode_UnknownCode(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()

	orders.On("FindByActiveCode", ctx, "999999").Return(nil, false, repository.ErrOrderNotFound)

	_, _, err := svc.VerifyCode(ctx, "999999")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOrderService_VerifyCode_Malformed(t *testing.T) {
	svc := NewOrderService(new(mockOrderRepo), new(mockEscrow), activeSettings(5), nil)

	_, _, err := svc.VerifyCode(context.Background(), "12ab56")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, _, err = svc.VerifyCode(context.Background(), "1234567")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOrderService_VerifyCode_PickupBeforeAssignment(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()

	// Pickup code present but no runner assigned: storage drift, reject.
	ready := &models.Order{
		ID:              uuid.New(),
		FulfillmentType: models.FulfillmentDelivery,
		Status:          models.OrderStatusReady,
		PickupCode:      strPtr("123456"),
	}
	orders.On("FindByActiveCode", ctx, "123456").Return(ready, false, nil)

	_, _, err := svc.VerifyCode(ctx, "123456")
	assert.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestOrderService_VerifyCode_ReleaseBeforePickup(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	runnerID := uuid.New()

	// Delivery order still READY: the release key must not complete it.
	ready := &models.Order{
		ID:              uuid.New(),
		FulfillmentType: models.FulfillmentDelivery,
		Status:          models.OrderStatusReady,
		RunnerID:        &runnerID,
		ReleaseKey:      strPtr("654321"),
		PickupCode:      strPtr("111222"),
	}
	orders.On("FindByActiveCode", ctx, "654321").Return(ready, false, nil)

	_, _, err := svc.VerifyCode(ctx, "654321")
	assert.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestOrderService_GetOrder_PartyCheck(t *testing.T) {
	orders := new(mockOrderRepo)
	svc := NewOrderService(orders, new(mockEscrow), activeSettings(5), nil)
	ctx := context.Background()
	orderID, studentID := uuid.New(), uuid.New()

	order := &models.Order{ID: orderID, StudentID: studentID, VendorID: uuid.New()}
	orders.On("GetByID", ctx, orderID).Return(order, nil)

	got, err := svc.GetOrder(ctx, orderID, studentID, models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, orderID, got.ID)

	_, err = svc.GetOrder(ctx, orderID, uuid.New(), models.RoleStudent)
	assert.ErrorIs(t, err, ErrAuthorization)

	// Admins see everything.
	_, err = svc.GetOrder(ctx, orderID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

func TestOrderService_GetEscrow_PartyCheck(t *testing.T) {
	orders := new(mockOrderRepo)
	escrow := new(mockEscrow)
	svc := NewOrderService(orders, escrow, activeSettings(5), nil)
	ctx := context.Background()
	orderID, studentID := uuid.New(), uuid.New()

	order := &models.Order{ID: orderID, StudentID: studentID, VendorID: uuid.New()}
	orders.On("GetByID", ctx, orderID).Return(order, nil)
	escrow.On("GetByOrderID", ctx, orderID).Return(&models.Escrow{OrderID: orderID, Status: models.EscrowStatusHeld}, nil)

	got, err := svc.GetEscrow(ctx, orderID, studentID, models.RoleStudent)
	assert.NoError(t, err)
	assert.Equal(t, models.EscrowStatusHeld, got.Status)

	_, err = svc.GetEscrow(ctx, orderID, uuid.New(), models.RoleStudent)
	assert.ErrorIs(t, err, ErrAuthorization)
	escrow.AssertNumberOfCalls(t, "GetByOrderID", 1)
}
