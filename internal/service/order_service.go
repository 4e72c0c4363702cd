package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
)

// Verification outcomes returned by VerifyCode.
const (
	VerificationPickup  = "PICKUP_CONFIRMED"
	VerificationRelease = "RELEASE_CONFIRMED"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys; colliding
// generated codes are regenerated and retried.
const uniqueViolation = "23505"

const codeRetryAttempts = 3

// OrderRepository describes the order storage the service needs.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListByRunner(ctx context.Context, runnerID uuid.UUID, limit, offset int) ([]models.Order, error)
	StartPreparing(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error)
	MarkReady(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error)
	CancelUnpaid(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ConsumePickupCode(ctx context.Context, orderID uuid.UUID, code string) (*models.Order, error)
	FindByActiveCode(ctx context.Context, code string) (*models.Order, bool, error)
}

// EscrowCustody describes the fund-custody operations.
type EscrowCustody interface {
	Hold(ctx context.Context, orderID uuid.UUID, amount float64, releaseKey string) (*models.Escrow, error)
	Release(ctx context.Context, orderID uuid.UUID, runnerFee float64, viaKey bool, fromStatuses []string) (*models.Escrow, error)
	Refund(ctx context.Context, orderID uuid.UUID, targetStatus string, fromStatuses []string) (*models.Escrow, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Escrow, error)
}

// SettingsProvider yields the per-request settings snapshot.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (*models.PlatformSettings, error)
}

// MissionNotifier fans mission events out to online runners. Implementations
// must not block; a nil notifier disables push.
type MissionNotifier interface {
	MissionOpened(mission models.Mission)
	MissionTaken(orderID uuid.UUID)
}

// OrderItemInput is a checkout line before server-side pricing.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

// OrderService owns the order lifecycle: creation, the payment-confirmation
// hold, vendor prep transitions, cancellation and code verification.
type OrderService struct {
	orders   OrderRepository
	escrow   EscrowCustody
	settings SettingsProvider
	notifier MissionNotifier
}

func NewOrderService(orders OrderRepository, escrow EscrowCustody, settings SettingsProvider, notifier MissionNotifier) *OrderService {
	return &OrderService{orders: orders, escrow: escrow, settings: settings, notifier: notifier}
}

// CreateOrder validates the checkout payload and creates a CREATED order.
// Rejected while the kill switch is on.
func (s *OrderService) CreateOrder(ctx context.Context, studentID, vendorID uuid.UUID, items []OrderItemInput, fulfillmentType string, deliveryAddress *string) (*models.Order, error) {
	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if settings.OrderingSuspended {
		return nil, ErrOrderingSuspended
	}

	if _, ok := models.ValidFulfillmentTypes[fulfillmentType]; !ok {
		return nil, fmt.Errorf("%w: unknown fulfillment type %q", ErrValidation, fulfillmentType)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	if fulfillmentType == models.FulfillmentDelivery && (deliveryAddress == nil || *deliveryAddress == "") {
		return nil, fmt.Errorf("%w: delivery orders need a delivery address", ErrValidation)
	}

	order := &models.Order{
		ID:              uuid.New(),
		StudentID:       studentID,
		VendorID:        vendorID,
		FulfillmentType: fulfillmentType,
		Status:          models.OrderStatusCreated,
		DeliveryAddress: deliveryAddress,
	}
	total := 0.0
	for _, in := range items {
		if in.Quantity <= 0 || in.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: item quantity and unit price must be positive", ErrValidation)
		}
		total += float64(in.Quantity) * in.UnitPrice
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
	}
	order.TotalAmount = roundCents(total)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns the order if the actor is a party to it.
func (s *OrderService) GetOrder(ctx context.Context, orderID, actorID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actorOnOrder(order, actorID, role) {
		return nil, ErrAuthorization
	}
	return order, nil
}

// GetEscrow returns the custody record for an order the actor is party to.
func (s *OrderService) GetEscrow(ctx context.Context, orderID, actorID uuid.UUID, role string) (*models.Escrow, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actorOnOrder(order, actorID, role) {
		return nil, ErrAuthorization
	}
	return s.escrow.GetByOrderID(ctx, orderID)
}

func (s *OrderService) ListStudentOrders(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByStudent(ctx, studentID, clampLimit(limit), offset)
}

func (s *OrderService) ListVendorOrders(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByVendor(ctx, vendorID, clampLimit(limit), offset)
}

func (s *OrderService) ListRunnerOrders(ctx context.Context, runnerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByRunner(ctx, runnerID, clampLimit(limit), offset)
}

// ConfirmPayment is the payment-gateway callback: it holds the amount in
// escrow, moves the order to PAID and mints the student's release key, all in
// one transaction. Gateways may retry; replays land on ErrAlreadyProcessed
// without a second hold.
func (s *OrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, amount float64) (*models.Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	var lastErr error
	for attempt := 0; attempt < codeRetryAttempts; attempt++ {
		key, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		_, err = s.escrow.Hold(ctx, orderID, amount, key)
		if err == nil {
			return s.orders.GetByID(ctx, orderID)
		}
		if isCodeCollision(err) {
			lastErr = err
			continue
		}
		if errors.Is(err, repository.ErrAmountMismatch) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	return nil, lastErr
}

// AdvancePrep is the vendor accepting the order: PAID -> PREPARING.
func (s *OrderService) AdvancePrep(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.StartPreparing(ctx, orderID, vendorID)
	if errors.Is(err, repository.ErrNotOwner) {
		return nil, ErrAuthorization
	}
	return order, err
}

// MarkReady moves PREPARING -> READY. A DELIVERY order turning READY becomes
// a mission and is pushed to online runners.
func (s *OrderService) MarkReady(ctx context.Context, orderID, vendorID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.MarkReady(ctx, orderID, vendorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotOwner) {
			return nil, ErrAuthorization
		}
		return nil, err
	}

	if order.FulfillmentType == models.FulfillmentDelivery && s.notifier != nil {
		fee := 0.0
		if settings, serr := s.settings.Snapshot(ctx); serr == nil {
			fee = settings.RunnerFlatFee
		}
		s.notifier.MissionOpened(models.Mission{
			OrderID:         order.ID,
			VendorID:        order.VendorID,
			TotalAmount:     order.TotalAmount,
			RunnerFee:       fee,
			DeliveryAddress: order.DeliveryAddress,
			ReadyAt:         order.ReadyAt,
		})
	}
	return order, nil
}

// CancelOrder cancels a pre-pickup order. If escrow is held the refund lands
// in the same transaction as the status change; a bare CREATED order is
// simply cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && order.StudentID != actorID && order.VendorID != actorID {
		return nil, ErrAuthorization
	}

	switch order.Status {
	case models.OrderStatusCreated:
		return s.orders.CancelUnpaid(ctx, orderID)
	case models.OrderStatusPaid, models.OrderStatusPreparing, models.OrderStatusReady:
		_, err := s.escrow.Refund(ctx, orderID, models.OrderStatusCancelled, []string{
			models.OrderStatusPaid, models.OrderStatusPreparing, models.OrderStatusReady,
		})
		if err != nil {
			return nil, err
		}
		logger.Log.WithField("order_id", orderID).Info("order cancelled, escrow refunded")
		return s.orders.GetByID(ctx, orderID)
	default:
		return nil, repository.ErrStateConflict
	}
}

// VerifyCode resolves a presented secret to either the vendor hand-off
// confirmation (pickup code) or the delivery confirmation (release key) and
// applies the matching transition atomically. Replays of a consumed code
// return ErrAlreadyProcessed and mutate nothing.
func (s *OrderService) VerifyCode(ctx context.Context, code string) (*models.Order, string, error) {
	if !looksLikeCode(code) {
		return nil, "", ErrInvalidKey
	}

	order, consumed, err := s.orders.FindByActiveCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, "", ErrInvalidKey
		}
		return nil, "", err
	}
	if consumed {
		return nil, "", repository.ErrAlreadyProcessed
	}

	if order.PickupCode != nil && subtle.ConstantTimeCompare([]byte(*order.PickupCode), []byte(code)) == 1 {
		return s.confirmPickup(ctx, order, code)
	}
	if order.ReleaseKey != nil && subtle.ConstantTimeCompare([]byte(*order.ReleaseKey), []byte(code)) == 1 {
		return s.confirmRelease(ctx, order, code)
	}
	return nil, "", ErrInvalidKey
}

func (s *OrderService) confirmPickup(ctx context.Context, order *models.Order, code string) (*models.Order, string, error) {
	if order.FulfillmentType != models.FulfillmentDelivery || order.RunnerID == nil || order.Status != models.OrderStatusReady {
		return nil, "", repository.ErrStateConflict
	}
	updated, err := s.orders.ConsumePickupCode(ctx, order.ID, code)
	if err != nil {
		return nil, "", err
	}
	logger.Log.WithField("order_id", order.ID).Info("pickup confirmed")
	return updated, VerificationPickup, nil
}

func (s *OrderService) confirmRelease(ctx context.Context, order *models.Order, code string) (*models.Order, string, error) {
	eligible := (order.FulfillmentType == models.FulfillmentPickup && order.Status == models.OrderStatusReady) ||
		(order.FulfillmentType == models.FulfillmentDelivery && order.Status == models.OrderStatusPickedUp)
	if !eligible {
		return nil, "", repository.ErrStateConflict
	}

	fee := 0.0
	if settings, err := s.settings.Snapshot(ctx); err == nil {
		fee = settings.RunnerFlatFee
	}
	if _, err := s.escrow.Release(ctx, order.ID, fee, true, []string{order.Status}); err != nil {
		return nil, "", err
	}

	logger.Log.WithField("order_id", order.ID).Info("delivery confirmed, escrow released")
	updated, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, "", err
	}
	return updated, VerificationRelease, nil
}

func actorOnOrder(order *models.Order, actorID uuid.UUID, role string) bool {
	if role == models.RoleAdmin {
		return true
	}
	if order.StudentID == actorID || order.VendorID == actorID {
		return true
	}
	return order.RunnerID != nil && *order.RunnerID == actorID
}

// isCodeCollision matches both collision signals: the repository's
// cross-column check and the partial unique indexes racing same-column mints.
func isCodeCollision(err error) bool {
	if errors.Is(err, repository.ErrCodeTaken) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

// roundCents keeps currency math at two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
