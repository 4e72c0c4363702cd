package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/logger"
	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
	"github.com/niouspark-cmd/student-hub-sub000/internal/repository"
)

// AuditLog persists operator actions.
type AuditLog interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	List(ctx context.Context, limit, offset int) ([]models.AuditRecord, error)
}

// nonTerminalStatuses are the order states an admin override may act on.
var nonTerminalStatuses = []string{
	models.OrderStatusCreated,
	models.OrderStatusPaid,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
	models.OrderStatusPickedUp,
}

// AdminService carries the operator overrides: escrow dispute resolution,
// wallet freezes and the kill switch. Overrides bypass the normal transition
// guards but never the escrow exactly-once guarantee, and every action is
// audit-logged.
type AdminService struct {
	orders   OrderRepository
	escrow   EscrowCustody
	wallets  WalletLedger
	audit    AuditLog
	settings *SettingsService
}

func NewAdminService(orders OrderRepository, escrow EscrowCustody, wallets WalletLedger, audit AuditLog, settings *SettingsService) *AdminService {
	return &AdminService{orders: orders, escrow: escrow, wallets: wallets, audit: audit, settings: settings}
}

// EscrowAction force-releases or force-refunds a held escrow. Terminal orders
// are rejected before any money moves.
func (s *AdminService) EscrowAction(ctx context.Context, operatorID, orderID uuid.UUID, action string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return nil, repository.ErrStateConflict
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	switch action {
	case models.AdminActionForceRelease:
		_, err = s.escrow.Release(ctx, orderID, settings.RunnerFlatFee, false, nonTerminalStatuses)
	case models.AdminActionForceRefund:
		_, err = s.escrow.Refund(ctx, orderID, models.OrderStatusRefunded, nonTerminalStatuses)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}
	if err != nil {
		return nil, err
	}

	s.writeAudit(ctx, operatorID, &orderID, action, nil)
	logger.Log.WithField("order_id", orderID).
		WithField("operator_id", operatorID).
		WithField("action", action).
		Warn("admin escrow override applied")

	return s.orders.GetByID(ctx, orderID)
}

// SetWalletFreeze freezes or unfreezes a wallet under audit.
func (s *AdminService) SetWalletFreeze(ctx context.Context, operatorID, userID uuid.UUID, frozen bool) (*models.Wallet, error) {
	wallet, err := s.wallets.SetFrozen(ctx, userID, frozen)
	if err != nil {
		return nil, err
	}

	action := "WALLET_UNFREEZE"
	if frozen {
		action = "WALLET_FREEZE"
	}
	detail := "wallet " + userID.String()
	s.writeAudit(ctx, operatorID, nil, action, &detail)
	return wallet, nil
}

// UpdateSettings changes the kill switch or the runner flat fee under audit.
func (s *AdminService) UpdateSettings(ctx context.Context, operatorID uuid.UUID, suspended *bool, runnerFlatFee *float64) (*models.PlatformSettings, error) {
	settings, err := s.settings.Update(ctx, suspended, runnerFlatFee, operatorID)
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("ordering_suspended=%t runner_flat_fee=%.2f", settings.OrderingSuspended, settings.RunnerFlatFee)
	s.writeAudit(ctx, operatorID, nil, "SETTINGS_UPDATE", &detail)
	return settings, nil
}

// GetSettings returns the current settings snapshot.
func (s *AdminService) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	return s.settings.Snapshot(ctx)
}

// ListAudit returns the operator action log, newest first.
func (s *AdminService) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditRecord, error) {
	return s.audit.List(ctx, clampLimit(limit), offset)
}

func (s *AdminService) writeAudit(ctx context.Context, operatorID uuid.UUID, orderID *uuid.UUID, action string, detail *string) {
	record := &models.AuditRecord{
		OperatorID: operatorID,
		OrderID:    orderID,
		Action:     action,
		Detail:     detail,
	}
	if err := s.audit.Create(ctx, record); err != nil {
		// An audit write failure must not undo the override; it is logged loudly instead.
		logger.Log.WithField("action", action).WithError(err).Error("failed to write audit record")
	}
}
