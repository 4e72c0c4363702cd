package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// MinWithdrawalAmount is the smallest payout the platform processes.
const MinWithdrawalAmount = 10.0

// WalletLedger is the wallet storage the service needs.
type WalletLedger interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount float64, momoNetwork, momoNumber string) (*models.Withdrawal, error)
	SetFrozen(ctx context.Context, userID uuid.UUID, frozen bool) (*models.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
	ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error)
}

// WalletService serves vendor and runner wallet reads and payout requests.
// Balances are only ever credited by escrow dispositions; this service never
// writes credits itself.
type WalletService struct {
	ledger WalletLedger
}

func NewWalletService(ledger WalletLedger) *WalletService {
	return &WalletService{ledger: ledger}
}

func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	return s.ledger.GetBalance(ctx, userID)
}

// Withdraw requests a payout against the available balance.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, momoNetwork, momoNumber string) (*models.Withdrawal, error) {
	if amount < MinWithdrawalAmount {
		return nil, fmt.Errorf("%w: minimum is %.2f", ErrMinWithdrawal, MinWithdrawalAmount)
	}
	if momoNetwork == "" || momoNumber == "" {
		return nil, fmt.Errorf("%w: payout destination is required", ErrValidation)
	}
	return s.ledger.Withdraw(ctx, userID, roundCents(amount), momoNetwork, momoNumber)
}

func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	return s.ledger.ListTransactions(ctx, userID, clampLimit(limit), offset)
}

func (s *WalletService) ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error) {
	return s.ledger.ListWithdrawals(ctx, userID, clampLimit(limit), offset)
}
