package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

type WalletRepository struct {
	db *sqlx.DB
}

func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetBalance returns the user's wallet, creating an empty one on first read.
func (r *WalletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	query := `
		INSERT INTO wallets (user_id, available, frozen, status)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = wallets.updated_at
		RETURNING user_id, available, frozen, status, updated_at
	`
	if err := r.db.GetContext(ctx, &wallet, query, userID, models.WalletStatusActive); err != nil {
		return nil, fmt.Errorf("wallet repository: get balance %w", err)
	}
	return &wallet, nil
}

// Withdraw debits the available balance and records a pending payout.
// A frozen wallet rejects the withdrawal outright.
func (r *WalletRepository) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, momoNetwork, momoNumber string) (*models.Withdrawal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var wallet models.Wallet
	err = tx.GetContext(ctx, &wallet, `
		SELECT user_id, available, frozen, status, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("wallet repository: withdraw load %w", err)
	}
	if wallet.Status == models.WalletStatusFrozen {
		return nil, ErrWalletFrozen
	}
	if wallet.Available < amount {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE wallets SET available = available - $2, updated_at = NOW() WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw debit %w", err)
	}

	var w models.Withdrawal
	err = tx.GetContext(ctx, &w, `
		INSERT INTO withdrawals (id, user_id, amount, momo_network, momo_number, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, amount, momo_network, momo_number, status, created_at, processed_at
	`, uuid.New(), userID, amount, momoNetwork, momoNumber, models.WithdrawalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw create %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, status, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), userID, models.TransactionTypeWithdrawal, amount, models.TransactionStatusPending, "Withdrawal request")
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw transaction %w", err)
	}

	return &w, tx.Commit()
}

// SetFrozen freezes or unfreezes a wallet. Freezing parks the available
// balance on the frozen column; unfreezing moves it back. Credits keep
// accruing either way (see EscrowRepository.creditWallet).
func (r *WalletRepository) SetFrozen(ctx context.Context, userID uuid.UUID, frozen bool) (*models.Wallet, error) {
	var (
		wallet models.Wallet
		err    error
	)
	if frozen {
		err = r.db.GetContext(ctx, &wallet, `
			UPDATE wallets SET frozen = frozen + available, available = 0, status = $2, updated_at = NOW()
			WHERE user_id = $1
			RETURNING user_id, available, frozen, status, updated_at
		`, userID, models.WalletStatusFrozen)
	} else {
		err = r.db.GetContext(ctx, &wallet, `
			UPDATE wallets SET available = available + frozen, frozen = 0, status = $2, updated_at = NOW()
			WHERE user_id = $1
			RETURNING user_id, available, frozen, status, updated_at
		`, userID, models.WalletStatusActive)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet repository: set frozen %w", err)
	}
	return &wallet, nil
}

// ListTransactions returns the user's ledger history, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, order_id, type, amount, status, description, created_at, completed_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return transactions, err
}

// ListWithdrawals returns the user's payout requests, newest first.
func (r *WalletRepository) ListWithdrawals(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	err := r.db.SelectContext(ctx, &withdrawals, `
		SELECT id, user_id, amount, momo_network, momo_number, status, created_at, processed_at
		FROM withdrawals WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return withdrawals, err
}
