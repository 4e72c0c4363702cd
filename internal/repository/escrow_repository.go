package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/niouspark-cmd/student-hub-sub000/internal/models"
)

// EscrowRepository owns every mutation that touches money. Each operation is
// one database transaction covering the escrow record, the order row and the
// affected wallets, so a dispositon can never half-apply.
type EscrowRepository struct {
	db *sqlx.DB
}

func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Hold records the payment confirmation: creates the HELD escrow record,
// moves the order CREATED -> PAID and stores the freshly generated release
// key. Replaying a gateway callback for an already-held order returns
// ErrAlreadyProcessed without touching anything.
func (r *EscrowRepository) Hold(ctx context.Context, orderID uuid.UUID, amount float64, releaseKey string) (*models.Escrow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("escrow repository: hold load order %w", err)
	}

	if order.Status != models.OrderStatusCreated {
		if order.EscrowStatus != nil {
			return nil, ErrAlreadyProcessed
		}
		return nil, ErrStateConflict
	}
	if !amountsEqual(amount, order.TotalAmount) {
		return nil, ErrAmountMismatch
	}

	taken, err := codeInUse(ctx, tx, releaseKey)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrCodeTaken
	}

	var escrow models.Escrow
	err = tx.GetContext(ctx, &escrow, `
		INSERT INTO escrow (id, order_id, student_id, vendor_id, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, order_id, student_id, vendor_id, amount, status, created_at, closed_at
	`, uuid.New(), orderID, order.StudentID, order.VendorID, amount, models.EscrowStatusHeld)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: hold create %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, escrow_status = $3, release_key = $4, paid_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, orderID, models.OrderStatusPaid, models.EscrowStatusHeld, releaseKey)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: hold update order %w", err)
	}

	if err := insertTransaction(ctx, tx, order.StudentID, &orderID, models.TransactionTypeEscrowHold, amount, "Payment held in escrow"); err != nil {
		return nil, err
	}

	return &escrow, tx.Commit()
}

// Release settles a HELD escrow in the vendor's favour: the runner flat fee
// (DELIVERY with an assigned runner, zero otherwise) goes to the runner's
// wallet, the remainder to the vendor's, the order completes and the release
// key is invalidated, all atomically. A second call, or a call after a
// refund, returns ErrAlreadyProcessed.
//
// fromStatuses restricts which order statuses the completion may come from;
// the verify path passes the key-eligible states, admin passes every
// non-terminal one.
func (r *EscrowRepository) Release(ctx context.Context, orderID uuid.UUID, runnerFee float64, viaKey bool, fromStatuses []string) (*models.Escrow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	escrow, order, err := lockEscrowAndOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if escrow.Status != models.EscrowStatusHeld {
		return nil, ErrAlreadyProcessed
	}
	if !statusIn(order.Status, fromStatuses) {
		return nil, ErrStateConflict
	}

	payRunner := order.FulfillmentType == models.FulfillmentDelivery && order.RunnerID != nil
	vendorShare, fee := splitEscrow(escrow.Amount, runnerFee, payRunner)

	if err := creditWallet(ctx, tx, order.VendorID, vendorShare); err != nil {
		return nil, err
	}
	if err := insertTransaction(ctx, tx, order.VendorID, &orderID, models.TransactionTypeEscrowRelease, vendorShare, "Order payout"); err != nil {
		return nil, err
	}
	if fee > 0 {
		if err := creditWallet(ctx, tx, *order.RunnerID, fee); err != nil {
			return nil, err
		}
		if err := insertTransaction(ctx, tx, *order.RunnerID, &orderID, models.TransactionTypeRunnerFee, fee, "Delivery fee"); err != nil {
			return nil, err
		}
	}

	keyStamp := ""
	if viaKey {
		keyStamp = ", release_key_used_at = NOW()"
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, escrow_status = $3, completed_at = NOW(), updated_at = NOW()`+keyStamp+`
		WHERE id = $1 AND status = $4
	`, orderID, models.OrderStatusCompleted, models.EscrowStatusReleased, order.Status)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: release update order %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrStateConflict
	}

	err = tx.GetContext(ctx, escrow, `
		UPDATE escrow SET status = $2, closed_at = NOW() WHERE id = $1
		RETURNING id, order_id, student_id, vendor_id, amount, status, created_at, closed_at
	`, escrow.ID, models.EscrowStatusReleased)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: release update escrow %w", err)
	}

	return escrow, tx.Commit()
}

// Refund settles a HELD escrow back to the student: a refund instruction is
// written to the ledger for the external payment channel, the escrow flips to
// REFUNDED and the order lands on targetStatus (CANCELLED for user
// cancellations, REFUNDED for admin overrides). Wallets are untouched.
func (r *EscrowRepository) Refund(ctx context.Context, orderID uuid.UUID, targetStatus string, fromStatuses []string) (*models.Escrow, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	escrow, order, err := lockEscrowAndOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if escrow.Status != models.EscrowStatusHeld {
		return nil, ErrAlreadyProcessed
	}
	if !statusIn(order.Status, fromStatuses) {
		return nil, ErrStateConflict
	}

	if err := insertTransaction(ctx, tx, escrow.StudentID, &orderID, models.TransactionTypeEscrowRefund, escrow.Amount, "Refund to payment channel"); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, escrow_status = $3, cancelled_at = NOW(), updated_at = NOW(),
			release_key = NULL, pickup_code = NULL
		WHERE id = $1 AND status = $4
	`, orderID, targetStatus, models.EscrowStatusRefunded, order.Status)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: refund update order %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrStateConflict
	}

	err = tx.GetContext(ctx, escrow, `
		UPDATE escrow SET status = $2, closed_at = NOW() WHERE id = $1
		RETURNING id, order_id, student_id, vendor_id, amount, status, created_at, closed_at
	`, escrow.ID, models.EscrowStatusRefunded)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: refund update escrow %w", err)
	}

	return escrow, tx.Commit()
}

// GetByOrderID returns the escrow record for an order.
func (r *EscrowRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Escrow, error) {
	var escrow models.Escrow
	err := r.db.GetContext(ctx, &escrow, `
		SELECT id, order_id, student_id, vendor_id, amount, status, created_at, closed_at
		FROM escrow WHERE order_id = $1
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEscrowNotFound
		}
		return nil, fmt.Errorf("escrow repository: get %w", err)
	}
	return &escrow, nil
}

// lockEscrowAndOrder takes FOR UPDATE locks on both rows, escrow first. Every
// disposition path locks in the same order to stay deadlock-free.
func lockEscrowAndOrder(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*models.Escrow, *models.Order, error) {
	var escrow models.Escrow
	err := tx.GetContext(ctx, &escrow, `
		SELECT id, order_id, student_id, vendor_id, amount, status, created_at, closed_at
		FROM escrow WHERE order_id = $1 FOR UPDATE
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrEscrowNotFound
		}
		return nil, nil, fmt.Errorf("escrow repository: lock escrow %w", err)
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrOrderNotFound
		}
		return nil, nil, fmt.Errorf("escrow repository: lock order %w", err)
	}
	return &escrow, &order, nil
}

// creditWallet upserts the wallet and accrues the amount. Frozen wallets keep
// accruing, on the frozen column, so an admin freeze never loses money.
func creditWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount float64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, available, frozen, status)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			available = wallets.available + CASE WHEN wallets.status = $4 THEN 0 ELSE $2 END,
			frozen    = wallets.frozen    + CASE WHEN wallets.status = $4 THEN $2 ELSE 0 END,
			updated_at = NOW()
	`, userID, amount, models.WalletStatusActive, models.WalletStatusFrozen)
	if err != nil {
		return fmt.Errorf("escrow repository: credit wallet %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, orderID *uuid.UUID, txType string, amount float64, description string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, order_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`, uuid.New(), userID, orderID, txType, amount, models.TransactionStatusCompleted, description)
	if err != nil {
		return fmt.Errorf("escrow repository: insert transaction %w", err)
	}
	return nil
}

func statusIn(status string, allowed []string) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}

// splitEscrow divides a held amount between vendor and runner. The runner fee
// is paid only for an assigned DELIVERY order; otherwise the vendor receives
// the full amount. The two shares always sum to the held amount.
func splitEscrow(amount, runnerFee float64, payRunner bool) (vendorShare, fee float64) {
	if payRunner {
		fee = roundCents(runnerFee)
	}
	return roundCents(amount - fee), fee
}

// roundCents keeps currency math at two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
