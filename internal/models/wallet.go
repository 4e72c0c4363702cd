package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a vendor's or runner's accruable balance. While the wallet is
// frozen, incoming credits accrue on the frozen column and withdrawals are
// rejected; unfreezing moves the frozen amount back to available.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Available float64   `db:"available" json:"available"`
	Frozen    float64   `db:"frozen" json:"frozen"`
	Status    string    `db:"status" json:"status"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is a ledger row. Every wallet movement and every escrow
// disposition writes one; refunds to the student's payment channel are
// recorded here and settled by the external gateway glue.
type Transaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	OrderID     *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Type        string     `db:"type" json:"type"`
	Amount      float64    `db:"amount" json:"amount"`
	Status      string     `db:"status" json:"status"`
	Description *string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// Escrow is the per-order custody record. Status moves HELD to exactly one
// of RELEASED or REFUNDED, never both and never twice.
type Escrow struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	OrderID   uuid.UUID  `db:"order_id" json:"order_id"`
	StudentID uuid.UUID  `db:"student_id" json:"student_id"`
	VendorID  uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	Amount    float64    `db:"amount" json:"amount"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	ClosedAt  *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// Withdrawal is a payout request against a wallet's available balance.
type Withdrawal struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Amount      float64    `db:"amount" json:"amount"`
	MomoNetwork string     `db:"momo_network" json:"momo_network"`
	MomoNumber  string     `db:"momo_number" json:"momo_number"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
