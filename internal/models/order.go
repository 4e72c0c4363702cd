package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a marketplace order. Status and EscrowStatus carry the fixed
// uppercase tokens from constants.go; both secrets are never serialized,
// the handlers expose them only to the party that is allowed to see them.
type Order struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	StudentID       uuid.UUID   `db:"student_id" json:"student_id"`
	VendorID        uuid.UUID   `db:"vendor_id" json:"vendor_id"`
	TotalAmount     float64     `db:"total_amount" json:"total_amount"`
	FulfillmentType string      `db:"fulfillment_type" json:"fulfillment_type"`
	Status          string      `db:"status" json:"status"`
	EscrowStatus    *string     `db:"escrow_status" json:"escrow_status,omitempty"`
	ReleaseKey      *string     `db:"release_key" json:"-"`
	PickupCode      *string     `db:"pickup_code" json:"-"`
	RunnerID        *uuid.UUID  `db:"runner_id" json:"runner_id,omitempty"`
	DeliveryAddress *string     `db:"delivery_address" json:"delivery_address,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
	PaidAt          *time.Time  `db:"paid_at" json:"paid_at,omitempty"`
	ReadyAt         *time.Time  `db:"ready_at" json:"ready_at,omitempty"`
	PickedUpAt      *time.Time  `db:"picked_up_at" json:"picked_up_at,omitempty"`
	CompletedAt     *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt     *time.Time  `db:"cancelled_at" json:"cancelled_at,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem is a single order line.
type OrderItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UnitPrice float64   `db:"unit_price" json:"unit_price"`
}

// Mission is the runner-facing projection of a DELIVERY order that is READY
// and still unassigned. It is computed from the order row, never stored.
type Mission struct {
	OrderID         uuid.UUID  `db:"id" json:"mission_id"`
	VendorID        uuid.UUID  `db:"vendor_id" json:"vendor_id"`
	TotalAmount     float64    `db:"total_amount" json:"total_amount"`
	RunnerFee       float64    `json:"runner_fee"`
	DeliveryAddress *string    `db:"delivery_address" json:"delivery_address,omitempty"`
	ReadyAt         *time.Time `db:"ready_at" json:"ready_at,omitempty"`
}

// RunnerPresence tracks whether a runner currently receives the mission feed.
type RunnerPresence struct {
	RunnerID   uuid.UUID `db:"runner_id" json:"runner_id"`
	Online     bool      `db:"online" json:"online"`
	LastSeenAt time.Time `db:"last_seen_at" json:"last_seen_at"`
}
