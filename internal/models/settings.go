package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformSettings is the single mutable operator configuration record.
// There is exactly one row; readers get a consistent snapshot per request.
type PlatformSettings struct {
	ID                int        `db:"id" json:"-"`
	OrderingSuspended bool       `db:"ordering_suspended" json:"ordering_suspended"`
	RunnerFlatFee     float64    `db:"runner_flat_fee" json:"runner_flat_fee"`
	UpdatedBy         *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// AuditRecord logs an out-of-band operator action.
type AuditRecord struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	OperatorID uuid.UUID  `db:"operator_id" json:"operator_id"`
	OrderID    *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	Action     string     `db:"action" json:"action"`
	Detail     *string    `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}
