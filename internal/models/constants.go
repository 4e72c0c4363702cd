package models

// Order status tokens, persisted as-is.
const (
	OrderStatusCreated   = "CREATED"
	OrderStatusPaid      = "PAID"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusPickedUp  = "PICKED_UP"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

// Fulfillment types.
const (
	FulfillmentDelivery = "DELIVERY"
	FulfillmentPickup   = "PICKUP"
)

// Escrow statuses.
const (
	EscrowStatusHeld     = "HELD"
	EscrowStatusReleased = "RELEASED"
	EscrowStatusRefunded = "REFUNDED"
)

// Wallet statuses.
const (
	WalletStatusActive = "active"
	WalletStatusFrozen = "frozen"
)

// Transaction types.
const (
	TransactionTypeEscrowHold    = "escrow_hold"
	TransactionTypeEscrowRelease = "escrow_release"
	TransactionTypeRunnerFee     = "runner_fee"
	TransactionTypeEscrowRefund  = "escrow_refund"
	TransactionTypeWithdrawal    = "withdrawal"
)

// Transaction statuses.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Withdrawal statuses.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusPaid     = "paid"
	WithdrawalStatusRejected = "rejected"
)

// Roles carried in access tokens issued by the identity provider.
const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
	RoleRunner  = "runner"
	RoleAdmin   = "admin"
)

// Admin escrow actions.
const (
	AdminActionForceRelease = "FORCE_RELEASE"
	AdminActionForceRefund  = "FORCE_REFUND"
)

// ValidOrderStatuses lists every persisted order status token.
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusCreated:   {},
	OrderStatusPaid:      {},
	OrderStatusPreparing: {},
	OrderStatusReady:     {},
	OrderStatusPickedUp:  {},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
}

// ValidFulfillmentTypes lists the accepted fulfillment types.
var ValidFulfillmentTypes = map[string]struct{}{
	FulfillmentDelivery: {},
	FulfillmentPickup:   {},
}

// TerminalOrderStatuses are statuses that accept no further transitions.
var TerminalOrderStatuses = map[string]struct{}{
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
}

// IsTerminalOrderStatus reports whether the status accepts no further transitions.
func IsTerminalOrderStatus(status string) bool {
	_, ok := TerminalOrderStatuses[status]
	return ok
}
