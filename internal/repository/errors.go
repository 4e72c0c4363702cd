package repository

import "errors"

// Sentinel errors shared by the repositories. The HTTP error middleware maps
// them to status codes; services wrap them with user-facing context.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEscrowNotFound     = errors.New("escrow not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrAlreadyProcessed signals an idempotent replay: the operation has
	// already reached its terminal effect and nothing was mutated.
	ErrAlreadyProcessed = errors.New("operation already processed")

	// ErrStateConflict signals a transition attempted from a state that does
	// not match its guard. Nothing was mutated.
	ErrStateConflict = errors.New("operation not allowed in current state")

	// ErrRaceLost signals that another runner won the mission-accept race.
	ErrRaceLost = errors.New("mission already taken")

	// ErrCodeTaken signals that a freshly generated code already exists on
	// some order, in either column. Callers regenerate and retry.
	ErrCodeTaken = errors.New("generated code already in use")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletFrozen      = errors.New("wallet is frozen")
	ErrAmountMismatch    = errors.New("paid amount does not match order total")
	ErrNotOwner          = errors.New("actor does not own this order")
)
