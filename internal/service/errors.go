package service

import "errors"

// Service-level sentinel errors. The repository package owns the
// storage-adjacent ones (state conflicts, races, funds); the HTTP error
// middleware maps both sets to status codes.
var (
	ErrValidation        = errors.New("invalid input")
	ErrAuthorization     = errors.New("not allowed")
	ErrInvalidKey        = errors.New("code not recognized")
	ErrOrderingSuspended = errors.New("ordering is temporarily suspended")
	ErrMinWithdrawal     = errors.New("amount is below the minimum withdrawal")
)
