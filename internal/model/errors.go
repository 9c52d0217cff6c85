package model

import "errors"

// Error kinds surfaced by the ledger. Wrap them with context and test with
// errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInactive          = errors.New("inactive")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
)
