package ledger

import "errors"

var (
	// ErrInvalidAmount is returned when an amount is nil, negative or zero.
	ErrInvalidAmount = errors.New("ledger: invalid amount")
	// ErrInvalidRecipient is returned when an account identity is empty.
	ErrInvalidRecipient = errors.New("ledger: invalid recipient")
	// ErrInsufficientBalance is returned when the source holds less than the requested amount.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrInsufficientAllowance is returned when a spender moves more than the owner approved.
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
)
