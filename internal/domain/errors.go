package domain

import "errors"

// Sentinel errors shared by the store, the account service and the HTTP
// layer. Handlers map these to status codes; anything else is a 500.
var (
	// ErrInvalidAmount rejects non-positive deposit/withdrawal amounts.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientFunds rejects withdrawals above the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUserNotFound is returned for an unknown customer id or google id.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountNotFound is returned for an unknown account number or an
	// owner with no accounts.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateIdentity is returned when a user with the same email or
	// google id already exists.
	ErrDuplicateIdentity = errors.New("identity already registered")

	// ErrUserInactive blocks sign-in and session resolution for disabled users.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrAccountNumbersExhausted is returned when account number allocation
	// keeps colliding past its retry cap.
	ErrAccountNumbersExhausted = errors.New("could not allocate a unique account number")

	// ErrBalanceConflict is returned when a balance update keeps losing the
	// compare-and-swap race past its retry cap.
	ErrBalanceConflict = errors.New("balance was modified concurrently")
)
