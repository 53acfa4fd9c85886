package economy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinels for errors.Is checks. The typed errors below carry the
// diagnostics and match their sentinel through Is.
var (
	ErrEconomyNotAvailable   = errors.New("economy is not available")
	ErrExceedsMaximumBalance = errors.New("amount exceeds maximum balance limit")
	ErrInsufficientFunds     = errors.New("insufficient funds")

	// ErrNotInitialized is returned when the provider is queried before the
	// bootstrap hook has run.
	ErrNotInitialized = errors.New("the economy provider has not been initialized")
)

// NotAvailableError reports an operation against an economy the ledger does
// not recognize as active. Nothing was mutated.
type NotAvailableError struct {
	Economy Economy
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("economy '%s' is not available", e.Economy.Name())
}

func (e *NotAvailableError) Is(target error) bool {
	return target == ErrEconomyNotAvailable
}

// MaxBalanceError reports a mutation whose result would exceed the
// configured ceiling. Both values are kept for diagnostics.
type MaxBalanceError struct {
	Attempted decimal.Decimal
	Max       decimal.Decimal
}

func (e *MaxBalanceError) Error() string {
	return fmt.Sprintf("amount %s exceeds maximum balance limit of %s", e.Attempted, e.Max)
}

func (e *MaxBalanceError) Is(target error) bool {
	return target == ErrExceedsMaximumBalance
}

// InsufficientFundsError reports a subtraction that would drive a balance
// negative. The stored balance is unchanged.
type InsufficientFundsError struct {
	Needed    decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: needed %s, available %s", e.Needed, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
