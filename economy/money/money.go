// Package money wraps the exact-decimal arithmetic used for every balance in
// the ledger. Balances are currency-like, so all math goes through
// shopspring/decimal; float64 only ever appears at the API boundary and is
// converted once, deterministically, before any arithmetic.
package money

import (
	"fmt"

	"github.com/levely/playereconomy/economy"
	"github.com/shopspring/decimal"
)

// Zero is the additive identity, exported for readability at call sites.
var Zero = decimal.Zero

// Add returns a + b.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Subtract returns a - b, or an InsufficientFundsError when the result would
// be negative. Balances are never clamped.
func Subtract(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return a, &economy.InsufficientFundsError{Needed: b, Available: a}
	}
	return a.Sub(b), nil
}

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than b.
func Compare(a, b decimal.Decimal) int {
	return a.Cmp(b)
}

// WithinLimit reports whether a does not exceed max. A non-positive max
// disables the ceiling.
func WithinLimit(a, max decimal.Decimal) bool {
	if max.Sign() <= 0 {
		return true
	}
	return a.LessThanOrEqual(max)
}

// FromFloat converts a float64 to its exact decimal representation via the
// shortest decimal string that round-trips the value. The conversion is
// deterministic: FromFloat(1.1) is exactly 1.1, not the binary expansion.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Parse converts a decimal string ("10.50") into a Decimal.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for trusted literals (defaults, tests).
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
