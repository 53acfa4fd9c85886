package provider

import (
	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/ledger"
	"github.com/shopspring/decimal"
)

// PlayerEconomy is the per-player handle. Every mutation goes through the
// ledger; the handle itself carries no balance state, so it stays valid for
// as long as the account is loaded.
type PlayerEconomy struct {
	provider *Provider
	account  *ledger.Account
}

// UniqueID returns the player's stable unique id.
func (pe *PlayerEconomy) UniqueID() uuid.UUID {
	return pe.account.ID()
}

// Name returns the player's display name.
func (pe *PlayerEconomy) Name() string {
	return pe.account.Name()
}

// Balance returns the lifetime balance for econ.
func (pe *PlayerEconomy) Balance(econ economy.Economy) (decimal.Decimal, error) {
	return pe.provider.ledger.Balance(pe.UniqueID(), econ)
}

// PeriodBalance returns the active bucket's balance for (econ, period).
func (pe *PlayerEconomy) PeriodBalance(econ economy.Economy, period economy.PeriodType) (decimal.Decimal, error) {
	return pe.provider.ledger.PeriodBalance(pe.UniqueID(), econ, period)
}

// SetBalance sets the lifetime balance for econ.
func (pe *PlayerEconomy) SetBalance(econ economy.Economy, amount decimal.Decimal) error {
	return pe.provider.ledger.SetBalance(pe.UniqueID(), econ, amount)
}

// SetBalanceFloat is SetBalance with boundary float conversion.
func (pe *PlayerEconomy) SetBalanceFloat(econ economy.Economy, amount float64) error {
	return pe.provider.ledger.SetBalanceFloat(pe.UniqueID(), econ, amount)
}

// AddBalance adds amount to the player's balance for econ.
func (pe *PlayerEconomy) AddBalance(econ economy.Economy, amount decimal.Decimal) error {
	return pe.provider.ledger.AddBalance(pe.UniqueID(), econ, amount)
}

// AddBalanceFloat is AddBalance with boundary float conversion.
func (pe *PlayerEconomy) AddBalanceFloat(econ economy.Economy, amount float64) error {
	return pe.provider.ledger.AddBalanceFloat(pe.UniqueID(), econ, amount)
}

// SubtractBalance removes amount from the player's balance for econ.
func (pe *PlayerEconomy) SubtractBalance(econ economy.Economy, amount decimal.Decimal) error {
	return pe.provider.ledger.SubtractBalance(pe.UniqueID(), econ, amount)
}

// SubtractBalanceFloat is SubtractBalance with boundary float conversion.
func (pe *PlayerEconomy) SubtractBalanceFloat(econ economy.Economy, amount float64) error {
	return pe.provider.ledger.SubtractBalanceFloat(pe.UniqueID(), econ, amount)
}

// SetPeriodBalance sets a single (econ, period) cell.
func (pe *PlayerEconomy) SetPeriodBalance(econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return pe.provider.ledger.SetPeriodBalance(pe.UniqueID(), econ, period, amount)
}

// AddPeriodBalance adds amount to a single (econ, period) cell.
func (pe *PlayerEconomy) AddPeriodBalance(econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return pe.provider.ledger.AddPeriodBalance(pe.UniqueID(), econ, period, amount)
}

// SubtractPeriodBalance removes amount from a single (econ, period) cell.
func (pe *PlayerEconomy) SubtractPeriodBalance(econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return pe.provider.ledger.SubtractPeriodBalance(pe.UniqueID(), econ, period, amount)
}

// ResetBalance zeroes the player's balance for econ.
func (pe *PlayerEconomy) ResetBalance(econ economy.Economy) error {
	return pe.provider.ledger.ResetBalance(pe.UniqueID(), econ)
}

// ResetPeriodBalance zeroes a single (econ, period) cell.
func (pe *PlayerEconomy) ResetPeriodBalance(econ economy.Economy, period economy.PeriodType) error {
	return pe.provider.ledger.ResetPeriodBalance(pe.UniqueID(), econ, period)
}

// HasBalance reports whether the player holds at least amount in econ.
func (pe *PlayerEconomy) HasBalance(econ economy.Economy, amount decimal.Decimal) (bool, error) {
	return pe.provider.ledger.HasBalance(pe.UniqueID(), econ, amount)
}

// HasBalanceFloat is HasBalance with boundary float conversion.
func (pe *PlayerEconomy) HasBalanceFloat(econ economy.Economy, amount float64) (bool, error) {
	return pe.provider.ledger.HasBalanceFloat(pe.UniqueID(), econ, amount)
}

// HasPeriodBalance reports whether the player holds at least amount in the
// active (econ, period) bucket.
func (pe *PlayerEconomy) HasPeriodBalance(econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) (bool, error) {
	return pe.provider.ledger.HasPeriodBalance(pe.UniqueID(), econ, period, amount)
}

// HasAnyBalance reports whether the player holds a positive balance in econ.
func (pe *PlayerEconomy) HasAnyBalance(econ economy.Economy) (bool, error) {
	return pe.provider.ledger.HasAnyBalance(pe.UniqueID(), econ)
}

// Balances returns the lifetime balance of every active economy.
func (pe *PlayerEconomy) Balances() map[economy.Economy]decimal.Decimal {
	return pe.provider.ledger.Balances(pe.UniqueID())
}

// PeriodicBalances returns every period's view of every active economy.
func (pe *PlayerEconomy) PeriodicBalances() map[economy.PeriodType]map[economy.Economy]decimal.Decimal {
	return pe.provider.ledger.PeriodicBalances(pe.UniqueID())
}

// CumulativeBalance returns the all-time earned total for econ.
func (pe *PlayerEconomy) CumulativeBalance(econ economy.Economy) (decimal.Decimal, error) {
	return pe.provider.ledger.CumulativeBalance(pe.UniqueID(), econ)
}

// CumulativeBalances returns the all-time earned totals per active economy.
func (pe *PlayerEconomy) CumulativeBalances() map[economy.Economy]decimal.Decimal {
	return pe.provider.ledger.CumulativeBalances(pe.UniqueID())
}

// ResetCumulativeBalance clears the all-time earned total for econ.
func (pe *PlayerEconomy) ResetCumulativeBalance(econ economy.Economy) error {
	return pe.provider.ledger.ResetCumulativeBalance(pe.UniqueID(), econ)
}
