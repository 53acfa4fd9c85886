package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/levely/playereconomy/economy/money"
	"github.com/shopspring/decimal"
)

// Non-scoped operations work on the lifetime view of an economy. Deltas fan
// out to the daily/weekly/monthly cells of the same economy so the periodic
// leaderboards track "earned this period"; periodic cells floor at zero on
// spend since the non-negative invariant holds per cell.

// Balance returns the player's lifetime balance for econ.
func (l *Ledger) Balance(id uuid.UUID, econ economy.Economy) (decimal.Decimal, error) {
	return l.PeriodBalance(id, econ, economy.PeriodLifetime)
}

// PeriodBalance returns the balance of the active bucket for (econ, period),
// rotating the stored value to zero first when the bucket has moved.
func (l *Ledger) PeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType) (decimal.Decimal, error) {
	if err := l.checkEconomy(econ); err != nil {
		return decimal.Zero, err
	}
	acct := l.account(id)
	acct.mu.Lock()
	balance, updates := l.readLocked(acct, econ, period, l.now())
	l.notifySinks(updates)
	acct.mu.Unlock()
	return balance, nil
}

// SetBalance sets the lifetime balance to amount. The signed difference to
// the previous balance is applied to the periodic cells as well, and counts
// toward the cumulative total when positive.
func (l *Ledger) SetBalance(id uuid.UUID, econ economy.Economy, amount decimal.Decimal) error {
	return l.applyAll(id, econ, events.ActionSet, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		if !money.WithinLimit(amount, l.maxBalance) {
			return old, &economy.MaxBalanceError{Attempted: amount, Max: l.maxBalance}
		}
		return amount, nil
	})
}

// AddBalance adds amount to the lifetime balance and to every periodic cell.
func (l *Ledger) AddBalance(id uuid.UUID, econ economy.Economy, amount decimal.Decimal) error {
	return l.applyAll(id, econ, events.ActionAdd, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		next := money.Add(old, amount)
		if !money.WithinLimit(next, l.maxBalance) {
			return old, &economy.MaxBalanceError{Attempted: next, Max: l.maxBalance}
		}
		return next, nil
	})
}

// SubtractBalance removes amount from the lifetime balance. Spending more
// than available is an error, not a clamp, and leaves the balance unchanged.
func (l *Ledger) SubtractBalance(id uuid.UUID, econ economy.Economy, amount decimal.Decimal) error {
	return l.applyAll(id, econ, events.ActionSubtract, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		return money.Subtract(old, amount)
	})
}

// ResetBalance zeroes the lifetime balance, which also zeroes the periodic
// cells through the fan-out. Emits a set event with the negated old balance.
func (l *Ledger) ResetBalance(id uuid.UUID, econ economy.Economy) error {
	return l.SetBalance(id, econ, decimal.Zero)
}

// SetPeriodBalance sets the balance of a single (econ, period) cell without
// touching the other periods or the cumulative total.
func (l *Ledger) SetPeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return l.applyOne(id, econ, period, events.ActionSet, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		if !money.WithinLimit(amount, l.maxBalance) {
			return old, &economy.MaxBalanceError{Attempted: amount, Max: l.maxBalance}
		}
		return amount, nil
	})
}

// AddPeriodBalance adds amount to a single (econ, period) cell.
func (l *Ledger) AddPeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return l.applyOne(id, econ, period, events.ActionAdd, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		next := money.Add(old, amount)
		if !money.WithinLimit(next, l.maxBalance) {
			return old, &economy.MaxBalanceError{Attempted: next, Max: l.maxBalance}
		}
		return next, nil
	})
}

// SubtractPeriodBalance removes amount from a single (econ, period) cell.
func (l *Ledger) SubtractPeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) error {
	return l.applyOne(id, econ, period, events.ActionSubtract, func(old decimal.Decimal) (decimal.Decimal, error) {
		if err := l.checkAmount(amount); err != nil {
			return old, err
		}
		return money.Subtract(old, amount)
	})
}

// ResetPeriodBalance zeroes a single (econ, period) cell.
func (l *Ledger) ResetPeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType) error {
	return l.SetPeriodBalance(id, econ, period, decimal.Zero)
}

// HasBalance reports whether the lifetime balance is at least amount.
func (l *Ledger) HasBalance(id uuid.UUID, econ economy.Economy, amount decimal.Decimal) (bool, error) {
	balance, err := l.Balance(id, econ)
	if err != nil {
		return false, err
	}
	return money.Compare(balance, amount) >= 0, nil
}

// HasPeriodBalance reports whether the active bucket's balance for
// (econ, period) is at least amount.
func (l *Ledger) HasPeriodBalance(id uuid.UUID, econ economy.Economy, period economy.PeriodType, amount decimal.Decimal) (bool, error) {
	balance, err := l.PeriodBalance(id, econ, period)
	if err != nil {
		return false, err
	}
	return money.Compare(balance, amount) >= 0, nil
}

// HasAnyBalance reports whether the lifetime balance is positive.
func (l *Ledger) HasAnyBalance(id uuid.UUID, econ economy.Economy) (bool, error) {
	balance, err := l.Balance(id, econ)
	if err != nil {
		return false, err
	}
	return balance.Sign() > 0, nil
}

// Balances returns the lifetime balance for every active economy.
func (l *Ledger) Balances(id uuid.UUID) map[economy.Economy]decimal.Decimal {
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	now := l.now()
	out := make(map[economy.Economy]decimal.Decimal, len(l.economies))
	for _, econ := range l.economies {
		balance, updates := l.readLocked(acct, econ, economy.PeriodLifetime, now)
		l.notifySinks(updates)
		out[econ] = balance
	}
	return out
}

// PeriodicBalances returns every period's view of every active economy,
// rotating stale buckets along the way.
func (l *Ledger) PeriodicBalances(id uuid.UUID) map[economy.PeriodType]map[economy.Economy]decimal.Decimal {
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	now := l.now()
	out := make(map[economy.PeriodType]map[economy.Economy]decimal.Decimal, len(economy.Periods))
	for _, period := range economy.Periods {
		byEconomy := make(map[economy.Economy]decimal.Decimal, len(l.economies))
		for _, econ := range l.economies {
			balance, updates := l.readLocked(acct, econ, period, now)
			l.notifySinks(updates)
			byEconomy[econ] = balance
		}
		out[period] = byEconomy
	}
	return out
}

// CumulativeBalance returns the all-time earned total for econ. It grows
// with every positive delta and survives both period rotation and spending.
func (l *Ledger) CumulativeBalance(id uuid.UUID, econ economy.Economy) (decimal.Decimal, error) {
	if err := l.checkEconomy(econ); err != nil {
		return decimal.Zero, err
	}
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.cumulative[econ], nil
}

// CumulativeBalances returns the all-time earned totals per active economy.
func (l *Ledger) CumulativeBalances(id uuid.UUID) map[economy.Economy]decimal.Decimal {
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	out := make(map[economy.Economy]decimal.Decimal, len(l.economies))
	for _, econ := range l.economies {
		out[econ] = acct.cumulative[econ]
	}
	return out
}

// ResetCumulativeBalance clears the all-time earned total for econ.
func (l *Ledger) ResetCumulativeBalance(id uuid.UUID, econ economy.Economy) error {
	if err := l.checkEconomy(econ); err != nil {
		return err
	}
	acct := l.account(id)
	acct.mu.Lock()
	delete(acct.cumulative, econ)
	l.notifyCumulative(CumulativeUpdate{
		PlayerID:   acct.id,
		PlayerName: acct.name,
		Economy:    econ,
		Balance:    decimal.Zero,
	})
	acct.mu.Unlock()
	return nil
}

// Float-accepting convenience wrappers. Conversion happens once at the
// boundary via money.FromFloat; everything past this point is exact decimal.

func (l *Ledger) SetBalanceFloat(id uuid.UUID, econ economy.Economy, amount float64) error {
	return l.SetBalance(id, econ, money.FromFloat(amount))
}

func (l *Ledger) AddBalanceFloat(id uuid.UUID, econ economy.Economy, amount float64) error {
	return l.AddBalance(id, econ, money.FromFloat(amount))
}

func (l *Ledger) SubtractBalanceFloat(id uuid.UUID, econ economy.Economy, amount float64) error {
	return l.SubtractBalance(id, econ, money.FromFloat(amount))
}

func (l *Ledger) HasBalanceFloat(id uuid.UUID, econ economy.Economy, amount float64) (bool, error) {
	return l.HasBalance(id, econ, money.FromFloat(amount))
}

// applyAll runs a lifetime mutation and fans the resulting delta out to the
// periodic cells. compute receives the current lifetime balance and returns
// the new one; returning an error aborts with no mutation committed.
func (l *Ledger) applyAll(id uuid.UUID, econ economy.Economy, action events.Action, compute func(old decimal.Decimal) (decimal.Decimal, error)) error {
	if err := l.checkEconomy(econ); err != nil {
		return err
	}
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	now := l.now()
	life, _ := acct.cellLocked(econ, economy.PeriodLifetime, l.zone, now)
	old := life.balance
	next, err := compute(old)
	if err != nil {
		return err
	}
	delta := next.Sub(old)
	life.balance = next

	updates := make([]Update, 0, len(economy.Periods))
	updates = append(updates, l.updateFor(acct, econ, economy.PeriodLifetime, next, life.bucket))

	for _, period := range economy.Periods[1:] {
		c, rotated := acct.cellLocked(econ, period, l.zone, now)
		nb := c.balance.Add(delta)
		if nb.IsNegative() {
			nb = decimal.Zero
		}
		changed := !nb.Equal(c.balance) || rotated
		c.balance = nb
		if changed {
			updates = append(updates, l.updateFor(acct, econ, period, nb, c.bucket))
		}
	}

	if delta.Sign() > 0 {
		total := acct.cumulative[econ].Add(delta)
		acct.cumulative[econ] = total
		l.notifyCumulative(CumulativeUpdate{
			PlayerID:   acct.id,
			PlayerName: acct.name,
			Economy:    econ,
			Balance:    total,
		})
	}

	l.notifySinks(updates)
	l.fire(action, id, econ, next, delta)
	return nil
}

// applyOne runs a mutation against a single (econ, period) cell.
func (l *Ledger) applyOne(id uuid.UUID, econ economy.Economy, period economy.PeriodType, action events.Action, compute func(old decimal.Decimal) (decimal.Decimal, error)) error {
	if err := l.checkEconomy(econ); err != nil {
		return err
	}
	acct := l.account(id)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	now := l.now()
	c, rotated := acct.cellLocked(econ, period, l.zone, now)
	old := c.balance
	next, err := compute(old)
	if err != nil {
		if rotated {
			l.notifySinks([]Update{l.updateFor(acct, econ, period, old, c.bucket)})
		}
		return err
	}
	c.balance = next

	l.notifySinks([]Update{l.updateFor(acct, econ, period, next, c.bucket)})
	l.fire(action, id, econ, next, next.Sub(old))
	return nil
}

// readLocked returns the effective balance for (econ, period), rotating the
// stored value when the bucket moved. Missing cells read as zero without
// being materialized. Caller holds acct.mu.
func (l *Ledger) readLocked(acct *Account, econ economy.Economy, period economy.PeriodType, now time.Time) (decimal.Decimal, []Update) {
	key := cellKey{economy: econ, period: period}
	c, ok := acct.cells[key]
	if !ok {
		return decimal.Zero, nil
	}
	if start, bounded := period.BucketStart(l.zone, now); bounded && !c.bucket.Equal(start) {
		c.balance = decimal.Zero
		c.bucket = start
		return decimal.Zero, []Update{l.updateFor(acct, econ, period, decimal.Zero, c.bucket)}
	}
	return c.balance, nil
}

// updateFor builds the sink payload for one cell. Caller holds acct.mu.
func (l *Ledger) updateFor(acct *Account, econ economy.Economy, period economy.PeriodType, balance decimal.Decimal, bucket time.Time) Update {
	return Update{
		PlayerID:   acct.id,
		PlayerName: acct.name,
		Seq:        acct.seq,
		Economy:    econ,
		Period:     period,
		Balance:    balance,
		Bucket:     bucket,
	}
}
