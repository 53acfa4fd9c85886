// Package ledger implements the authoritative per-player balance store:
// multi-currency, multi-period accounting with exact decimal amounts, lazy
// period rotation, overflow/underflow checks and one mutation event per
// committed change.
package ledger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/shopspring/decimal"
)

// Dispatcher receives the public mutation notifications. Both
// events.Notifier and events.AsyncNotifier satisfy it.
type Dispatcher interface {
	FireAction(action events.Action, data events.ActionData)
}

// Update describes a single (player, economy, period) cell after a change.
// Sinks receive one Update per touched cell, in commit order per cell.
// Bucket is the start instant of the period bucket the balance belongs to;
// it is the zero time for lifetime cells.
type Update struct {
	PlayerID   uuid.UUID
	PlayerName string
	Seq        int64
	Economy    economy.Economy
	Period     economy.PeriodType
	Balance    decimal.Decimal
	Bucket     time.Time
}

// CumulativeUpdate describes a change to a player's all-time earned total
// for one economy.
type CumulativeUpdate struct {
	PlayerID   uuid.UUID
	PlayerName string
	Economy    economy.Economy
	Balance    decimal.Decimal
}

// Sink observes committed cell and cumulative changes. The leaderboard index
// and the persistence recorder both attach here; sinks are called on the
// committing path and must not call back into the Ledger.
type Sink interface {
	BalanceChanged(update Update)
	CumulativeChanged(update CumulativeUpdate)
}

// Config carries the ledger's operating parameters.
type Config struct {
	// Economies is the set of active economies; operations against any other
	// economy fail with NotAvailableError.
	Economies []economy.Economy

	// MaxBalance is the per-cell ceiling. Zero or negative disables it.
	MaxBalance decimal.Decimal

	// Zone resolves period bucket boundaries. Defaults to time.Local.
	Zone *time.Location

	// Now is the clock, injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

// Ledger is the balance store. Different accounts proceed fully in parallel;
// operations on the same account serialize on the account mutex so every
// read-modify-write (rotation check included) is linearizable.
type Ledger struct {
	active     map[economy.Economy]struct{}
	economies  []economy.Economy
	maxBalance decimal.Decimal
	zone       *time.Location
	now        func() time.Time

	accounts *xsync.MapOf[uuid.UUID, *Account]
	seq      atomic.Int64

	notifier Dispatcher

	sinkMu sync.RWMutex
	sinks  []Sink
}

// New builds a Ledger. The dispatcher may be nil when no public events are
// wanted (tests, offline migration).
func New(cfg Config, notifier Dispatcher) *Ledger {
	zone := cfg.Zone
	if zone == nil {
		zone = time.Local
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	active := make(map[economy.Economy]struct{}, len(cfg.Economies))
	for _, e := range cfg.Economies {
		active[e] = struct{}{}
	}

	return &Ledger{
		active:     active,
		economies:  append([]economy.Economy(nil), cfg.Economies...),
		maxBalance: cfg.MaxBalance,
		zone:       zone,
		now:        now,
		accounts:   xsync.NewMapOf[uuid.UUID, *Account](),
		notifier:   notifier,
	}
}

// Economies returns the active economies in configuration order.
func (l *Ledger) Economies() []economy.Economy {
	return append([]economy.Economy(nil), l.economies...)
}

// AttachSink registers a derived view (leaderboard, persistence recorder).
// Registration is append-only for the process lifetime.
func (l *Ledger) AttachSink(s Sink) {
	l.sinkMu.Lock()
	l.sinks = append(l.sinks, s)
	l.sinkMu.Unlock()
}

// Load creates the account for id on first call and refreshes the display
// name on subsequent ones.
func (l *Ledger) Load(id uuid.UUID, name string) *Account {
	acct := l.account(id)
	if name != "" {
		acct.SetName(name)
	}
	return acct
}

// Get returns the loaded account for id, if any.
func (l *Ledger) Get(id uuid.UUID) (*Account, bool) {
	return l.accounts.Load(id)
}

// Unload drops the in-memory account. Persisted state is unaffected.
func (l *Ledger) Unload(id uuid.UUID) {
	l.accounts.Delete(id)
}

// Loaded returns every currently loaded account.
func (l *Ledger) Loaded() []*Account {
	accounts := make([]*Account, 0, l.accounts.Size())
	l.accounts.Range(func(_ uuid.UUID, a *Account) bool {
		accounts = append(accounts, a)
		return true
	})
	return accounts
}

func (l *Ledger) account(id uuid.UUID) *Account {
	acct, _ := l.accounts.LoadOrCompute(id, func() *Account {
		return newAccount(id, "", l.seq.Add(1))
	})
	return acct
}

func (l *Ledger) checkEconomy(econ economy.Economy) error {
	if _, ok := l.active[econ]; !ok {
		return &economy.NotAvailableError{Economy: econ}
	}
	return nil
}

func (l *Ledger) checkAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", amount)
	}
	return nil
}

// notifySinks fans a batch of cell updates out to the attached sinks. Called
// while the account lock is held so per-cell update order matches commit
// order.
func (l *Ledger) notifySinks(updates []Update) {
	if len(updates) == 0 {
		return
	}
	l.sinkMu.RLock()
	sinks := l.sinks
	l.sinkMu.RUnlock()

	for _, s := range sinks {
		for _, u := range updates {
			s.BalanceChanged(u)
		}
	}
}

// notifyCumulative fans a cumulative-total change out to the attached sinks.
// Called while the account lock is held.
func (l *Ledger) notifyCumulative(u CumulativeUpdate) {
	l.sinkMu.RLock()
	sinks := l.sinks
	l.sinkMu.RUnlock()

	for _, s := range sinks {
		s.CumulativeChanged(u)
	}
}

func (l *Ledger) fire(action events.Action, id uuid.UUID, econ economy.Economy, balance, amount decimal.Decimal) {
	if l.notifier == nil {
		return
	}
	l.notifier.FireAction(action, events.ActionData{
		PlayerID: id,
		Economy:  econ,
		Balance:  balance,
		Amount:   amount,
	})
}
