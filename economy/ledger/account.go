package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/shopspring/decimal"
)

type cellKey struct {
	economy economy.Economy
	period  economy.PeriodType
}

// cell is one (economy, period) balance slot. bucket is the start instant of
// the period bucket the balance was last written in; a mismatch with the
// current bucket means the balance is stale and rotates to zero on access.
type cell struct {
	balance decimal.Decimal
	bucket  time.Time
}

// Account holds every balance of a single player. It is created lazily on
// first access and mutated only through the Ledger's operations; the mutex
// makes each read-modify-write on the account (rotation check included)
// atomic as a unit.
type Account struct {
	mu         sync.Mutex
	id         uuid.UUID
	name       string
	seq        int64
	cells      map[cellKey]*cell
	cumulative map[economy.Economy]decimal.Decimal
}

func newAccount(id uuid.UUID, name string, seq int64) *Account {
	return &Account{
		id:         id,
		name:       name,
		seq:        seq,
		cells:      make(map[cellKey]*cell),
		cumulative: make(map[economy.Economy]decimal.Decimal),
	}
}

// ID returns the player's stable unique id.
func (a *Account) ID() uuid.UUID {
	return a.id
}

// Name returns the player's display name as last supplied by the host.
func (a *Account) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

// SetName updates the denormalized display name.
func (a *Account) SetName(name string) {
	a.mu.Lock()
	a.name = name
	a.mu.Unlock()
}

// Seq is the account load order, used as the deterministic leaderboard
// tie-break for equal balances.
func (a *Account) Seq() int64 {
	return a.seq
}

// cellLocked returns the slot for (econ, period), creating a zero cell on
// first touch and rotating the balance to zero when the period has moved to
// a new bucket since the last write. Caller holds a.mu.
func (a *Account) cellLocked(econ economy.Economy, period economy.PeriodType, zone *time.Location, now time.Time) (*cell, bool) {
	key := cellKey{economy: econ, period: period}
	c, ok := a.cells[key]
	if !ok {
		c = &cell{balance: decimal.Zero}
		if start, bounded := period.BucketStart(zone, now); bounded {
			c.bucket = start
		}
		a.cells[key] = c
		return c, false
	}

	if start, bounded := period.BucketStart(zone, now); bounded && !c.bucket.Equal(start) {
		c.balance = decimal.Zero
		c.bucket = start
		return c, true
	}
	return c, false
}
