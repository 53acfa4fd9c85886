package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/shopspring/decimal"
)

// Snapshot is the persisted state of one account: every (economy, period)
// cell with its bucket marker, plus the cumulative totals. Persistence
// backends write these out and feed them back through Restore at startup.
type Snapshot struct {
	PlayerID   uuid.UUID
	PlayerName string
	Cells      []CellSnapshot
	Cumulative map[economy.Economy]decimal.Decimal
}

// CellSnapshot is one (economy, period) balance with the bucket it was last
// written in. Restore re-runs the rotation check, so a snapshot taken in an
// old bucket comes back as zero.
type CellSnapshot struct {
	Economy economy.Economy
	Period  economy.PeriodType
	Balance decimal.Decimal
	Bucket  time.Time
}

// Restore loads a snapshot into the ledger. Sinks are notified so derived
// views (leaderboards) rebuild; no public mutation events fire, restoring is
// not a mutation.
func (l *Ledger) Restore(s Snapshot) {
	acct := l.Load(s.PlayerID, s.PlayerName)
	acct.mu.Lock()
	defer acct.mu.Unlock()

	now := l.now()
	updates := make([]Update, 0, len(s.Cells))
	for _, cs := range s.Cells {
		if _, ok := l.active[cs.Economy]; !ok {
			continue
		}
		balance := cs.Balance
		bucket := cs.Bucket
		if start, bounded := cs.Period.BucketStart(l.zone, now); bounded {
			if !bucket.Equal(start) {
				balance = decimal.Zero
			}
			bucket = start
		}
		acct.cells[cellKey{economy: cs.Economy, period: cs.Period}] = &cell{
			balance: balance,
			bucket:  bucket,
		}
		updates = append(updates, l.updateFor(acct, cs.Economy, cs.Period, balance, bucket))
	}
	for econ, total := range s.Cumulative {
		if _, ok := l.active[econ]; ok {
			acct.cumulative[econ] = total
		}
	}
	l.notifySinks(updates)
}

// SnapshotOf captures the current persisted state of an account.
func (l *Ledger) SnapshotOf(id uuid.UUID) (Snapshot, bool) {
	acct, ok := l.accounts.Load(id)
	if !ok {
		return Snapshot{}, false
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()

	s := Snapshot{
		PlayerID:   acct.id,
		PlayerName: acct.name,
		Cells:      make([]CellSnapshot, 0, len(acct.cells)),
		Cumulative: make(map[economy.Economy]decimal.Decimal, len(acct.cumulative)),
	}
	for key, c := range acct.cells {
		s.Cells = append(s.Cells, CellSnapshot{
			Economy: key.economy,
			Period:  key.period,
			Balance: c.balance,
			Bucket:  c.bucket,
		})
	}
	for econ, total := range acct.cumulative {
		s.Cumulative[econ] = total
	}
	return s, true
}
