// Package leaderboard maintains descending-balance rankings derived from the
// ledger. One board exists per (economy, period); boards are updated
// incrementally from ledger cell changes, never recomputed by full sort at
// query time, and are never the source of truth for balances.
package leaderboard

import (
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type entry struct {
	playerID uuid.UUID
	name     string
	seq      int64
	balance  decimal.Decimal
}

// board is a single (economy, period) ranking: entries sorted by balance
// descending with ties broken by ascending account load sequence, which
// keeps rank and by-index lookups stable across repeated queries.
type board struct {
	mu      sync.RWMutex
	entries []entry
	known   map[uuid.UUID]entry
}

func newBoard() *board {
	return &board{known: make(map[uuid.UUID]entry)}
}

// search returns the position at which (balance, seq) sorts: the first index
// whose entry orders at or after the key.
func (b *board) search(balance decimal.Decimal, seq int64) int {
	return sort.Search(len(b.entries), func(i int) bool {
		e := b.entries[i]
		if c := e.balance.Cmp(balance); c != 0 {
			return c < 0
		}
		return e.seq >= seq
	})
}

func (b *board) update(id uuid.UUID, name string, seq int64, balance decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.known[id]; ok {
		i := b.search(old.balance, old.seq)
		if i < len(b.entries) && b.entries[i].playerID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
		}
	}

	e := entry{playerID: id, name: name, seq: seq, balance: balance}
	i := b.search(balance, seq)
	b.entries = append(b.entries, entry{})
	copy(b.entries[i+1:], b.entries[i:])
	b.entries[i] = e
	b.known[id] = e
}

func (b *board) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	old, ok := b.known[id]
	if !ok {
		return
	}
	i := b.search(old.balance, old.seq)
	if i < len(b.entries) && b.entries[i].playerID == id {
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
	}
	delete(b.known, id)
}

// rank is the 0-based position of the player. A player the board has never
// seen ranks as if holding zero, behind every recorded account.
func (b *board) rank(id uuid.UUID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if e, ok := b.known[id]; ok {
		return b.search(e.balance, e.seq)
	}
	return b.search(decimal.Zero, math.MaxInt64)
}

func (b *board) top(limit int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit > len(b.entries) {
		limit = len(b.entries)
	}
	if limit <= 0 {
		return nil
	}
	names := make([]string, limit)
	for i := 0; i < limit; i++ {
		names[i] = b.entries[i].name
	}
	return names
}

func (b *board) byIndex(index int) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if index < 0 || index >= len(b.entries) {
		return "", false
	}
	return b.entries[index].name, true
}

func (b *board) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
