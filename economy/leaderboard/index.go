package leaderboard

import (
	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/ledger"
	"github.com/puzpuzpuz/xsync/v3"
)

type boardKey struct {
	economy economy.Economy
	period  economy.PeriodType
}

// Index owns one board per (economy, period) and feeds them from ledger cell
// changes. Attach it with Ledger.AttachSink; per-cell ordering comes from the
// ledger committing path, so a board never reorders one account's updates.
type Index struct {
	boards *xsync.MapOf[boardKey, *board]
}

func NewIndex() *Index {
	return &Index{boards: xsync.NewMapOf[boardKey, *board]()}
}

// BalanceChanged implements ledger.Sink.
func (x *Index) BalanceChanged(u ledger.Update) {
	x.board(u.Economy, u.Period).update(u.PlayerID, u.PlayerName, u.Seq, u.Balance)
}

// CumulativeChanged implements ledger.Sink. Cumulative totals are not
// ranked, so there is nothing to index.
func (x *Index) CumulativeChanged(ledger.CumulativeUpdate) {}

// Remove drops a player from every board, for explicit account unload.
func (x *Index) Remove(id uuid.UUID) {
	x.boards.Range(func(_ boardKey, b *board) bool {
		b.remove(id)
		return true
	})
}

// Rank returns the 0-based position of the player on the lifetime board.
func (x *Index) Rank(id uuid.UUID, econ economy.Economy) int {
	return x.RankForPeriod(id, econ, economy.PeriodLifetime)
}

// RankForPeriod returns the 0-based position of the player on the
// (economy, period) board. Players with no recorded balance rank as if
// holding zero.
func (x *Index) RankForPeriod(id uuid.UUID, econ economy.Economy, period economy.PeriodType) int {
	return x.board(econ, period).rank(id)
}

// Top returns up to limit player names from the lifetime board, richest
// first.
func (x *Index) Top(econ economy.Economy, limit int) []string {
	return x.TopForPeriod(econ, economy.PeriodLifetime, limit)
}

// TopForPeriod returns up to limit player names from the (economy, period)
// board, richest first.
func (x *Index) TopForPeriod(econ economy.Economy, period economy.PeriodType, limit int) []string {
	return x.board(econ, period).top(limit)
}

// ByIndex returns the player name at the 0-based ranking position on the
// lifetime board.
func (x *Index) ByIndex(econ economy.Economy, index int) (string, bool) {
	return x.ByIndexForPeriod(econ, economy.PeriodLifetime, index)
}

// ByIndexForPeriod returns the player name at the 0-based ranking position
// on the (economy, period) board.
func (x *Index) ByIndexForPeriod(econ economy.Economy, period economy.PeriodType, index int) (string, bool) {
	return x.board(econ, period).byIndex(index)
}

// Size returns the number of ranked accounts on the (economy, period) board.
func (x *Index) Size(econ economy.Economy, period economy.PeriodType) int {
	return x.board(econ, period).size()
}

func (x *Index) board(econ economy.Economy, period economy.PeriodType) *board {
	b, _ := x.boards.LoadOrCompute(boardKey{economy: econ, period: period}, newBoard)
	return b
}
