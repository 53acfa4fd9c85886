package store

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/ledger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const restoreParallelism = 8

// Restore replays every persisted snapshot into the ledger. Attached sinks
// see the replay, so the leaderboard index rebuilds as a side effect; no
// public mutation events fire. Players load in parallel — each player's
// snapshot is independent — bounded by a semaphore.
func Restore(ctx context.Context, repo BalanceRepository, l *ledger.Ledger) error {
	start := time.Now()

	ids, err := repo.GetPlayerIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list persisted players: %w", err)
	}
	if len(ids) == 0 {
		slog.Info("No persisted balances to restore", slog.String("type", "db"))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(restoreParallelism)

	for _, id := range ids {
		id := id
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return restorePlayer(gctx, repo, l, id)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to restore balances: %w", err)
	}

	slog.Info("Balances restored",
		slog.String("type", "db"),
		slog.Int("players", len(ids)),
		slog.Duration("took", time.Since(start)))
	return nil
}

func restorePlayer(ctx context.Context, repo BalanceRepository, l *ledger.Ledger, id uuid.UUID) error {
	cells, err := repo.GetCellsByPlayer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load cells for %s: %w", id, err)
	}
	totals, err := repo.GetCumulativeByPlayer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load cumulative totals for %s: %w", id, err)
	}

	snapshot := ledger.Snapshot{
		PlayerID:   id,
		Cumulative: make(map[economy.Economy]decimal.Decimal, len(totals)),
	}
	for _, c := range cells {
		period, ok := economy.ParsePeriodType(c.Period)
		if !ok {
			slog.Warn("Skipping balance cell with unknown period",
				slog.String("type", "db"),
				slog.String("period", c.Period))
			continue
		}
		if snapshot.PlayerName == "" {
			snapshot.PlayerName = c.PlayerName
		}
		snapshot.Cells = append(snapshot.Cells, ledger.CellSnapshot{
			Economy: economy.FromName(c.Economy),
			Period:  period,
			Balance: c.Balance,
			Bucket:  c.BucketStart,
		})
	}
	for _, t := range totals {
		snapshot.Cumulative[economy.FromName(t.Economy)] = t.Balance
	}

	l.Restore(snapshot)
	return nil
}
