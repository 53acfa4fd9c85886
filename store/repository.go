package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultQueryTimeout = 30 * time.Second

// BalanceRepository persists balance cells and cumulative totals.
type BalanceRepository interface {
	UpsertCell(ctx context.Context, cell *BalanceCell) error
	UpsertCumulative(ctx context.Context, cum *CumulativeBalance) error
	GetPlayerIDs(ctx context.Context) ([]uuid.UUID, error)
	GetCellsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*BalanceCell, error)
	GetCumulativeByPlayer(ctx context.Context, playerID uuid.UUID) ([]*CumulativeBalance, error)
	DeletePlayer(ctx context.Context, playerID uuid.UUID) error
}

type balanceRepository struct {
	db *bun.DB
}

func NewBalanceRepository(db *bun.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) UpsertCell(ctx context.Context, cell *BalanceCell) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cell.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(cell).
		On("CONFLICT (player_id, economy, period) DO UPDATE").
		Set("balance = EXCLUDED.balance").
		Set("bucket_start = EXCLUDED.bucket_start").
		Set("player_name = EXCLUDED.player_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert balance cell: %w", err)
	}
	return nil
}

func (r *balanceRepository) UpsertCumulative(ctx context.Context, cum *CumulativeBalance) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cum.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(cum).
		On("CONFLICT (player_id, economy) DO UPDATE").
		Set("balance = EXCLUDED.balance").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert cumulative balance: %w", err)
	}
	return nil
}

func (r *balanceRepository) GetPlayerIDs(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*BalanceCell)(nil)).
		ColumnExpr("DISTINCT player_id").
		Scan(ctx, &ids)
	return ids, err
}

func (r *balanceRepository) GetCellsByPlayer(ctx context.Context, playerID uuid.UUID) ([]*BalanceCell, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var cells []*BalanceCell
	err := r.db.NewSelect().
		Model(&cells).
		Where("player_id = ?", playerID).
		Scan(ctx)
	return cells, err
}

func (r *balanceRepository) GetCumulativeByPlayer(ctx context.Context, playerID uuid.UUID) ([]*CumulativeBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var totals []*CumulativeBalance
	err := r.db.NewSelect().
		Model(&totals).
		Where("player_id = ?", playerID).
		Scan(ctx)
	return totals, err
}

func (r *balanceRepository) DeletePlayer(ctx context.Context, playerID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if _, err := r.db.NewDelete().
		Model((*BalanceCell)(nil)).
		Where("player_id = ?", playerID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete balance cells: %w", err)
	}
	if _, err := r.db.NewDelete().
		Model((*CumulativeBalance)(nil)).
		Where("player_id = ?", playerID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete cumulative balances: %w", err)
	}
	return nil
}
