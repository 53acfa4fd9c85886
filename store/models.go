package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BalanceCell is one persisted (player, economy, period) balance together
// with the bucket marker the balance was last written in. Restore re-checks
// the marker, so stale periodic rows come back as zero.
type BalanceCell struct {
	bun.BaseModel `bun:"table:balance_cells,alias:bc"`

	ID          int64           `bun:"id,pk,autoincrement"`
	PlayerID    uuid.UUID       `bun:"player_id,type:uuid,notnull"`
	PlayerName  string          `bun:"player_name,notnull,default:''"`
	Economy     string          `bun:"economy,notnull"`
	Period      string          `bun:"period,notnull"`
	Balance     decimal.Decimal `bun:"balance,type:numeric,notnull"`
	BucketStart time.Time       `bun:"bucket_start,nullzero"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

// CumulativeBalance is the persisted all-time earned total per
// (player, economy).
type CumulativeBalance struct {
	bun.BaseModel `bun:"table:cumulative_balances,alias:cb"`

	ID        int64           `bun:"id,pk,autoincrement"`
	PlayerID  uuid.UUID       `bun:"player_id,type:uuid,notnull"`
	Economy   string          `bun:"economy,notnull"`
	Balance   decimal.Decimal `bun:"balance,type:numeric,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,notnull"`
}
