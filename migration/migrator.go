// Package migration imports player balances from the legacy MongoDB storage
// into the Postgres snapshot store. Intended as a one-shot offline step
// before first boot of a migrated server.
package migration

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/store"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultBatchLog = 500

// Config locates the legacy data.
type Config struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type Migrator struct {
	repo       store.BalanceRepository
	cfg        Config
	migrated   int
	skipped    int
	badRecords int
}

func NewMigrator(repo store.BalanceRepository, cfg Config) *Migrator {
	if cfg.Collection == "" {
		cfg.Collection = "player_balances"
	}
	return &Migrator{repo: repo, cfg: cfg}
}

// legacyPlayer mirrors the document shape of the old storage: one document
// per player with a flat name→amount balance map. Amounts were stored as
// decimal strings.
type legacyPlayer struct {
	UUID     string            `bson:"uuid"`
	Name     string            `bson:"name"`
	Balances map[string]string `bson:"balances"`
}

// Run streams every legacy document into the snapshot store. Legacy storage
// had no periodic buckets, so each balance lands as the lifetime cell and
// seeds the cumulative total.
func (m *Migrator) Run(ctx context.Context) error {
	start := time.Now()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.URI))
	if err != nil {
		return fmt.Errorf("failed to connect to legacy mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("Failed to disconnect from legacy mongo",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
	}()

	coll := client.Database(m.cfg.Database).Collection(m.cfg.Collection)
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query legacy balances: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc legacyPlayer
		if err := cursor.Decode(&doc); err != nil {
			m.badRecords++
			slog.Warn("Skipping undecodable legacy record",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}
		if err := m.migratePlayer(ctx, doc); err != nil {
			return err
		}
		if m.migrated%defaultBatchLog == 0 && m.migrated > 0 {
			slog.Info("Migration progress",
				slog.String("type", "db"),
				slog.Int("migrated", m.migrated))
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("legacy cursor failed: %w", err)
	}

	slog.Info("Legacy balance migration finished",
		slog.String("type", "db"),
		slog.Int("migrated", m.migrated),
		slog.Int("skipped", m.skipped),
		slog.Int("bad_records", m.badRecords),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (m *Migrator) migratePlayer(ctx context.Context, doc legacyPlayer) error {
	id, err := uuid.Parse(doc.UUID)
	if err != nil {
		m.badRecords++
		slog.Warn("Skipping legacy record with invalid uuid",
			slog.String("type", "db"),
			slog.String("uuid", doc.UUID))
		return nil
	}
	if len(doc.Balances) == 0 {
		m.skipped++
		return nil
	}

	for name, raw := range doc.Balances {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			m.badRecords++
			slog.Warn("Skipping legacy balance with invalid amount",
				slog.String("type", "db"),
				slog.String("player", doc.Name),
				slog.String("economy", name),
				slog.String("amount", raw))
			continue
		}
		if amount.IsNegative() {
			// Old storage allowed debt; the ledger does not.
			amount = decimal.Zero
		}

		cell := &store.BalanceCell{
			PlayerID:   id,
			PlayerName: doc.Name,
			Economy:    name,
			Period:     "lifetime",
			Balance:    amount,
		}
		if err := m.repo.UpsertCell(ctx, cell); err != nil {
			return fmt.Errorf("failed to migrate balance for %s/%s: %w", doc.Name, name, err)
		}
		if err := m.repo.UpsertCumulative(ctx, &store.CumulativeBalance{
			PlayerID: id,
			Economy:  name,
			Balance:  amount,
		}); err != nil {
			return fmt.Errorf("failed to migrate cumulative for %s/%s: %w", doc.Name, name, err)
		}
	}
	m.migrated++
	return nil
}
