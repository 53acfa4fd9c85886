// Package provider exposes the host-facing economy surface: player lookup by
// id or cached name, period-aware rankings and the one-time initialization
// hook. The provider is constructed at bootstrap and passed by reference to
// every consumer; there is no process-wide singleton.
package provider

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/leaderboard"
	"github.com/levely/playereconomy/economy/ledger"
)

const nameCacheSize = 4096

// Bootstrapper fires the one-time initialized notification. Satisfied by
// events.Notifier and events.AsyncNotifier.
type Bootstrapper interface {
	FireInitialized(provider any)
}

// Provider is the player economy entry point hosts hand to their plugins.
type Provider struct {
	ledger      *ledger.Ledger
	boards      *leaderboard.Index
	notifier    Bootstrapper
	names       *lru.Cache
	initialized atomic.Bool
}

// New wires a provider over a ledger and its leaderboard index. Init must be
// called exactly once, after all observers are registered, before any query
// or mutation is issued.
func New(l *ledger.Ledger, boards *leaderboard.Index, notifier Bootstrapper) *Provider {
	cache, _ := lru.New(nameCacheSize)
	return &Provider{
		ledger:   l,
		boards:   boards,
		notifier: notifier,
		names:    cache,
	}
}

// Init marks the provider queryable and fires the initialized notification
// to registered observers. Calling it twice is a bootstrap bug.
func (p *Provider) Init() error {
	if !p.initialized.CompareAndSwap(false, true) {
		return fmt.Errorf("economy provider already initialized")
	}
	slog.Info("Economy provider initialized",
		slog.String("type", "sys"),
		slog.Int("economies", len(p.ledger.Economies())))
	if p.notifier != nil {
		p.notifier.FireInitialized(p)
	}
	return nil
}

func (p *Provider) ensureInit() error {
	if !p.initialized.Load() {
		return economy.ErrNotInitialized
	}
	return nil
}

// Economies returns the active economies.
func (p *Provider) Economies() []economy.Economy {
	return p.ledger.Economies()
}

// Load registers (or refreshes) a player, typically on join. The identity
// source supplies the stable id and the current display name.
func (p *Provider) Load(id uuid.UUID, name string) (*PlayerEconomy, error) {
	if err := p.ensureInit(); err != nil {
		return nil, err
	}
	acct := p.ledger.Load(id, name)
	if name != "" {
		p.names.Add(name, id)
	}
	return &PlayerEconomy{provider: p, account: acct}, nil
}

// Unload drops a player's in-memory economy, typically on quit.
func (p *Provider) Unload(id uuid.UUID) error {
	if err := p.ensureInit(); err != nil {
		return err
	}
	p.ledger.Unload(id)
	p.boards.Remove(id)
	return nil
}

// GetEconomy returns the loaded economy of a player, or nil when the player
// is not loaded.
func (p *Provider) GetEconomy(id uuid.UUID) (*PlayerEconomy, error) {
	if err := p.ensureInit(); err != nil {
		return nil, err
	}
	acct, ok := p.ledger.Get(id)
	if !ok {
		return nil, nil
	}
	return &PlayerEconomy{provider: p, account: acct}, nil
}

// GetEconomyByName resolves a player through the display-name cache. The
// cache is a denormalized convenience: a name that was never loaded, or has
// gone stale, resolves to nil.
func (p *Provider) GetEconomyByName(name string) (*PlayerEconomy, error) {
	if err := p.ensureInit(); err != nil {
		return nil, err
	}
	v, ok := p.names.Get(name)
	if !ok {
		return nil, nil
	}
	return p.GetEconomy(v.(uuid.UUID))
}

// LoadedEconomies returns every currently loaded player economy.
func (p *Provider) LoadedEconomies() ([]*PlayerEconomy, error) {
	if err := p.ensureInit(); err != nil {
		return nil, err
	}
	accounts := p.ledger.Loaded()
	out := make([]*PlayerEconomy, 0, len(accounts))
	for _, acct := range accounts {
		out = append(out, &PlayerEconomy{provider: p, account: acct})
	}
	return out, nil
}

// PlayerRank returns the player's 0-based lifetime rank in econ; rank 0 is
// the richest player.
func (p *Provider) PlayerRank(id uuid.UUID, econ economy.Economy) (int, error) {
	return p.PlayerRankForPeriod(id, econ, economy.PeriodLifetime)
}

// PlayerRankForPeriod returns the player's 0-based rank in econ for the
// given period.
func (p *Provider) PlayerRankForPeriod(id uuid.UUID, econ economy.Economy, period economy.PeriodType) (int, error) {
	if err := p.ensureInit(); err != nil {
		return 0, err
	}
	return p.boards.RankForPeriod(id, econ, period), nil
}

// RichestPlayers returns up to limit player names, richest first, for the
// lifetime view of econ.
func (p *Provider) RichestPlayers(econ economy.Economy, limit int) ([]string, error) {
	return p.RichestPlayersForPeriod(econ, economy.PeriodLifetime, limit)
}

// RichestPlayersForPeriod returns up to limit player names, richest first,
// for the (economy, period) view.
func (p *Provider) RichestPlayersForPeriod(econ economy.Economy, period economy.PeriodType, limit int) ([]string, error) {
	if err := p.ensureInit(); err != nil {
		return nil, err
	}
	return p.boards.TopForPeriod(econ, period, limit), nil
}

// RichestPlayerByIndex returns the name at the 0-based ranking position in
// the lifetime view of econ; ok is false when no player holds that position.
func (p *Provider) RichestPlayerByIndex(econ economy.Economy, index int) (string, bool, error) {
	return p.RichestPlayerByIndexForPeriod(econ, economy.PeriodLifetime, index)
}

// RichestPlayerByIndexForPeriod returns the name at the 0-based ranking
// position in the (economy, period) view.
func (p *Provider) RichestPlayerByIndexForPeriod(econ economy.Economy, period economy.PeriodType, index int) (string, bool, error) {
	if err := p.ensureInit(); err != nil {
		return "", false, err
	}
	name, ok := p.boards.ByIndexForPeriod(econ, period, index)
	return name, ok, nil
}
