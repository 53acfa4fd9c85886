// Package playereconomy wires the economy core: the balance ledger, the
// leaderboard index, the event notifier and the host-facing provider. Hosts
// construct one Core at bootstrap and pass the Provider to their plugins.
package playereconomy

import (
	"fmt"
	"time"

	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/levely/playereconomy/economy/leaderboard"
	"github.com/levely/playereconomy/economy/ledger"
	"github.com/levely/playereconomy/economy/money"
	"github.com/levely/playereconomy/economy/provider"
	"github.com/shopspring/decimal"
)

type Core struct {
	Cfg      Config
	Ledger   *ledger.Ledger
	Boards   *leaderboard.Index
	Notifier *events.Notifier
	Provider *Provider

	async *events.AsyncNotifier
}

// Provider is re-exported so hosts depend on the root package only.
type Provider = provider.Provider

func New(cfg Config) (*Core, error) {
	zone := time.Local
	if cfg.Economy.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.Economy.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("invalid time zone %q: %w", cfg.Economy.TimeZone, err)
		}
		zone = loc
	}

	maxBalance := decimal.Zero
	if cfg.Economy.MaxBalance != "" {
		parsed, err := money.Parse(cfg.Economy.MaxBalance)
		if err != nil {
			return nil, fmt.Errorf("invalid max_balance: %w", err)
		}
		maxBalance = parsed
	}

	economies := make([]economy.Economy, 0, len(cfg.Economy.Economies))
	for _, name := range cfg.Economy.Economies {
		economies = append(economies, economy.FromName(name))
	}
	if len(economies) == 0 {
		return nil, fmt.Errorf("at least one economy must be configured")
	}

	core := &Core{Cfg: cfg}

	var dispatcher ledger.Dispatcher
	if cfg.Economy.AsyncEvents {
		core.async = events.NewAsyncNotifier(cfg.Economy.EventQueueSize)
		core.Notifier = core.async.Notifier
		dispatcher = core.async
	} else {
		core.Notifier = events.NewNotifier()
		dispatcher = core.Notifier
	}

	core.Ledger = ledger.New(ledger.Config{
		Economies:  economies,
		MaxBalance: maxBalance,
		Zone:       zone,
	}, dispatcher)

	core.Boards = leaderboard.NewIndex()
	core.Ledger.AttachSink(core.Boards)

	core.Provider = provider.New(core.Ledger, core.Boards, core.Notifier)
	return core, nil
}

// Close flushes the async event queue, when one is configured.
func (c *Core) Close() error {
	if c.async != nil {
		return c.async.Close()
	}
	return nil
}
