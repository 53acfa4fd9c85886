package playereconomy

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/levely/playereconomy/economy/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Economy.Economies = []string{"gold"}
	cfg.Economy.MaxBalance = "0"
	cfg.Economy.TimeZone = "UTC"
	return cfg
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Economy.TimeZone = "Mars/Olympus_Mons"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Economy.MaxBalance = "lots"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Economy.Economies = nil
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestCoreEndToEnd(t *testing.T) {
	core, err := New(testConfig())
	require.NoError(t, err)
	defer core.Close()

	gold := economy.FromName("gold")

	var mu sync.Mutex
	var fired []events.ActionData
	core.Notifier.OnAny(func(data events.ActionData) {
		mu.Lock()
		fired = append(fired, data)
		mu.Unlock()
	})

	require.NoError(t, core.Provider.Init())

	pe, err := core.Provider.Load(uuid.New(), "Steve")
	require.NoError(t, err)
	require.NoError(t, pe.AddBalance(gold, money.MustParse("50")))

	got, err := pe.Balance(gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("50")))

	rank, err := core.Provider.PlayerRank(pe.UniqueID(), gold)
	require.NoError(t, err)
	assert.Equal(t, 0, rank)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fired, 1)
	assert.True(t, fired[0].Amount.Equal(money.MustParse("50")))
}

func TestCoreAsyncEvents(t *testing.T) {
	cfg := testConfig()
	cfg.Economy.AsyncEvents = true
	cfg.Economy.EventQueueSize = 16

	core, err := New(cfg)
	require.NoError(t, err)

	gold := economy.FromName("gold")

	var mu sync.Mutex
	var seen []string
	core.Notifier.OnAdd(func(data events.ActionData) {
		mu.Lock()
		seen = append(seen, data.Amount.String())
		mu.Unlock()
	})

	require.NoError(t, core.Provider.Init())
	pe, err := core.Provider.Load(uuid.New(), "Steve")
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, pe.AddBalanceFloat(gold, float64(i)))
	}

	// Close drains the queue, so every event is visible afterwards.
	require.NoError(t, core.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, seen)
}
