package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/levely/playereconomy/economy"
	"github.com/levely/playereconomy/economy/events"
	"github.com/levely/playereconomy/economy/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gold = economy.FromName("gold")
	gems = economy.FromName("gems")
)

type capture struct {
	action events.Action
	data   events.ActionData
}

type captureNotifier struct {
	mu    sync.Mutex
	fired []capture
}

func (c *captureNotifier) FireAction(action events.Action, data events.ActionData) {
	c.mu.Lock()
	c.fired = append(c.fired, capture{action: action, data: data})
	c.mu.Unlock()
}

func (c *captureNotifier) all() []capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]capture(nil), c.fired...)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestLedger(t *testing.T, maxBalance string) (*Ledger, *captureNotifier, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)}
	notifier := &captureNotifier{}
	l := New(Config{
		Economies:  []economy.Economy{gold, gems},
		MaxBalance: money.MustParse(maxBalance),
		Zone:       time.UTC,
		Now:        clock.Now,
	}, notifier)
	return l, notifier, clock
}

func TestSetThenGet(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("123.45")))
	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("123.45")), "got %s", got)
}

func TestSubtractExact(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("0.3")))
	require.NoError(t, l.SubtractBalance(id, gold, money.MustParse("0.1")))

	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("0.2")), "0.3 - 0.1 = %s, want 0.2", got)
}

func TestSubtractInsufficientLeavesBalance(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("30")))
	before := len(notifier.all())

	err := l.SubtractBalance(id, gold, money.MustParse("1000"))
	require.ErrorIs(t, err, economy.ErrInsufficientFunds)

	got, err2 := l.Balance(id, gold)
	require.NoError(t, err2)
	assert.True(t, got.Equal(money.MustParse("30")), "balance changed to %s", got)
	assert.Len(t, notifier.all(), before, "failed mutation fired an event")
}

func TestAddBeyondCeilingLeavesBalance(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "100")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("90")))
	before := len(notifier.all())

	err := l.AddBalance(id, gold, money.MustParse("11"))
	require.ErrorIs(t, err, economy.ErrExceedsMaximumBalance)

	var maxErr *economy.MaxBalanceError
	require.ErrorAs(t, err, &maxErr)
	assert.True(t, maxErr.Attempted.Equal(money.MustParse("101")))
	assert.True(t, maxErr.Max.Equal(money.MustParse("100")))

	got, err2 := l.Balance(id, gold)
	require.NoError(t, err2)
	assert.True(t, got.Equal(money.MustParse("90")))
	assert.Len(t, notifier.all(), before)
}

func TestSetBeyondCeiling(t *testing.T) {
	l, _, _ := newTestLedger(t, "100")
	id := uuid.New()

	require.ErrorIs(t, l.SetBalance(id, gold, money.MustParse("100.01")), economy.ErrExceedsMaximumBalance)
	require.NoError(t, l.SetBalance(id, gold, money.MustParse("100")), "ceiling is inclusive")
}

func TestNegativeAmountRejected(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	assert.Error(t, l.AddBalance(id, gold, money.MustParse("-1")))
	assert.Error(t, l.SetBalance(id, gold, money.MustParse("-1")))
	assert.Error(t, l.SubtractBalance(id, gold, money.MustParse("-1")))
}

func TestHasBalance(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()
	require.NoError(t, l.SetBalance(id, gold, money.MustParse("30")))

	for _, amount := range []string{"0", "29.999", "30"} {
		ok, err := l.HasBalance(id, gold, money.MustParse(amount))
		require.NoError(t, err)
		assert.True(t, ok, "HasBalance(%s) with balance 30", amount)
	}
	ok, err := l.HasBalance(id, gold, money.MustParse("30.0001"))
	require.NoError(t, err)
	assert.False(t, ok)

	any, err := l.HasAnyBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, any)

	any, err = l.HasAnyBalance(id, gems)
	require.NoError(t, err)
	assert.False(t, any, "untouched economy must read as zero")
}

func TestHasPeriodBalance(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("30")))

	for _, amount := range []string{"0", "29.999", "30", "30.0001"} {
		ok, err := l.HasPeriodBalance(id, gold, economy.PeriodDaily, money.MustParse(amount))
		require.NoError(t, err)
		daily, err := l.PeriodBalance(id, gold, economy.PeriodDaily)
		require.NoError(t, err)
		assert.Equal(t, daily.Cmp(money.MustParse(amount)) >= 0, ok,
			"HasPeriodBalance(%s) with daily balance %s", amount, daily)
	}

	_, err := l.HasPeriodBalance(id, economy.FromName("shells"), economy.PeriodDaily, money.MustParse("1"))
	require.ErrorIs(t, err, economy.ErrEconomyNotAvailable)

	// After the day rolls over the daily check sees the rotated zero while
	// the lifetime check still sees the full balance.
	clock.Set(time.Date(2025, 3, 13, 0, 0, 1, 0, time.UTC))

	ok, err := l.HasPeriodBalance(id, gold, economy.PeriodDaily, money.MustParse("1"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.HasPeriodBalance(id, gold, economy.PeriodDaily, money.MustParse("0"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.HasBalance(id, gold, money.MustParse("30"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnknownEconomy(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()
	shells := economy.FromName("shells")

	_, err := l.Balance(id, shells)
	require.ErrorIs(t, err, economy.ErrEconomyNotAvailable)
	require.ErrorIs(t, l.AddBalance(id, shells, money.MustParse("1")), economy.ErrEconomyNotAvailable)
	assert.Empty(t, notifier.all())
}

func TestDailyRotation(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("75")))

	daily, err := l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.Equal(money.MustParse("75")))

	// Cross into the next calendar day.
	clock.Set(time.Date(2025, 3, 13, 0, 0, 1, 0, time.UTC))

	daily, err = l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.IsZero(), "daily balance after rotation = %s", daily)

	// Lifetime and cumulative views survive the rotation.
	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("75")))

	cum, err := l.CumulativeBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, cum.Equal(money.MustParse("75")))

	// Weekly bucket has not moved (March 13 2025 is a Thursday).
	weekly, err := l.PeriodBalance(id, gold, economy.PeriodWeekly)
	require.NoError(t, err)
	assert.True(t, weekly.Equal(money.MustParse("75")))
}

func TestWeeklyRotation(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	// March 12 2025 is a Wednesday; the bucket started Monday the 10th.
	require.NoError(t, l.SetBalance(id, gold, money.MustParse("75")))

	// Cross into the next week (Monday the 17th).
	clock.Set(time.Date(2025, 3, 17, 0, 0, 1, 0, time.UTC))

	weekly, err := l.PeriodBalance(id, gold, economy.PeriodWeekly)
	require.NoError(t, err)
	assert.True(t, weekly.IsZero(), "weekly balance after rotation = %s", weekly)

	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("75")))
}

func TestMonthlyRotation(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("75")))

	monthly, err := l.PeriodBalance(id, gold, economy.PeriodMonthly)
	require.NoError(t, err)
	assert.True(t, monthly.Equal(money.MustParse("75")))

	// Cross into April.
	clock.Set(time.Date(2025, 4, 1, 0, 0, 1, 0, time.UTC))

	monthly, err = l.PeriodBalance(id, gold, economy.PeriodMonthly)
	require.NoError(t, err)
	assert.True(t, monthly.IsZero(), "monthly balance after rotation = %s", monthly)

	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("75")))

	cum, err := l.CumulativeBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, cum.Equal(money.MustParse("75")))
}

func TestRotationAppliesOnMutation(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.AddBalance(id, gold, money.MustParse("40")))
	clock.Set(time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC))
	require.NoError(t, l.AddBalance(id, gold, money.MustParse("5")))

	daily, err := l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.Equal(money.MustParse("5")), "new bucket starts from zero, got %s", daily)

	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("45")))
}

func TestSpendDoesNotGoNegativeInPeriodCells(t *testing.T) {
	l, _, clock := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.AddBalance(id, gold, money.MustParse("100")))
	clock.Set(time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC))
	require.NoError(t, l.SubtractBalance(id, gold, money.MustParse("60")))

	daily, err := l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.IsZero(), "daily cell went to %s", daily)

	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("40")))
}

func TestCumulativeTracksEarningsOnly(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.AddBalance(id, gold, money.MustParse("100")))
	require.NoError(t, l.SubtractBalance(id, gold, money.MustParse("70")))
	require.NoError(t, l.AddBalance(id, gold, money.MustParse("10")))

	cum, err := l.CumulativeBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, cum.Equal(money.MustParse("110")), "cumulative = %s, want 110", cum)

	require.NoError(t, l.ResetCumulativeBalance(id, gold))
	cum, err = l.CumulativeBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, cum.IsZero())
}

func TestResetBalance(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("42")))
	require.NoError(t, l.ResetBalance(id, gold))

	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	fired := notifier.all()
	require.NotEmpty(t, fired)
	last := fired[len(fired)-1]
	assert.Equal(t, events.ActionSet, last.action)
	assert.True(t, last.data.Amount.Equal(money.MustParse("-42")), "reset delta = %s", last.data.Amount)
}

func TestEventPayloads(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()

	// The canonical walkthrough: +50, -20, then an over-spend that must not
	// fire anything.
	require.NoError(t, l.AddBalance(id, gold, money.MustParse("50")))
	require.NoError(t, l.SubtractBalance(id, gold, money.MustParse("20")))
	require.ErrorIs(t, l.SubtractBalance(id, gold, money.MustParse("1000")), economy.ErrInsufficientFunds)

	fired := notifier.all()
	require.Len(t, fired, 2)

	assert.Equal(t, events.ActionAdd, fired[0].action)
	assert.Equal(t, id, fired[0].data.PlayerID)
	assert.Equal(t, gold, fired[0].data.Economy)
	assert.True(t, fired[0].data.Amount.Equal(money.MustParse("50")))
	assert.True(t, fired[0].data.Balance.Equal(money.MustParse("50")))

	assert.Equal(t, events.ActionSubtract, fired[1].action)
	assert.True(t, fired[1].data.Amount.Equal(money.MustParse("-20")))
	assert.True(t, fired[1].data.Balance.Equal(money.MustParse("30")))

	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("30")))
}

func TestSetEventDelta(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("80")))
	require.NoError(t, l.SetBalance(id, gold, money.MustParse("50")))

	fired := notifier.all()
	require.Len(t, fired, 2)
	assert.True(t, fired[1].data.Amount.Equal(money.MustParse("-30")), "set delta = new - old")
	assert.True(t, fired[1].data.Balance.Equal(money.MustParse("50")))
}

func TestConcurrentAddsNoLostUpdates(t *testing.T) {
	l, notifier, _ := newTestLedger(t, "0")
	id := uuid.New()

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := l.AddBalance(id, gold, money.MustParse("1")); err != nil {
				t.Errorf("AddBalance() error = %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(n)), "balance = %s, want %d", got, n)
	assert.Len(t, notifier.all(), n, "one event per successful mutation")
}

func TestConcurrentDistinctAccounts(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")

	const players = 50
	ids := make([]uuid.UUID, players)
	for i := range ids {
		ids[i] = uuid.New()
	}

	var wg sync.WaitGroup
	wg.Add(players)
	for _, id := range ids {
		id := id
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if err := l.AddBalance(id, gems, money.MustParse("2.5")); err != nil {
					t.Errorf("AddBalance() error = %v", err)
				}
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		got, err := l.Balance(id, gems)
		require.NoError(t, err)
		assert.True(t, got.Equal(money.MustParse("25")))
	}
}

func TestBalancesAndPeriodicBalances(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.SetBalance(id, gold, money.MustParse("10")))
	require.NoError(t, l.SetBalance(id, gems, money.MustParse("3")))

	balances := l.Balances(id)
	require.Len(t, balances, 2)
	assert.True(t, balances[gold].Equal(money.MustParse("10")))
	assert.True(t, balances[gems].Equal(money.MustParse("3")))

	periodic := l.PeriodicBalances(id)
	require.Len(t, periodic, len(economy.Periods))
	for _, period := range economy.Periods {
		assert.True(t, periodic[period][gold].Equal(money.MustParse("10")),
			"period %s gold = %s", period, periodic[period][gold])
	}
}

func TestScopedPeriodOperations(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	// A scoped add touches only its own cell.
	require.NoError(t, l.AddPeriodBalance(id, gold, economy.PeriodDaily, money.MustParse("15")))

	daily, err := l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.Equal(money.MustParse("15")))

	life, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.IsZero(), "scoped add leaked into lifetime: %s", life)

	require.NoError(t, l.ResetPeriodBalance(id, gold, economy.PeriodDaily))
	daily, err = l.PeriodBalance(id, gold, economy.PeriodDaily)
	require.NoError(t, err)
	assert.True(t, daily.IsZero())
}

func TestFloatBoundaryConversion(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	require.NoError(t, l.AddBalanceFloat(id, gold, 0.1))
	require.NoError(t, l.AddBalanceFloat(id, gold, 0.2))

	got, err := l.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, got.Equal(money.MustParse("0.3")), "0.1 + 0.2 = %s", got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	src, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	src.Load(id, "Steve")
	require.NoError(t, src.AddBalance(id, gold, money.MustParse("80")))
	require.NoError(t, src.SubtractBalance(id, gold, money.MustParse("30")))

	snapshot, ok := src.SnapshotOf(id)
	require.True(t, ok)
	assert.Equal(t, "Steve", snapshot.PlayerName)

	dst, _, _ := newTestLedger(t, "0")
	dst.Restore(snapshot)

	life, err := dst.Balance(id, gold)
	require.NoError(t, err)
	assert.True(t, life.Equal(money.MustParse("50")))

	cum, err := dst.CumulativeBalance(id, gold)
	require.NoError(t, err)
	assert.True(t, cum.Equal(money.MustParse("80")))

	_, ok = src.SnapshotOf(uuid.New())
	assert.False(t, ok)
}

func TestUnload(t *testing.T) {
	l, _, _ := newTestLedger(t, "0")
	id := uuid.New()

	l.Load(id, "Steve")
	_, ok := l.Get(id)
	require.True(t, ok)

	l.Unload(id)
	_, ok = l.Get(id)
	assert.False(t, ok)
}
