package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futures/engine"
	"github.com/rustyeddy/futures/strategy"
)

var t0 = time.Date(2023, 6, 1, 9, 30, 0, 0, time.UTC)

func newExecutor(t *testing.T, cfg Config) (*Executor, *engine.Registry, *engine.Ledger) {
	t.Helper()
	reg := engine.NewRegistry()
	ledger := engine.NewLedger()
	ex, err := NewExecutor(cfg, reg, ledger)
	require.NoError(t, err)
	return ex, reg, ledger
}

func buy(t *testing.T, qty float64) strategy.Signal {
	t.Helper()
	sig, err := strategy.BuySignal("IF2306", qty, t0)
	require.NoError(t, err)
	return sig
}

func sell(t *testing.T, qty float64) strategy.Signal {
	t.Helper()
	sig, err := strategy.SellSignal("IF2306", qty, t0)
	require.NoError(t, err)
	return sig
}

func TestExecutorConfigValidation(t *testing.T) {
	t.Parallel()

	reg := engine.NewRegistry()
	ledger := engine.NewLedger()

	_, err := NewExecutor(Config{CommissionRate: -1}, reg, ledger)
	assert.Error(t, err)
	_, err = NewExecutor(Config{Slippage: -0.5}, reg, ledger)
	assert.Error(t, err)
	_, err = NewExecutor(Config{}, nil, ledger)
	assert.Error(t, err)
}

func TestExecutorOpensLong(t *testing.T) {
	t.Parallel()

	ex, reg, ledger := newExecutor(t, Config{CommissionRate: 0.0001, Slippage: 0.5})

	trade, err := ex.Execute(buy(t, 5), 4000, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)

	assert.Equal(t, engine.Filled, trade.Status)
	assert.Equal(t, engine.Buy, trade.Type)
	assert.Equal(t, 5.0, trade.Quantity)
	assert.Equal(t, 4000.5, trade.Price, "buys pay the slippage")
	require.NotNil(t, trade.OrderPrice)
	assert.Equal(t, 4000.0, *trade.OrderPrice)
	assert.InDelta(t, 0.0001*5*4000.5, trade.Commission, 1e-9)
	assert.Equal(t, 0.0, trade.RealizedPnL)

	pos := reg.GetOrCreate("IF2306")
	assert.Equal(t, engine.Long, pos.Side)
	assert.Equal(t, 5.0, pos.Quantity)
	assert.Equal(t, 4000.5, pos.AvgPrice)
	assert.Equal(t, 1, ledger.Len())
}

func TestExecutorHoldDoesNothing(t *testing.T) {
	t.Parallel()

	ex, _, ledger := newExecutor(t, Config{})
	trade, err := ex.Execute(strategy.HoldSignal("IF2306", t0), 4000, t0)
	require.NoError(t, err)
	assert.Nil(t, trade)
	assert.Equal(t, 0, ledger.Len())
}

func TestExecutorTargetSizing(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})

	// open 10, then target 10 again: no trade
	_, err := ex.Execute(buy(t, 10), 4000, t0)
	require.NoError(t, err)
	trade, err := ex.Execute(buy(t, 10), 4100, t0)
	require.NoError(t, err)
	assert.Nil(t, trade)

	// target 15: buys the 5 difference
	trade, err = ex.Execute(buy(t, 15), 4100, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Buy, trade.Type)
	assert.Equal(t, 5.0, trade.Quantity)

	// target 6: sells 9 off the long, realizing PnL against the blended basis
	trade, err = ex.Execute(buy(t, 6), 4200, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.CloseLong, trade.Type)
	assert.Equal(t, 9.0, trade.Quantity)

	pos := reg.GetOrCreate("IF2306")
	assert.Equal(t, 6.0, pos.Quantity)
	avg := (10*4000.0 + 5*4100.0) / 15.0
	assert.InDelta(t, 9*(4200-avg), trade.RealizedPnL, 1e-9)
}

func TestExecutorReversal(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})

	_, err := ex.Execute(buy(t, 10), 4000, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sell(t, 8), 4110, t0.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, trade)

	// one fill: close 10 long, open 8 short
	assert.Equal(t, engine.Sell, trade.Type)
	assert.Equal(t, 18.0, trade.Quantity)
	assert.InDelta(t, 10*(4110-4000), trade.RealizedPnL, 1e-9)

	pos := reg.GetOrCreate("IF2306")
	assert.Equal(t, engine.Short, pos.Side)
	assert.Equal(t, 8.0, pos.Quantity)
	assert.Equal(t, 4110.0, pos.AvgPrice)
}

func TestExecutorCloseAll(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})
	_, err := ex.Execute(sell(t, 10), 4000, t0)
	require.NoError(t, err)

	sig, err := strategy.CloseSignal("IF2306", 0, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sig, 3900, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.CloseShort, trade.Type)
	assert.Equal(t, 10.0, trade.Quantity)
	assert.InDelta(t, 10*(4000-3900), trade.RealizedPnL, 1e-9)
	assert.True(t, reg.GetOrCreate("IF2306").IsFlat())
}

func TestExecutorCloseOnFlatIsNoop(t *testing.T) {
	t.Parallel()

	ex, _, ledger := newExecutor(t, Config{})
	sig, err := strategy.CloseSignal("IF2306", 0, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sig, 4000, t0)
	require.NoError(t, err)
	assert.Nil(t, trade)
	assert.Equal(t, 0, ledger.Len())
}

func TestExecutorPartialClose(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})
	_, err := ex.Execute(buy(t, 10), 4050, t0)
	require.NoError(t, err)

	sig, err := strategy.CloseSignal("IF2306", 4, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sig, 4200, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.CloseLong, trade.Type)
	assert.Equal(t, 4.0, trade.Quantity)
	assert.InDelta(t, 4*(4200-4050), trade.RealizedPnL, 1e-9)
	assert.Equal(t, 6.0, reg.GetOrCreate("IF2306").Quantity)
}

func TestExecutorRejectsOversizedClose(t *testing.T) {
	t.Parallel()

	ex, reg, ledger := newExecutor(t, Config{})
	_, err := ex.Execute(buy(t, 5), 4000, t0)
	require.NoError(t, err)

	sig, err := strategy.CloseSignal("IF2306", 12, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sig, 4100, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Rejected, trade.Status)
	assert.Contains(t, trade.Metadata["reject_reason"], "exceeds held")

	// position untouched by the rejection
	assert.Equal(t, 5.0, reg.GetOrCreate("IF2306").Quantity)
	assert.Equal(t, 2, ledger.Len())
}

func TestExecutorRejectsWrongSideClose(t *testing.T) {
	t.Parallel()

	ex, _, _ := newExecutor(t, Config{})
	_, err := ex.Execute(sell(t, 5), 4000, t0)
	require.NoError(t, err)

	sig, err := strategy.NewSignal("IF2306", strategy.CloseLong, 5, t0)
	require.NoError(t, err)

	trade, err := ex.Execute(sig, 4000, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Rejected, trade.Status)
}

func TestExecutorLimitOrders(t *testing.T) {
	t.Parallel()

	ex, reg, ledger := newExecutor(t, Config{Slippage: 0.5})

	// buy limit below the market stays pending, recorded at its limit price
	sig, err := strategy.BuySignal("IF2306", 5, t0, strategy.WithLimit(3950))
	require.NoError(t, err)
	trade, err := ex.Execute(sig, 4000, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Pending, trade.Status)
	assert.Equal(t, 3950.0, trade.Price, "resting order keeps its requested price")
	assert.True(t, reg.GetOrCreate("IF2306").IsFlat())

	// marketable buy limit fills at the limit price, no slippage
	sig, err = strategy.BuySignal("IF2306", 5, t0, strategy.WithLimit(4010))
	require.NoError(t, err)
	trade, err = ex.Execute(sig, 4000, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Filled, trade.Status)
	assert.Equal(t, 4010.0, trade.Price)
	assert.Equal(t, 0.0, trade.Slippage)

	s := ledger.Summarize()
	assert.Equal(t, 2, s.TotalTrades)
	assert.Equal(t, 1, s.FilledTrades)
	assert.Equal(t, 1, s.PendingTrades)
}

func TestExecutorLimitCloseShort(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})
	_, err := ex.Execute(sell(t, 10), 4000, t0)
	require.NoError(t, err)

	// covering a short is a buy: a limit below the market must rest, not fill
	sig, err := strategy.CloseSignal("IF2306", 0, t0, strategy.WithLimit(3900))
	require.NoError(t, err)
	trade, err := ex.Execute(sig, 3950, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Pending, trade.Status)
	assert.Equal(t, 3900.0, trade.Price)
	assert.Equal(t, 10.0, reg.GetOrCreate("IF2306").Quantity, "resting order leaves the position alone")

	// a limit at or above the market is marketable and fills at the limit
	sig, err = strategy.CloseSignal("IF2306", 0, t0, strategy.WithLimit(3960))
	require.NoError(t, err)
	trade, err = ex.Execute(sig, 3950, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Filled, trade.Status)
	assert.Equal(t, engine.CloseShort, trade.Type)
	assert.Equal(t, 3960.0, trade.Price)
	assert.InDelta(t, 10*(4000-3960), trade.RealizedPnL, 1e-9)
	assert.True(t, reg.GetOrCreate("IF2306").IsFlat())
}

func TestExecutorLimitCloseLong(t *testing.T) {
	t.Parallel()

	ex, reg, _ := newExecutor(t, Config{})
	_, err := ex.Execute(buy(t, 10), 4000, t0)
	require.NoError(t, err)

	// selling out of a long: a limit above the market rests
	sig, err := strategy.CloseSignal("IF2306", 0, t0, strategy.WithLimit(4100))
	require.NoError(t, err)
	trade, err := ex.Execute(sig, 4050, t0)
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, engine.Pending, trade.Status)
	assert.Equal(t, 10.0, reg.GetOrCreate("IF2306").Quantity)
}

func TestExecutorBadPrice(t *testing.T) {
	t.Parallel()

	ex, _, _ := newExecutor(t, Config{})
	_, err := ex.Execute(buy(t, 5), 0, t0)
	assert.Error(t, err)
}
