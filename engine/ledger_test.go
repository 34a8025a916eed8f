package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addTrade(t *testing.T, l *Ledger, typ TradeType, fill bool) *Trade {
	t.Helper()
	tr, err := NewTrade("IF2306", typ, 5, 4000, t0, 10, 0)
	require.NoError(t, err)
	if fill {
		require.NoError(t, tr.Fill(0, t0))
	}
	require.NoError(t, l.Add(tr))
	return tr
}

func TestLedgerAddAndGet(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	tr := addTrade(t, l, Buy, false)

	got, ok := l.Get(tr.ID)
	require.True(t, ok)
	assert.Same(t, tr, got)

	_, ok = l.Get("missing")
	assert.False(t, ok)

	assert.Error(t, l.Add(tr), "duplicate id refused")
	assert.Equal(t, 1, l.Len())
}

func TestLedgerQueries(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	addTrade(t, l, Buy, true)
	addTrade(t, l, Sell, true)
	addTrade(t, l, Buy, false)

	other, err := NewTrade("IC2306", CloseLong, 2, 6000, t0, 5, 0)
	require.NoError(t, err)
	require.NoError(t, other.Fill(0, t0))
	require.NoError(t, l.Add(other))

	assert.Len(t, l.BySymbol("IF2306"), 3)
	assert.Len(t, l.BySymbol("IC2306"), 1)
	assert.Len(t, l.ByType(Buy), 2)
	assert.Len(t, l.ByType(CloseShort), 0)
	assert.Len(t, l.FilledTrades(), 3)
	assert.Len(t, l.PendingTrades(), 1)
}

func TestLedgerTotalsFilledOnly(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	a := addTrade(t, l, Buy, true)
	a.RealizedPnL = 100
	b := addTrade(t, l, Sell, true)
	b.RealizedPnL = -40

	// pending and cancelled trades must not count
	p := addTrade(t, l, Buy, false)
	p.RealizedPnL = 999
	c := addTrade(t, l, Sell, false)
	require.NoError(t, c.Cancel())
	c.RealizedPnL = 999

	assert.InDelta(t, 20, l.TotalCommission(), 1e-9)
	assert.InDelta(t, 60, l.TotalRealizedPnL(), 1e-9)
}

func TestLedgerSummary(t *testing.T) {
	t.Parallel()

	// [BUY filled, SELL filled, BUY pending] per the accounting contract
	l := NewLedger()
	a := addTrade(t, l, Buy, true)
	a.RealizedPnL = 30
	addTrade(t, l, Sell, true)
	addTrade(t, l, Buy, false)

	s := l.Summarize()
	assert.Equal(t, 3, s.TotalTrades)
	assert.Equal(t, 2, s.FilledTrades)
	assert.Equal(t, 1, s.PendingTrades)
	assert.Equal(t, 2, s.BuyTrades)
	assert.Equal(t, 1, s.SellTrades)
	assert.Equal(t, 0, s.CloseLongTrades)
	assert.Equal(t, 0, s.CloseShortTrades)
	assert.InDelta(t, 20, s.TotalCommission, 1e-9)
	assert.InDelta(t, 30, s.TotalRealizedPnL, 1e-9)
}

func TestLedgerClear(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	tr := addTrade(t, l, Buy, true)

	l.Clear()
	assert.Equal(t, 0, l.Len())
	_, ok := l.Get(tr.ID)
	assert.False(t, ok)
	assert.Equal(t, Summary{}, l.Summarize())
}
