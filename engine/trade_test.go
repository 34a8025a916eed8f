package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrade(t *testing.T, typ TradeType) *Trade {
	t.Helper()
	tr, err := NewTrade("IF2306", typ, 5, 4000, t0, 12.5, 0.2)
	require.NoError(t, err)
	return tr
}

func TestNewTradeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		symbol     string
		qty        float64
		price      float64
		commission float64
		wantErr    bool
	}{
		{"valid", "IF2306", 5, 4000, 12.5, false},
		{"zero_commission", "IF2306", 5, 4000, 0, false},
		{"empty_symbol", "", 5, 4000, 0, true},
		{"zero_qty", "IF2306", 0, 4000, 0, true},
		{"negative_qty", "IF2306", -5, 4000, 0, true},
		{"zero_price", "IF2306", 5, 0, 0, true},
		{"negative_commission", "IF2306", 5, 4000, -1, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr, err := NewTrade(tt.symbol, Buy, tt.qty, tt.price, t0, tt.commission, 0)
			if tt.wantErr {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				assert.Nil(t, tr, "no partial object on failure")
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tr.ID)
			assert.Equal(t, Pending, tr.Status)
		})
	}
}

func TestTradeIDsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tr := newTestTrade(t, Buy)
		assert.False(t, seen[tr.ID])
		seen[tr.ID] = true
	}
}

func TestTradeFill(t *testing.T) {
	t.Parallel()

	tr := newTestTrade(t, Buy)
	fillAt := t0.Add(time.Second)

	require.NoError(t, tr.Fill(4001.5, fillAt))
	assert.Equal(t, Filled, tr.Status)
	assert.Equal(t, 4001.5, tr.Price, "fill price overrides the recorded price")
	require.NotNil(t, tr.OrderPrice)
	assert.Equal(t, 4000.0, *tr.OrderPrice)
	require.NotNil(t, tr.FillTime)
	assert.Equal(t, fillAt, *tr.FillTime)
}

func TestTradeFillAtRecordedPrice(t *testing.T) {
	t.Parallel()

	tr := newTestTrade(t, Sell)
	require.NoError(t, tr.Fill(0, t0))
	assert.Equal(t, 4000.0, tr.Price)
	assert.Nil(t, tr.OrderPrice)
}

func TestTradeTerminalStatusIsFinal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		terminal func(*Trade) error
	}{
		{"filled", func(tr *Trade) error { return tr.Fill(0, t0) }},
		{"cancelled", func(tr *Trade) error { return tr.Cancel() }},
		{"rejected", func(tr *Trade) error { return tr.Reject("risk check") }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTestTrade(t, Buy)
			require.NoError(t, tt.terminal(tr))

			var terr *InvalidTransitionError
			assert.ErrorAs(t, tr.Fill(0, t0), &terr)
			assert.ErrorAs(t, tr.Cancel(), &terr)
			assert.ErrorAs(t, tr.Reject("again"), &terr)
		})
	}
}

func TestTradeDoubleFill(t *testing.T) {
	t.Parallel()

	tr := newTestTrade(t, Buy)
	require.NoError(t, tr.Fill(0, t0))

	err := tr.Fill(0, t0.Add(time.Second))
	var terr *InvalidTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, Filled, terr.Status)
	assert.Equal(t, "fill", terr.Op)
}

func TestTradeRejectReason(t *testing.T) {
	t.Parallel()

	tr := newTestTrade(t, Sell)
	require.NoError(t, tr.Reject("insufficient margin"))
	assert.Equal(t, Rejected, tr.Status)
	assert.Equal(t, "insufficient margin", tr.Metadata["reject_reason"])
}

func TestTradeDerivedValues(t *testing.T) {
	t.Parallel()

	tr, err := NewTrade("IF2306", Buy, 5, 4000, t0, 12.5, -0.4)
	require.NoError(t, err)

	assert.InDelta(t, 20000, tr.TradeValue(), 1e-9)
	// slippage cost uses the absolute value
	assert.InDelta(t, 20000+12.5+5*0.4, tr.TotalCost(), 1e-9)
	assert.GreaterOrEqual(t, tr.TotalCost(), tr.TradeValue())
}

func TestTradeCalculatePnL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  TradeType
		exit float64
		want float64
	}{
		{"buy_profit", Buy, 4100, 5 * 100},
		{"buy_loss", Buy, 3900, 5 * -100},
		{"sell_profit", Sell, 3900, 5 * 100},
		{"close_long_is_short_side", CloseLong, 3900, 5 * 100},
		{"close_short_is_long_side", CloseShort, 4100, 5 * 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTestTrade(t, tt.typ)
			assert.InDelta(t, tt.want, tr.CalculatePnL(tt.exit), 1e-9)
		})
	}
}

func TestTradeSnapshot(t *testing.T) {
	t.Parallel()

	tr := newTestTrade(t, CloseShort)
	require.NoError(t, tr.Fill(4010, t0.Add(time.Second)))
	tr.RealizedPnL = 50

	snap := tr.Snapshot()
	assert.Equal(t, tr.ID, snap.ID)
	assert.Equal(t, "close_short", snap.Type)
	assert.Equal(t, "filled", snap.Status)
	assert.Equal(t, 4010.0, snap.Price)
	assert.Equal(t, 50.0, snap.RealizedPnL)
	assert.InDelta(t, tr.TradeValue(), snap.TradeValue, 1e-9)
	assert.InDelta(t, tr.TotalCost(), snap.TotalCost, 1e-9)
}
