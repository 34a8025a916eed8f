package engine

import (
	"fmt"
	"sync"
)

// Ledger is the append-only trade log: an ordered history plus an id-indexed
// lookup map. Trades are never individually removed; Clear resets the whole
// ledger between independent runs.
type Ledger struct {
	mu      sync.Mutex
	history []*Trade
	byID    map[string]*Trade
}

func NewLedger() *Ledger {
	return &Ledger{byID: make(map[string]*Trade)}
}

// Add appends a trade. Duplicate IDs are refused.
func (l *Ledger) Add(t *Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byID[t.ID]; ok {
		return fmt.Errorf("ledger: duplicate trade id %s", t.ID)
	}
	l.byID[t.ID] = t
	l.history = append(l.history, t)
	return nil
}

// Get looks a trade up by ID.
func (l *Ledger) Get(tradeID string) (*Trade, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.byID[tradeID]
	return t, ok
}

// BySymbol returns all trades for symbol in insertion order.
func (l *Ledger) BySymbol(symbol string) []*Trade {
	return l.filter(func(t *Trade) bool { return t.Symbol == symbol })
}

// ByStatus returns all trades in the given status.
func (l *Ledger) ByStatus(status TradeStatus) []*Trade {
	return l.filter(func(t *Trade) bool { return t.Status == status })
}

// ByType returns all trades of the given type.
func (l *Ledger) ByType(typ TradeType) []*Trade {
	return l.filter(func(t *Trade) bool { return t.Type == typ })
}

func (l *Ledger) FilledTrades() []*Trade  { return l.ByStatus(Filled) }
func (l *Ledger) PendingTrades() []*Trade { return l.ByStatus(Pending) }

func (l *Ledger) filter(keep func(*Trade) bool) []*Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*Trade
	for _, t := range l.history {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// TotalCommission sums commission over filled trades only.
func (l *Ledger) TotalCommission() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, t := range l.history {
		if t.Status == Filled {
			total += t.Commission
		}
	}
	return total
}

// TotalRealizedPnL sums realized PnL over filled trades only.
func (l *Ledger) TotalRealizedPnL() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var total float64
	for _, t := range l.history {
		if t.Status == Filled {
			total += t.RealizedPnL
		}
	}
	return total
}

// Len is the total number of recorded trades.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

// Clear drops every trade. Used between independent runs.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = nil
	l.byID = make(map[string]*Trade)
}

// Summary is the aggregate run view consumed by reporting.
type Summary struct {
	TotalTrades      int     `json:"total_trades"`
	FilledTrades     int     `json:"filled_trades"`
	PendingTrades    int     `json:"pending_trades"`
	TotalCommission  float64 `json:"total_commission"`
	TotalRealizedPnL float64 `json:"total_realized_pnl"`
	BuyTrades        int     `json:"buy_trades"`
	SellTrades       int     `json:"sell_trades"`
	CloseLongTrades  int     `json:"close_long_trades"`
	CloseShortTrades int     `json:"close_short_trades"`
}

// Summarize computes the aggregate view in one pass over the history.
func (l *Ledger) Summarize() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Summary
	for _, t := range l.history {
		s.TotalTrades++
		switch t.Status {
		case Filled:
			s.FilledTrades++
			s.TotalCommission += t.Commission
			s.TotalRealizedPnL += t.RealizedPnL
		case Pending:
			s.PendingTrades++
		}
		switch t.Type {
		case Buy:
			s.BuyTrades++
		case Sell:
			s.SellTrades++
		case CloseLong:
			s.CloseLongTrades++
		case CloseShort:
			s.CloseShortTrades++
		}
	}
	return s
}
