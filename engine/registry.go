package engine

import (
	"sync"
	"time"
)

// Registry maps symbols to positions, creating flat positions lazily. All
// mutations happen in replay order under a single lock; aggregate reads are
// meant for between-step inspection, not for use concurrently with a write.
type Registry struct {
	mu        sync.Mutex
	positions map[string]*Position
}

func NewRegistry() *Registry {
	return &Registry{positions: make(map[string]*Position)}
}

// GetOrCreate returns the position for symbol, creating a flat one the first
// time the symbol is referenced.
func (r *Registry) GetOrCreate(symbol string) *Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(symbol)
}

func (r *Registry) getOrCreateLocked(symbol string) *Position {
	p, ok := r.positions[symbol]
	if !ok {
		p = NewPosition(symbol)
		r.positions[symbol] = p
	}
	return p
}

// Apply moves the position for symbol toward a target side and absolute size,
// dispatching to the position operations:
//
//	flat      -> long/short  open
//	same side -> larger qty  add the difference
//	same side -> smaller qty reduce the difference
//	long      -> short       reverse (and symmetric)
//	any       -> flat        close
//
// It returns the realized PnL crystallized by the step, zero for pure
// additions. The position is marked at price afterwards.
func (r *Registry) Apply(symbol string, target Side, qty, price float64, ts time.Time) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.getOrCreateLocked(symbol)

	var realized float64
	var err error

	switch {
	case target == Flat:
		realized, err = p.Close(price, ts)

	case p.IsFlat() || target == p.Side:
		if qty <= 0 {
			return 0, errValidation("quantity", "must be positive, got %.4f", qty)
		}
		switch delta := qty - p.Quantity; {
		case delta > 0:
			err = p.Add(target, delta, price, ts)
		case delta < 0:
			realized, err = p.Reduce(-delta, price, ts)
		}

	default:
		realized, err = p.Reverse(qty, price, ts)
	}

	if err != nil {
		return 0, err
	}
	if err := p.Mark(price, ts); err != nil {
		return 0, err
	}
	return realized, nil
}

// MarkAll applies a batch of closing prices, updating unrealized PnL on every
// known symbol present in prices. Unknown symbols are ignored: marking never
// creates positions.
func (r *Registry) MarkAll(prices map[string]float64, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for symbol, price := range prices {
		p, ok := r.positions[symbol]
		if !ok {
			continue
		}
		if err := p.Mark(price, ts); err != nil {
			return err
		}
	}
	return nil
}

// Active returns snapshots of all non-flat positions.
func (r *Registry) Active() []PositionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []PositionSnapshot
	for _, p := range r.positions {
		if !p.IsFlat() {
			out = append(out, p.Snapshot())
		}
	}
	return out
}

// All returns snapshots of every position, flat ones included.
func (r *Registry) All() map[string]PositionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]PositionSnapshot, len(r.positions))
	for symbol, p := range r.positions {
		out[symbol] = p.Snapshot()
	}
	return out
}

// TotalRealizedPnL sums realized PnL across all positions.
func (r *Registry) TotalRealizedPnL() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, p := range r.positions {
		total += p.RealizedPnL
	}
	return total
}

// TotalUnrealizedPnL sums unrealized PnL across all positions.
func (r *Registry) TotalUnrealizedPnL() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, p := range r.positions {
		total += p.UnrealizedPnL
	}
	return total
}

// TotalMarketValue sums the market value of all non-flat positions.
func (r *Registry) TotalMarketValue() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total float64
	for _, p := range r.positions {
		if !p.IsFlat() {
			total += p.MarketValue()
		}
	}
	return total
}

// Clear drops every position. Used between independent runs.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = make(map[string]*Position)
}
