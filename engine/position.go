// Package engine is the position and trade accounting core of the backtester.
//
// It consumes fills produced by the execution simulator, maintains per-symbol
// net exposure with a weighted-average cost basis, and records every fill in
// an append-only ledger. All operations are synchronous in-memory arithmetic;
// timestamps are supplied by the caller so a run is exactly replayable.
package engine

import "time"

// Side is the direction of a position.
type Side int

const (
	Flat Side = iota
	Long
	Short
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Sign returns +1 for long, -1 for short, 0 for flat.
func (s Side) Sign() float64 {
	switch s {
	case Long:
		return 1
	case Short:
		return -1
	default:
		return 0
	}
}

// Opposite returns the reverse direction. Flat has no opposite.
func (s Side) Opposite() Side {
	switch s {
	case Long:
		return Short
	case Short:
		return Long
	default:
		return Flat
	}
}

// Position is the net holding of one symbol. Quantity is always the absolute
// size; direction lives in Side. A position is never destroyed: once created
// it persists as flat so lookups stay idempotent.
//
// Invariant: Quantity == 0 exactly when Side == Flat. UnrealizedPnL is
// recomputed from the current price on every mark, never accumulated.
type Position struct {
	Symbol        string
	Side          Side
	Quantity      float64
	AvgPrice      float64
	CurrentPrice  float64
	RealizedPnL   float64
	UnrealizedPnL float64
	UpdatedAt     time.Time
}

// NewPosition returns a flat position for symbol.
func NewPosition(symbol string) *Position {
	return &Position{Symbol: symbol, Side: Flat}
}

func (p *Position) IsFlat() bool  { return p.Side == Flat || p.Quantity == 0 }
func (p *Position) IsLong() bool  { return p.Side == Long && p.Quantity > 0 }
func (p *Position) IsShort() bool { return p.Side == Short && p.Quantity > 0 }

// MarketValue is quantity times the last marked price.
func (p *Position) MarketValue() float64 { return p.Quantity * p.CurrentPrice }

// CostValue is quantity times the average entry price.
func (p *Position) CostValue() float64 { return p.Quantity * p.AvgPrice }

// Add opens or increases exposure at price. On a flat position it sets the
// side and cost basis; on a non-flat position side must match and the average
// price is re-weighted:
//
//	avg = (held*avg + qty*price) / (held + qty)
//
// Averaging is deliberate: O(1) state instead of per-lot tracking.
func (p *Position) Add(side Side, qty, price float64, ts time.Time) error {
	if side == Flat {
		return errValidation("side", "cannot add to the flat side")
	}
	if qty <= 0 {
		return errValidation("quantity", "must be positive, got %.4f", qty)
	}
	if price <= 0 {
		return errValidation("price", "must be positive, got %.4f", price)
	}

	if p.IsFlat() {
		p.Side = side
		p.Quantity = qty
		p.AvgPrice = price
	} else {
		if side != p.Side {
			return errValidation("side", "position %s is %s, cannot add %s (use Reverse)", p.Symbol, p.Side, side)
		}
		total := p.CostValue() + qty*price
		p.Quantity += qty
		p.AvgPrice = total / p.Quantity
	}

	p.touch(ts)
	return nil
}

// Reduce decreases exposure by qty at price and returns the realized PnL of
// the reduced part:
//
//	realized = qty * (price - avg) * sign
//
// The average price of the remaining exposure is unchanged; only realized PnL
// is crystallized. A reduce to exactly zero flips the position to flat and
// resets the cost basis.
func (p *Position) Reduce(qty, price float64, ts time.Time) (float64, error) {
	if qty <= 0 {
		return 0, errValidation("quantity", "must be positive, got %.4f", qty)
	}
	if price <= 0 {
		return 0, errValidation("price", "must be positive, got %.4f", price)
	}
	if qty > p.Quantity {
		return 0, &InsufficientPositionError{Symbol: p.Symbol, Held: p.Quantity, Requested: qty}
	}

	realized := qty * (price - p.AvgPrice) * p.Side.Sign()
	p.RealizedPnL += realized
	p.Quantity -= qty

	if p.Quantity == 0 {
		p.Side = Flat
		p.AvgPrice = 0
	}

	p.touch(ts)
	return realized, nil
}

// Close reduces the whole position at price. Closing a flat position is a
// no-op returning zero realized PnL.
func (p *Position) Close(price float64, ts time.Time) (float64, error) {
	if p.IsFlat() {
		return 0, nil
	}
	return p.Reduce(p.Quantity, price, ts)
}

// Reverse closes the current exposure at price, realizing its PnL, and opens
// newQty on the opposite side with avg = price. The flip happens at a single
// price, one atomic operation.
func (p *Position) Reverse(newQty, price float64, ts time.Time) (float64, error) {
	if newQty <= 0 {
		return 0, errValidation("quantity", "must be positive, got %.4f", newQty)
	}
	if price <= 0 {
		return 0, errValidation("price", "must be positive, got %.4f", price)
	}
	if p.IsFlat() {
		return 0, errValidation("side", "cannot reverse a flat position")
	}

	newSide := p.Side.Opposite()
	realized, err := p.Close(price, ts)
	if err != nil {
		return 0, err
	}

	p.Side = newSide
	p.Quantity = newQty
	p.AvgPrice = price

	p.touch(ts)
	return realized, nil
}

// Mark updates the current price and recomputes unrealized PnL. Realized PnL
// is never touched.
func (p *Position) Mark(price float64, ts time.Time) error {
	if price <= 0 {
		return errValidation("price", "must be positive, got %.4f", price)
	}
	p.CurrentPrice = price
	p.touch(ts)
	return nil
}

// touch stamps the update time and rederives unrealized PnL.
func (p *Position) touch(ts time.Time) {
	p.UpdatedAt = ts
	if p.IsFlat() || p.CurrentPrice <= 0 {
		p.UnrealizedPnL = 0
		return
	}
	p.UnrealizedPnL = (p.CurrentPrice - p.AvgPrice) * p.Quantity * p.Side.Sign()
}

// PositionSnapshot is the flat interchange shape consumed by reporting.
type PositionSnapshot struct {
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Quantity      float64   `json:"quantity"`
	AvgPrice      float64   `json:"avg_price"`
	CurrentPrice  float64   `json:"current_price"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	RealizedPnL   float64   `json:"realized_pnl"`
	MarketValue   float64   `json:"market_value"`
	CostValue     float64   `json:"cost_value"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns a copy of the position's reportable fields.
func (p *Position) Snapshot() PositionSnapshot {
	return PositionSnapshot{
		Symbol:        p.Symbol,
		Side:          p.Side.String(),
		Quantity:      p.Quantity,
		AvgPrice:      p.AvgPrice,
		CurrentPrice:  p.CurrentPrice,
		UnrealizedPnL: p.UnrealizedPnL,
		RealizedPnL:   p.RealizedPnL,
		MarketValue:   p.MarketValue(),
		CostValue:     p.CostValue(),
		UpdatedAt:     p.UpdatedAt,
	}
}
