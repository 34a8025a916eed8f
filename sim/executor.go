// Package sim turns strategy signals into simulated fills. It owns the
// pricing model (slippage, commission, limit marketability) and feeds the
// resulting trades into the accounting engine; the engine itself never sees a
// signal.
package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/futures/engine"
	"github.com/rustyeddy/futures/strategy"
)

// Config is the execution cost model.
type Config struct {
	// CommissionRate is charged per fill as rate * quantity * price.
	CommissionRate float64
	// Slippage is added to buys and subtracted from sells, in price units
	// per contract.
	Slippage float64
}

// Executor converts signals into trades and applies fills to the registry and
// ledger. Positions stay the single source of truth for realized PnL: each
// filled trade carries the value returned by the position operation.
type Executor struct {
	cfg       Config
	positions *engine.Registry
	ledger    *engine.Ledger
}

func NewExecutor(cfg Config, positions *engine.Registry, ledger *engine.Ledger) (*Executor, error) {
	if cfg.CommissionRate < 0 {
		return nil, fmt.Errorf("executor: commission rate must not be negative, got %.6f", cfg.CommissionRate)
	}
	if cfg.Slippage < 0 {
		return nil, fmt.Errorf("executor: slippage must not be negative, got %.6f", cfg.Slippage)
	}
	if positions == nil || ledger == nil {
		return nil, fmt.Errorf("executor: registry and ledger are required")
	}
	return &Executor{cfg: cfg, positions: positions, ledger: ledger}, nil
}

// Execute handles one signal at the given market price. It returns the
// recorded trade, or nil when the signal produces no fill attempt (holds,
// closes with nothing held, same-size targets). A rejected trade is a
// recorded outcome, not an error: errors are reserved for malformed input.
func (e *Executor) Execute(sig strategy.Signal, price float64, ts time.Time) (*engine.Trade, error) {
	if price <= 0 {
		return nil, fmt.Errorf("executor: market price must be positive, got %.4f", price)
	}
	if sig.Type == strategy.Hold {
		return nil, nil
	}

	pos := e.positions.GetOrCreate(sig.Symbol)

	plan, ok := e.plan(sig, pos)
	if !ok {
		return nil, nil
	}

	// Limit fills execute at the limit price without slippage; market fills
	// pay the configured slippage. The trade records the requested price:
	// the limit for limit orders, the market price otherwise.
	fillPrice := e.fillPrice(plan.typ, price)
	orderPrice := price
	slippage := e.cfg.Slippage
	if sig.PriceType == strategy.Limit {
		fillPrice = *sig.LimitPrice
		orderPrice = *sig.LimitPrice
		slippage = 0
	}
	commission := e.cfg.CommissionRate * plan.qty * fillPrice

	trade, err := engine.NewTrade(sig.Symbol, plan.typ, plan.qty, orderPrice, ts, commission, slippage)
	if err != nil {
		return nil, err
	}

	// Unmarketable limit orders stay pending in the ledger.
	if sig.PriceType == strategy.Limit && !marketable(plan.typ, price, *sig.LimitPrice) {
		if err := e.ledger.Add(trade); err != nil {
			return nil, err
		}
		return trade, nil
	}

	if plan.reject != "" {
		if err := trade.Reject(plan.reject); err != nil {
			return nil, err
		}
		if err := e.ledger.Add(trade); err != nil {
			return nil, err
		}
		return trade, nil
	}

	realized, err := e.positions.Apply(sig.Symbol, plan.target, plan.targetQty, fillPrice, ts)
	if err != nil {
		// All-or-nothing: the position refused the fill, so the trade is
		// rejected rather than half-applied.
		if rerr := trade.Reject(err.Error()); rerr != nil {
			return nil, rerr
		}
		if aerr := e.ledger.Add(trade); aerr != nil {
			return nil, aerr
		}
		return trade, nil
	}

	if err := trade.Fill(fillPrice, ts); err != nil {
		return nil, err
	}
	trade.RealizedPnL = realized

	if err := e.ledger.Add(trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// fillPlan is the resolved intent: what to trade and where to move the
// position. qty is the contracts actually exchanged; targetQty is the
// resulting absolute position size handed to Registry.Apply.
type fillPlan struct {
	typ       engine.TradeType
	qty       float64
	target    engine.Side
	targetQty float64
	reject    string
}

// plan resolves a signal against the current position. Signal quantities are
// target sizes for buy/sell (matching the registry's transition table) and
// reduction sizes for closes, zero meaning close everything.
func (e *Executor) plan(sig strategy.Signal, pos *engine.Position) (fillPlan, bool) {
	switch sig.Type {
	case strategy.Buy, strategy.Sell:
		target := engine.Long
		if sig.Direction() < 0 {
			target = engine.Short
		}
		want := sig.AbsQuantity()

		if pos.IsFlat() || pos.Side == target {
			delta := want - pos.Quantity
			switch {
			case delta > 0:
				typ := engine.Buy
				if target == engine.Short {
					typ = engine.Sell
				}
				return fillPlan{typ: typ, qty: delta, target: target, targetQty: want}, true
			case delta < 0:
				typ := engine.CloseLong
				if target == engine.Short {
					typ = engine.CloseShort
				}
				return fillPlan{typ: typ, qty: -delta, target: target, targetQty: want}, true
			default:
				return fillPlan{}, false
			}
		}

		// opposite side: one reversal fill closes the old exposure and opens
		// the new
		typ := engine.Buy
		if target == engine.Short {
			typ = engine.Sell
		}
		return fillPlan{typ: typ, qty: pos.Quantity + want, target: target, targetQty: want}, true

	case strategy.Close, strategy.CloseLong, strategy.CloseShort:
		return e.planClose(sig, pos)
	}
	return fillPlan{}, false
}

func (e *Executor) planClose(sig strategy.Signal, pos *engine.Position) (fillPlan, bool) {
	if pos.IsFlat() {
		return fillPlan{}, false
	}

	typ := engine.CloseLong
	if pos.IsShort() {
		typ = engine.CloseShort
	}

	qty := sig.AbsQuantity()
	if qty == 0 {
		qty = pos.Quantity
	}

	// a directional close against the wrong side is a strategy bug worth a
	// rejected record, not silence
	if sig.Type == strategy.CloseLong && !pos.IsLong() {
		return fillPlan{typ: engine.CloseLong, qty: qty, target: pos.Side, targetQty: pos.Quantity,
			reject: fmt.Sprintf("no long position in %s to close", sig.Symbol)}, true
	}
	if sig.Type == strategy.CloseShort && !pos.IsShort() {
		return fillPlan{typ: engine.CloseShort, qty: qty, target: pos.Side, targetQty: pos.Quantity,
			reject: fmt.Sprintf("no short position in %s to close", sig.Symbol)}, true
	}
	if qty == 0 || qty == pos.Quantity {
		return fillPlan{typ: typ, qty: pos.Quantity, target: engine.Flat}, true
	}
	if qty > pos.Quantity {
		return fillPlan{typ: typ, qty: qty, target: pos.Side, targetQty: pos.Quantity,
			reject: fmt.Sprintf("close quantity %.4f exceeds held %.4f", qty, pos.Quantity)}, true
	}
	return fillPlan{typ: typ, qty: qty, target: pos.Side, targetQty: pos.Quantity - qty}, true
}

// fillPrice applies slippage against the taker: buys pay up, sells receive
// less.
func (e *Executor) fillPrice(typ engine.TradeType, price float64) float64 {
	if typ == engine.Buy || typ == engine.CloseShort {
		return price + e.cfg.Slippage
	}
	return price - e.cfg.Slippage
}

// marketable reports whether a limit order can fill at the current price.
// Direction comes from the resolved trade type, not the signal: a generic
// close covering a short is a buy.
func marketable(typ engine.TradeType, price, limit float64) bool {
	if typ == engine.Buy || typ == engine.CloseShort {
		return price <= limit
	}
	return price >= limit
}
