// Package backtest drives a strategy over a bar feed and accounts the result.
// The loop is: mark positions at the bar close, hand the bar to the strategy,
// execute whatever signal comes back, journal the outcome.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/futures/engine"
	"github.com/rustyeddy/futures/journal"
	"github.com/rustyeddy/futures/sim"
	"github.com/rustyeddy/futures/strategy"
)

// Options controls runner behavior beyond the core loop.
type Options struct {
	// CloseEnd closes all open positions at the last bar's close price.
	CloseEnd bool

	// SnapshotEvery journals a portfolio snapshot every N bars. Zero means
	// one snapshot per bar.
	SnapshotEvery int
}

// Runner wires a feed, a strategy, and an executor into one replay.
type Runner struct {
	Feed      BarFeed
	Strategy  strategy.Strategy
	Executor  *sim.Executor
	Positions *engine.Registry
	Ledger    *engine.Ledger
	Journal   journal.Journal
	Log       zerolog.Logger
	Options   Options
}

// Run executes the backtest loop until the feed is exhausted or ctx is
// cancelled. The feed is closed on return.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Executor == nil || r.Positions == nil || r.Ledger == nil {
		return Result{}, fmt.Errorf("backtest: Executor, Positions and Ledger are required")
	}
	jnl := r.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	defer r.Feed.Close()

	var (
		start, end time.Time
		lastClose  = make(map[string]float64)
		bars       int
	)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		bar, ok, err := r.Feed.Next()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		bars++

		if start.IsZero() {
			start = bar.Time
		}
		end = bar.Time
		lastClose[bar.Symbol] = bar.Close

		if err := r.Positions.MarkAll(map[string]float64{bar.Symbol: bar.Close}, bar.Time); err != nil {
			return Result{}, err
		}

		sig, err := r.Strategy.OnBar(bar)
		if err != nil {
			return Result{}, fmt.Errorf("strategy %s: %w", r.Strategy.Name(), err)
		}
		if sig != nil {
			if err := r.execute(*sig, bar.Close, bar.Time, jnl); err != nil {
				return Result{}, err
			}
		}

		every := r.Options.SnapshotEvery
		if every <= 1 || bars%every == 0 {
			if err := jnl.RecordSnapshot(r.snapshot(bar.Time)); err != nil {
				return Result{}, err
			}
		}
	}

	if r.Options.CloseEnd {
		if err := r.closeAll(lastClose, end, jnl); err != nil {
			return Result{}, err
		}
	}

	res := r.result(start, end, bars)
	r.Log.Info().
		Int("bars", bars).
		Int("trades", res.Summary.TotalTrades).
		Float64("realized_pnl", res.RealizedPnL).
		Msg("backtest complete")
	return res, nil
}

func (r *Runner) execute(sig strategy.Signal, price float64, ts time.Time, jnl journal.Journal) error {
	trade, err := r.Executor.Execute(sig, price, ts)
	if err != nil {
		return err
	}
	if trade == nil {
		return nil
	}

	r.Log.Debug().
		Str("trade_id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("type", trade.Type.String()).
		Str("status", trade.Status.String()).
		Float64("quantity", trade.Quantity).
		Float64("price", trade.Price).
		Msg("trade recorded")

	return jnl.RecordFill(fillRecord(trade))
}

// closeAll flattens every active position at its last seen close price.
func (r *Runner) closeAll(lastClose map[string]float64, ts time.Time, jnl journal.Journal) error {
	for _, snap := range r.Positions.Active() {
		price, ok := lastClose[snap.Symbol]
		if !ok {
			price = snap.CurrentPrice
		}
		if price <= 0 {
			return fmt.Errorf("backtest: no closing price for %s", snap.Symbol)
		}

		sig, err := strategy.CloseSignal(snap.Symbol, 0, ts)
		if err != nil {
			return err
		}
		if err := r.execute(sig, price, ts, jnl); err != nil {
			return err
		}
	}
	if err := jnl.RecordSnapshot(r.snapshot(ts)); err != nil {
		return err
	}
	return nil
}

func (r *Runner) snapshot(ts time.Time) journal.PortfolioSnapshot {
	return journal.PortfolioSnapshot{
		Time:          ts,
		RealizedPnL:   r.Positions.TotalRealizedPnL(),
		UnrealizedPnL: r.Positions.TotalUnrealizedPnL(),
		MarketValue:   r.Positions.TotalMarketValue(),
		Commission:    r.Ledger.TotalCommission(),
	}
}

// fillRecord flattens a ledger trade into a journal row.
func fillRecord(t *engine.Trade) journal.FillRecord {
	r := journal.FillRecord{
		TradeID:     t.ID,
		Symbol:      t.Symbol,
		TradeType:   t.Type.String(),
		Status:      t.Status.String(),
		Quantity:    t.Quantity,
		Price:       t.Price,
		Commission:  t.Commission,
		Slippage:    t.Slippage,
		RealizedPnL: t.RealizedPnL,
		Time:        t.Time,
	}
	if t.FillTime != nil {
		r.FillTime = *t.FillTime
	}
	if reason, ok := t.Metadata["reject_reason"].(string); ok {
		r.Reason = reason
	}
	return r
}
