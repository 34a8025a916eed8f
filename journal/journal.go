// Package journal persists backtest output: one record per trade fill attempt
// and periodic portfolio snapshots. The accounting engine owns no storage;
// everything written here is derived from the engine's interchange shapes.
package journal

import "time"

// FillRecord is one row of the trade log.
type FillRecord struct {
	TradeID     string
	Symbol      string
	TradeType   string
	Status      string
	Quantity    float64
	Price       float64
	Commission  float64
	Slippage    float64
	RealizedPnL float64
	Time        time.Time
	FillTime    time.Time // zero when never filled
	Reason      string    // reject reason, empty otherwise
}

// PortfolioSnapshot is one row of the equity curve.
type PortfolioSnapshot struct {
	Time          time.Time
	RealizedPnL   float64
	UnrealizedPnL float64
	MarketValue   float64
	Commission    float64
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordSnapshot(PortfolioSnapshot) error
	Close() error
}

// Nop discards everything. Used when a run does not need persistence.
type Nop struct{}

func (Nop) RecordFill(FillRecord) error            { return nil }
func (Nop) RecordSnapshot(PortfolioSnapshot) error { return nil }
func (Nop) Close() error                           { return nil }
