// Package market defines the basic market data types shared by the data,
// strategy, and backtest layers.
package market

import (
	"fmt"
	"time"
)

// Bar is one OHLCV sample for a futures contract over a fixed interval.
// OpenInterest is the outstanding contract count at the close of the bar.
type Bar struct {
	Symbol       string
	Time         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       int64
	OpenInterest int64
	Freq         string // "1min", "5min", "1d", ...
}

// Validate checks basic OHLC consistency. A bar that fails validation should
// never enter a feed; loaders call this once per row.
func (b Bar) Validate() error {
	if b.High < b.Open || b.High < b.Close || b.High < b.Low {
		return fmt.Errorf("bar %s@%s: high %.4f below open/close/low", b.Symbol, b.Time.Format(time.RFC3339), b.High)
	}
	if b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("bar %s@%s: low %.4f above open/close", b.Symbol, b.Time.Format(time.RFC3339), b.Low)
	}
	if b.Volume < 0 {
		return fmt.Errorf("bar %s@%s: negative volume %d", b.Symbol, b.Time.Format(time.RFC3339), b.Volume)
	}
	if b.OpenInterest < 0 {
		return fmt.Errorf("bar %s@%s: negative open interest %d", b.Symbol, b.Time.Format(time.RFC3339), b.OpenInterest)
	}
	return nil
}

// TypicalPrice is (high + low + close) / 3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3.0
}

// WeightedPrice is (open + high + low + close) / 4.
func (b Bar) WeightedPrice() float64 {
	return (b.Open + b.High + b.Low + b.Close) / 4.0
}

// Range is high minus low.
func (b Bar) Range() float64 { return b.High - b.Low }

// Body is the absolute close-open distance.
func (b Bar) Body() float64 {
	d := b.Close - b.Open
	if d < 0 {
		return -d
	}
	return d
}

func (b Bar) Bullish() bool { return b.Close > b.Open }
func (b Bar) Bearish() bool { return b.Close < b.Open }
