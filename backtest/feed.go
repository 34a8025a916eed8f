package backtest

import (
	"time"

	"github.com/rustyeddy/futures/market"
)

// BarFeed yields closed bars one at a time in replay order. Implementations
// must be deterministic and return ok=false with a nil error at EOF.
type BarFeed interface {
	Next() (bar market.Bar, ok bool, err error)
	Close() error
}

// SliceFeed replays an in-memory series.
type SliceFeed struct {
	bars []market.Bar
	idx  int
}

func NewSliceFeed(bars []market.Bar) *SliceFeed {
	return &SliceFeed{bars: bars}
}

func (f *SliceFeed) Next() (market.Bar, bool, error) {
	if f.idx >= len(f.bars) {
		return market.Bar{}, false, nil
	}
	b := f.bars[f.idx]
	f.idx++
	return b, true, nil
}

func (f *SliceFeed) Close() error { return nil }

// SourceFeed pulls one symbol's series out of a bar source up front and
// replays it. Zero from/to replay the whole series.
func SourceFeed(src market.BarSource, symbol string, from, to time.Time, freq string) (*SliceFeed, error) {
	bars, err := src.GetBars(symbol, from, to, freq)
	if err != nil {
		return nil, err
	}
	return NewSliceFeed(bars), nil
}
