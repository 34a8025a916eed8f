package strategy

import (
	"fmt"

	"github.com/rustyeddy/futures/indicators"
	"github.com/rustyeddy/futures/market"
)

const maxHistory = 1000

// SMACross trades a single symbol on a fast/slow simple moving average
// crossover: buy when the fast average crosses above the slow, sell when it
// crosses below. An opposite cross is a full reversal; the execution layer
// handles closing the old side.
type SMACross struct {
	Symbol   string
	Fast     int
	Slow     int
	Quantity float64

	bars     []market.Bar
	lastDiff float64
	haveDiff bool
}

func NewSMACross(symbol string, fast, slow int, qty float64) (*SMACross, error) {
	if symbol == "" {
		return nil, fmt.Errorf("sma-cross: symbol is required")
	}
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("sma-cross: need 0 < fast < slow, got fast=%d slow=%d", fast, slow)
	}
	if qty <= 0 {
		return nil, fmt.Errorf("sma-cross: quantity must be positive, got %.4f", qty)
	}
	return &SMACross{Symbol: symbol, Fast: fast, Slow: slow, Quantity: qty}, nil
}

func (s *SMACross) Name() string {
	return fmt.Sprintf("sma-cross(%d,%d)", s.Fast, s.Slow)
}

func (s *SMACross) Reset() {
	s.bars = nil
	s.lastDiff = 0
	s.haveDiff = false
}

func (s *SMACross) OnBar(bar market.Bar) (*Signal, error) {
	if bar.Symbol != s.Symbol {
		return nil, nil
	}

	s.bars = append(s.bars, bar)
	if len(s.bars) > maxHistory {
		s.bars = s.bars[len(s.bars)-maxHistory:]
	}
	if len(s.bars) < s.Slow {
		return nil, nil
	}

	fast, err := indicators.SMA(s.bars, s.Fast)
	if err != nil {
		return nil, err
	}
	slow, err := indicators.SMA(s.bars, s.Slow)
	if err != nil {
		return nil, err
	}

	diff := fast - slow
	if !s.haveDiff {
		s.lastDiff = diff
		s.haveDiff = true
		return nil, nil
	}

	crossedUp := s.lastDiff <= 0 && diff > 0
	crossedDown := s.lastDiff >= 0 && diff < 0
	s.lastDiff = diff

	switch {
	case crossedUp:
		sig, err := BuySignal(s.Symbol, s.Quantity, bar.Time)
		if err != nil {
			return nil, err
		}
		return &sig, nil
	case crossedDown:
		sig, err := SellSignal(s.Symbol, s.Quantity, bar.Time)
		if err != nil {
			return nil, err
		}
		return &sig, nil
	}
	return nil, nil
}

func init() {
	Register("sma-cross", func(p Params) (Strategy, error) {
		return NewSMACross(p.Symbol, p.Fast, p.Slow, p.Quantity)
	})
	Register("noop", func(p Params) (Strategy, error) {
		return noop{}, nil
	})
}

// noop never signals; useful for dry runs over a dataset.
type noop struct{}

func (noop) Name() string                      { return "noop" }
func (noop) Reset()                            {}
func (noop) OnBar(market.Bar) (*Signal, error) { return nil, nil }
