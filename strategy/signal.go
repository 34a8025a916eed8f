// Package strategy defines the trade-intent contract between strategies and
// the execution simulator, and the strategies bundled with the backtester.
package strategy

import (
	"time"
)

// SignalType is the intent a strategy declares for a symbol.
type SignalType int

const (
	Hold SignalType = iota
	Buy
	Sell
	Close
	CloseLong
	CloseShort
)

func (s SignalType) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Close:
		return "close"
	case CloseLong:
		return "close_long"
	case CloseShort:
		return "close_short"
	default:
		return "hold"
	}
}

// PriceType selects how the execution layer prices the intent.
type PriceType int

const (
	Market PriceType = iota
	Limit
)

func (p PriceType) String() string {
	if p == Limit {
		return "limit"
	}
	return "market"
}

// Signal is an immutable trade intent. It is produced by a strategy, consumed
// by the execution simulator, and never touched by the accounting engine; it
// exists so both sides of that boundary share one vocabulary. Build signals
// through the constructors, which validate every field up front.
type Signal struct {
	Symbol     string
	Type       SignalType
	Quantity   float64 // signed; sign carries direction for buy/sell
	Time       time.Time
	PriceType  PriceType
	LimitPrice *float64
	StopPrice  *float64
	TakeProfit *float64
	Priority   int
}

// Direction is +1 for a long intent, -1 for a short intent, and 0 for closes
// and holds.
func (s Signal) Direction() int {
	switch s.Type {
	case Buy:
		if s.Quantity < 0 {
			return -1
		}
		return 1
	case Sell:
		if s.Quantity < 0 {
			return 1
		}
		return -1
	default:
		return 0
	}
}

func (s Signal) IsLong() bool  { return s.Direction() > 0 }
func (s Signal) IsShort() bool { return s.Direction() < 0 }
func (s Signal) IsClose() bool {
	return s.Type == Close || s.Type == CloseLong || s.Type == CloseShort
}

// AbsQuantity is the unsigned size of the intent.
func (s Signal) AbsQuantity() float64 {
	if s.Quantity < 0 {
		return -s.Quantity
	}
	return s.Quantity
}

// validate enforces the construction contract. Buy/sell intents need a
// non-zero quantity; a close with zero quantity means "close everything";
// holds carry no size at all.
func (s Signal) validate() error {
	if s.Symbol == "" {
		return errSignal("symbol must not be empty")
	}
	switch s.Type {
	case Buy, Sell:
		if s.Quantity == 0 {
			return errSignal("%s signal quantity must not be zero", s.Type)
		}
	case Close, CloseLong, CloseShort:
		if s.Quantity < 0 {
			return errSignal("close signal quantity must not be negative, got %.4f", s.Quantity)
		}
	}
	if s.PriceType == Limit && s.LimitPrice == nil {
		return errSignal("limit signal requires a limit price")
	}
	if s.LimitPrice != nil && *s.LimitPrice <= 0 {
		return errSignal("limit price must be positive, got %.4f", *s.LimitPrice)
	}
	if s.StopPrice != nil && *s.StopPrice <= 0 {
		return errSignal("stop price must be positive, got %.4f", *s.StopPrice)
	}
	if s.TakeProfit != nil && *s.TakeProfit <= 0 {
		return errSignal("take profit must be positive, got %.4f", *s.TakeProfit)
	}
	return nil
}

// SignalOption adjusts optional fields before validation.
type SignalOption func(*Signal)

func WithLimit(price float64) SignalOption {
	return func(s *Signal) {
		s.PriceType = Limit
		s.LimitPrice = &price
	}
}

func WithStop(price float64) SignalOption {
	return func(s *Signal) { s.StopPrice = &price }
}

func WithTakeProfit(price float64) SignalOption {
	return func(s *Signal) { s.TakeProfit = &price }
}

func WithPriority(p int) SignalOption {
	return func(s *Signal) { s.Priority = p }
}

// NewSignal builds and validates a signal of any type.
func NewSignal(symbol string, typ SignalType, qty float64, ts time.Time, opts ...SignalOption) (Signal, error) {
	s := Signal{Symbol: symbol, Type: typ, Quantity: qty, Time: ts, PriceType: Market}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return Signal{}, err
	}
	return s, nil
}

// BuySignal is a long-open intent for qty contracts.
func BuySignal(symbol string, qty float64, ts time.Time, opts ...SignalOption) (Signal, error) {
	return NewSignal(symbol, Buy, abs(qty), ts, opts...)
}

// SellSignal is a short-open intent for qty contracts.
func SellSignal(symbol string, qty float64, ts time.Time, opts ...SignalOption) (Signal, error) {
	return NewSignal(symbol, Sell, abs(qty), ts, opts...)
}

// CloseSignal requests closing qty contracts; zero closes the whole position.
func CloseSignal(symbol string, qty float64, ts time.Time, opts ...SignalOption) (Signal, error) {
	return NewSignal(symbol, Close, abs(qty), ts, opts...)
}

// HoldSignal declares no intent; the execution layer skips it.
func HoldSignal(symbol string, ts time.Time) Signal {
	return Signal{Symbol: symbol, Type: Hold, Time: ts, PriceType: Market}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
