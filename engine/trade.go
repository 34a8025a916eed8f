package engine

import (
	"time"

	"github.com/rustyeddy/futures/pkg/id"
)

// TradeType classifies a fill: opening a long or short, or closing one.
type TradeType int

const (
	Buy TradeType = iota
	Sell
	CloseLong
	CloseShort
)

func (t TradeType) String() string {
	switch t {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case CloseLong:
		return "close_long"
	case CloseShort:
		return "close_short"
	default:
		return "unknown"
	}
}

// TradeStatus is the lifecycle state of a trade. Pending is the only
// non-terminal status.
type TradeStatus int

const (
	Pending TradeStatus = iota
	Filled
	Cancelled
	Rejected
)

func (s TradeStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s TradeStatus) Terminal() bool { return s != Pending }

// Trade records one fill attempt against the market. It is created pending,
// transitions exactly once to filled, cancelled, or rejected, and then lives
// unchanged in the ledger for the rest of the run.
type Trade struct {
	ID          string
	Symbol      string
	Type        TradeType
	Quantity    float64
	Price       float64
	Time        time.Time
	Status      TradeStatus
	Commission  float64
	Slippage    float64
	RealizedPnL float64

	// OrderPrice is the requested price when it differs from the fill price.
	OrderPrice *float64
	FillTime   *time.Time
	Metadata   map[string]any
}

// NewTrade validates and builds a pending trade with a ULID identifier.
// The argument order mirrors the fill request shape supplied by the
// execution layer.
func NewTrade(symbol string, typ TradeType, qty, price float64, ts time.Time, commission, slippage float64) (*Trade, error) {
	if symbol == "" {
		return nil, errValidation("symbol", "must not be empty")
	}
	if qty <= 0 {
		return nil, errValidation("quantity", "must be positive, got %.4f", qty)
	}
	if price <= 0 {
		return nil, errValidation("price", "must be positive, got %.4f", price)
	}
	if commission < 0 {
		return nil, errValidation("commission", "must not be negative, got %.4f", commission)
	}

	return &Trade{
		ID:         id.New(),
		Symbol:     symbol,
		Type:       typ,
		Quantity:   qty,
		Price:      price,
		Time:       ts,
		Status:     Pending,
		Commission: commission,
		Slippage:   slippage,
		Metadata:   make(map[string]any),
	}, nil
}

func (t *Trade) IsBuy() bool   { return t.Type == Buy }
func (t *Trade) IsSell() bool  { return t.Type == Sell }
func (t *Trade) IsClose() bool { return t.Type == CloseLong || t.Type == CloseShort }

// LongSide reports whether the fill buys contracts (opening long or covering
// a short).
func (t *Trade) LongSide() bool { return t.Type == Buy || t.Type == CloseShort }

// Fill marks the trade filled at fillTime. A positive fillPrice overrides the
// recorded price (execution slippage); pass 0 to fill at the recorded price.
// The original request price is preserved in OrderPrice.
func (t *Trade) Fill(fillPrice float64, fillTime time.Time) error {
	if t.Status.Terminal() {
		return &InvalidTransitionError{TradeID: t.ID, Status: t.Status, Op: "fill"}
	}
	if fillPrice > 0 && fillPrice != t.Price {
		orig := t.Price
		t.OrderPrice = &orig
		t.Price = fillPrice
	}
	t.FillTime = &fillTime
	t.Status = Filled
	return nil
}

// Cancel marks the trade cancelled.
func (t *Trade) Cancel() error {
	if t.Status.Terminal() {
		return &InvalidTransitionError{TradeID: t.ID, Status: t.Status, Op: "cancel"}
	}
	t.Status = Cancelled
	return nil
}

// Reject marks the trade rejected, recording the reason in metadata.
func (t *Trade) Reject(reason string) error {
	if t.Status.Terminal() {
		return &InvalidTransitionError{TradeID: t.ID, Status: t.Status, Op: "reject"}
	}
	t.Status = Rejected
	if reason != "" {
		t.Metadata["reject_reason"] = reason
	}
	return nil
}

// TradeValue is quantity times price.
func (t *Trade) TradeValue() float64 { return t.Quantity * t.Price }

// TotalCost is the trade value plus commission and absolute slippage cost.
// It is never below TradeValue.
func (t *Trade) TotalCost() float64 {
	slip := t.Slippage
	if slip < 0 {
		slip = -slip
	}
	return t.TradeValue() + t.Commission + t.Quantity*slip
}

// CalculatePnL returns the trade-local PnL of exiting at exitPrice, using the
// same sign convention as Position. The engine populates RealizedPnL from the
// position accounting instead; this exists for callers that need a quote
// without touching position state.
func (t *Trade) CalculatePnL(exitPrice float64) float64 {
	if t.LongSide() {
		return t.Quantity * (exitPrice - t.Price)
	}
	return t.Quantity * (t.Price - exitPrice)
}

// TradeSnapshot is the flat interchange shape consumed by reporting.
type TradeSnapshot struct {
	ID          string         `json:"trade_id"`
	Symbol      string         `json:"symbol"`
	Type        string         `json:"trade_type"`
	Quantity    float64        `json:"quantity"`
	Price       float64        `json:"price"`
	Time        time.Time      `json:"timestamp"`
	Status      string         `json:"status"`
	Commission  float64        `json:"commission"`
	Slippage    float64        `json:"slippage"`
	RealizedPnL float64        `json:"realized_pnl"`
	OrderPrice  *float64       `json:"order_price,omitempty"`
	FillTime    *time.Time     `json:"fill_time,omitempty"`
	TradeValue  float64        `json:"trade_value"`
	TotalCost   float64        `json:"total_cost"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Snapshot returns a copy of the trade's reportable fields.
func (t *Trade) Snapshot() TradeSnapshot {
	return TradeSnapshot{
		ID:          t.ID,
		Symbol:      t.Symbol,
		Type:        t.Type.String(),
		Quantity:    t.Quantity,
		Price:       t.Price,
		Time:        t.Time,
		Status:      t.Status.String(),
		Commission:  t.Commission,
		Slippage:    t.Slippage,
		RealizedPnL: t.RealizedPnL,
		OrderPrice:  t.OrderPrice,
		FillTime:    t.FillTime,
		TradeValue:  t.TradeValue(),
		TotalCost:   t.TotalCost(),
		Metadata:    t.Metadata,
	}
}
