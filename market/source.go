package market

import "time"

// BarSource is the narrow capability the engine layers use to read history.
// Implementations own loading, resampling, and caching; consumers only see
// ordered bars.
type BarSource interface {
	// GetBars returns bars for symbol in [from, to), ascending by time.
	GetBars(symbol string, from, to time.Time, freq string) ([]Bar, error)
}
