package data

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/futures/market"
)

// Store keeps loaded bar series keyed by (symbol, freq) and implements
// market.BarSource. Series are stored ascending by time.
type Store struct {
	mu     sync.RWMutex
	series map[string][]market.Bar
}

func NewStore() *Store {
	return &Store{series: make(map[string][]market.Bar)}
}

func key(symbol, freq string) string { return symbol + "|" + freq }

// LoadCSV reads a bar file and registers its series. Bars for multiple
// symbols may share one file; each symbol gets its own series.
func (s *Store) LoadCSV(path, freq string) error {
	bars, err := ReadCSV(path, freq)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("load %s: no bars", path)
	}

	bySymbol := make(map[string][]market.Bar)
	for _, b := range bars {
		bySymbol[b.Symbol] = append(bySymbol[b.Symbol], b)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for symbol, series := range bySymbol {
		s.series[key(symbol, freq)] = series
	}
	return nil
}

// Add registers a series directly, replacing any existing one for the same
// symbol and frequency.
func (s *Store) Add(symbol, freq string, bars []market.Bar) {
	sorted := make([]market.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[key(symbol, freq)] = sorted
}

// GetBars returns bars for symbol in [from, to), ascending. Zero from/to
// leave that bound open.
func (s *Store) GetBars(symbol string, from, to time.Time, freq string) ([]market.Bar, error) {
	s.mu.RLock()
	series, ok := s.series[key(symbol, freq)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no data for %s@%s", symbol, freq)
	}

	var out []market.Bar
	for _, b := range series {
		if !from.IsZero() && b.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !b.Time.Before(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Latest returns the most recent bar at or before ts.
func (s *Store) Latest(symbol, freq string, ts time.Time) (market.Bar, error) {
	s.mu.RLock()
	series, ok := s.series[key(symbol, freq)]
	s.mu.RUnlock()
	if !ok {
		return market.Bar{}, fmt.Errorf("no data for %s@%s", symbol, freq)
	}

	idx := sort.Search(len(series), func(i int) bool { return series[i].Time.After(ts) })
	if idx == 0 {
		return market.Bar{}, fmt.Errorf("no bar for %s at or before %s", symbol, ts.Format(time.RFC3339))
	}
	return series[idx-1], nil
}

// Symbols lists the loaded (symbol, freq) pairs.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.series))
	for k := range s.series {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clear drops all loaded series.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]market.Bar)
}
