// Package data loads bar history and serves it through the market.BarSource
// capability. It holds everything in memory: a backtest dataset is read once
// up front and replayed many times.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/futures/market"
)

// ReadCSV parses canonical bar rows:
//
//	time,symbol,open,high,low,close,volume,open_interest
//
// where time is RFC3339 or RFC3339Nano. A header row is allowed; empty and
// short rows are skipped. Bars are validated and returned sorted by time.
func ReadCSV(path, freq string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	sawFirst := false

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}

		// allow a single header row
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		bar, ok, err := parseBarRow(row, freq)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := bar.Validate(); err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func parseBarRow(row []string, freq string) (market.Bar, bool, error) {
	// need at least: time,symbol,open,high,low,close
	if len(row) < 6 {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		t2, err2 := time.Parse(time.RFC3339Nano, ts)
		if err2 != nil {
			return market.Bar{}, false, fmt.Errorf("bad time %q: %w", ts, err)
		}
		t = t2
	}

	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return market.Bar{}, false, nil
	}

	var prices [4]float64
	for i, name := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q: %w", name, row[2+i], err)
		}
		prices[i] = v
	}

	var volume, oi int64
	if len(row) > 6 {
		volume, err = strconv.ParseInt(strings.TrimSpace(row[6]), 10, 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad volume %q: %w", row[6], err)
		}
	}
	if len(row) > 7 {
		oi, err = strconv.ParseInt(strings.TrimSpace(row[7]), 10, 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad open interest %q: %w", row[7], err)
		}
	}

	return market.Bar{
		Symbol:       symbol,
		Time:         t,
		Open:         prices[0],
		High:         prices[1],
		Low:          prices[2],
		Close:        prices[3],
		Volume:       volume,
		OpenInterest: oi,
		Freq:         freq,
	}, true, nil
}
