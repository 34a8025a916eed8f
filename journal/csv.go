package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes fills and snapshots to a pair of CSV files. Records are
// flushed as they arrive so a partial run still leaves usable output.
type CSV struct {
	fillsFile *os.File
	snapsFile *os.File
	fills     *csv.Writer
	snaps     *csv.Writer
}

var fillHeader = []string{
	"trade_id", "symbol", "trade_type", "status", "quantity", "price",
	"commission", "slippage", "realized_pnl", "time", "fill_time", "reason",
}

var snapshotHeader = []string{
	"time", "realized_pnl", "unrealized_pnl", "market_value", "commission",
}

func NewCSV(fillsPath, snapshotsPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(snapshotsPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	j := &CSV{
		fillsFile: ff,
		snapsFile: sf,
		fills:     csv.NewWriter(ff),
		snaps:     csv.NewWriter(sf),
	}
	if err := j.fills.Write(fillHeader); err != nil {
		j.Close()
		return nil, err
	}
	if err := j.snaps.Write(snapshotHeader); err != nil {
		j.Close()
		return nil, err
	}
	j.fills.Flush()
	j.snaps.Flush()
	return j, nil
}

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (j *CSV) RecordFill(r FillRecord) error {
	fillTime := ""
	if !r.FillTime.IsZero() {
		fillTime = r.FillTime.Format(time.RFC3339Nano)
	}
	err := j.fills.Write([]string{
		r.TradeID, r.Symbol, r.TradeType, r.Status,
		f(r.Quantity), f(r.Price), f(r.Commission), f(r.Slippage), f(r.RealizedPnL),
		r.Time.Format(time.RFC3339Nano), fillTime, r.Reason,
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordSnapshot(s PortfolioSnapshot) error {
	err := j.snaps.Write([]string{
		s.Time.Format(time.RFC3339Nano),
		f(s.RealizedPnL), f(s.UnrealizedPnL), f(s.MarketValue), f(s.Commission),
	})
	if err != nil {
		return err
	}
	j.snaps.Flush()
	return j.snaps.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	j.snaps.Flush()
	err := j.fillsFile.Close()
	if e := j.snapsFile.Close(); err == nil {
		err = e
	}
	return err
}
