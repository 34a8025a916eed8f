package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	var fillTime any
	if !r.FillTime.IsZero() {
		fillTime = r.FillTime
	}
	_, err := j.db.Exec(`
		INSERT INTO fills
		(trade_id, symbol, trade_type, status, quantity, price, commission, slippage, realized_pnl, time, fill_time, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradeID, r.Symbol, r.TradeType, r.Status, r.Quantity, r.Price,
		r.Commission, r.Slippage, r.RealizedPnL, r.Time, fillTime, r.Reason,
	)
	return err
}

func (j *SQLite) RecordSnapshot(s PortfolioSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(time, realized_pnl, unrealized_pnl, market_value, commission)
		VALUES (?, ?, ?, ?, ?)`,
		s.Time, s.RealizedPnL, s.UnrealizedPnL, s.MarketValue, s.Commission,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// GetFill returns a single fill record by trade ID.
func (j *SQLite) GetFill(tradeID string) (FillRecord, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, symbol, trade_type, status, quantity, price, commission, slippage, realized_pnl, time, fill_time, reason
		FROM fills
		WHERE trade_id = ?`, tradeID)
	return scanFill(row)
}

// ListFillsBySymbol returns all fills for symbol ordered by time.
func (j *SQLite) ListFillsBySymbol(symbol string) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, trade_type, status, quantity, price, commission, slippage, realized_pnl, time, fill_time, reason
		FROM fills
		WHERE symbol = ?
		ORDER BY time ASC`, symbol)
	if err != nil {
		return nil, err
	}
	return collectFills(rows)
}

// ListFillsBetween returns fills whose time is within [start, end).
func (j *SQLite) ListFillsBetween(start, end time.Time) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, trade_type, status, quantity, price, commission, slippage, realized_pnl, time, fill_time, reason
		FROM fills
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	return collectFills(rows)
}

// RunSummary aggregates the recorded fills: counts per status plus commission
// and realized PnL over filled trades.
type RunSummary struct {
	TotalFills       int
	Filled           int
	Pending          int
	Rejected         int
	TotalCommission  float64
	TotalRealizedPnL float64
}

// Summarize computes the run summary from the fills table.
func (j *SQLite) Summarize() (RunSummary, error) {
	row := j.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'filled'), 0),
			COALESCE(SUM(status = 'pending'), 0),
			COALESCE(SUM(status = 'rejected'), 0),
			COALESCE(SUM(CASE WHEN status = 'filled' THEN commission END), 0),
			COALESCE(SUM(CASE WHEN status = 'filled' THEN realized_pnl END), 0)
		FROM fills`)

	var s RunSummary
	err := row.Scan(&s.TotalFills, &s.Filled, &s.Pending, &s.Rejected,
		&s.TotalCommission, &s.TotalRealizedPnL)
	if err != nil {
		return RunSummary{}, err
	}
	return s, nil
}

// ListSnapshotsBetween returns the equity curve within [start, end).
func (j *SQLite) ListSnapshotsBetween(start, end time.Time) ([]PortfolioSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, realized_pnl, unrealized_pnl, market_value, commission
		FROM snapshots
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PortfolioSnapshot
	for rows.Next() {
		var s PortfolioSnapshot
		if err := rows.Scan(&s.Time, &s.RealizedPnL, &s.UnrealizedPnL, &s.MarketValue, &s.Commission); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
