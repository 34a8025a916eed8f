package journal

import "database/sql"

type scanner interface {
	Scan(dest ...any) error
}

func scanFill(row scanner) (FillRecord, error) {
	var r FillRecord
	var fillTime sql.NullTime
	err := row.Scan(
		&r.TradeID, &r.Symbol, &r.TradeType, &r.Status, &r.Quantity, &r.Price,
		&r.Commission, &r.Slippage, &r.RealizedPnL, &r.Time, &fillTime, &r.Reason,
	)
	if err != nil {
		return FillRecord{}, err
	}
	if fillTime.Valid {
		r.FillTime = fillTime.Time
	}
	return r, nil
}

func collectFills(rows *sql.Rows) ([]FillRecord, error) {
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		r, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
