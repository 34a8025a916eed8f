package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/futures/engine"
)

// Result is the aggregate outcome of one run: the ledger summary plus the
// end-of-run portfolio state.
type Result struct {
	Start time.Time
	End   time.Time
	Bars  int

	Summary engine.Summary

	RealizedPnL   float64
	UnrealizedPnL float64
	MarketValue   float64
	NetPnL        float64 // realized + unrealized - commission

	Open []engine.PositionSnapshot
}

func (r *Runner) result(start, end time.Time, bars int) Result {
	summary := r.Ledger.Summarize()
	realized := r.Positions.TotalRealizedPnL()
	unrealized := r.Positions.TotalUnrealizedPnL()

	return Result{
		Start:         start,
		End:           end,
		Bars:          bars,
		Summary:       summary,
		RealizedPnL:   realized,
		UnrealizedPnL: unrealized,
		MarketValue:   r.Positions.TotalMarketValue(),
		NetPnL:        realized + unrealized - summary.TotalCommission,
		Open:          r.Positions.Active(),
	}
}

func PrintResult(w io.Writer, res Result) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Start:          %s\n", res.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:            %s\n", res.End.Format(time.RFC3339))
	fmt.Fprintf(w, "Bars:           %d\n", res.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trades")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Total:          %d\n", res.Summary.TotalTrades)
	fmt.Fprintf(w, "Filled:         %d\n", res.Summary.FilledTrades)
	fmt.Fprintf(w, "Pending:        %d\n", res.Summary.PendingTrades)
	fmt.Fprintf(w, "Buys:           %d\n", res.Summary.BuyTrades)
	fmt.Fprintf(w, "Sells:          %d\n", res.Summary.SellTrades)
	fmt.Fprintf(w, "Closes:         %d\n", res.Summary.CloseLongTrades+res.Summary.CloseShortTrades)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Realized PnL:   %.2f\n", res.RealizedPnL)
	fmt.Fprintf(w, "Unrealized PnL: %.2f\n", res.UnrealizedPnL)
	fmt.Fprintf(w, "Commission:     %.2f\n", res.Summary.TotalCommission)
	fmt.Fprintf(w, "Net PnL:        %.2f\n", res.NetPnL)

	if len(res.Open) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Positions")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, p := range res.Open {
			fmt.Fprintf(w, "%-10s %-5s qty %.2f @ %.2f (unrealized %.2f)\n",
				p.Symbol, p.Side, p.Quantity, p.AvgPrice, p.UnrealizedPnL)
		}
	}

	fmt.Fprintln(w)
}
