package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/futures/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journal data",
	Long: `Query and display fill records from a SQLite journal.

Subcommands:
  fill   - Get details of a specific fill by trade ID
  symbol - List fills for a symbol
  day    - List fills on a specific day

Examples:
  futures journal fill <trade-id>
  futures journal symbol IF2306
  futures journal day 2023-06-01`,
}

var journalFillCmd = &cobra.Command{
	Use:   "fill <trade-id>",
	Short: "Get details of a specific fill",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalFill,
}

var journalSymbolCmd = &cobra.Command{
	Use:   "symbol <symbol>",
	Short: "List fills for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSymbol,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List fills on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalFillCmd)
	journalCmd.AddCommand(journalSymbolCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./futures.sqlite", "path to SQLite journal DB")
}

func runJournalFill(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetFill(args[0])
	if err != nil {
		return fmt.Errorf("get fill: %w", err)
	}

	printFill(rec)
	return nil
}

func runJournalSymbol(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListFillsBySymbol(args[0])
	if err != nil {
		return fmt.Errorf("list fills: %w", err)
	}

	printFillList(recs)
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	day, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		return fmt.Errorf("parse day: %w", err)
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListFillsBetween(day, day.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("list fills: %w", err)
	}

	printFillList(recs)
	return nil
}

func printFill(r journal.FillRecord) {
	fmt.Printf("Trade:       %s\n", r.TradeID)
	fmt.Printf("Symbol:      %s\n", r.Symbol)
	fmt.Printf("Type:        %s\n", r.TradeType)
	fmt.Printf("Status:      %s\n", r.Status)
	fmt.Printf("Quantity:    %.2f\n", r.Quantity)
	fmt.Printf("Price:       %.2f\n", r.Price)
	fmt.Printf("Commission:  %.2f\n", r.Commission)
	fmt.Printf("Realized:    %.2f\n", r.RealizedPnL)
	fmt.Printf("Time:        %s\n", r.Time.Format(time.RFC3339))
	if !r.FillTime.IsZero() {
		fmt.Printf("Filled:      %s\n", r.FillTime.Format(time.RFC3339))
	}
	if r.Reason != "" {
		fmt.Printf("Reason:      %s\n", r.Reason)
	}
}

func printFillList(recs []journal.FillRecord) {
	if len(recs) == 0 {
		fmt.Println("No fills found.")
		return
	}
	for _, r := range recs {
		fmt.Printf("%s  %-10s %-11s %-8s qty %8.2f @ %10.2f  pnl %10.2f\n",
			r.Time.Format("2006-01-02 15:04:05"), r.Symbol, r.TradeType, r.Status,
			r.Quantity, r.Price, r.RealizedPnL)
	}
	fmt.Printf("\n%d fill(s)\n", len(recs))
}
