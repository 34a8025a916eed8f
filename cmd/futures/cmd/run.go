package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/futures/backtest"
	"github.com/rustyeddy/futures/config"
	"github.com/rustyeddy/futures/data"
	"github.com/rustyeddy/futures/engine"
	"github.com/rustyeddy/futures/internal/logx"
	"github.com/rustyeddy/futures/journal"
	"github.com/rustyeddy/futures/sim"
	"github.com/rustyeddy/futures/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Replay a bar dataset through a strategy and account the result.

The config file specifies the dataset, strategy parameters, execution costs
and journal output.

Example:
  futures run --config backtest.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runCloseEnd   bool
	runFrom       string
	runTo         string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVar(&runCloseEnd, "close-end", true, "close open positions at the end of the dataset")
	runCmd.Flags().StringVar(&runFrom, "from", "", "replay start time (RFC3339), default dataset start")
	runCmd.Flags().StringVar(&runTo, "to", "", "replay end time (RFC3339, exclusive), default dataset end")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.Logging.Level
	if rootCmd.PersistentFlags().Changed("log-level") {
		level = logLevel
	}
	log := logx.Console(level)

	from, to, err := parseRange(runFrom, runTo)
	if err != nil {
		return err
	}

	store := data.NewStore()
	if err := store.LoadCSV(cfg.Data.Path, cfg.Data.Freq); err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	feed, err := backtest.SourceFeed(store, cfg.Data.Symbol, from, to, cfg.Data.Freq)
	if err != nil {
		return fmt.Errorf("build feed: %w", err)
	}

	strat, err := strategy.ByName(cfg.Strategy.Name, strategy.Params{
		Symbol:   cfg.Data.Symbol,
		Quantity: cfg.Strategy.Quantity,
		Fast:     cfg.Strategy.Fast,
		Slow:     cfg.Strategy.Slow,
	})
	if err != nil {
		return fmt.Errorf("build strategy: %w", err)
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jnl.Close()

	positions := engine.NewRegistry()
	ledger := engine.NewLedger()
	exec, err := sim.NewExecutor(sim.Config{
		CommissionRate: cfg.Execution.CommissionRate,
		Slippage:       cfg.Execution.Slippage,
	}, positions, ledger)
	if err != nil {
		return err
	}

	runner := &backtest.Runner{
		Feed:      feed,
		Strategy:  strat,
		Executor:  exec,
		Positions: positions,
		Ledger:    ledger,
		Journal:   jnl,
		Log:       log,
		Options:   backtest.Options{CloseEnd: runCloseEnd},
	}

	res, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	backtest.PrintResult(os.Stdout, res)
	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.FillsFile, cfg.SnapshotsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = time.Parse(time.RFC3339, from); err != nil {
			return f, t, fmt.Errorf("parse --from: %w", err)
		}
	}
	if to != "" {
		if t, err = time.Parse(time.RFC3339, to); err != nil {
			return f, t, fmt.Errorf("parse --to: %w", err)
		}
	}
	return f, t, nil
}
