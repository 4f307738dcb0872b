// Package cli implements plannerctl, which runs the planning engine over a
// TOML dataset without a database.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand
type options struct {
	dataPath string
	now      string
	verbose  bool
}

// NewRootCommand builds the plannerctl command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Offline cash flow planning",
		Long:          "Expand, aggregate and forecast a planning dataset, schedule installments and split surpluses.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", "planner.toml", "Dataset file")
	root.PersistentFlags().StringVar(&opts.now, "now", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(
		newExpandCommand(opts),
		newAggregateCommand(opts),
		newKPIsCommand(opts),
		newForecastCommand(opts),
		newCompareCommand(opts),
		newInstallmentsCommand(opts),
		newAllocateCommand(opts),
	)
	return root
}

// Execute is the main entry point called from main.go
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session is what every command needs once flags are resolved
type session struct {
	ds     *Dataset
	now    time.Time
	n      engine.Normalizer
	logger zerolog.Logger
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	logger := zerolog.Nop()
	if o.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	}

	now := time.Now().UTC()
	if o.now != "" {
		parsed, err := util.ParseDate(o.now)
		if err != nil {
			return nil, fmt.Errorf("--now: %w", err)
		}
		now = parsed
	}

	ds, err := LoadDataset(o.dataPath)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("data", o.dataPath).
		Int("planned_incomes", len(ds.PlannedIncomes)).
		Int("planned_expenses", len(ds.PlannedExpenses)).
		Int("goals", len(ds.Goals)).
		Msg("Dataset loaded")

	return &session{
		ds:     ds,
		now:    now,
		n:      engine.NewNormalizer(ds.ReportingCurrency, ds.Rates),
		logger: logger,
	}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
