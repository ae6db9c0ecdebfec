package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/agro-ecosim/internal/chart"
	"github.com/talgya/agro-ecosim/internal/ecosystem"
	"github.com/talgya/agro-ecosim/internal/evaluation"
	"github.com/talgya/agro-ecosim/internal/persistence"
	"github.com/talgya/agro-ecosim/internal/report"
	"github.com/talgya/agro-ecosim/internal/runner"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

type runFlags struct {
	scenariosFile string
	only          []string
	years         int
	concurrency   int
	dbPath        string
	outDir        string
	noCharts      bool
	noSave        bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate scenarios and compare them",
		Long: `Runs every selected scenario for the given number of years, prints a
progress line per scenario and the summary tables, stores the runs in the
database and writes comparison charts as PNG files.

Example:
  agrosim run --years 30 --only scenario1,scenario5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runScenarios(ctx, cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.scenariosFile, "scenarios", "", "YAML scenario file (default: built-in scenarios)")
	cmd.Flags().StringSliceVar(&f.only, "only", nil, "comma-separated scenario ids to run")
	cmd.Flags().IntVar(&f.years, "years", defaultYears(), "years to simulate per scenario (env AGROSIM_YEARS)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "scenarios simulated at once (default: GOMAXPROCS)")
	cmd.Flags().StringVar(&f.dbPath, "db", envOrDefault("AGROSIM_DB", defaultDBPath), "SQLite database path (env AGROSIM_DB)")
	cmd.Flags().StringVar(&f.outDir, "out", envOrDefault("AGROSIM_OUT", defaultOutDir), "chart output directory (env AGROSIM_OUT)")
	cmd.Flags().BoolVar(&f.noCharts, "no-charts", false, "skip chart rendering")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not store runs in the database")
	return cmd
}

// loadScenarios resolves the scenarios to run: a file's scenarios when one is
// given, otherwise the built-ins looked up by id.
func loadScenarios(file string, only []string) ([]ecosystem.Scenario, error) {
	if file != "" {
		all, err := scenario.LoadFile(file)
		if err != nil {
			return nil, err
		}
		return scenario.Select(all, only)
	}
	if len(only) == 0 {
		return scenario.Builtin(), nil
	}

	scs := make([]ecosystem.Scenario, 0, len(only))
	for _, id := range only {
		sc, err := scenario.Lookup(id)
		if err != nil {
			return nil, err
		}
		scs = append(scs, sc)
	}
	return scs, nil
}

func runScenarios(ctx context.Context, cmd *cobra.Command, f runFlags) error {
	if f.years <= 0 {
		return fmt.Errorf("--years must be positive, got %d", f.years)
	}
	scs, err := loadScenarios(f.scenariosFile, f.only)
	if err != nil {
		return err
	}
	if len(scs) == 0 {
		return fmt.Errorf("no scenarios selected")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Simulating %d scenarios for %d years...\n\n", len(scs), f.years)

	results, err := runner.Run(ctx, scs, runner.Options{Years: f.years, Concurrency: f.concurrency})
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	for _, r := range results {
		report.Progress(out, r)
	}
	fmt.Fprintln(out)
	report.Summary(out, results)
	fmt.Fprintln(out)
	report.Scores(out, results)

	if !f.noSave {
		if err := saveResults(f.dbPath, results); err != nil {
			return err
		}
	}

	if !f.noCharts {
		runs := make([]chart.Run, len(results))
		evals := make([]evaluation.Result, len(results))
		for i, r := range results {
			runs[i] = chart.Run{Scenario: r.Scenario, History: r.History}
			evals[i] = r.Evaluation
		}
		files, err := chart.WriteAll(f.outDir, runs, evals)
		if err != nil {
			return fmt.Errorf("write charts: %w", err)
		}
		for _, file := range files {
			fmt.Fprintf(out, "Chart written: %s\n", file)
		}
	}
	return nil
}

func saveResults(dbPath string, results []runner.Result) error {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := persistence.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	batchID, ids, err := db.SaveBatch(results)
	if err != nil {
		return fmt.Errorf("save runs: %w", err)
	}
	slog.Info("runs saved", "path", dbPath, "batch", batchID, "runs", len(ids))
	return nil
}
