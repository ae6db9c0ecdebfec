package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/agro-ecosim/internal/persistence"
	"github.com/talgya/agro-ecosim/internal/report"
	"github.com/talgya/agro-ecosim/internal/scenario"
)

func newScenariosCmd() *cobra.Command {
	var (
		file   string
		asYAML bool
	)
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List scenarios",
		Long: `Lists the built-in scenarios, or those of a scenario file.
With --yaml the list is printed as a scenario file that can be edited and
passed back to "agrosim run --scenarios".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scs, err := loadScenarios(file, nil)
			if err != nil {
				return err
			}
			if asYAML {
				return scenario.Encode(cmd.OutOrStdout(), scs)
			}
			report.Scenarios(cmd.OutOrStdout(), scs)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "scenarios", "", "YAML scenario file (default: built-in scenarios)")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as a YAML scenario file")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			report.Runs(cmd.OutOrStdout(), runs, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOrDefault("AGROSIM_DB", defaultDBPath), "SQLite database path (env AGROSIM_DB)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}
