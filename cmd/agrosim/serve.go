package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/agro-ecosim/internal/api"
	"github.com/talgya/agro-ecosim/internal/persistence"
)

func newServeCmd() *cobra.Command {
	var (
		dbPath string
		port   int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored runs over HTTP",
		Long: `Starts the JSON API over the run database. GET endpoints are public.
Deleting runs and saving on-demand simulations require the bearer token in
AGROSIM_ADMIN_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("database opened", "path", dbPath)

			adminKey := os.Getenv("AGROSIM_ADMIN_KEY")
			if adminKey == "" {
				slog.Warn("AGROSIM_ADMIN_KEY not set, admin endpoints will be disabled")
			}

			srv := (&api.Server{DB: db, Port: port, AdminKey: adminKey}).Start()
			fmt.Fprintf(cmd.OutOrStdout(), "API: http://localhost:%d/api/v1/status\n", port)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				slog.Info("received signal, shutting down", "signal", sig)
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOrDefault("AGROSIM_DB", defaultDBPath), "SQLite database path (env AGROSIM_DB)")
	cmd.Flags().IntVar(&port, "port", envIntOrDefault("AGROSIM_PORT", defaultPort), "HTTP port (env AGROSIM_PORT)")
	return cmd
}
