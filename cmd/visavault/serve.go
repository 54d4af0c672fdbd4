package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stuverse/visavault/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Example: `  visavault serve
  visavault serve --config /etc/visavault/visavault.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	printInfo("Serving on %s", cfg.Server.Addr)
	return application.Run(ctx)
}
