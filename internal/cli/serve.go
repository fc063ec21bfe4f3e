package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/scorepad/internal/api"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("host") {
				host = cfg.Host
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Port
			}
			return runServer(cmd.Context(), host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (env: SCOREPAD_HOST)")
	cmd.Flags().IntVar(&port, "port", 8080, "Listen port (env: SCOREPAD_PORT)")
	return cmd
}

// runServer serves the API until SIGINT or SIGTERM, running the backup
// worker alongside
func runServer(parent context.Context, host string, port int) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.Logger
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Repository:     app.Repository,
		PlayController: app.Play,
		Transfer:       app.Transfer,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = host
	serverConfig.Port = port
	server := api.NewServer(router, serverConfig, logger)

	workerDone := app.Backup.Start(ctx)

	err := server.Run(ctx)
	stop()
	<-workerDone
	if err != nil {
		return err
	}

	// Flush any changes since the last tick before exiting
	if _, err := app.Backup.Tick(context.Background()); err != nil {
		logger.Warn("final backup failed", slog.String("error", err.Error()))
	}
	return nil
}
