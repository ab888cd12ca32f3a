package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rgehrsitz/encounters/internal/logging"
	"github.com/rgehrsitz/encounters/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the encounters HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			addr := a.cfg.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			// The server logs one JSON line per request.
			logger, err := logging.New(a.cfg.LogLevel, logging.EncodingJSON)
			if err != nil {
				return err
			}
			defer logger.Sync()

			srv := server.New(a.svc, logger, time.Duration(a.cfg.FetchTimeout)*time.Second*2)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(addr) }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.Info("shutting down", zap.String("signal", sig.String()))
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().String("addr", "", "Listen address (env ENCOUNTERS_ADDR, default :8080)")
	return cmd
}
