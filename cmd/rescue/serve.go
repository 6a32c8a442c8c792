package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rescue/internal/api"
	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/hermes"
	"github.com/MikeSquared-Agency/rescue/internal/processor"
)

func newServeCommand(ctx *cliContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the rescue.script.fetched consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger
			prof, err := ctx.profile()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			docs, closeStore, err := openStore(runCtx, ctx.cfg, ctx.cfg.SQLitePath, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			bus, err := connectBus(runCtx, ctx.cfg, logger)
			if err != nil {
				return fmt.Errorf("connect NATS: %w", err)
			}

			var pub processor.Publisher
			if bus != nil {
				defer bus.Close()
				pub = bus
			}
			proc := processor.New(docs, pub, prof, logger)
			if bus != nil {
				if err := bus.Subscribe(hermes.SubjectScriptFetched, proc.HandleScriptFetched); err != nil {
					return err
				}
			} else {
				logger.Warn("NATS not configured, only the HTTP API is served")
			}

			srv := api.NewServer(port, ctx.cfg.APIToken, docs, prof, proc)
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			logger.Info("rescue ready", "port", port, "profile", prof.Name, "parser_version", document.ParserVersion)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("HTTP server: %w", err)
				}
			case <-runCtx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("HTTP shutdown", "error", err)
			}
			logger.Info("rescue stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", ctx.cfg.Port, "HTTP listen port")
	return cmd
}
