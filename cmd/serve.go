package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/output"
	"github.com/chrisdamba/grocerplan/internal/repositories"
	"github.com/chrisdamba/grocerplan/internal/server/handlers"
	"github.com/chrisdamba/grocerplan/internal/server/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the planner over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := newPlanner(ctx, cfg, baseLogger)
		if err != nil {
			return err
		}
		var cleanup closer
		defer cleanup.close()

		// plans are returned in the response, so console output is skipped
		var writer output.PlanWriter
		var store repositories.PlanRepository
		if cfg.OutputFormat == "console" && !cfg.KafkaEnabled {
			store, err = openPlanStore(ctx, cfg, &cleanup)
			if store != nil {
				writer = output.NewRepositoryOutput(store)
			}
		} else {
			writer, store, err = openWriter(ctx, cfg, baseLogger, &cleanup)
		}
		if err != nil {
			return err
		}

		handler := handlers.NewPlanHandler(p, writer, store, baseLogger.Named("handlers.plans"))
		engine := router.New(handler, baseLogger.Named("router"))

		srv := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.SolveTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			baseLogger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			baseLogger.Error("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides server.port)")
	bindFlag(serveCmd, "server.port", "port")
	rootCmd.AddCommand(serveCmd)
}
