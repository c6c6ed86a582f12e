// Package scheduler implements the scheduler command, the long-running
// daemon that triggers ingestion and maintenance on cron schedules and
// serves Prometheus metrics.
package scheduler

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	cmdcommon "github.com/nordbil/carcatalog/cmd/common"
	"github.com/nordbil/carcatalog/internal/job"
)

const metricsShutdownTimeout = 5 * time.Second

// Command returns the scheduler command for use in the root command.
func Command() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the scheduling daemon",
		Long: `Run the scheduling daemon: ingestion cycles and catalog maintenance
fire on their configured cron schedules until interrupted. Overlapping
triggers of the same job are skipped, never queued.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cmdcommon.NewApp(cfgPath)
			if err != nil {
				return err
			}
			defer app.Close() //nolint:errcheck // connection teardown on exit

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := job.NewScheduler(app.Orchestrator, app.Config.Schedules, app.Logger)
			if startErr := sched.Start(ctx); startErr != nil {
				return startErr
			}

			metricsSrv := serveMetrics(app)

			<-ctx.Done()
			app.Logger.Info("Shutdown signal received")

			sched.Stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if shutdownErr := metricsSrv.Shutdown(shutdownCtx); shutdownErr != nil {
				app.Logger.Warn("Metrics server shutdown failed", "error", shutdownErr)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "config file path")

	return cmd
}

// serveMetrics exposes the Prometheus registry on the configured address.
func serveMetrics(app *cmdcommon.App) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              app.Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.Logger.Info("Serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Metrics server failed", "error", err)
		}
	}()

	return srv
}
