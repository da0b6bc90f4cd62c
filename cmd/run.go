package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/api"
)

// newRunCmd starts the scheduled service: cron-triggered posting runs
// plus the health and metrics listener.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run as a scheduled posting service",
		Long: `Starts the cron scheduler and the HTTP health/metrics listener and
blocks until interrupted. If a run is still in progress when the next
trigger fires, the new trigger is skipped rather than overlapped.`,
		RunE: runService,
	}
}

func runService(cmd *cobra.Command, _ []string) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := a.Logger

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A single in-flight run at a time; slow crawls must not pile up.
	var running atomic.Bool
	scheduler := cron.New()
	_, err = scheduler.AddFunc(a.Cfg.Schedule.Cron, func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous run still in progress, skipping trigger")
			return
		}
		defer running.Store(false)
		// Run logs its own failures; a bad run must not stop the schedule.
		_ = a.Pipeline.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", a.Cfg.Schedule.Cron, err)
	}
	scheduler.Start()
	logger.Info("scheduler started", zap.String("cron", a.Cfg.Schedule.Cron))

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler: api.NewServer(api.Deps{
			Status:     a.Status,
			Sources:    a.Cfg.Sources.Pool,
			Schedule:   a.Cfg.Schedule.Cron,
			CacheLen:   a.Cache.Len,
			LedgerSize: a.Ledger.Size,
		}, logger).Handler(),
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http listener started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		return fmt.Errorf("http listener: %w", err)
	}

	cronCtx := scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
	// Let an in-flight posting run finish before exiting.
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
	}
	return nil
}
