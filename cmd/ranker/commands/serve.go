package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yarin-claude-code/stocks/internal/api"
	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/internal/feed"
	"github.com/yarin-claude-code/stocks/internal/market"
	"github.com/yarin-claude-code/stocks/internal/scheduler"
	"github.com/yarin-claude-code/stocks/internal/scheduler/jobs"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
	"github.com/yarin-claude-code/stocks/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Starts the dashboard HTTP server.

This command:
- serves the rankings dashboard and the custom domain pages
- polls the ranking API while a dashboard is visible
- evicts idle view sessions

Endpoints:
  GET  /dashboard            - Rankings dashboard
  GET  /domains/custom       - Custom domain management
  GET  /history/{ticker}     - Score history chart
  GET  /api/view             - Resolved view-state (JSON)
  GET  /health               - Health check
  GET  /metrics              - Prometheus metrics

Example:
  go run ./cmd/ranker serve
  go run ./cmd/ranker serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Fprintln(cmd.OutOrStdout(), "=== Smart Stock Ranker ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port":    cfg.Port,
		"env":     cfg.Env,
		"api_url": cfg.APIBaseURL(),
	}).Info("Initializing dashboard server")

	// 3. Metrics
	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	// 4. Redis (memory fallback when disabled)
	rc, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()
	cache := redis.NewCache(rc, "ranker")
	limiter := redis.NewRateLimiter(rc, "ranker")

	// 5. Ranking API client; credentials come from each request
	client := ranker.NewFromConfig(cfg, auth.Context{}, log, rec)

	// 6. Shared feed and view sessions
	rankings := feed.New(client, cache, log, rec)
	sessions := viewstate.NewManager(client, viewstate.Options{
		TTL:          cfg.Dashboard.SessionTTL,
		WriteTimeout: cfg.Dashboard.PreferenceWriteTimeout,
	}, log, rec)

	// 7. Scheduler; a failed poll waits for the next tick
	sched := scheduler.New(log, scheduler.WithRetries(0, 0))
	for _, job := range []scheduler.Job{
		jobs.NewFeedRefreshJob(rankings, sessions, cfg.Dashboard.PollInterval, log, rec),
		jobs.NewSessionGCJob(sessions, log),
		jobs.NewCacheCleanupJob(cache, log),
	} {
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}

	// 8. Router and server
	handler, err := api.NewHandler(api.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  rec,
		Client:   client,
		Feed:     rankings,
		Sessions: sessions,
		Cache:    cache,
		Limiter:  limiter,
		Clock:    market.NewClock(cfg.Dashboard.MarketHolidays),
		Jobs:     sched,
	})
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}
	server := api.New(cfg, log, handler)

	sched.Start()

	// 9. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("Dashboard server started successfully")
	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			sched.Stop()
			return err
		}
	}

	log.Info("Shutting down server...")
	sched.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	sessions.Wait()

	log.Info("Server stopped")
	return nil
}
