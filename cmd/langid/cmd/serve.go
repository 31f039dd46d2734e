package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/langid/internal/profile"
	"github.com/MeKo-Tech/langid/internal/reload"
	"github.com/MeKo-Tech/langid/internal/server"
	"github.com/MeKo-Tech/langid/internal/version"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for the identification API",
		Long: `Start an HTTP server that identifies languages on request.

The server provides the following endpoints:
  POST /identify     - Identify posted text (JSON or form)
  GET  /ws/identify  - WebSocket stream of identify requests
  GET  /languages    - List loaded profiles
  GET  /health       - Health check endpoint
  GET  /metrics      - Prometheus metrics

Examples:
  langid serve
  langid serve --port 8080 --watch
  langid serve --host 0.0.0.0 --rate-limit-enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}

	f := cmd.Flags()
	f.StringP("host", "H", "", "server host")
	f.IntP("port", "p", 0, "server port")
	f.String("cors-origin", "", "CORS allowed origins")
	f.Int("max-body-kb", 0, "maximum request body size in KB")
	f.Int("timeout", 0, "request timeout in seconds")
	f.Int("shutdown-timeout", 0, "shutdown timeout in seconds")
	f.Bool("watch", false, "reload profiles when the profile directory changes")
	f.Bool("rate-limit-enabled", false, "enable rate limiting")
	f.Int("requests-per-minute", 0, "maximum requests per minute per client")
	f.Int("requests-per-hour", 0, "maximum requests per hour per client")
	f.Int("max-requests-per-day", 0, "maximum requests per day per client")
	f.Int64("max-text-per-day", 0, "maximum bytes of text per day per client")
	bindFlag(f, "host", "server.host")
	bindFlag(f, "port", "server.port")
	bindFlag(f, "cors-origin", "server.cors_origin")
	bindFlag(f, "max-body-kb", "server.max_body_kb")
	bindFlag(f, "timeout", "server.timeout_sec")
	bindFlag(f, "shutdown-timeout", "server.shutdown_timeout")
	bindFlag(f, "watch", "server.watch")
	bindFlag(f, "rate-limit-enabled", "server.rate_limit_enabled")
	bindFlag(f, "requests-per-minute", "server.requests_per_minute")
	bindFlag(f, "requests-per-hour", "server.requests_per_hour")
	bindFlag(f, "max-requests-per-day", "server.max_requests_per_day")
	bindFlag(f, "max-text-per-day", "server.max_text_per_day")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	cfg := a.cfg.Server
	if cfg.Watch && a.cfg.Profiles.CacheFile != "" {
		return errors.New("--watch needs a profile directory, not a cache file")
	}

	holder, err := reload.NewHolder(func() (*profile.Store, error) { return a.loadStore() }, a.logger)
	if err != nil {
		return err
	}

	opts := a.cfg.ToIdentifyOptions()
	opts.HintMultiplier = 0
	srv, err := server.NewServer(holder, server.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		CORSOrigin: cfg.CORSOrigin,
		MaxBodyKB:  int64(cfg.MaxBodyKB),
		TimeoutSec: cfg.TimeoutSec,
		Defaults:   opts,
		RateLimit: server.RateLimitConfig{
			Enabled:           cfg.RateLimitEnabled,
			RequestsPerMinute: cfg.RequestsPerMinute,
			RequestsPerHour:   cfg.RequestsPerHour,
			MaxRequestsPerDay: cfg.MaxRequestsPerDay,
			MaxTextPerDay:     cfg.MaxTextPerDay,
		},
		Version: version.Get().Version,
		Logger:  a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Watch {
		go func() {
			if err := holder.Watch(ctx, a.cfg.Profiles.Dir); err != nil {
				a.logger.Error("profile watcher stopped", "error", err)
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting language identification server",
			"addr", httpServer.Addr, "languages", holder.Current().Len(), "watch", cfg.Watch)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	a.logger.Info("Starting graceful shutdown", "timeout", fmt.Sprintf("%ds", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	a.logger.Info("Graceful shutdown completed")
	return nil
}
