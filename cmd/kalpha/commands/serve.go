package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/kalpha/internal/adapters/http/api"
	"github.com/okian/kalpha/internal/adapters/http/swagger"
	service "github.com/okian/kalpha/internal/app"
	"github.com/okian/kalpha/internal/config"
	"github.com/okian/kalpha/internal/domain/scoring"
	"github.com/okian/kalpha/pkg/logger"
	"github.com/okian/kalpha/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd(ro *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alpha HTTP API",
		Long: `Serve the alpha HTTP API with synchronous computation, queued jobs,
Prometheus metrics at /metrics and API docs at /api-docs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				ro.cfg.Addr = addr
			}
			return runServe(cmd.Context(), ro.cfg, ro.log, nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// runServe serves until ctx is cancelled. ready, when set, receives the bound
// address once the listener is open.
func runServe(ctx context.Context, cfg *config.Config, log logger.Logger, ready func(addr string)) error {
	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithJobRetention(cfg.JobRetention),
		service.WithScoring(
			scoring.WithDefaultMetric(cfg.Metric),
			scoring.WithMissing(cfg.Missing...),
			scoring.WithExtras(),
		),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, api.WithMaxBodyBytes(cfg.MaxBodyBytes)).Register(ctx, mux)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics. GetStats refreshes the
// stored job gauge itself.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateQueueCapacity(stats.QueueCapacity)
	metrics.UpdateWorkerCount(stats.WorkerCount)
}
