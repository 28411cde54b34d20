package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/slamweb/slam/internal/adapters/http/api"
	"github.com/slamweb/slam/internal/adapters/http/swagger"
	"github.com/slamweb/slam/internal/adapters/http/view"
	"github.com/slamweb/slam/internal/adapters/remote/sportapi"
	app "github.com/slamweb/slam/internal/app"
	"github.com/slamweb/slam/internal/config"
	"github.com/slamweb/slam/internal/i18n"
	"github.com/slamweb/slam/pkg/logger"
	"github.com/slamweb/slam/pkg/metrics"
)

// HTTP server timeout constants. Writes are bounded by the slowest backend
// call a handler relays, the vendor import.
const (
	readTimeout       = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeSlack        = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
	corsMaxAge        = 300
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is configured from cfg, so it is not available yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := newService(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to create service", logger.Error(err))
		os.Exit(1)
	}
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	// Backend failures reach the shell as toasts; the local process logs them.
	unsubscribe := svc.Notifier().Subscribe(func(msg string) {
		log.Warn(ctx, "user notification", logger.String("message", msg))
	})
	defer unsubscribe()

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())
	go startServiceMetricsUpdater(ctx, svc, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.ImportTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("api_base_url", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newService builds the backend client and the service from cfg.
func newService(cfg *config.Config, log logger.Logger) (*app.Service, error) {
	client, err := sportapi.New(cfg.APIBaseURL,
		sportapi.WithTimeout(cfg.APITimeout),
		sportapi.WithAITimeout(cfg.AITimeout),
		sportapi.WithImportTimeout(cfg.ImportTimeout),
		sportapi.WithAvatarTimeout(cfg.AvatarTimeout),
		sportapi.WithMaxRetries(cfg.APIMaxRetries),
		sportapi.WithLogger(log.Named("sportapi")),
	)
	if err != nil {
		return nil, err
	}
	return app.New(client,
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.RecognitionWorkers),
		app.WithQueueSize(cfg.RecognitionQueueSize),
		app.WithDedupeSize(cfg.RecognitionDedupeSize),
		app.WithDraftCapacity(cfg.DraftCapacity),
		app.WithMaxPageSize(cfg.MaxPageSize),
		app.WithAITimeout(cfg.AITimeout),
		app.WithDefaultLang(i18n.Lang(cfg.DefaultLang)),
	), nil
}

// newRouter mounts the JSON API, the HTML fragments and the API docs.
func newRouter(cfg *config.Config, svc *app.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}))

	lang := i18n.Lang(cfg.DefaultLang)
	api.NewServer(svc, svc,
		api.WithDefaultLang(lang),
		api.WithExtraPerRow(cfg.ExtraPerRow),
	).Register(r)
	view.NewHandler(svc, lang, cfg.ExtraPerRow).Register(r)
	swagger.Register(r)
	return r
}

// startSystemMetricsUpdater refreshes process metrics every interval until ctx ends.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
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

// startServiceMetricsUpdater refreshes service gauges every interval until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
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

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics refreshes the gauges GetStats does not touch while stopped.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if open, ok := stats["openDrafts"].(int); ok {
		metrics.UpdateDraftsOpen(open)
	}
	if workers, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workers)
	}
}
