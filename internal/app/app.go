package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cohortcli/internal/cohort"
	"cohortcli/internal/config"
	"cohortcli/internal/emit"
	"cohortcli/internal/errors"
	"cohortcli/internal/exporter"
	"cohortcli/internal/fetch"
	"cohortcli/internal/infrastructure"
	customMiddleware "cohortcli/internal/middleware"
	"cohortcli/internal/services"
	handlers "cohortcli/internal/transport/http"
)

const (
	Version = "1.2.0"
	AppName = "Cohort Reports"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	ReportService *services.ReportService
	Metrics       *infrastructure.Metrics
	Logger        *slog.Logger

	registry *prometheus.Registry
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig wires the application from an already loaded
// configuration. Used by tests and the CLI.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the report pipeline
func (a *Application) initializeServices() {
	a.Metrics = infrastructure.NewMetrics(a.registry)

	uploads := fetch.NewClient(a.Config.Uploads, a.Logger)
	engine := cohort.NewEngine(a.Logger)
	reportExporter := exporter.NewReportExporter(a.Config.Reports.OutputDir, a.Logger)
	webhook := emit.NewWebhook(a.Config.Webhook, a.Logger)

	a.ReportService = services.NewReportService(services.Deps{
		Uploads:        uploads,
		Engine:         engine,
		Exporter:       reportExporter,
		Webhook:        webhook,
		OutputDir:      a.Config.Reports.OutputDir,
		KeepLocal:      a.Config.Reports.KeepLocal,
		DeliverEnabled: a.Config.Webhook.Enabled && a.Config.Webhook.URL != "",
		Metrics:        a.Metrics,
		Logger:         a.Logger,
	})
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Prometheus metrics endpoint outside the middleware group
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		errorHandler := errors.NewErrorHandler(a.Logger, false)
		validation := customMiddleware.NewRequestValidator(a.Logger, errorHandler)

		healthHandler := handlers.NewHealthHandler(Version)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)

		// Report generation can take a while on large uploads, so it
		// gets the long request timeout instead of the read timeout.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.Use(validation.Guard)

			reportHandler := handlers.NewReportHandler(a.ReportService, errorHandler, validation, a.Logger)
			r.Mount("/reports", reportHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the HTTP server in the background
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully shuts the server down
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
