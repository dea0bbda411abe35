package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/autoops-ai/backend/internal/analytics"
	"github.com/autoops-ai/backend/internal/api"
	"github.com/autoops-ai/backend/internal/catalog"
	"github.com/autoops-ai/backend/internal/config"
	"github.com/autoops-ai/backend/internal/ingest"
	"github.com/autoops-ai/backend/internal/logging"
	"github.com/autoops-ai/backend/internal/metrics"
	"github.com/autoops-ai/backend/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and notification server",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveConfigFile()
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logger, restore, err := logging.Setup(cfg.Log.Level)
		if err != nil {
			return err
		}
		defer restore()
		log := zap.S().Named("server")

		log.Infow("starting document simulator", "version", Version, "build_time", BuildTime, "config", path)
		defer log.Info("document simulator stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	log := zap.S().Named("server")

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	hub := api.NewNotificationHub()
	defer hub.Close()

	var notifier ingest.Notifier = hub
	if cfg.Metrics.Enabled {
		notifier = metrics.Notifier(hub)
	}

	sim, err := ingest.NewSimulator(ingest.Config{
		CompletionDelay: cfg.Ingest.CompletionDelay,
		ConfidenceMin:   cfg.Ingest.ConfidenceMin,
		ConfidenceMax:   cfg.Ingest.ConfidenceMax,
	},
		ingest.WithNotifier(notifier),
		ingest.WithFailurePolicy(ingest.FailWithProbability(cfg.Ingest.FailureRate)),
	)
	if err != nil {
		return err
	}
	defer sim.Close()

	store, err := analytics.NewStore()
	if err != nil {
		return fmt.Errorf("initializing analytics store: %w", err)
	}
	defer store.Close()

	sim.Subscribe(store.Observer())
	sim.Subscribe(hub)

	if cfg.Ingest.SeedDocuments {
		if err := sim.Seed(cat.SeedDocuments); err != nil {
			return fmt.Errorf("seeding documents: %w", err)
		}
		recorded, err := store.Backfill(ctx, sim.Documents())
		if err != nil {
			return fmt.Errorf("recording seeded documents: %w", err)
		}
		log.Infow("seeded documents", "count", len(cat.SeedDocuments), "recorded", recorded)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, api.MiddlewareOptions{
		EnableCORS:   cfg.Server.EnableCORS,
		AllowOrigins: cfg.Server.AllowOrigins,
		BodyLimit:    cfg.Server.BodyLimit,
		ShowDetails:  cfg.Log.Level == "debug",
	})
	if cfg.Log.RequestLogging {
		e.Use(logging.Logger(logger, "http", logging.SkipPaths("/api/health", cfg.Metrics.Path)))
	}

	if cfg.Metrics.Enabled {
		sim.Subscribe(metrics.Observer())
		mw := metrics.NewMiddleware("docsim")
		collectors := append(mw.Collectors(), metrics.NewDocumentStatsCollector(sim))
		for _, c := range collectors {
			if err := prometheus.Register(c); err != nil {
				return fmt.Errorf("registering metrics: %w", err)
			}
		}
		e.Use(mw.Handler)
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}

	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Ingestor:  sim,
		Catalog:   cat,
		Analytics: store,
		Hub:       hub,
		Version:   Version,
	}))

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			log.Warnw("failed to register static routes", "error", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", cfg.GetServerAddr())
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("running server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutting down")
		// Stop accepting submissions before draining HTTP.
		if err := sim.Close(); err != nil {
			log.Warnw("closing simulator", "error", err)
		}
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	})
	return g.Wait()
}
