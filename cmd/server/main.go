package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medialib/internal/config"
	"medialib/internal/handler"
	"medialib/internal/handler/ws"
	"medialib/internal/middleware"
	"medialib/internal/repository/postgres"
	postgresLibrary "medialib/internal/repository/postgres/library"
	"medialib/internal/service/library"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"change_window", cfg.ChangeWindow,
		"sort_window", cfg.SortWindow,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if err := postgresLibrary.EnsureSchema(ctx, repoConfig, cfg.NotifyChannel); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	docs := postgresLibrary.NewFolderDocumentStore(repoConfig)
	feed, err := postgresLibrary.NewListener(repoConfig, cfg.NotifyChannel)
	if err != nil {
		log.Fatalf("Failed to create change feed listener: %v", err)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := library.NewMetrics(registry)

	// Folder subsystem
	store := library.NewFolderStore()
	bus := library.NewEventBus(logger)
	folderService := library.NewFolderService(docs, store, bus, metrics, logger)
	reconciler := library.NewReconciler(store, bus, library.SystemClock, cfg.ChangeWindow, metrics, logger)
	sorter := library.NewSortScheduler(store, bus, library.SystemClock, cfg.SortWindow, metrics, logger)
	defer sorter.Close()
	defer reconciler.Close()

	// A failed first fetch is recorded in the store; the client retries via POST /api/folders/fetch
	if err := folderService.FetchFolders(ctx); err != nil {
		logger.Error("initial folder fetch failed", "error", err)
	}

	origins := strings.Split(cfg.CORSOrigins, ",")

	folderHandler := handler.NewFolderHandler(folderService, store, logger)
	treeHandler := handler.NewTreeHandler(store, logger)
	eventsConfig := ws.DefaultConfig()
	eventsConfig.OriginPatterns = originHosts(origins)
	eventsHandler := handler.NewEventsHandler(bus, store, eventsConfig, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, folderHandler, treeHandler, eventsHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Order: CORS → Recovery → RequestID → Routes
	var h http.Handler = mux
	h = middleware.RequestID(logger)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived websocket streams
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return feed.Listen(gctx, reconciler.Push)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// originHosts strips the scheme from CORS origins for websocket origin checks
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if i := strings.Index(origin, "://"); i >= 0 {
			origin = origin[i+3:]
		}
		if origin != "" {
			hosts = append(hosts, origin)
		}
	}
	return hosts
}
