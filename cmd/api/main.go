package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/slackbot-settings/internal/api/http"
	"github.com/spec-kit/slackbot-settings/internal/api/http/handlers"
	"github.com/spec-kit/slackbot-settings/internal/cache"
	"github.com/spec-kit/slackbot-settings/internal/config"
	"github.com/spec-kit/slackbot-settings/internal/events"
	"github.com/spec-kit/slackbot-settings/internal/observability"
	"github.com/spec-kit/slackbot-settings/internal/persistence"
	"github.com/spec-kit/slackbot-settings/internal/repository"
	"github.com/spec-kit/slackbot-settings/internal/repository/memory"
	"github.com/spec-kit/slackbot-settings/internal/service"
	"github.com/spec-kit/slackbot-settings/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("tracer shutdown", zap.Error(err))
		}
	}()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		staffRepo  repository.StaffRepository
		threadRepo repository.ThreadRepository
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		staffRepo = repository.NewStaffRepository(pool)
		threadRepo = repository.NewThreadRepository(pool)
	} else {
		logger.Warn("using in-memory storage; data is lost on restart")
		staffRepo = memory.NewStaffRepository()
		threadRepo = memory.NewThreadRepository()
	}

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	var (
		rosterCache cache.RosterCache
		marker      cache.UploadMarker
	)
	if client := rdb.Handle(); client != nil && rdb.Ping(ctx) == nil {
		redisCache := cache.NewRedis(client, cfg.Cache.RosterTTL())
		rosterCache, marker = redisCache, redisCache
	} else {
		local := cache.NewLocal(cfg.Cache.RosterTTL())
		rosterCache, marker = local, local
		rdb = &persistence.Redis{}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	staffService := service.NewStaffService(service.StaffDependencies{
		StaffRepo:  staffRepo,
		Cache:      rosterCache,
		Dispatcher: dispatcher,
		Logger:     logger.Named("staff"),
	})
	archiveService := service.NewArchiveService(service.ArchiveDependencies{
		ThreadRepo: threadRepo,
		Marker:     marker,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger.Named("archive"),
	})

	app := httptransport.NewApp(*cfg, logger, metrics, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Staff:   handlers.NewStaffHandler(staffService),
		Storage: handlers.NewStorageHandler(archiveService),
		Metrics: httptransport.MetricsHandler(registry),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
