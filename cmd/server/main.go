package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"sovdash/internal/analysis"
	"sovdash/internal/analyzer"
	"sovdash/internal/config"
	"sovdash/internal/db"
	"sovdash/internal/jobs"
	"sovdash/internal/logger"
	"sovdash/internal/metrics"
	"sovdash/internal/report"
	"sovdash/internal/server"
	"sovdash/internal/storage"
)

// runStore is what the server needs from the run persistence layer.
type runStore interface {
	analysis.RunStore
	metrics.Source
	jobs.Pruner
	server.RunStore
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()
	log := logger.For("main")
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		log.WithError(err).Warn("Failed to open log file, logging to stdout only")
	}
	log = logger.For("main")

	brands, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		log.WithError(err).Fatalf("Failed to load %s", cfg.ConfigFile)
	}

	// Run store: Postgres when configured, process memory otherwise
	var store runStore
	if cfg.HasDatabase() {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
		log.Info("Migrations completed successfully")
		store = database
	} else {
		log.Warn("DATABASE_URL not set, analysis runs are kept in memory")
		store = db.NewMemory()
	}

	// Shared storage for the latest result and rate limiter
	var (
		cache          storage.Storage = storage.NewMemory()
		limiterStorage fiber.Storage
	)
	if cfg.HasRedis() {
		redisStorage := storage.NewRedis(cfg.RedisURL)
		defer redisStorage.Close()
		cache = redisStorage
		limiterStorage = redisStorage
		log.Info("Using Redis for shared storage")
	}

	metrics.Init(store)

	mock := analyzer.NewMock(analyzer.MockConfig{
		Primary:     analyzer.Brand{Name: brands.Brand.Name, Keywords: brands.Brand.Keywords},
		Competitors: brandList(brands.Competitors),
		Weights:     weights(brands.Analyzer.Weights),
		NumResults:  brands.Analyzer.NumResults,
		Seed:        cfg.AnalyzerSeed,
		QPS:         cfg.AnalyzerQPS,
	})
	runner := analysis.NewRunner(mock, store, cache, logger.For("analysis"))

	reports, err := report.New(report.Options{AppName: cfg.AppName, Version: cfg.AppVersion})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize report generator")
	}

	srv, err := server.New(cfg, limiterStorage)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize server")
	}
	srv.RegisterRoutes(server.Deps{
		Runner:  runner,
		Reports: reports,
		Brands:  brands,
		Store:   store,
	})

	if cfg.RunRetention > 0 {
		retention := jobs.NewRunRetention(store, cfg.RunRetention, cfg.PruneInterval, logger.For("jobs"))
		go retention.Start(ctx)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.WithError(err).Error("Server error")
		}
	}()

	log.WithField("addr", cfg.ServerAddr).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	metrics.Flush()
	log.Info("Server exited")
}

func brandList(brands []config.BrandConfig) []analyzer.Brand {
	out := make([]analyzer.Brand, 0, len(brands))
	for _, b := range brands {
		out = append(out, analyzer.Brand{Name: b.Name, Keywords: b.Keywords})
	}
	return out
}

func weights(w config.Weights) analyzer.Weights {
	n := w.Normalized()
	return analyzer.Weights{Mention: n.Mention, Engagement: n.Engagement, Positive: n.Positive}
}
