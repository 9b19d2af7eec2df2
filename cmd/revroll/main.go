package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	corecfg "github.com/thosangs/revroll/internal/core/config"
	"github.com/thosangs/revroll/internal/core/storage/postgres"
	"github.com/thosangs/revroll/internal/ingestion"
	"github.com/thosangs/revroll/internal/migrations"
	"github.com/thosangs/revroll/internal/projection"
	"github.com/thosangs/revroll/internal/rollup"
	"github.com/thosangs/revroll/internal/server"
)

func main() {
	configPath := flag.String("config", "revroll.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "profiles", len(cfg.Profiles))

	cronInterval, err := time.ParseDuration(cfg.Rollup.CronInterval)
	if err != nil {
		slog.Error("Invalid rollup interval", "value", cfg.Rollup.CronInterval, "error", err)
		os.Exit(1)
	}

	// 2. Initialize Storage (PostgreSQL)
	db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	if err := postgres.ValidateSchema(db); err != nil {
		slog.Error("Schema validation failed - did you run migrations?", "error", err)
		os.Exit(1)
	}

	orderStore := postgres.NewOrderAdapter(db)
	summaryStore := postgres.NewSummaryAdapter(db)

	// 3. Initialize Rollup (cron-style batch aggregation)
	scheduler := rollup.NewScheduler(cronInterval, orderStore, summaryStore, cfg.Profiles)
	slog.Info("Rollup scheduler initialized",
		"interval", cronInterval,
		"enabled", cfg.Rollup.Enabled,
		"profiles", len(cfg.Profiles),
	)

	// 4. Initialize Ingestion and Projection
	ingestionSvc := ingestion.NewService(orderStore, cfg.Server.MaxBodySizeMB)
	projectionSvc := projection.NewService(summaryStore, cfg.Profiles)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), db, cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Rollup.Enabled {
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		slog.Info("Rollup scheduler disabled by config")
	}

	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
