package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/ranch/internal/behavior"
	"github.com/udisondev/ranch/internal/config"
	"github.com/udisondev/ranch/internal/db"
	"github.com/udisondev/ranch/internal/navmesh"
	"github.com/udisondev/ranch/internal/ranch"
	"github.com/udisondev/ranch/internal/server"
)

const ConfigPath = "config/ranchserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfgPath := ConfigPath
	if p := os.Getenv("RANCH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadRanchServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	behavior.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("ranch server starting",
		"config", cfgPath,
		"log_level", cfg.LogLevel,
		"addr", cfg.Addr())

	zone, err := navmesh.LoadZone(cfg.NavMesh)
	if err != nil {
		return fmt.Errorf("loading navmesh: %w", err)
	}
	terrain := navmesh.NewZoned(zone, rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1)))
	slog.Info("navmesh loaded",
		"path", cfg.NavMesh,
		"nodes", zone.NodeCount(),
		"groups", len(zone.Groups))

	mgr := ranch.NewManager(cfg.TickInterval)
	now := time.Now()
	for i, id := range cfg.Ranches {
		opts := ranch.Options{
			MinInterval:     cfg.MinTickInterval,
			MaxDelta:        cfg.MaxTickDelta,
			MaxDropDistance: cfg.MaxDropDistance,
			Tunables:        cfg.Behavior,
			Seed:            cfg.Seed + uint64(i),
		}
		r, err := ranch.New(id, terrain, cfg.Actors, opts, now)
		if err != nil {
			return fmt.Errorf("creating ranch %s: %w", id, err)
		}
		mgr.Register(r)
	}
	slog.Info("ranches registered", "count", mgr.Count())

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := mgr.LoadAll(ctx, store); err != nil {
		return fmt.Errorf("restoring ranches: %w", err)
	}

	srv := server.New(mgr, terrain, server.Options{
		WriteTimeout:  cfg.WriteTimeout,
		ReadTimeout:   cfg.ReadTimeout,
		SendQueueSize: cfg.SendQueueSize,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(gctx, cfg.Addr()); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := mgr.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("ranch tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting ranch saver", "interval", cfg.SaveInterval, "persistent", cfg.Persistence)
		if err := mgr.RunSaver(gctx, store, cfg.SaveInterval); err != nil {
			return fmt.Errorf("ranch saver: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("ranch server stopped")
	return nil
}

// openStore returns the PostgreSQL store when persistence is enabled and an
// in-memory one otherwise.
func openStore(ctx context.Context, cfg config.RanchServer) (ranch.Store, func(), error) {
	if !cfg.Persistence {
		slog.Info("persistence disabled, ranches live in memory")
		return ranch.NewMemoryStore(), func() {}, nil
	}

	dsn := cfg.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	if err := db.RunMigrations(ctx, dsn); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	return db.NewActorRepository(database.Pool()), database.Close, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
