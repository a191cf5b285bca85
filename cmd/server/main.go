package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/akm-xdd/Trackly-core/internal/app"
	"github.com/akm-xdd/Trackly-core/internal/auth"
	"github.com/akm-xdd/Trackly-core/internal/broadcast"
	"github.com/akm-xdd/Trackly-core/internal/config"
	"github.com/akm-xdd/Trackly-core/internal/logging"
	"github.com/akm-xdd/Trackly-core/internal/postgres"
	"github.com/akm-xdd/Trackly-core/internal/redis"
	"github.com/akm-xdd/Trackly-core/internal/server"
	"github.com/akm-xdd/Trackly-core/internal/storage"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized.
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, broadcaster *broadcast.Broadcaster, cancelWorkers context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelWorkers()
		broadcaster.Close()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := postgres.NewUserRepo(pool)
	issueRepo := postgres.NewIssueRepo(pool)
	fileRepo := postgres.NewFileRepo(pool)
	statsRepo := postgres.NewStatsRepo(pool)

	blobs, err := storage.NewDiskStore(cfg.FileStorageRoot, cfg.FileBaseURL)
	if err != nil {
		slog.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry, clock)
	tickets := redis.NewTicketStore(redisClient, cfg.StreamTicketTTL)

	registry := broadcast.NewRegistry()
	broadcaster := broadcast.NewBroadcaster(registry, clock)

	service := app.NewService(userRepo, issueRepo, fileRepo, statsRepo, blobs, tokens, broadcaster, clock)

	// Background workers: the heartbeat reaper and the stats aggregation
	// ticker both stop when workerCtx is cancelled.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go registry.RunReaper(workerCtx, clock, cfg.ReaperInterval, cfg.HeartbeatTimeout)
	go app.NewStatsTicker(service, clock, cfg.StatsInterval).Run(workerCtx)

	srv := server.NewServer(cfg, service, broadcaster, tickets, tokens, pool, redisClient)

	done := runGracefulShutdown(srv, broadcaster, cancelWorkers)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
