package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/irah1999/cloud-flair/internal/config"
	"github.com/irah1999/cloud-flair/internal/database"
	"github.com/irah1999/cloud-flair/internal/handlers"
	"github.com/irah1999/cloud-flair/internal/jobs"
	"github.com/irah1999/cloud-flair/internal/lifecycle"
	"github.com/irah1999/cloud-flair/internal/metrics"
	"github.com/irah1999/cloud-flair/internal/middleware"
	"github.com/irah1999/cloud-flair/internal/repositories"
	"github.com/irah1999/cloud-flair/internal/routers"
	"github.com/irah1999/cloud-flair/internal/stream"
	"github.com/irah1999/cloud-flair/internal/stream/cloudflare"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initLocker returns a Redis-backed locker when REDIS_ADDR is set.
func initLocker(cfg *config.Config, logger *zap.Logger) (lifecycle.Locker, *redis.Client) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, provisioning lock is process-local")
		return lifecycle.LocalLocker{}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	return lifecycle.NewRedisLocker(rdb, cfg.ProvisionLockTTL, cfg.ProvisionLockWait), rdb
}

func initProvider(cfg *config.Config) (stream.Provider, error) {
	registry := stream.NewRegistry()
	cloudflare.Register(registry, &cfg.Cloudflare)
	return registry.New(cfg.StreamProvider)
}

func buildRouter(cfg *config.Config, interviewHandler *handlers.InterviewHandler, healthHandler *handlers.HealthHandler) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.CORS())
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer, chimiddleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, routers.InterviewRouteOptions{
		JoinRateLimit:    cfg.JoinRateLimit,
		MonitorJWTSecret: cfg.MonitorJWTSecret,
	})
	return router
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("db_driver", cfg.DBDriver),
		zap.String("stream_provider", cfg.StreamProvider),
		zap.Bool("redis_lock", cfg.RedisAddr != ""))

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	provider, err := initProvider(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize stream provider", zap.Error(err))
	}

	locker, rdb := initLocker(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	controller := lifecycle.NewController(
		&repositories.InterviewRepository{DB: db},
		provider,
		logger,
		lifecycle.Options{Locker: locker, DisconnectOnSubmit: cfg.DisconnectOnSubmit, ProvisionTimeout: cfg.ProvisionLockTTL},
	)

	sweeper := jobs.NewRecordingSweeper(controller, &jobs.SweeperConfig{
		Schedule:  cfg.RecordingSweepSchedule,
		Enabled:   cfg.RecordingSweepEnabled,
		Window:    cfg.RecordingSweepWindow,
		BatchSize: cfg.RecordingSweepBatch,
		Timeout:   2 * time.Minute,
	}, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start recording sweeper", zap.Error(err))
	}

	router := buildRouter(cfg,
		handlers.NewInterviewHandler(controller, logger),
		handlers.NewHealthHandler(db, rdb, provider))

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
