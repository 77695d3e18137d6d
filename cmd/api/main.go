package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/handler"
	"github.com/Dan9191/property-insights/internal/integrations/cbr"
	"github.com/Dan9191/property-insights/internal/repository"
	"github.com/Dan9191/property-insights/internal/scheduler"
	"github.com/Dan9191/property-insights/internal/service"
	"github.com/Dan9191/property-insights/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize storage
	var store service.Store
	if cfg.Storage == "postgres" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		repo := repository.NewRepository(db)
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		store = repo
	} else {
		logger.Warn("Using in-memory storage, data is lost on restart")
		store = repository.NewMemoryRepository()
	}

	// Reference rate: CBR key rate behind a cache
	var rateCache cbr.RateCache = cbr.NewMemoryRateCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.WithError(err).Warn("Redis unavailable, reference rate cache disabled until it recovers")
		}
		rateCache = cbr.NewRedisRateCache(rdb)
	}
	rates := cbr.NewCachedRateProvider(cbr.NewCBRClient(cfg, logger), rateCache, cfg.RateCacheTTL, logger)

	sched, err := scheduler.NewScheduler(cfg.RateRefreshSpec, rates, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Initialize layers
	svc := service.NewService(store, email.NewSender(cfg, logger), logger, cfg)
	h := handler.NewHandler(svc, rates, logger)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server stopped")
}
