package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/promokiosk/qr-redirector/internal/config"
	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/handler"
	"github.com/promokiosk/qr-redirector/internal/middleware"
	"github.com/promokiosk/qr-redirector/internal/repository"
	"github.com/promokiosk/qr-redirector/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Часы киоска: один фиксированный часовой пояс на все метрики и ротацию
	clock, err := dayclock.New(cfg.Kiosk.Timezone)
	if err != nil {
		logger.Fatal("Failed to init day clock", zap.Error(err))
	}

	// Выбор бэкенда метрик
	store, cleanup, err := buildMetricsStore(cfg, clock, logger)
	if err != nil {
		logger.Fatal("Failed to init metrics store", zap.Error(err))
	}
	defer cleanup()
	logger.Info("Metrics store ready", zap.String("backend", cfg.Storage.Backend))

	// Процессор метрик (Worker Pool)
	metricsProc := service.NewMetricsProcessor(store, logger)
	metricsProc.Start()
	defer metricsProc.Stop()

	// Доменные компоненты киоска
	gate := service.NewCooldownGate(cfg.Kiosk.Cooldown)
	selector := service.NewAdSelector(cfg.Kiosk, clock)

	scanService, err := service.NewScanService(gate, selector, metricsProc, cfg.Kiosk.GameBaseURL, logger, nil)
	if err != nil {
		logger.Fatal("Failed to init scan service", zap.Error(err))
	}

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})

	if cfg.Admin.Key == "" {
		logger.Warn("ADMIN_KEY is empty, admin endpoints are open")
	}

	// Настройка роутера
	scanURL := strings.TrimRight(cfg.App.PublicBaseURL, "/") + "/kiosk/scan"
	router := handler.NewRouter(scanService, metricsProc, rateLimiter, cfg.Admin.Key, scanURL, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildMetricsStore собирает бэкенд метрик по конфигу. Возвращает также
// cleanup для закрытия соединений при остановке.
func buildMetricsStore(cfg *config.Config, clock *dayclock.Clock, logger *zap.Logger) (repository.MetricsStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "file":
		store, err := repository.NewFileMetricsStore(cfg.Storage.MetricsFile, clock)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case "redis":
		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Connected to Redis")
		return repository.NewRedisMetricsStore(redis, clock), func() { redis.Close() }, nil

	case "postgres":
		db, err := repository.NewPostgresDB(cfg.DB)
		if err != nil {
			return nil, noop, err
		}
		if err := db.Migrate(context.Background()); err != nil {
			db.Close()
			return nil, noop, err
		}
		logger.Info("Connected to PostgreSQL")
		return repository.NewPostgresMetricsStore(db, clock), db.Close, nil

	case "hybrid":
		local, err := repository.NewFileMetricsStore(cfg.Storage.MetricsFile, clock)
		if err != nil {
			return nil, noop, err
		}

		// Primary: postgres, если настроен, иначе redis
		if cfg.DB.Host != "" {
			db, err := repository.NewPostgresDB(cfg.DB)
			if err != nil {
				return nil, noop, err
			}
			if err := db.Migrate(context.Background()); err != nil {
				db.Close()
				return nil, noop, err
			}
			logger.Info("Connected to PostgreSQL")
			primary := repository.NewPostgresMetricsStore(db, clock)
			return repository.NewHybridMetricsStore(primary, local, logger), db.Close, nil
		}

		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("Connected to Redis")
		primary := repository.NewRedisMetricsStore(redis, clock)
		return repository.NewHybridMetricsStore(primary, local, logger), func() { redis.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
}
