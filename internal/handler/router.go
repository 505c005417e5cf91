package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/promokiosk/qr-redirector/internal/middleware"
	"github.com/promokiosk/qr-redirector/internal/service"
	"go.uber.org/zap"
)

func NewRouter(
	scanService service.ScanService,
	metricsProc service.MetricsProcessor,
	rateLimiter *middleware.RateLimiter,
	adminKey string,
	scanURL string,
	logger *zap.Logger,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.Default()

	// Middleware для логгирования
	router.Use(func(c *gin.Context) {
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		)
		c.Next()
	})

	// Rate limiting для всех запросов
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	kioskHandler := NewKioskHandler(scanService, logger)
	adminHandler := NewAdminHandler(metricsProc, scanService, logger)
	posterHandler := NewPosterHandler(scanURL, logger)

	// Киоск: скан и результат игры - публичные
	kiosk := router.Group("/kiosk")
	{
		kiosk.GET("/scan", kioskHandler.Scan)
		kiosk.POST("/game/result", kioskHandler.GameResult)
	}

	// Постер с QR-кодом
	router.GET("/poster", posterHandler.Poster)
	router.GET("/poster/qr.png", posterHandler.QR)

	// Админка за общим секретом (?key=), без ключа - открыта
	admin := router.Group("/admin", middleware.RequireAdminKey(adminKey))
	{
		admin.GET("/metrics", adminHandler.MetricsHTML)
		admin.GET("/metrics.json", adminHandler.MetricsJSON)
		admin.GET("/metrics.csv", adminHandler.MetricsCSV)
		admin.GET("/ad", adminHandler.AdSelection)
	}

	// API v.1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", HealthCheck)
	}

	// Prometheus (процессные счётчики, не дневная аналитика)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
