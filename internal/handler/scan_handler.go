package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promokiosk/qr-redirector/internal/service"
	"go.uber.org/zap"
)

type KioskHandler struct {
	service service.ScanService
	logger  *zap.Logger
}

func NewKioskHandler(service service.ScanService, logger *zap.Logger) *KioskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KioskHandler{
		service: service,
		logger:  logger,
	}
}

type GameResultRequest struct {
	Win bool `json:"win"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Scan godoc
// @Summary Handle a kiosk QR scan
// @Description Redirect the visitor to the ad game, or tell them to wait out the cooldown
// @Tags kiosk
// @Produce plain
// @Param ad query string false "Ad pack override (1-8)"
// @Success 302 {object} nil
// @Success 200 {string} string "Cooldown wait message"
// @Router /kiosk/scan [get]
func (h *KioskHandler) Scan(c *gin.Context) {
	clientKey := c.ClientIP()

	result, err := h.service.Scan(c.Request.Context(), clientKey, c.Query("ad"))
	if err != nil {
		h.logger.Error("Failed to process scan", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process scan",
		})
		return
	}

	// Редирект не должен кэшироваться, иначе киоск покажет вчерашний пак
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate")

	if !result.Allowed {
		cooldownRejectionsTotal.Inc()
		c.String(http.StatusOK, "You have already played! Come back in %d min.", result.WaitMinutes)
		return
	}

	scansTotal.Inc()
	redirectsTotal.Inc()

	h.logger.Info("Scan redirected",
		zap.String("client", clientKey),
		zap.Int("ad_id", result.AdID),
	)

	c.Redirect(http.StatusFound, result.Target)
}

// GameResult godoc
// @Summary Record a finished game
// @Description Bump total_plays, and game_wins when the visitor won
// @Tags kiosk
// @Accept json
// @Produce json
// @Param request body GameResultRequest true "Game outcome"
// @Success 200 {object} map[string]string
// @Router /kiosk/game/result [post]
func (h *KioskHandler) GameResult(c *gin.Context) {
	var req GameResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid game result body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	if err := h.service.RecordGameResult(c.Request.Context(), req.Win); err != nil {
		// Потеря метрики не ошибка для киоска
		h.logger.Warn("Failed to record game result", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// HealthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/v1/health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
