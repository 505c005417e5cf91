package handler

import (
	"encoding/csv"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/promokiosk/qr-redirector/internal/models"
	"github.com/promokiosk/qr-redirector/internal/service"
	"go.uber.org/zap"
)

type AdminHandler struct {
	metrics service.MetricsProcessor
	scans   service.ScanService
	logger  *zap.Logger
}

func NewAdminHandler(metrics service.MetricsProcessor, scans service.ScanService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		metrics: metrics,
		scans:   scans,
		logger:  logger,
	}
}

var metricsTableTmpl = template.Must(template.New("metrics").Parse(`<!DOCTYPE html>
<html>
<head><title>Kiosk metrics</title></head>
<body>
<h1>Kiosk metrics</h1>
<table border="1" cellpadding="4">
<tr><th>Day</th><th>QR scans</th><th>Redirects</th><th>Game wins</th><th>Total plays</th></tr>
{{range .}}<tr><td>{{.Day}}</td><td>{{.QRScans}}</td><td>{{.Redirects}}</td><td>{{.GameWins}}</td><td>{{.TotalPlays}}</td></tr>
{{end}}</table>
</body>
</html>`))

// rows читает строки отчёта; отказ хранилища деградирует до пустого отчёта
func (h *AdminHandler) rows(c *gin.Context) []models.MetricsDay {
	rows, err := h.metrics.GetMetricsRows(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to read metrics, serving empty report", zap.Error(err))
		return []models.MetricsDay{}
	}
	return rows
}

// MetricsHTML godoc
// @Summary Metrics as an HTML table
// @Tags admin
// @Produce html
// @Success 200 {string} string
// @Router /admin/metrics [get]
func (h *AdminHandler) MetricsHTML(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := metricsTableTmpl.Execute(c.Writer, h.rows(c)); err != nil {
		h.logger.Error("Failed to render metrics table", zap.Error(err))
	}
}

// MetricsJSON godoc
// @Summary Metrics as a JSON object keyed by day
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]models.MetricsDay
// @Router /admin/metrics.json [get]
func (h *AdminHandler) MetricsJSON(c *gin.Context) {
	days, err := h.metrics.GetMetrics(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to read metrics, serving empty report", zap.Error(err))
		days = map[string]models.MetricsDay{}
	}
	c.JSON(http.StatusOK, days)
}

// MetricsCSV godoc
// @Summary Metrics as CSV
// @Tags admin
// @Produce plain
// @Success 200 {string} string
// @Router /admin/metrics.csv [get]
func (h *AdminHandler) MetricsCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="kiosk-metrics.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"day", "qr_scans", "redirects", "game_wins", "total_plays"})
	for _, row := range h.rows(c) {
		_ = w.Write([]string{
			row.Day,
			strconv.FormatInt(row.QRScans, 10),
			strconv.FormatInt(row.Redirects, 10),
			strconv.FormatInt(row.GameWins, 10),
			strconv.FormatInt(row.TotalPlays, 10),
		})
	}
	w.Flush()
}

// AdSelection godoc
// @Summary Inspect the current ad pack selection
// @Tags admin
// @Produce json
// @Param ad query string false "Ad pack override (1-8)"
// @Success 200 {object} models.AdSelection
// @Router /admin/ad [get]
func (h *AdminHandler) AdSelection(c *gin.Context) {
	c.JSON(http.StatusOK, h.scans.InspectSelection(c.Query("ad")))
}
