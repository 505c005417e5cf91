package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type PosterHandler struct {
	scanURL string
	logger  *zap.Logger
}

// NewPosterHandler отдаёт постер киоска. scanURL - внешний адрес
// /kiosk/scan, именно он зашивается в QR-код.
func NewPosterHandler(scanURL string, logger *zap.Logger) *PosterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PosterHandler{
		scanURL: scanURL,
		logger:  logger,
	}
}

var posterTmpl = template.Must(template.New("poster").Parse(`<!DOCTYPE html>
<html>
<head><title>Scan &amp; Play</title></head>
<body style="text-align:center;font-family:sans-serif">
<h1>Scan &amp; Play</h1>
<p>Scan the code to play and win!</p>
<img src="/poster/qr.png" width="360" height="360" alt="QR code">
<p><small>{{.}}</small></p>
</body>
</html>`))

// Poster godoc
// @Summary Kiosk poster page with the QR code
// @Tags poster
// @Produce html
// @Success 200 {string} string
// @Router /poster [get]
func (h *PosterHandler) Poster(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := posterTmpl.Execute(c.Writer, h.scanURL); err != nil {
		h.logger.Error("Failed to render poster", zap.Error(err))
	}
}

// QR godoc
// @Summary QR code image for the scan URL
// @Tags poster
// @Produce png
// @Success 200 {file} byte
// @Failure 500 {object} ErrorResponse
// @Router /poster/qr.png [get]
func (h *PosterHandler) QR(c *gin.Context) {
	// Без картинки постер бессмысленен, поэтому ошибка кодирования - это 500
	png, err := qrcode.Encode(h.scanURL, qrcode.Medium, 512)
	if err != nil {
		h.logger.Error("Failed to encode QR code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "qr_encoding_failed",
			Message: "Failed to encode QR code",
		})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
