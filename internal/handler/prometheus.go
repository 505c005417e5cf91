package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Процессные счётчики для Prometheus. Дневная аналитика живёт в MetricsStore,
// здесь только то, что нужно для алертинга на живом киоске.
var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_qr_scans_total",
		Help: "Allowed QR scans since process start.",
	})
	redirectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_redirects_total",
		Help: "Redirects issued since process start.",
	})
	cooldownRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kiosk_cooldown_rejections_total",
		Help: "Scans rejected by the cooldown gate since process start.",
	})
)
