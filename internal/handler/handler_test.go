package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promokiosk/qr-redirector/internal/config"
	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/handler"
	"github.com/promokiosk/qr-redirector/internal/models"
	"github.com/promokiosk/qr-redirector/internal/service"
	"github.com/promokiosk/qr-redirector/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// testEnv окружение хендлер-тестов с управляемым временем
type testEnv struct {
	router *gin.Engine
	store  *mocks.MockMetricsStore
	now    time.Time
}

func (env *testEnv) advance(d time.Duration) { env.now = env.now.Add(d) }

func setupTestEnv(t *testing.T, adminKey string) *testEnv {
	t.Helper()

	clock, err := dayclock.New("Europe/Madrid")
	require.NoError(t, err)

	store := mocks.NewMockMetricsStore(clock.Key)
	proc := mocks.NewSyncMetricsProcessor(store)

	gate := service.NewCooldownGate(15 * time.Minute)
	selector := service.NewAdSelector(config.KioskConfig{AdMode: "forced", AdForced: 3}, clock)

	env := &testEnv{
		store: store,
		now:   time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}

	scanService, err := service.NewScanService(
		gate, selector, proc, "https://game.example.com/play", nil,
		func() time.Time { return env.now },
	)
	require.NoError(t, err)

	env.router = handler.NewRouter(scanService, proc, nil, adminKey, "http://kiosk.local/kiosk/scan", nil)
	return env
}

func (env *testEnv) get(path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	req.RemoteAddr = ip + ":1234"
	env.router.ServeHTTP(w, req)
	return w
}

// TestScanEndpoint_EndToEnd прогоняет сценарий киоска через HTTP: редирект,
// отказ в окне, повторный скан, счётчики
func TestScanEndpoint_EndToEnd(t *testing.T) {
	env := setupTestEnv(t, "")
	dayKey := "2026-08-20"

	// t=0: редирект с форсированным паком 3
	w := env.get("/kiosk/scan", "10.1.1.1")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "3", loc.Query().Get("ad"))
	assert.Equal(t, "pack3", loc.Query().Get("pack"))
	assert.NotEmpty(t, loc.Query().Get("v"))

	// t=5min: отказ с сообщением ожидания вместо редиректа
	env.advance(5 * time.Minute)
	w = env.get("/kiosk/scan", "10.1.1.1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "10 min")

	// t=16min: окно истекло
	env.advance(11 * time.Minute)
	w = env.get("/kiosk/scan", "10.1.1.1")
	require.Equal(t, http.StatusFound, w.Code)

	day := env.store.Day(dayKey)
	assert.Equal(t, int64(2), day.QRScans)
	assert.Equal(t, int64(2), day.Redirects)
}

// TestScanEndpoint_IndependentClients проверяет, что cooldown не цепляет
// другой IP
func TestScanEndpoint_IndependentClients(t *testing.T) {
	env := setupTestEnv(t, "")

	require.Equal(t, http.StatusFound, env.get("/kiosk/scan", "10.1.1.1").Code)
	assert.Equal(t, http.StatusFound, env.get("/kiosk/scan", "10.1.1.2").Code)
}

// TestScanEndpoint_Override проверяет override пака через query параметр
func TestScanEndpoint_Override(t *testing.T) {
	env := setupTestEnv(t, "")

	w := env.get("/kiosk/scan?ad=7", "10.1.1.1")
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "7", loc.Query().Get("ad"))
}

// TestGameResultEndpoint проверяет приём результата игры
func TestGameResultEndpoint(t *testing.T) {
	env := setupTestEnv(t, "")

	body, _ := json.Marshal(handler.GameResultRequest{Win: true})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/kiosk/game/result", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	day := env.store.Day("2026-08-20")
	assert.Equal(t, int64(1), day.TotalPlays)
	assert.Equal(t, int64(1), day.GameWins)
}

// TestAdminMetricsJSON проверяет JSON-отчёт и защиту ключом
func TestAdminMetricsJSON(t *testing.T) {
	env := setupTestEnv(t, "s3cret")

	// Наполняем метрики одним сканом
	require.Equal(t, http.StatusFound, env.get("/kiosk/scan", "10.1.1.1").Code)

	// Без ключа - 401
	assert.Equal(t, http.StatusUnauthorized, env.get("/admin/metrics.json", "10.1.1.1").Code)

	// С ключом - отчёт по дням
	w := env.get("/admin/metrics.json?key=s3cret", "10.1.1.1")
	require.Equal(t, http.StatusOK, w.Code)

	var days map[string]models.MetricsDay
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &days))
	assert.Equal(t, int64(1), days["2026-08-20"].QRScans)
}

// TestAdminMetricsHTML проверяет HTML-таблицу
func TestAdminMetricsHTML(t *testing.T) {
	env := setupTestEnv(t, "")

	require.Equal(t, http.StatusFound, env.get("/kiosk/scan", "10.1.1.1").Code)

	w := env.get("/admin/metrics", "10.1.1.1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "2026-08-20")
	assert.Contains(t, w.Body.String(), "<table")
}

// TestAdminMetricsCSV проверяет CSV-отчёт
func TestAdminMetricsCSV(t *testing.T) {
	env := setupTestEnv(t, "")

	require.Equal(t, http.StatusFound, env.get("/kiosk/scan", "10.1.1.1").Code)

	w := env.get("/admin/metrics.csv", "10.1.1.1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "day,qr_scans,redirects,game_wins,total_plays")
	assert.Contains(t, w.Body.String(), "2026-08-20,1,1,0,0")
}

// TestAdminAdSelection проверяет инспекцию выбора пака
func TestAdminAdSelection(t *testing.T) {
	env := setupTestEnv(t, "")

	w := env.get("/admin/ad", "10.1.1.1")
	require.Equal(t, http.StatusOK, w.Code)

	var selection models.AdSelection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &selection))
	assert.Equal(t, 3, selection.AdID)
	assert.Equal(t, "pack3", selection.Pack)
	assert.Equal(t, "forced", selection.Mode)
}

// TestPosterEndpoints проверяет страницу постера и QR-картинку
func TestPosterEndpoints(t *testing.T) {
	env := setupTestEnv(t, "")

	page := env.get("/poster", "10.1.1.1")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "/poster/qr.png")

	qr := env.get("/poster/qr.png", "10.1.1.1")
	require.Equal(t, http.StatusOK, qr.Code)
	assert.Equal(t, "image/png", qr.Header().Get("Content-Type"))
	assert.NotEmpty(t, qr.Body.Bytes())
}

// TestHealthEndpoint проверяет health check
func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t, "")

	w := env.get("/api/v1/health", "10.1.1.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
