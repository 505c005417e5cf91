package repository

import (
	"context"
	"sort"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
)

// MetricsStore интерфейс хранилища дневных метрик киоска.
// Инкременты привязаны к ключу дня момента at; запись за день создаётся
// лениво при первом инкременте. GetMetricsRows отдаёт дни по возрастанию
// ключа без дубликатов.
type MetricsStore interface {
	BumpScan(ctx context.Context, at time.Time) error
	BumpRedirect(ctx context.Context, at time.Time) error
	BumpWin(ctx context.Context, at time.Time) error
	BumpPlay(ctx context.Context, at time.Time) error
	GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error)
	GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error)
}

// sortRows упорядочивает снапшот в строки отчёта по возрастанию дня
func sortRows(days map[string]models.MetricsDay) []models.MetricsDay {
	rows := make([]models.MetricsDay, 0, len(days))
	for _, day := range days {
		rows = append(rows, day)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Day < rows[j].Day
	})
	return rows
}

// applyBump инкрементирует нужный счётчик записи дня
func applyBump(day *models.MetricsDay, kind models.BumpKind) {
	switch kind {
	case models.BumpScan:
		day.QRScans++
	case models.BumpRedirect:
		day.Redirects++
	case models.BumpWin:
		day.GameWins++
	case models.BumpPlay:
		day.TotalPlays++
	}
}
