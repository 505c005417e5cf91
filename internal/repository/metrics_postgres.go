package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/models"
)

// PostgresMetricsStore реляционное хранилище метрик: строка на день,
// инкремент через upsert с ON CONFLICT - единственный бэкенд с по-настоящему
// атомарным инкрементом на уровне запроса.
type PostgresMetricsStore struct {
	db    *PostgresDB
	clock *dayclock.Clock
}

func NewPostgresMetricsStore(db *PostgresDB, clock *dayclock.Clock) *PostgresMetricsStore {
	return &PostgresMetricsStore{db: db, clock: clock}
}

func (s *PostgresMetricsStore) BumpScan(ctx context.Context, at time.Time) error {
	return s.bump(ctx, "qr_scans", at)
}

func (s *PostgresMetricsStore) BumpRedirect(ctx context.Context, at time.Time) error {
	return s.bump(ctx, "redirects", at)
}

func (s *PostgresMetricsStore) BumpWin(ctx context.Context, at time.Time) error {
	return s.bump(ctx, "game_wins", at)
}

func (s *PostgresMetricsStore) BumpPlay(ctx context.Context, at time.Time) error {
	return s.bump(ctx, "total_plays", at)
}

// bump выполняет атомарный upsert-инкремент. Имя колонки приходит только из
// четырёх констант выше, поэтому подстановка в текст запроса безопасна.
func (s *PostgresMetricsStore) bump(ctx context.Context, column string, at time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO metrics_days (day, %s)
		VALUES ($1, 1)
		ON CONFLICT (day)
		DO UPDATE SET %s = metrics_days.%s + 1
	`, column, column, column)

	if _, err := s.db.Pool.Exec(ctx, query, s.clock.Key(at)); err != nil {
		return fmt.Errorf("failed to bump %s: %w", column, err)
	}

	return nil
}

func (s *PostgresMetricsStore) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	rows, err := s.GetMetricsRows(ctx)
	if err != nil {
		return nil, err
	}

	days := make(map[string]models.MetricsDay, len(rows))
	for _, row := range rows {
		days[row.Day] = row
	}

	return days, nil
}

func (s *PostgresMetricsStore) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	query := `
		SELECT to_char(day, 'YYYY-MM-DD'), qr_scans, redirects, game_wins, total_plays
		FROM metrics_days
		ORDER BY day ASC
	`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics rows: %w", err)
	}
	defer rows.Close()

	var result []models.MetricsDay
	for rows.Next() {
		var day models.MetricsDay
		if err := rows.Scan(&day.Day, &day.QRScans, &day.Redirects, &day.GameWins, &day.TotalPlays); err != nil {
			return nil, fmt.Errorf("failed to scan metrics row: %w", err)
		}
		result = append(result, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metrics rows: %w", err)
	}

	return result, nil
}
