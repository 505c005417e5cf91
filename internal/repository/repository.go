package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/promokiosk/qr-redirector/internal/config"
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настройка пула соединений
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// Migrate создаёт таблицу метрик. Одна строка на день, счётчики
// неотрицательные, по умолчанию ноль.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS metrics_days (
			day DATE PRIMARY KEY,
			qr_scans BIGINT NOT NULL DEFAULT 0 CHECK (qr_scans >= 0),
			redirects BIGINT NOT NULL DEFAULT 0 CHECK (redirects >= 0),
			game_wins BIGINT NOT NULL DEFAULT 0 CHECK (game_wins >= 0),
			total_plays BIGINT NOT NULL DEFAULT 0 CHECK (total_plays >= 0)
		)
	`

	if _, err := db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate metrics schema: %w", err)
	}

	return nil
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}
