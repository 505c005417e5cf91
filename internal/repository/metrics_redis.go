package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	dayKeyPrefix = "metrics:day:"
	dayIndexKey  = "metrics:days"
)

// RedisMetricsStore удалённое хранилище метрик: hash на день, счётчики
// инкрементируются через HINCRBY атомарно на стороне сервера. Ключи дней
// индексируются в множестве, чтобы снапшот не требовал SCAN.
type RedisMetricsStore struct {
	redis *RedisDB
	clock *dayclock.Clock
}

func NewRedisMetricsStore(redis *RedisDB, clock *dayclock.Clock) *RedisMetricsStore {
	return &RedisMetricsStore{redis: redis, clock: clock}
}

func (s *RedisMetricsStore) BumpScan(ctx context.Context, at time.Time) error {
	return s.bump(ctx, models.BumpScan, at)
}

func (s *RedisMetricsStore) BumpRedirect(ctx context.Context, at time.Time) error {
	return s.bump(ctx, models.BumpRedirect, at)
}

func (s *RedisMetricsStore) BumpWin(ctx context.Context, at time.Time) error {
	return s.bump(ctx, models.BumpWin, at)
}

func (s *RedisMetricsStore) BumpPlay(ctx context.Context, at time.Time) error {
	return s.bump(ctx, models.BumpPlay, at)
}

func (s *RedisMetricsStore) bump(ctx context.Context, kind models.BumpKind, at time.Time) error {
	key := s.clock.Key(at)

	_, err := s.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, dayIndexKey, key)
		pipe.HIncrBy(ctx, dayKeyPrefix+key, kind.String(), 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to bump %s for %s: %w", kind, key, err)
	}

	return nil
}

func (s *RedisMetricsStore) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	keys, err := s.redis.Client.SMembers(ctx, dayIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list metric days: %w", err)
	}

	days := make(map[string]models.MetricsDay, len(keys))
	for _, key := range keys {
		fields, err := s.redis.Client.HGetAll(ctx, dayKeyPrefix+key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read metrics for %s: %w", key, err)
		}
		if len(fields) == 0 {
			// Индекс знает про день, а hash уже вычищен - пропускаем
			continue
		}
		days[key] = parseDay(key, fields)
	}

	return days, nil
}

func (s *RedisMetricsStore) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	days, err := s.GetMetrics(ctx)
	if err != nil {
		return nil, err
	}
	return sortRows(days), nil
}

// parseDay собирает запись дня из полей hash; нечисловые значения читаются
// как ноль, а не как ошибка
func parseDay(key string, fields map[string]string) models.MetricsDay {
	counter := func(field string) int64 {
		v, err := strconv.ParseInt(fields[field], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}

	return models.MetricsDay{
		Day:        key,
		QRScans:    counter("qr_scans"),
		Redirects:  counter("redirects"),
		GameWins:   counter("game_wins"),
		TotalPlays: counter("total_plays"),
	}
}
