package repository

import (
	"context"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
	"go.uber.org/zap"
)

// HybridMetricsStore комбинирует удалённый/реляционный primary с локальным
// файловым хранилищем. Сканы и редиректы пишутся в оба, счётчики игры -
// только в primary. Чтение идёт из primary, при ошибке или пустом ответе
// отдаётся локальный снапшот. Расхождение двух хранилищ при недоступном
// primary принимается и не сверяется.
type HybridMetricsStore struct {
	primary MetricsStore
	local   *FileMetricsStore
	logger  *zap.Logger
}

func NewHybridMetricsStore(primary MetricsStore, local *FileMetricsStore, logger *zap.Logger) *HybridMetricsStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridMetricsStore{
		primary: primary,
		local:   local,
		logger:  logger,
	}
}

func (s *HybridMetricsStore) BumpScan(ctx context.Context, at time.Time) error {
	if err := s.local.BumpScan(ctx, at); err != nil {
		s.logger.Warn("Local scan bump failed", zap.Error(err))
	}
	if err := s.primary.BumpScan(ctx, at); err != nil {
		s.logger.Warn("Primary scan bump failed", zap.Error(err))
	}
	return nil
}

func (s *HybridMetricsStore) BumpRedirect(ctx context.Context, at time.Time) error {
	if err := s.local.BumpRedirect(ctx, at); err != nil {
		s.logger.Warn("Local redirect bump failed", zap.Error(err))
	}
	if err := s.primary.BumpRedirect(ctx, at); err != nil {
		s.logger.Warn("Primary redirect bump failed", zap.Error(err))
	}
	return nil
}

func (s *HybridMetricsStore) BumpWin(ctx context.Context, at time.Time) error {
	if err := s.primary.BumpWin(ctx, at); err != nil {
		s.logger.Warn("Primary win bump failed", zap.Error(err))
	}
	return nil
}

func (s *HybridMetricsStore) BumpPlay(ctx context.Context, at time.Time) error {
	if err := s.primary.BumpPlay(ctx, at); err != nil {
		s.logger.Warn("Primary play bump failed", zap.Error(err))
	}
	return nil
}

func (s *HybridMetricsStore) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	days, err := s.primary.GetMetrics(ctx)
	if err == nil && len(days) > 0 {
		return days, nil
	}
	if err != nil {
		s.logger.Warn("Primary metrics read failed, falling back to local", zap.Error(err))
	}

	days, err = s.local.GetMetrics(ctx)
	if err != nil {
		s.logger.Error("Local metrics read failed", zap.Error(err))
		return map[string]models.MetricsDay{}, nil
	}

	return days, nil
}

func (s *HybridMetricsStore) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	rows, err := s.primary.GetMetricsRows(ctx)
	if err == nil && len(rows) > 0 {
		return rows, nil
	}
	if err != nil {
		s.logger.Warn("Primary metrics read failed, falling back to local", zap.Error(err))
	}

	rows, err = s.local.GetMetricsRows(ctx)
	if err != nil {
		s.logger.Error("Local metrics read failed", zap.Error(err))
		return []models.MetricsDay{}, nil
	}

	return rows, nil
}
