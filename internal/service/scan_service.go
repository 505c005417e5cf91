package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
	"go.uber.org/zap"
)

// ScanResult итог обработки одного скана QR-кода
type ScanResult struct {
	Allowed     bool
	WaitMinutes int
	AdID        int
	Target      string
}

// ScanService интерфейс основного сценария киоска
type ScanService interface {
	// Scan прогоняет скан через cooldown, метрики и выбор пака
	Scan(ctx context.Context, clientKey, override string) (*ScanResult, error)
	// RecordGameResult фиксирует завершённую игру (и победу, если win)
	RecordGameResult(ctx context.Context, win bool) error
	// InspectSelection отдаёт текущий выбор пака без побочных эффектов
	InspectSelection(override string) models.AdSelection
}

// scanService реализация сценария: gate -> метрики -> селектор -> redirect
type scanService struct {
	gate        *CooldownGate
	selector    *AdSelector
	metrics     MetricsProcessor
	gameBaseURL string
	logger      *zap.Logger
	now         func() time.Time
}

// NewScanService собирает сервис сканов. now == nil означает time.Now;
// тесты подставляют свой источник времени.
func NewScanService(
	gate *CooldownGate,
	selector *AdSelector,
	metrics MetricsProcessor,
	gameBaseURL string,
	logger *zap.Logger,
	now func() time.Time,
) (ScanService, error) {
	if _, err := url.Parse(gameBaseURL); err != nil {
		return nil, fmt.Errorf("invalid game base URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	return &scanService{
		gate:        gate,
		selector:    selector,
		metrics:     metrics,
		gameBaseURL: gameBaseURL,
		logger:      logger,
		now:         now,
	}, nil
}

func (s *scanService) Scan(ctx context.Context, clientKey, override string) (*ScanResult, error) {
	now := s.now()

	decision := s.gate.Evaluate(clientKey, now)
	if !decision.Allowed {
		return &ScanResult{
			Allowed:     false,
			WaitMinutes: decision.RemainingMinutes,
		}, nil
	}

	s.gate.Record(clientKey, now)

	// Инкременты асинхронные: отказ хранилища не ломает редирект
	if err := s.metrics.Enqueue(ctx, models.BumpScan, now); err != nil {
		s.logger.Warn("Failed to enqueue scan bump", zap.Error(err))
	}
	if err := s.metrics.Enqueue(ctx, models.BumpRedirect, now); err != nil {
		s.logger.Warn("Failed to enqueue redirect bump", zap.Error(err))
	}

	adID := s.selector.Select(override, now)

	target, err := BuildTarget(s.gameBaseURL, adID, now)
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		Allowed: true,
		AdID:    adID,
		Target:  target,
	}, nil
}

func (s *scanService) RecordGameResult(ctx context.Context, win bool) error {
	now := s.now()

	if err := s.metrics.Enqueue(ctx, models.BumpPlay, now); err != nil {
		return err
	}
	if win {
		if err := s.metrics.Enqueue(ctx, models.BumpWin, now); err != nil {
			return err
		}
	}

	return nil
}

func (s *scanService) InspectSelection(override string) models.AdSelection {
	return s.selector.Current(override, s.now())
}
