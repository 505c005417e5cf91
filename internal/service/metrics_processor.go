package service

import (
	"context"
	"sync"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
	"github.com/promokiosk/qr-redirector/internal/repository"
	"go.uber.org/zap"
)

// Константы worker pool
const (
	defaultWorkerCount   = 3    // Количество воркеров
	defaultChannelBuffer = 1000 // Размер буфера канала
)

// MetricsProcessor интерфейс асинхронной записи метрик. Инкременты уходят в
// буферизованный канал и применяются воркерами, чтобы обработчик запроса
// никогда не ждал хранилище.
type MetricsProcessor interface {
	Start()
	Stop()
	Enqueue(ctx context.Context, kind models.BumpKind, at time.Time) error
	GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error)
	GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error)
}

// metricsProcessor реализация процессора метрик с использованием Worker Pool
type metricsProcessor struct {
	store       repository.MetricsStore
	logger      *zap.Logger
	bumpChannel chan models.BumpEvent
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewMetricsProcessor(store repository.MetricsStore, logger *zap.Logger) MetricsProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &metricsProcessor{
		store:       store,
		logger:      logger,
		bumpChannel: make(chan models.BumpEvent, defaultChannelBuffer),
		workerCount: defaultWorkerCount,
	}
}

// Start запускает worker pool
func (p *metricsProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("Starting metrics workers", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop корректно останавливает worker pool
func (p *metricsProcessor) Stop() {
	p.logger.Info("Stopping metrics processor...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Metrics processor stopped")
}

// worker применяет события инкремента из канала к хранилищу
func (p *metricsProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("Metrics worker started", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("Metrics worker stopped", zap.Int("id", id))
			return

		case event, ok := <-p.bumpChannel:
			if !ok {
				return
			}
			p.processBump(event)
		}
	}
}

// processBump применяет один инкремент. Ошибка хранилища логируется и
// событие теряется: инкременты не ретраятся, запрос киоска от этого не
// страдает.
func (p *metricsProcessor) processBump(event models.BumpEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Second)
	defer cancel()

	var err error
	switch event.Kind {
	case models.BumpScan:
		err = p.store.BumpScan(ctx, event.At)
	case models.BumpRedirect:
		err = p.store.BumpRedirect(ctx, event.At)
	case models.BumpWin:
		err = p.store.BumpWin(ctx, event.At)
	case models.BumpPlay:
		err = p.store.BumpPlay(ctx, event.At)
	}

	if err != nil {
		p.logger.Warn("Metrics bump dropped",
			zap.String("counter", event.Kind.String()),
			zap.Error(err),
		)
	}
}

// Enqueue отправляет событие инкремента в worker pool (неблокирующая операция)
func (p *metricsProcessor) Enqueue(ctx context.Context, kind models.BumpKind, at time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.bumpChannel <- models.BumpEvent{Kind: kind, At: at}:
		return nil
	default:
		// Канал заполнен: предупреждаем и теряем событие, но не блокируем запрос
		p.logger.Warn("Metrics buffer full, event dropped",
			zap.String("counter", kind.String()),
		)
		return nil
	}
}

func (p *metricsProcessor) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	return p.store.GetMetrics(ctx)
}

func (p *metricsProcessor) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	return p.store.GetMetricsRows(ctx)
}
