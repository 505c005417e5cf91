package mocks

import (
	"context"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
)

// SyncMetricsProcessor implements service.MetricsProcessor but applies bumps
// synchronously, so tests can assert counters right after a request.
type SyncMetricsProcessor struct {
	Store *MockMetricsStore
}

func NewSyncMetricsProcessor(store *MockMetricsStore) *SyncMetricsProcessor {
	return &SyncMetricsProcessor{Store: store}
}

func (p *SyncMetricsProcessor) Start() {}
func (p *SyncMetricsProcessor) Stop()  {}

func (p *SyncMetricsProcessor) Enqueue(ctx context.Context, kind models.BumpKind, at time.Time) error {
	return p.Store.bump(kind, at)
}

func (p *SyncMetricsProcessor) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	return p.Store.GetMetrics(ctx)
}

func (p *SyncMetricsProcessor) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	return p.Store.GetMetricsRows(ctx)
}
