package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
)

// ErrStoreDown simulates an unavailable backend
var ErrStoreDown = errors.New("metrics store unavailable")

// MockMetricsStore implements repository.MetricsStore for testing
type MockMetricsStore struct {
	mu        sync.RWMutex
	days      map[string]models.MetricsDay
	keyOf     func(time.Time) string
	FailBumps bool
	FailReads bool
}

// NewMockMetricsStore builds an in-memory store. keyOf maps a timestamp to
// a day key; nil defaults to UTC "2006-01-02".
func NewMockMetricsStore(keyOf func(time.Time) string) *MockMetricsStore {
	if keyOf == nil {
		keyOf = func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		}
	}
	return &MockMetricsStore{
		days:  make(map[string]models.MetricsDay),
		keyOf: keyOf,
	}
}

func (m *MockMetricsStore) bump(kind models.BumpKind, at time.Time) error {
	if m.FailBumps {
		return ErrStoreDown
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.keyOf(at)
	day, ok := m.days[key]
	if !ok {
		day = models.MetricsDay{Day: key}
	}
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
	m.days[key] = day
	return nil
}

func (m *MockMetricsStore) BumpScan(ctx context.Context, at time.Time) error {
	return m.bump(models.BumpScan, at)
}

func (m *MockMetricsStore) BumpRedirect(ctx context.Context, at time.Time) error {
	return m.bump(models.BumpRedirect, at)
}

func (m *MockMetricsStore) BumpWin(ctx context.Context, at time.Time) error {
	return m.bump(models.BumpWin, at)
}

func (m *MockMetricsStore) BumpPlay(ctx context.Context, at time.Time) error {
	return m.bump(models.BumpPlay, at)
}

func (m *MockMetricsStore) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	if m.FailReads {
		return nil, ErrStoreDown
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]models.MetricsDay, len(m.days))
	for key, day := range m.days {
		snapshot[key] = day
	}
	return snapshot, nil
}

func (m *MockMetricsStore) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	if m.FailReads {
		return nil, ErrStoreDown
	}

	days, _ := m.GetMetrics(ctx)
	rows := make([]models.MetricsDay, 0, len(days))
	for _, day := range days {
		rows = append(rows, day)
	}
	// Простая сортировка по возрастанию ключа дня
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Day < rows[j-1].Day; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows, nil
}

// Day returns the stored record for a day key
func (m *MockMetricsStore) Day(key string) models.MetricsDay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.days[key]
}

func (m *MockMetricsStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days = make(map[string]models.MetricsDay)
}
