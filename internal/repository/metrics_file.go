package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/models"
)

// FileMetricsStore локальное хранилище метрик: карта дней в памяти,
// снапшот на диске. Снапшот переписывается целиком на каждой мутации и
// перечитывается при старте, так что счётчики переживают рестарт процесса.
// Кросс-процессной блокировки нет - файл принадлежит одному процессу.
type FileMetricsStore struct {
	mu    sync.Mutex
	path  string
	clock *dayclock.Clock
	days  map[string]models.MetricsDay
}

func NewFileMetricsStore(path string, clock *dayclock.Clock) (*FileMetricsStore, error) {
	s := &FileMetricsStore{
		path:  path,
		clock: clock,
		days:  make(map[string]models.MetricsDay),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileMetricsStore) BumpScan(ctx context.Context, at time.Time) error {
	return s.bump(models.BumpScan, at)
}

func (s *FileMetricsStore) BumpRedirect(ctx context.Context, at time.Time) error {
	return s.bump(models.BumpRedirect, at)
}

func (s *FileMetricsStore) BumpWin(ctx context.Context, at time.Time) error {
	return s.bump(models.BumpWin, at)
}

func (s *FileMetricsStore) BumpPlay(ctx context.Context, at time.Time) error {
	return s.bump(models.BumpPlay, at)
}

// bump инкрементирует счётчик и сразу пишет снапшот. Мьютекс держится на
// всём read-modify-write вместе с записью файла: один писатель, потерянных
// инкрементов нет.
func (s *FileMetricsStore) bump(kind models.BumpKind, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.clock.Key(at)
	day, ok := s.days[key]
	if !ok {
		day = models.MetricsDay{Day: key}
	}
	applyBump(&day, kind)
	s.days[key] = day

	return s.save()
}

func (s *FileMetricsStore) GetMetrics(ctx context.Context) (map[string]models.MetricsDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Копия, чтобы вызывающий не трогал внутреннюю карту
	snapshot := make(map[string]models.MetricsDay, len(s.days))
	for key, day := range s.days {
		snapshot[key] = day
	}

	return snapshot, nil
}

func (s *FileMetricsStore) GetMetricsRows(ctx context.Context) ([]models.MetricsDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return sortRows(s.days), nil
}

// load перечитывает снапшот при старте; отсутствующий файл - пустое хранилище
func (s *FileMetricsStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read metrics snapshot: %w", err)
	}

	var snapshot models.MetricsSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to parse metrics snapshot: %w", err)
	}

	if snapshot.Days != nil {
		s.days = snapshot.Days
	}

	return nil
}

// save пишет снапшот атомарно: временный файл + rename, чтобы падение
// процесса посреди записи не оставило битый JSON
func (s *FileMetricsStore) save() error {
	snapshot := models.MetricsSnapshot{
		Timezone: s.clock.Timezone(),
		Days:     s.days,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metrics snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace metrics snapshot: %w", err)
	}

	return nil
}
