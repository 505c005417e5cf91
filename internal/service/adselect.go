package service

import (
	"strconv"
	"time"

	"github.com/promokiosk/qr-redirector/internal/config"
	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/promokiosk/qr-redirector/internal/models"
)

// Префикс метки пака в итоговом URL: pack3, pack7 и т.д.
const PackPrefix = "pack"

// AdSelector выбирает рекламный пак для редиректа. Чистая функция от
// (override, now, конфиг): либо принудительно заданный пак, либо ротация по
// дню недели в фиксированной таймзоне. Валидный per-request override
// перекрывает оба режима.
type AdSelector struct {
	mode     string
	forced   int
	rotation [7]int
	clock    *dayclock.Clock
}

func NewAdSelector(cfg config.KioskConfig, clock *dayclock.Clock) *AdSelector {
	return &AdSelector{
		mode:     cfg.AdMode,
		forced:   cfg.AdForced,
		rotation: cfg.AdRotation,
		clock:    clock,
	}
}

// Select возвращает идентификатор пака для скана в момент now. Невалидный
// или пустой override молча игнорируется - клиент никогда не видит ошибку
// валидации.
func (s *AdSelector) Select(override string, now time.Time) int {
	if id, ok := parseAdID(override); ok {
		return id
	}

	if s.mode == "rotation" {
		return s.rotation[s.clock.Weekday(now)]
	}

	return s.forced
}

// Current отдаёт текущий выбор вместе с режимом - для инспекции через админку
func (s *AdSelector) Current(override string, now time.Time) models.AdSelection {
	id := s.Select(override, now)
	return models.AdSelection{
		AdID: id,
		Pack: PackPrefix + strconv.Itoa(id),
		Mode: s.mode,
	}
}

// parseAdID принимает только значение из закрытого домена паков
func parseAdID(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < config.AdIDMin || id > config.AdIDMax {
		return 0, false
	}
	return id, true
}
