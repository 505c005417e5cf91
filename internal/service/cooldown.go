package service

import (
	"sync"
	"time"

	"github.com/promokiosk/qr-redirector/internal/models"
)

// CooldownGate отсекает повторные сканы одного клиента внутри окна cooldown.
// Состояние только в памяти: ключ клиента -> время последнего засчитанного
// скана. Никакого I/O, поэтому Evaluate/Record не возвращают ошибок.
type CooldownGate struct {
	mu      sync.Mutex
	window  time.Duration
	lastHit map[string]time.Time
}

func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{
		window:  window,
		lastHit: make(map[string]time.Time),
	}
}

// Evaluate проверяет, можно ли засчитать скан клиента сейчас. Остаток окна
// округляется вверх до целых минут - одно правило округления на весь сервис.
// Разрешённый скан нужно подтвердить вызовом Record.
func (g *CooldownGate) Evaluate(clientKey string, now time.Time) models.ScanDecision {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastHit[clientKey]
	if !ok {
		return models.ScanDecision{Allowed: true}
	}

	elapsed := now.Sub(last)
	if elapsed >= g.window {
		return models.ScanDecision{Allowed: true}
	}

	remaining := g.window - elapsed
	return models.ScanDecision{
		Allowed:          false,
		RemainingMinutes: int((remaining + time.Minute - 1) / time.Minute),
	}
}

// Record безусловно перезаписывает отметку клиента текущим временем и попутно
// выметает записи старше двух окон. Уборка амортизирована записью: отдельного
// таймера нет, память ограничена активными клиентами при живом трафике.
func (g *CooldownGate) Record(clientKey string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastHit[clientKey] = now

	for key, last := range g.lastHit {
		if now.Sub(last) > 2*g.window {
			delete(g.lastHit, key)
		}
	}
}

// Size возвращает число отслеживаемых клиентов (для тестов и health)
func (g *CooldownGate) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.lastHit)
}
