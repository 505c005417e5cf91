package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/promokiosk/qr-redirector/internal/service"
	"github.com/stretchr/testify/assert"
)

var cooldownBase = time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

// TestCooldownGate_FirstScanAllowed проверяет, что незнакомый клиент проходит
func TestCooldownGate_FirstScanAllowed(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)

	decision := gate.Evaluate("client-a", cooldownBase)

	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RemainingMinutes)
}

// TestCooldownGate_DeniedWithinWindow проверяет отказ внутри окна с остатком
// в целых минутах
func TestCooldownGate_DeniedWithinWindow(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)

	decision := gate.Evaluate("client-a", cooldownBase.Add(5*time.Minute))

	assert.False(t, decision.Allowed)
	assert.Equal(t, 10, decision.RemainingMinutes)
}

// TestCooldownGate_RemainingRoundsUp проверяет округление остатка вверх:
// 30 оставшихся секунд - это ещё одна минута ожидания
func TestCooldownGate_RemainingRoundsUp(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)

	decision := gate.Evaluate("client-a", cooldownBase.Add(14*time.Minute+30*time.Second))

	assert.False(t, decision.Allowed)
	assert.Equal(t, 1, decision.RemainingMinutes)
}

// TestCooldownGate_RemainingMonotonic проверяет, что остаток не растёт по
// мере приближения к границе окна
func TestCooldownGate_RemainingMonotonic(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)

	prev := 16
	for minutes := 1; minutes < 15; minutes++ {
		decision := gate.Evaluate("client-a", cooldownBase.Add(time.Duration(minutes)*time.Minute))
		assert.False(t, decision.Allowed)
		assert.LessOrEqual(t, decision.RemainingMinutes, prev,
			"remaining must not increase (minute %d)", minutes)
		prev = decision.RemainingMinutes
	}
}

// TestCooldownGate_AllowedAfterWindow проверяет, что окно открывается ровно
// по истечении cooldown
func TestCooldownGate_AllowedAfterWindow(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)

	assert.True(t, gate.Evaluate("client-a", cooldownBase.Add(15*time.Minute)).Allowed)
	assert.True(t, gate.Evaluate("client-a", cooldownBase.Add(16*time.Minute)).Allowed)
}

// TestCooldownGate_DeniedScanDoesNotRefresh проверяет, что отклонённая
// попытка не продлевает окно: Record зовётся только на разрешённых сканах
func TestCooldownGate_DeniedScanDoesNotRefresh(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)

	// Отклонённые попытки без Record
	assert.False(t, gate.Evaluate("client-a", cooldownBase.Add(5*time.Minute)).Allowed)
	assert.False(t, gate.Evaluate("client-a", cooldownBase.Add(10*time.Minute)).Allowed)

	// Окно отсчитывается от первого Record
	assert.True(t, gate.Evaluate("client-a", cooldownBase.Add(15*time.Minute)).Allowed)
}

// TestCooldownGate_RecordOverwrites проверяет безусловную перезапись отметки
func TestCooldownGate_RecordOverwrites(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("client-a", cooldownBase)
	gate.Record("client-a", cooldownBase.Add(20*time.Minute))

	// Окно идёт от второй отметки
	decision := gate.Evaluate("client-a", cooldownBase.Add(25*time.Minute))
	assert.False(t, decision.Allowed)
	assert.Equal(t, 10, decision.RemainingMinutes)
}

// TestCooldownGate_Eviction проверяет, что записи старше двух окон
// выметаются при любом Record
func TestCooldownGate_Eviction(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)
	gate.Record("stale", cooldownBase)

	// Record другого клиента спустя больше двух окон выметает запись
	gate.Record("fresh", cooldownBase.Add(31*time.Minute))

	assert.Equal(t, 1, gate.Size())
	assert.True(t, gate.Evaluate("stale", cooldownBase.Add(31*time.Minute)).Allowed)
}

// TestCooldownGate_IndependentClients проверяет независимость клиентов
func TestCooldownGate_IndependentClients(t *testing.T) {
	gate := service.NewCooldownGate(15 * time.Minute)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("client-%d", i)
		assert.True(t, gate.Evaluate(key, cooldownBase).Allowed)
		gate.Record(key, cooldownBase)
	}

	assert.Equal(t, 5, gate.Size())
	assert.False(t, gate.Evaluate("client-3", cooldownBase.Add(time.Minute)).Allowed)
}
