package dayclock_test

import (
	"testing"
	"time"

	"github.com/promokiosk/qr-redirector/internal/dayclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClock_Key проверяет формат ключа дня в фиксированной таймзоне
func TestClock_Key(t *testing.T) {
	clock, err := dayclock.New("Europe/Madrid")
	require.NoError(t, err)

	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-20", clock.Key(at))
}

// TestClock_Key_MidnightBoundary проверяет, что день считается в таймзоне
// часов, а не в UTC: поздний вечер UTC в Мадриде уже следующий день
func TestClock_Key_MidnightBoundary(t *testing.T) {
	clock, err := dayclock.New("Europe/Madrid")
	require.NoError(t, err)

	// Мадрид зимой UTC+1: 23:30 UTC = 00:30 следующего дня
	at := time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-02", clock.Key(at))
}

// TestClock_Weekday проверяет день недели в таймзоне часов
func TestClock_Weekday(t *testing.T) {
	clock, err := dayclock.New("Europe/Madrid")
	require.NoError(t, err)

	// 23 августа 2026 - воскресенье
	sundayNoon := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Sunday, clock.Weekday(sundayNoon))

	// Мадрид летом UTC+2: 22:30 UTC воскресенья - уже понедельник
	lateSunday := time.Date(2026, 8, 23, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Monday, clock.Weekday(lateSunday))
}

// TestClock_Timezone проверяет, что часы помнят исходный идентификатор
func TestClock_Timezone(t *testing.T) {
	clock, err := dayclock.New("UTC")
	require.NoError(t, err)
	assert.Equal(t, "UTC", clock.Timezone())
}

// TestClock_InvalidTimezone проверяет отказ на неизвестной таймзоне
func TestClock_InvalidTimezone(t *testing.T) {
	_, err := dayclock.New("Mars/Olympus")
	assert.Error(t, err)
}
