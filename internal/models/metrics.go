package models

import (
	"time"
)

// MetricsDay агрегированные счётчики за один календарный день киоска
type MetricsDay struct {
	Day        string `json:"day"`
	QRScans    int64  `json:"qr_scans"`
	Redirects  int64  `json:"redirects"`
	GameWins   int64  `json:"game_wins"`
	TotalPlays int64  `json:"total_plays"`
}

// MetricsSnapshot формат локального файла-снапшота: таймзона + дни
type MetricsSnapshot struct {
	Timezone string                `json:"timezone"`
	Days     map[string]MetricsDay `json:"days"`
}

// BumpKind определяет, какой счётчик MetricsDay инкрементируется
type BumpKind int

const (
	BumpScan BumpKind = iota
	BumpRedirect
	BumpWin
	BumpPlay
)

func (k BumpKind) String() string {
	switch k {
	case BumpScan:
		return "qr_scans"
	case BumpRedirect:
		return "redirects"
	case BumpWin:
		return "game_wins"
	case BumpPlay:
		return "total_plays"
	default:
		return "unknown"
	}
}

// BumpEvent событие инкремента, отправляемое в пул воркеров метрик
type BumpEvent struct {
	Kind BumpKind
	At   time.Time
}

// ScanDecision результат проверки cooldown для клиента
type ScanDecision struct {
	Allowed          bool `json:"allowed"`
	RemainingMinutes int  `json:"remaining_minutes"`
}

// AdSelection текущий выбор рекламного пака (для инспекции через админку)
type AdSelection struct {
	AdID int    `json:"ad_id"`
	Pack string `json:"pack"`
	Mode string `json:"mode"`
}
