package dayclock

import (
	"fmt"
	"time"
)

// Формат ключа дня - естественный ключ агрегации метрик
const keyLayout = "2006-01-02"

// Clock переводит момент времени в календарный день одной фиксированной
// таймзоны. Все компоненты (метрики, ротация паков) считают день через него,
// иначе записи вокруг полуночи разъезжаются по разным ключам.
type Clock struct {
	tz  string
	loc *time.Location
}

func New(tz string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &Clock{tz: tz, loc: loc}, nil
}

// Key возвращает ключ дня вида "2006-01-02" в таймзоне часов
func (c *Clock) Key(t time.Time) string {
	return t.In(c.loc).Format(keyLayout)
}

// Weekday возвращает день недели в таймзоне часов
func (c *Clock) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// Timezone возвращает идентификатор IANA, с которым создавались часы
func (c *Clock) Timezone() string {
	return c.tz
}
