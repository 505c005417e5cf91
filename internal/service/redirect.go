package service

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// BuildTarget собирает конечный URL игры: номер пака, метка пака и
// cache-buster в миллисекундах, чтобы киоск-браузер не отдал страницу из
// кэша. Чистая функция; для валидного baseGameURL результат всегда валиден.
func BuildTarget(baseGameURL string, adID int, at time.Time) (string, error) {
	u, err := url.Parse(baseGameURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse game base URL: %w", err)
	}

	q := u.Query()
	q.Set("ad", strconv.Itoa(adID))
	q.Set("pack", PackPrefix+strconv.Itoa(adID))
	q.Set("v", strconv.FormatInt(at.UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
