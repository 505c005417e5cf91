package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Допустимый диапазон идентификаторов рекламных паков
const (
	AdIDMin = 1
	AdIDMax = 8
)

type Config struct {
	App       AppConfig
	Kiosk     KioskConfig
	Storage   StorageConfig
	DB        DBConfig
	Redis     RedisConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port string
	// Внешний адрес сервиса - его кодирует QR на постере
	PublicBaseURL string
}

type KioskConfig struct {
	Timezone    string
	Cooldown    time.Duration
	GameBaseURL string
	AdMode      string // "forced" или "rotation"
	AdForced    int
	AdRotation  [7]int // воскресенье..суббота -> AdID
}

type StorageConfig struct {
	Backend     string // file | redis | postgres | hybrid
	MetricsFile string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type AdminConfig struct {
	Key string // пустой ключ = админка без аутентификации
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	cfg.App.PublicBaseURL = viper.GetString("PUBLIC_BASE_URL")
	if cfg.App.PublicBaseURL == "" {
		cfg.App.PublicBaseURL = "http://localhost:" + cfg.App.Port
	}

	cfg.Kiosk.Timezone = viper.GetString("TIMEZONE")
	if cfg.Kiosk.Timezone == "" {
		cfg.Kiosk.Timezone = "Europe/Madrid"
	}

	cooldownMinutes := viper.GetInt("COOLDOWN_MINUTES")
	if cooldownMinutes <= 0 {
		cooldownMinutes = 15
	}
	cfg.Kiosk.Cooldown = time.Duration(cooldownMinutes) * time.Minute

	cfg.Kiosk.GameBaseURL = viper.GetString("GAME_BASE_URL")
	if cfg.Kiosk.GameBaseURL == "" {
		return nil, fmt.Errorf("GAME_BASE_URL is required")
	}

	cfg.Kiosk.AdMode = viper.GetString("AD_MODE")
	if cfg.Kiosk.AdMode == "" {
		cfg.Kiosk.AdMode = "forced"
	}
	if cfg.Kiosk.AdMode != "forced" && cfg.Kiosk.AdMode != "rotation" {
		return nil, fmt.Errorf("invalid AD_MODE: %q", cfg.Kiosk.AdMode)
	}

	cfg.Kiosk.AdForced = viper.GetInt("AD_FORCED")
	if cfg.Kiosk.AdForced == 0 {
		cfg.Kiosk.AdForced = AdIDMin
	}
	if cfg.Kiosk.AdForced < AdIDMin || cfg.Kiosk.AdForced > AdIDMax {
		return nil, fmt.Errorf("AD_FORCED out of range [%d..%d]: %d", AdIDMin, AdIDMax, cfg.Kiosk.AdForced)
	}

	// Таблица ротации - 7 значений через запятую, начиная с воскресенья
	rotation, err := parseRotation(viper.GetString("AD_ROTATION"))
	if err != nil {
		return nil, err
	}
	cfg.Kiosk.AdRotation = rotation

	cfg.Storage.Backend = viper.GetString("STORAGE_BACKEND")
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	switch cfg.Storage.Backend {
	case "file", "redis", "postgres", "hybrid":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", cfg.Storage.Backend)
	}
	cfg.Storage.MetricsFile = viper.GetString("METRICS_FILE")
	if cfg.Storage.MetricsFile == "" {
		cfg.Storage.MetricsFile = "metrics.json"
	}

	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")

	cfg.Admin.Key = viper.GetString("ADMIN_KEY")

	// Rate limit config
	cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = viper.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 20
	}

	return &cfg, nil
}

// parseRotation parses the comma-separated weekday rotation table.
// Format: "3,1,2,2,4,5,5" (Sunday first). Empty input fills the table
// with the minimum AdID so rotation mode always has a total mapping.
func parseRotation(raw string) ([7]int, error) {
	var rotation [7]int
	if raw == "" {
		for i := range rotation {
			rotation[i] = AdIDMin
		}
		return rotation, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 7 {
		return rotation, fmt.Errorf("AD_ROTATION must have 7 values, got %d", len(parts))
	}
	for i, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id < AdIDMin || id > AdIDMax {
			return rotation, fmt.Errorf("AD_ROTATION entry %d is not a valid ad id: %q", i, part)
		}
		rotation[i] = id
	}

	return rotation, nil
}
