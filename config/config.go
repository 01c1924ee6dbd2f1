package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	DBDriver    string // sqlite | postgres
	DataDir     string
	DatabaseURL string

	PollInterval    time.Duration // период опроса планировщика
	DueSkew         time.Duration // допуск при выборке наступивших напоминаний
	DateGrace       time.Duration // окно, в котором время "сегодня" ещё не считается прошедшим
	DeliveryTimeout time.Duration // ограничение на одну отправку уведомления

	Location    *time.Location
	HTTPAddr    string // по умолчанию только loopback
	ExportToken string // bearer-токен выгрузки CSV по HTTP; пустой отключает маршрут
	LogLevel    string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: getenv("TELEGRAM_TOKEN", ""),
		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DataDir:       getenv("DATA_DIR", "./data"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		ExportToken:   getenv("EXPORT_TOKEN", ""),
	}
	if _, ok := os.LookupEnv("HTTP_ADDR"); !ok {
		cfg.HTTPAddr = "127.0.0.1:8080"
	}

	var err error
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", 3*time.Second); err != nil {
		return nil, err
	}
	if cfg.DueSkew, err = getDuration("DUE_SKEW", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DateGrace, err = getDuration("DATE_GRACE", time.Minute); err != nil {
		return nil, err
	}
	if cfg.DeliveryTimeout, err = getDuration("DELIVERY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive")
	}

	cfg.Location, err = time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	switch cfg.DBDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
