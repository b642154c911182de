package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/league-bot/storage"
)

const (
	defaultServerPort        = 8080
	defaultAutoFinishAfter   = 2 * time.Hour
	defaultSpectatorTokenTTL = 12 * time.Hour
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	BotToken      string
	WebhookURL    string // пусто: long polling
	WebhookSecret string

	ServerPort    int
	PublicBaseURL string

	AutoFinishAfter time.Duration
	CatalogPath     string

	DatabaseURL string // пусто: архив результатов отключён

	JWTSecretKey      string // пусто: ссылки для зрителей отключены
	SpectatorTokenTTL time.Duration

	R2 storage.CloudflareR2UploaderConfig

	CORSAllowedOrigins []string
	LogLevel           slog.Level
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load() // отсутствие .env не ошибка
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BotToken:      getenv("BOT_TOKEN"),
		WebhookURL:    getenv("TELEGRAM_WEBHOOK_URL"),
		WebhookSecret: getenv("TELEGRAM_WEBHOOK_SECRET"),
		PublicBaseURL: strings.TrimRight(getenv("PUBLIC_BASE_URL"), "/"),
		CatalogPath:   getenv("TEAM_CATALOG_PATH"),
		DatabaseURL:   getenv("DATABASE_URL"),
		JWTSecretKey:  getenv("JWT_SECRET_KEY"),
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
		},
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is not set")
	}

	port, err := intOrDefault(getenv("SERVER_PORT"), defaultServerPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if cfg.AutoFinishAfter, err = durationOrDefault(getenv("AUTO_FINISH_AFTER"), defaultAutoFinishAfter); err != nil {
		return nil, fmt.Errorf("invalid AUTO_FINISH_AFTER environment variable: %w", err)
	}
	if cfg.SpectatorTokenTTL, err = durationOrDefault(getenv("SPECTATOR_TOKEN_TTL"), defaultSpectatorTokenTTL); err != nil {
		return nil, fmt.Errorf("invalid SPECTATOR_TOKEN_TTL environment variable: %w", err)
	}

	if cfg.WebhookURL != "" && cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_SECRET is required when TELEGRAM_WEBHOOK_URL is set")
	}
	if cfg.JWTSecretKey != "" && cfg.PublicBaseURL == "" {
		return nil, fmt.Errorf("PUBLIC_BASE_URL is required when JWT_SECRET_KEY is set")
	}

	if lvl := getenv("LOG_LEVEL"); lvl != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	return cfg, nil
}

// WebhookEnabled reports whether updates arrive via webhook instead of long polling.
func (c *Config) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

func (c *Config) SpectatorLinksEnabled() bool {
	return c.JWTSecretKey != ""
}

func intOrDefault(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func durationOrDefault(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", d)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
