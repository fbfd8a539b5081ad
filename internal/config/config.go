package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SendGridAPIKey    string
	SendGridFromEmail string

	StaleThreshold time.Duration

	TriggerJWTSecret string

	TelegramBotToken     string
	TelegramReportChatID int64

	LogLevel string
}

// Load reads the configuration from the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file loaded")
	}

	staleHours, err := getEnvInt("STALE_HOURS", int(StaleThreshold/time.Hour))
	if err != nil {
		return nil, err
	}
	if staleHours <= 0 {
		return nil, fmt.Errorf("STALE_HOURS must be positive, got %d", staleHours)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	var chatID int64
	if raw := getEnv("TELEGRAM_REPORT_CHAT_ID", ""); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_REPORT_CHAT_ID: %w", err)
		}
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DBDSN:                databaseDSN(),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              redisDB,
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:    getEnv("SENDGRID_FROM_EMAIL", ""),
		StaleThreshold:       time.Duration(staleHours) * time.Hour,
		TriggerJWTSecret:     getEnv("TRIGGER_JWT_SECRET", ""),
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramReportChatID: chatID,
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}, nil
}

// EmailEnabled reports whether both SendGrid credentials are present.
func (c *Config) EmailEnabled() bool {
	return c.SendGridAPIKey != "" && c.SendGridFromEmail != ""
}

func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramReportChatID != 0
}

// databaseDSN prefers DB_DSN and falls back to the discrete DB_* variables.
func databaseDSN() string {
	if dsn := getEnv("DB_DSN", ""); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "user"),
		getEnv("DB_PASSWORD", "password"),
		getEnv("DB_NAME", "goalkeeperdb"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
