package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable with STORAGE_BACKEND
const (
	BackendFile       = "file"
	BackendClickHouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config holds the application configuration
type Config struct {
	Port        string
	LogLevel    string
	ServiceName string
	CORSOrigin  string

	StorageBackend string
	DataFile       string

	// ClickHouse configuration
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool
	ClickHouseDocument string

	// Telegram staff bot, disabled when the token is empty
	TelegramToken  string
	AllowedUserIDs []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	NotifyChatID          int64
	OverdueDigestInterval time.Duration
}

// BotEnabled reports whether the Telegram bot should run
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{
		Port:        getenv("PORT", "8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		ServiceName: getenv("SERVICE_NAME", "bookshop"),
		CORSOrigin:  getenv("CORS_ORIGIN", "http://localhost:5173"),
		DataFile:    getenv("DATA_FILE", "data/database.json"),
	}

	config.StorageBackend = strings.ToLower(getenv("STORAGE_BACKEND", BackendFile))
	switch config.StorageBackend {
	case BackendFile, BackendMemory:
	case BackendClickHouse:
		if err := loadClickHouse(config); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %s. must be one of file, clickhouse, memory", config.StorageBackend)
	}

	if err := loadTelegram(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadClickHouse(config *Config) error {
	config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
	if config.ClickHouseHost == "" {
		return fmt.Errorf("CLICKHOUSE_HOST is required when STORAGE_BACKEND is clickhouse")
	}

	portStr := os.Getenv("CLICKHOUSE_PORT")
	if portStr == "" {
		config.ClickHousePort = 9000 // Default ClickHouse native port
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
		}
		config.ClickHousePort = port
	}

	config.ClickHouseDatabase = getenv("CLICKHOUSE_DATABASE", "default")
	config.ClickHouseUser = getenv("CLICKHOUSE_USER", "default")

	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	// Password is optional, can be empty

	config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	config.ClickHouseDocument = getenv("CLICKHOUSE_DOCUMENT", "bookshop")
	return nil
}

func loadTelegram(config *Config) error {
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil
	}

	// Allowed User IDs (required with a token)
	allowedIDsStr := os.Getenv("ALLOWED_USER_IDS")
	if allowedIDsStr == "" {
		return fmt.Errorf("ALLOWED_USER_IDS is required when TELEGRAM_BOT_TOKEN is set (comma-separated list of Telegram user IDs)")
	}

	idStrs := strings.Split(allowedIDsStr, ",")
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user ID in ALLOWED_USER_IDS: %s", idStr)
		}
		config.AllowedUserIDs = append(config.AllowedUserIDs, id)
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	if chatStr := os.Getenv("NOTIFY_CHAT_ID"); chatStr != "" {
		chatID, err := strconv.ParseInt(chatStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}
		config.NotifyChatID = chatID
	}

	interval, err := time.ParseDuration(getenv("OVERDUE_DIGEST_INTERVAL", "24h"))
	if err != nil {
		return fmt.Errorf("invalid OVERDUE_DIGEST_INTERVAL: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("OVERDUE_DIGEST_INTERVAL must be positive")
	}
	config.OverdueDigestInterval = interval

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
