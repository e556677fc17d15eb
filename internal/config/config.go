package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	LogLevel   string

	// DataDir holds users.db plus one ledger database per user.
	DataDir string

	GeminiAPIKey string
	GeminiModel  string
	LLMTimeout   time.Duration

	// MaxChatHistory caps the stored conversation turns per user.
	MaxChatHistory int
	// RecentTxLimit is how many recent transactions the prompt includes.
	RecentTxLimit int
}

func Load() *Config {
	// Missing .env is fine; environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DataDir:        getEnv("DATA_DIR", "./user_dbs"),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTimeout:     getDuration("LLM_TIMEOUT", 60*time.Second),
		MaxChatHistory: getInt("MAX_CHAT_HISTORY", 50),
		RecentTxLimit:  getInt("RECENT_TX_LIMIT", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
		slog.Warn("Invalid integer in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", value)
	}
	return defaultValue
}
