package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	BotToken      string
	ClientID      string
	ClientSecret  string
	APIBaseURL    string
	AlarmBotToken string
	AlarmChatID   int64
	Redis         RedisConfig
}

// RedisConfig holds session store connection settings
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		ClientID:      os.Getenv("CLIENT_ID"),
		ClientSecret:  os.Getenv("CLIENT_SECRET"),
		APIBaseURL:    getEnv("MOLTIN_BASE_URL", "https://api.moltin.com"),
		AlarmBotToken: os.Getenv("ALARM_BOT_TOKEN"),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("CLIENT_ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("CLIENT_SECRET is required")
	}
	if cfg.AlarmBotToken == "" {
		return nil, fmt.Errorf("ALARM_BOT_TOKEN is required")
	}

	alarmChatID := os.Getenv("ALARM_CHAT_ID")
	if alarmChatID == "" {
		return nil, fmt.Errorf("ALARM_CHAT_ID is required")
	}
	chatID, err := strconv.ParseInt(alarmChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ALARM_CHAT_ID must be an integer: %w", err)
	}
	cfg.AlarmChatID = chatID

	redisDB := getEnv("REDIS_DB", "0")
	db, err := strconv.Atoi(redisDB)
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}
	cfg.Redis.DB = db

	return cfg, nil
}

// RedisAddr returns the session store address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
