package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	NatsURL       string
	NatsToken     string
	DatabaseURL   string
	SQLitePath    string
	LogLevel      string
	LogFormat     string
	LogFile       string
	Profile       string
	ProfileFile   string
	Workers       int
	APIToken      string
	SlackBotToken string
	SlackChannel  string
}

func Load() Config {
	return Config{
		Port:          envInt("RESCUE_PORT", 8760),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		DatabaseURL:   envStr("DATABASE_URL", ""),
		SQLitePath:    envStr("SQLITE_PATH", ""),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		LogFormat:     envStr("LOG_FORMAT", ""),
		LogFile:       envStr("LOG_FILE", ""),
		Profile:       envStr("RESCUE_PROFILE", "rescue"),
		ProfileFile:   envStr("RESCUE_PROFILE_FILE", ""),
		Workers:       envInt("RESCUE_WORKERS", 4),
		APIToken:      envStr("RESCUE_API_TOKEN", ""),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
