package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for our application
type Config struct {
	DiscordToken string
	DatabaseDSN  string

	// Text XP
	TextXPMin    int
	TextXPMax    int
	TextCooldown time.Duration

	// Voice XP
	VoiceXPPerMinute int

	// Google Sheets mirror (optional; mirror is disabled when neither
	// SpreadsheetID nor SheetName can be resolved)
	SpreadsheetID   string
	SheetName       string
	GoogleCredsFile string
	GoogleCredsJSON string

	// Guild the sheet bootstrap imports rows into; bootstrap is skipped
	// when empty.
	BootstrapGuildID string

	// Liveness endpoint
	Port string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// .env file is optional, continue with environment variables
	}

	config := &Config{
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		SpreadsheetID:    os.Getenv("SHEET_ID"),
		SheetName:        getEnv("SHEET_NAME", "LevelBotXP"),
		GoogleCredsFile:  os.Getenv("GOOGLE_CREDS_FILE"),
		GoogleCredsJSON:  os.Getenv("GOOGLE_CREDS_JSON"),
		BootstrapGuildID: os.Getenv("BOOTSTRAP_GUILD_ID"),
		Port:             getEnv("PORT", "10000"),
	}

	if config.DiscordToken == "" {
		return nil, &ConfigError{Field: "DISCORD_TOKEN", Message: "DISCORD_TOKEN is required"}
	}

	if config.DatabaseDSN == "" {
		return nil, &ConfigError{Field: "DATABASE_DSN", Message: "DATABASE_DSN is required"}
	}

	var err error
	if config.TextXPMin, err = getEnvInt("TEXT_XP_MIN", 10); err != nil {
		return nil, err
	}
	if config.TextXPMax, err = getEnvInt("TEXT_XP_MAX", 20); err != nil {
		return nil, err
	}
	if config.TextXPMin < 0 || config.TextXPMax < config.TextXPMin {
		return nil, &ConfigError{Field: "TEXT_XP_MIN", Message: "TEXT_XP_MIN/TEXT_XP_MAX must satisfy 0 <= min <= max"}
	}

	cooldownSeconds, err := getEnvInt("TEXT_COOLDOWN_S", 10)
	if err != nil {
		return nil, err
	}
	if cooldownSeconds < 0 {
		return nil, &ConfigError{Field: "TEXT_COOLDOWN_S", Message: "TEXT_COOLDOWN_S must not be negative"}
	}
	config.TextCooldown = time.Duration(cooldownSeconds) * time.Second

	if config.VoiceXPPerMinute, err = getEnvInt("VOICE_XP_PER_MIN", 6); err != nil {
		return nil, err
	}
	if config.VoiceXPPerMinute < 0 {
		return nil, &ConfigError{Field: "VOICE_XP_PER_MIN", Message: "VOICE_XP_PER_MIN must not be negative"}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: fmt.Sprintf("%s must be an integer, got %q", key, v)}
	}
	return n, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
