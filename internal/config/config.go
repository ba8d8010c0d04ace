package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv   string
	Debug    bool
	Version  string
	BotToken string

	DatabasePath string
	SentryDSN    string

	DefaultLanguage string

	// MediaGroupQuietPeriod is the quiet window after which an album is
	// considered complete. An attachment arriving later than this after
	// its siblings is lost; see the broadcast package.
	MediaGroupQuietPeriod time.Duration

	ChannelsPerPage int
}

// LoadConfig loads configuration from environment variables.
// It attempts to load a .env file if present but prioritizes
// actual environment variables set in the system (e.g., by Docker).
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	quietSeconds, err := strconv.Atoi(getEnv("MEDIA_GROUP_QUIET_PERIOD", "3"))
	if err != nil || quietSeconds <= 0 {
		return nil, fmt.Errorf("invalid MEDIA_GROUP_QUIET_PERIOD: %q", getEnv("MEDIA_GROUP_QUIET_PERIOD", "3"))
	}

	perPage, err := strconv.Atoi(getEnv("CHANNELS_PER_PAGE", "20"))
	if err != nil || perPage <= 0 {
		return nil, fmt.Errorf("invalid CHANNELS_PER_PAGE: %q", getEnv("CHANNELS_PER_PAGE", "20"))
	}

	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Debug:                 debug,
		Version:               getEnv("VERSION", "dev"),
		BotToken:              getEnv("TELEGRAM_BOT_TOKEN", ""),
		DatabasePath:          getEnv("DATABASE_PATH", "multipost.db"),
		SentryDSN:             getEnv("SENTRY_DSN", ""),
		DefaultLanguage:       getEnv("DEFAULT_LANGUAGE", "ru"),
		MediaGroupQuietPeriod: time.Duration(quietSeconds) * time.Second,
		ChannelsPerPage:       perPage,
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
