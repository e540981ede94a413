package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port          string        `validate:"required,numeric"`
	LogLevel      string        `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	DataDir       string        `validate:"required"`
	DefaultReport string        `validate:"required"`
	Preload       bool
	SinkURL       string        `validate:"omitempty,url"`
	SinkSecret    string        `validate:"required_with=SinkURL"`
	HTTPTimeout   time.Duration `validate:"gt=0"`
	RetryAttempts int           `validate:"gte=1,lte=10"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	retryAttempts, err := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_ATTEMPTS: %w", err)
	}
	preload, err := strconv.ParseBool(getEnv("PRELOAD", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRELOAD: %w", err)
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DataDir:       getEnv("DATA_DIR", "data"),
		DefaultReport: getEnv("DEFAULT_REPORT", "URL Report"),
		Preload:       preload,
		SinkURL:       os.Getenv("SINK_URL"),
		SinkSecret:    os.Getenv("SINK_SECRET"),
		HTTPTimeout:   timeout,
		RetryAttempts: retryAttempts,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags above.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
