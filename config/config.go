package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultDownloadDir = "downloads"

type Config struct {
	ApiURL      string
	AccessKey   string
	SecretKey   string
	BucketName  string
	Region      string
	DownloadDir string
	LogLevel    slog.Level
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables only")
	}

	config := &Config{
		ApiURL:      getEnv("API_URL", ""),
		AccessKey:   getEnv("ACCESS_KEY", ""),
		SecretKey:   getEnv("SECRET_KEY", ""),
		BucketName:  getEnv("BUCKET_NAME", ""),
		Region:      getEnv("REGION", ""),
		DownloadDir: getEnv("DOWNLOAD_DIR", DefaultDownloadDir),
		LogLevel:    parseLevel(getEnv("LOG_LEVEL", "info")),
	}

	return config, nil
}

// Validate checks the settings every remote command needs.
func (c *Config) Validate() error {
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.New("ACCESS_KEY and SECRET_KEY must be set together")
	}
	if c.Region == "" && c.ApiURL == "" {
		return errors.New("REGION is required when API_URL is not set")
	}
	return nil
}

// RequireBucket is Validate plus a bucket name check.
func (c *Config) RequireBucket() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BucketName == "" {
		return errors.New("bucket name is required (BUCKET_NAME or --bucket)")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
