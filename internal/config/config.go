package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Bank identity (used when no bank blob exists yet)
	BankID      int
	BankName    string
	BankAddress string
	BankPhone   string

	// Persistence
	DataDir       string
	BankBlobName  string
	StoreBlobName string

	// Flush hardening
	SaveMaxRetries     int
	SaveInitialBackoff time.Duration

	// Analytics
	DormantThresholdDays int

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BankID:      getEnvInt("BANK_ID", 1),
		BankName:    getEnv("BANK_NAME", "Bank Nasional"),
		BankAddress: getEnv("BANK_ADDRESS", ""),
		BankPhone:   getEnv("BANK_PHONE", ""),

		DataDir:       getEnv("DATA_DIR", "."),
		BankBlobName:  getEnv("BANK_BLOB", "bank_data.bin"),
		StoreBlobName: getEnv("STORE_BLOB", "store_data.bin"),

		SaveMaxRetries:     getEnvInt("SAVE_MAX_RETRIES", 3),
		SaveInitialBackoff: getEnvDuration("SAVE_INITIAL_BACKOFF", 100*time.Millisecond),

		DormantThresholdDays: getEnvInt("DORMANT_THRESHOLD_DAYS", 30),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// BankBlobPath is the full path of the bank blob file.
func (c *Config) BankBlobPath() string {
	return filepath.Join(c.DataDir, c.BankBlobName)
}

// StoreBlobPath is the full path of the store blob file.
func (c *Config) StoreBlobPath() string {
	return filepath.Join(c.DataDir, c.StoreBlobName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
