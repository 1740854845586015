// Package config содержит загрузку и валидацию конфигурации.
package config

import (
	"fmt"
	"os"
	"skillshub/pkg/logger"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Поддерживаемые бэкенды хранения
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config представляет конфигурацию процесса
type Config struct {
	// Storage
	StorageBackend string
	DatabaseURL    string
	AppDataDir     string

	// Logging
	Log logger.Config

	// Skills API
	SkillsAPI SkillsAPIConfig

	// Retry
	RetryConfig RetryConfig

	// Scheduler
	StartupCheckDelay  time.Duration
	CheckTimeout       time.Duration
	ConfigPollInterval time.Duration
	ScanFailClosed     bool

	// Metrics
	MetricsEnabled bool
	MetricsPort    string

	GracefulShutdownTimeout time.Duration
}

// SkillsAPIConfig представляет конфигурацию клиента сервиса скиллов
type SkillsAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RetryConfig представляет конфигурацию retry механизма
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Загружаем .env файл если он существует
	_ = godotenv.Load()

	config := &Config{
		StorageBackend: getEnv("STORAGE_BACKEND", StorageFile),
		DatabaseURL:    getEnv("DB_DSN", ""),
		AppDataDir:     getEnv("APP_DATA_DIR", "./data"),
		Log: logger.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Path:       getEnv("LOG_PATH", ""),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 28),
		},
		SkillsAPI: SkillsAPIConfig{
			BaseURL: getEnv("SKILLS_API_URL", "http://127.0.0.1:7315"),
			Timeout: getEnvDuration("SKILLS_API_TIMEOUT", 2*time.Minute),
		},
		RetryConfig: RetryConfig{
			MaxRetries:   getEnvInt("RETRY_MAX_RETRIES", 3),
			InitialDelay: getEnvDuration("RETRY_INITIAL_DELAY", 1*time.Second),
			MaxDelay:     getEnvDuration("RETRY_MAX_DELAY", 30*time.Second),
		},
		StartupCheckDelay:       getEnvDuration("STARTUP_CHECK_DELAY", 2*time.Second),
		CheckTimeout:            getEnvDuration("CHECK_TIMEOUT", 5*time.Minute),
		ConfigPollInterval:      getEnvDuration("CONFIG_POLL_INTERVAL", 30*time.Second),
		ScanFailClosed:          getEnvBool("SCAN_FAIL_CLOSED", false),
		MetricsEnabled:          getEnvBool("METRICS_ENABLED", true),
		MetricsPort:             getEnv("METRICS_PORT", "9090"),
		GracefulShutdownTimeout: getEnvDuration("GRACEFUL_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if config.Log.Path == "" {
		config.Log.Path = config.AppDataDir + "/logs/skillshub.log"
	}

	// Валидация обязательных полей
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageFile:
		if c.AppDataDir == "" {
			return fmt.Errorf("APP_DATA_DIR is required for file storage")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be %s or %s", c.StorageBackend, StorageFile, StoragePostgres)
	}

	if c.SkillsAPI.BaseURL == "" {
		return fmt.Errorf("SKILLS_API_URL is required")
	}

	if c.RetryConfig.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must be non-negative")
	}

	if c.StartupCheckDelay < 0 {
		return fmt.Errorf("STARTUP_CHECK_DELAY must be non-negative")
	}

	if c.ConfigPollInterval <= 0 {
		return fmt.Errorf("CONFIG_POLL_INTERVAL must be positive")
	}

	return nil
}

// getEnv получает переменную окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как time.Duration
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
