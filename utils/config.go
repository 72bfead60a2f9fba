package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig
	Dataset DatasetConfig
	Server  ServerConfig
	Export  ExportConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name    string
	Version string
}

// DatasetConfig holds archive dataset configuration
type DatasetConfig struct {
	Path string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port                 int
	MaxRequestsPerMinute int
}

// ExportConfig holds the optional SQLite snapshot sink configuration
type ExportConfig struct {
	Path string
}

// LoadConfig loads configuration from a .env file plus the environment
func LoadConfig(envPath string, log *logrus.Logger) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}

	// a missing .env is fine as long as the environment itself is populated
	if err := godotenv.Load(envPath); err != nil {
		log.WithField("file", envPath).Debug("No .env file loaded, using environment only")
	}

	config := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "Archivist"),
			Version: getEnv("APP_VERSION", "1.0.0"),
		},
		Dataset: DatasetConfig{
			Path: getEnv("DATASET_PATH", ""),
		},
		Server: ServerConfig{
			Port:                 getEnvAsInt("SERVER_PORT", 8080),
			MaxRequestsPerMinute: getEnvAsInt("SERVER_MAX_REQUESTS_PER_MINUTE", 120),
		},
		Export: ExportConfig{
			Path: getEnv("EXPORT_DB_PATH", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	log.WithField("file", envPath).Info("Config loaded successfully")
	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Dataset.Path == "" {
		return fmt.Errorf("DATASET_PATH environment variable is required")
	}

	// the dataset must exist up front; everything downstream assumes it
	info, err := os.Stat(config.Dataset.Path)
	if err != nil {
		return fmt.Errorf("dataset path %s does not exist: %w", config.Dataset.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("dataset path %s is not a directory", config.Dataset.Path)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be a valid port number")
	}
	if config.Server.MaxRequestsPerMinute < 1 {
		return fmt.Errorf("SERVER_MAX_REQUESTS_PER_MINUTE must be positive")
	}

	return nil
}
