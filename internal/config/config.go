package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string         `yaml:"listen_addr"`
	MetricsEnabled bool           `yaml:"metrics_enabled"`
	LogLevel       string         `yaml:"log_level"`
	LogFormat      string         `yaml:"log_format"`
	Database       DatabaseConfig `yaml:"database"`
	Auth           AuthConfig     `yaml:"auth"`
}

// DatabaseConfig holds either a full connection URL or the discrete parts it
// is assembled from. URL wins when both are present.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// AuthConfig selects the token verifier: CredentialsFile enables the identity
// provider, DevSecret enables the local HS256 verifier for development.
type AuthConfig struct {
	CredentialsFile string        `yaml:"credentials_file"`
	DevSecret       string        `yaml:"dev_secret"`
	DevIssuer       string        `yaml:"dev_issuer"`
	DevAudience     string        `yaml:"dev_audience"`
	DevExpiry       time.Duration `yaml:"dev_expiry"`
}

func Load() *Config {
	config := &Config{
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		MetricsEnabled: os.Getenv("ENABLE_METRICS") == "true",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "root"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Name:     getEnv("MYSQL_DATABASE", "inventory"),
		},
		Auth: AuthConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
			DevSecret:       os.Getenv("AUTH_DEV_SECRET"),
			DevIssuer:       getEnv("AUTH_DEV_ISS", "inventory-api"),
			DevAudience:     getEnv("AUTH_DEV_AUD", "inventory-api"),
			DevExpiry:       24 * time.Hour,
		},
	}

	// Parse dev token expiry from environment if provided
	if expiryStr := os.Getenv("AUTH_DEV_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.Auth.DevExpiry = expiry
		}
	}

	return config
}

// Validate checks that the configuration is usable before the server starts.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.Auth.CredentialsFile == "" && c.Auth.DevSecret == "" {
		return fmt.Errorf("no token verifier configured: set FIREBASE_CREDENTIALS or AUTH_DEV_SECRET")
	}
	if c.Auth.CredentialsFile == "" {
		if len(c.Auth.DevSecret) < 32 {
			return fmt.Errorf("AUTH_DEV_SECRET must be at least 32 characters")
		}
		if c.Auth.DevExpiry <= 0 {
			return fmt.Errorf("dev token expiry must be positive")
		}
	}
	return nil
}

// LoadAndValidate loads the configuration, applies the optional CONFIG_FILE
// overlay, and validates the result.
func LoadAndValidate() (*Config, error) {
	cfg := Load()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile overlays values from a YAML config file. Values set in the file
// take precedence over the environment.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
