package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Store struct {
		// Driver selects the store backend: "postgres" or "memory".
		Driver          string `yaml:"driver" env:"STORE_DRIVER"`
		Host            string `yaml:"host" env:"STORE_HOST"`
		Port            string `yaml:"port" env:"STORE_PORT"`
		User            string `yaml:"user" env:"STORE_USER"`
		Password        string `yaml:"password" env:"STORE_PASSWORD"`
		DBName          string `yaml:"dbname" env:"STORE_DBNAME"`
		SSLMode         string `yaml:"sslmode" env:"STORE_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"STORE_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"STORE_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"STORE_CONN_MAX_LIFETIME"`
	} `yaml:"store"`

	Identity struct {
		// BaseURL of the external identity provider's REST API.
		BaseURL string `yaml:"base_url" env:"IDENTITY_BASE_URL"`
		// JWTSecret verifies access tokens issued by the provider.
		JWTSecret string `yaml:"jwt_secret" env:"IDENTITY_JWT_SECRET"`
		Timeout   string `yaml:"timeout" env:"IDENTITY_TIMEOUT"`
	} `yaml:"identity"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Seed struct {
		// Enabled creates sample records on startup when the store is empty.
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
		// AdminUserID is the identity-provider user id to grant the admin
		// role on startup. Empty skips the admin profile.
		AdminUserID string `yaml:"admin_user_id" env:"SEED_ADMIN_USER_ID"`
		AdminEmail  string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory, if present, is loaded first so its
// values participate in the env overrides.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Store.Driver = "postgres"
	config.Store.Host = "localhost"
	config.Store.Port = "5432"
	config.Store.User = "postgres"
	config.Store.Password = "postgres"
	config.Store.DBName = "acadcore"
	config.Store.SSLMode = "disable"
	config.Store.MaxIdleConns = 5
	config.Store.MaxOpenConns = 20
	config.Store.ConnMaxLifetime = "1h"

	config.Identity.BaseURL = "http://localhost:9999"
	config.Identity.Timeout = "10s"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q", config.Store.Driver)
	}

	if config.Store.Driver == "postgres" && config.Store.Host == "" {
		return fmt.Errorf("store host is required")
	}

	if config.Identity.JWTSecret == "" {
		return fmt.Errorf("identity JWT secret is required")
	}

	return nil
}

// PostgresConnString returns the postgres connection string for the store.
func (c *Config) PostgresConnString() string {
	sslMode := c.Store.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Store.User,
		c.Store.Password,
		c.Store.Host,
		c.Store.Port,
		c.Store.DBName,
		sslMode,
	)
}
