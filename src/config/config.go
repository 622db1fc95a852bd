package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"secmaster/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file.
// Secrets found in the environment override the file values.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()
	config.applyEnv(os.Getenv)

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{}}
	c.applyDefaults()
	return c
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("SECMASTER_DB_DSN"); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := getenv("SECMASTER_DB_PASSWORD"); v != "" {
		c.Storage.Password = v
	}
	if v := getenv("TDA_API_KEY"); v != "" {
		c.Upstream.APIKey = v
	}
	if v := getenv("TDA_TOKEN_PATH"); v != "" {
		c.Upstream.TokenPath = v
	}
	if v := getenv("NASDAQ_FTP_USER"); v != "" {
		c.Listings.User = v
	}
	if v := getenv("NASDAQ_FTP_PASS"); v != "" {
		c.Listings.Password = v
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Server.Enabled {
		if c.Server.Host == "" {
			return errors.New("server host cannot be empty")
		}
		if c.Server.Port <= 1024 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Server.Port)
		}
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return errors.New("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" && (c.Storage.Host == "" || c.Storage.Name == "" || c.Storage.User == "") {
			return errors.New("postgres needs db_connection_string or host, name and user")
		}
	default:
		return fmt.Errorf("unsupported database type: %q", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return errors.New("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}

	if c.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if c.Upstream.HistoryYears < 1 {
		return errors.New("upstream.history_years must be >= 1")
	}

	for i, f := range c.Listings.Files {
		if f.Filename == "" {
			return fmt.Errorf("listings file %d must have a filename", i)
		}
		if len(f.Columns) != 3 {
			return fmt.Errorf("listings file '%s' needs exactly 3 columns (symbol, name, test issue)", f.Filename)
		}
		if f.Provider == "" {
			return fmt.Errorf("listings file '%s' must name a provider", f.Filename)
		}
	}

	u := c.Updater
	if u.BatchSize < 1 {
		return errors.New("updater.batch_size must be >= 1")
	}
	if u.BoundaryHour < 0 || u.BoundaryHour > 23 {
		return fmt.Errorf("updater.boundary_hour must be between 0 and 23, got %d", u.BoundaryHour)
	}
	if u.MediumEvery < 1 || u.LongEvery < 1 {
		return errors.New("updater.medium_every and updater.long_every must be >= 1")
	}
	if u.LongEvery%u.MediumEvery != 0 {
		return fmt.Errorf("updater.long_every (%d) must be a multiple of updater.medium_every (%d)", u.LongEvery, u.MediumEvery)
	}
	if u.ShortDelay < 0 || u.MediumDelay < 0 || u.LongDelay < 0 {
		return errors.New("updater delays cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// PostgresDSN returns the configured connection string or builds one.
func (c *Config) PostgresDSN() string {
	if c.Storage.DBConnectionString != "" {
		return c.Storage.DBConnectionString
	}

	// URL-encode password to handle special characters
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Storage.User,
		url.QueryEscape(c.Storage.Password),
		c.Storage.Host,
		c.Storage.Port,
		c.Storage.Name,
		c.Storage.SSLMode,
	)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0600 permissions, it may carry credentials)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
