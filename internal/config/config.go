// Package config contains everything related to configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultProfile is the profile used when AWS_PROFILE is unset.
const DefaultProfile = "default"

// Config holds the application configuration.
type Config struct {
	Profile         string
	Region          string
	Endpoint        string
	RequestTimeout  time.Duration
	TrendMonths     int
	DropZero        bool
	ConfigFile      string
	CredentialsFile string
	LogFile         string
}

// Default values
const (
	defaultRequestTimeout = 30 * time.Second
	defaultTrendMonths    = 6
	maxTrendMonths        = 24
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	region := getEnvString("AWS_REGION", "")
	if region == "" {
		region = getEnvString("AWS_DEFAULT_REGION", "")
	}

	cfg := &Config{
		Profile:         getEnvString("AWS_PROFILE", DefaultProfile),
		Region:          region,
		Endpoint:        getEnvString("AWS_COSTS_ENDPOINT", ""),
		RequestTimeout:  getEnvDuration("AWS_COSTS_REQUEST_TIMEOUT", defaultRequestTimeout),
		TrendMonths:     getEnvInt("AWS_COSTS_TREND_MONTHS", defaultTrendMonths),
		DropZero:        getEnvBool("AWS_COSTS_DROP_ZERO", false),
		ConfigFile:      getEnvString("AWS_CONFIG_FILE", getDefaultAWSPath("config")),
		CredentialsFile: getEnvString("AWS_SHARED_CREDENTIALS_FILE", getDefaultAWSPath("credentials")),
		LogFile:         getEnvString("AWS_COSTS_LOG_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that can be set from flags after Load.
func (c *Config) Validate() error {
	if c.Profile == "" {
		return fmt.Errorf("%w: profile must not be empty", ErrConfiguration)
	}
	if c.TrendMonths < 1 || c.TrendMonths > maxTrendMonths {
		return fmt.Errorf("%w: trend months must be between 1 and %d, got %d",
			ErrConfiguration, maxTrendMonths, c.TrendMonths)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrConfiguration)
	}
	if _, err := c.EndpointURL(); err != nil {
		return err
	}
	return nil
}

// EndpointURL parses the endpoint override. It returns nil when none is set.
func (c *Config) EndpointURL() (*url.URL, error) {
	if c.Endpoint == "" {
		return nil, nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid endpoint %q", ErrConfiguration, c.Endpoint)
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// OpenLogFile opens LogFile for appending, creating its directory. It returns
// nil when no log file is configured.
func (c *Config) OpenLogFile() (*os.File, error) {
	if c.LogFile == "" {
		return nil, nil
	}
	if err := ensureDir(filepath.Dir(c.LogFile)); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "aws-costs-tui", ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultAWSPath returns ~/.aws/<name>.
func getDefaultAWSPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", name)
	}
	return filepath.Join(home, ".aws", name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
