// Package config provides application configuration management with support
// for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shelfstats/shelfstats-server/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Dataset   DatasetConfig
	Server    ServerConfig
	Analytics AnalyticsConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `json:"environment" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `json:"level" validate:"required,oneof=debug info warn error"`
}

// DatasetConfig holds dataset source configuration.
type DatasetConfig struct {
	// Path is the delimited source file the dataset is loaded from.
	Path string `json:"path" validate:"required"`
	// Watch enables reloading the dataset when the source file changes.
	// Off by default: the file is not expected to change during a session.
	Watch bool `json:"watch"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string        `json:"name" validate:"required"`
	Port         string        `json:"port" validate:"required"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// AnalyticsConfig holds defaults for the aggregation endpoints.
type AnalyticsConfig struct {
	// TopAuthors is how many authors the authors section lists.
	TopAuthors int `json:"top_authors" validate:"gte=1,lte=100"`
	// PriceBins and RatingBins are the histogram bin counts.
	PriceBins  int `json:"price_bins" validate:"gte=2,lte=200"`
	RatingBins int `json:"rating_bins" validate:"gte=2,lte=200"`
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled bool `json:"enabled"`
}

// RateLimitConfig holds per-client API rate limiting configuration.
type RateLimitConfig struct {
	RPS   float64 `json:"rps" validate:"gt=0"`
	Burst int     `json:"burst" validate:"gte=1"`
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	datasetPath := flag.String("dataset-path", "", "Path to the book listings file")
	watchDataset := flag.String("watch-dataset", "", "Reload the dataset when the source file changes (default: false)")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	topAuthors := flag.String("top-authors", "", "How many authors to list (default: 10)")
	priceBins := flag.String("price-bins", "", "Price histogram bins (default: 30)")
	ratingBins := flag.String("rating-bins", "", "Rating histogram bins (default: 20)")
	searchEnabled := flag.String("search-enabled", "", "Enable full-text search (default: true)")
	rateLimitRPS := flag.String("rate-limit-rps", "", "API requests per second per client (default: 20)")
	rateLimitBurst := flag.String("rate-limit-burst", "", "API rate limit burst (default: 40)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Dataset: DatasetConfig{
			Path:  getConfigValue(*datasetPath, "DATASET_PATH", "cleaned_books.csv"),
			Watch: getBoolConfigValue(*watchDataset, "WATCH_DATASET", false),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "Shelfstats Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Analytics: AnalyticsConfig{
			TopAuthors: getIntConfigValue(*topAuthors, "TOP_AUTHORS", 10),
			PriceBins:  getIntConfigValue(*priceBins, "PRICE_BINS", 30),
			RatingBins: getIntConfigValue(*ratingBins, "RATING_BINS", 20),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", 20),
			Burst: getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 40),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid read timeout: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, fmt.Errorf("invalid write timeout: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if err := cfg.expandDatasetPath(); err != nil {
		return nil, fmt.Errorf("invalid dataset path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	v := validation.New()
	if err := v.Validate(c.App); err != nil {
		return err
	}
	if err := v.Validate(c.Logger); err != nil {
		return err
	}
	if err := v.Validate(c.Dataset); err != nil {
		return err
	}
	if err := v.Validate(c.Server); err != nil {
		return err
	}
	if err := v.Validate(c.Analytics); err != nil {
		return err
	}
	return v.Validate(c.RateLimit)
}

// expandDatasetPath expands ~ and makes the path absolute.
func (c *Config) expandDatasetPath() error {
	expanded, err := expandPath(c.Dataset.Path)
	if err != nil {
		return err
	}
	c.Dataset.Path = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// parseDurationValue resolves a duration with flag > env > default precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	str := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(str)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", str, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
