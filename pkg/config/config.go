package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the harvester
type Config struct {
	// Harvest run settings
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Remote service settings
	Hub HubConfig `yaml:"hub" json:"hub"`

	// Checkpoint directory settings
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HarvestConfig holds settings for one harvest run
type HarvestConfig struct {
	IDsFile string `yaml:"ids_file" json:"ids_file"`
	Out     string `yaml:"out" json:"out"`
	Workers int    `yaml:"workers" json:"workers"`
	// Sleep is the politeness delay base; the actual sleep per fetch is
	// Sleep multiplied by a random factor in [0.9, 1.3)
	Sleep time.Duration `yaml:"sleep" json:"sleep"`
	// RetryErrors re-attempts identifiers whose recorded status is error.
	// By default a recorded error counts as done, so permanently bad ids
	// are not fetched again on resume.
	RetryErrors bool `yaml:"retry_errors" json:"retry_errors"`
	// Extractor selects the payload variant: "size", "tags" or "stats"
	Extractor string `yaml:"extractor" json:"extractor"`
	// TagPrefix and TagField configure the tags extractor
	TagPrefix string `yaml:"tag_prefix" json:"tag_prefix"`
	TagField  string `yaml:"tag_field" json:"tag_field"`
}

// HubConfig holds remote service configuration
type HubConfig struct {
	Token       string        `yaml:"token" json:"token"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
}

// CheckpointConfig holds checkpoint directory configuration
type CheckpointConfig struct {
	PartsDir   string `yaml:"parts_dir" json:"parts_dir"`
	PartPrefix string `yaml:"part_prefix" json:"part_prefix"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`
	// UniquePrefix appends a random fragment to the part prefix at
	// startup so same-prefix processes cannot race on sequence numbering
	UniquePrefix bool `yaml:"unique_prefix" json:"unique_prefix"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerMinute caps aggregate request rate across workers; 0 disables the limiter
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the harvest defaults
func DefaultConfig() *Config {
	return &Config{
		Harvest: HarvestConfig{
			Out:       "dataset_sizes.jsonl",
			Workers:   4,
			Sleep:     250 * time.Millisecond,
			Extractor: "size",
		},
		Hub: HubConfig{
			UserAgent:   "Datalifecycle/0.1",
			Timeout:     30 * time.Second,
			MaxAttempts: 5,
		},
		Checkpoint: CheckpointConfig{
			PartsDir:  "parts",
			BatchSize: 2000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. A .env file
// in the working directory is honored when present.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if token := os.Getenv("HF_TOKEN"); token != "" {
		c.Hub.Token = token
	}
	if ua := os.Getenv("HFHARVEST_USER_AGENT"); ua != "" {
		c.Hub.UserAgent = ua
	}
	if workers := os.Getenv("HFHARVEST_WORKERS"); workers != "" {
		var val int
		fmt.Sscanf(workers, "%d", &val)
		if val > 0 {
			c.Harvest.Workers = val
		}
	}
	if batch := os.Getenv("HFHARVEST_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.Checkpoint.BatchSize = val
		}
	}
	if rpm := os.Getenv("HFHARVEST_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("HFHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".hfharvest.yaml",
		".hfharvest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "hfharvest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "hfharvest", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Harvest.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Harvest.Out == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if c.Harvest.Sleep < 0 {
		errs = append(errs, errors.New("sleep cannot be negative"))
	}
	switch c.Harvest.Extractor {
	case "size", "stats":
	case "tags":
		if c.Harvest.TagPrefix == "" || c.Harvest.TagField == "" {
			errs = append(errs, errors.New("tags extractor requires tag_prefix and tag_field"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown extractor %q", c.Harvest.Extractor))
	}

	if c.Hub.Timeout <= 0 {
		errs = append(errs, errors.New("hub timeout must be positive"))
	}
	if c.Hub.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}

	if c.Checkpoint.PartsDir == "" {
		errs = append(errs, errors.New("parts directory is required"))
	}
	if c.Checkpoint.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, err := range errs {
			messages[i] = err.Error()
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
	}

	return nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load builds the effective configuration: defaults, then config file,
// then environment overrides
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}
