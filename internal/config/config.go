// Package config provides configuration loading and validation for the job board.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config is the server configuration that can be loaded from a JSON file.
// All fields are optional; missing values are filled by MergeWithDefaults and
// CLI flags win over both.
type Config struct {
	Port     int    `json:"port,omitempty"`
	SeedPath string `json:"seed_path,omitempty"` // Seed fixture; empty uses the built-in set

	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL audit log; empty keeps events in memory
	RedisURL    string `json:"redis_url,omitempty"`    // Token revocation store; empty keeps revocations in memory

	SweepSchedule string   `json:"sweep_schedule,omitempty"` // Cron spec for closing expired postings; empty disables
	CORSOrigins   []string `json:"cors_origins,omitempty"`
	AuditBuffer   int      `json:"audit_buffer,omitempty"`
	AuditLimit    int      `json:"audit_limit,omitempty"` // Events kept by the in-memory recorder
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:        8080,
		CORSOrigins: []string{"*"},
		AuditBuffer: 256,
		AuditLimit:  500,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.AuditBuffer < 0 {
		return fmt.Errorf("config error: 'audit_buffer' must be non-negative")
	}
	if c.AuditLimit < 0 {
		return fmt.Errorf("config error: 'audit_limit' must be non-negative")
	}

	if c.SeedPath != "" {
		if _, err := os.Stat(c.SeedPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: seed file not found: %s", c.SeedPath)
		}
	}

	if c.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
			return fmt.Errorf("config error: invalid 'sweep_schedule' %q: %w", c.SweepSchedule, err)
		}
	}

	for _, origin := range c.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("config error: 'cors_origins' contains an empty entry")
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SeedPath == "" {
		result.SeedPath = defaults.SeedPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.SweepSchedule == "" {
		result.SweepSchedule = defaults.SweepSchedule
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}
	if result.AuditBuffer == 0 {
		result.AuditBuffer = defaults.AuditBuffer
	}
	if result.AuditLimit == 0 {
		result.AuditLimit = defaults.AuditLimit
	}

	return result
}
