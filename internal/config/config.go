// Package config holds server configuration resolved from defaults, an
// optional YAML file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// GlobalStateDir returns the default global state directory (~/.config/a2amcp).
func GlobalStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "a2amcp")
}

// Config holds server configuration.
type Config struct {
	RedisURL      string `yaml:"redis_url"`      // redis:// URL or bare host:port
	RedisPassword string `yaml:"redis_password"` // overrides any credential in the URL

	HeartbeatTimeoutSeconds int `yaml:"heartbeat_timeout_seconds"` // agent considered dead after this
	FileLockTTLSeconds      int `yaml:"file_lock_ttl_seconds"`     // file locks auto-expire after this
	ReaperIntervalSeconds   int `yaml:"reaper_interval_seconds"`   // stale-agent sweep cadence

	StatusDir  string `yaml:"status_dir"`  // completion marker files for external orchestrators
	LogFile    string `yaml:"log_file"`    // "none" or "off" disables file logging
	HealthAddr string `yaml:"health_addr"` // optional HTTP health endpoint, e.g. ":8080"
}

// DefaultConfig returns sensible defaults for a local single-machine setup.
func DefaultConfig() *Config {
	return &Config{
		RedisURL:                "redis://localhost:6379",
		HeartbeatTimeoutSeconds: 120,
		FileLockTTLSeconds:      300,
		ReaperIntervalSeconds:   30,
		StatusDir:               "/tmp/splitmind-status",
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path when non-empty, then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.RedisURL = envOr("REDIS_URL", c.RedisURL)
	c.RedisPassword = envOr("REDIS_PASSWORD", c.RedisPassword)
	c.HeartbeatTimeoutSeconds = envIntOr("HEARTBEAT_TIMEOUT", c.HeartbeatTimeoutSeconds)
	c.FileLockTTLSeconds = envIntOr("FILE_LOCK_TTL", c.FileLockTTLSeconds)
	c.ReaperIntervalSeconds = envIntOr("REAPER_INTERVAL", c.ReaperIntervalSeconds)
	c.StatusDir = envOr("A2AMCP_STATUS_DIR", c.StatusDir)
	c.LogFile = envOr("A2AMCP_LOG_FILE", c.LogFile)
	c.HealthAddr = envOr("A2AMCP_HEALTH_ADDR", c.HealthAddr)
}

// HeartbeatTTL returns the heartbeat expiry as a duration.
func (c *Config) HeartbeatTTL() time.Duration {
	return time.Duration(c.HeartbeatTimeoutSeconds) * time.Second
}

// LockTTL returns the file lock expiry as a duration.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.FileLockTTLSeconds) * time.Second
}

// ReaperTick returns the stale-agent sweep interval as a duration.
func (c *Config) ReaperTick() time.Duration {
	return time.Duration(c.ReaperIntervalSeconds) * time.Second
}

// LogPath returns the configured log file path.
// If unset, defaults to ~/.config/a2amcp/a2amcp.log.
// Set to "none" or "off" to disable file logging entirely.
func (c *Config) LogPath() string {
	if c.LogFile == "" {
		return filepath.Join(GlobalStateDir(), "a2amcp.log")
	}
	return c.LogFile
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envIntOr(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
