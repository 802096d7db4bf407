package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("expected default redis URL, got %q", cfg.RedisURL)
	}
	if cfg.HeartbeatTimeoutSeconds != 120 {
		t.Errorf("expected heartbeat timeout 120s, got %d", cfg.HeartbeatTimeoutSeconds)
	}
	if cfg.FileLockTTLSeconds != 300 {
		t.Errorf("expected file lock TTL 300s, got %d", cfg.FileLockTTLSeconds)
	}
	if cfg.ReaperIntervalSeconds != 30 {
		t.Errorf("expected reaper interval 30s, got %d", cfg.ReaperIntervalSeconds)
	}
	if cfg.StatusDir != "/tmp/splitmind-status" {
		t.Errorf("expected default status dir, got %q", cfg.StatusDir)
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{
		HeartbeatTimeoutSeconds: 90,
		FileLockTTLSeconds:      600,
		ReaperIntervalSeconds:   15,
	}
	if cfg.HeartbeatTTL() != 90*time.Second {
		t.Errorf("HeartbeatTTL = %v", cfg.HeartbeatTTL())
	}
	if cfg.LockTTL() != 600*time.Second {
		t.Errorf("LockTTL = %v", cfg.LockTTL())
	}
	if cfg.ReaperTick() != 15*time.Second {
		t.Errorf("ReaperTick = %v", cfg.ReaperTick())
	}
}

func TestLoadYAMLFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
redis_url: redis://redis.internal:6380/1
heartbeat_timeout_seconds: 60
file_lock_ttl_seconds: 120
status_dir: /var/lib/a2amcp/status
log_file: none
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RedisURL != "redis://redis.internal:6380/1" {
		t.Errorf("redis_url = %q", cfg.RedisURL)
	}
	if cfg.HeartbeatTimeoutSeconds != 60 {
		t.Errorf("heartbeat_timeout_seconds = %d", cfg.HeartbeatTimeoutSeconds)
	}
	if cfg.FileLockTTLSeconds != 120 {
		t.Errorf("file_lock_ttl_seconds = %d", cfg.FileLockTTLSeconds)
	}
	// Unset fields keep their defaults.
	if cfg.ReaperIntervalSeconds != 30 {
		t.Errorf("reaper_interval_seconds = %d, want default 30", cfg.ReaperIntervalSeconds)
	}
	if cfg.LogFile != "none" {
		t.Errorf("log_file = %q", cfg.LogFile)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "read config") {
		t.Errorf("error = %v, want read config context", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://override:6379")
	t.Setenv("REDIS_PASSWORD", "sekrit")
	t.Setenv("HEARTBEAT_TIMEOUT", "45")
	t.Setenv("FILE_LOCK_TTL", "90")
	t.Setenv("REAPER_INTERVAL", "10")
	t.Setenv("A2AMCP_STATUS_DIR", "/tmp/custom-status")
	t.Setenv("A2AMCP_HEALTH_ADDR", ":9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RedisURL != "redis://override:6379" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if cfg.RedisPassword != "sekrit" {
		t.Errorf("RedisPassword = %q", cfg.RedisPassword)
	}
	if cfg.HeartbeatTimeoutSeconds != 45 {
		t.Errorf("HeartbeatTimeoutSeconds = %d", cfg.HeartbeatTimeoutSeconds)
	}
	if cfg.FileLockTTLSeconds != 90 {
		t.Errorf("FileLockTTLSeconds = %d", cfg.FileLockTTLSeconds)
	}
	if cfg.ReaperIntervalSeconds != 10 {
		t.Errorf("ReaperIntervalSeconds = %d", cfg.ReaperIntervalSeconds)
	}
	if cfg.StatusDir != "/tmp/custom-status" {
		t.Errorf("StatusDir = %q", cfg.StatusDir)
	}
	if cfg.HealthAddr != ":9090" {
		t.Errorf("HealthAddr = %q", cfg.HealthAddr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("redis_url: redis://from-file:6379\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("REDIS_URL", "redis://from-env:6379")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RedisURL != "redis://from-env:6379" {
		t.Errorf("env should win over file, got %q", cfg.RedisURL)
	}
}

func TestEnvIgnoresBadInt(t *testing.T) {
	t.Setenv("HEARTBEAT_TIMEOUT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HeartbeatTimeoutSeconds != 120 {
		t.Errorf("bad int should keep default, got %d", cfg.HeartbeatTimeoutSeconds)
	}
}

func TestLogPath(t *testing.T) {
	cfg := &Config{}
	if got := cfg.LogPath(); filepath.Base(got) != "a2amcp.log" {
		t.Errorf("default LogPath = %q", got)
	}

	cfg.LogFile = "/var/log/a2amcp.log"
	if cfg.LogPath() != "/var/log/a2amcp.log" {
		t.Errorf("explicit LogPath = %q", cfg.LogPath())
	}
}
