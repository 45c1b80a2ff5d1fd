package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mpetrov/rollcall/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: \"123456:test-token\"\n")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want info", cfg.Logger.Level)
	}
	if cfg.Attendance.InactiveThreshold != 24*time.Hour {
		t.Errorf("InactiveThreshold = %v, want 24h", cfg.Attendance.InactiveThreshold)
	}
	if cfg.Attendance.InactivePeriod != 24*time.Hour {
		t.Errorf("InactivePeriod = %v, want 24h", cfg.Attendance.InactivePeriod)
	}
	if cfg.Attendance.ReducedPerMessage != time.Minute {
		t.Errorf("ReducedPerMessage = %v, want 1m", cfg.Attendance.ReducedPerMessage)
	}
	if cfg.Attendance.MessagesToClear != 15 {
		t.Errorf("MessagesToClear = %d, want 15", cfg.Attendance.MessagesToClear)
	}
	if cfg.Attendance.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Attendance.PageSize)
	}

	sweep, ok := cfg.Scheduler.Tasks["inactivity_sweep"]
	if !ok {
		t.Fatal("inactivity_sweep task missing from defaults")
	}
	if !sweep.Enabled || sweep.Schedule != "*/10 * * * *" {
		t.Errorf("inactivity_sweep = %+v, want enabled every 10 minutes", sweep)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
logger:
  level: debug
  json: false
attendance:
  page_size: 5
  inactive_threshold: 48h
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Attendance.PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", cfg.Attendance.PageSize)
	}
	if cfg.Attendance.InactiveThreshold != 48*time.Hour {
		t.Errorf("InactiveThreshold = %v, want 48h", cfg.Attendance.InactiveThreshold)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	path := writeConfig(t, "logger:\n  level: info\n")

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatal("LoadConfig succeeded without a telegram token")
	}
}

func TestLoadConfigInvalidLevel(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
logger:
  level: loud
`)

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatal("LoadConfig accepted an invalid log level")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:env-token")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}
	if cfg.Telegram.Token != "123456:env-token" {
		t.Errorf("Telegram.Token = %q, want env value", cfg.Telegram.Token)
	}
	if cfg.Attendance.PageSize != 10 {
		t.Errorf("PageSize = %d, want default 10", cfg.Attendance.PageSize)
	}
}
