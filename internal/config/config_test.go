package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("MEALCOACH_TIMEOUT", "")
	t.Setenv("PORT", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultTimeout, cfg.Timeout)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("expected default port %s, got %s", DefaultPort, cfg.Port)
	}
}

func TestFromEnvParsesTimeoutSeconds(t *testing.T) {
	t.Setenv("MEALCOACH_TIMEOUT", "45")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("expected 45s, got %s", cfg.Timeout)
	}
}

func TestFromEnvRejectsBadTimeout(t *testing.T) {
	t.Setenv("MEALCOACH_TIMEOUT", "soon")
	if _, err := FromEnv(); err == nil {
		t.Fatalf("expected invalid timeout error")
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MEALCOACH_PROXY_URL=http://localhost:9000\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MEALCOACH_PROXY_URL", "")
	os.Unsetenv("MEALCOACH_PROXY_URL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ProxyURL != "http://localhost:9000" {
		t.Fatalf("expected proxy url from env file, got %q", cfg.ProxyURL)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should not fail: %v", err)
	}
}

func TestApplyStoredEnvWins(t *testing.T) {
	t.Setenv("MEALCOACH_PROXY_URL", "http://env:1")
	t.Setenv("MEALCOACH_MODEL", "")
	t.Setenv("MEALCOACH_TIMEOUT", "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	err = cfg.ApplyStored(map[string]string{"proxy_url": "http://stored:2", "model": "claude-stored", "timeout": "12s"})
	if err != nil {
		t.Fatalf("apply stored: %v", err)
	}
	if cfg.ProxyURL != "http://env:1" {
		t.Fatalf("env proxy url must win, got %q", cfg.ProxyURL)
	}
	if cfg.Model != "claude-stored" || cfg.Timeout != 12*time.Second {
		t.Fatalf("expected stored model and timeout, got %q %s", cfg.Model, cfg.Timeout)
	}

	t.Setenv("MEALCOACH_TIMEOUT", "5")
	cfg, _ = FromEnv()
	_ = cfg.ApplyStored(map[string]string{"timeout": "12s"})
	if cfg.Timeout != 5*time.Second || cfg.Model != DefaultModel {
		t.Fatalf("expected env timeout and default model, got %s %q", cfg.Timeout, cfg.Model)
	}
}
