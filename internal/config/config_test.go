package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	os.Setenv(EnvDataDir, t.TempDir())
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL() != DefaultAPIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL(), DefaultAPIBaseURL)
	}
	if cfg.PreviewPort() != DefaultPreviewPort {
		t.Errorf("PreviewPort = %d, want %d", cfg.PreviewPort(), DefaultPreviewPort)
	}
	if cfg.StatusPollInterval() != 2*time.Second {
		t.Errorf("StatusPollInterval = %v, want 2s", cfg.StatusPollInterval())
	}
	if cfg.RenderPollInterval() != time.Second {
		t.Errorf("RenderPollInterval = %v, want 1s", cfg.RenderPollInterval())
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	os.Setenv(EnvDataDir, t.TempDir())
	os.Setenv(EnvAPIBaseURL, "http://clips.example:9000")
	os.Setenv(EnvPreviewPort, "9123")
	defer func() {
		os.Unsetenv(EnvDataDir)
		os.Unsetenv(EnvAPIBaseURL)
		os.Unsetenv(EnvPreviewPort)
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL() != "http://clips.example:9000" {
		t.Errorf("APIBaseURL = %q, want env override", cfg.APIBaseURL())
	}
	if cfg.PreviewPort() != 9123 {
		t.Errorf("PreviewPort = %d, want 9123", cfg.PreviewPort())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	os.Setenv(EnvDataDir, t.TempDir())
	os.Setenv(EnvPreviewPort, "not-a-port")
	defer func() {
		os.Unsetenv(EnvDataDir)
		os.Unsetenv(EnvPreviewPort)
	}()

	if _, err := New(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestNew_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	content := "api_base_url: http://from-file:8000\nlog_level: debug\nstatus_poll_ms: 500\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	os.Setenv(EnvDataDir, dir)
	os.Setenv(EnvLogLevel, "warn")
	defer func() {
		os.Unsetenv(EnvDataDir)
		os.Unsetenv(EnvLogLevel)
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIBaseURL() != "http://from-file:8000" {
		t.Errorf("APIBaseURL = %q, want file value", cfg.APIBaseURL())
	}
	// env wins over file
	if cfg.LogLevel() != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel(), "warn")
	}
	if cfg.StatusPollInterval() != 500*time.Millisecond {
		t.Errorf("StatusPollInterval = %v, want 500ms", cfg.StatusPollInterval())
	}
}

func TestNew_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("log_level: [unclosed"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	os.Setenv(EnvDataDir, dir)
	defer os.Unsetenv(EnvDataDir)

	if _, err := New(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
