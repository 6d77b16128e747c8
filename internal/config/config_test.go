package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Name != "mcp-appium" {
		t.Errorf("expected server name 'mcp-appium', got %q", cfg.Server.Name)
	}
	if cfg.Server.LogFile != "mcp-appium.log" {
		t.Errorf("expected log file 'mcp-appium.log', got %q", cfg.Server.LogFile)
	}

	// Appium defaults
	if cfg.Appium.ServerURL != "http://localhost:4723" {
		t.Errorf("expected server url 'http://localhost:4723', got %q", cfg.Appium.ServerURL)
	}
	if cfg.Appium.RequestTimeout != "30s" {
		t.Errorf("expected request timeout '30s', got %q", cfg.Appium.RequestTimeout)
	}
	if cfg.Appium.NewCommandTimeout != 600 {
		t.Errorf("expected new command timeout 600, got %d", cfg.Appium.NewCommandTimeout)
	}

	// AI defaults: disabled until a provider is chosen
	if cfg.AI.Provider != "" {
		t.Errorf("expected empty AI provider, got %q", cfg.AI.Provider)
	}
	if cfg.AI.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", cfg.AI.MaxRetries)
	}
	if cfg.AI.RetryBackoffFactor != 2.0 {
		t.Errorf("expected backoff factor 2.0, got %f", cfg.AI.RetryBackoffFactor)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %f", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 1024 {
		t.Errorf("expected max tokens 1024, got %d", cfg.AI.MaxTokens)
	}

	// Recorder defaults
	if cfg.Recorder.Enabled {
		t.Error("expected recorder disabled by default")
	}
	if cfg.Recorder.TraceDir != "traces" {
		t.Errorf("expected trace dir 'traces', got %q", cfg.Recorder.TraceDir)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Error("expected error for empty path")
	}
	if err.Error() != "config path is required" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
appium:
  server_url: "http://emulator-host:4723"
ai:
  provider: "ollama"
  model: "llama3.2"
  max_retries: 5
recorder:
  enabled: true
  trace_dir: "run-traces"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Appium.ServerURL != "http://emulator-host:4723" {
		t.Errorf("expected overridden server url, got %q", cfg.Appium.ServerURL)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.AI.Provider)
	}
	if cfg.AI.MaxRetries != 5 {
		t.Errorf("expected max retries 5, got %d", cfg.AI.MaxRetries)
	}
	// Untouched fields keep defaults
	if cfg.Server.Name != "mcp-appium" {
		t.Errorf("expected default server name, got %q", cfg.Server.Name)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("expected default temperature, got %f", cfg.AI.Temperature)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Appium.ServerURL = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for empty server url")
	}

	bad = DefaultConfig()
	bad.AI.Provider = "skynet"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unknown AI provider")
	}

	bad = DefaultConfig()
	bad.AI.MaxRetries = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative max retries")
	}

	bad = DefaultConfig()
	bad.MCP.SSEPort = 70000
	if err := bad.Validate(); err == nil {
		t.Error("expected error for out-of-range SSE port")
	}

	bad = DefaultConfig()
	bad.Recorder.Enabled = true
	bad.Recorder.TraceDir = ""
	if err := bad.Validate(); err == nil {
		t.Error("expected error for enabled recorder without trace dir")
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Appium.GetRequestTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %v", got)
	}
	if got := cfg.AI.GetTimeout(); got != 60*time.Second {
		t.Errorf("expected 60s AI timeout, got %v", got)
	}
	if got := cfg.AI.GetRetryDelay(); got != 2*time.Second {
		t.Errorf("expected 2s retry delay, got %v", got)
	}

	// Unparseable values fall back to defaults
	cfg.Appium.RequestTimeout = "soon"
	if got := cfg.Appium.GetRequestTimeout(); got != 30*time.Second {
		t.Errorf("expected fallback 30s, got %v", got)
	}
	cfg.AI.Timeout = ""
	if got := cfg.AI.GetTimeout(); got != 60*time.Second {
		t.Errorf("expected fallback 60s, got %v", got)
	}
}
