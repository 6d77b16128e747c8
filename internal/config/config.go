package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures all tunable settings for the Appium MCP server. API keys
// are deliberately absent: credentials come from the environment
// (OPENAI_API_KEY, GOOGLE_API_KEY, HUGGINGFACE_API_KEY, OLLAMA_BASE_URL),
// never from YAML.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Appium   AppiumConfig   `yaml:"appium"`
	AI       AIConfig       `yaml:"ai"`
	MCP      MCPConfig      `yaml:"mcp"`
	Recorder RecorderConfig `yaml:"recorder"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// AppiumConfig configures the connection to the Appium server.
type AppiumConfig struct {
	// Base URL of the Appium server (e.g., http://localhost:4723).
	ServerURL string `yaml:"server_url"`
	// Per-request timeout for wire-protocol calls (e.g., "30s").
	RequestTimeout string `yaml:"request_timeout"`
	// newCommandTimeout capability applied to created sessions, in seconds.
	NewCommandTimeout int `yaml:"new_command_timeout"`
}

// AIConfig selects and tunes the AI backend used for natural-language
// command interpretation. Provider is one of: openai, gemini, huggingface,
// ollama. Empty disables the AI tools entirely.
type AIConfig struct {
	Provider           string  `yaml:"provider"`
	Model              string  `yaml:"model"`
	Timeout            string  `yaml:"timeout"`
	MaxRetries         int     `yaml:"max_retries"`
	RetryDelay         string  `yaml:"retry_delay"`
	RetryBackoffFactor float64 `yaml:"retry_backoff_factor"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// RecorderConfig controls the JSONL command trace recorder.
type RecorderConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TraceDir string `yaml:"trace_dir"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "mcp-appium",
			Version: "0.1.0",
			LogFile: "mcp-appium.log",
		},
		Appium: AppiumConfig{
			ServerURL:         "http://localhost:4723",
			RequestTimeout:    "30s",
			NewCommandTimeout: 600,
		},
		AI: AIConfig{
			Provider:           "",
			Model:              "",
			Timeout:            "60s",
			MaxRetries:         3,
			RetryDelay:         "2s",
			RetryBackoffFactor: 2.0,
			Temperature:        0.7,
			MaxTokens:          1024,
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
		Recorder: RecorderConfig{
			Enabled:  false,
			TraceDir: "traces",
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Appium.ServerURL == "" {
		return errors.New("appium.server_url is required")
	}
	switch c.AI.Provider {
	case "", "openai", "gemini", "huggingface", "ollama":
	default:
		return fmt.Errorf("ai.provider must be one of openai, gemini, huggingface, ollama (got %q)", c.AI.Provider)
	}
	if c.AI.MaxRetries < 0 {
		return errors.New("ai.max_retries cannot be negative")
	}
	if c.MCP.SSEPort < 0 || c.MCP.SSEPort > 65535 {
		return fmt.Errorf("mcp.sse_port out of range: %d", c.MCP.SSEPort)
	}
	if c.Recorder.Enabled && c.Recorder.TraceDir == "" {
		return errors.New("recorder.trace_dir is required when the recorder is enabled")
	}
	return nil
}

// GetRequestTimeout returns the parsed request timeout with a sane default.
func (a AppiumConfig) GetRequestTimeout() time.Duration {
	if a.RequestTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(a.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetTimeout returns the parsed AI call timeout with a sane default.
func (a AIConfig) GetTimeout() time.Duration {
	if a.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetRetryDelay returns the parsed base retry delay with a sane default.
func (a AIConfig) GetRetryDelay() time.Duration {
	if a.RetryDelay == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(a.RetryDelay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
