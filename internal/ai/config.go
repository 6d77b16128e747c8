package ai

import "time"

// Model configuration defaults.
const (
	DefaultTimeout            = 60 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = 2 * time.Second
	DefaultRetryBackoffFactor = 2.0
	DefaultTemperature        = 0.7
	DefaultMaxTokens          = 1024
)

// ModelConfig carries per-provider generation and retry settings. Extra
// holds backend-specific options passed through untouched.
type ModelConfig struct {
	Timeout            time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
	RetryBackoffFactor float64
	Temperature        float64
	MaxTokens          int
	Extra              map[string]any
}

// DefaultModelConfig returns a config with every field at its default.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Timeout:            DefaultTimeout,
		MaxRetries:         DefaultMaxRetries,
		RetryDelay:         DefaultRetryDelay,
		RetryBackoffFactor: DefaultRetryBackoffFactor,
		Temperature:        DefaultTemperature,
		MaxTokens:          DefaultMaxTokens,
	}
}

// withDefaults fills missing fields so a partially specified config behaves
// sanely. Zero retries and zero temperature are legitimate settings; only
// negative values count as missing for those.
func (c ModelConfig) withDefaults() ModelConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.RetryBackoffFactor <= 0 {
		c.RetryBackoffFactor = DefaultRetryBackoffFactor
	}
	if c.Temperature < 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return c
}
