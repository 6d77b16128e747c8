// Package ai abstracts the AI backends used to interpret natural-language
// commands: a closed set of chat-completion providers behind one interface,
// a shared retry core, and an interpreter that turns model output into
// structured automation actions.
package ai

import (
	"context"
	"os"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

// Kind names a supported provider backend.
type Kind string

const (
	KindOpenAI      Kind = "openai"
	KindGemini      Kind = "gemini"
	KindHuggingFace Kind = "huggingface"
	KindOllama      Kind = "ollama"
)

// Provider state. Every provider starts idle; only a successful Initialize
// moves it to ready, and ChatCompletion refuses to run before that.
type state int

const (
	stateIdle state = iota
	stateReady
)

// Provider is one chat-completion backend. Initialize validates credentials
// and reachability; ChatCompletion sends a system+user prompt pair and
// returns the model's text. When jsonResponse is set the provider asks the
// backend for a JSON object reply where the API supports it.
type Provider interface {
	Name() string
	Initialize(ctx context.Context) error
	ChatCompletion(ctx context.Context, system, user string, jsonResponse bool) (string, error)
}

// Options configures provider construction. A zero value is usable: keys
// fall back to the environment and the model config to its defaults.
type Options struct {
	Model  string
	APIKey string
	// BaseURL overrides the backend endpoint, mainly for tests and
	// self-hosted deployments.
	BaseURL string
	Config  ModelConfig
	Logger  *zap.Logger
}

func (o Options) normalized() Options {
	o.Config = o.Config.withDefaults()
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// NewProvider constructs the provider for kind. Unknown kinds are rejected;
// the set is closed on purpose.
func NewProvider(kind Kind, opts Options) (Provider, error) {
	opts = opts.normalized()
	switch kind {
	case KindOpenAI:
		return newOpenAIProvider(opts), nil
	case KindGemini:
		return newGeminiProvider(opts), nil
	case KindHuggingFace:
		return newHuggingFaceProvider(opts), nil
	case KindOllama:
		return newOllamaProvider(opts), nil
	default:
		return nil, apperrors.New(apperrors.CodeAIProvider, "unsupported AI provider: %s", kind)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// keyOrEnv resolves a credential: an explicitly supplied key wins, the
// environment is only the fallback.
func keyOrEnv(explicit, envKey string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(envKey)
}
