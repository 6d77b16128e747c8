package ai

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

const defaultOllamaBaseURL = "http://localhost:11434"

type ollamaProvider struct {
	model      string
	baseURL    string
	cfg        ModelConfig
	logger     *zap.Logger
	httpClient *http.Client
	state      state
}

func newOllamaProvider(opts Options) *ollamaProvider {
	model := opts.Model
	if model == "" {
		model = "llama3.2"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = envOr("OLLAMA_BASE_URL", defaultOllamaBaseURL)
	}
	return &ollamaProvider{
		model:      model,
		baseURL:    baseURL,
		cfg:        opts.Config,
		logger:     opts.Logger,
		httpClient: &http.Client{Timeout: opts.Config.Timeout},
	}
}

func (p *ollamaProvider) Name() string { return string(KindOllama) }

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Initialize checks the local daemon is up and the model is present,
// pulling it when missing. The pull blocks until the daemon finishes
// downloading, which can take minutes on first use.
func (p *ollamaProvider) Initialize(ctx context.Context) error {
	status, body, err := getJSON(ctx, p.httpClient, p.baseURL+"/api/tags", nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAIConnection, err, "Ollama daemon unreachable at %s", p.baseURL)
	}
	if status != http.StatusOK {
		return apperrors.New(apperrors.CodeAIConnection, "Ollama daemon returned status %d", status)
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "decoding Ollama model list")
	}
	for _, m := range tags.Models {
		if m.Name == p.model || m.Name == p.model+":latest" {
			p.state = stateReady
			p.logger.Info("AI provider initialized", zap.String("provider", p.Name()), zap.String("model", p.model))
			return nil
		}
	}

	p.logger.Info("pulling Ollama model", zap.String("model", p.model))
	status, body, err = postJSON(ctx, p.httpClient, p.baseURL+"/api/pull", nil, map[string]any{
		"name":   p.model,
		"stream": false,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeAIModelUnavailable, err, "pulling Ollama model %s", p.model)
	}
	if status != http.StatusOK {
		return apperrors.New(apperrors.CodeAIModelUnavailable, "Ollama could not pull model %s: %s", p.model, errorMessageFromBody(body))
	}

	p.state = stateReady
	p.logger.Info("AI provider initialized", zap.String("provider", p.Name()), zap.String("model", p.model))
	return nil
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
}

func (p *ollamaProvider) ChatCompletion(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	if p.state != stateReady {
		return "", apperrors.New(apperrors.CodeAIProvider, "Ollama provider not initialized")
	}

	reqBody := ollamaChatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: SanitizeText(system)},
			{Role: "user", Content: SanitizeText(user)},
		},
		Stream: false,
	}
	if jsonResponse {
		reqBody.Format = "json"
	}
	reqBody.Options.Temperature = p.cfg.Temperature
	reqBody.Options.NumPredict = p.cfg.MaxTokens

	return callWithRetry(ctx, p.cfg, p.logger, nil, "Ollama chat completion", func(ctx context.Context) (string, error) {
		status, body, err := postJSON(ctx, p.httpClient, p.baseURL+"/api/chat", nil, reqBody)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			return "", mapStatusError("Ollama", status, body)
		}

		var parsed ollamaChatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "decoding Ollama response")
		}
		if parsed.Message.Content == "" {
			return "", apperrors.New(apperrors.CodeAIResponseParsing, "Ollama response contained no message")
		}
		return parsed.Message.Content, nil
	})
}
