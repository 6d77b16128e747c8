package ai

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

type openAIProvider struct {
	model      string
	apiKey     string
	baseURL    string
	cfg        ModelConfig
	logger     *zap.Logger
	httpClient *http.Client
	state      state
}

func newOpenAIProvider(opts Options) *openAIProvider {
	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{
		model:      model,
		apiKey:     keyOrEnv(opts.APIKey, "OPENAI_API_KEY"),
		baseURL:    baseURL,
		cfg:        opts.Config,
		logger:     opts.Logger,
		httpClient: &http.Client{Timeout: opts.Config.Timeout},
	}
}

func (p *openAIProvider) Name() string { return string(KindOpenAI) }

func (p *openAIProvider) Initialize(ctx context.Context) error {
	if p.apiKey == "" {
		return apperrors.New(apperrors.CodeAIAuthentication, "OpenAI API key not set (OPENAI_API_KEY)")
	}
	p.state = stateReady
	p.logger.Info("AI provider initialized", zap.String("provider", p.Name()), zap.String("model", p.model))
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *openAIProvider) ChatCompletion(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	if p.state != stateReady {
		return "", apperrors.New(apperrors.CodeAIProvider, "OpenAI provider not initialized")
	}

	reqBody := openAIChatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: SanitizeText(system)},
			{Role: "user", Content: SanitizeText(user)},
		},
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	}
	if jsonResponse {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	return callWithRetry(ctx, p.cfg, p.logger, nil, "OpenAI chat completion", func(ctx context.Context) (string, error) {
		status, body, err := postJSON(ctx, p.httpClient, p.baseURL+"/v1/chat/completions", map[string]string{
			"Authorization": "Bearer " + p.apiKey,
		}, reqBody)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			return "", mapStatusError("OpenAI", status, body)
		}

		var parsed openAIChatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "decoding OpenAI response")
		}
		if len(parsed.Choices) == 0 {
			return "", apperrors.New(apperrors.CodeAIResponseParsing, "OpenAI response contained no choices")
		}
		return parsed.Choices[0].Message.Content, nil
	})
}
