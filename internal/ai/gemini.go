package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type geminiProvider struct {
	model      string
	apiKey     string
	baseURL    string
	cfg        ModelConfig
	logger     *zap.Logger
	httpClient *http.Client
	state      state
}

func newGeminiProvider(opts Options) *geminiProvider {
	model := opts.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &geminiProvider{
		model:      model,
		apiKey:     keyOrEnv(opts.APIKey, "GOOGLE_API_KEY"),
		baseURL:    baseURL,
		cfg:        opts.Config,
		logger:     opts.Logger,
		httpClient: &http.Client{Timeout: opts.Config.Timeout},
	}
}

func (p *geminiProvider) Name() string { return string(KindGemini) }

func (p *geminiProvider) Initialize(ctx context.Context) error {
	if p.apiKey == "" {
		return apperrors.New(apperrors.CodeAIAuthentication, "Gemini API key not set (GOOGLE_API_KEY)")
	}
	p.state = stateReady
	p.logger.Info("AI provider initialized", zap.String("provider", p.Name()), zap.String("model", p.model))
	return nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// ChatCompletion folds the system prompt into the user turn; the
// generateContent API has no first-class system role on the v1beta surface
// used here. JSON output is requested by instruction rather than a response
// format field.
func (p *geminiProvider) ChatCompletion(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	if p.state != stateReady {
		return "", apperrors.New(apperrors.CodeAIProvider, "Gemini provider not initialized")
	}

	prompt := SanitizeText(system) + "\n\n" + SanitizeText(user)
	if jsonResponse {
		prompt += "\n\nRespond with a single valid JSON object and nothing else."
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	reqBody.GenerationConfig.Temperature = p.cfg.Temperature
	reqBody.GenerationConfig.MaxOutputTokens = p.cfg.MaxTokens

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.baseURL, p.model)

	return callWithRetry(ctx, p.cfg, p.logger, nil, "Gemini chat completion", func(ctx context.Context) (string, error) {
		status, body, err := postJSON(ctx, p.httpClient, url, map[string]string{
			"x-goog-api-key": p.apiKey,
		}, reqBody)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			return "", mapStatusError("Gemini", status, body)
		}

		var parsed geminiResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "decoding Gemini response")
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return "", apperrors.New(apperrors.CodeAIResponseParsing, "Gemini response contained no candidates")
		}
		return parsed.Candidates[0].Content.Parts[0].Text, nil
	})
}
