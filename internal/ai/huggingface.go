package ai

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

const defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"

type huggingFaceProvider struct {
	model      string
	apiKey     string
	baseURL    string
	cfg        ModelConfig
	logger     *zap.Logger
	httpClient *http.Client
	state      state
}

func newHuggingFaceProvider(opts Options) *huggingFaceProvider {
	model := opts.Model
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}
	return &huggingFaceProvider{
		model:      model,
		apiKey:     keyOrEnv(opts.APIKey, "HUGGINGFACE_API_KEY"),
		baseURL:    baseURL,
		cfg:        opts.Config,
		logger:     opts.Logger,
		httpClient: &http.Client{Timeout: opts.Config.Timeout},
	}
}

func (p *huggingFaceProvider) Name() string { return string(KindHuggingFace) }

func (p *huggingFaceProvider) Initialize(ctx context.Context) error {
	if p.apiKey == "" {
		return apperrors.New(apperrors.CodeAIAuthentication, "Hugging Face API key not set (HUGGINGFACE_API_KEY)")
	}
	p.state = stateReady
	p.logger.Info("AI provider initialized", zap.String("provider", p.Name()), zap.String("model", p.model))
	return nil
}

type hfRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		Temperature    float64 `json:"temperature"`
		MaxNewTokens   int     `json:"max_new_tokens"`
		ReturnFullText bool    `json:"return_full_text"`
	} `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// ChatCompletion uses the text-generation inference API: one flattened
// prompt in, `[{generated_text}]` out.
func (p *huggingFaceProvider) ChatCompletion(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	if p.state != stateReady {
		return "", apperrors.New(apperrors.CodeAIProvider, "Hugging Face provider not initialized")
	}

	prompt := SanitizeText(system) + "\n\n" + SanitizeText(user)
	if jsonResponse {
		prompt += "\n\nRespond with a single valid JSON object and nothing else."
	}

	var reqBody hfRequest
	reqBody.Inputs = prompt
	reqBody.Parameters.Temperature = p.cfg.Temperature
	reqBody.Parameters.MaxNewTokens = p.cfg.MaxTokens
	reqBody.Parameters.ReturnFullText = false

	url := p.baseURL + "/models/" + p.model

	return callWithRetry(ctx, p.cfg, p.logger, nil, "Hugging Face text generation", func(ctx context.Context) (string, error) {
		status, body, err := postJSON(ctx, p.httpClient, url, map[string]string{
			"Authorization": "Bearer " + p.apiKey,
		}, reqBody)
		if err != nil {
			return "", err
		}
		if status != http.StatusOK {
			return "", mapStatusError("Hugging Face", status, body)
		}

		var generations []hfGeneration
		if err := json.Unmarshal(body, &generations); err != nil {
			return "", apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "decoding Hugging Face response")
		}
		if len(generations) == 0 {
			return "", apperrors.New(apperrors.CodeAIResponseParsing, "Hugging Face response contained no generations")
		}
		return generations[0].GeneratedText, nil
	})
}
