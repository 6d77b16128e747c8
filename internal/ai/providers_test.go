package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mcp-appium-server/internal/errors"
)

// noRetry keeps provider tests to a single attempt.
func noRetry() ModelConfig {
	cfg := DefaultModelConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestOpenAIChatCompletion(t *testing.T) {
	var gotAuth string
	var gotBody openAIChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "hello there"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(KindOpenAI, Options{APIKey: "sk-test", BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	out, err := p.ChatCompletion(context.Background(), "be brief", "say hi", true)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	require.NotNil(t, gotBody.ResponseFormat)
	assert.Equal(t, "json_object", gotBody.ResponseFormat.Type)
}

func TestExplicitAPIKeyBeatsEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(KindOpenAI, Options{APIKey: "sk-explicit", BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	_, err = p.ChatCompletion(context.Background(), "s", "u", false)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-explicit", gotAuth)
}

func TestEnvironmentKeyIsTheFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(KindOpenAI, Options{BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	_, err = p.ChatCompletion(context.Background(), "s", "u", false)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-from-env", gotAuth)
}

func TestOpenAIAuthFailureDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	cfg := DefaultModelConfig()
	cfg.MaxRetries = 3
	cfg.RetryDelay = time.Millisecond
	p, err := NewProvider(KindOpenAI, Options{APIKey: "sk-bad", BaseURL: srv.URL, Config: cfg})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	_, err = p.ChatCompletion(context.Background(), "s", "u", false)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAIAuthentication, apperrors.CodeOf(err))
	assert.Equal(t, 1, calls)
}

func TestGeminiChatCompletion(t *testing.T) {
	var gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{"content": map[string]any{
					"parts": []any{map[string]any{"text": `{"action":"click"}`}},
				}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(KindGemini, Options{APIKey: "g-key", BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	out, err := p.ChatCompletion(context.Background(), "system prompt", "user prompt", true)
	require.NoError(t, err)
	assert.Equal(t, `{"action":"click"}`, out)
	assert.Equal(t, "g-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	// System and user prompts are folded into one turn, with the JSON
	// instruction appended.
	text := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, text, "system prompt")
	assert.Contains(t, text, "user prompt")
	assert.Contains(t, text, "JSON")
}

func TestHuggingFaceStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		code   apperrors.Code
	}{
		{http.StatusUnauthorized, apperrors.CodeAIAuthentication},
		{http.StatusTooManyRequests, apperrors.CodeAIQuotaExceeded},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "nope"})
		}))

		p, err := NewProvider(KindHuggingFace, Options{APIKey: "hf-key", BaseURL: srv.URL, Config: noRetry()})
		require.NoError(t, err)
		require.NoError(t, p.Initialize(context.Background()))

		_, err = p.ChatCompletion(context.Background(), "s", "u", false)
		require.Error(t, err)
		assert.Equal(t, tc.code, apperrors.CodeOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestHuggingFaceParsesGeneratedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/mistralai/Mistral-7B-Instruct-v0.2", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]any{
			map[string]any{"generated_text": "the answer"},
		})
	}))
	defer srv.Close()

	p, err := NewProvider(KindHuggingFace, Options{APIKey: "hf-key", BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))

	out, err := p.ChatCompletion(context.Background(), "s", "u", false)
	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
}

func TestOllamaInitializePullsMissingModel(t *testing.T) {
	pulled := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"models": []any{map[string]any{"name": "other-model:latest"}},
			})
		case "/api/pull":
			pulled = true
			var req map[string]any
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "llama3.2", req["name"])
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "success"})
		case "/api/chat":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{"role": "assistant", "content": "pong"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p, err := NewProvider(KindOllama, Options{BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))
	assert.True(t, pulled)

	out, err := p.ChatCompletion(context.Background(), "s", "ping", false)
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}

func TestOllamaInitializeSkipsPullWhenPresent(t *testing.T) {
	pullCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"models": []any{map[string]any{"name": "llama3.2:latest"}},
			})
		case "/api/pull":
			pullCalls++
		}
	}))
	defer srv.Close()

	p, err := NewProvider(KindOllama, Options{BaseURL: srv.URL, Config: noRetry()})
	require.NoError(t, err)
	require.NoError(t, p.Initialize(context.Background()))
	assert.Zero(t, pullCalls)
}

func TestOllamaInitializeDaemonUnreachable(t *testing.T) {
	cfg := noRetry()
	cfg.Timeout = 300 * time.Millisecond
	p, err := NewProvider(KindOllama, Options{BaseURL: "http://127.0.0.1:1", Config: cfg})
	require.NoError(t, err)

	err = p.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAIConnection, apperrors.CodeOf(err))
}
