package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	apperrors "mcp-appium-server/internal/errors"
)

// postJSON performs one JSON POST exchange and returns the status code with
// the raw body. Transport failures come back coded; HTTP-level status
// mapping stays with the caller since it differs per backend.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeAIProvider, err, "encoding request for %s", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeAIProvider, err, "building request for %s", url)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, aiTransportError(err, url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.Wrap(apperrors.CodeAIConnection, err, "reading response from %s", url)
	}
	return resp.StatusCode, body, nil
}

// getJSON performs one GET exchange, same contract as postJSON.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.CodeAIProvider, err, "building request for %s", url)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, aiTransportError(err, url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.Wrap(apperrors.CodeAIConnection, err, "reading response from %s", url)
	}
	return resp.StatusCode, body, nil
}

func aiTransportError(err error, url string) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(apperrors.CodeAIConnection, err, "request to %s timed out", url)
	}
	return apperrors.Wrap(apperrors.CodeAIConnection, err, "request to %s failed", url)
}

// mapStatusError converts a non-2xx HTTP status into the taxonomy. Backends
// with quirkier mappings handle those statuses before calling this.
func mapStatusError(provider string, status int, body []byte) error {
	msg := errorMessageFromBody(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.New(apperrors.CodeAIAuthentication, "%s rejected credentials (status %d): %s", provider, status, msg)
	case status == http.StatusTooManyRequests:
		return apperrors.New(apperrors.CodeAIQuotaExceeded, "%s rate limit exceeded: %s", provider, msg)
	case status == http.StatusNotFound:
		return apperrors.New(apperrors.CodeAIModelUnavailable, "%s model not found: %s", provider, msg)
	case status >= 500:
		return apperrors.New(apperrors.CodeAIConnection, "%s server error (status %d): %s", provider, status, msg)
	default:
		return apperrors.New(apperrors.CodeAIProvider, "%s returned status %d: %s", provider, status, msg)
	}
}

// errorMessageFromBody digs a human-readable message out of the usual error
// envelopes; falls back to the raw body.
func errorMessageFromBody(body []byte) string {
	var envelope struct {
		Error any    `json:"error"`
		Msg   string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch e := envelope.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if envelope.Msg != "" {
			return envelope.Msg
		}
	}
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
