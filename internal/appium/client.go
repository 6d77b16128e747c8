// Package appium implements the client side of the Appium wire protocol:
// a static command registry, a dispatcher that resolves command names into
// HTTP requests, a normalizer for the two historical response envelopes, and
// proxy types for remote sessions and elements.
package appium

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

// DefaultTimeout bounds each wire-protocol request.
const DefaultTimeout = 30 * time.Second

// Client dispatches commands against one Appium server endpoint. It owns at
// most one active session id at a time and is not safe for concurrent use by
// multiple logical sessions; callers needing parallel sessions must create
// independent Clients.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	sessionID string
	session   *Session
}

// NewClient builds a Client for the given Appium server base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// BaseURL returns the configured server endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// SessionID returns the active session id, or "" when no session exists.
func (c *Client) SessionID() string { return c.sessionID }

// Session returns the active session proxy, or nil.
func (c *Client) Session() *Session { return c.session }

// Connect verifies the Appium server is reachable via its /status endpoint.
// An optional url overrides the configured base URL.
func (c *Client) Connect(ctx context.Context, url string) error {
	if url != "" {
		c.baseURL = strings.TrimRight(url, "/")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeConnection, err, "building status request for %s", c.baseURL)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(err, "connecting to Appium server %s", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.New(apperrors.CodeConnection, "Appium server %s returned status %d", c.baseURL, resp.StatusCode)
	}
	if _, err := decodeBody(resp.Body); err != nil {
		return apperrors.Wrap(apperrors.CodeConnection, err, "decoding status response from %s", c.baseURL)
	}

	c.logger.Info("connected to Appium server", zap.String("base_url", c.baseURL))
	return nil
}

// CreateSession starts a new remote session with the given capabilities,
// wrapped in the W3C alwaysMatch/firstMatch envelope. The returned Session
// becomes the client's active session.
func (c *Client) CreateSession(ctx context.Context, capabilities map[string]any) (*Session, error) {
	if len(capabilities) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "capabilities cannot be empty")
	}

	payload := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": capabilities,
			"firstMatch":  []any{map[string]any{}},
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/session", payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSessionNotCreated, err, "creating Appium session")
	}

	value, _ := resp.Value.(map[string]any)
	sessionID, _ := value["sessionId"].(string)
	if sessionID == "" {
		return nil, apperrors.New(apperrors.CodeSessionNotCreated, "no session id in server response")
	}

	caps, _ := value["capabilities"].(map[string]any)
	c.sessionID = sessionID
	c.session = &Session{ID: sessionID, Capabilities: caps, client: c}

	c.logger.Info("created session", zap.String("session_id", sessionID))
	return c.session, nil
}

// Execute dispatches a named command. Path placeholders in the command's URL
// template are filled from the active session id and the params map; every
// param consumed by the path is removed from the outgoing body.
func (c *Client) Execute(ctx context.Context, command string, params map[string]any) (Response, error) {
	if c.sessionID == "" && command != "createSession" {
		return Response{}, apperrors.New(apperrors.CodeSessionNotCreated, "no active session")
	}

	cmd, ok := LookupCommand(command)
	if !ok {
		return Response{}, apperrors.New(apperrors.CodeInvalidArgument, "unknown command: %s", command)
	}

	url, body, err := c.buildRequest(cmd, params)
	if err != nil {
		return Response{}, err
	}

	c.logger.Debug("dispatching command",
		zap.String("command", command),
		zap.String("method", cmd.Method),
		zap.String("url", url))

	resp, err := c.doRequest(ctx, cmd.Method, url, body)
	if err != nil {
		return Response{}, fmt.Errorf("executing command %s: %w", command, err)
	}
	return resp, nil
}

// Quit deletes the remote session, best effort, and clears local session
// state regardless of the outcome. Calling Quit with no active session is a
// no-op.
func (c *Client) Quit(ctx context.Context) {
	if c.sessionID == "" {
		return
	}
	if _, err := c.Execute(ctx, "deleteSession", nil); err != nil {
		c.logger.Warn("error terminating session", zap.String("session_id", c.sessionID), zap.Error(err))
	} else {
		c.logger.Info("session terminated", zap.String("session_id", c.sessionID))
	}
	c.sessionID = ""
	c.session = nil
}

// buildRequest resolves the URL template and splits params into path and
// body parts. A placeholder left unresolved after substitution is an
// invalid-argument error, never a malformed request on the wire.
func (c *Client) buildRequest(cmd Command, params map[string]any) (string, map[string]any, error) {
	switch cmd.Method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return "", nil, apperrors.New(apperrors.CodeInvalidArgument, "unsupported HTTP method: %s", cmd.Method)
	}

	url := strings.ReplaceAll(cmd.URLTemplate, ":session_id", c.sessionID)

	body := make(map[string]any, len(params))
	for key, value := range params {
		placeholder := ":" + key
		if strings.Contains(url, placeholder) {
			url = strings.ReplaceAll(url, placeholder, fmt.Sprintf("%v", value))
			continue
		}
		body[key] = value
	}

	if idx := strings.Index(url, "/:"); idx >= 0 {
		missing := url[idx+2:]
		if end := strings.IndexByte(missing, '/'); end >= 0 {
			missing = missing[:end]
		}
		return "", nil, apperrors.New(apperrors.CodeInvalidArgument, "missing value for path parameter %q", missing)
	}

	return c.baseURL + url, body, nil
}

// doRequest performs one HTTP exchange and normalizes the decoded body.
// GET and DELETE send no body; POST sends the params as JSON.
func (c *Client) doRequest(ctx context.Context, method, url string, body map[string]any) (Response, error) {
	var reader io.Reader
	if method == http.MethodPost {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Response{}, apperrors.Wrap(apperrors.CodeInvalidArgument, err, "encoding request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidArgument, err, "building request")
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, c.transportError(err, "request to %s", url)
	}
	defer resp.Body.Close()

	raw, decodeErr := decodeBody(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr != nil {
			return Response{}, apperrors.New(apperrors.CodeProtocol, "server returned status %d with unparseable body", resp.StatusCode)
		}
		normalized := NormalizeResponse(raw)
		msg := normalized.Message
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return Response{}, apperrors.New(apperrors.CodeProtocol, "%s", msg)
	}
	if decodeErr != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeProtocol, decodeErr, "decoding response body")
	}

	return NormalizeResponse(raw), nil
}

func (c *Client) transportError(err error, format string, args ...any) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(apperrors.CodeTimeout, err, format, args...)
	}
	return apperrors.Wrap(apperrors.CodeConnection, err, format, args...)
}

func decodeBody(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
