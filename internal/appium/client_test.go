package appium

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mcp-appium-server/internal/errors"
)

// recordedRequest captures one request the fake Appium server received.
type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeAppium is a minimal Appium server double: it records requests and
// replays canned responses by method+path.
type fakeAppium struct {
	t         *testing.T
	requests  []recordedRequest
	responses map[string]any
	status    map[string]int
}

func newFakeAppium(t *testing.T) (*fakeAppium, *httptest.Server) {
	f := &fakeAppium{
		t:         t,
		responses: map[string]any{},
		status:    map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		key := r.Method + " " + r.URL.Path
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})

		if code, ok := f.status[key]; ok {
			w.WriteHeader(code)
		}
		resp, ok := f.responses[key]
		if !ok {
			resp = map[string]any{"value": nil}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAppium) last() recordedRequest {
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T) (*Client, *fakeAppium) {
	fake, srv := newFakeAppium(t)
	client := NewClient(srv.URL, 5*time.Second, nil)
	return client, fake
}

func createTestSession(t *testing.T, client *Client, fake *fakeAppium) *Session {
	fake.responses["POST /session"] = map[string]any{
		"value": map[string]any{
			"sessionId":    "sess-1",
			"capabilities": map[string]any{"platformName": "Android"},
		},
	}
	sess, err := client.CreateSession(context.Background(), map[string]any{"platformName": "Android"})
	require.NoError(t, err)
	return sess
}

func TestConnect(t *testing.T) {
	client, fake := newTestClient(t)
	fake.responses["GET /status"] = map[string]any{"value": map[string]any{"ready": true}}

	require.NoError(t, client.Connect(context.Background(), ""))
	assert.Equal(t, "GET", fake.last().Method)
	assert.Equal(t, "/status", fake.last().Path)
}

func TestConnectFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil)
	err := client.Connect(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConnection, apperrors.CodeOf(err))
}

func TestCreateSessionW3CEnvelope(t *testing.T) {
	client, fake := newTestClient(t)
	sess := createTestSession(t, client, fake)

	assert.Equal(t, "sess-1", sess.ID)
	assert.Equal(t, "sess-1", client.SessionID())
	assert.Equal(t, sess, client.Session())

	body := fake.last().Body
	caps, ok := body["capabilities"].(map[string]any)
	require.True(t, ok, "capabilities envelope missing: %v", body)
	assert.Contains(t, caps, "alwaysMatch")
	assert.Contains(t, caps, "firstMatch")
}

func TestCreateSessionEmptyCapabilities(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.CreateSession(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestCreateSessionMissingSessionID(t *testing.T) {
	client, fake := newTestClient(t)
	fake.responses["POST /session"] = map[string]any{"value": map[string]any{}}

	_, err := client.CreateSession(context.Background(), map[string]any{"platformName": "Android"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSessionNotCreated, apperrors.CodeOf(err))
}

func TestExecuteRequiresSession(t *testing.T) {
	client, _ := newTestClient(t)
	_, err := client.Execute(context.Background(), "findElement", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSessionNotCreated, apperrors.CodeOf(err))
}

func TestExecuteUnknownCommand(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	_, err := client.Execute(context.Background(), "teleport", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestExecutePathParamsLeaveBody(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	_, err := client.Execute(context.Background(), "getAttribute", map[string]any{
		"element_id": "el-9",
		"name":       "content-desc",
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/session/sess-1/element/el-9/attribute/content-desc", req.Path)
	// GET carries no body at all.
	assert.Nil(t, req.Body)
}

func TestExecutePostBodyExcludesPathParams(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	_, err := client.Execute(context.Background(), "sendKeys", map[string]any{
		"element_id": "el-3",
		"text":       "hello",
	})
	require.NoError(t, err)

	req := fake.last()
	assert.Equal(t, "/session/sess-1/element/el-3/value", req.Path)
	assert.Equal(t, "hello", req.Body["text"])
	assert.NotContains(t, req.Body, "element_id")
}

func TestExecuteMissingPathParam(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	_, err := client.Execute(context.Background(), "getAttribute", map[string]any{"name": "text"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "element_id")
	// Nothing reached the wire beyond session creation.
	assert.Len(t, fake.requests, 1)
}

func TestExecuteServerError(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	fake.status["POST /session/sess-1/element"] = http.StatusNotFound
	fake.responses["POST /session/sess-1/element"] = map[string]any{
		"value": map[string]any{
			"error":   "no such element",
			"message": "locator matched nothing",
		},
	}

	_, err := client.Execute(context.Background(), "findElement", map[string]any{"using": "id", "value": "missing"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProtocol, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "locator matched nothing")
}

func TestQuitClearsStateEvenOnServerError(t *testing.T) {
	client, fake := newTestClient(t)
	createTestSession(t, client, fake)

	fake.status["DELETE /session/sess-1"] = http.StatusInternalServerError

	client.Quit(context.Background())
	assert.Empty(t, client.SessionID())
	assert.Nil(t, client.Session())

	// Second Quit is a no-op, nothing new on the wire.
	before := len(fake.requests)
	client.Quit(context.Background())
	assert.Len(t, fake.requests, before)
}
