package appium

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizeResponseLegacy(t *testing.T) {
	resp := NormalizeResponse(map[string]any{
		"status": float64(0),
		"value":  "ok",
	})
	assert.True(t, resp.OK())
	assert.Equal(t, "ok", resp.Value)

	resp = NormalizeResponse(map[string]any{
		"status":  float64(7),
		"value":   nil,
		"message": "no such element",
	})
	assert.False(t, resp.OK())
	assert.Equal(t, 7, resp.Status)
	assert.Equal(t, "no such element", resp.Message)
}

func TestNormalizeResponseW3C(t *testing.T) {
	resp := NormalizeResponse(map[string]any{
		"value": map[string]any{"sessionId": "abc"},
	})
	assert.True(t, resp.OK())

	resp = NormalizeResponse(map[string]any{
		"value": map[string]any{
			"error":   "no such element",
			"message": "element not found on screen",
		},
	})
	assert.False(t, resp.OK())
	assert.Equal(t, "element not found on screen", resp.Message)

	// Error name stands in when the message is empty.
	resp = NormalizeResponse(map[string]any{
		"value": map[string]any{"error": "stale element reference"},
	})
	assert.False(t, resp.OK())
	assert.Equal(t, "stale element reference", resp.Message)
}

func TestElementIDKeyPriority(t *testing.T) {
	id, ok := ElementID(map[string]any{LegacyElementKey: "legacy-1"})
	assert.True(t, ok)
	assert.Equal(t, "legacy-1", id)

	id, ok = ElementID(map[string]any{W3CElementKey: "w3c-1"})
	assert.True(t, ok)
	assert.Equal(t, "w3c-1", id)

	// Legacy key wins when both are present.
	id, ok = ElementID(map[string]any{
		LegacyElementKey: "legacy-2",
		W3CElementKey:    "w3c-2",
	})
	assert.True(t, ok)
	assert.Equal(t, "legacy-2", id)

	_, ok = ElementID(map[string]any{"text": "not an element"})
	assert.False(t, ok)
	_, ok = ElementID("plain string")
	assert.False(t, ok)
}

func TestElementIDsOrderAndSkipping(t *testing.T) {
	ids := ElementIDs([]any{
		map[string]any{LegacyElementKey: "a"},
		map[string]any{"unrelated": true},
		map[string]any{W3CElementKey: "b"},
	})
	assert.Equal(t, []string{"a", "b"}, ids)

	assert.Empty(t, ElementIDs([]any{}))
	assert.Nil(t, ElementIDs("not a list"))
}

// Extraction must not care which key scheme the server picked.
func TestElementIDSchemeInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.StringMatching(`[a-f0-9-]{1,36}`).Draw(t, "id")
		key := rapid.SampledFrom([]string{LegacyElementKey, W3CElementKey}).Draw(t, "key")

		got, ok := ElementID(map[string]any{key: id})
		if !ok || got != id {
			t.Fatalf("key %q: got (%q, %v), want (%q, true)", key, got, ok, id)
		}
	})
}
