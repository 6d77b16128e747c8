package appium

// Two response envelopes exist in the wild: the legacy JSON-Wire shape with
// a top-level numeric status (0 = success), and the W3C shape with no status
// where errors ride inside value as {error, message}. Everything downstream
// of the dispatcher sees only the normalized Response.

// W3CElementKey is the element identifier key mandated by the W3C WebDriver
// protocol. LegacyElementKey is the JSON-Wire predecessor. Both still appear
// in Appium server responses depending on driver and protocol negotiation.
const (
	LegacyElementKey = "ELEMENT"
	W3CElementKey    = "element-6066-11e4-a52e-4f735466cecf"
)

// Response is the canonical result of one dispatched command.
type Response struct {
	Status  int    `json:"status,omitempty"`
	Value   any    `json:"value"`
	Message string `json:"message,omitempty"`
}

// OK reports whether the response carries a success status.
func (r Response) OK() bool { return r.Status == 0 }

// NormalizeResponse converts a decoded wire body into the canonical shape.
func NormalizeResponse(raw map[string]any) Response {
	resp := Response{Value: raw["value"]}

	if status, ok := raw["status"]; ok {
		// Legacy shape: top-level status and optional message.
		resp.Status = toInt(status)
		if msg, ok := raw["message"].(string); ok {
			resp.Message = msg
		}
		return resp
	}

	// W3C shape: an error envelope lives inside value.
	if value, ok := resp.Value.(map[string]any); ok {
		if errName, ok := value["error"].(string); ok && errName != "" {
			resp.Status = 1
			if msg, ok := value["message"].(string); ok && msg != "" {
				resp.Message = msg
			} else {
				resp.Message = errName
			}
		}
	}
	return resp
}

// ElementID extracts an element identifier from a single-element value,
// checking the legacy key before the W3C key. A value that carries neither
// key is not an element reference; that is a normal outcome, not an error.
func ElementID(value any) (string, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	for _, key := range []string{LegacyElementKey, W3CElementKey} {
		if id, ok := m[key].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// ElementIDs extracts the ordered identifiers from a multi-element value.
// Entries without a recognizable element key are skipped. An empty result is
// valid: zero matches is success for plural finds.
func ElementIDs(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(list))
	for _, entry := range list {
		if id, ok := ElementID(entry); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
