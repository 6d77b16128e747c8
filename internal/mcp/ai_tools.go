package mcp

import (
	"context"
	"fmt"
	"time"

	"mcp-appium-server/internal/ai"
	"mcp-appium-server/internal/appium"
)

type AIInterpretTool struct {
	server *Server
}

func (t *AIInterpretTool) Name() string { return "ai-interpret" }
func (t *AIInterpretTool) Description() string {
	return `Convert a natural-language instruction into a structured automation action.

Examples: "tap the login button", "type alice@example.com into the email
field", "scroll down to the settings row".

The current page source is sent to the model for grounding unless
include_context is false. When execute is true the resulting action also
runs against the active session.

Returns: {action, parameters, executed, result?}.`
}
func (t *AIInterpretTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"command": map[string]interface{}{
				"type":        "string",
				"description": "Natural-language instruction to interpret",
			},
			"include_context": map[string]interface{}{
				"type":        "boolean",
				"description": "Send current page source to the model (default true)",
			},
			"execute": map[string]interface{}{
				"type":        "boolean",
				"description": "Execute the interpreted action against the session (default false)",
			},
		},
		"required": []string{"command"},
	}
}
func (t *AIInterpretTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	command := getStringArg(args, "command")
	if command == "" {
		return nil, fmt.Errorf("command is required")
	}

	uiContext := ""
	if getBoolArg(args, "include_context", true) {
		if sess := t.server.client.Session(); sess != nil {
			if source, err := sess.PageSource(ctx); err == nil {
				uiContext = source
			}
		}
	}

	action, err := t.server.interpreter.InterpretCommand(ctx, command, uiContext)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"action":     action.Action,
		"parameters": action.Parameters,
		"executed":   false,
	}

	if getBoolArg(args, "execute", false) {
		sess, err := t.server.session()
		if err != nil {
			return nil, err
		}
		execResult, err := executeAction(ctx, sess, action)
		if err != nil {
			return nil, fmt.Errorf("executing interpreted action %s: %w", action.Action, err)
		}
		result["executed"] = true
		if execResult != nil {
			result["result"] = execResult
		}
	}

	return result, nil
}

// executeAction maps an interpreted action onto the session proxy. The
// action vocabulary mirrors the interpreter's system prompt.
func executeAction(ctx context.Context, sess *appium.Session, action ai.Action) (interface{}, error) {
	p := action.Parameters
	by, _ := p["by"].(string)
	value, _ := p["value"].(string)

	findTarget := func() (*appium.Element, error) {
		return sess.FindElement(ctx, normalizeStrategy(by), value)
	}

	switch action.Action {
	case "find_element":
		el, err := findTarget()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"element_id": el.ID}, nil
	case "click":
		el, err := findTarget()
		if err != nil {
			return nil, err
		}
		return nil, el.Click(ctx)
	case "send_keys":
		el, err := findTarget()
		if err != nil {
			return nil, err
		}
		text, _ := p["text"].(string)
		return nil, el.SendKeys(ctx, text)
	case "clear":
		el, err := findTarget()
		if err != nil {
			return nil, err
		}
		return nil, el.Clear(ctx)
	case "tap":
		return nil, sess.Tap(ctx, paramInt(p, "x", 0), paramInt(p, "y", 0))
	case "swipe":
		return nil, sess.Swipe(ctx,
			paramInt(p, "start_x", 0), paramInt(p, "start_y", 0),
			paramInt(p, "end_x", 0), paramInt(p, "end_y", 0),
			paramInt(p, "duration", 800))
	case "scroll":
		direction, _ := p["direction"].(string)
		percent, ok := p["percent"].(float64)
		if !ok || percent <= 0 {
			percent = 0.5
		}
		return nil, sess.Scroll(ctx, direction, percent, paramInt(p, "duration", 800))
	case "long_press":
		return nil, sess.LongPress(ctx, paramInt(p, "x", 0), paramInt(p, "y", 0), paramInt(p, "duration", 1000))
	case "navigate":
		url, _ := p["url"].(string)
		return nil, sess.NavigateTo(ctx, url)
	case "back":
		return nil, sess.Back(ctx)
	case "switch_context":
		name, _ := p["name"].(string)
		return nil, sess.SwitchToContext(ctx, name)
	case "set_orientation":
		orientation, _ := p["orientation"].(string)
		return nil, sess.SetOrientation(ctx, orientation)
	case "launch_app":
		return nil, sess.LaunchApp(ctx)
	case "close_app":
		return nil, sess.CloseApp(ctx)
	case "reset_app":
		return nil, sess.ResetApp(ctx)
	case "screenshot":
		data, err := sess.Screenshot(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"screenshot": data}, nil
	case "wait":
		ms := paramInt(p, "duration", 1000)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(ms) * time.Millisecond):
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("unsupported action: %s", action.Action)
	}
}

// normalizeStrategy maps interpreter strategy names to the wire protocol's
// locator strategies.
func normalizeStrategy(by string) string {
	switch by {
	case "accessibility_id":
		return "accessibility id"
	case "class_name":
		return "class name"
	case "android_uiautomator":
		return "-android uiautomator"
	case "ios_predicate":
		return "-ios predicate string"
	default:
		return by
	}
}

func paramInt(p map[string]any, key string, fallback int) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

type AIDescribeScreenTool struct {
	server *Server
}

func (t *AIDescribeScreenTool) Name() string { return "ai-describe-screen" }
func (t *AIDescribeScreenTool) Description() string {
	return "Ask the AI to describe the current screen: purpose, main elements, visible controls."
}
func (t *AIDescribeScreenTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *AIDescribeScreenTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	source, err := sess.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	description, err := t.server.interpreter.DescribeScreen(ctx, source)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"description": description}, nil
}

type AISuggestActionsTool struct {
	server *Server
}

func (t *AISuggestActionsTool) Name() string { return "ai-suggest-actions" }
func (t *AISuggestActionsTool) Description() string {
	return "Ask the AI to suggest test actions worth performing on the current screen."
}
func (t *AISuggestActionsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *AISuggestActionsTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	source, err := sess.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	suggestions, err := t.server.interpreter.SuggestTestActions(ctx, source)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"suggestions": suggestions}, nil
}
