package mcp

import (
	"context"
	"fmt"
)

type TapTool struct {
	server *Server
}

func (t *TapTool) Name() string { return "tap" }
func (t *TapTool) Description() string {
	return "Tap at absolute screen coordinates. Prefer click-element when a locator exists."
}
func (t *TapTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "integer", "description": "X coordinate in pixels"},
			"y": map[string]interface{}{"type": "integer", "description": "Y coordinate in pixels"},
		},
		"required": []string{"x", "y"},
	}
}
func (t *TapTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.Tap(ctx, getIntArg(args, "x", 0), getIntArg(args, "y", 0)); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type SwipeTool struct {
	server *Server
}

func (t *SwipeTool) Name() string { return "swipe" }
func (t *SwipeTool) Description() string {
	return "Swipe from one point to another over a duration in milliseconds."
}
func (t *SwipeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"start_x":  map[string]interface{}{"type": "integer"},
			"start_y":  map[string]interface{}{"type": "integer"},
			"end_x":    map[string]interface{}{"type": "integer"},
			"end_y":    map[string]interface{}{"type": "integer"},
			"duration": map[string]interface{}{"type": "integer", "description": "Swipe duration in ms (default 800)"},
		},
		"required": []string{"start_x", "start_y", "end_x", "end_y"},
	}
}
func (t *SwipeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	err = sess.Swipe(ctx,
		getIntArg(args, "start_x", 0), getIntArg(args, "start_y", 0),
		getIntArg(args, "end_x", 0), getIntArg(args, "end_y", 0),
		getIntArg(args, "duration", 800))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type ScrollTool struct {
	server *Server
}

func (t *ScrollTool) Name() string { return "scroll" }
func (t *ScrollTool) Description() string {
	return `Scroll the screen in a direction (up, down, left, right).

Coordinates are computed from the current window size; percent controls how
far the gesture travels (0.0 to 1.0, default 0.5).`
}
func (t *ScrollTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"direction": map[string]interface{}{
				"type":        "string",
				"description": "One of: up, down, left, right",
			},
			"percent": map[string]interface{}{
				"type":        "number",
				"description": "Fraction of the screen to travel (default 0.5)",
			},
			"duration": map[string]interface{}{
				"type":        "integer",
				"description": "Gesture duration in ms (default 800)",
			},
		},
		"required": []string{"direction"},
	}
}
func (t *ScrollTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	err = sess.Scroll(ctx,
		getStringArg(args, "direction"),
		getFloatArg(args, "percent", 0.5),
		getIntArg(args, "duration", 800))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type LongPressTool struct {
	server *Server
}

func (t *LongPressTool) Name() string { return "long-press" }
func (t *LongPressTool) Description() string {
	return "Press and hold at screen coordinates for a duration in milliseconds."
}
func (t *LongPressTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x":        map[string]interface{}{"type": "integer"},
			"y":        map[string]interface{}{"type": "integer"},
			"duration": map[string]interface{}{"type": "integer", "description": "Hold duration in ms (default 1000)"},
		},
		"required": []string{"x", "y"},
	}
}
func (t *LongPressTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	err = sess.LongPress(ctx,
		getIntArg(args, "x", 0), getIntArg(args, "y", 0),
		getIntArg(args, "duration", 1000))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type DragAndDropTool struct {
	server *Server
}

func (t *DragAndDropTool) Name() string { return "drag-and-drop" }
func (t *DragAndDropTool) Description() string {
	return "Press at a start point, drag to an end point, and release."
}
func (t *DragAndDropTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"start_x":  map[string]interface{}{"type": "integer"},
			"start_y":  map[string]interface{}{"type": "integer"},
			"end_x":    map[string]interface{}{"type": "integer"},
			"end_y":    map[string]interface{}{"type": "integer"},
			"duration": map[string]interface{}{"type": "integer", "description": "Hold before dragging, in ms (default 1000)"},
		},
		"required": []string{"start_x", "start_y", "end_x", "end_y"},
	}
}
func (t *DragAndDropTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	err = sess.DragAndDrop(ctx,
		getIntArg(args, "start_x", 0), getIntArg(args, "start_y", 0),
		getIntArg(args, "end_x", 0), getIntArg(args, "end_y", 0),
		getIntArg(args, "duration", 1000))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type NavigateTool struct {
	server *Server
}

func (t *NavigateTool) Name() string { return "navigate" }
func (t *NavigateTool) Description() string {
	return "Open a URL in the current web context (requires a webview or browser session)."
}
func (t *NavigateTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{"type": "string", "description": "URL to open"},
		},
		"required": []string{"url"},
	}
}
func (t *NavigateTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.NavigateTo(ctx, getStringArg(args, "url")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type BackTool struct {
	server *Server
}

func (t *BackTool) Name() string { return "back" }
func (t *BackTool) Description() string {
	return "Navigate back (browser history or Android back button)."
}
func (t *BackTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *BackTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.Back(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type PageSourceTool struct {
	server *Server
}

func (t *PageSourceTool) Name() string { return "page-source" }
func (t *PageSourceTool) Description() string {
	return `Get the XML/HTML source of the current screen.

The primary way to discover locators: inspect the hierarchy for resource-id,
content-desc, and class attributes, then use find-element.`
}
func (t *PageSourceTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *PageSourceTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	source, err := sess.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"source": source}, nil
}

type ScreenshotTool struct {
	server *Server
}

func (t *ScreenshotTool) Name() string { return "screenshot" }
func (t *ScreenshotTool) Description() string {
	return "Capture the current screen as a base64-encoded PNG."
}
func (t *ScreenshotTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *ScreenshotTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	data, err := sess.Screenshot(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"screenshot": data, "format": "base64/png"}, nil
}

type GetContextsTool struct {
	server *Server
}

func (t *GetContextsTool) Name() string { return "get-contexts" }
func (t *GetContextsTool) Description() string {
	return "List available contexts (e.g., NATIVE_APP, WEBVIEW_com.example) and the current one."
}
func (t *GetContextsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *GetContextsTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	contexts, err := sess.Contexts(ctx)
	if err != nil {
		return nil, err
	}
	current, err := sess.CurrentContext(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"contexts": contexts, "current": current}, nil
}

type SwitchContextTool struct {
	server *Server
}

func (t *SwitchContextTool) Name() string { return "switch-context" }
func (t *SwitchContextTool) Description() string {
	return "Switch between native and webview contexts. Get names from get-contexts."
}
func (t *SwitchContextTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{"type": "string", "description": "Context name to switch to"},
		},
		"required": []string{"name"},
	}
}
func (t *SwitchContextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.SwitchToContext(ctx, getStringArg(args, "name")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type GetOrientationTool struct {
	server *Server
}

func (t *GetOrientationTool) Name() string { return "get-orientation" }
func (t *GetOrientationTool) Description() string {
	return "Get the device orientation (PORTRAIT or LANDSCAPE)."
}
func (t *GetOrientationTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *GetOrientationTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	orientation, err := sess.Orientation(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"orientation": orientation}, nil
}

type SetOrientationTool struct {
	server *Server
}

func (t *SetOrientationTool) Name() string { return "set-orientation" }
func (t *SetOrientationTool) Description() string {
	return "Rotate the device to PORTRAIT or LANDSCAPE."
}
func (t *SetOrientationTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"orientation": map[string]interface{}{
				"type":        "string",
				"description": "PORTRAIT or LANDSCAPE",
			},
		},
		"required": []string{"orientation"},
	}
}
func (t *SetOrientationTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.SetOrientation(ctx, getStringArg(args, "orientation")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type ExecuteScriptTool struct {
	server *Server
}

func (t *ExecuteScriptTool) Name() string { return "execute-script" }
func (t *ExecuteScriptTool) Description() string {
	return `Execute a script in the current context.

In web contexts this is JavaScript. In native contexts Appium "mobile:"
extension commands work, e.g. script "mobile: scrollGesture" with args
[{"left": 100, "top": 100, "width": 200, "height": 800, "direction": "down",
"percent": 1.0}].`
}
func (t *ExecuteScriptTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"script": map[string]interface{}{"type": "string", "description": "Script body or mobile: command"},
			"args":   map[string]interface{}{"type": "array", "description": "Script arguments"},
		},
		"required": []string{"script"},
	}
}
func (t *ExecuteScriptTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	script := getStringArg(args, "script")
	if script == "" {
		return nil, fmt.Errorf("script is required")
	}
	result, err := sess.ExecuteScript(ctx, script, getListArg(args, "args"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"result": result}, nil
}
