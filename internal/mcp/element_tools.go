package mcp

import (
	"context"
	"fmt"
)

// locatorSchema is shared by the element discovery tools.
func locatorSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"by": map[string]interface{}{
			"type":        "string",
			"description": "Locator strategy: id, xpath, accessibility id, class name, -android uiautomator, -ios predicate string",
		},
		"value": map[string]interface{}{
			"type":        "string",
			"description": "Locator value for the chosen strategy",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"by", "value"},
	}
}

// elementIDSchema is shared by the element interaction tools.
func elementIDSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"element_id": map[string]interface{}{
			"type":        "string",
			"description": "Element id returned by find-element",
		},
	}
	required := []string{"element_id"}
	for k, v := range extra {
		props[k] = v
		required = append(required, k)
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

type FindElementTool struct {
	server *Server
}

func (t *FindElementTool) Name() string { return "find-element" }
func (t *FindElementTool) Description() string {
	return `Find a single UI element on the current screen.

Returns its element_id for use with click-element, send-keys, get-text and
the other interaction tools. Fails when no element matches; use
find-elements if absence is an acceptable outcome.`
}
func (t *FindElementTool) InputSchema() map[string]interface{} {
	return locatorSchema(nil)
}
func (t *FindElementTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	el, err := sess.FindElement(ctx, getStringArg(args, "by"), getStringArg(args, "value"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"element_id": el.ID}, nil
}

type FindElementsTool struct {
	server *Server
}

func (t *FindElementsTool) Name() string { return "find-elements" }
func (t *FindElementsTool) Description() string {
	return `Find all UI elements matching a locator.

Zero matches is success with an empty list, not an error. Returns
{element_ids: [...], count}.`
}
func (t *FindElementsTool) InputSchema() map[string]interface{} {
	return locatorSchema(nil)
}
func (t *FindElementsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	els, err := sess.FindElements(ctx, getStringArg(args, "by"), getStringArg(args, "value"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(els))
	for _, el := range els {
		ids = append(ids, el.ID)
	}
	return map[string]interface{}{"element_ids": ids, "count": len(ids)}, nil
}

type ClickElementTool struct {
	server *Server
}

func (t *ClickElementTool) Name() string { return "click-element" }
func (t *ClickElementTool) Description() string {
	return "Click (tap) an element found earlier with find-element."
}
func (t *ClickElementTool) InputSchema() map[string]interface{} {
	return elementIDSchema(nil)
}
func (t *ClickElementTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	id := getStringArg(args, "element_id")
	if id == "" {
		return nil, fmt.Errorf("element_id is required")
	}
	if err := sess.Element(id).Click(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type SendKeysTool struct {
	server *Server
}

func (t *SendKeysTool) Name() string { return "send-keys" }
func (t *SendKeysTool) Description() string {
	return "Type text into an element (input field, search box, etc.)."
}
func (t *SendKeysTool) InputSchema() map[string]interface{} {
	return elementIDSchema(map[string]interface{}{
		"text": map[string]interface{}{
			"type":        "string",
			"description": "Text to type into the element",
		},
	})
}
func (t *SendKeysTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	id := getStringArg(args, "element_id")
	if id == "" {
		return nil, fmt.Errorf("element_id is required")
	}
	if err := sess.Element(id).SendKeys(ctx, getStringArg(args, "text")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type ClearElementTool struct {
	server *Server
}

func (t *ClearElementTool) Name() string { return "clear-element" }
func (t *ClearElementTool) Description() string {
	return "Clear the text content of an element."
}
func (t *ClearElementTool) InputSchema() map[string]interface{} {
	return elementIDSchema(nil)
}
func (t *ClearElementTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	id := getStringArg(args, "element_id")
	if id == "" {
		return nil, fmt.Errorf("element_id is required")
	}
	if err := sess.Element(id).Clear(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type GetTextTool struct {
	server *Server
}

func (t *GetTextTool) Name() string { return "get-text" }
func (t *GetTextTool) Description() string {
	return "Get the visible text of an element."
}
func (t *GetTextTool) InputSchema() map[string]interface{} {
	return elementIDSchema(nil)
}
func (t *GetTextTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	id := getStringArg(args, "element_id")
	if id == "" {
		return nil, fmt.Errorf("element_id is required")
	}
	text, err := sess.Element(id).Text(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"text": text}, nil
}

type GetAttributeTool struct {
	server *Server
}

func (t *GetAttributeTool) Name() string { return "get-attribute" }
func (t *GetAttributeTool) Description() string {
	return `Get the value of an element attribute.

Common attributes: text, content-desc, resource-id, class, enabled,
displayed, checked (Android); name, label, value, visible (iOS).`
}
func (t *GetAttributeTool) InputSchema() map[string]interface{} {
	return elementIDSchema(map[string]interface{}{
		"name": map[string]interface{}{
			"type":        "string",
			"description": "Attribute name to read",
		},
	})
}
func (t *GetAttributeTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	id := getStringArg(args, "element_id")
	if id == "" {
		return nil, fmt.Errorf("element_id is required")
	}
	value, err := sess.Element(id).Attribute(ctx, getStringArg(args, "name"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"value": value}, nil
}
