package appium

import (
	"context"
	"strings"

	apperrors "mcp-appium-server/internal/errors"
)

// Element is a proxy for one remote UI element. It holds only the server's
// element reference plus the raw map it arrived in; every interaction is a
// fresh dispatch through the owning session's client.
type Element struct {
	ID   string
	Info map[string]any

	session *Session
}

func (e *Element) execute(ctx context.Context, command string, params map[string]any) (Response, error) {
	if params == nil {
		params = map[string]any{}
	}
	params["element_id"] = e.ID
	return e.session.client.Execute(ctx, command, params)
}

// Click taps the element.
func (e *Element) Click(ctx context.Context) error {
	_, err := e.execute(ctx, "click", nil)
	return err
}

// Clear empties the element's text content.
func (e *Element) Clear(ctx context.Context) error {
	_, err := e.execute(ctx, "clear", nil)
	return err
}

// SendKeys types text into the element. Both the W3C text field and the
// legacy per-character value list go on the wire; drivers read whichever
// they understand.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	if text == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "text cannot be empty")
	}
	return e.sendKeysRaw(ctx, text)
}

func (e *Element) sendKeysRaw(ctx context.Context, text string) error {
	_, err := e.execute(ctx, "sendKeys", map[string]any{
		"text":  text,
		"value": strings.Split(text, ""),
	})
	return err
}

// Text returns the element's visible text.
func (e *Element) Text(ctx context.Context) (string, error) {
	resp, err := e.execute(ctx, "getText", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// Attribute returns the named attribute's value, or "" when the attribute is
// absent.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "attribute name cannot be empty")
	}
	resp, err := e.execute(ctx, "getAttribute", map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// IsDisplayed reports whether the element is visible.
func (e *Element) IsDisplayed(ctx context.Context) (bool, error) {
	resp, err := e.execute(ctx, "isDisplayed", nil)
	if err != nil {
		return false, err
	}
	return valueBool(resp), nil
}

// IsEnabled reports whether the element accepts interaction.
func (e *Element) IsEnabled(ctx context.Context) (bool, error) {
	resp, err := e.execute(ctx, "isEnabled", nil)
	if err != nil {
		return false, err
	}
	return valueBool(resp), nil
}

// IsSelected reports whether the element is selected or checked.
func (e *Element) IsSelected(ctx context.Context) (bool, error) {
	resp, err := e.execute(ctx, "isSelected", nil)
	if err != nil {
		return false, err
	}
	return valueBool(resp), nil
}

// Screenshot captures only this element as a base64-encoded PNG.
func (e *Element) Screenshot(ctx context.Context) (string, error) {
	resp, err := e.execute(ctx, "elementScreenshot", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// Rect returns the element's position and size in screen pixels.
func (e *Element) Rect(ctx context.Context) (x, y, width, height int, err error) {
	resp, err := e.execute(ctx, "getElementRect", nil)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	rect, ok := resp.Value.(map[string]any)
	if !ok {
		return 0, 0, 0, 0, apperrors.New(apperrors.CodeProtocol, "unexpected element rect payload")
	}
	return toInt(rect["x"]), toInt(rect["y"]), toInt(rect["width"]), toInt(rect["height"]), nil
}

// FindElement locates a single child element relative to this one. Absence
// is a no-such-element error, same as a session-level find.
func (e *Element) FindElement(ctx context.Context, by, value string) (*Element, error) {
	if by == "" || value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "locator strategy and value cannot be empty")
	}
	resp, err := e.execute(ctx, "findElementFromElement", map[string]any{"using": by, "value": value})
	if err != nil {
		return nil, err
	}
	id, ok := ElementID(resp.Value)
	if !ok {
		return nil, apperrors.New(apperrors.CodeNoSuchElement, "child element not found using %s=%s", by, value)
	}
	info, _ := resp.Value.(map[string]any)
	return &Element{ID: id, Info: info, session: e.session}, nil
}

// FindElements locates all matching child elements. Zero matches returns an
// empty slice.
func (e *Element) FindElements(ctx context.Context, by, value string) ([]*Element, error) {
	if by == "" || value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "locator strategy and value cannot be empty")
	}
	resp, err := e.execute(ctx, "findElementsFromElement", map[string]any{"using": by, "value": value})
	if err != nil {
		return nil, err
	}
	list, _ := resp.Value.([]any)
	elements := make([]*Element, 0, len(list))
	for _, entry := range list {
		if id, ok := ElementID(entry); ok {
			info, _ := entry.(map[string]any)
			elements = append(elements, &Element{ID: id, Info: info, session: e.session})
		}
	}
	return elements, nil
}
