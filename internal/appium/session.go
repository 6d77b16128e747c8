package appium

import (
	"context"

	apperrors "mcp-appium-server/internal/errors"
)

// Session is an in-memory proxy for one remote Appium session. Every method
// translates into a registry lookup and dispatch round trip through the
// owning client; the session itself holds no remote state beyond its id and
// the capabilities snapshot taken at creation.
type Session struct {
	ID           string
	Capabilities map[string]any

	client *Client
}

// Scroll directions accepted by Session.Scroll.
const (
	ScrollUp    = "up"
	ScrollDown  = "down"
	ScrollLeft  = "left"
	ScrollRight = "right"
)

// FindElement locates a single element. Absence of a valid element reference
// in the response is a no-such-element error.
func (s *Session) FindElement(ctx context.Context, by, value string) (*Element, error) {
	if by == "" || value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "locator strategy and value cannot be empty")
	}

	resp, err := s.client.Execute(ctx, "findElement", map[string]any{"using": by, "value": value})
	if err != nil {
		return nil, err
	}

	id, ok := ElementID(resp.Value)
	if !ok {
		return nil, apperrors.New(apperrors.CodeNoSuchElement, "element not found using %s=%s", by, value)
	}
	info, _ := resp.Value.(map[string]any)
	return &Element{ID: id, Info: info, session: s}, nil
}

// FindElements locates all matching elements. Zero matches is a valid
// outcome: an empty slice, never an error.
func (s *Session) FindElements(ctx context.Context, by, value string) ([]*Element, error) {
	if by == "" || value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "locator strategy and value cannot be empty")
	}

	resp, err := s.client.Execute(ctx, "findElements", map[string]any{"using": by, "value": value})
	if err != nil {
		return nil, err
	}

	list, _ := resp.Value.([]any)
	elements := make([]*Element, 0, len(list))
	for _, entry := range list {
		if id, ok := ElementID(entry); ok {
			info, _ := entry.(map[string]any)
			elements = append(elements, &Element{ID: id, Info: info, session: s})
		}
	}
	return elements, nil
}

// Element rebuilds an element proxy from a previously returned element id.
// Useful for callers that pass element references across process boundaries.
func (s *Session) Element(id string) *Element {
	return &Element{ID: id, session: s}
}

// PageSource returns the XML/HTML source of the current view.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "source", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// CurrentContext returns the active context name (e.g. NATIVE_APP).
func (s *Session) CurrentContext(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getCurrentContext", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// Contexts returns all available context names.
func (s *Session) Contexts(ctx context.Context) ([]string, error) {
	resp, err := s.client.Execute(ctx, "getContexts", nil)
	if err != nil {
		return nil, err
	}
	return valueStrings(resp), nil
}

// SwitchToContext switches between native and web contexts.
func (s *Session) SwitchToContext(ctx context.Context, name string) error {
	if name == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "context name cannot be empty")
	}
	_, err := s.client.Execute(ctx, "switchContext", map[string]any{"name": name})
	return err
}

// CurrentURL returns the URL of the current page (web context).
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getCurrentUrl", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// NavigateTo opens the given URL (web context).
func (s *Session) NavigateTo(ctx context.Context, url string) error {
	if url == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "url cannot be empty")
	}
	_, err := s.client.Execute(ctx, "navigateTo", map[string]any{"url": url})
	return err
}

// Back navigates back in history.
func (s *Session) Back(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "back", nil)
	return err
}

// Orientation returns PORTRAIT or LANDSCAPE.
func (s *Session) Orientation(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getOrientation", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// SetOrientation rotates the device. Only PORTRAIT and LANDSCAPE are valid.
func (s *Session) SetOrientation(ctx context.Context, orientation string) error {
	if orientation != "PORTRAIT" && orientation != "LANDSCAPE" {
		return apperrors.New(apperrors.CodeInvalidArgument, "orientation must be PORTRAIT or LANDSCAPE")
	}
	_, err := s.client.Execute(ctx, "setOrientation", map[string]any{"orientation": orientation})
	return err
}

// Screenshot returns the current view as a base64-encoded PNG.
func (s *Session) Screenshot(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "screenshot", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// LaunchApp launches the app under test.
func (s *Session) LaunchApp(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "launchApp", nil)
	return err
}

// CloseApp closes the app under test.
func (s *Session) CloseApp(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "closeApp", nil)
	return err
}

// ResetApp resets the app under test.
func (s *Session) ResetApp(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "resetApp", nil)
	return err
}

// InstallApp installs an app from the given path on the server host.
func (s *Session) InstallApp(ctx context.Context, appPath string) error {
	if appPath == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "app path cannot be empty")
	}
	_, err := s.client.Execute(ctx, "installApp", map[string]any{"appPath": appPath})
	return err
}

// RemoveApp removes an app by bundle id or package name.
func (s *Session) RemoveApp(ctx context.Context, appID string) error {
	if appID == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "app id cannot be empty")
	}
	_, err := s.client.Execute(ctx, "removeApp", map[string]any{"appId": appID})
	return err
}

// IsAppInstalled reports whether an app is installed on the device.
func (s *Session) IsAppInstalled(ctx context.Context, appID string) (bool, error) {
	if appID == "" {
		return false, apperrors.New(apperrors.CodeInvalidArgument, "app id cannot be empty")
	}
	resp, err := s.client.Execute(ctx, "isAppInstalled", map[string]any{"bundleId": appID})
	if err != nil {
		return false, err
	}
	return valueBool(resp), nil
}

// StartActivity starts an Android activity, optionally waiting for another.
func (s *Session) StartActivity(ctx context.Context, appPackage, appActivity, waitPackage, waitActivity string) error {
	if appPackage == "" || appActivity == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "package name and activity name cannot be empty")
	}
	params := map[string]any{"appPackage": appPackage, "appActivity": appActivity}
	if waitPackage != "" {
		params["appWaitPackage"] = waitPackage
	}
	if waitActivity != "" {
		params["appWaitActivity"] = waitActivity
	}
	_, err := s.client.Execute(ctx, "startActivity", params)
	return err
}

// CurrentActivity returns the foreground activity name (Android).
func (s *Session) CurrentActivity(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getCurrentActivity", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// CurrentPackage returns the foreground package name (Android).
func (s *Session) CurrentPackage(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getCurrentPackage", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// DeviceTime returns the device clock time.
func (s *Session) DeviceTime(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getDeviceTime", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// ExecuteScript runs JavaScript synchronously in the current context.
func (s *Session) ExecuteScript(ctx context.Context, script string, args []any) (any, error) {
	if script == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "script cannot be empty")
	}
	if args == nil {
		args = []any{}
	}
	resp, err := s.client.Execute(ctx, "executeScript", map[string]any{"script": script, "args": args})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// ExecuteAsyncScript runs JavaScript asynchronously in the current context.
func (s *Session) ExecuteAsyncScript(ctx context.Context, script string, args []any) (any, error) {
	if script == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "script cannot be empty")
	}
	if args == nil {
		args = []any{}
	}
	resp, err := s.client.Execute(ctx, "executeAsyncScript", map[string]any{"script": script, "args": args})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// SetTimeouts configures session timeouts in milliseconds. Nil values are
// omitted; a call with nothing to set is a no-op.
func (s *Session) SetTimeouts(ctx context.Context, implicit, pageLoad, script *int) error {
	timeouts := map[string]any{}
	if implicit != nil {
		timeouts["implicit"] = *implicit
	}
	if pageLoad != nil {
		timeouts["pageLoad"] = *pageLoad
	}
	if script != nil {
		timeouts["script"] = *script
	}
	if len(timeouts) == 0 {
		return nil
	}
	_, err := s.client.Execute(ctx, "setTimeouts", timeouts)
	return err
}

// WindowSize returns the device window dimensions in pixels.
func (s *Session) WindowSize(ctx context.Context) (width, height int, err error) {
	resp, err := s.client.Execute(ctx, "getWindowSize", nil)
	if err != nil {
		return 0, 0, err
	}
	size, _ := resp.Value.(map[string]any)
	return toInt(size["width"]), toInt(size["height"]), nil
}

// Tap taps at the given screen coordinates.
func (s *Session) Tap(ctx context.Context, x, y int) error {
	_, err := s.client.Execute(ctx, "tap", map[string]any{"x": x, "y": y})
	return err
}

// Swipe performs a swipe between two points over the given duration (ms).
func (s *Session) Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error {
	_, err := s.client.Execute(ctx, "swipe", map[string]any{
		"startX":   startX,
		"startY":   startY,
		"endX":     endX,
		"endY":     endY,
		"duration": durationMs,
	})
	return err
}

// Scroll swipes across the screen in the given direction. Start and end
// coordinates are computed from the current window size and the requested
// percentage of screen travel.
func (s *Session) Scroll(ctx context.Context, direction string, percent float64, durationMs int) error {
	switch direction {
	case ScrollUp, ScrollDown, ScrollLeft, ScrollRight:
	default:
		return apperrors.New(apperrors.CodeInvalidArgument, "direction must be up, down, left, or right")
	}

	width, height, err := s.WindowSize(ctx)
	if err != nil {
		return err
	}

	var startX, startY, endX, endY int
	switch direction {
	case ScrollUp:
		startX, startY = int(float64(width)*0.5), int(float64(height)*0.7)
		endX, endY = startX, int(float64(height)*(0.7-percent))
	case ScrollDown:
		startX, startY = int(float64(width)*0.5), int(float64(height)*0.3)
		endX, endY = startX, int(float64(height)*(0.3+percent))
	case ScrollLeft:
		startX, startY = int(float64(width)*0.7), int(float64(height)*0.5)
		endX, endY = int(float64(width)*(0.7-percent)), startY
	case ScrollRight:
		startX, startY = int(float64(width)*0.3), int(float64(height)*0.5)
		endX, endY = int(float64(width)*(0.3+percent)), startY
	}

	return s.Swipe(ctx, startX, startY, endX, endY, durationMs)
}

// LongPress presses and holds at the given coordinates for durationMs.
func (s *Session) LongPress(ctx context.Context, x, y, durationMs int) error {
	actions := []any{
		map[string]any{"action": "press", "options": map[string]any{"x": x, "y": y}},
		map[string]any{"action": "wait", "options": map[string]any{"ms": durationMs}},
		map[string]any{"action": "release", "options": map[string]any{}},
	}
	return s.TouchPerform(ctx, actions)
}

// DragAndDrop presses at the start point, moves to the end point, and
// releases.
func (s *Session) DragAndDrop(ctx context.Context, startX, startY, endX, endY, durationMs int) error {
	actions := []any{
		map[string]any{"action": "press", "options": map[string]any{"x": startX, "y": startY}},
		map[string]any{"action": "wait", "options": map[string]any{"ms": durationMs}},
		map[string]any{"action": "moveTo", "options": map[string]any{"x": endX, "y": endY}},
		map[string]any{"action": "release", "options": map[string]any{}},
	}
	return s.TouchPerform(ctx, actions)
}

// DoubleTap taps twice at the given coordinates.
func (s *Session) DoubleTap(ctx context.Context, x, y int) error {
	actions := []any{
		map[string]any{"action": "tap", "options": map[string]any{"x": x, "y": y, "count": 2}},
	}
	return s.TouchPerform(ctx, actions)
}

// Pinch performs a pinch gesture; scale < 1.0 zooms out, > 1.0 zooms in.
func (s *Session) Pinch(ctx context.Context, scale, velocity float64) error {
	_, err := s.client.Execute(ctx, "executeScript", map[string]any{
		"script": "mobile: pinch",
		"args":   []any{map[string]any{"scale": scale, "velocity": velocity}},
	})
	return err
}

// TouchPerform sends a raw touch action sequence.
func (s *Session) TouchPerform(ctx context.Context, actions []any) error {
	if len(actions) == 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "actions cannot be empty")
	}
	_, err := s.client.Execute(ctx, "touchPerform", map[string]any{"actions": actions})
	return err
}

// MultiTouchPerform sends a multi-finger touch action sequence.
func (s *Session) MultiTouchPerform(ctx context.Context, actions []any) error {
	if len(actions) == 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "actions cannot be empty")
	}
	_, err := s.client.Execute(ctx, "multiTouchPerform", map[string]any{"actions": actions})
	return err
}

// PerformW3CActions sends a W3C actions payload unchanged.
func (s *Session) PerformW3CActions(ctx context.Context, actions []any) error {
	if len(actions) == 0 {
		return apperrors.New(apperrors.CodeInvalidArgument, "actions cannot be empty")
	}
	_, err := s.client.Execute(ctx, "w3cActions", map[string]any{"actions": actions})
	return err
}

// SetGeolocation overrides the device location.
func (s *Session) SetGeolocation(ctx context.Context, latitude, longitude, altitude float64) error {
	_, err := s.client.Execute(ctx, "setGeolocation", map[string]any{
		"location": map[string]any{
			"latitude":  latitude,
			"longitude": longitude,
			"altitude":  altitude,
		},
	})
	return err
}

// Geolocation returns the device location.
func (s *Session) Geolocation(ctx context.Context) (map[string]any, error) {
	resp, err := s.client.Execute(ctx, "getGeolocation", nil)
	if err != nil {
		return nil, err
	}
	loc, _ := resp.Value.(map[string]any)
	if loc == nil {
		loc = map[string]any{}
	}
	return loc, nil
}

// AlertText returns the text of the currently displayed alert.
func (s *Session) AlertText(ctx context.Context) (string, error) {
	resp, err := s.client.Execute(ctx, "getAlertText", nil)
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// AcceptAlert accepts the currently displayed alert.
func (s *Session) AcceptAlert(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "acceptAlert", nil)
	return err
}

// DismissAlert dismisses the currently displayed alert.
func (s *Session) DismissAlert(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "dismissAlert", nil)
	return err
}

// Shake shakes the device (iOS simulators).
func (s *Session) Shake(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "shake", nil)
	return err
}

// Lock locks the device for the given number of seconds.
func (s *Session) Lock(ctx context.Context, seconds int) error {
	_, err := s.client.Execute(ctx, "lock", map[string]any{"seconds": seconds})
	return err
}

// Unlock unlocks the device.
func (s *Session) Unlock(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "unlock", nil)
	return err
}

// PressKeyCode presses an Android key code with optional metastate.
func (s *Session) PressKeyCode(ctx context.Context, keycode, metastate int) error {
	_, err := s.client.Execute(ctx, "pressKeyCode", map[string]any{"keycode": keycode, "metastate": metastate})
	return err
}

// LongPressKeyCode long-presses an Android key code with optional metastate.
func (s *Session) LongPressKeyCode(ctx context.Context, keycode, metastate int) error {
	_, err := s.client.Execute(ctx, "longPressKeyCode", map[string]any{"keycode": keycode, "metastate": metastate})
	return err
}

// HideKeyboard hides the soft keyboard, optionally with a strategy or key.
func (s *Session) HideKeyboard(ctx context.Context, strategy, key string) error {
	params := map[string]any{}
	if strategy != "" {
		params["strategy"] = strategy
	}
	if key != "" {
		params["key"] = key
	}
	_, err := s.client.Execute(ctx, "hideKeyboard", params)
	return err
}

// IsKeyboardShown reports whether the soft keyboard is visible.
func (s *Session) IsKeyboardShown(ctx context.Context) (bool, error) {
	resp, err := s.client.Execute(ctx, "isKeyboardShown", nil)
	if err != nil {
		return false, err
	}
	return valueBool(resp), nil
}

// ToggleLocationServices toggles device location services.
func (s *Session) ToggleLocationServices(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "toggleLocationServices", nil)
	return err
}

// ToggleAirplaneMode toggles airplane mode.
func (s *Session) ToggleAirplaneMode(ctx context.Context) error {
	_, err := s.client.Execute(ctx, "toggleAirplaneMode", nil)
	return err
}

// TouchID simulates Touch ID (iOS simulators); match controls success.
func (s *Session) TouchID(ctx context.Context, match bool) error {
	_, err := s.client.Execute(ctx, "touchId", map[string]any{"match": match})
	return err
}

// SetClipboard sets device clipboard content.
func (s *Session) SetClipboard(ctx context.Context, content, contentType string) error {
	if content == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "content cannot be empty")
	}
	if contentType == "" {
		contentType = "plaintext"
	}
	_, err := s.client.Execute(ctx, "setClipboard", map[string]any{"content": content, "contentType": contentType})
	return err
}

// Clipboard returns device clipboard content of the given type.
func (s *Session) Clipboard(ctx context.Context, contentType string) (string, error) {
	if contentType == "" {
		contentType = "plaintext"
	}
	resp, err := s.client.Execute(ctx, "getClipboard", map[string]any{"contentType": contentType})
	if err != nil {
		return "", err
	}
	return valueString(resp), nil
}

// SetImmediateValue sets an element's value directly, bypassing the
// clear/sendKeys round trip.
func (s *Session) SetImmediateValue(ctx context.Context, elementID, value string) error {
	if elementID == "" || value == "" {
		return apperrors.New(apperrors.CodeInvalidArgument, "element id and value cannot be empty")
	}
	_, err := s.client.Execute(ctx, "setImmediateValue", map[string]any{
		"element_id": elementID,
		"value":      value,
	})
	return err
}

// AllSessions returns metadata for every session the server tracks.
func (s *Session) AllSessions(ctx context.Context) ([]any, error) {
	resp, err := s.client.Execute(ctx, "getSessions", nil)
	if err != nil {
		return nil, err
	}
	list, _ := resp.Value.([]any)
	return list, nil
}

// Quit ends this session via the owning client.
func (s *Session) Quit(ctx context.Context) {
	s.client.Quit(ctx)
}

func valueString(resp Response) string {
	str, _ := resp.Value.(string)
	return str
}

func valueBool(resp Response) bool {
	b, _ := resp.Value.(bool)
	return b
}

func valueStrings(resp Response) []string {
	list, ok := resp.Value.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if str, ok := entry.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
