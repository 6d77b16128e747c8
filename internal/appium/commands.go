package appium

import "net/http"

// Command describes one wire-protocol operation: the HTTP method, the URL
// template with :placeholder tokens, and the advisory parameter list. The
// parameter list documents what a command expects; only placeholder
// substitution is enforced at dispatch time.
type Command struct {
	Method      string
	URLTemplate string
	Parameters  []string
}

// commands is the full command table. Built once, never mutated.
var commands = map[string]Command{
	// Session management
	"createSession": {http.MethodPost, "/session", []string{"capabilities"}},
	"getSession":    {http.MethodGet, "/session/:session_id", nil},
	"getSessions":   {http.MethodGet, "/sessions", nil},
	"deleteSession": {http.MethodDelete, "/session/:session_id", nil},
	"getStatus":     {http.MethodGet, "/status", nil},

	// Element discovery
	"findElement":             {http.MethodPost, "/session/:session_id/element", []string{"using", "value"}},
	"findElements":            {http.MethodPost, "/session/:session_id/elements", []string{"using", "value"}},
	"findElementFromElement":  {http.MethodPost, "/session/:session_id/element/:element_id/element", []string{"using", "value"}},
	"findElementsFromElement": {http.MethodPost, "/session/:session_id/element/:element_id/elements", []string{"using", "value"}},

	// Element interaction
	"click":        {http.MethodPost, "/session/:session_id/element/:element_id/click", nil},
	"clear":        {http.MethodPost, "/session/:session_id/element/:element_id/clear", nil},
	"sendKeys":     {http.MethodPost, "/session/:session_id/element/:element_id/value", []string{"text", "value"}},
	"getText":      {http.MethodGet, "/session/:session_id/element/:element_id/text", nil},
	"getAttribute": {http.MethodGet, "/session/:session_id/element/:element_id/attribute/:name", []string{"name"}},
	"isDisplayed":  {http.MethodGet, "/session/:session_id/element/:element_id/displayed", nil},
	"isEnabled":    {http.MethodGet, "/session/:session_id/element/:element_id/enabled", nil},
	"isSelected":   {http.MethodGet, "/session/:session_id/element/:element_id/selected", nil},

	// Navigation
	"getCurrentUrl": {http.MethodGet, "/session/:session_id/url", nil},
	"navigateTo":    {http.MethodPost, "/session/:session_id/url", []string{"url"}},
	"back":          {http.MethodPost, "/session/:session_id/back", nil},

	// Page state
	"source":        {http.MethodGet, "/session/:session_id/source", nil},
	"getWindowSize": {http.MethodGet, "/session/:session_id/window/rect", nil},

	// Context switching
	"getContexts":       {http.MethodGet, "/session/:session_id/contexts", nil},
	"getCurrentContext": {http.MethodGet, "/session/:session_id/context", nil},
	"switchContext":     {http.MethodPost, "/session/:session_id/context", []string{"name"}},

	// Orientation and geolocation
	"getOrientation": {http.MethodGet, "/session/:session_id/orientation", nil},
	"setOrientation": {http.MethodPost, "/session/:session_id/orientation", []string{"orientation"}},
	"getGeolocation": {http.MethodGet, "/session/:session_id/location", nil},
	"setGeolocation": {http.MethodPost, "/session/:session_id/location", []string{"location"}},

	// App management
	"launchApp":      {http.MethodPost, "/session/:session_id/appium/app/launch", nil},
	"closeApp":       {http.MethodPost, "/session/:session_id/appium/app/close", nil},
	"resetApp":       {http.MethodPost, "/session/:session_id/appium/app/reset", nil},
	"installApp":     {http.MethodPost, "/session/:session_id/appium/device/install_app", []string{"appPath"}},
	"removeApp":      {http.MethodPost, "/session/:session_id/appium/device/remove_app", []string{"appId"}},
	"isAppInstalled": {http.MethodPost, "/session/:session_id/appium/device/app_installed", []string{"bundleId"}},
	"startActivity":  {http.MethodPost, "/session/:session_id/appium/device/start_activity", []string{"appPackage", "appActivity"}},

	// Device interaction
	"shake":                  {http.MethodPost, "/session/:session_id/appium/device/shake", nil},
	"lock":                   {http.MethodPost, "/session/:session_id/appium/device/lock", []string{"seconds"}},
	"unlock":                 {http.MethodPost, "/session/:session_id/appium/device/unlock", nil},
	"pressKeyCode":           {http.MethodPost, "/session/:session_id/appium/device/press_keycode", []string{"keycode", "metastate"}},
	"longPressKeyCode":       {http.MethodPost, "/session/:session_id/appium/device/long_press_keycode", []string{"keycode", "metastate"}},
	"hideKeyboard":           {http.MethodPost, "/session/:session_id/appium/device/hide_keyboard", nil},
	"isKeyboardShown":        {http.MethodGet, "/session/:session_id/appium/device/is_keyboard_shown", nil},
	"getDeviceTime":          {http.MethodGet, "/session/:session_id/appium/device/system_time", nil},
	"getCurrentActivity":     {http.MethodGet, "/session/:session_id/appium/device/current_activity", nil},
	"getCurrentPackage":      {http.MethodGet, "/session/:session_id/appium/device/current_package", nil},
	"toggleLocationServices": {http.MethodPost, "/session/:session_id/appium/device/toggle_location_services", nil},
	"toggleAirplaneMode":     {http.MethodPost, "/session/:session_id/appium/device/toggle_airplane_mode", nil},
	"touchId":                {http.MethodPost, "/session/:session_id/appium/simulator/touch_id", []string{"match"}},
	"getClipboard":           {http.MethodPost, "/session/:session_id/appium/device/get_clipboard", []string{"contentType"}},
	"setClipboard":           {http.MethodPost, "/session/:session_id/appium/device/set_clipboard", []string{"content", "contentType"}},

	// Touch actions
	"tap":               {http.MethodPost, "/session/:session_id/appium/tap", []string{"x", "y"}},
	"swipe":             {http.MethodPost, "/session/:session_id/appium/device/swipe", []string{"startX", "startY", "endX", "endY", "duration"}},
	"touchDown":         {http.MethodPost, "/session/:session_id/touch/down", []string{"x", "y"}},
	"touchUp":           {http.MethodPost, "/session/:session_id/touch/up", []string{"x", "y"}},
	"touchMove":         {http.MethodPost, "/session/:session_id/touch/move", []string{"x", "y"}},
	"touchPerform":      {http.MethodPost, "/session/:session_id/touch/perform", []string{"actions"}},
	"multiTouchPerform": {http.MethodPost, "/session/:session_id/touch/multi/perform", []string{"actions"}},
	"w3cActions":        {http.MethodPost, "/session/:session_id/actions", []string{"actions"}},

	// Alert handling
	"getAlertText": {http.MethodGet, "/session/:session_id/alert/text", nil},
	"acceptAlert":  {http.MethodPost, "/session/:session_id/alert/accept", nil},
	"dismissAlert": {http.MethodPost, "/session/:session_id/alert/dismiss", nil},

	// Screen capture
	"screenshot":        {http.MethodGet, "/session/:session_id/screenshot", nil},
	"elementScreenshot": {http.MethodGet, "/session/:session_id/element/:element_id/screenshot", nil},
	"getElementRect":    {http.MethodGet, "/session/:session_id/element/:element_id/rect", nil},

	// Timeouts
	"setTimeouts": {http.MethodPost, "/session/:session_id/timeouts", []string{"script", "pageLoad", "implicit"}},

	// Script execution
	"executeScript":      {http.MethodPost, "/session/:session_id/execute/sync", []string{"script", "args"}},
	"executeAsyncScript": {http.MethodPost, "/session/:session_id/execute/async", []string{"script", "args"}},

	// Immediate value (no clear/sendKeys round trip)
	"setImmediateValue": {http.MethodPost, "/session/:session_id/appium/element/:element_id/value", []string{"value"}},
}

// LookupCommand returns the descriptor for a command name.
func LookupCommand(name string) (Command, bool) {
	cmd, ok := commands[name]
	return cmd, ok
}

// CommandNames returns every registered command name. Order is unspecified.
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	return names
}
