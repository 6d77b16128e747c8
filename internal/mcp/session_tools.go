package mcp

import (
	"context"
	"fmt"
)

type ConnectTool struct {
	server *Server
}

func (t *ConnectTool) Name() string { return "connect" }
func (t *ConnectTool) Description() string {
	return `Verify the Appium server is reachable.

USE THIS FIRST before creating sessions. Checks the /status endpoint of the
configured Appium server (or an explicit URL override).

Returns: {connected: true, url} on success.`
}
func (t *ConnectTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Optional Appium server URL overriding the configured one (e.g., http://localhost:4723)",
			},
		},
	}
}
func (t *ConnectTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	if err := t.server.client.Connect(ctx, getStringArg(args, "url")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"connected": true, "url": t.server.client.BaseURL()}, nil
}

type CreateSessionTool struct {
	server *Server
}

func (t *CreateSessionTool) Name() string { return "create-session" }
func (t *CreateSessionTool) Description() string {
	return `Create a new Appium session with the given capabilities.

PREREQUISITE: Appium server must be reachable (use connect first).

Capabilities follow the W3C WebDriver format, e.g.:
  {"platformName": "Android", "appium:automationName": "UiAutomator2",
   "appium:deviceName": "emulator-5554", "appium:app": "/path/to/app.apk"}

Only one session is active at a time; creating a new one replaces the
previous proxy. Returns: {session_id, capabilities}.`
}
func (t *CreateSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"capabilities": map[string]interface{}{
				"type":        "object",
				"description": "W3C capabilities for the session",
			},
		},
		"required": []string{"capabilities"},
	}
}
func (t *CreateSessionTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	caps := getMapArg(args, "capabilities")
	if len(caps) == 0 {
		return nil, fmt.Errorf("capabilities is required")
	}
	if _, ok := caps["appium:newCommandTimeout"]; !ok && t.server.cfg.Appium.NewCommandTimeout > 0 {
		caps["appium:newCommandTimeout"] = t.server.cfg.Appium.NewCommandTimeout
	}

	sess, err := t.server.client.CreateSession(ctx, caps)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"session_id":   sess.ID,
		"capabilities": sess.Capabilities,
	}, nil
}

type QuitSessionTool struct {
	server *Server
}

func (t *QuitSessionTool) Name() string { return "quit-session" }
func (t *QuitSessionTool) Description() string {
	return `End the active Appium session.

Best effort: local session state is cleared even when the server-side delete
fails. Safe to call with no active session.`
}
func (t *QuitSessionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *QuitSessionTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	t.server.client.Quit(ctx)
	return map[string]interface{}{"success": true}, nil
}

type LaunchAppTool struct {
	server *Server
}

func (t *LaunchAppTool) Name() string { return "launch-app" }
func (t *LaunchAppTool) Description() string {
	return "Launch the app under test on the device."
}
func (t *LaunchAppTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *LaunchAppTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.LaunchApp(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type CloseAppTool struct {
	server *Server
}

func (t *CloseAppTool) Name() string { return "close-app" }
func (t *CloseAppTool) Description() string {
	return "Close the app under test without ending the session."
}
func (t *CloseAppTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *CloseAppTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.CloseApp(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type ResetAppTool struct {
	server *Server
}

func (t *ResetAppTool) Name() string { return "reset-app" }
func (t *ResetAppTool) Description() string {
	return "Reset the app under test, clearing its data and restarting it."
}
func (t *ResetAppTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
}
func (t *ResetAppTool) Execute(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.ResetApp(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type InstallAppTool struct {
	server *Server
}

func (t *InstallAppTool) Name() string { return "install-app" }
func (t *InstallAppTool) Description() string {
	return "Install an app on the device from a path on the Appium server host."
}
func (t *InstallAppTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"app_path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the .apk/.ipa on the Appium server host",
			},
		},
		"required": []string{"app_path"},
	}
}
func (t *InstallAppTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.InstallApp(ctx, getStringArg(args, "app_path")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type RemoveAppTool struct {
	server *Server
}

func (t *RemoveAppTool) Name() string { return "remove-app" }
func (t *RemoveAppTool) Description() string {
	return "Remove an app from the device by bundle id (iOS) or package name (Android)."
}
func (t *RemoveAppTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"app_id": map[string]interface{}{
				"type":        "string",
				"description": "Bundle id or package name",
			},
		},
		"required": []string{"app_id"},
	}
}
func (t *RemoveAppTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	if err := sess.RemoveApp(ctx, getStringArg(args, "app_id")); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true}, nil
}

type IsAppInstalledTool struct {
	server *Server
}

func (t *IsAppInstalledTool) Name() string { return "is-app-installed" }
func (t *IsAppInstalledTool) Description() string {
	return "Check whether an app is installed on the device."
}
func (t *IsAppInstalledTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"app_id": map[string]interface{}{
				"type":        "string",
				"description": "Bundle id or package name",
			},
		},
		"required": []string{"app_id"},
	}
}
func (t *IsAppInstalledTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sess, err := t.server.session()
	if err != nil {
		return nil, err
	}
	installed, err := sess.IsAppInstalled(ctx, getStringArg(args, "app_id"))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"installed": installed}, nil
}
