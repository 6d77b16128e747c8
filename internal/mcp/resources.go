package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"mcp-appium-server/internal/appium"
)

const (
	resourceMIMEJSON = "application/json"
)

func (s *Server) registerAllResources() {
	if s == nil || s.mcpServer == nil {
		return
	}

	s.mcpServer.AddResource(
		mcp.NewResource(
			"appium://about",
			"Appium MCP About",
			mcp.WithMIMEType(resourceMIMEJSON),
			mcp.WithResourceDescription("High-level server info and usage notes."),
		),
		s.handleAboutResource,
	)

	s.mcpServer.AddResource(
		mcp.NewResource(
			"appium://commands",
			"Wire Protocol Commands",
			mcp.WithMIMEType(resourceMIMEJSON),
			mcp.WithResourceDescription("The full registry of wire-protocol commands the dispatcher understands."),
		),
		s.handleCommandsResource,
	)
}

func (s *Server) handleAboutResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload := map[string]interface{}{
		"name":       s.cfg.Server.Name,
		"version":    s.cfg.Server.Version,
		"appium_url": s.client.BaseURL(),
		"session_id": s.client.SessionID(),
		"notes": []string{
			"Resources are read-only context endpoints; use tools for actions/mutations.",
			"Workflow: connect, create-session, then interact via the element and gesture tools.",
			"AI tools are registered only when an AI provider is configured.",
		},
		"timestamp_ms": time.Now().UnixMilli(),
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}

func (s *Server) handleCommandsResource(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names := appium.CommandNames()
	sort.Strings(names)

	commands := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		cmd, _ := appium.LookupCommand(name)
		commands = append(commands, map[string]interface{}{
			"name":   name,
			"method": cmd.Method,
			"url":    cmd.URLTemplate,
		})
	}

	text, err := json.Marshal(map[string]interface{}{"commands": commands})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: resourceMIMEJSON,
			Text:     string(text),
		},
	}, nil
}
