// Package mcp exposes the Appium client and AI interpreter as MCP tools
// over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"mcp-appium-server/internal/ai"
	"mcp-appium-server/internal/appium"
	"mcp-appium-server/internal/config"
	"mcp-appium-server/internal/recorder"
)

// Server wires the MCP runtime, the Appium client, and the optional AI
// interpreter and command recorder.
type Server struct {
	cfg         config.Config
	client      *appium.Client
	interpreter *ai.Interpreter
	rec         *recorder.Recorder
	logger      *zap.Logger
	tools       map[string]Tool
	mcpServer   *mcpserver.MCPServer
}

// Tool describes the contract for MCP tool implementations.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// NewServer constructs the Appium MCP server and registers all tools.
// interpreter and rec may be nil; the corresponding tools and tracing are
// simply absent.
func NewServer(cfg config.Config, client *appium.Client, interpreter *ai.Interpreter, rec *recorder.Recorder, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithLogging(),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		cfg:         cfg,
		client:      client,
		interpreter: interpreter,
		rec:         rec,
		logger:      logger,
		tools:       make(map[string]Tool),
		mcpServer:   mcpSrv,
	}

	server.registerAllTools()
	server.registerAllResources()
	return server, nil
}

// Start launches the stdio server (Claude/Gemini CLI default).
func (s *Server) Start(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE hosts the server over HTTP using SSE endpoints with graceful shutdown.
func (s *Server) StartSSE(ctx context.Context, port int) error {
	sseServer := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL("http://localhost:"+strconv.Itoa(port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("SSE server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ExecuteTool executes a tool directly (used by demos/tests).
func (s *Server) ExecuteTool(name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(context.Background(), args)
}

// session returns the active session or an error suitable for tool output.
func (s *Server) session() (*appium.Session, error) {
	sess := s.client.Session()
	if sess == nil {
		return nil, fmt.Errorf("no active session; call create-session first")
	}
	return sess, nil
}

func (s *Server) registerAllTools() {
	// Connection and session lifecycle
	s.registerTool(&ConnectTool{server: s})
	s.registerTool(&CreateSessionTool{server: s})
	s.registerTool(&QuitSessionTool{server: s})

	// Element discovery and interaction
	s.registerTool(&FindElementTool{server: s})
	s.registerTool(&FindElementsTool{server: s})
	s.registerTool(&ClickElementTool{server: s})
	s.registerTool(&SendKeysTool{server: s})
	s.registerTool(&ClearElementTool{server: s})
	s.registerTool(&GetTextTool{server: s})
	s.registerTool(&GetAttributeTool{server: s})

	// Gestures
	s.registerTool(&TapTool{server: s})
	s.registerTool(&SwipeTool{server: s})
	s.registerTool(&ScrollTool{server: s})
	s.registerTool(&LongPressTool{server: s})
	s.registerTool(&DragAndDropTool{server: s})

	// Navigation and page state
	s.registerTool(&NavigateTool{server: s})
	s.registerTool(&BackTool{server: s})
	s.registerTool(&PageSourceTool{server: s})
	s.registerTool(&ScreenshotTool{server: s})
	s.registerTool(&GetContextsTool{server: s})
	s.registerTool(&SwitchContextTool{server: s})
	s.registerTool(&GetOrientationTool{server: s})
	s.registerTool(&SetOrientationTool{server: s})
	s.registerTool(&ExecuteScriptTool{server: s})

	// App management
	s.registerTool(&LaunchAppTool{server: s})
	s.registerTool(&CloseAppTool{server: s})
	s.registerTool(&ResetAppTool{server: s})
	s.registerTool(&InstallAppTool{server: s})
	s.registerTool(&RemoveAppTool{server: s})
	s.registerTool(&IsAppInstalledTool{server: s})

	// AI assistance, only when a provider is configured
	if s.interpreter != nil {
		s.registerTool(&AIInterpretTool{server: s})
		s.registerTool(&AIDescribeScreenTool{server: s})
		s.registerTool(&AISuggestActionsTool{server: s})
	}
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		start := time.Now()
		result, err := tool.Execute(ctx, args)
		if s.rec != nil {
			s.rec.Record(s.client.SessionID(), tool.Name(), args, err, time.Since(start))
		}
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", tool.Name(), err))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		return payload
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	payload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return payload
	}

	return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s failed to encode payload"}`, toolName))
}
