package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mcp-appium-server/internal/ai"
	"mcp-appium-server/internal/appium"
	"mcp-appium-server/internal/config"
	mcpserver "mcp-appium-server/internal/mcp"
	"mcp-appium-server/internal/recorder"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the Appium MCP config file")
	ssePort := flag.Int("sse-port", 0, "Optional SSE port override (falls back to config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *ssePort != 0 {
		cfg.MCP.SSEPort = *ssePort
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := appium.NewClient(cfg.Appium.ServerURL, cfg.Appium.GetRequestTimeout(), logger)

	var interpreter *ai.Interpreter
	if cfg.AI.Provider != "" {
		provider, err := ai.NewProvider(ai.Kind(cfg.AI.Provider), ai.Options{
			Model: cfg.AI.Model,
			Config: ai.ModelConfig{
				Timeout:            cfg.AI.GetTimeout(),
				MaxRetries:         cfg.AI.MaxRetries,
				RetryDelay:         cfg.AI.GetRetryDelay(),
				RetryBackoffFactor: cfg.AI.RetryBackoffFactor,
				Temperature:        cfg.AI.Temperature,
				MaxTokens:          cfg.AI.MaxTokens,
			},
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("failed to construct AI provider", zap.Error(err))
		}
		if err := provider.Initialize(ctx); err != nil {
			logger.Fatal("failed to initialize AI provider", zap.String("provider", cfg.AI.Provider), zap.Error(err))
		}
		interpreter = ai.NewInterpreter(provider, logger)
	}

	var rec *recorder.Recorder
	if cfg.Recorder.Enabled {
		rec, err = recorder.NewRecorder(cfg.Recorder.TraceDir)
		if err != nil {
			logger.Fatal("failed to initialize recorder", zap.Error(err))
		}
		runID, err := rec.Start()
		if err != nil {
			logger.Fatal("failed to start recorder run", zap.Error(err))
		}
		defer rec.Close()
		logger.Info("command recorder enabled", zap.String("run_id", runID), zap.String("trace_dir", cfg.Recorder.TraceDir))
	}

	server, err := mcpserver.NewServer(cfg, client, interpreter, rec, logger)
	if err != nil {
		logger.Fatal("failed to initialize MCP server", zap.Error(err))
	}

	var startErr error
	if cfg.MCP.SSEPort > 0 {
		logger.Info("starting Appium MCP SSE server", zap.Int("port", cfg.MCP.SSEPort))
		startErr = server.StartSSE(ctx, cfg.MCP.SSEPort)
	} else {
		logger.Info("starting Appium MCP stdio server")
		startErr = server.Start(ctx)
	}

	client.Quit(context.Background())

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		logger.Fatal("server exited with error", zap.Error(startErr))
	}
}

// buildLogger routes logs to the configured file in stdio mode; stdout and
// stderr belong to the MCP protocol there. SSE mode logs to stderr.
func buildLogger(cfg config.Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	if cfg.MCP.SSEPort == 0 && cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Cannot touch stderr in stdio mode; drop logs instead.
			return zap.NewNop(), nil
		}
		core := zapcore.NewCore(encoder, zapcore.AddSync(logFile), zap.InfoLevel)
		return zap.New(core), nil
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zap.InfoLevel)
	return zap.New(core), nil
}
