package ai

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	apperrors "mcp-appium-server/internal/errors"
)

// Prompt budget for page source dumps. XML hierarchies from real apps run
// to hundreds of kilobytes and most of it is attribute noise.
const maxPageSourceChars = 8000

// Action is one structured automation step produced by the interpreter.
type Action struct {
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// Interpreter turns natural-language instructions and UI dumps into
// structured output through a ready Provider.
type Interpreter struct {
	provider Provider
	logger   *zap.Logger
}

// NewInterpreter wraps a provider. The provider must already be initialized
// before interpretation calls are made.
func NewInterpreter(provider Provider, logger *zap.Logger) *Interpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{provider: provider, logger: logger}
}

const interpretSystemPrompt = `You are a mobile test automation assistant. Convert the user's instruction
into exactly one JSON object of the form {"action": "<name>", "parameters": {...}}.
Valid actions: find_element, click, send_keys, clear, swipe, scroll, tap,
long_press, navigate, back, switch_context, set_orientation, launch_app,
close_app, reset_app, screenshot, wait.
For find_element and element interactions, parameters must include "by" (one
of id, xpath, accessibility_id, class_name, android_uiautomator,
ios_predicate) and "value". Respond with the JSON object only.`

// InterpretCommand converts one natural-language instruction into an Action.
// uiContext, when non-empty, is the current page source included for
// grounding.
func (i *Interpreter) InterpretCommand(ctx context.Context, command, uiContext string) (Action, error) {
	if command == "" {
		return Action{}, apperrors.New(apperrors.CodeInvalidArgument, "command cannot be empty")
	}

	user := "Instruction: " + command
	if uiContext != "" {
		user += "\n\nCurrent screen XML:\n" + truncate(SanitizeText(uiContext), maxPageSourceChars)
	}

	raw, err := i.provider.ChatCompletion(ctx, interpretSystemPrompt, user, true)
	if err != nil {
		return Action{}, err
	}

	var action Action
	if err := json.Unmarshal([]byte(extractJSON(raw)), &action); err != nil {
		return Action{}, apperrors.Wrap(apperrors.CodeAIResponseParsing, err, "model output is not a valid action object")
	}
	if action.Action == "" {
		return Action{}, apperrors.New(apperrors.CodeAIResponseParsing, "model output is missing the action field")
	}
	if action.Parameters == nil {
		action.Parameters = map[string]any{}
	}

	i.logger.Debug("interpreted command",
		zap.String("command", command),
		zap.String("action", action.Action))
	return action, nil
}

const describeSystemPrompt = `You are a mobile test automation assistant. Given the XML source of a mobile
app screen, describe concisely what the screen shows: its purpose, the main
interactive elements, and any visible text fields or buttons.`

// DescribeScreen summarizes a page source dump in plain language.
func (i *Interpreter) DescribeScreen(ctx context.Context, pageSource string) (string, error) {
	if pageSource == "" {
		return "", apperrors.New(apperrors.CodeInvalidArgument, "page source cannot be empty")
	}
	user := "Screen XML:\n" + truncate(SanitizeText(pageSource), maxPageSourceChars)
	return i.provider.ChatCompletion(ctx, describeSystemPrompt, user, false)
}

const suggestSystemPrompt = `You are a mobile test automation assistant. Given the XML source of a mobile
app screen, suggest test actions worth performing on it. Respond with a JSON
array of short strings, one suggested action per entry.`

// SuggestTestActions proposes test steps for the current screen. When the
// model ignores the JSON-array instruction the raw text is split into lines
// instead of failing the call.
func (i *Interpreter) SuggestTestActions(ctx context.Context, pageSource string) ([]string, error) {
	if pageSource == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "page source cannot be empty")
	}
	user := "Screen XML:\n" + truncate(SanitizeText(pageSource), maxPageSourceChars)

	raw, err := i.provider.ChatCompletion(ctx, suggestSystemPrompt, user, true)
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(extractJSON(raw)), &suggestions); err == nil {
		return suggestions, nil
	}

	lines := strings.Split(raw, "\n")
	suggestions = suggestions[:0]
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions, nil
}

// extractJSON strips markdown code fences that chat models wrap around JSON
// despite instructions, then trims to the outermost brace or bracket pair.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndexByte(s, '}')
	} else {
		end = strings.LastIndexByte(s, ']')
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}
