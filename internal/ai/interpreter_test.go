package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "mcp-appium-server/internal/errors"
)

// scriptedProvider returns canned responses and records prompts.
type scriptedProvider struct {
	response string
	err      error
	system   string
	user     string
	wantJSON bool
}

func (s *scriptedProvider) Name() string                     { return "scripted" }
func (s *scriptedProvider) Initialize(context.Context) error { return nil }
func (s *scriptedProvider) ChatCompletion(_ context.Context, system, user string, jsonResponse bool) (string, error) {
	s.system = system
	s.user = user
	s.wantJSON = jsonResponse
	return s.response, s.err
}

func TestInterpretCommand(t *testing.T) {
	provider := &scriptedProvider{
		response: `{"action": "click", "parameters": {"by": "id", "value": "login_button"}}`,
	}
	interp := NewInterpreter(provider, nil)

	action, err := interp.InterpretCommand(context.Background(), "tap the login button", "<hierarchy/>")
	require.NoError(t, err)
	assert.Equal(t, "click", action.Action)
	assert.Equal(t, "id", action.Parameters["by"])
	assert.Equal(t, "login_button", action.Parameters["value"])
	assert.True(t, provider.wantJSON)
	assert.Contains(t, provider.user, "tap the login button")
	assert.Contains(t, provider.user, "<hierarchy/>")
}

func TestInterpretCommandStripsCodeFences(t *testing.T) {
	provider := &scriptedProvider{
		response: "```json\n{\"action\": \"back\", \"parameters\": {}}\n```",
	}
	interp := NewInterpreter(provider, nil)

	action, err := interp.InterpretCommand(context.Background(), "go back", "")
	require.NoError(t, err)
	assert.Equal(t, "back", action.Action)
	assert.NotNil(t, action.Parameters)
}

func TestInterpretCommandRejectsGarbage(t *testing.T) {
	provider := &scriptedProvider{response: "sure, I'll click that for you!"}
	interp := NewInterpreter(provider, nil)

	_, err := interp.InterpretCommand(context.Background(), "tap it", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAIResponseParsing, apperrors.CodeOf(err))
}

func TestInterpretCommandMissingAction(t *testing.T) {
	provider := &scriptedProvider{response: `{"parameters": {"x": 1}}`}
	interp := NewInterpreter(provider, nil)

	_, err := interp.InterpretCommand(context.Background(), "do something", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAIResponseParsing, apperrors.CodeOf(err))
}

func TestInterpretCommandEmptyInput(t *testing.T) {
	interp := NewInterpreter(&scriptedProvider{}, nil)
	_, err := interp.InterpretCommand(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestDescribeScreen(t *testing.T) {
	provider := &scriptedProvider{response: "A login form with two fields."}
	interp := NewInterpreter(provider, nil)

	desc, err := interp.DescribeScreen(context.Background(), "<hierarchy><EditText/></hierarchy>")
	require.NoError(t, err)
	assert.Equal(t, "A login form with two fields.", desc)
	assert.False(t, provider.wantJSON)
}

func TestSuggestTestActionsJSONArray(t *testing.T) {
	provider := &scriptedProvider{response: `["tap login", "enter invalid email"]`}
	interp := NewInterpreter(provider, nil)

	suggestions, err := interp.SuggestTestActions(context.Background(), "<hierarchy/>")
	require.NoError(t, err)
	assert.Equal(t, []string{"tap login", "enter invalid email"}, suggestions)
}

func TestSuggestTestActionsFallsBackToLines(t *testing.T) {
	provider := &scriptedProvider{response: "1. tap login\n2. rotate the device\n\n- check the menu"}
	interp := NewInterpreter(provider, nil)

	suggestions, err := interp.SuggestTestActions(context.Background(), "<hierarchy/>")
	require.NoError(t, err)
	assert.Equal(t, []string{"tap login", "rotate the device", "check the menu"}, suggestions)
}

func TestSuggestTestActionsPropagatesProviderError(t *testing.T) {
	provider := &scriptedProvider{err: apperrors.New(apperrors.CodeAIConnection, "down")}
	interp := NewInterpreter(provider, nil)

	_, err := interp.SuggestTestActions(context.Background(), "<hierarchy/>")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeAIConnection, apperrors.CodeOf(err))
}
