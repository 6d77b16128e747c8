package appium

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCommand(t *testing.T) {
	cmd, ok := LookupCommand("findElement")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, cmd.Method)
	assert.Equal(t, "/session/:session_id/element", cmd.URLTemplate)

	_, ok = LookupCommand("teleport")
	assert.False(t, ok)
}

func TestRegistryMethodsAreValid(t *testing.T) {
	for name, cmd := range commands {
		switch cmd.Method {
		case http.MethodGet, http.MethodPost, http.MethodDelete:
		default:
			t.Errorf("command %s has unexpected method %s", name, cmd.Method)
		}
		assert.True(t, strings.HasPrefix(cmd.URLTemplate, "/"), "command %s template %s", name, cmd.URLTemplate)
	}
}

func TestRegistrySessionScoping(t *testing.T) {
	// Everything except the session-less endpoints runs under a session.
	sessionless := map[string]bool{
		"createSession": true,
		"getSessions":   true,
		"getStatus":     true,
	}
	for name, cmd := range commands {
		if sessionless[name] {
			assert.NotContains(t, cmd.URLTemplate, ":session_id", "command %s", name)
			continue
		}
		assert.Contains(t, cmd.URLTemplate, ":session_id", "command %s", name)
	}
}

func TestCommandNamesCoversRegistry(t *testing.T) {
	names := CommandNames()
	assert.Len(t, names, len(commands))
	for _, name := range names {
		_, ok := commands[name]
		assert.True(t, ok, "name %s", name)
	}
}
