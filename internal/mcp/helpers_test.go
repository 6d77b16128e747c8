package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStringArg(t *testing.T) {
	args := map[string]interface{}{"name": "login", "count": float64(3)}
	assert.Equal(t, "login", getStringArg(args, "name"))
	assert.Equal(t, "3", getStringArg(args, "count"))
	assert.Equal(t, "", getStringArg(args, "missing"))
}

func TestGetIntArg(t *testing.T) {
	args := map[string]interface{}{
		"float":  float64(42),
		"int":    7,
		"string": "nope",
	}
	assert.Equal(t, 42, getIntArg(args, "float", 0))
	assert.Equal(t, 7, getIntArg(args, "int", 0))
	assert.Equal(t, 5, getIntArg(args, "string", 5))
	assert.Equal(t, 5, getIntArg(args, "missing", 5))
}

func TestGetFloatArg(t *testing.T) {
	args := map[string]interface{}{"percent": float64(0.3), "whole": 2}
	assert.Equal(t, 0.3, getFloatArg(args, "percent", 0.5))
	assert.Equal(t, 2.0, getFloatArg(args, "whole", 0.5))
	assert.Equal(t, 0.5, getFloatArg(args, "missing", 0.5))
}

func TestGetBoolArg(t *testing.T) {
	args := map[string]interface{}{"flag": true, "notbool": "yes"}
	assert.True(t, getBoolArg(args, "flag", false))
	assert.False(t, getBoolArg(args, "notbool", false))
	assert.True(t, getBoolArg(args, "missing", true))
}

func TestGetMapAndListArg(t *testing.T) {
	args := map[string]interface{}{
		"caps": map[string]interface{}{"platformName": "Android"},
		"args": []interface{}{"a", "b"},
	}
	assert.Equal(t, "Android", getMapArg(args, "caps")["platformName"])
	assert.Nil(t, getMapArg(args, "missing"))
	assert.Len(t, getListArg(args, "args"), 2)
	assert.Nil(t, getListArg(args, "missing"))
}
