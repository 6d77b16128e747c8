package mcp

import "fmt"

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func getIntArg(args map[string]interface{}, key string, fallback int) int {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func getFloatArg(args map[string]interface{}, key string, fallback float64) float64 {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// getBoolArg extracts a boolean argument with default.
func getBoolArg(args map[string]interface{}, key string, fallback bool) bool {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return fallback
}

// getMapArg extracts an object argument; nil when absent or wrong type.
func getMapArg(args map[string]interface{}, key string) map[string]interface{} {
	val, ok := args[key]
	if !ok {
		return nil
	}
	m, _ := val.(map[string]interface{})
	return m
}

// getListArg extracts an array argument; nil when absent or wrong type.
func getListArg(args map[string]interface{}, key string) []interface{} {
	val, ok := args[key]
	if !ok {
		return nil
	}
	l, _ := val.([]interface{})
	return l
}
