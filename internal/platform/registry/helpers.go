package registry

import (
	"fmt"
	"time"

	"dlcheck/internal/core/ports"
)

// Type-safe accessors for plugin factories. Custom maps come from YAML
// decoding (int, float64, string) or from flags, so every accessor tolerates
// the shapes either path produces and falls back to the default otherwise.

// String extracts a non-empty string value.
func String(cfg ports.PluginConfig, key, def string) string {
	if val, ok := cfg.Custom[key].(string); ok && val != "" {
		return val
	}
	return def
}

// Int extracts an int value. JSON numbers arrive as float64.
func Int(cfg ports.PluginConfig, key string, def int) int {
	switch v := cfg.Custom[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool extracts a bool value.
func Bool(cfg ports.PluginConfig, key string, def bool) bool {
	if val, ok := cfg.Custom[key].(bool); ok {
		return val
	}
	return def
}

// Duration extracts a duration given as time.Duration, milliseconds
// (int/float64) or a string accepted by time.ParseDuration.
func Duration(cfg ports.PluginConfig, key string, def time.Duration) time.Duration {
	switch v := cfg.Custom[key].(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Strings extracts a []string, converting []interface{} when every item is
// a string.
func Strings(cfg ports.PluginConfig, key string, def []string) []string {
	switch v := cfg.Custom[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return def
			}
			out = append(out, s)
		}
		return out
	}
	return def
}

// RequireString returns an error if the key is missing or empty.
func RequireString(cfg ports.PluginConfig, key string) (string, error) {
	val := String(cfg, key, "")
	if val == "" {
		return "", fmt.Errorf("%s is required and cannot be empty", key)
	}
	return val, nil
}

// ValidateEnum validates that a string value is one of the allowed options.
func ValidateEnum(fieldName, value string, allowed []string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %s", fieldName, allowed, value)
}
