package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Config fields are addressed by dotted keys built from their serialized
// names, e.g. "llm.model" or "chat.system_prompt".

// IsSecretKey reports whether key holds a credential.
func IsSecretKey(key string) bool {
	return key == "llm.api_key"
}

// MaskSecret hides all but the last four characters of a credential.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "***"
	default:
		return "***" + s[len(s)-4:]
	}
}

// Keys returns every dotted key Config understands, sorted.
func Keys() []string {
	known, err := knownValues()
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(known))
}

// knownValues maps each dotted key to its default value.
func knownValues() (map[string]any, error) {
	m, err := ToMap(defaults())
	if err != nil {
		return nil, err
	}
	return flattenMap(m), nil
}

// flattenMap turns nested maps into a single level keyed by dotted paths.
// Empty nested maps produce no keys.
func flattenMap(m map[string]any) map[string]any {
	out := make(map[string]any)
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		child, ok := v.(map[string]any)
		if !ok {
			out[prefix] = v
			return
		}
		for k, cv := range child {
			walk(prefix+"."+k, cv)
		}
	}
	for k, v := range m {
		walk(k, v)
	}
	return out
}

// setPath stores v at the dotted key inside m, creating intermediate maps
// and replacing scalars that are in the way.
func setPath(m map[string]any, key string, v any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = v
}

// maskSecrets masks credential values in a flat map in place.
func maskSecrets(flat map[string]any) {
	for k, v := range flat {
		if s, ok := v.(string); ok && IsSecretKey(k) {
			flat[k] = MaskSecret(s)
		}
	}
}

// parseValue converts a command-line value to the type of the key's default.
// String keys take the value verbatim.
func parseValue(key, value string, def any) (any, error) {
	switch def.(type) {
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s expects a number, got %q", key, value)
		}
		return f, nil
	default:
		return value, nil
	}
}
