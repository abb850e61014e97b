package cascade

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// cascadeSource represents a configuration source that can supply key/value data to the loader in a normalized map form.
type cascadeSource interface {
	// Name returns a human-readable label for the source, used in error messages and diagnostics.
	Name() string

	// ToMap returns a normalized map:
	//   - keys are lower cased
	//   - values are one of: scalars (ONLY int, float64, bool, string); nil.
	//
	// Errors are returned when reading/parsing fails or when the source cannot produce an unambiguous normalized map.
	ToMap() (map[string]any, error)
}

// sourceMap adapts a Go map into a cascadeSource. Keys are normalized to lower case at load time.
type sourceMap struct {
	isDefaults bool           // When true, Name reports "Defaults"; otherwise it reports "Go Map".
	m          map[string]any // Raw input map to normalize. Values must be allowed normalized types.
}

// Name implements cascadeSource. It returns "Defaults" when this source represents defaults; otherwise it returns "Go Map".
func (s *sourceMap) Name() string {
	if s.isDefaults {
		return "Defaults"
	}
	return "Go Map"
}

// ToMap normalizes s.m into a lowercased map. Values are validated to be allowed normalized types. If s.m is nil, it returns an empty map. It returns an error on key conflicts after
// lowercasing or invalid value types.
func (s *sourceMap) ToMap() (map[string]any, error) {
	out := make(map[string]any, len(s.m))
	for k, v := range s.m {
		if err := validateAllowedValue(v); err != nil {
			return nil, fmt.Errorf("invalid value for key '%s': %w", k, err)
		}
		kLower := strings.ToLower(k)
		if _, exists := out[kLower]; exists {
			return nil, fmt.Errorf("key conflict: key '%s' was already set", kLower)
		}
		out[kLower] = v
	}
	return out, nil
}

// validateAllowedValue validates that v is one of the allowed normalized types: nil or a scalar (int, float64, bool, string).
func validateAllowedValue(v any) error {
	switch v.(type) {
	case nil, int, float64, bool, string:
		return nil
	default:
		return fmt.Errorf("type %T is not allowed", v)
	}
}

// sourceJSONFile implements cascadeSource for a single JSON file whose contents are read and normalized at load time. Empty or whitespace-only files contribute no values.
type sourceJSONFile struct {
	path string // Path to the JSON file to read at load time. May be absolute or relative and is expanded with ExpandPath.
}

// Name implements cascadeSource and returns a human-readable label that includes the file path, e.g., "JSON File: <path>".
func (s *sourceJSONFile) Name() string {
	return fmt.Sprintf("JSON File: %s", s.path)
}

// Implements cascadeSource. The top level must be a flat JSON object of scalars or nulls.
func (s *sourceJSONFile) ToMap() (map[string]any, error) {
	if s == nil || s.path == "" {
		return map[string]any{}, nil
	}

	data, err := os.ReadFile(ExpandPath(s.path))
	if err != nil {
		return nil, fmt.Errorf("read json file: %w", err)
	}

	// Treat empty/whitespace-only files as empty config.
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON must be an object")
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		switch v.(type) {
		case nil, string, bool, float64:
		default:
			return nil, fmt.Errorf("key '%s': unsupported type %T", k, v)
		}
		kLower := strings.ToLower(k)
		if _, exists := out[kLower]; exists {
			return nil, fmt.Errorf("key conflict: key '%s' was already set", kLower)
		}
		out[kLower] = v
	}
	return out, nil
}

// sourceEnv implements cascadeSource backed by environment variables mapped to configuration keys.
type sourceEnv struct {
	// envToKey maps a configuration key to an ENV variable. Ex: {"port": "APP_PORT"}.
	envToKey map[string]string
}

// Name implements cascadeSource and identifies the source as "ENV".
func (s *sourceEnv) Name() string {
	return "ENV"
}

// Implements cascadeSource.
//
// Missing env variables do not set any key. All values are strings.
func (s *sourceEnv) ToMap() (map[string]any, error) {
	if s == nil || s.envToKey == nil {
		return map[string]any{}, nil
	}

	out := map[string]any{}
	for mapKey, envVar := range s.envToKey {
		if envVar == "" {
			// No ENV var to read for this key.
			continue
		}
		val, exists := os.LookupEnv(envVar)
		if !exists {
			// Missing env variables do not set any key.
			continue
		}
		if val == "" {
			// The case can be made that "" is meaningful in some situations.
			// However, I was just bitten by an "empty env var" that was overwriting settings in a JSON file.
			// Can always revisit this.
			continue
		}
		out[strings.ToLower(mapKey)] = val
	}
	return out, nil
}
