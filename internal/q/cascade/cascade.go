package cascade

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
)

func computeFieldKey(f reflect.StructField) string {
	// Highest priority: cascade tag name (before first comma). If empty, fall back.
	if tag := f.Tag.Get("cascade"); tag != "" {
		parts := strings.Split(tag, ",")
		name := strings.TrimSpace(parts[0])
		if name == "-" {
			return "-"
		}
		if name != "" {
			return strings.ToLower(name)
		}
	}
	// Next: json tag name; json:"-" should not skip the field, only ignore json naming.
	if tag := f.Tag.Get("json"); tag != "" {
		parts := strings.Split(tag, ",")
		name := strings.TrimSpace(parts[0])
		if name != "" && name != "-" {
			return strings.ToLower(name)
		}
	}
	// Default: field name
	return strings.ToLower(f.Name)
}

func requiredFromCascadeTag(f reflect.StructField) bool {
	tag := f.Tag.Get("cascade")
	if tag == "" {
		return false
	}
	parts := strings.Split(tag, ",")
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "required" {
			return true
		}
	}
	return false
}

// Loader builds a prioritized cascade of configuration sources and applies them to a destination struct. Register sources in call order from lowest to highest priority using the With*
// methods, then call StrictlyLoad. The zero value is ready to use; New exists for fluent chaining (ex: New().WithDefaults(...).WithJSONFile(...).WithEnv(...).StrictlyLoad(&cfg)).
type Loader struct {
	sources []cascadeSource // Sources are ordered from low to high priority.
}

// New returns a new Loader ready to register sources and load configuration. It is equivalent to &Loader{} and exists to support fluent chaining.
func New() *Loader {
	return &Loader{}
}

// WithDefaults registers m as the lowest-priority source of default values. Keys are matched case-insensitively; values must be scalars (string, bool, int, float64) or nil. A nil map
// contributes no values. The method returns the Loader to allow chaining.
func (c *Loader) WithDefaults(m map[string]any) *Loader {
	c.sources = append(c.sources, &sourceMap{isDefaults: true, m: m})
	return c
}

// WithJSONFile registers a JSON file as a source on the Loader.
//
// path may be absolute or relative and is expanded with ExpandPath. Relative paths are resolved against the current working directory when the file is read. The file is not read at
// call time; any I/O or parse errors occur during loading.
//
// The method returns the Loader to allow chaining.
func (c *Loader) WithJSONFile(path string) *Loader {
	c.sources = append(c.sources, &sourceJSONFile{path: path})
	return c
}

// WithEnv registers an environment-variable-backed source. The mapping m associates a configuration key with an environment variable name; missing and empty variables are ignored and
// present values are strings. The source is added with the next higher priority, and the Loader is returned to allow chaining.
func (c *Loader) WithEnv(m map[string]string) *Loader {
	c.sources = append(c.sources, &sourceEnv{envToKey: m})
	return c
}

// StrictlyLoad loads configuration from c's sources into dest, from low to high priority, with later sources overwriting earlier values. dest must be a non-nil pointer to a struct
// whose settable fields are scalars (string, bool, ints, floats) or pointers to scalars.
//
// Field names are matched case-insensitively (ex: "port" sets field Port), with `cascade:"name"` and json tag names taking priority over the field name. A field tagged with
// `cascade:",required"` must be set by some source; required fields are validated after all sources have been applied.
//
// Values are coerced to the destination field type when reasonable (ex: "4" -> 4 for an int field). If a readable source cannot be parsed or supplies a value that cannot be coerced
// to the field type, StrictlyLoad returns an error; it fails fast and does not continue to later sources to "fix" bad values.
//
// StrictlyLoad does not error when a source is missing or not readable due to permissions, when a source is empty/whitespace-only, or when a source contains unknown keys or null
// values. Errors from individual sources include the source's name for context. On success, dest is populated and StrictlyLoad returns nil.
func (c *Loader) StrictlyLoad(dest any) error {
	// Validate destination is a non-nil pointer to a struct:
	if dest == nil {
		return fmt.Errorf("dest must be a non-nil pointer to struct")
	}
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return fmt.Errorf("dest must be a non-nil pointer to struct")
	}
	structVal := reflect.Indirect(destVal)
	if structVal.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct, got %s", structVal.Kind())
	}

	// Track which fields were set by any source, using lowercased keys.
	present := map[string]bool{}

	for _, src := range c.sources {
		m, err := src.ToMap()
		if err != nil {
			// Ignore file-not-found and permission errors per contract.
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				continue
			}
			return fmt.Errorf("%s: %w", src.Name(), err)
		}
		if err := applyMapToStruct(structVal, m, present); err != nil {
			return fmt.Errorf("%s: %w", src.Name(), err)
		}
	}

	// Validate required fields after all sources are applied.
	return validateRequiredFields(structVal, present)
}

// applyMapToStruct writes values from m into structVal, matching keys to settable struct fields case-insensitively. The present map records lowercase keys for fields that were
// successfully assigned and must be non-nil. Unknown keys and nil values are ignored. Returns an error if a provided value cannot be coerced to the destination field type, or when
// the struct defines fields that collide on the computed key.
func applyMapToStruct(structVal reflect.Value, m map[string]any, present map[string]bool) error {
	structType := structVal.Type()

	// Build case-insensitive index of fields: lower(key) -> index.
	// Keys are derived from tags with priority: cascade tag name > json tag name > field name.
	fieldIndex := map[string]int{}
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		if !structVal.Field(i).CanSet() {
			continue
		}
		key := computeFieldKey(f)
		if key == "-" || key == "" {
			continue
		}
		if prevIdx, exists := fieldIndex[key]; exists {
			prevName := structType.Field(prevIdx).Name
			return fmt.Errorf("struct contains case-insensitive field key collision for %q: %s and %s", key, prevName, f.Name)
		}
		fieldIndex[key] = i
	}

	for key, raw := range m {
		keyLower := strings.ToLower(key)
		idx, ok := fieldIndex[keyLower]
		if !ok {
			// Unknown key: ignore.
			continue
		}
		if raw == nil {
			// JSON null does not set the key.
			continue
		}
		if err := setFieldValue(structVal.Field(idx), raw, keyLower, present); err != nil {
			return err
		}
	}
	return nil
}

// setFieldValue sets fVal from raw, allocating pointer fields as needed and coercing scalar types via coerceScalar. It records presence at the given key when a value is assigned.
// Non-scalar destination kinds return an error.
func setFieldValue(fVal reflect.Value, raw any, key string, present map[string]bool) error {
	// Handle pointers by allocating as needed
	if fVal.Kind() == reflect.Ptr {
		if fVal.IsNil() {
			fVal.Set(reflect.New(fVal.Type().Elem()))
		}
		return setFieldValue(fVal.Elem(), raw, key, present)
	}

	switch fVal.Kind() {
	case reflect.String, reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		coerced, err := coerceScalar(raw, fVal.Kind(), key)
		if err != nil {
			return err
		}
		switch fVal.Kind() {
		case reflect.String:
			fVal.SetString(coerced.(string))
		case reflect.Bool:
			fVal.SetBool(coerced.(bool))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			fVal.SetInt(coerced.(int64))
		case reflect.Float32, reflect.Float64:
			fVal.SetFloat(coerced.(float64))
		}
		present[key] = true
		return nil

	default:
		return fmt.Errorf("%s: unsupported field kind %s", key, fVal.Kind())
	}
}

// coerceScalar converts raw into a value assignable to a field of targetKind. It supports target kinds String, Bool, the signed Int kinds, and the Float kinds. For String, raw may
// be a string, int, float64, or bool (formatted via strconv). For Bool, raw may be a bool or a string parseable by strconv.ParseBool; whitespace is trimmed. For Int kinds, raw may
// be an int, a float64 (truncated toward zero), or a base-10 string; whitespace is trimmed. The returned value is int64. For Float kinds, raw may be a float64, an int, or a string
// parseable by strconv.ParseFloat; whitespace is trimmed. The returned value is float64. If conversion fails or the kind is unsupported, an error is returned that includes key to
// aid diagnostics.
func coerceScalar(raw any, targetKind reflect.Kind, key string) (any, error) {
	switch targetKind {
	case reflect.String:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case bool:
			return strconv.FormatBool(v), nil
		default:
			return nil, fmt.Errorf("%s: cannot coerce %T to string", key, raw)
		}
	case reflect.Bool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse bool from %q", key, v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("%s: cannot coerce %T to bool", key, raw)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := raw.(type) {
		case int:
			return int64(v), nil
		case float64:
			return int64(v), nil
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse int from %q", key, v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("%s: cannot coerce %T to int", key, raw)
		}
	case reflect.Float32, reflect.Float64:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: cannot parse float from %q", key, v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("%s: cannot coerce %T to float", key, raw)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported scalar kind %s", key, targetKind)
	}
}

// validateRequiredFields verifies that all fields tagged with cascade:",required" in structVal were set, as recorded in present. It returns an error naming the first missing required
// key, or nil if all required fields are present.
func validateRequiredFields(structVal reflect.Value, present map[string]bool) error {
	structType := structVal.Type()
	for i := 0; i < structType.NumField(); i++ {
		f := structType.Field(i)
		key := computeFieldKey(f)
		if key == "-" || key == "" {
			continue
		}
		if requiredFromCascadeTag(f) && !present[key] {
			return fmt.Errorf("missing required key: %s", key)
		}
	}
	return nil
}
