// Package cascade loads layered configuration into flat Go structs from multiple sources with predictable precedence.
//
// A Loader builds a prioritized cascade of sources and writes into a destination struct. Register sources from lowest to highest priority using the With* methods, then call StrictlyLoad.
// The zero value of Loader is ready to use; New exists for fluent chaining (ex: New().WithDefaults(...).WithJSONFile(...).WithEnv(...).StrictlyLoad(&cfg)).
//
// Sources
//   - Defaults from a map[string]any of scalar values.
//   - JSON files read at load time via WithJSONFile (absolute or relative path; a leading ~ expands to the home directory). The top level must be a flat object of scalars.
//   - Environment variables mapped to configuration keys via WithEnv; missing and empty variables are ignored and present values are strings.
//
// Keys and matching: keys are case-insensitive, and struct field names are matched case-insensitively, with `cascade:"name"` and json tag names taking priority over the field name
// (ex: "port" sets field Port). Unknown keys and JSON nulls are ignored. Values are coerced when reasonable to the destination type (strings to numbers/bools, numbers to strings,
// floats to ints truncated toward zero). Pointer fields are allocated as needed. Case-insensitive field name collisions are not supported.
//
// Validation and errors: fields tagged cascade:",required" must be set by some source; validation occurs after all sources have been applied. StrictlyLoad returns an error when a readable
// source cannot be parsed or when a value cannot be coerced to the field type; it fails fast and does not continue to later sources to "fix" bad values. Missing or unreadable sources,
// empty/whitespace-only files, and unknown keys do not cause errors. Errors include the source's name for context.
//
// Paths: ExpandPath expands a leading "~" to the current user's home directory. InUserConfigDirectory returns an absolute, OS-appropriate path for user-specific config files joined
// with a subpath.
//
// Example
//
//	type Config struct {
//	    Color   string `cascade:",required"`
//	    Context int
//	}
//
//	var cfg Config
//	err := New().
//	    WithDefaults(map[string]any{"color": "auto", "context": 3}).
//	    WithJSONFile("~/.myapp/config.json").
//	    WithEnv(map[string]string{"color": "MYAPP_COLOR", "context": "MYAPP_CONTEXT"}).
//	    StrictlyLoad(&cfg)
//	if err != nil {
//	    // handle error
//	}
package cascade
