package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codalotl/adiff/internal/q/cascade"
)

// Config is adiff's configuration loaded from a cascade of sources. Keys are
// matched case-insensitively, with json tag names taking priority over field
// names.
type Config struct {
	// Marker strings wrapped around changed regions in marked-up output.
	StartDelete string `json:"startdelete"`
	EndDelete   string `json:"enddelete"`
	StartInsert string `json:"startinsert"`
	EndInsert   string `json:"endinsert"`

	// Color is the default --color behavior: "auto", "always", or "never".
	Color string `json:"color"`

	// DiffProgram, if set, names an external diff program to compare words
	// with instead of the built-in matcher.
	DiffProgram string `json:"diffprogram"`

	// Minimal turns on the minimal-edit matcher by default.
	Minimal bool `json:"minimal"`
}

func loadConfig() (Config, error) {
	loader := cascade.New().WithDefaults(map[string]any{
		"startdelete": "[-",
		"enddelete":   "-]",
		"startinsert": "{+",
		"endinsert":   "+}",
		"color":       "never",
	})

	// Global user config: "~/.adiff/config.json" or, on Windows, additionally
	// "%LOCALAPPDATA%\.adiff\config.json".
	loader = loader.WithJSONFile(cascade.ExpandPath("~/.adiff/config.json"))
	if runtime.GOOS == "windows" {
		if lad := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); lad != "" {
			loader = loader.WithJSONFile(filepath.Join(lad, ".adiff", "config.json"))
		}
	}

	loader = loader.WithEnv(map[string]string{
		"startdelete": "ADIFF_START_DELETE",
		"enddelete":   "ADIFF_END_DELETE",
		"startinsert": "ADIFF_START_INSERT",
		"endinsert":   "ADIFF_END_INSERT",
		"color":       "ADIFF_COLOR",
		"diffprogram": "ADIFF_DIFF_PROGRAM",
		"minimal":     "ADIFF_MINIMAL",
	})

	var cfg Config
	if err := loader.StrictlyLoad(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	if !validColorWhen(cfg.Color) {
		return fmt.Errorf("invalid configuration: color must be auto, always, or never (got %q)", cfg.Color)
	}
	return nil
}
