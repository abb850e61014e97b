// Package scratch manages short-lived temporary directories. A Dir is a
// handle to one directory; Release deletes it and everything inside. Callers
// defer Release immediately after NewDir so the files never outlive the
// operation that needed them.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codalotl/adiff/internal/simplelogger"
)

// Dir is a temporary directory that lives until Release is called.
type Dir struct {
	path string
}

// NewDir creates a fresh temporary directory whose name starts with prefix.
func NewDir(prefix string) (*Dir, error) {
	path, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, fmt.Errorf("scratch: %w", err)
	}
	simplelogger.Log("scratch: created %s", path)
	return &Dir{path: path}, nil
}

// Path returns the directory's path, or "" after Release.
func (d *Dir) Path() string { return d.path }

// WriteFile writes data to name inside the directory and returns the file's
// full path.
func (d *Dir) WriteFile(name string, data []byte) (string, error) {
	if d.path == "" {
		return "", fmt.Errorf("scratch: write %s: directory released", name)
	}
	path := filepath.Join(d.path, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("scratch: %w", err)
	}
	return path, nil
}

// Release deletes the directory and its contents. Calling it again, or on a
// nil Dir, does nothing.
func (d *Dir) Release() {
	if d == nil || d.path == "" {
		return
	}
	_ = os.RemoveAll(d.path)
	simplelogger.Log("scratch: released %s", d.path)
	d.path = ""
}
