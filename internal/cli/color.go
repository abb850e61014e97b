package cli

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/codalotl/adiff/internal/worddiff"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

func validColorWhen(when string) bool {
	switch when {
	case "auto", "always", "never":
		return true
	}
	return false
}

func colorEnabled(when string, out io.Writer) bool {
	switch when {
	case "always":
		return true
	case "auto":
		if outFile, ok := out.(*os.File); ok && outFile != nil {
			return term.IsTerminal(int(outFile.Fd()))
		}
	}
	return false
}

// colorMarkers paints delete regions red and insert regions green instead of
// wrapping them in marker strings.
func colorMarkers() worddiff.Markers {
	return worddiff.Markers{
		StartDelete: ansiRed,
		EndDelete:   ansiReset,
		StartInsert: ansiGreen,
		EndInsert:   ansiReset,
	}
}
