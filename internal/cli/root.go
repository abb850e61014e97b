package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/codalotl/adiff/internal/linediff"
	qcli "github.com/codalotl/adiff/internal/q/cli"
	"github.com/codalotl/adiff/internal/simplelogger"
	"github.com/codalotl/adiff/internal/tokenizer"
	"github.com/codalotl/adiff/internal/worddiff"
)

const (
	styleNormal  = "normal"
	styleContext = "context"
	styleUnified = "unified"
)

func newRootCommand() *qcli.Command {
	root := &qcli.Command{
		Name:  "adiff",
		Short: "Compare two files word by word.",
		Long: `adiff compares two files word by word instead of line by line. By default
it prints the new file's text with deleted words wrapped in [-...-] and
inserted words in {+...+}, keeping the original spacing everywhere else.

With a diff style flag (--normal, -c/-C, -u/-U) adiff instead prints a
line-oriented diff of the word changes, one word per line, so reflowed
paragraphs and moved line breaks don't drown out the real edits.`,
		Usage: "<file1> <file2>",
		Example: `adiff old.txt new.txt
adiff -i -b old.txt new.txt
adiff -U2 old.txt new.txt
adiff --color=auto old.txt new.txt`,
	}

	fs := root.Flags()

	startDelete := fs.String("start-delete", 'w', "[-", "String marking the start of a delete region.")
	endDelete := fs.String("end-delete", 'x', "-]", "String marking the end of a delete region.")
	startInsert := fs.String("start-insert", 'y', "{+", "String marking the start of an insert region.")
	endInsert := fs.String("end-insert", 'z', "+}", "String marking the end of an insert region.")
	ignoreCase := fs.Bool("ignore-case", 'i', false, "Fold case when comparing words.")
	separator := fs.String("regex", 'r', "", "Go regexp matching word separators (default: whitespace runs).")
	wordBoundaries := fs.Bool("word-boundaries", 'b', false, "Also split words at boundaries next to punctuation.")
	unicodeWords := fs.Bool("unicode-words", 0, false, "Split words by Unicode segmentation rules instead of a separator regexp.")
	reverse := fs.Bool("reverse", 0, false, "Keep the new text's spacing before delete regions instead of the old text's.")

	var style string
	fs.Const("normal", 0, &style, styleNormal, "Print a line-oriented diff of the word changes in normal format.")
	fs.Const("", 'c', &style, styleContext, "Like --normal, in context format.")
	fs.Const("", 'u', &style, styleUnified, "Like --normal, in unified format.")
	contextLines := fs.OptInt("context", 'C', 3, "Context format with <int> lines of context.")
	unifiedLines := fs.OptInt("unified", 'U', 3, "Unified format with <int> lines of context.")

	minimal := fs.Bool("minimal", 'd', false, "Find a minimal set of word changes (can be slower).")
	diffProgram := fs.String("diff-program", 0, "", "Compare words with this external diff program.")
	colorWhen := fs.OptString("color", 0, "always", "Color changed words instead of marking them: auto, always, or never.")
	version := fs.Bool("version", 'V', false, "Print the adiff version and exit.")

	root.Args = func(args []string) error {
		if *version {
			return nil
		}
		return qcli.ExactArgs(2)(args)
	}

	runDiff := func(c *qcli.Context) error {
		if *version {
			return writeStringln(c.Out, "adiff "+Version)
		}

		cfg, err := loadConfig()
		if err != nil {
			return qcli.ExitError{Code: 2, Err: err}
		}

		opts := worddiff.Options{
			IgnoreCase: *ignoreCase,
			Reverse:    *reverse,
		}

		// Word splitting: an explicit -r wins, then -b, then --unicode-words.
		switch {
		case fs.Changed("regex"):
			if *separator == "" {
				return qcli.UsageError{Message: "invalid --regex: an empty pattern can never match a separator"}
			}
			if _, err := regexp.Compile(*separator); err != nil {
				return qcli.UsageError{Message: fmt.Sprintf("invalid --regex: %v", err)}
			}
			opts.Separator = *separator
		case *wordBoundaries:
			opts.Separator = tokenizer.WordBoundaryPattern
		case *unicodeWords:
			opts.UnicodeWords = true
		}

		if program := resolveString(fs, "diff-program", *diffProgram, cfg.DiffProgram); program != "" {
			opts.Oracle = &linediff.CommandOracle{Program: program}
			simplelogger.Log("cli: using external diff program %s", program)
		} else if resolveBool(fs, "minimal", *minimal, cfg.Minimal) {
			opts.Oracle = &linediff.EngineOracle{Engine: linediff.MinimalEngine{}}
			simplelogger.Log("cli: using minimal-edit matcher")
		}

		opts.Markers = worddiff.Markers{
			StartDelete: resolveString(fs, "start-delete", *startDelete, cfg.StartDelete),
			EndDelete:   resolveString(fs, "end-delete", *endDelete, cfg.EndDelete),
			StartInsert: resolveString(fs, "start-insert", *startInsert, cfg.StartInsert),
			EndInsert:   resolveString(fs, "end-insert", *endInsert, cfg.EndInsert),
		}

		// Explicit --normal/-c/-u win; otherwise a -U/-C occurrence picks the
		// style that goes with its count.
		format := style
		if format == "" {
			switch {
			case unifiedLines.Given:
				format = styleUnified
			case contextLines.Given:
				format = styleContext
			}
		}

		when := cfg.Color
		if colorWhen.Given {
			when = colorWhen.Value
			if !validColorWhen(when) {
				return qcli.UsageError{Message: fmt.Sprintf("invalid --color value %q (want auto, always, or never)", when)}
			}
		}
		markersGiven := fs.Changed("start-delete") || fs.Changed("end-delete") ||
			fs.Changed("start-insert") || fs.Changed("end-insert")
		if format == "" && !markersGiven && colorEnabled(when, c.Out) {
			opts.Markers = colorMarkers()
		}

		oldFile, err := readInput(c.Args[0])
		if err != nil {
			return err
		}
		newFile, err := readInput(c.Args[1])
		if err != nil {
			return err
		}

		if format == "" {
			marked, err := worddiff.Inline(c.Context, oldFile.text, newFile.text, opts)
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.Out, marked)
			return err
		}

		st := linediff.Style{
			Format:   styleFormat(format),
			OldLabel: oldFile.path,
			NewLabel: newFile.path,
			OldTime:  oldFile.mtime,
			NewTime:  newFile.mtime,
		}
		switch format {
		case styleContext:
			st.Context = contextLines.Value
		case styleUnified:
			st.Context = unifiedLines.Value
		}

		out, status, err := worddiff.Structural(c.Context, oldFile.text, newFile.text, st, opts)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(c.Out, out); err != nil {
			return err
		}
		if status != 0 {
			// Differences found: the diff itself is the message.
			return qcli.ExitError{Code: status}
		}
		return nil
	}

	root.Run = func(c *qcli.Context) error {
		return troubleToExitCode(runDiff(c))
	}

	return root
}

// troubleToExitCode maps external diff trouble to exit code 2, diff's own
// convention for it. Other errors keep the default runtime-failure code.
func troubleToExitCode(err error) error {
	var trouble *linediff.TroubleError
	if errors.As(err, &trouble) {
		return qcli.ExitError{Code: 2, Err: err}
	}
	return err
}

// resolveString is the flag-over-config rule: an explicit flag wins even when
// its value matches the compiled default, otherwise configuration decides.
func resolveString(fs *qcli.FlagSet, name, flagValue, cfgValue string) string {
	if fs.Changed(name) {
		return flagValue
	}
	return cfgValue
}

func resolveBool(fs *qcli.FlagSet, name string, flagValue, cfgValue bool) bool {
	if fs.Changed(name) {
		return flagValue
	}
	return cfgValue
}

func styleFormat(style string) linediff.Format {
	switch style {
	case styleContext:
		return linediff.FormatContext
	case styleUnified:
		return linediff.FormatUnified
	default:
		return linediff.FormatNormal
	}
}

type inputFile struct {
	path  string
	text  string
	mtime time.Time
}

func readInput(path string) (inputFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return inputFile{}, err
	}
	f := inputFile{path: path, text: string(data)}
	// Best effort: the mtime only decorates context/unified headers.
	if info, err := os.Stat(path); err == nil {
		f.mtime = info.ModTime()
	}
	return f, nil
}

func writeStringln(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return err
	}
	return nil
}
