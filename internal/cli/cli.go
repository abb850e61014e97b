package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	qcli "github.com/codalotl/adiff/internal/q/cli"
)

// Version is the adiff version. It is a var (not a const) so build tooling can override it (for example via `-ldflags "-X .../internal/cli.Version=1.2.3"`).
var Version = "0.1.0"

// In/Out/Err override standard I/O. If nil, defaults are used. Overriding is useful for testing.
type RunOptions struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run runs the CLI with args (typically you'd use os.Args).
//
// It returns a recommended exit code and an error, if any:
//   - 0 -> no differences (marked-up output always counts as success)
//   - 1 -> differences were found (diff style flags), or a runtime failure
//   - 2 -> args parse error, bad configuration, or diff program trouble
//
// Differences found is a result, not a failure: Run returns (1, nil) with the
// diff already written to opts.Out || Stdout. For real failures Run has
// already displayed an error message to opts.Err || Stderr and returns the
// same message as the error. Callers may use os.Exit with the exit code.
func Run(args []string, opts *RunOptions) (int, error) {
	argv := args
	if len(argv) > 0 {
		argv = argv[1:]
	}

	var in io.Reader = os.Stdin
	var out io.Writer = os.Stdout
	var errW io.Writer = os.Stderr
	if opts != nil {
		if opts.In != nil {
			in = opts.In
		}
		if opts.Out != nil {
			out = opts.Out
		}
		if opts.Err != nil {
			errW = opts.Err
		}
	}

	// SIGINT/SIGTERM cancel the context: anything in flight (most importantly
	// an external diff run) unwinds, releasing its temp dirs on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// internal/q/cli intentionally returns only an exit code, so we tee stderr
	// to produce a non-nil error when exitCode != 0. Stdout carries the diff
	// itself and stays untouched.
	var stderrBuf bytes.Buffer
	errTee := io.MultiWriter(errW, &stderrBuf)

	exitCode := qcli.Run(ctx, newRootCommand(), qcli.Options{
		Args: argv,
		In:   in,
		Out:  out,
		Err:  errTee,
	})

	if exitCode == 0 {
		return 0, nil
	}

	msg := strings.TrimSpace(stderrBuf.String())
	if msg == "" {
		// A non-zero exit with a silent stderr means differences were found.
		return exitCode, nil
	}
	return exitCode, errors.New(msg)
}
