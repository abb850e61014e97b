package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type Options struct {
	// Args is the argv excluding the program name (typically os.Args[1:]).
	Args []string

	// In/Out/Err override standard I/O. If nil, defaults are used.
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Context is passed to a command handler.
//
// Positional args are in Args. Flag values are typically read via variables bound
// at command construction time (e.g. fs.Bool(...)).
type Context struct {
	context.Context

	Command *Command
	Args    []string

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes a command as a CLI program and returns a process exit code.
func Run(ctx context.Context, cmd *Command, opts Options) int {
	if cmd == nil {
		panic("cli: Run called with nil command")
	}
	if cmd.Name == "" {
		panic("cli: Run called with cmd.Name empty")
	}
	if cmd.Run == nil {
		panic("cli: Run called with cmd.Run nil")
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	args, parseErr := parseArgv(cmd, opts.Args, out)
	if parseErr != nil {
		if errors.Is(parseErr, errHelpPrinted) {
			return 0
		}
		printUsageError(cmd, parseErr, errOut)
		return 2
	}

	if cmd.Args != nil {
		if err := cmd.Args(args); err != nil {
			return exitForArgsError(cmd, err, errOut)
		}
	}

	c := &Context{
		Context: ctx,
		Command: cmd,
		Args:    args,
		In:      in,
		Out:     out,
		Err:     errOut,
	}
	if err := cmd.Run(c); err != nil {
		return exitForHandlerError(cmd, err, errOut)
	}
	return 0
}

var errHelpPrinted = errors.New("help printed")

func parseArgv(cmd *Command, argv []string, out io.Writer) ([]string, error) {
	flags := cmd.Flags()
	var positional []string

	for i := 0; i < len(argv); i++ {
		token := argv[i]

		if token == "--" {
			positional = append(positional, argv[i+1:]...)
			break
		}

		if token == "-h" || token == "--help" {
			writeHelp(out, cmd)
			return nil, errHelpPrinted
		}

		if !isFlagToken(token) {
			positional = append(positional, token)
			continue
		}

		next := func() (string, bool) {
			if i+1 >= len(argv) {
				return "", false
			}
			return argv[i+1], true
		}
		var consumedNext bool
		var err error
		if strings.HasPrefix(token, "--") {
			consumedNext, err = flags.applyLong(token, next)
		} else {
			consumedNext, err = flags.applyShort(token, next)
		}
		if err != nil {
			return nil, err
		}
		if consumedNext {
			i++
		}
	}
	return positional, nil
}

func isFlagToken(token string) bool {
	return strings.HasPrefix(token, "-") && token != "-" // "-" is a valid positional arg.
}

func splitFlagValue(s string) (name, value string, ok bool) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func exitForHandlerError(cmd *Command, err error, errOut io.Writer) int {
	// Only a UsageError gets the usage text; other exit-coded errors keep
	// their message and code (a bad config file is not a bad command line).
	var ue UsageError
	if errors.As(err, &ue) {
		printUsageError(cmd, err, errOut)
		return 2
	}

	var ec ExitCoder
	if errors.As(err, &ec) {
		code := ec.ExitCode()
		if code == 0 {
			return 0
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(errOut, msg)
		}
		return code
	}

	if msg := err.Error(); msg != "" {
		fmt.Fprintln(errOut, msg)
	}
	return 1
}

func exitForArgsError(cmd *Command, err error, errOut io.Writer) int {
	var ec ExitCoder
	if errors.As(err, &ec) {
		code := ec.ExitCode()
		if code == 2 {
			printUsageError(cmd, err, errOut)
			return 2
		}
		if code == 0 {
			return 0
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(errOut, msg)
		}
		return code
	}

	printUsageError(cmd, err, errOut)
	return 2
}

func printUsageError(cmd *Command, err error, errOut io.Writer) {
	msg := usageErrorMessage(err)
	if msg != "" {
		fmt.Fprintln(errOut, msg)
		fmt.Fprintln(errOut)
	}
	writeHelp(errOut, cmd)
}

func usageErrorMessage(err error) string {
	var ue UsageError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	if err == nil {
		return ""
	}
	if errors.Is(err, errHelpPrinted) {
		return ""
	}
	return err.Error()
}
