package linediff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/codalotl/adiff/internal/scratch"
	"github.com/codalotl/adiff/internal/simplelogger"
)

// CommandOracle answers diff questions by running an external diff program
// against temporary files holding one line per input element. The program
// must follow the diff exit convention: 0 for no differences, 1 for
// differences, anything else for trouble.
type CommandOracle struct {
	Program string
}

// TroubleError reports that the external diff program could not be run or
// exited with a status above 1, the diff convention for "trouble". Either
// way there is no diff result.
type TroubleError struct {
	Program string
	Status  int
	Detail  string // the program's stderr, or why it could not run
}

func (e *TroubleError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = "exit status " + strconv.Itoa(e.Status)
	}
	return fmt.Sprintf("linediff: %s: %s", e.Program, detail)
}

func (o *CommandOracle) Hunks(ctx context.Context, old, new []string) ([]Hunk, error) {
	out, _, err := o.run(ctx, old, new, nil)
	if err != nil {
		return nil, err
	}
	return ParseHunks(out)
}

// Render relays the external program's styled output verbatim, along with
// its exit status.
func (o *CommandOracle) Render(ctx context.Context, old, new []string, style Style) (string, int, error) {
	return o.run(ctx, old, new, styleArgs(style))
}

func styleArgs(style Style) []string {
	switch style.Format {
	case FormatContext:
		return []string{"-C", strconv.Itoa(style.Context)}
	case FormatUnified:
		return []string{"-U", strconv.Itoa(style.Context)}
	default:
		return nil
	}
}

func (o *CommandOracle) run(ctx context.Context, old, new []string, extraArgs []string) (string, int, error) {
	dir, err := scratch.NewDir("adiff-")
	if err != nil {
		return "", 0, err
	}
	defer dir.Release()

	oldPath, err := dir.WriteFile("old", lineFile(old))
	if err != nil {
		return "", 0, err
	}
	newPath, err := dir.WriteFile("new", lineFile(new))
	if err != nil {
		return "", 0, err
	}

	args := append(append([]string{}, extraArgs...), oldPath, newPath)
	simplelogger.Log("linediff: running %s %s", o.Program, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, o.Program, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return "", 0, fmt.Errorf("linediff: %s: %w", o.Program, ctx.Err())
	}
	status := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) || exitErr.ExitCode() < 0 {
			return "", 0, &TroubleError{Program: o.Program, Status: 2, Detail: runErr.Error()}
		}
		status = exitErr.ExitCode()
	}
	if status > 1 {
		return "", 0, &TroubleError{Program: o.Program, Status: status, Detail: strings.TrimSpace(stderr.String())}
	}
	return stdout.String(), status, nil
}

// lineFile lays lines out one per line, each newline-terminated. No lines
// means an empty file.
func lineFile(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	var b bytes.Buffer
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.Bytes()
}
