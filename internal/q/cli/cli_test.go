package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func runCLI(t *testing.T, cmd *Command, args []string) (int, string, string) {
	t.Helper()
	var out bytes.Buffer
	var errOut bytes.Buffer
	code := Run(context.Background(), cmd, Options{
		Args: args,
		Out:  &out,
		Err:  &errOut,
	})
	return code, out.String(), errOut.String()
}

func newTestCommand() *Command {
	return &Command{
		Name: "prog",
		Run:  func(*Context) error { return nil },
	}
}

func TestRun_ParsesFlagsInterspersedWithArgs(t *testing.T) {
	cmd := newTestCommand()
	cmd.Args = ExactArgs(2)
	mode := cmd.Flags().String("mode", 'm', "", "Mode")
	verbose := cmd.Flags().Bool("verbose", 'v', false, "Verbose")

	var gotArgs []string
	cmd.Run = func(c *Context) error {
		gotArgs = append([]string(nil), c.Args...)
		return nil
	}

	code, stdout, stderr := runCLI(t, cmd, []string{"a", "--mode=fast", "-v", "b"})
	if code != 0 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stdout != "" || stderr != "" {
		t.Fatalf("expected no output; stdout=%q stderr=%q", stdout, stderr)
	}
	if *mode != "fast" {
		t.Fatalf("expected mode=fast, got %q", *mode)
	}
	if !*verbose {
		t.Fatalf("expected verbose=true")
	}
	if strings.Join(gotArgs, ",") != "a,b" {
		t.Fatalf("expected args=[a b], got %v", gotArgs)
	}
}

func TestRun_ShortFlagClusters(t *testing.T) {
	newCmd := func() (*Command, *bool, *bool, *OptInt) {
		cmd := newTestCommand()
		i := cmd.Flags().Bool("ignore-case", 'i', false, "")
		v := cmd.Flags().Bool("verbose", 'v', false, "")
		n := cmd.Flags().OptInt("context", 'C', 3, "")
		return cmd, i, v, n
	}

	t.Run("bools cluster", func(t *testing.T) {
		cmd, i, v, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-iv"})
		if code != 0 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !*i || !*v {
			t.Fatalf("expected both set, got i=%v v=%v", *i, *v)
		}
	})

	t.Run("bare optional value ends a cluster", func(t *testing.T) {
		cmd, i, _, n := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-iC"})
		if code != 0 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !*i {
			t.Fatalf("expected -i set")
		}
		if !n.Given || n.Value != 3 {
			t.Fatalf("expected bare -C to give default 3, got %+v", *n)
		}
	})

	t.Run("attached value after cluster", func(t *testing.T) {
		cmd, i, _, n := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-iC5"})
		if code != 0 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !*i {
			t.Fatalf("expected -i set")
		}
		if !n.Given || n.Value != 5 {
			t.Fatalf("expected -C5 to give 5, got %+v", *n)
		}
	})

	t.Run("bad attached value", func(t *testing.T) {
		cmd, _, _, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-Cx"})
		if code != 2 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !strings.Contains(stderr, "invalid value for -C/--context") {
			t.Fatalf("expected invalid value message; stderr=%q", stderr)
		}
	})

	t.Run("unknown rune in cluster", func(t *testing.T) {
		cmd, _, _, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-iq"})
		if code != 2 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !strings.Contains(stderr, "unknown flag: -q") {
			t.Fatalf("expected unknown flag message; stderr=%q", stderr)
		}
	})
}

func TestRun_ConstFlagsShareDest(t *testing.T) {
	newCmd := func() (*Command, *string) {
		cmd := newTestCommand()
		style := new(string)
		*style = "inline"
		cmd.Flags().Const("normal", 0, style, "normal", "")
		cmd.Flags().Const("", 'c', style, "context", "")
		return cmd, style
	}

	t.Run("absent leaves dest alone", func(t *testing.T) {
		cmd, style := newCmd()
		code, _, _ := runCLI(t, cmd, nil)
		if code != 0 || *style != "inline" {
			t.Fatalf("code=%d style=%q", code, *style)
		}
	})

	t.Run("long const", func(t *testing.T) {
		cmd, style := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"--normal"})
		if code != 0 || *style != "normal" {
			t.Fatalf("code=%d style=%q", code, *style)
		}
	})

	t.Run("last const wins", func(t *testing.T) {
		cmd, style := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"--normal", "-c"})
		if code != 0 || *style != "context" {
			t.Fatalf("code=%d style=%q", code, *style)
		}
	})

	t.Run("const rejects a value", func(t *testing.T) {
		cmd, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"--normal=x"})
		if code != 2 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !strings.Contains(stderr, "flag takes no value") {
			t.Fatalf("expected takes-no-value message; stderr=%q", stderr)
		}
	})
}

func TestRun_OptionalValueFlagsNeverConsumeNextToken(t *testing.T) {
	cmd := newTestCommand()
	n := cmd.Flags().OptInt("context", 'C', 3, "")

	var gotArgs []string
	cmd.Run = func(c *Context) error {
		gotArgs = append([]string(nil), c.Args...)
		return nil
	}

	code, _, stderr := runCLI(t, cmd, []string{"--context", "7"})
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if !n.Given || n.Value != 3 {
		t.Fatalf("expected bare --context to give default 3, got %+v", *n)
	}
	if strings.Join(gotArgs, ",") != "7" {
		t.Fatalf("expected [7] to stay positional, got %v", gotArgs)
	}
}

func TestRun_OptionalValueFlagForms(t *testing.T) {
	newCmd := func() (*Command, *OptInt, *OptString) {
		cmd := newTestCommand()
		n := cmd.Flags().OptInt("context", 'C', 3, "")
		color := cmd.Flags().OptString("color", 0, "always", "")
		return cmd, n, color
	}

	t.Run("absent", func(t *testing.T) {
		cmd, n, color := newCmd()
		code, _, _ := runCLI(t, cmd, nil)
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if n.Given || n.Value != 3 {
			t.Fatalf("expected ungiven default 3, got %+v", *n)
		}
		if color.Given || color.Value != "" {
			t.Fatalf("expected ungiven empty, got %+v", *color)
		}
	})

	t.Run("long with value", func(t *testing.T) {
		cmd, n, color := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"--context=7", "--color=never"})
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if !n.Given || n.Value != 7 {
			t.Fatalf("expected 7, got %+v", *n)
		}
		if !color.Given || color.Value != "never" {
			t.Fatalf("expected never, got %+v", *color)
		}
	})

	t.Run("bare string takes its default", func(t *testing.T) {
		cmd, _, color := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"--color"})
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if !color.Given || color.Value != "always" {
			t.Fatalf("expected always, got %+v", *color)
		}
	})

	t.Run("repeated occurrences, last wins", func(t *testing.T) {
		cmd, n, _ := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"-C5", "-C"})
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if !n.Given || n.Value != 3 {
			t.Fatalf("expected final bare -C to reset to 3, got %+v", *n)
		}
	})
}

func TestRun_StringFlagValues(t *testing.T) {
	newCmd := func() (*Command, *string) {
		cmd := newTestCommand()
		w := cmd.Flags().String("start-delete", 'w', "", "")
		return cmd, w
	}

	t.Run("next token", func(t *testing.T) {
		cmd, w := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-w", "[-"})
		if code != 0 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if *w != "[-" {
			t.Fatalf("expected [-, got %q", *w)
		}
	})

	t.Run("attached to shorthand", func(t *testing.T) {
		cmd, w := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"-w{{"})
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if *w != "{{" {
			t.Fatalf("expected {{, got %q", *w)
		}
	})

	t.Run("attached with equals", func(t *testing.T) {
		cmd, w := newCmd()
		code, _, _ := runCLI(t, cmd, []string{"-w=<<"})
		if code != 0 {
			t.Fatalf("code=%d", code)
		}
		if *w != "<<" {
			t.Fatalf("expected <<, got %q", *w)
		}
	})

	t.Run("missing value", func(t *testing.T) {
		cmd, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-w"})
		if code != 2 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !strings.Contains(stderr, "flag needs a value: -w") {
			t.Fatalf("expected needs-a-value message; stderr=%q", stderr)
		}
	})

	t.Run("value cannot be --", func(t *testing.T) {
		cmd, _ := newCmd()
		code, _, stderr := runCLI(t, cmd, []string{"-w", "--"})
		if code != 2 {
			t.Fatalf("code=%d stderr=%q", code, stderr)
		}
		if !strings.Contains(stderr, "flag needs a value before --: -w") {
			t.Fatalf("expected needs-a-value message; stderr=%q", stderr)
		}
	})
}

func TestRun_BoolFlagNeverConsumesNextToken(t *testing.T) {
	cmd := newTestCommand()
	i := cmd.Flags().Bool("ignore-case", 'i', false, "")

	var gotArgs []string
	cmd.Run = func(c *Context) error {
		gotArgs = append([]string(nil), c.Args...)
		return nil
	}

	code, _, stderr := runCLI(t, cmd, []string{"-i", "true", "false"})
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if !*i {
		t.Fatalf("expected -i set")
	}
	if strings.Join(gotArgs, ",") != "true,false" {
		t.Fatalf("expected file-like args to survive, got %v", gotArgs)
	}
}

func TestRun_HelpPrintsToOut(t *testing.T) {
	cmd := newTestCommand()
	cmd.Short = "Word diff"
	cmd.Usage = "<file1> <file2>"
	cmd.Flags().Bool("ignore-case", 'i', false, "Fold case when comparing")

	code, stdout, stderr := runCLI(t, cmd, []string{"-h"})
	if code != 0 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stderr != "" {
		t.Fatalf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "prog [flags] <file1> <file2>") {
		t.Fatalf("expected usage line; stdout=%q", stdout)
	}
	if !strings.HasSuffix(stdout, "\n") {
		t.Fatalf("expected trailing newline; stdout=%q", stdout)
	}
}

func TestRun_UnknownFlagIsUsageErrorAndIncludesToken(t *testing.T) {
	cmd := newTestCommand()

	code, stdout, stderr := runCLI(t, cmd, []string{"--nope"})
	if code != 2 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "unknown flag: --nope") {
		t.Fatalf("expected stderr to mention unknown token; stderr=%q", stderr)
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage; stderr=%q", stderr)
	}
}

func TestRun_HandlerErrorDoesNotPrintUsage(t *testing.T) {
	cmd := &Command{
		Name: "prog",
		Run: func(*Context) error {
			return errors.New("boom")
		},
	}

	code, stdout, stderr := runCLI(t, cmd, nil)
	if code != 1 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
	if strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected no usage on handler error; stderr=%q", stderr)
	}
	if strings.TrimSpace(stderr) != "boom" {
		t.Fatalf("expected error message; stderr=%q", stderr)
	}
}

func TestRun_HandlerUsageErrorPrintsUsage(t *testing.T) {
	cmd := &Command{Name: "prog"}
	cmd.Run = func(*Context) error {
		return UsageError{Message: "bad input"}
	}

	code, stdout, stderr := runCLI(t, cmd, nil)
	if code != 2 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stdout != "" {
		t.Fatalf("expected no stdout, got %q", stdout)
	}
	if !strings.Contains(stderr, "bad input") || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("expected usage error message and usage; stderr=%q", stderr)
	}
}

func TestRun_SilentExitError(t *testing.T) {
	cmd := &Command{Name: "prog"}
	cmd.Run = func(*Context) error {
		return ExitError{Code: 1}
	}

	code, stdout, stderr := runCLI(t, cmd, nil)
	if code != 1 {
		t.Fatalf("code=%d stdout=%q stderr=%q", code, stdout, stderr)
	}
	if stdout != "" || stderr != "" {
		t.Fatalf("expected no output; stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestFlagSet_Changed(t *testing.T) {
	cmd := newTestCommand()
	fs := cmd.Flags()
	fs.String("start-delete", 'w', "[-", "")
	fs.Bool("minimal", 'd', false, "")
	fs.OptString("color", 0, "always", "")

	code, _, stderr := runCLI(t, cmd, []string{"-w", "[-", "-d=false"})
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	for _, name := range []string{"start-delete", "minimal"} {
		if !fs.Changed(name) {
			t.Fatalf("expected Changed(%q)=true", name)
		}
	}
	if fs.Changed("color") {
		t.Fatalf("expected Changed(color)=false for absent flag")
	}
	if fs.Changed("no-such-flag") {
		t.Fatalf("expected Changed of unknown name to be false")
	}
}
