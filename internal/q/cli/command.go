package cli

// RunFunc is a command handler.
type RunFunc func(c *Context) error

// ArgsFunc validates positional args. It should return a UsageError (or any
// ExitCoder with code 2) for user-facing usage mistakes.
type ArgsFunc func(args []string) error

// Command defines a CLI program: its flags, its handler, and its help text.
type Command struct {
	// Name is the program name as invoked (e.g. "adiff").
	Name string

	Short   string
	Long    string
	Example string

	// Usage describes the positional arguments on the usage line, e.g.
	// "<file1> <file2>". Empty renders as "[args]".
	Usage string

	Args ArgsFunc // optional
	Run  RunFunc  // required

	flags *FlagSet
}

// Flags returns the command's flag set.
func (c *Command) Flags() *FlagSet {
	if c.flags == nil {
		c.flags = newFlagSet()
	}
	return c.flags
}
