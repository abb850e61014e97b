package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

type flagKind uint8

const (
	flagBool flagKind = iota + 1
	flagString
	flagConst
	flagOptInt
	flagOptString
)

// OptInt is an integer flag whose value is optional: the flag may appear
// bare ("-C", "--context") or with an attached value ("-C5", "--context=5").
// A bare occurrence sets Value to the flag's default. Optional-value flags
// never consume the next argv token.
type OptInt struct {
	Given bool
	Value int
}

// OptString is a string flag whose value is optional, in the manner of
// OptInt ("--color" vs "--color=never").
type OptString struct {
	Given bool
	Value string
}

// FlagSet is a typed flag registry for a command.
type FlagSet struct {
	byLong  map[string]*flagDef
	byShort map[rune]*flagDef
}

type flagDef struct {
	name      string // empty for short-only flags
	shorthand rune
	usage     string
	kind      flagKind
	given     bool

	boolPtr      *bool
	stringPtr    *string
	constDest    *string
	constValue   string
	optIntPtr    *OptInt
	optStringPtr *OptString
	bareInt      int
	bareString   string
}

func newFlagSet() *FlagSet {
	return &FlagSet{
		byLong:  map[string]*flagDef{},
		byShort: map[rune]*flagDef{},
	}
}

func (fs *FlagSet) Bool(name string, shorthand rune, def bool, usage string) *bool {
	ptr := new(bool)
	*ptr = def
	fs.add(&flagDef{
		name:      name,
		shorthand: shorthand,
		usage:     usage,
		kind:      flagBool,
		boolPtr:   ptr,
	})
	return ptr
}

func (fs *FlagSet) String(name string, shorthand rune, def string, usage string) *string {
	ptr := new(string)
	*ptr = def
	fs.add(&flagDef{
		name:      name,
		shorthand: shorthand,
		usage:     usage,
		kind:      flagString,
		stringPtr: ptr,
	})
	return ptr
}

// Const registers a flag that takes no value and stores value into dest when
// it appears. Several Const flags may share one dest, forming a mutually
// overriding group where the last one given wins.
func (fs *FlagSet) Const(name string, shorthand rune, dest *string, value string, usage string) {
	fs.add(&flagDef{
		name:       name,
		shorthand:  shorthand,
		usage:      usage,
		kind:       flagConst,
		constDest:  dest,
		constValue: value,
	})
}

// OptInt registers an optional-value integer flag. Value starts at bare, so
// it is usable whether or not the flag was given; Given reports presence.
func (fs *FlagSet) OptInt(name string, shorthand rune, bare int, usage string) *OptInt {
	ptr := &OptInt{Value: bare}
	fs.add(&flagDef{
		name:      name,
		shorthand: shorthand,
		usage:     usage,
		kind:      flagOptInt,
		optIntPtr: ptr,
		bareInt:   bare,
	})
	return ptr
}

// OptString registers an optional-value string flag. A bare occurrence sets
// Value to bare; Value starts empty.
func (fs *FlagSet) OptString(name string, shorthand rune, bare string, usage string) *OptString {
	ptr := &OptString{}
	fs.add(&flagDef{
		name:         name,
		shorthand:    shorthand,
		usage:        usage,
		kind:         flagOptString,
		optStringPtr: ptr,
		bareString:   bare,
	})
	return ptr
}

func (fs *FlagSet) add(def *flagDef) {
	if def.name == "" && def.shorthand == 0 {
		panic("cli: flag needs a name or a shorthand")
	}
	if def.name != "" {
		if _, ok := fs.byLong[def.name]; ok {
			panic("cli: duplicate flag: --" + def.name)
		}
		fs.byLong[def.name] = def
	}
	if def.shorthand != 0 {
		if _, ok := fs.byShort[def.shorthand]; ok {
			panic(fmt.Sprintf("cli: duplicate shorthand flag: -%c", def.shorthand))
		}
		fs.byShort[def.shorthand] = def
	}
}

// Changed reports whether the named flag appeared on the command line in any
// form. It distinguishes an explicit value equal to the default from an
// absent flag, which matters when flags override configuration.
func (fs *FlagSet) Changed(name string) bool {
	def := fs.byLong[name]
	return def != nil && def.given
}

// nextToken yields the following argv token, if any. Implementations must be
// side-effect free: the parser reports separately whether it consumed the
// token.
type nextToken func() (string, bool)

// applyLong handles a "--name" or "--name=value" token. It reports whether
// the next argv token was consumed as the flag's value.
func (fs *FlagSet) applyLong(token string, next nextToken) (bool, error) {
	name, value, hasValue := splitFlagValue(strings.TrimPrefix(token, "--"))
	def := fs.byLong[name]
	if def == nil {
		return false, usageErrorf("unknown flag: %s", token)
	}
	if hasValue {
		if err := def.setValue(value); err != nil {
			return false, usageErrorf("invalid value for %s: %v", displayFlag(def), err)
		}
		return false, nil
	}
	return bareOrNext(token, def, next)
}

// applyShort handles a "-abc" token: a cluster of shorthands scanned left to
// right. Flags that take no value each consume one rune; the first flag that
// can take a value consumes the rest of the token (an optional leading "="
// is stripped). A value-requiring flag with nothing attached falls back to
// the next argv token.
func (fs *FlagSet) applyShort(token string, next nextToken) (bool, error) {
	body := token[1:]
	for i := 0; i < len(body); {
		r, size := utf8.DecodeRuneInString(body[i:])
		def := fs.byShort[r]
		if def == nil {
			return false, usageErrorf("unknown flag: -%c", r)
		}
		rest := body[i+size:]
		hadEq := strings.HasPrefix(rest, "=")
		if hadEq {
			rest = rest[1:]
		} else if rest != "" && !def.takesValue() {
			def.applyBare()
			i += size
			continue
		}
		if rest == "" && !hadEq {
			return bareOrNext(token, def, next)
		}
		if err := def.setValue(rest); err != nil {
			return false, usageErrorf("invalid value for %s: %v", displayFlag(def), err)
		}
		return false, nil
	}
	return false, nil
}

// bareOrNext applies a flag that appeared with no attached value. Only flags
// that require a value take the next argv token; it reports whether that
// token was consumed.
func bareOrNext(token string, def *flagDef, next nextToken) (bool, error) {
	if def.kind != flagString {
		def.applyBare()
		return false, nil
	}
	value, ok := next()
	if !ok {
		return false, usageErrorf("flag needs a value: %s", token)
	}
	if value == "--" {
		return false, usageErrorf("flag needs a value before --: %s", token)
	}
	*def.stringPtr = value
	def.given = true
	return true, nil
}

func (def *flagDef) takesValue() bool {
	switch def.kind {
	case flagBool, flagConst:
		return false
	}
	return true
}

func (def *flagDef) applyBare() {
	def.given = true
	switch def.kind {
	case flagBool:
		*def.boolPtr = true
	case flagConst:
		*def.constDest = def.constValue
	case flagOptInt:
		def.optIntPtr.Given = true
		def.optIntPtr.Value = def.bareInt
	case flagOptString:
		def.optStringPtr.Given = true
		def.optStringPtr.Value = def.bareString
	}
}

func (def *flagDef) setValue(raw string) error {
	switch def.kind {
	case flagBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*def.boolPtr = v
		def.given = true
		return nil
	case flagString:
		*def.stringPtr = raw
		def.given = true
		return nil
	case flagConst:
		return fmt.Errorf("flag takes no value")
	case flagOptInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		def.optIntPtr.Given = true
		def.optIntPtr.Value = v
		def.given = true
		return nil
	case flagOptString:
		def.optStringPtr.Given = true
		def.optStringPtr.Value = raw
		def.given = true
		return nil
	default:
		return fmt.Errorf("unknown flag kind")
	}
}

func flagsForHelp(cmd *Command) []*flagDef {
	var defs []*flagDef
	for _, def := range cmd.Flags().byLong {
		defs = append(defs, def)
	}
	for _, def := range cmd.Flags().byShort {
		if def.name == "" {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return sortName(defs[i]) < sortName(defs[j]) })
	return defs
}

func sortName(def *flagDef) string {
	if def.name != "" {
		return def.name
	}
	return string(def.shorthand)
}

func displayFlag(def *flagDef) string {
	switch {
	case def.name == "":
		return fmt.Sprintf("-%c", def.shorthand)
	case def.shorthand != 0:
		return fmt.Sprintf("-%c/--%s", def.shorthand, def.name)
	default:
		return "--" + def.name
	}
}
