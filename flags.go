package rxbuild

import (
	"fmt"
	"sort"
	"strings"
)

// Flag is an engine match option that can be set for the whole
// document or overridden per node.
//
// Flag values are bit masks, so a set of flags can be OR-ed into
// a single int that is passed to an Engine.
type Flag int

const (
	UnixLines       Flag = 1 << iota // d
	CaseInsensitive                  // i
	Comments                         // x
	Multiline                        // m
	LiteralPattern                   // no inline letter
	DotAll                           // s
	UnicodeCase                      // u
	CanonEq                          // no inline letter
	UnicodeClass                     // U
)

var allFlags = []Flag{
	UnixLines,
	CaseInsensitive,
	Comments,
	Multiline,
	LiteralPattern,
	DotAll,
	UnicodeCase,
	CanonEq,
	UnicodeClass,
}

// ID returns the numeric option value of the flag.
func (f Flag) ID() int { return int(f) }

// Letter returns the inline flag-group letter of f.
// LiteralPattern and CanonEq have no letter and return "".
func (f Flag) Letter() string {
	switch f {
	case UnixLines:
		return "d"
	case CaseInsensitive:
		return "i"
	case Comments:
		return "x"
	case Multiline:
		return "m"
	case DotAll:
		return "s"
	case UnicodeCase:
		return "u"
	case UnicodeClass:
		return "U"
	default:
		return ""
	}
}

func (f Flag) String() string {
	switch f {
	case UnixLines:
		return "UnixLines"
	case CaseInsensitive:
		return "CaseInsensitive"
	case Comments:
		return "Comments"
	case Multiline:
		return "Multiline"
	case LiteralPattern:
		return "LiteralPattern"
	case DotAll:
		return "DotAll"
	case UnicodeCase:
		return "UnicodeCase"
	case CanonEq:
		return "CanonEq"
	case UnicodeClass:
		return "UnicodeClass"
	default:
		return fmt.Sprintf("Flag(%#x)", int(f))
	}
}

func (f Flag) valid() bool {
	for _, x := range allFlags {
		if x == f {
			return true
		}
	}
	return false
}

// ParseFlag maps a flag letter ("i") or a flag name ("CaseInsensitive",
// case-insensitive) to a Flag.
func ParseFlag(s string) (Flag, error) {
	for _, f := range allFlags {
		if f.Letter() != "" && f.Letter() == s {
			return f, nil
		}
	}
	for _, f := range allFlags {
		if strings.EqualFold(f.String(), s) {
			return f, nil
		}
	}
	return 0, newError(KindInvalidArgument, "unknown flag %q", s)
}

// ParseFlags parses a comma-separated list of flags;
// a single word of letters like "im" is accepted too.
func ParseFlags(s string) ([]Flag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else if f, err := ParseFlag(s); err == nil {
		return []Flag{f}, nil
	} else {
		for _, ch := range s {
			parts = append(parts, string(ch))
		}
	}
	flags := make([]Flag, 0, len(parts))
	for _, p := range parts {
		f, err := ParseFlag(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, nil
}

// FlagMask ORs flag ids together.
func FlagMask(flags ...Flag) int {
	mask := 0
	for _, f := range flags {
		mask |= f.ID()
	}
	return mask
}

// FlagOverrides is a per-node set of flag states.
// A flag is either enabled, disabled or absent (inherits the outer state).
type FlagOverrides struct {
	m map[Flag]bool
}

func (fo *FlagOverrides) SwitchOn(flags ...Flag) error {
	return fo.set(true, flags)
}

func (fo *FlagOverrides) SwitchOff(flags ...Flag) error {
	return fo.set(false, flags)
}

func (fo *FlagOverrides) set(enabled bool, flags []Flag) error {
	if err := checkFlags(flags); err != nil {
		return err
	}
	fo.put(enabled, flags)
	return nil
}

func (fo *FlagOverrides) put(enabled bool, flags []Flag) {
	if len(flags) != 0 && fo.m == nil {
		fo.m = make(map[Flag]bool, len(flags))
	}
	for _, f := range flags {
		fo.m[f] = enabled
	}
}

func (fo FlagOverrides) validate() error {
	for f := range fo.m {
		if !f.valid() {
			return newError(KindInvalidArgument, "unknown flag %v", f)
		}
	}
	return nil
}

// Restore removes the overrides for the given flags.
func (fo *FlagOverrides) Restore(flags ...Flag) error {
	if err := checkFlags(flags); err != nil {
		return err
	}
	for _, f := range flags {
		delete(fo.m, f)
	}
	return nil
}

func (fo *FlagOverrides) RestoreAll() {
	fo.m = nil
}

func (fo FlagOverrides) IsEmpty() bool { return len(fo.m) == 0 }

// State reports whether f is overridden and to which value.
func (fo FlagOverrides) State(f Flag) (enabled, ok bool) {
	enabled, ok = fo.m[f]
	return enabled, ok
}

// Enabled returns the switched-on flags in ascending order.
func (fo FlagOverrides) Enabled() []Flag { return fo.collect(true) }

// Disabled returns the switched-off flags in ascending order.
func (fo FlagOverrides) Disabled() []Flag { return fo.collect(false) }

func (fo FlagOverrides) collect(enabled bool) []Flag {
	var flags []Flag
	for f, v := range fo.m {
		if v == enabled {
			flags = append(flags, f)
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return flags
}

// Render returns the inline flag letters, e.g. "ix-m".
// LiteralPattern and CanonEq take part in the sets but contribute no letters.
func (fo FlagOverrides) Render() string {
	if fo.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	for _, f := range fo.Enabled() {
		sb.WriteString(f.Letter())
	}
	if disabled := fo.Disabled(); len(disabled) != 0 {
		sb.WriteByte('-')
		for _, f := range disabled {
			sb.WriteString(f.Letter())
		}
	}
	return sb.String()
}

func (fo FlagOverrides) String() string {
	return fmt.Sprintf("{on=%v off=%v}", fo.Enabled(), fo.Disabled())
}

func (fo FlagOverrides) clone() FlagOverrides {
	if fo.m == nil {
		return FlagOverrides{}
	}
	m := make(map[Flag]bool, len(fo.m))
	for f, v := range fo.m {
		m[f] = v
	}
	return FlagOverrides{m: m}
}

func checkFlags(flags []Flag) error {
	for _, f := range flags {
		if !f.valid() {
			return newError(KindInvalidArgument, "unknown flag %v", f)
		}
	}
	return nil
}
