package rxbuild

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Engine compiles a rendered pattern into an engine-specific program.
// flags is the OR of the document flag ids (see FlagMask).
type Engine[T any] interface {
	Compile(pattern string, flags int) (T, error)
}

// nodeFlagChecker is implemented by engines whose inline flag syntax
// has no meaning, or a different one, for some flags.
// CompileWith rejects trees that override them on any node.
type nodeFlagChecker interface {
	unsupportedNodeFlags() []Flag
}

// StdEngine compiles patterns with the Go regexp package (RE2 syntax).
//
// RE2 has no lookaround, atomic groups or possessive quantifiers;
// such patterns fail to compile. Supported document flags are
// CaseInsensitive, Multiline, DotAll, UnicodeCase (always on in RE2)
// and LiteralPattern.
//
// Node overrides of UnicodeClass are rejected: RE2 reads its "U"
// letter as the ungreedy mode.
type StdEngine struct{}

func (StdEngine) unsupportedNodeFlags() []Flag {
	return []Flag{UnixLines, Comments, UnicodeCase, UnicodeClass}
}

func (StdEngine) Compile(pattern string, flags int) (*regexp.Regexp, error) {
	var letters string
	literal := false
	rest, err := eachFlag(flags, func(f Flag) error {
		switch f {
		case CaseInsensitive, Multiline, DotAll:
			letters += f.Letter()
		case UnicodeCase:
		case LiteralPattern:
			literal = true
		default:
			return fmt.Errorf("flag %v is not supported by regexp", f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rest != 0 {
		return nil, fmt.Errorf("unknown flag bits %#x", rest)
	}
	if literal {
		pattern = regexp.QuoteMeta(pattern)
	}
	if letters != "" {
		pattern = "(?" + letters + ")" + pattern
	}
	return regexp.Compile(pattern)
}

// Regexp2Engine compiles patterns with github.com/dlclark/regexp2,
// a backtracking engine that supports lookaround and atomic groups.
// Possessive quantifiers are not supported; use Atomic instead.
//
// Literal nodes are rewritten into escaped text, since the .NET syntax
// has no \Q...\E quoting.
//
// Supported document flags are CaseInsensitive, Multiline, DotAll,
// Comments, UnicodeCase (always on) and LiteralPattern.
type Regexp2Engine struct {
	// MatchTimeout limits a single match operation; zero means no limit.
	MatchTimeout time.Duration
}

func (Regexp2Engine) unsupportedNodeFlags() []Flag {
	return []Flag{UnixLines, UnicodeCase, UnicodeClass}
}

func (e Regexp2Engine) Compile(pattern string, flags int) (*regexp2.Regexp, error) {
	var opts regexp2.RegexOptions
	literal := false
	rest, err := eachFlag(flags, func(f Flag) error {
		switch f {
		case CaseInsensitive:
			opts |= regexp2.IgnoreCase
		case Multiline:
			opts |= regexp2.Multiline
		case DotAll:
			opts |= regexp2.Singleline
		case Comments:
			opts |= regexp2.IgnorePatternWhitespace
		case UnicodeCase:
		case LiteralPattern:
			literal = true
		default:
			return fmt.Errorf("flag %v is not supported by regexp2", f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rest != 0 {
		return nil, fmt.Errorf("unknown flag bits %#x", rest)
	}
	if literal {
		pattern = regexp2.Escape(pattern)
	} else {
		pattern = unquoteLiterals(pattern)
	}
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if e.MatchTimeout > 0 {
		re.MatchTimeout = e.MatchTimeout
	}
	return re, nil
}

// unquoteLiterals replaces every \Q...\E span of pattern
// with its regexp2.Escape form. An unterminated span runs
// to the end of the pattern.
func unquoteLiterals(pattern string) string {
	if !strings.Contains(pattern, `\Q`) {
		return pattern
	}
	var sb strings.Builder
	sb.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch != '\\' || i+1 == len(pattern) {
			sb.WriteByte(ch)
			continue
		}
		if pattern[i+1] != 'Q' {
			sb.WriteString(pattern[i : i+2])
			i++
			continue
		}
		text := pattern[i+2:]
		end := strings.Index(text, `\E`)
		if end == -1 {
			end = len(text)
		}
		sb.WriteString(regexp2.Escape(text[:end]))
		i += 2 + end + len(`\E`) - 1
	}
	return sb.String()
}

// eachFlag calls fn for every known flag set in mask
// and returns the bits that don't belong to any flag.
func eachFlag(mask int, fn func(f Flag) error) (int, error) {
	for _, f := range allFlags {
		if mask&f.ID() == 0 {
			continue
		}
		if err := fn(f); err != nil {
			return 0, err
		}
		mask &^= f.ID()
	}
	return mask, nil
}
