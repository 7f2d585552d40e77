package rxbuild

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chars is a character set node, e.g. [a-z0-9_] or [^\s].
type Chars struct {
	element

	items []charItem
	not   bool
}

// charItem is a single rune, a rune range or a predefined class.
type charItem struct {
	from, to rune
	class    CharClass
}

func (it charItem) render(sb *strings.Builder) {
	switch {
	case it.class != "":
		sb.WriteString(string(it.class))
	case it.from == it.to:
		quoteSetRune(sb, it.from)
	default:
		quoteSetRune(sb, it.from)
		sb.WriteByte('-')
		quoteSetRune(sb, it.to)
	}
}

// NewChars returns a set of all runes of s.
func NewChars(s string) *Chars {
	c := &Chars{element: newElement()}
	c.addRunes(s)
	return c
}

// CharRange returns a set of runes between from and to, inclusive.
func CharRange(from, to rune) (*Chars, error) {
	c := &Chars{element: newElement()}
	if err := c.addRange(from, to); err != nil {
		return nil, err
	}
	return c, nil
}

// CharClassSet returns a set that holds one predefined class.
func CharClassSet(class CharClass) *Chars {
	return &Chars{element: newElement(), items: []charItem{{class: class}}}
}

// IsNot reports whether the set is negated.
func (c *Chars) IsNot() bool { return c.not }

func (c *Chars) Len() int { return len(c.items) }

func (c *Chars) Render() (string, error) { return render(c) }

func (c *Chars) String() string { return describe(c) }

func (c *Chars) content() (string, error) {
	if len(c.items) == 0 {
		return "", newError(KindInvalidArgument, "empty character set")
	}
	var sb strings.Builder
	sb.WriteByte('[')
	if c.not {
		sb.WriteByte('^')
	}
	for _, it := range c.items {
		it.render(&sb)
	}
	sb.WriteByte(']')
	return sb.String(), nil
}

func (c *Chars) clone() *Chars {
	items := make([]charItem, len(c.items))
	copy(items, c.items)
	return &Chars{element: c.cloneElement(), items: items, not: c.not}
}

func (c *Chars) cloneNode() Node { return c.clone() }

// Clone returns a copy of c with copy-on-write enabled.
func (c *Chars) Clone() *Chars { return c.clone() }

// Add adds every rune of s to the set.
func (c *Chars) Add(s string) *Chars {
	return mutate(c, func(x *Chars) { x.addRunes(s) })
}

func (c *Chars) AddRange(from, to rune) (*Chars, error) {
	return tryMutate(c, func(x *Chars) error { return x.addRange(from, to) })
}

func (c *Chars) AddClass(class CharClass) *Chars {
	return mutate(c, func(x *Chars) { x.items = append(x.items, charItem{class: class}) })
}

// Union adds all items of other to the set.
// The negation of other is not carried over.
func (c *Chars) Union(other *Chars) (*Chars, error) {
	if other == nil {
		return c, newError(KindInvalidArgument, "union with a nil set")
	}
	items := other.items
	return mutate(c, func(x *Chars) { x.items = append(x.items, items...) }), nil
}

// Not returns the negated set.
func (c *Chars) Not() *Chars {
	return mutate(c, func(x *Chars) { x.not = !x.not })
}

func (c *Chars) Lazy() *Chars       { return withStrategy(c, Lazy) }
func (c *Chars) Greedy() *Chars     { return withStrategy(c, Greedy) }
func (c *Chars) Possessive() *Chars { return withStrategy(c, Possessive) }

func (c *Chars) WithStrategy(s Strategy) (*Chars, error) { return setStrategy(c, s) }

func (c *Chars) Least(n int) (*Chars, error)        { return setLeast(c, n) }
func (c *Chars) Most(n int) (*Chars, error)         { return setMost(c, n) }
func (c *Chars) Range(min, max int) (*Chars, error) { return setRange(c, min, max) }
func (c *Chars) Count(n int) (*Chars, error)        { return setRange(c, n, n) }

func (c *Chars) Optional() *Chars  { return setBounds(c, 0, c.q.Max) }
func (c *Chars) Many() *Chars      { return setBounds(c, c.q.Min, Unbounded) }
func (c *Chars) Arbitrary() *Chars { return setBounds(c, 0, Unbounded) }

func (c *Chars) SwitchOn(flags ...Flag) *Chars  { return switchOn(c, flags) }
func (c *Chars) SwitchOff(flags ...Flag) *Chars { return switchOff(c, flags) }
func (c *Chars) Restore(flags ...Flag) *Chars   { return restoreFlags(c, flags) }
func (c *Chars) RestoreAll() *Chars             { return restoreAllFlags(c) }

func (c *Chars) addRunes(s string) {
	for _, ch := range s {
		c.items = append(c.items, charItem{from: ch, to: ch})
	}
}

func (c *Chars) addRange(from, to rune) error {
	if from > to {
		return newError(KindInvalidArgument, "invalid range %q-%q", from, to)
	}
	if !utf8.ValidRune(from) || !utf8.ValidRune(to) {
		return newError(KindInvalidArgument, "invalid rune in range %U-%U", from, to)
	}
	c.items = append(c.items, charItem{from: from, to: to})
	return nil
}

// quoteSetRune writes ch for use inside [...].
// ASCII letters and digits are written as is, other ASCII
// characters are escaped with a backslash.
func quoteSetRune(sb *strings.Builder, ch rune) {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_':
		// An escaped word char is an error for .NET-style engines.
		sb.WriteRune(ch)
	case ch == '\n':
		sb.WriteString(`\n`)
	case ch == '\t':
		sb.WriteString(`\t`)
	case ch == '\r':
		sb.WriteString(`\r`)
	case ch < utf8.RuneSelf && ch > ' ' && ch != 0x7f:
		sb.WriteByte('\\')
		sb.WriteRune(ch)
	case ch < utf8.RuneSelf:
		fmt.Fprintf(sb, `\x%02X`, ch)
	default:
		sb.WriteRune(ch)
	}
}
