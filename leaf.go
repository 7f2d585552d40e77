package rxbuild

import (
	"strings"
)

// LeafKind tells how the leaf text is rendered.
type LeafKind uint8

const (
	// LeafRaw content is emitted verbatim.
	LeafRaw LeafKind = iota

	// LeafLiteral content is quoted, so it matches itself.
	LeafLiteral
)

// Leaf is a node without children: a quoted literal or a raw
// pattern fragment such as a predefined class or an anchor.
type Leaf struct {
	element

	kind LeafKind
	text string
}

// Literal returns a node that matches s literally.
// It renders as \Qs\E.
func Literal(s string) *Leaf {
	return &Leaf{element: newElement(), kind: LeafLiteral, text: s}
}

// Raw returns a node that renders s verbatim.
// The caller is responsible for s being a valid pattern fragment.
func Raw(s string) *Leaf {
	return &Leaf{element: newElement(), kind: LeafRaw, text: s}
}

func (k LeafKind) String() string {
	if k == LeafLiteral {
		return "Literal"
	}
	return "Raw"
}

func (l *Leaf) Kind() LeafKind { return l.kind }

// Text returns the unquoted leaf text.
func (l *Leaf) Text() string { return l.text }

func (l *Leaf) Render() (string, error) { return render(l) }

func (l *Leaf) String() string { return describe(l) }

func (l *Leaf) content() (string, error) {
	if l.kind == LeafLiteral {
		return quoteLiteral(l.text), nil
	}
	return l.text, nil
}

func (l *Leaf) clone() *Leaf {
	return &Leaf{element: l.cloneElement(), kind: l.kind, text: l.text}
}

func (l *Leaf) cloneNode() Node { return l.clone() }

// Clone returns a copy of l with copy-on-write enabled.
func (l *Leaf) Clone() *Leaf { return l.clone() }

func (l *Leaf) Lazy() *Leaf       { return withStrategy(l, Lazy) }
func (l *Leaf) Greedy() *Leaf     { return withStrategy(l, Greedy) }
func (l *Leaf) Possessive() *Leaf { return withStrategy(l, Possessive) }

func (l *Leaf) WithStrategy(s Strategy) (*Leaf, error) { return setStrategy(l, s) }

func (l *Leaf) Least(n int) (*Leaf, error)        { return setLeast(l, n) }
func (l *Leaf) Most(n int) (*Leaf, error)         { return setMost(l, n) }
func (l *Leaf) Range(min, max int) (*Leaf, error) { return setRange(l, min, max) }
func (l *Leaf) Count(n int) (*Leaf, error)        { return setRange(l, n, n) }

func (l *Leaf) Optional() *Leaf  { return setBounds(l, 0, l.q.Max) }
func (l *Leaf) Many() *Leaf      { return setBounds(l, l.q.Min, Unbounded) }
func (l *Leaf) Arbitrary() *Leaf { return setBounds(l, 0, Unbounded) }

func (l *Leaf) SwitchOn(flags ...Flag) *Leaf  { return switchOn(l, flags) }
func (l *Leaf) SwitchOff(flags ...Flag) *Leaf { return switchOff(l, flags) }
func (l *Leaf) Restore(flags ...Flag) *Leaf   { return restoreFlags(l, flags) }
func (l *Leaf) RestoreAll() *Leaf             { return restoreAllFlags(l) }

// quoteLiteral wraps s into a \Q...\E pair.
// An \E inside s would end the quoting early, so it is split out.
func quoteLiteral(s string) string {
	if !strings.Contains(s, `\E`) {
		return `\Q` + s + `\E`
	}
	var sb strings.Builder
	sb.WriteString(`\Q`)
	for {
		i := strings.Index(s, `\E`)
		if i == -1 {
			break
		}
		sb.WriteString(s[:i])
		sb.WriteString(`\E\\E\Q`)
		s = s[i+len(`\E`):]
	}
	sb.WriteString(s)
	sb.WriteString(`\E`)
	return sb.String()
}
