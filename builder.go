package rxbuild

import (
	"fmt"
	"regexp"
	"strings"
)

// Builder is the top-level pattern document: a sequence of nodes
// plus the flags that apply to the whole pattern.
//
// Builder is not safe for concurrent use.
type Builder struct {
	root  *Group
	flags []Flag
}

// New returns an empty builder with the given document flags enabled.
func New(flags ...Flag) *Builder {
	root := &Group{element: newElement(), kind: groupRoot}
	root.Unlock()
	b := &Builder{root: root}
	for _, f := range flags {
		b.addFlag(f)
	}
	return b
}

func (b *Builder) addFlag(f Flag) {
	for _, x := range b.flags {
		if x == f {
			return
		}
	}
	b.flags = append(b.flags, f)
}

// Add appends nodes to the document.
// Groups are numbered immediately; see Group.Add for the checks.
func (b *Builder) Add(nodes ...Node) error {
	_, err := b.root.Add(nodes...)
	return err
}

// AddStrings appends an alternation of literals.
func (b *Builder) AddStrings(ss ...string) error {
	return b.Add(Strings(ss...))
}

// Nodes returns the top-level nodes in document order.
func (b *Builder) Nodes() []Node { return b.root.Children() }

// Flags returns the document flags in the order they were given.
func (b *Builder) Flags() []Flag {
	out := make([]Flag, len(b.flags))
	copy(out, b.flags)
	return out
}

// FlagMask returns the OR of the document flag ids.
func (b *Builder) FlagMask() int { return FlagMask(b.flags...) }

// Render returns the pattern text. Document flags are not part
// of the text; they are passed to the engine separately.
func (b *Builder) Render() (string, error) {
	return b.root.content()
}

// Reindex renumbers all capturing groups of the document.
// Compile calls it automatically.
func (b *Builder) Reindex() { b.root.Reindex() }

// Compile renders the document and compiles it with the Go regexp engine.
func (b *Builder) Compile() (*regexp.Regexp, error) {
	return CompileWith[*regexp.Regexp](b, StdEngine{})
}

// CompileWith re-indexes the document, renders it and hands the result
// to e. Engine errors are returned as *Error of KindCompileFailure
// with the rendered pattern attached.
func CompileWith[T any](b *Builder, e Engine[T]) (T, error) {
	var zero T
	if err := checkFlags(b.flags); err != nil {
		return zero, err
	}
	b.Reindex()
	pattern, err := b.Render()
	if err != nil {
		return zero, err
	}
	if c, ok := e.(nodeFlagChecker); ok {
		if err := b.checkNodeFlags(c.unsupportedNodeFlags()); err != nil {
			return zero, b.compileFailure(pattern, err)
		}
	}
	prog, err := e.Compile(pattern, b.FlagMask())
	if err != nil {
		return zero, b.compileFailure(pattern, err)
	}
	return prog, nil
}

func (b *Builder) compileFailure(pattern string, err error) *Error {
	return &Error{
		Kind:    KindCompileFailure,
		Msg:     fmt.Sprintf("flags=%v", b.flags),
		Pattern: pattern,
		Err:     err,
	}
}

// checkNodeFlags reports the first node that overrides one of the flags.
func (b *Builder) checkNodeFlags(flags []Flag) error {
	var err error
	for _, n := range b.Nodes() {
		Walk(n, func(n Node) bool {
			if err != nil {
				return false
			}
			fo := n.Flags()
			for _, f := range flags {
				if _, ok := fo.State(f); ok {
					err = fmt.Errorf("node %s: flag %v can't be overridden", describe(n), f)
					return false
				}
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "enabledFlags=%v\n", b.flags)
	for _, n := range b.root.children {
		sb.WriteString("  ")
		sb.WriteString(describe(n))
		sb.WriteByte('\n')
	}
	return sb.String()
}
