package rxbuild

import (
	"fmt"
	"strings"
)

// Node is a renderable element of a pattern tree.
//
// The set of node types is closed: *Leaf, *Chars and *Group.
// Other catalogs build on top of them (see Raw for arbitrary content).
//
// Every mutating method follows the copy-on-write protocol:
// by default it returns a modified clone and leaves the receiver untouched;
// after Unlock() it modifies and returns the receiver itself.
type Node interface {
	// Render returns the pattern text of the node, including its
	// inline flag group and quantifier suffix.
	Render() (string, error)

	Quantifier() Quantifier
	Flags() FlagOverrides

	// CopyOnWrite reports whether mutators return clones (the default).
	CopyOnWrite() bool

	// Unlock makes mutators modify the node in place.
	// Unlocked nodes are not safe for concurrent use;
	// prefer Change that relocks automatically.
	Unlock()

	// Lock restores the default copy-on-write mode.
	Lock()

	elem() *element
	content() (string, error)
	cloneNode() Node
}

// element is the state shared by all node types.
type element struct {
	q     Quantifier
	flags FlagOverrides

	// inPlace disables copy-on-write; zero value means copy-on-write.
	inPlace bool
}

func newElement() element {
	return element{q: One()}
}

func (e *element) elem() *element { return e }

func (e *element) Quantifier() Quantifier { return e.q }

func (e *element) Flags() FlagOverrides { return e.flags.clone() }

func (e *element) CopyOnWrite() bool { return !e.inPlace }

func (e *element) Unlock() { e.inPlace = true }

func (e *element) Lock() { e.inPlace = false }

// cloneElement returns a value copy with copy-on-write re-enabled.
func (e *element) cloneElement() element {
	return element{
		q:     e.q,
		flags: e.flags.clone(),
	}
}

// render wraps the node content into the inline flag group (if any)
// and appends the quantifier suffix.
func render(n Node) (string, error) {
	body, err := n.content()
	if err != nil {
		return "", err
	}
	e := n.elem()
	if err := e.flags.validate(); err != nil {
		return "", err
	}
	suffix, err := e.q.Render()
	if err != nil {
		return "", err
	}
	if e.flags.IsEmpty() {
		return body + suffix, nil
	}
	var sb strings.Builder
	sb.Grow(len(body) + len(suffix) + 8)
	sb.WriteString("(?")
	sb.WriteString(e.flags.Render())
	sb.WriteByte(':')
	sb.WriteString(body)
	sb.WriteByte(')')
	sb.WriteString(suffix)
	return sb.String(), nil
}

// mutable is implemented by the concrete node types.
type mutable[T any] interface {
	Node
	clone() T
}

// target selects the instance a mutation applies to.
func target[T mutable[T]](n T) T {
	if n.elem().inPlace {
		return n
	}
	return n.clone()
}

// mutate applies infallible edits following the copy-on-write protocol.
func mutate[T mutable[T]](n T, edit func(x T)) T {
	x := target(n)
	edit(x)
	return x
}

// tryMutate applies an edit that may fail.
// Edits must validate their input before touching x,
// so a failed in-place edit leaves the receiver unchanged.
func tryMutate[T mutable[T]](n T, edit func(x T) error) (T, error) {
	x := target(n)
	if err := edit(x); err != nil {
		return n, err
	}
	return x, nil
}

// The quantifier and flag editors are shared by all node types.

func setStrategy[T mutable[T]](n T, s Strategy) (T, error) {
	return tryMutate(n, func(x T) error { return x.elem().q.SetStrategy(s) })
}

func withStrategy[T mutable[T]](n T, s Strategy) T {
	return mutate(n, func(x T) { x.elem().q.Strategy = s })
}

func setLeast[T mutable[T]](n T, least int) (T, error) {
	return tryMutate(n, func(x T) error { return x.elem().q.SetLeast(least) })
}

func setMost[T mutable[T]](n T, most int) (T, error) {
	return tryMutate(n, func(x T) error { return x.elem().q.SetMost(most) })
}

func setRange[T mutable[T]](n T, min, max int) (T, error) {
	return tryMutate(n, func(x T) error { return x.elem().q.setRange(min, max) })
}

func setBounds[T mutable[T]](n T, min, max int) T {
	return mutate(n, func(x T) {
		x.elem().q.Min = min
		x.elem().q.Max = max
	})
}

// Unknown flag values are kept and reported by Render.

func switchOn[T mutable[T]](n T, flags []Flag) T {
	return mutate(n, func(x T) { x.elem().flags.put(true, flags) })
}

func switchOff[T mutable[T]](n T, flags []Flag) T {
	return mutate(n, func(x T) { x.elem().flags.put(false, flags) })
}

func restoreFlags[T mutable[T]](n T, flags []Flag) T {
	return mutate(n, func(x T) {
		for _, f := range flags {
			delete(x.elem().flags.m, f)
		}
	})
}

func restoreAllFlags[T mutable[T]](n T) T {
	return mutate(n, func(x T) { x.elem().flags.RestoreAll() })
}

// Change unlocks n, calls fn with it and locks n again,
// even if fn fails or panics. Inside fn, mutators modify n in place.
//
//	root, err := rxbuild.Change(g, func(g *rxbuild.Group) error {
//		_, err := g.Add(child)
//		return err
//	})
func Change[T Node](n T, fn func(x T) error) (T, error) {
	if isNilNode(n) {
		return n, newError(KindInvalidArgument, "change: nil node")
	}
	n.Unlock()
	defer n.Lock()
	return n, fn(n)
}

// Clone returns a copy of n with copy-on-write enabled.
// Group clones share the children with the original.
func Clone(n Node) (Node, error) {
	if isNilNode(n) {
		return nil, newError(KindCloneFailure, "can't clone a nil %T", n)
	}
	return n.cloneNode(), nil
}

// Walk visits n and its descendants in pre-order, the order in which
// they are rendered. If fn returns false, the children of the
// current node are skipped.
func Walk(n Node, fn func(n Node) bool) {
	if isNilNode(n) || !fn(n) {
		return
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			Walk(c, fn)
		}
	}
}

func isNilNode(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Leaf:
		return n == nil
	case *Chars:
		return n == nil
	case *Group:
		return n == nil
	default:
		return false
	}
}

// describe is a one-line debug form of a node: its type, quantifier,
// flags and rendered text.
func describe(n Node) string {
	s, err := n.Render()
	if err != nil {
		s = "<" + err.Error() + ">"
	}
	e := n.elem()
	name := "Leaf"
	switch n := n.(type) {
	case *Chars:
		name = "Chars"
	case *Group:
		name = n.kind.String()
		if i, ok := n.Index(); ok {
			return fmt.Sprintf("%s [index=%d, q=%v, flags=%v] = %s", name, i, e.q, e.flags, s)
		}
	}
	return fmt.Sprintf("%s [q=%v, flags=%v] = %s", name, e.q, e.flags, s)
}
