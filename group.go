package rxbuild

import (
	"strconv"
	"strings"
)

// GroupKind selects the wrapper syntax of a group.
type GroupKind uint8

const (
	GroupCapture GroupKind = iota
	GroupNonCapture
	GroupAtomic
	GroupAlternation
	GroupLookahead
	GroupNegLookahead
	GroupLookbehind
	GroupNegLookbehind

	// groupRoot is the builder top-level sequence: no wrapper,
	// its children are numbered from 1.
	groupRoot
)

type groupTokens struct {
	begin  string
	prefix string
	op     string
	end    string
}

var groupTokenTable = [...]groupTokens{
	GroupCapture:       {begin: "(", end: ")"},
	GroupNonCapture:    {begin: "(", prefix: "?:", end: ")"},
	GroupAtomic:        {begin: "(", prefix: "?>", end: ")"},
	GroupAlternation:   {begin: "(", op: "|", end: ")"},
	GroupLookahead:     {begin: "(", prefix: "?=", end: ")"},
	GroupNegLookahead:  {begin: "(", prefix: "?!", end: ")"},
	GroupLookbehind:    {begin: "(", prefix: "?<=", end: ")"},
	GroupNegLookbehind: {begin: "(", prefix: "?<!", end: ")"},
	groupRoot:          {},
}

var groupKindNames = [...]string{
	GroupCapture:       "Capture",
	GroupNonCapture:    "NonCapture",
	GroupAtomic:        "Atomic",
	GroupAlternation:   "Alternation",
	GroupLookahead:     "Lookahead",
	GroupNegLookahead:  "NegLookahead",
	GroupLookbehind:    "Lookbehind",
	GroupNegLookbehind: "NegLookbehind",
	groupRoot:          "Root",
}

func (k GroupKind) String() string {
	if int(k) < len(groupKindNames) {
		return groupKindNames[k]
	}
	return "GroupKind(" + strconv.Itoa(int(k)) + ")"
}

func (k GroupKind) valid() bool { return k < groupRoot }

// Capturing reports whether groups of this kind get a capture index.
func (k GroupKind) Capturing() bool {
	return k == GroupCapture || k == GroupAlternation
}

// Group is a node that holds an ordered list of children
// and renders them inside a kind-specific wrapper.
//
// Children are shared, not owned: the same node may be attached to
// several groups, and cloning a group copies only the child list.
type Group struct {
	element

	kind     GroupKind
	children []Node

	// index is the capture number; only meaningful for capturing kinds.
	index int

	// lastAssigned is the last capture number given to a descendant
	// while this group acted as an indexing root.
	lastAssigned int
}

// NewGroup creates a group of the given kind.
// The children are indexed and checked the same way Add does it.
func NewGroup(kind GroupKind, children ...Node) (*Group, error) {
	if !kind.valid() {
		return nil, newError(KindInvalidArgument, "unknown group kind %v", kind)
	}
	return newGroup(kind, children)
}

func newGroup(kind GroupKind, children []Node) (*Group, error) {
	g := &Group{element: newElement(), kind: kind}
	if err := g.checkChildren(children); err != nil {
		return nil, err
	}
	g.attach(children)
	return g, nil
}

func mustGroup(kind GroupKind, children []Node) *Group {
	g, err := newGroup(kind, children)
	if err != nil {
		panic(err)
	}
	return g
}

// The constructors below panic on nil children;
// use NewGroup to get an error instead.

// Capture returns a capturing group: (...)
func Capture(children ...Node) *Group { return mustGroup(GroupCapture, children) }

// NonCapture returns a non-capturing group: (?:...)
func NonCapture(children ...Node) *Group { return mustGroup(GroupNonCapture, children) }

// Atomic returns an independent non-capturing group: (?>...)
func Atomic(children ...Node) *Group { return mustGroup(GroupAtomic, children) }

// Alternation returns a capturing group of alternatives: (a|b|c)
func Alternation(children ...Node) *Group { return mustGroup(GroupAlternation, children) }

func Lookahead(children ...Node) *Group     { return mustGroup(GroupLookahead, children) }
func NegLookahead(children ...Node) *Group  { return mustGroup(GroupNegLookahead, children) }
func Lookbehind(children ...Node) *Group    { return mustGroup(GroupLookbehind, children) }
func NegLookbehind(children ...Node) *Group { return mustGroup(GroupNegLookbehind, children) }

func (g *Group) Kind() GroupKind { return g.kind }

// Index returns the capture number of g.
// ok is false for non-capturing kinds.
func (g *Group) Index() (index int, ok bool) {
	if !g.kind.Capturing() {
		return 0, false
	}
	return g.index, true
}

// Children returns a copy of the child list.
func (g *Group) Children() []Node {
	out := make([]Node, len(g.children))
	copy(out, g.children)
	return out
}

func (g *Group) Len() int { return len(g.children) }

func (g *Group) Render() (string, error) { return render(g) }

func (g *Group) String() string { return describe(g) }

func (g *Group) content() (string, error) {
	tok := groupTokenTable[g.kind]
	var sb strings.Builder
	sb.WriteString(tok.begin)
	sb.WriteString(tok.prefix)
	for i, c := range g.children {
		if i != 0 {
			sb.WriteString(tok.op)
		}
		s, err := c.Render()
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	sb.WriteString(tok.end)
	return sb.String(), nil
}

func (g *Group) clone() *Group {
	children := make([]Node, len(g.children))
	copy(children, g.children)
	return &Group{
		element:      g.cloneElement(),
		kind:         g.kind,
		children:     children,
		index:        g.index,
		lastAssigned: g.lastAssigned,
	}
}

func (g *Group) cloneNode() Node { return g.clone() }

// Clone returns a copy of g with copy-on-write enabled.
// The clone shares the children with g.
func (g *Group) Clone() *Group { return g.clone() }

// Add appends children to the group.
//
// Group children get their capture numbers relative to the group
// right away. If any child is nil or would make the group contain
// itself, nothing is added and an error is returned.
func (g *Group) Add(children ...Node) (*Group, error) {
	if err := g.checkChildren(children); err != nil {
		return g, err
	}
	x := target(g)
	x.attach(children)
	return x, nil
}

// Independent turns a non-capturing group into an atomic one: (?>...).
// Other kinds are returned unchanged (modulo copy-on-write).
func (g *Group) Independent() *Group {
	return mutate(g, func(x *Group) {
		if x.kind == GroupNonCapture {
			x.kind = GroupAtomic
		}
	})
}

// Not flips the polarity of a lookaround group.
// Other kinds are returned unchanged (modulo copy-on-write).
func (g *Group) Not() *Group {
	return mutate(g, func(x *Group) {
		switch x.kind {
		case GroupLookahead:
			x.kind = GroupNegLookahead
		case GroupNegLookahead:
			x.kind = GroupLookahead
		case GroupLookbehind:
			x.kind = GroupNegLookbehind
		case GroupNegLookbehind:
			x.kind = GroupLookbehind
		}
	})
}

func (g *Group) Lazy() *Group       { return withStrategy(g, Lazy) }
func (g *Group) Greedy() *Group     { return withStrategy(g, Greedy) }
func (g *Group) Possessive() *Group { return withStrategy(g, Possessive) }

func (g *Group) WithStrategy(s Strategy) (*Group, error) { return setStrategy(g, s) }

func (g *Group) Least(n int) (*Group, error)        { return setLeast(g, n) }
func (g *Group) Most(n int) (*Group, error)         { return setMost(g, n) }
func (g *Group) Range(min, max int) (*Group, error) { return setRange(g, min, max) }
func (g *Group) Count(n int) (*Group, error)        { return setRange(g, n, n) }

func (g *Group) Optional() *Group  { return setBounds(g, 0, g.q.Max) }
func (g *Group) Many() *Group      { return setBounds(g, g.q.Min, Unbounded) }
func (g *Group) Arbitrary() *Group { return setBounds(g, 0, Unbounded) }

func (g *Group) SwitchOn(flags ...Flag) *Group  { return switchOn(g, flags) }
func (g *Group) SwitchOff(flags ...Flag) *Group { return switchOff(g, flags) }
func (g *Group) Restore(flags ...Flag) *Group   { return restoreFlags(g, flags) }
func (g *Group) RestoreAll() *Group             { return restoreAllFlags(g) }

// Reindex renumbers all capturing descendants of g from scratch,
// in pre-order, the way a regex engine numbers them.
//
// A group instance attached at several positions gets the number
// of its last position.
func (g *Group) Reindex() {
	g.lastAssigned = 0
	for _, c := range g.children {
		if sub, ok := c.(*Group); ok {
			g.assign(sub)
		}
	}
}

// checkChildren validates children before any of them is attached.
func (g *Group) checkChildren(children []Node) error {
	for i, c := range children {
		if isNilNode(c) {
			return newError(KindInvalidArgument, "child #%d is nil", i)
		}
		sub, ok := c.(*Group)
		if !ok {
			continue
		}
		if sub == g || reaches(sub, g, make(map[*Group]struct{})) {
			return newError(KindCycleDetected, "can't add %v to a group it contains", sub.kind)
		}
	}
	return nil
}

// reaches reports whether search is a descendant of from.
func reaches(from, search *Group, visited map[*Group]struct{}) bool {
	if _, ok := visited[from]; ok {
		return false
	}
	visited[from] = struct{}{}
	for _, c := range from.children {
		sub, ok := c.(*Group)
		if !ok {
			continue
		}
		if sub == search || reaches(sub, search, visited) {
			return true
		}
	}
	return false
}

func (g *Group) attach(children []Node) {
	for _, c := range children {
		if sub, ok := c.(*Group); ok {
			g.assign(sub)
		}
		g.children = append(g.children, c)
	}
}

// assign numbers sub and its descendants with g as the indexing root.
func (g *Group) assign(sub *Group) {
	if sub.kind.Capturing() {
		rootIndex := 0
		if g.kind.Capturing() {
			rootIndex = g.index
		}
		sub.index = g.lastAssigned + rootIndex + 1
		g.lastAssigned = sub.index
	}
	for _, c := range sub.children {
		if cg, ok := c.(*Group); ok {
			g.assign(cg)
		}
	}
}
