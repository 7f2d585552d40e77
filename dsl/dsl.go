// Package dsl implements a small builder-expression language.
//
// The language is a subset of Go syntax: a list of statements, each of
// them either a binding or a node expression that is appended to the
// document.
//
//	proto := group(lit("http"), chars("s").optional())
//	start
//	proto
//	lit("://")
//	group(chars(".").addclass("word").many())
//
// Reusing a bound name reuses the same node instance, so the capture
// index of a named group can be queried after the parsing (see Result.Groups).
package dsl

import (
	"strings"

	"github.com/quasilyte/rxbuild"
)

// Result is a parsed document.
type Result struct {
	Builder *rxbuild.Builder

	// Bindings lists the named nodes in declaration order.
	Bindings []Binding

	// Duplicates lists bindings whose expressions are identical
	// to an earlier binding. They are legal, but usually a mistake:
	// the two names refer to different instances.
	Duplicates []Duplicate
}

type Binding struct {
	Name string
	Node rxbuild.Node
}

type Duplicate struct {
	Name string
	Of   string
	Line int
}

// GroupIndex is the capture index of a named group.
type GroupIndex struct {
	Name  string
	Index int
}

// Lookup returns the node bound to name.
func (r *Result) Lookup(name string) (rxbuild.Node, bool) {
	for _, b := range r.Bindings {
		if b.Name == name {
			return b.Node, true
		}
	}
	return nil, false
}

// Groups re-indexes the document and returns the capture index
// of every capturing group binding.
//
// Bindings that are never attached to the document are skipped.
func (r *Result) Groups() []GroupIndex {
	r.Builder.Reindex()
	attached := make(map[*rxbuild.Group]struct{})
	for _, n := range r.Builder.Nodes() {
		rxbuild.Walk(n, func(n rxbuild.Node) bool {
			if g, ok := n.(*rxbuild.Group); ok {
				attached[g] = struct{}{}
			}
			return true
		})
	}

	var groups []GroupIndex
	for _, b := range r.Bindings {
		g, ok := b.Node.(*rxbuild.Group)
		if !ok {
			continue
		}
		if _, ok := attached[g]; !ok {
			continue
		}
		if index, ok := g.Index(); ok {
			groups = append(groups, GroupIndex{Name: b.Name, Index: index})
		}
	}
	return groups
}

func (r *Result) String() string {
	parts := make([]string, 0, len(r.Bindings))
	for _, b := range r.Bindings {
		s, err := b.Node.Render()
		if err != nil {
			s = "<" + err.Error() + ">"
		}
		parts = append(parts, b.Name+"="+s)
	}
	return strings.Join(parts, " ")
}
