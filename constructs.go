package rxbuild

// Templates built from the basic nodes. Every template is a plain
// capturing group whose inner groups are indexed like any other.
// Like Capture, they panic on nil children.

// Strings returns an alternation of literals: (\Qa\E|\Qb\E).
func Strings(ss ...string) *Group {
	children := make([]Node, len(ss))
	for i, s := range ss {
		children[i] = Literal(s)
	}
	return Alternation(children...)
}

// Word matches children as a whole word: (\b...\b).
func Word(children ...Node) *Group {
	return wordOf(WordBoundary, children)
}

// NotWord matches children inside a word: (\B...\B).
func NotWord(children ...Node) *Group {
	return wordOf(NonWordBoundary, children)
}

// Words matches any of ss as a whole word: (\b(\Qa\E|\Qb\E)\b).
func Words(ss ...string) *Group {
	return Word(Strings(ss...))
}

func wordOf(boundary func() *Leaf, children []Node) *Group {
	list := make([]Node, 0, len(children)+2)
	list = append(list, boundary())
	list = append(list, children...)
	list = append(list, boundary())
	return Capture(list...)
}

// LineStartsWith matches a line that starts with children: (^(...).*$).
func LineStartsWith(children ...Node) *Group {
	return Capture(LineStart(), Capture(children...), Any(), LineEnd())
}

// LineNotStartsWith matches a line that doesn't start with children: (^(?!...).*$).
func LineNotStartsWith(children ...Node) *Group {
	return Capture(LineStart(), NegLookahead(children...), Any(), LineEnd())
}

// LineEndsWith matches a line that ends with children: (^.*(...)$).
func LineEndsWith(children ...Node) *Group {
	return Capture(LineStart(), Any(), Capture(children...), LineEnd())
}

// LineNotEndsWith matches a line that doesn't end with children: (^.*(?<!...)$).
func LineNotEndsWith(children ...Node) *Group {
	return Capture(LineStart(), Any(), NegLookbehind(children...), LineEnd())
}

// LineContains matches a line that contains children: (^.*(...).*$).
func LineContains(children ...Node) *Group {
	return Capture(LineStart(), Any(), Capture(children...), Any(), LineEnd())
}

// LineNotContains matches a line that doesn't contain children: (^((?!...).)*$).
func LineNotContains(children ...Node) *Group {
	step := Capture(NegLookahead(children...), AnyChar()).Arbitrary()
	return Capture(LineStart(), step, LineEnd())
}
