package dsl

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/quasilyte/rxbuild"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		pattern string
		groups  string
	}{
		{
			input:   ``,
			pattern: ``,
		},
		{
			input:   `lit("a.b")`,
			pattern: `\Qa.b\E`,
		},
		{
			input:   `"a.b"`,
			pattern: `\Qa.b\E`,
		},
		{
			input:   `raw("a.b").many().lazy()`,
			pattern: `a.b+?`,
		},
		{
			input:   `start; digit.count(3); end`,
			pattern: `^\d{3}$`,
		},
		{
			input:   `digit().range(2, 4).possessive()`,
			pattern: `\d{2,4}+`,
		},
		{
			input:   `wordchar.least(2); space.most(3).greedy(); anychar.optional(); any`,
			pattern: `\w{2,}\s{0,3}.?.*`,
		},
		{
			input:   `chars("abc").not()`,
			pattern: `[^abc]`,
		},
		{
			input:   `crange('a', 'f').addrange("0", '9').add("_").addclass("space")`,
			pattern: `[a-f0-9_\s]`,
		},
		{
			input:   `chars("a").union(chars("b").not())`,
			pattern: `[ab]`,
		},
		{
			input:   `class("alpha").arbitrary(); class("digit")`,
			pattern: `[[:alpha:]]*\d`,
		},
		{
			input:   `chars("asdfX").on(CaseInsensitive)`,
			pattern: `(?i:[asdfX])`,
		},
		{
			input:   `lit("a").on("i,x").off(m).many()`,
			pattern: `(?ix-m:\Qa\E)+`,
		},
		{
			input:   `lit("a").on("im").restore(i)`,
			pattern: `(?m:\Qa\E)`,
		},
		{
			input:   `lit("a").on(i).off(s).restoreall()`,
			pattern: `\Qa\E`,
		},
		{
			input:   `strs("test").many().lazy()`,
			pattern: `(\Qtest\E)+?`,
		},
		{
			input:   `notbehind(wordchar, digit, alt(wordchar, digit))`,
			pattern: `(?<!\w\d(\w|\d))`,
		},
		{
			input:   `nc(lit("a")).independent(); ahead(raw("x")).not(); behind(raw("y"))`,
			pattern: `(?>\Qa\E)(?!x)(?<=y)`,
		},
		{
			input:   `atomic(raw("a")); notahead(raw("b")).not()`,
			pattern: `(?>a)(?=b)`,
		},
		{
			input:   `words("cat", "dog")`,
			pattern: `(\b(\Qcat\E|\Qdog\E)\b)`,
		},
		{
			input:   `word(raw("x")); notword(raw("y"))`,
			pattern: `(\bx\b)(\By\B)`,
		},
		{
			input:   `startswith(raw("a")); notstartswith(raw("b"))`,
			pattern: `(^(a).*$)(^(?!b).*$)`,
		},
		{
			input:   `endswith(raw("a")); notendswith(raw("b"))`,
			pattern: `(^.*(a)$)(^.*(?<!b)$)`,
		},
		{
			input:   `contains(raw("a")); notcontains(raw("b"))`,
			pattern: `(^.*(a).*$)(^((?!b).)*$)`,
		},
		{
			input:   `bos; wordb; nonwordb; eos`,
			pattern: `\A\b\B\z`,
		},
		{
			input:   `g := group(raw("a")); g.add(raw("b")); g`,
			pattern: `(ab)(a)`,
			groups:  `g=2`,
		},

		{
			input: `
				proto := group(lit("http"), chars("s").optional())
				host := group(chars(".").addclass("word").many())
				path := group(lit("/"), any).optional()
				start
				proto
				lit("://")
				host
				path
				end
			`,
			pattern: `^(\Qhttp\E[s]?)\Q://\E([\.\w]+)(\Q/\E.*)?$`,
			groups:  `host=2 path=3 proto=1`,
		},
		{
			input: `
				inner := alt(raw("b"), raw("c"))
				outer := group(raw("a"), nc(inner))
				unused := group(raw("z"))
				outer
				group(raw("d"))
			`,
			pattern: `(a(?:(b|c)))(d)`,
			groups:  `inner=2 outer=1`,
		},
		{
			input: `
				s := group(raw("s"))
				s
				group(raw("t"))
				s
			`,
			pattern: `(s)(t)(s)`,
			groups:  `s=3`,
		},
	}

	for i := range tests {
		test := tests[i]
		t.Run(fmt.Sprintf("test%d", i), func(t *testing.T) {
			result, err := Parse(test.input)
			if err != nil {
				t.Fatalf("parse %q: %v", test.input, err)
			}
			have, err := result.Builder.Render()
			if err != nil {
				t.Fatalf("render %q: %v", test.input, err)
			}
			if have != test.pattern {
				t.Fatalf("pattern mismatch for %q:\nhave: %s\nwant: %s", test.input, have, test.pattern)
			}
			if groups := formatGroups(result.Groups()); groups != test.groups {
				t.Fatalf("groups mismatch for %q:\nhave: %s\nwant: %s", test.input, groups, test.groups)
			}
		})
	}
}

func formatGroups(groups []GroupIndex) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s=%d", g.Name, g.Index)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func TestParseMatchesBuilder(t *testing.T) {
	result, err := Parse(`
		proto := group(lit("http"), chars("s").optional())
		start; proto; lit("://"); group(chars(".").addclass("word").many()); end
	`)
	if err != nil {
		t.Fatal(err)
	}

	proto := rxbuild.Capture(rxbuild.Literal("http"), rxbuild.NewChars("s").Optional())
	host := rxbuild.Capture(rxbuild.NewChars(".").AddClass(rxbuild.ClassWord).Many())
	b := rxbuild.New()
	if err := b.Add(rxbuild.LineStart(), proto, rxbuild.Literal("://"), host, rxbuild.LineEnd()); err != nil {
		t.Fatal(err)
	}

	want, err := b.Render()
	if err != nil {
		t.Fatal(err)
	}
	have, err := result.Builder.Render()
	if err != nil {
		t.Fatal(err)
	}
	if have != want {
		t.Errorf("have %s\nwant %s", have, want)
	}

	re, err := result.Builder.Compile()
	if err != nil {
		t.Fatal(err)
	}
	n, ok := result.Lookup("proto")
	if !ok {
		t.Fatal("proto is not bound")
	}
	index, _ := n.(*rxbuild.Group).Index()
	if m := re.FindStringSubmatch("https://go.dev"); m == nil || m[index] != "https" {
		t.Errorf("submatches: %q", m)
	}
}

func TestParseFlags(t *testing.T) {
	result, err := Parse(`lit("abc")`, rxbuild.CaseInsensitive)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(result.Builder.Flags(), []rxbuild.Flag{rxbuild.CaseInsensitive}); diff != "" {
		t.Errorf("flags (+want -have):\n%s", diff)
	}
	re, err := result.Builder.Compile()
	if err != nil {
		t.Fatal(err)
	}
	if !re.MatchString("ABC") {
		t.Errorf("%s: document flags are not applied", re)
	}
}

func TestParseDuplicates(t *testing.T) {
	result, err := Parse(`
		a := group(raw("x")).many()
		b := group(raw("y"))
		c := group(raw("x")).many()
		d := group( raw("y") )
		a; b; c; d
	`)
	if err != nil {
		t.Fatal(err)
	}
	want := []Duplicate{
		{Name: "c", Of: "a", Line: 3},
		{Name: "d", Of: "b", Line: 4},
	}
	if diff := cmp.Diff(result.Duplicates, want); diff != "" {
		t.Errorf("duplicates (+want -have):\n%s", diff)
	}

	// Duplicates are different instances.
	a, _ := result.Lookup("a")
	c, _ := result.Lookup("c")
	if a == c {
		t.Errorf("duplicate bindings share an instance")
	}
	if have := formatGroups(result.Groups()); have != "a=1 b=2 c=3 d=4" {
		t.Errorf("groups: %s", have)
	}
}

func TestParseBindingsString(t *testing.T) {
	result, err := Parse(`x := raw("a").many(); y := chars("b")`)
	if err != nil {
		t.Fatal(err)
	}
	if have := result.String(); have != `x=a+ y=[b]` {
		t.Errorf("have %s", have)
	}
	if len(result.Builder.Nodes()) != 0 {
		t.Errorf("bindings should not be added to the document")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{`x = lit("a")`, `1:1: convert assign: only := is supported, found =`},
		{`a, b := lit("a"), lit("b")`, `1:1: convert assign: expected one name and one value`},
		{`_ := lit("a")`, `1:1: convert assign: blank name`},
		{`lit := raw("a")`, `1:1: convert assign: lit is a reserved name`},
		{"x := raw(\"a\")\nx := raw(\"b\")", `2:1: convert assign: x redeclared`},
		{`y`, `1:1: undefined: y`},
		{`foo()`, `1:1: convert call expr: unsupported foo function`},
		{`lit(1)`, `1:5: expected a string literal`},
		{`lit("a", "b")`, `1:1: expected 1 arguments, found 2`},
		{`digit(1)`, `1:1: expected 0 arguments, found 1`},
		{`strs()`, `1:1: strs: expected at least one string`},
		{`class("nope")`, `1:7: unknown character class "nope"`},
		{`crange('b', "ab")`, `1:13: expected exactly one rune, found "ab"`},
		{`raw("a").frob()`, `1:1: convert method call: unsupported frob method for *rxbuild.Leaf`},
		{`raw("a").count("x")`, `1:16: expected an int literal`},
		{`raw("a").on(1)`, `1:13: expected a flag, found INT literal`},
		{`if true {}`, `1:1: convert stmt: unsupported *ast.IfStmt`},
		{`1`, `1:1: convert expr: unexpected INT literal`},
		{`[]int{}`, `1:1: convert expr: unsupported *ast.CompositeLit`},
		{`x := raw("a")}; func f() {`, `unexpected declarations after the expression list`},
	}

	for _, test := range tests {
		_, err := Parse(test.input)
		if err == nil {
			t.Errorf("parse %q: expected an error", test.input)
			continue
		}
		if err.Error() != test.err {
			t.Errorf("parse %q:\nhave: %s\nwant: %s", test.input, err, test.err)
		}
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, input := range []string{`lit(`, `lit("a"`, `x :=`, `"abc`} {
		if _, err := Parse(input); err == nil {
			t.Errorf("parse %q: expected an error", input)
		}
	}
}

func TestParseWrappedErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{`raw("a").range(3, 1)`, rxbuild.ErrInvalidBound},
		{`raw("a").least(-1)`, rxbuild.ErrInvalidBound},
		{`crange('z', 'a')`, rxbuild.ErrInvalidArgument},
		{`raw("a").on(q)`, rxbuild.ErrInvalidArgument},
		{`raw("a").on("iq")`, rxbuild.ErrInvalidArgument},
		{`g := group(); g.add(g)`, rxbuild.ErrCycleDetected},
		{`g := group(); h := group(g); g.add(h)`, rxbuild.ErrCycleDetected},
	}

	for _, test := range tests {
		_, err := Parse(test.input)
		if !errors.Is(err, test.err) {
			t.Errorf("parse %q: expected %v, got %v", test.input, test.err, err)
		}
	}
}
