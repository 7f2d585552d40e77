package dsl

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-toolsmith/astequal"
	"github.com/quasilyte/rxbuild"
)

// The source is parsed as a function body; the header takes one line.
const srcHeader = "package dsl; func _() {\n"

// Parse parses src and appends every top-level expression to a new
// builder with the given document flags.
func Parse(src string, flags ...rxbuild.Flag) (*Result, error) {
	p := exprParser{
		result: &Result{Builder: rxbuild.New(flags...)},
	}
	return p.Parse(src)
}

type exprParser struct {
	fset   *token.FileSet
	result *Result

	bindings map[string]rxbuild.Node
	exprs    []boundExpr
}

type boundExpr struct {
	name string
	expr ast.Expr
}

func (p *exprParser) Parse(src string) (*Result, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return p.result, nil
	}

	p.fset = token.NewFileSet()
	f, err := parser.ParseFile(p.fset, "", srcHeader+src+"\n}", parser.SkipObjectResolution)
	if err != nil {
		return nil, p.fixErrorPos(err)
	}
	if len(f.Decls) != 1 {
		return nil, errors.New("unexpected declarations after the expression list")
	}
	fn, ok := f.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return nil, errors.New("unexpected declaration")
	}

	p.bindings = make(map[string]rxbuild.Node)
	for _, stmt := range fn.Body.List {
		if err := p.convertStmt(stmt); err != nil {
			return nil, err
		}
	}
	return p.result, nil
}

// fixErrorPos makes parser error lines relative to src.
func (p *exprParser) fixErrorPos(err error) error {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return err
	}
	e := list[0]
	return fmt.Errorf("%d:%d: %s", e.Pos.Line-1, e.Pos.Column, e.Msg)
}

func (p *exprParser) errorf(n ast.Node, format string, args ...interface{}) error {
	pos := p.fset.Position(n.Pos())
	prefix := fmt.Sprintf("%d:%d: ", pos.Line-1, pos.Column)
	return fmt.Errorf(prefix+format, args...)
}

func (p *exprParser) convertStmt(stmt ast.Stmt) error {
	switch stmt := stmt.(type) {
	case *ast.AssignStmt:
		return p.convertAssignStmt(stmt)
	case *ast.ExprStmt:
		n, err := p.convertExpr(stmt.X)
		if err != nil {
			return err
		}
		if err := p.result.Builder.Add(n); err != nil {
			return p.errorf(stmt, "add: %w", err)
		}
		return nil
	case *ast.EmptyStmt:
		return nil
	default:
		return p.errorf(stmt, "convert stmt: unsupported %T", stmt)
	}
}

func (p *exprParser) convertAssignStmt(stmt *ast.AssignStmt) error {
	if stmt.Tok != token.DEFINE {
		return p.errorf(stmt, "convert assign: only := is supported, found %s", stmt.Tok)
	}
	if len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return p.errorf(stmt, "convert assign: expected one name and one value")
	}
	ident, ok := stmt.Lhs[0].(*ast.Ident)
	if !ok {
		return p.errorf(stmt, "convert assign: unsupported %T name", stmt.Lhs[0])
	}
	name := ident.Name
	switch {
	case name == "_":
		return p.errorf(ident, "convert assign: blank name")
	case reservedNames[name]:
		return p.errorf(ident, "convert assign: %s is a reserved name", name)
	}
	if _, ok := p.bindings[name]; ok {
		return p.errorf(ident, "convert assign: %s redeclared", name)
	}

	n, err := p.convertExpr(stmt.Rhs[0])
	if err != nil {
		return err
	}

	for _, prev := range p.exprs {
		if astequal.Expr(prev.expr, stmt.Rhs[0]) {
			p.result.Duplicates = append(p.result.Duplicates, Duplicate{
				Name: name,
				Of:   prev.name,
				Line: p.fset.Position(ident.Pos()).Line - 1,
			})
			break
		}
	}
	p.exprs = append(p.exprs, boundExpr{name: name, expr: stmt.Rhs[0]})
	p.bindings[name] = n
	p.result.Bindings = append(p.result.Bindings, Binding{Name: name, Node: n})
	return nil
}

func (p *exprParser) convertExpr(root ast.Expr) (rxbuild.Node, error) {
	switch root := root.(type) {
	case *ast.Ident:
		return p.convertIdent(root)
	case *ast.ParenExpr:
		return p.convertExpr(root.X)
	case *ast.CallExpr:
		return p.convertCallExpr(root)
	case *ast.BasicLit:
		if root.Kind == token.STRING {
			s, err := p.convertString(root)
			if err != nil {
				return nil, err
			}
			return rxbuild.Literal(s), nil
		}
		return nil, p.errorf(root, "convert expr: unexpected %s literal", root.Kind)
	default:
		return nil, p.errorf(root, "convert expr: unsupported %T", root)
	}
}

func (p *exprParser) convertIdent(root *ast.Ident) (rxbuild.Node, error) {
	if n, ok := p.bindings[root.Name]; ok {
		return n, nil
	}
	if n := predefined(root.Name); n != nil {
		return n, nil
	}
	return nil, p.errorf(root, "undefined: %s", root.Name)
}

func (p *exprParser) convertCallExpr(root *ast.CallExpr) (rxbuild.Node, error) {
	if root.Ellipsis.IsValid() {
		return nil, p.errorf(root, "convert call expr: variadic calls are not supported")
	}
	switch fn := root.Fun.(type) {
	case *ast.Ident:
		return p.convertFuncCall(root, fn.Name)
	case *ast.SelectorExpr:
		recv, err := p.convertExpr(fn.X)
		if err != nil {
			return nil, err
		}
		return p.convertMethodCall(root, recv, fn.Sel.Name)
	default:
		return nil, p.errorf(root, "convert call expr: unsupported %T function", root.Fun)
	}
}

func (p *exprParser) convertFuncCall(root *ast.CallExpr, name string) (rxbuild.Node, error) {
	if n := predefined(name); n != nil {
		if err := p.wantArgs(root, 0); err != nil {
			return nil, err
		}
		return n, nil
	}

	switch name {
	case "lit", "raw", "chars":
		s, err := p.stringArg(root)
		if err != nil {
			return nil, err
		}
		switch name {
		case "lit":
			return rxbuild.Literal(s), nil
		case "raw":
			return rxbuild.Raw(s), nil
		default:
			return rxbuild.NewChars(s), nil
		}

	case "class":
		class, err := p.classArg(root)
		if err != nil {
			return nil, err
		}
		return rxbuild.ClassOf(class), nil

	case "crange":
		from, to, err := p.runeRangeArgs(root)
		if err != nil {
			return nil, err
		}
		c, err := rxbuild.CharRange(from, to)
		if err != nil {
			return nil, p.errorf(root, "crange: %w", err)
		}
		return c, nil

	case "strs", "words":
		ss, err := p.convertStrings(root.Args)
		if err != nil {
			return nil, err
		}
		if len(ss) == 0 {
			return nil, p.errorf(root, "%s: expected at least one string", name)
		}
		if name == "words" {
			return rxbuild.Words(ss...), nil
		}
		return rxbuild.Strings(ss...), nil
	}

	if kind, ok := groupKinds[name]; ok {
		children, err := p.convertNodes(root.Args)
		if err != nil {
			return nil, err
		}
		g, err := rxbuild.NewGroup(kind, children...)
		if err != nil {
			return nil, p.errorf(root, "%s: %w", name, err)
		}
		return g, nil
	}

	if construct, ok := constructs[name]; ok {
		children, err := p.convertNodes(root.Args)
		if err != nil {
			return nil, err
		}
		return construct(children...), nil
	}

	return nil, p.errorf(root, "convert call expr: unsupported %s function", name)
}

func (p *exprParser) convertMethodCall(root *ast.CallExpr, recv rxbuild.Node, method string) (rxbuild.Node, error) {
	switch recv := recv.(type) {
	case *rxbuild.Group:
		switch method {
		case "not":
			return recv.Not(), p.wantArgs(root, 0)
		case "independent":
			return recv.Independent(), p.wantArgs(root, 0)
		case "add":
			children, err := p.convertNodes(root.Args)
			if err != nil {
				return nil, err
			}
			g, err := recv.Add(children...)
			if err != nil {
				return nil, p.errorf(root, "add: %w", err)
			}
			return g, nil
		}
		return convertCommonMethod(p, root, recv, method)

	case *rxbuild.Chars:
		switch method {
		case "not":
			return recv.Not(), p.wantArgs(root, 0)
		case "add":
			s, err := p.stringArg(root)
			if err != nil {
				return nil, err
			}
			return recv.Add(s), nil
		case "addrange":
			from, to, err := p.runeRangeArgs(root)
			if err != nil {
				return nil, err
			}
			c, err := recv.AddRange(from, to)
			if err != nil {
				return nil, p.errorf(root, "addrange: %w", err)
			}
			return c, nil
		case "addclass":
			class, err := p.classArg(root)
			if err != nil {
				return nil, err
			}
			return recv.AddClass(class), nil
		case "union":
			if err := p.wantArgs(root, 1); err != nil {
				return nil, err
			}
			other, err := p.convertExpr(root.Args[0])
			if err != nil {
				return nil, err
			}
			set, ok := other.(*rxbuild.Chars)
			if !ok {
				return nil, p.errorf(root.Args[0], "union: expected a character set")
			}
			c, err := recv.Union(set)
			if err != nil {
				return nil, p.errorf(root, "union: %w", err)
			}
			return c, nil
		}
		return convertCommonMethod(p, root, recv, method)

	case *rxbuild.Leaf:
		return convertCommonMethod(p, root, recv, method)

	default:
		return nil, p.errorf(root, "convert method call: unexpected receiver %T", recv)
	}
}

// nodeMutator is the set of methods shared by all node types.
type nodeMutator[T any] interface {
	rxbuild.Node

	Optional() T
	Many() T
	Arbitrary() T
	Lazy() T
	Greedy() T
	Possessive() T
	Least(n int) (T, error)
	Most(n int) (T, error)
	Range(min, max int) (T, error)
	Count(n int) (T, error)
	SwitchOn(flags ...rxbuild.Flag) T
	SwitchOff(flags ...rxbuild.Flag) T
	Restore(flags ...rxbuild.Flag) T
	RestoreAll() T
}

func convertCommonMethod[T nodeMutator[T]](p *exprParser, root *ast.CallExpr, n T, method string) (rxbuild.Node, error) {
	var x T

	switch method {
	case "optional", "many", "arbitrary", "lazy", "greedy", "possessive", "restoreall":
		if err := p.wantArgs(root, 0); err != nil {
			return nil, err
		}
		switch method {
		case "optional":
			x = n.Optional()
		case "many":
			x = n.Many()
		case "arbitrary":
			x = n.Arbitrary()
		case "lazy":
			x = n.Lazy()
		case "greedy":
			x = n.Greedy()
		case "possessive":
			x = n.Possessive()
		case "restoreall":
			x = n.RestoreAll()
		}
		return x, nil

	case "least", "most", "count":
		if err := p.wantArgs(root, 1); err != nil {
			return nil, err
		}
		v, err := p.convertInt(root.Args[0])
		if err != nil {
			return nil, err
		}
		switch method {
		case "least":
			x, err = n.Least(v)
		case "most":
			x, err = n.Most(v)
		case "count":
			x, err = n.Count(v)
		}
		if err != nil {
			return nil, p.errorf(root, "%s: %w", method, err)
		}
		return x, nil

	case "range":
		if err := p.wantArgs(root, 2); err != nil {
			return nil, err
		}
		min, err := p.convertInt(root.Args[0])
		if err != nil {
			return nil, err
		}
		max, err := p.convertInt(root.Args[1])
		if err != nil {
			return nil, err
		}
		x, err = n.Range(min, max)
		if err != nil {
			return nil, p.errorf(root, "range: %w", err)
		}
		return x, nil

	case "on", "off", "restore":
		flags, err := p.convertFlags(root.Args)
		if err != nil {
			return nil, err
		}
		switch method {
		case "on":
			x = n.SwitchOn(flags...)
		case "off":
			x = n.SwitchOff(flags...)
		case "restore":
			x = n.Restore(flags...)
		}
		return x, nil
	}

	return nil, p.errorf(root, "convert method call: unsupported %s method for %T", method, n)
}

func (p *exprParser) wantArgs(root *ast.CallExpr, n int) error {
	if len(root.Args) != n {
		return p.errorf(root, "expected %d arguments, found %d", n, len(root.Args))
	}
	return nil
}

func (p *exprParser) stringArg(root *ast.CallExpr) (string, error) {
	if err := p.wantArgs(root, 1); err != nil {
		return "", err
	}
	lit, ok := root.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", p.errorf(root.Args[0], "expected a string literal")
	}
	return p.convertString(lit)
}

func (p *exprParser) classArg(root *ast.CallExpr) (rxbuild.CharClass, error) {
	name, err := p.stringArg(root)
	if err != nil {
		return "", err
	}
	class, ok := classNames[name]
	if !ok {
		return "", p.errorf(root.Args[0], "unknown character class %q", name)
	}
	return class, nil
}

func (p *exprParser) runeRangeArgs(root *ast.CallExpr) (from, to rune, err error) {
	if err := p.wantArgs(root, 2); err != nil {
		return 0, 0, err
	}
	from, err = p.convertRune(root.Args[0])
	if err != nil {
		return 0, 0, err
	}
	to, err = p.convertRune(root.Args[1])
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func (p *exprParser) convertNodes(args []ast.Expr) ([]rxbuild.Node, error) {
	nodes := make([]rxbuild.Node, 0, len(args))
	for _, arg := range args {
		n, err := p.convertExpr(arg)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (p *exprParser) convertStrings(args []ast.Expr) ([]string, error) {
	ss := make([]string, 0, len(args))
	for _, arg := range args {
		lit, ok := arg.(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return nil, p.errorf(arg, "expected a string literal")
		}
		s, err := p.convertString(lit)
		if err != nil {
			return nil, err
		}
		ss = append(ss, s)
	}
	return ss, nil
}

func (p *exprParser) convertString(lit *ast.BasicLit) (string, error) {
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", p.errorf(lit, "convert string: %v", err)
	}
	return s, nil
}

func (p *exprParser) convertInt(arg ast.Expr) (int, error) {
	sign := 1
	if unary, ok := arg.(*ast.UnaryExpr); ok && unary.Op == token.SUB {
		sign = -1
		arg = unary.X
	}
	lit, ok := arg.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, p.errorf(arg, "expected an int literal")
	}
	v, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, p.errorf(lit, "convert int: %v", err)
	}
	return sign * v, nil
}

// convertRune accepts a rune literal or a single-rune string.
func (p *exprParser) convertRune(arg ast.Expr) (rune, error) {
	lit, ok := arg.(*ast.BasicLit)
	if !ok || (lit.Kind != token.CHAR && lit.Kind != token.STRING) {
		return 0, p.errorf(arg, "expected a rune literal")
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return 0, p.errorf(lit, "convert rune: %v", err)
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, p.errorf(lit, "expected exactly one rune, found %q", s)
	}
	return r, nil
}

// convertFlags accepts flag names as identifiers (CaseInsensitive)
// and flag strings ("im", "i,m").
func (p *exprParser) convertFlags(args []ast.Expr) ([]rxbuild.Flag, error) {
	var flags []rxbuild.Flag
	for _, arg := range args {
		switch arg := arg.(type) {
		case *ast.Ident:
			f, err := rxbuild.ParseFlag(arg.Name)
			if err != nil {
				return nil, p.errorf(arg, "%w", err)
			}
			flags = append(flags, f)
		case *ast.BasicLit:
			if arg.Kind != token.STRING {
				return nil, p.errorf(arg, "expected a flag, found %s literal", arg.Kind)
			}
			s, err := p.convertString(arg)
			if err != nil {
				return nil, err
			}
			list, err := rxbuild.ParseFlags(s)
			if err != nil {
				return nil, p.errorf(arg, "%w", err)
			}
			flags = append(flags, list...)
		default:
			return nil, p.errorf(arg, "expected a flag, found %T", arg)
		}
	}
	return flags, nil
}
