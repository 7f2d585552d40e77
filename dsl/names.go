package dsl

import (
	"github.com/quasilyte/rxbuild"
)

// predefined returns a fresh node for a predefined class or anchor name.
// It returns nil for other names.
func predefined(name string) rxbuild.Node {
	switch name {
	case "anychar":
		return rxbuild.AnyChar()
	case "any":
		return rxbuild.Any()
	case "digit":
		return rxbuild.Digit()
	case "wordchar":
		return rxbuild.WordChar()
	case "space":
		return rxbuild.Space()
	case "start":
		return rxbuild.LineStart()
	case "end":
		return rxbuild.LineEnd()
	case "wordb":
		return rxbuild.WordBoundary()
	case "nonwordb":
		return rxbuild.NonWordBoundary()
	case "bos":
		return rxbuild.InputStart()
	case "eos":
		return rxbuild.InputEnd()
	}
	return nil
}

var groupKinds = map[string]rxbuild.GroupKind{
	"group":     rxbuild.GroupCapture,
	"nc":        rxbuild.GroupNonCapture,
	"atomic":    rxbuild.GroupAtomic,
	"alt":       rxbuild.GroupAlternation,
	"ahead":     rxbuild.GroupLookahead,
	"notahead":  rxbuild.GroupNegLookahead,
	"behind":    rxbuild.GroupLookbehind,
	"notbehind": rxbuild.GroupNegLookbehind,
}

var constructs = map[string]func(children ...rxbuild.Node) *rxbuild.Group{
	"word":          rxbuild.Word,
	"notword":       rxbuild.NotWord,
	"startswith":    rxbuild.LineStartsWith,
	"notstartswith": rxbuild.LineNotStartsWith,
	"endswith":      rxbuild.LineEndsWith,
	"notendswith":   rxbuild.LineNotEndsWith,
	"contains":      rxbuild.LineContains,
	"notcontains":   rxbuild.LineNotContains,
}

var classNames = map[string]rxbuild.CharClass{
	"digit":       rxbuild.ClassDigit,
	"notdigit":    rxbuild.ClassNotDigit,
	"word":        rxbuild.ClassWord,
	"notword":     rxbuild.ClassNotWord,
	"space":       rxbuild.ClassSpace,
	"notspace":    rxbuild.ClassNotSpace,
	"tab":         rxbuild.ClassTab,
	"newline":     rxbuild.ClassNewLine,
	"return":      rxbuild.ClassReturn,
	"letter":      rxbuild.ClassLetter,
	"lowerletter": rxbuild.ClassLowerLetter,
	"upperletter": rxbuild.ClassUpperLetter,
	"currency":    rxbuild.ClassCurrency,
	"alpha":       rxbuild.ClassAlpha,
	"alnum":       rxbuild.ClassAlnum,
	"lower":       rxbuild.ClassLower,
	"upper":       rxbuild.ClassUpper,
	"punct":       rxbuild.ClassPunct,
	"graph":       rxbuild.ClassGraph,
	"print":       rxbuild.ClassPrint,
	"blank":       rxbuild.ClassBlank,
	"cntrl":       rxbuild.ClassControl,
	"xdigit":      rxbuild.ClassHexDigit,
	"ascii":       rxbuild.ClassASCII,
}

// reservedNames can't be used as binding names.
var reservedNames = func() map[string]bool {
	m := map[string]bool{
		"lit":    true,
		"raw":    true,
		"chars":  true,
		"class":  true,
		"crange": true,
		"strs":   true,
		"words":  true,
	}
	for name := range groupKinds {
		m[name] = true
	}
	for name := range constructs {
		m[name] = true
	}
	for _, name := range []string{"anychar", "any", "digit", "wordchar", "space", "start", "end", "wordb", "nonwordb", "bos", "eos"} {
		m[name] = true
	}
	return m
}()
