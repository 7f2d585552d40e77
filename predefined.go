package rxbuild

// CharClass is a predefined character class escape.
// It can be used as a node (ClassOf) or inside a set (Chars.AddClass).
type CharClass string

const (
	ClassDigit       CharClass = `\d`
	ClassNotDigit    CharClass = `\D`
	ClassWord        CharClass = `\w`
	ClassNotWord     CharClass = `\W`
	ClassSpace       CharClass = `\s`
	ClassNotSpace    CharClass = `\S`
	ClassTab         CharClass = `\t`
	ClassNewLine     CharClass = `\n`
	ClassReturn      CharClass = `\r`
	ClassLetter      CharClass = `\p{L}`
	ClassLowerLetter CharClass = `\p{Ll}`
	ClassUpperLetter CharClass = `\p{Lu}`
	ClassCurrency    CharClass = `\p{Sc}`
	ClassAlpha       CharClass = `[:alpha:]`
	ClassAlnum       CharClass = `[:alnum:]`
	ClassLower       CharClass = `[:lower:]`
	ClassUpper       CharClass = `[:upper:]`
	ClassPunct       CharClass = `[:punct:]`
	ClassGraph       CharClass = `[:graph:]`
	ClassPrint       CharClass = `[:print:]`
	ClassBlank       CharClass = `[:blank:]`
	ClassControl     CharClass = `[:cntrl:]`
	ClassHexDigit    CharClass = `[:xdigit:]`
	ClassASCII       CharClass = `[:ascii:]`
)

// isPOSIX reports whether c is only valid inside brackets.
func (c CharClass) isPOSIX() bool {
	return len(c) > 2 && c[0] == '[' && c[1] == ':'
}

// ClassOf returns a node that matches one character of class c.
// POSIX classes are wrapped into brackets since they are only
// valid inside a set.
func ClassOf(c CharClass) *Leaf {
	if c.isPOSIX() {
		return Raw("[" + string(c) + "]")
	}
	return Raw(string(c))
}

func AnyChar() *Leaf  { return Raw(".") }
func Digit() *Leaf    { return ClassOf(ClassDigit) }
func WordChar() *Leaf { return ClassOf(ClassWord) }
func Space() *Leaf    { return ClassOf(ClassSpace) }

// Any matches any sequence of characters: .*
func Any() *Leaf { return AnyChar().Arbitrary() }

// Anchors.
func LineStart() *Leaf       { return Raw("^") }
func LineEnd() *Leaf         { return Raw("$") }
func WordBoundary() *Leaf    { return Raw(`\b`) }
func NonWordBoundary() *Leaf { return Raw(`\B`) }
func InputStart() *Leaf      { return Raw(`\A`) }
func InputEnd() *Leaf        { return Raw(`\z`) }
