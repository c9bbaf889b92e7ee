package cidxml

// Character classification tables (component C1 of the design). Every
// predicate is a constant-time table lookup for code units in the Basic
// Multilingual Plane; code points above it are checked with a handful of
// range comparisons since the canonical table only needs to cover 16 bits.

type charFlag uint8

const (
	flagXMLChar charFlag = 1 << iota
	flagNameStart
	flagNameChar
	flagWhitespace
	flagPublicID
	flagMarkupTest
)

// classTable is indexed by code unit (0..0xFFFF) and holds the OR of every
// charFlag that applies to it.
var classTable [0x10000]charFlag

func init() {
	setRange := func(lo, hi rune, f charFlag) {
		if hi > 0xFFFF {
			hi = 0xFFFF
		}
		for r := lo; r <= hi; r++ {
			classTable[r] |= f
		}
	}

	// Char ::= #x9 | #xA | #xD | [#x20-#xD7FF] | [#xE000-#xFFFD] | [#x10000-#x10FFFF]
	setRange(0x9, 0x9, flagXMLChar)
	setRange(0xA, 0xA, flagXMLChar)
	setRange(0xD, 0xD, flagXMLChar)
	setRange(0x20, 0xD7FF, flagXMLChar)
	setRange(0xE000, 0xFFFD, flagXMLChar)

	// whitespace
	for _, r := range []rune{0x9, 0xA, 0xD, 0x20} {
		classTable[r] |= flagWhitespace
	}

	// NameStartChar
	setRange(':', ':', flagNameStart)
	setRange('A', 'Z', flagNameStart)
	setRange('_', '_', flagNameStart)
	setRange('a', 'z', flagNameStart)
	setRange(0xC0, 0xD6, flagNameStart)
	setRange(0xD8, 0xF6, flagNameStart)
	setRange(0xF8, 0x2FF, flagNameStart)
	setRange(0x370, 0x37D, flagNameStart)
	setRange(0x37F, 0x1FFF, flagNameStart)
	setRange(0x200C, 0x200D, flagNameStart)
	setRange(0x2070, 0x218F, flagNameStart)
	setRange(0x2C00, 0x2FEF, flagNameStart)
	setRange(0x3001, 0xD7FF, flagNameStart)
	setRange(0xF900, 0xFDCF, flagNameStart)
	setRange(0xFDF0, 0xFFFD, flagNameStart)

	// NameChar = NameStartChar | '-' | '.' | [0-9] | #xB7 | [#x0300-#x036F] | [#x203F-#x2040]
	for r := rune(0); r < 0x10000; r++ {
		if classTable[r]&flagNameStart != 0 {
			classTable[r] |= flagNameChar
		}
	}
	setRange('-', '-', flagNameChar)
	setRange('.', '.', flagNameChar)
	setRange('0', '9', flagNameChar)
	setRange(0xB7, 0xB7, flagNameChar)
	setRange(0x0300, 0x036F, flagNameChar)
	setRange(0x203F, 0x2040, flagNameChar)

	// PubidChar ::= #x20 | #xD | #xA | [a-zA-Z0-9] | [-'()+,./:=?;!*#@$_%]
	setRange(0x20, 0x20, flagPublicID)
	setRange(0xD, 0xD, flagPublicID)
	setRange(0xA, 0xA, flagPublicID)
	setRange('a', 'z', flagPublicID)
	setRange('A', 'Z', flagPublicID)
	setRange('0', '9', flagPublicID)
	for _, r := range []rune("-'()+,./:=?;!*#@$_%") {
		classTable[r] |= flagPublicID
	}

	// markup-test-char: '<', '&', ']'
	for _, r := range []rune{'<', '&', ']'} {
		classTable[r] |= flagMarkupTest
	}
}

func classify(r rune) charFlag {
	if r < 0 {
		return 0
	}
	if r <= 0xFFFF {
		return classTable[r]
	}
	// Above the BMP: only the Char and NameStartChar/NameChar productions
	// extend up here.
	var f charFlag
	if r <= 0x10FFFF {
		f |= flagXMLChar
	}
	if r >= 0x10000 && r <= 0xEFFFF {
		f |= flagNameStart | flagNameChar
	}
	return f
}

// IsXMLChar reports whether r is a valid XML 1.0 Char.
func IsXMLChar(r rune) bool { return classify(r)&flagXMLChar != 0 }

// IsNameStartChar reports whether r may begin a Name or Nmtoken-start.
func IsNameStartChar(r rune) bool { return classify(r)&flagNameStart != 0 }

// IsNameChar reports whether r may occur anywhere in a Name or Nmtoken.
func IsNameChar(r rune) bool { return classify(r)&flagNameChar != 0 }

// IsWhitespace reports whether r is XML whitespace: tab, LF, CR, or space.
func IsWhitespace(r rune) bool { return classify(r)&flagWhitespace != 0 }

// IsPublicIDChar reports whether r may occur in a PubidLiteral.
func IsPublicIDChar(r rune) bool { return classify(r)&flagPublicID != 0 }

// IsMarkupTestChar reports whether r is one of '<', '&', ']' — the three
// characters the content-data scanner must special-case.
func IsMarkupTestChar(r rune) bool { return classify(r)&flagMarkupTest != 0 }
