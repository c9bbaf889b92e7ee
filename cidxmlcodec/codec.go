// Package cidxmlcodec adapts golang.org/x/text's encoding machinery to the
// text-decoder collaborator that the entity spooler expects: something that
// turns a byte stream into a UTF-8 io.Reader, with auto-sensing of the
// family (UTF-8 / UTF-16LE / UTF-16BE / other 8-bit) from a short byte
// prefix, and name-based lookup once a text declaration discloses the real
// encoding.
//
// The core (spooler.go) treats encoding conversion as an external
// collaborator per the design's scope; this package is that collaborator.
package cidxmlcodec

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Family is the auto-sensed encoding family of an entity's byte stream,
// before any in-band declaration has disclosed a precise name.
type Family int

const (
	FamilyUTF8 Family = iota
	FamilyUTF16LE
	FamilyUTF16BE
	FamilyOther8Bit
)

func (f Family) String() string {
	switch f {
	case FamilyUTF8:
		return "UTF-8"
	case FamilyUTF16LE:
		return "UTF-16LE"
	case FamilyUTF16BE:
		return "UTF-16BE"
	default:
		return "8-bit"
	}
}

// Sniff inspects up to the first four bytes of an entity and returns the
// provisional family, per the design's auto-sense algorithm: a byte-order
// mark, or the byte pattern of "<?x" under a candidate encoding, selects
// UTF-8 / UTF-16LE / UTF-16BE; anything else is provisionally treated as
// UTF-8 until a declaration says otherwise.
func Sniff(prefix []byte) Family {
	switch {
	case len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1] == 0xFE:
		return FamilyUTF16LE
	case len(prefix) >= 2 && prefix[0] == 0xFE && prefix[1] == 0xFF:
		return FamilyUTF16BE
	case len(prefix) >= 3 && prefix[0] == 0xEF && prefix[1] == 0xBB && prefix[2] == 0xBF:
		return FamilyUTF8
	case len(prefix) >= 4 && prefix[0] == '<' && prefix[1] == 0 && prefix[2] == '?' && prefix[3] == 0:
		return FamilyUTF16LE
	case len(prefix) >= 4 && prefix[0] == 0 && prefix[1] == '<' && prefix[2] == 0 && prefix[3] == '?':
		return FamilyUTF16BE
	default:
		return FamilyUTF8
	}
}

// NewDecoder returns the provisional decoding transformer for a sniffed
// family. BOM bytes, if present, are consumed by the transformer itself.
func NewDecoder(f Family) transform.Transformer {
	switch f {
	case FamilyUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case FamilyUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case FamilyOther8Bit:
		return encoding.Nop.NewDecoder()
	default:
		return unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
}

// Compatible reports whether a declared encoding name is consistent with
// the family that was auto-sensed from the byte stream, per the spooler's
// set_decl_encoding contract: switching converters is only allowed within
// the same family.
func Compatible(f Family, declaredName string) bool {
	name := strings.ToUpper(strings.TrimSpace(declaredName))
	switch f {
	case FamilyUTF16LE, FamilyUTF16BE:
		return strings.HasPrefix(name, "UTF-16") || strings.HasPrefix(name, "UTF16")
	default:
		// UTF-8 and "other 8-bit" families are compatible with any declared
		// encoding; the declared name picks the real converter.
		return true
	}
}

// Lookup resolves a declared encoding name (e.g. "UTF-8", "ISO-8859-1",
// "Windows-1252", "UTF-16") to a concrete encoding.Encoding, trying the IANA
// registry first and a short table of common aliases second.
func Lookup(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return unicode.UTF8, nil
	}

	if enc, err := ianaindex.IANA.Encoding(trimmed); err == nil && enc != nil {
		return enc, nil
	}

	switch strings.ToUpper(trimmed) {
	case "UTF-8", "UTF8":
		return unicode.UTF8, nil
	case "UTF-16", "UTF16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "ISO-8859-1", "LATIN1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "US-ASCII", "ASCII":
		return encoding.Nop, nil
	}

	return nil, fmt.Errorf("cidxmlcodec: unknown encoding name %q", name)
}

// NewReader wraps r so that reads yield UTF-8 bytes decoded from the given
// encoding.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}
