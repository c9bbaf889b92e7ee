package cidxml

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/text/transform"

	"github.com/lestrrat/cidxml/cidxmlcodec"
)

// EntityKind classifies what kind of entity a spooler is reading for, used
// by the entity manager to decide whether a '%' or '&' reference is legal.
type EntityKind int

const (
	EntityKindNeither EntityKind = iota
	EntityKindGeneral
	EntityKindParameter
)

// RefMode records whether a spooler was pushed while scanning inside a
// quoted literal (an attribute value or entity value) or outside one.
type RefMode int

const (
	RefOutsideLiteral RefMode = iota
	RefInsideLiteral
)

const spoolerBufSize = 4096

var spoolerIDSeq uint64

// Spooler turns one entity's bytes into a lazy character stream with
// peek/get semantics, tracking line and column, per design component C2.
type Spooler struct {
	SystemID string

	raw        *bufio.Reader // undecoded byte source
	family     cidxmlcodec.Family
	decoded    *bufio.Reader // decoded UTF-8 rune source
	declCommit bool          // set_decl_encoding has fired

	buf    []rune
	bufPos int
	eof    bool

	line, col int

	id       uint64
	Interned bool
	RefFrom  RefMode
	Kind     EntityKind

	IgnoreBadChars bool

	closer io.Closer
}

// SetCloser registers a resource (typically the underlying file handle)
// that Close should release once the spooler is popped off the entity
// stack. The entity-stack janitor (design §9) calls Close on every
// spooler still on the stack when a parse unwinds.
func (s *Spooler) SetCloser(c io.Closer) { s.closer = c }

// Close releases the spooler's underlying resource, if any. It is safe to
// call more than once.
func (s *Spooler) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

// NewSpooler wraps byte source r for systemID. family is the provisional
// encoding family from Sniff; line/column start at 1/0 per the usual XML
// tooling convention (column is incremented before the first character is
// returned).
func NewSpooler(systemID string, r io.Reader, family cidxmlcodec.Family) *Spooler {
	raw := bufio.NewReader(r)
	dec := cidxmlcodec.NewDecoder(family)
	sp := &Spooler{
		SystemID: systemID,
		raw:      raw,
		family:   family,
		decoded:  bufio.NewReader(transform.NewReader(raw, dec)),
		line:     1,
		col:      0,
		id:       atomic.AddUint64(&spoolerIDSeq, 1),
	}
	return sp
}

// NewInternedSpooler builds a spooler directly over an already-decoded
// string, for internal entity values that never touch the byte-decoding
// pipeline. Consumers can check Interned to skip redundant normalisation.
func NewInternedSpooler(systemID, value string) *Spooler {
	sp := &Spooler{
		SystemID: systemID,
		decoded:  bufio.NewReader(strings.NewReader(value)),
		line:     1,
		col:      0,
		id:       atomic.AddUint64(&spoolerIDSeq, 1),
		Interned: true,
	}
	return sp
}

// ID returns the spooler's monotonically increasing identity, used to
// detect cross-entity well-formedness violations (a construct that began
// in one entity and ended in another).
func (s *Spooler) ID() uint64 { return s.id }

// SetDeclEncoding is called once an in-band XML or text declaration
// discloses the real encoding name. It validates consistency with the
// auto-sensed family and, if compatible, substitutes the converter for the
// remainder of the stream. Calling it after the declaration's own
// characters have been consumed is safe because declarations are
// ASCII-only, so no already-decoded rune is invalidated by the swap.
func (s *Spooler) SetDeclEncoding(name string) error {
	if s.Interned || s.raw == nil {
		// Interned spoolers are already decoded text; nothing to swap.
		return nil
	}
	if !cidxmlcodec.Compatible(s.family, name) {
		return fmt.Errorf("cidxml: declared encoding %q incompatible with sensed family %s", name, s.family)
	}
	enc, err := cidxmlcodec.Lookup(name)
	if err != nil {
		return err
	}
	s.decoded = bufio.NewReader(cidxmlcodec.NewReader(s.raw, enc))
	s.declCommit = true
	return nil
}

func (s *Spooler) bReloadCharBuf() {
	if s.eof {
		return
	}
	s.buf = append(s.buf[:0], s.buf[s.bufPos:]...)
	s.bufPos = 0
	for len(s.buf) < spoolerBufSize {
		r, _, err := s.decoded.ReadRune()
		if err != nil {
			s.eof = true
			break
		}
		if !IsXMLChar(r) {
			if s.IgnoreBadChars {
				r = ' '
			}
			// Disallowed-char detection is surfaced by the parser core,
			// which has access to the error handler; the spooler only
			// substitutes when asked to.
		}
		s.buf = append(s.buf, r)
	}
}

func (s *Spooler) ensure() bool {
	if s.bufPos < len(s.buf) {
		return true
	}
	s.bReloadCharBuf()
	return s.bufPos < len(s.buf)
}

func (s *Spooler) advance(r rune) {
	s.bufPos++
	switch r {
	case '\n':
		s.line++
		s.col = 0
	case '\r':
		// A CR is a line break. For a CR LF pair, GetNext swallows the LF
		// without calling advance, so the pair counts as one break.
		s.line++
		s.col = 0
	default:
		s.col++
	}
}

// PeekNext returns the next character without consuming it, or NUL at end
// of entity. A CR LF pair is collapsed to a single LF per the XML line-end
// normalisation rule.
func (s *Spooler) PeekNext() rune {
	if !s.ensure() {
		return 0
	}
	r := s.buf[s.bufPos]
	if r == '\r' {
		// Collapse CRLF by rewriting the buffered CR to LF and, if the
		// next buffered rune is LF, dropping it on the next GetNext call.
		return '\n'
	}
	return r
}

// GetNext consumes and returns the next character, or NUL at end of entity.
func (s *Spooler) GetNext() rune {
	if !s.ensure() {
		return 0
	}
	r := s.buf[s.bufPos]
	s.advance(r)
	if r == '\r' {
		// Look at what's now at bufPos (the rune after the CR); if it's an
		// LF, swallow it so CRLF counts as one line break.
		if s.ensure() && s.buf[s.bufPos] == '\n' {
			s.bufPos++
		}
		return '\n'
	}
	return r
}

// GetNextIfNot consumes and returns the next character only if it is not c.
func (s *Spooler) GetNextIfNot(c rune) (rune, bool) {
	if s.PeekNext() == c {
		return 0, false
	}
	return s.GetNext(), true
}

// PeekAhead performs a non-destructive look-ahead of n characters (0 =
// same as PeekNext). Returns false if fewer than n+1 characters remain.
func (s *Spooler) PeekAhead(n int) (rune, bool) {
	for len(s.buf)-s.bufPos <= n {
		before := len(s.buf)
		s.bReloadCharBuf()
		if len(s.buf) == before {
			return 0, false
		}
	}
	return s.buf[s.bufPos+n], true
}

// SkippedChar consumes and reports true if the next character is c.
func (s *Spooler) SkippedChar(c rune) bool {
	if s.PeekNext() != c {
		return false
	}
	s.GetNext()
	return true
}

// SkippedString consumes and reports true if the upcoming characters spell
// out str exactly.
func (s *Spooler) SkippedString(str string) bool {
	runes := []rune(str)
	for i, want := range runes {
		got, ok := s.PeekAhead(i)
		if !ok || got != want {
			return false
		}
	}
	for range runes {
		s.GetNext()
	}
	return true
}

// SkippedQuote consumes and returns a quote character, single or double, if
// one is next.
func (s *Spooler) SkippedQuote() (rune, bool) {
	if s.SkippedChar('"') {
		return '"', true
	}
	if s.SkippedChar('\'') {
		return '\'', true
	}
	return 0, false
}

// SkippedSpace consumes and reports true if the next character is
// whitespace.
func (s *Spooler) SkippedSpace() bool {
	if !IsWhitespace(s.PeekNext()) {
		return false
	}
	s.GetNext()
	return true
}

// SkipSpaces consumes a run of whitespace. advanced reports whether at
// least one character was consumed; hitEnd reports whether end of entity
// was reached while doing so.
func (s *Spooler) SkipSpaces() (advanced, hitEnd bool) {
	for {
		if !s.ensure() {
			return advanced, true
		}
		if !IsWhitespace(s.PeekNext()) {
			return advanced, false
		}
		s.GetNext()
		advanced = true
	}
}

// SkipPast consumes characters up to and including the next occurrence of
// c, reporting whether it was found before end of entity.
func (s *Spooler) SkipPast(c rune) bool {
	for {
		r := s.GetNext()
		if r == 0 && !s.ensure() {
			return false
		}
		if r == c {
			return true
		}
	}
}

// GetName reads a Name (or, if allowLeadingNonStart is true, an Nmtoken) per
// the XML Name/Nmtoken productions.
func (s *Spooler) GetName(allowLeadingNonStart bool) (string, bool) {
	first := s.PeekNext()
	if first == 0 {
		return "", false
	}
	if !allowLeadingNonStart && !IsNameStartChar(first) {
		return "", false
	}
	if allowLeadingNonStart && !IsNameChar(first) {
		return "", false
	}
	var sb strings.Builder
	sb.WriteRune(s.GetNext())
	for {
		r := s.PeekNext()
		if r == 0 || !IsNameChar(r) {
			break
		}
		sb.WriteRune(s.GetNext())
	}
	return sb.String(), true
}

// GetSpaces appends consumed whitespace to out and reports whether data is
// still available afterward.
func (s *Spooler) GetSpaces(out *strings.Builder) bool {
	for IsWhitespace(s.PeekNext()) {
		out.WriteRune(s.GetNext())
	}
	return s.ensure()
}

// AtEOF reports whether the spooler has been drained: the character buffer
// is empty and the underlying byte stream is exhausted.
func (s *Spooler) AtEOF() bool { return !s.ensure() }

// Line and Column return the current position.
func (s *Spooler) Line() int   { return s.line }
func (s *Spooler) Column() int { return s.col }
