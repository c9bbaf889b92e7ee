package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpoolerPeekAndGetNext(t *testing.T) {
	sp := NewInternedSpooler("test", "ab")

	require.Equal(t, 'a', sp.PeekNext())
	require.Equal(t, 'a', sp.PeekNext(), "peek must not consume")
	require.Equal(t, 'a', sp.GetNext())
	require.Equal(t, 'b', sp.GetNext())
	require.Equal(t, rune(0), sp.GetNext(), "NUL at end of entity")
	require.True(t, sp.AtEOF())
}

func TestSpoolerSkippedStringAndChar(t *testing.T) {
	sp := NewInternedSpooler("test", "<!DOCTYPE foo>")

	require.True(t, sp.SkippedChar('<'))
	require.True(t, sp.SkippedString("!DOCTYPE"))
	adv, hitEnd := sp.SkipSpaces()
	require.True(t, adv)
	require.False(t, hitEnd)

	name, ok := sp.GetName(false)
	require.True(t, ok)
	require.Equal(t, "foo", name)

	require.True(t, sp.SkippedChar('>'))
}

func TestSpoolerCRLFNormalisesToLF(t *testing.T) {
	sp := NewInternedSpooler("test", "a\r\nb")

	require.Equal(t, 'a', sp.GetNext())
	require.Equal(t, int32('\n'), int32(sp.PeekNext()))
	require.Equal(t, '\n', sp.GetNext())
	require.Equal(t, 'b', sp.GetNext())
}

func TestSpoolerBareCRNormalisesToLF(t *testing.T) {
	sp := NewInternedSpooler("test", "a\rb")

	require.Equal(t, 'a', sp.GetNext())
	require.Equal(t, '\n', sp.GetNext())
	require.Equal(t, 'b', sp.GetNext())
}

func TestSpoolerLineColumnTracking(t *testing.T) {
	sp := NewInternedSpooler("test", "ab\ncd")

	require.Equal(t, 1, sp.Line())
	sp.GetNext()
	sp.GetNext()
	require.Equal(t, 2, sp.Column())
	sp.GetNext() // consumes the newline
	require.Equal(t, 2, sp.Line())
	require.Equal(t, 0, sp.Column())
}

func TestSpoolerPeekAheadAndGetNameRejectsLeadingDigit(t *testing.T) {
	sp := NewInternedSpooler("test", "1abc")

	r, ok := sp.PeekAhead(0)
	require.True(t, ok)
	require.Equal(t, '1', r)

	_, ok = sp.GetName(false)
	require.False(t, ok, "a Name may not start with a digit")
}
