package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDFASequenceRequiresOrder(t *testing.T) {
	spec := seq(leaf("a"), leaf("b"))
	numberLeaves(spec)
	dfa := compileChildrenDFA(spec)

	cur := dfa.NewCursor()
	require.False(t, cur.Accepted())
	require.True(t, cur.Advance("a"))
	require.False(t, cur.Accepted())
	require.True(t, cur.Advance("b"))
	require.True(t, cur.Accepted())

	cur2 := dfa.NewCursor()
	require.False(t, cur2.Advance("b"), "b cannot come before a")
}

func TestDFAAlternationAcceptsEither(t *testing.T) {
	spec := alt(leaf("a"), leaf("b"))
	numberLeaves(spec)
	dfa := compileChildrenDFA(spec)

	curA := dfa.NewCursor()
	require.True(t, curA.Advance("a"))
	require.True(t, curA.Accepted())

	curB := dfa.NewCursor()
	require.True(t, curB.Advance("b"))
	require.True(t, curB.Accepted())

	curC := dfa.NewCursor()
	require.False(t, curC.Advance("c"))
}

func TestDFAZeroOrMoreAcceptsEmptyAndRepeats(t *testing.T) {
	spec := rewriteOccurrence(SpecZeroOrMore, leaf("a"))
	numberLeaves(spec)
	dfa := compileChildrenDFA(spec)

	empty := dfa.NewCursor()
	require.True(t, empty.Accepted())

	repeated := dfa.NewCursor()
	for i := 0; i < 3; i++ {
		require.True(t, repeated.Advance("a"))
	}
	require.True(t, repeated.Accepted())
}

func TestDFAOneOrMoreRequiresAtLeastOne(t *testing.T) {
	spec := rewriteOccurrence(SpecOneOrMore, leaf("a"))
	numberLeaves(spec)
	dfa := compileChildrenDFA(spec)

	empty := dfa.NewCursor()
	require.False(t, empty.Accepted())

	one := dfa.NewCursor()
	require.True(t, one.Advance("a"))
	require.True(t, one.Accepted())
}

func TestDFAZeroOrOneAcceptsEmptyOrSingle(t *testing.T) {
	spec := rewriteOccurrence(SpecZeroOrOne, leaf("a"))
	numberLeaves(spec)
	dfa := compileChildrenDFA(spec)

	empty := dfa.NewCursor()
	require.True(t, empty.Accepted())

	one := dfa.NewCursor()
	require.True(t, one.Advance("a"))
	require.True(t, one.Accepted())

	two := dfa.NewCursor()
	require.True(t, two.Advance("a"))
	require.False(t, two.Advance("a"), "a? must not accept a second a")
}

func TestCompileContentModelSequenceThenStar(t *testing.T) {
	// (a, b*) : exactly one "a" followed by any number of "b".
	spec := seq(leaf("a"), rewriteOccurrence(SpecZeroOrMore, leaf("b")))
	names := numberLeaves(spec)
	require.Equal(t, []string{"a", "b"}, names)

	model := compileContentModel(ElementElementType, spec, nil)
	require.Equal(t, ElementElementType, model.Kind)
	require.False(t, model.AcceptsEmpty)

	cur := model.DFA.NewCursor()
	require.True(t, cur.Advance("a"))
	require.True(t, cur.Accepted())
	require.True(t, cur.Advance("b"))
	require.True(t, cur.Advance("b"))
	require.True(t, cur.Accepted())
}
