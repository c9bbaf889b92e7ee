package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamePoolInsertLookupByID(t *testing.T) {
	pool := NewNamePool[*ElementDecl]()

	a := newElementDecl("a")
	b := newElementDecl("b")
	pool.Insert(a)
	pool.Insert(b)

	require.Equal(t, 2, pool.Len())

	got, ok := pool.Lookup("a")
	require.True(t, ok)
	require.Same(t, a, got)

	got, ok = pool.Lookup("b")
	require.True(t, ok)
	require.Same(t, b, got)

	_, ok = pool.Lookup("missing")
	require.False(t, ok)

	byID, ok := pool.ByID(a.PoolID())
	require.True(t, ok)
	require.Same(t, a, byID)

	_, ok = pool.ByID(999)
	require.False(t, ok)
}

func TestNamePoolRemoveAllBumpsSeq(t *testing.T) {
	pool := NewNamePool[*ElementDecl]()
	pool.Insert(newElementDecl("a"))
	seqBefore := pool.Seq()

	pool.RemoveAll()
	require.Equal(t, 0, pool.Len())
	require.NotEqual(t, seqBefore, pool.Seq())

	_, ok := pool.Lookup("a")
	require.False(t, ok)
}

func TestNamePoolCursorDetectsMutation(t *testing.T) {
	pool := NewNamePool[*ElementDecl]()
	pool.Insert(newElementDecl("a"))
	pool.Insert(newElementDecl("b"))

	cur := pool.NewCursor()
	_, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	pool.Insert(newElementDecl("c"))

	_, _, err = cur.Next()
	require.Error(t, err)
}

func TestNamePoolCursorExhausts(t *testing.T) {
	pool := NewNamePool[*ElementDecl]()
	pool.Insert(newElementDecl("only"))

	cur := pool.NewCursor()
	_, ok, err := cur.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = cur.Next()
	require.NoError(t, err)
	require.False(t, ok)
}
