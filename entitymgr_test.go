package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntityManagerPushPopAndMultiplex(t *testing.T) {
	m := NewEntityManager()
	require.True(t, m.Empty())

	require.NoError(t, m.PushEntity(NewInternedSpooler("root", "ab"), nil))
	require.Equal(t, 1, m.Depth())

	decl := newEntity("foo", InternalGeneralEntity, "", "", "XY")
	require.NoError(t, m.PushEntity(NewInternedSpooler("foo", "XY"), decl))
	require.Equal(t, 2, m.Depth())
	require.Same(t, decl, m.TopDecl())

	r, err := m.GetNext()
	require.NoError(t, err)
	require.Equal(t, 'X', r)
	r, err = m.GetNext()
	require.NoError(t, err)
	require.Equal(t, 'Y', r)

	// the "foo" spooler is now exhausted; the next GetNext should pop back
	// to the root spooler transparently.
	r, err = m.GetNext()
	require.NoError(t, err)
	require.Equal(t, 'a', r)
	require.Equal(t, 1, m.Depth())
}

func TestEntityManagerRejectsRecursiveEntity(t *testing.T) {
	m := NewEntityManager()
	decl := newEntity("foo", InternalGeneralEntity, "", "", "x")

	require.NoError(t, m.PushEntity(NewInternedSpooler("foo", "x"), decl))

	err := m.PushEntity(NewInternedSpooler("foo", "x"), decl)
	require.Error(t, err)
	require.True(t, IsRecursiveEntity(err))
}

func TestEntityManagerThrowAtEndSignalsEndOfEntity(t *testing.T) {
	m := NewEntityManager()
	m.ThrowAtEnd = true

	decl := newEntity("foo", InternalGeneralEntity, "", "", "a")
	require.NoError(t, m.PushEntity(NewInternedSpooler("foo", "a"), decl))

	r, err := m.GetNext()
	require.NoError(t, err)
	require.Equal(t, 'a', r)

	_, err = m.GetNext()
	require.Error(t, err, "exhausted spooler with ThrowAtEnd should report end-of-entity instead of popping silently")
	require.Equal(t, 1, m.Depth(), "ThrowAtEnd must not pop until the caller calls Pop")

	poppedDecl, _ := m.Pop()
	require.Same(t, decl, poppedDecl)
	require.Equal(t, 0, m.Depth())
}
