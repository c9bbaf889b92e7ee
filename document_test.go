package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSampleTree(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument("1.0", "UTF-8", StandaloneNoXMLDecl)

	root, err := doc.CreateElement("root")
	require.NoError(t, err)
	require.NoError(t, doc.AddChild(root))

	for i := 0; i < 3; i++ {
		child, err := doc.CreateElement("item")
		require.NoError(t, err)
		require.NoError(t, root.AddChild(child))
	}

	other, err := doc.CreateElement("note")
	require.NoError(t, err)
	require.NoError(t, root.AddChild(other))

	return doc
}

func TestDocumentFindFirstMatch(t *testing.T) {
	doc := buildSampleTree(t)

	node, indices, ok := doc.Find("/root/item")
	require.True(t, ok)
	require.Equal(t, "item", node.Name())
	require.Equal(t, []int{1, 1}, indices)
}

func TestDocumentFindOccurrenceIndex(t *testing.T) {
	doc := buildSampleTree(t)

	node, indices, ok := doc.Find("/root/item[3]")
	require.True(t, ok)
	require.Equal(t, "item", node.Name())
	// third "item" is the third child of root overall, so the recorded
	// position (among ALL children, not just same-named ones) is also 3.
	require.Equal(t, []int{1, 3}, indices)
}

func TestDocumentFindMissingOccurrenceFails(t *testing.T) {
	doc := buildSampleTree(t)

	_, _, ok := doc.Find("/root/item[4]")
	require.False(t, ok)
}

func TestDocumentFindSiblingAfterRepeats(t *testing.T) {
	doc := buildSampleTree(t)

	node, indices, ok := doc.Find("/root/note")
	require.True(t, ok)
	require.Equal(t, "note", node.Name())
	require.Equal(t, []int{1, 4}, indices)
}

func TestDocumentFindUnknownNameFails(t *testing.T) {
	doc := buildSampleTree(t)

	_, _, ok := doc.Find("/root/missing")
	require.False(t, ok)
}

func TestDocumentFindLeadingSlashOptional(t *testing.T) {
	doc := buildSampleTree(t)

	withSlash, _, ok1 := doc.Find("/root")
	withoutSlash, _, ok2 := doc.Find("root")
	require.True(t, ok1)
	require.True(t, ok2)
	require.Same(t, withSlash, withoutSlash)
}
