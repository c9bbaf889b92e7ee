package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lestrrat/cidxml"
)

func TestCatalogAddRemoveClearLookup(t *testing.T) {
	c := New()
	require.Equal(t, 0, c.Len())

	src := cidxml.NewFileEntitySource("/tmp/foo.dtd")
	c.Add("-//Example//DTD Foo//EN", src)
	require.Equal(t, 1, c.Len())

	got, ok := c.Lookup("-//Example//DTD Foo//EN")
	require.True(t, ok)
	require.Equal(t, "/tmp/foo.dtd", got.SystemID())

	c.Remove("-//Example//DTD Foo//EN")
	require.Equal(t, 0, c.Len())

	c.Add("a", cidxml.NewFileEntitySource("a.dtd"))
	c.Add("b", cidxml.NewFileEntitySource("b.dtd"))
	require.Equal(t, 2, c.Len())
	c.Clear()
	require.Equal(t, 0, c.Len())

	_, ok = c.Lookup("a")
	require.False(t, ok)
}

func TestCatalogLoadParsesMapItems(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>
<CIDStdCat:Catalog>
  <CIDStdCat:MapItem CIDStdCat:PublicId="-//Example//DTD Foo//EN" CIDStdCat:MapTo="foo.dtd"/>
  <CIDStdCat:MapItem CIDStdCat:PublicId="-//Example//DTD Bar//EN" CIDStdCat:MapTo="bar.dtd"/>
</CIDStdCat:Catalog>`)

	cat, err := Load(doc, "test.xml")
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	src, ok := cat.Lookup("-//Example//DTD Foo//EN")
	require.True(t, ok)
	require.Equal(t, "foo.dtd", src.SystemID())

	src, ok = cat.Lookup("-//Example//DTD Bar//EN")
	require.True(t, ok)
	require.Equal(t, "bar.dtd", src.SystemID())

	_, ok = cat.Lookup("-//Unknown//EN")
	require.False(t, ok)
}

func TestCatalogLoadRejectsMissingRequiredAttribute(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>
<CIDStdCat:Catalog>
  <CIDStdCat:MapItem CIDStdCat:PublicId="-//Example//DTD Foo//EN"/>
</CIDStdCat:Catalog>`)

	_, err := Load(doc, "test.xml")
	require.Error(t, err)
}

func TestCatalogLoadEmpty(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>
<CIDStdCat:Catalog/>`)

	cat, err := Load(doc, "empty.xml")
	require.NoError(t, err)
	require.Equal(t, 0, cat.Len())
}
