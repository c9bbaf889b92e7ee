// Package catalog implements the public-id to entity-source resolution
// table: an XML file, validated against a fixed embedded DTD, maps public
// identifiers to replacement system identifiers (design §6 "Catalog").
// Loading a catalog file is the first real end-to-end exercise of the
// engine's own parser and DTD validator: LoadFile hands the file to this
// module's Parser with validation turned on against the bit-exact
// CIDStdCat DTD, rather than hand-parsing the mapping file some other way.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/lestrrat/cidxml"
)

// catalogDTD is the bit-exact internal subset every catalog file is
// validated against, inserted ahead of the root element at load time so
// callers don't need to repeat it in every catalog file they write.
const catalogDTD = `<!DOCTYPE CIDStdCat:Catalog [
<!ELEMENT CIDStdCat:Catalog (CIDStdCat:MapItem*)>
<!ELEMENT CIDStdCat:MapItem EMPTY>
<!ATTLIST CIDStdCat:MapItem
          CIDStdCat:PublicId CDATA #REQUIRED
          CIDStdCat:MapTo CDATA #REQUIRED>
]>
`

const rootStartTag = "<CIDStdCat:Catalog"

// Catalog is a public-id to entity-source map, add/remove/clear/lookup per
// design §6. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]cidxml.EntitySource
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]cidxml.EntitySource)}
}

// Add registers (or replaces) the entity source resolved for publicID.
func (c *Catalog) Add(publicID string, src cidxml.EntitySource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[publicID] = src
}

// Remove drops any mapping for publicID.
func (c *Catalog) Remove(publicID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, publicID)
}

// Clear removes every mapping.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cidxml.EntitySource)
}

// Lookup resolves publicID to its mapped entity source, if any.
func (c *Catalog) Lookup(publicID string) (cidxml.EntitySource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	src, ok := c.entries[publicID]
	return src, ok
}

// Len reports the number of mappings currently registered.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LoadFile reads a CIDStdCat:Catalog document from path, validates it
// against the embedded catalog DTD using this module's own Parser, and
// populates a new Catalog with one MemBufEntitySource-free mapping per
// CIDStdCat:MapItem (each mapped system id is resolved lazily via a
// FileEntitySource rooted at MapTo, relative resolution is the caller's
// job since the catalog format stores exactly what the file says).
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Load(data, path)
}

// Load parses catalog document data (systemID is used only for diagnostics)
// the same way LoadFile does.
func Load(data []byte, systemID string) (*Catalog, error) {
	injected := injectDTD(data)

	p := cidxml.NewParser()
	p.SetOptions(cidxml.Validate)
	doc, diags, err := p.Parse(injected)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", systemID, err)
	}
	for _, d := range diags {
		if d.Severity() != cidxml.SeverityWarning {
			return nil, fmt.Errorf("catalog: %s: %s", systemID, d.Error())
		}
	}

	root, _, ok := doc.Find("/CIDStdCat:Catalog")
	if !ok {
		return nil, fmt.Errorf("catalog: %s: missing CIDStdCat:Catalog root", systemID)
	}
	rootElem, ok := root.(*cidxml.Element)
	if !ok {
		return nil, fmt.Errorf("catalog: %s: root is not an element", systemID)
	}

	cat := New()
	for item := rootElem.FirstChild(); item != nil; item = item.NextSibling() {
		elem, ok := item.(*cidxml.Element)
		if !ok {
			continue
		}
		pub, ok := elem.Attribute("PublicId")
		if !ok {
			return nil, fmt.Errorf("catalog: %s: MapItem missing PublicId", systemID)
		}
		mapTo, ok := elem.Attribute("MapTo")
		if !ok {
			return nil, fmt.Errorf("catalog: %s: MapItem missing MapTo", systemID)
		}
		cat.Add(pub.Value(), cidxml.NewFileEntitySource(mapTo.Value()))
	}
	return cat, nil
}

// injectDTD inserts the fixed catalog DTD immediately before the root
// start tag, which is legal per the XML prolog grammar (DOCTYPE may follow
// an XML declaration and precede the root element) regardless of what
// Misc content the caller's file already has in between.
func injectDTD(data []byte) []byte {
	idx := bytes.Index(data, []byte(rootStartTag))
	if idx < 0 {
		return data
	}
	out := make([]byte, 0, len(data)+len(catalogDTD))
	out = append(out, data[:idx]...)
	out = append(out, catalogDTD...)
	out = append(out, data[idx:]...)
	return out
}
