package cidxml

import (
	"strings"
	"sync"
)

// Document is the root of a parsed tree (design component C11). It owns
// the name pools for every declaration kind so that GetEntity,
// GetParameterEntity, and DTD validation all share one resolution table
// regardless of whether a declaration came from the internal or external
// subset.
type Document struct {
	docnode

	version    string
	encoding   string
	standalone int

	intSubset *DTD
	extSubset *DTD

	entities   *NamePool[*EntityDecl]
	pentities  *NamePool[*EntityDecl]
	notations  *NamePool[*NotationDecl]
	elementDecls *NamePool[*ElementDecl]

	elementPool sync.Pool
	textPool    sync.Pool
}

// NewDocument allocates an empty document. standalone follows the
// DocumentStandaloneType convention (StandaloneNoXMLDecl when there was no
// XML declaration at all).
func NewDocument(version, encoding string, standalone int) *Document {
	d := &Document{
		version:    version,
		encoding:   encoding,
		standalone: standalone,
		entities:   NewNamePool[*EntityDecl](),
		pentities:  NewNamePool[*EntityDecl](),
		notations:  NewNamePool[*NotationDecl](),
		elementDecls: NewNamePool[*ElementDecl](),
	}
	d.docnode.self = d
	d.docnode.etype = DocumentNode
	d.docnode.doc = d
	d.elementPool.New = func() any { return &Element{} }
	d.textPool.New = func() any { return &Text{} }
	for _, pre := range []*EntityDecl{EntityLT, EntityGT, EntityAmpersand, EntityApostrophe, EntityQuote} {
		d.entities.Insert(pre)
	}
	return d
}

func (d *Document) Version() string  { return d.version }
func (d *Document) Encoding() string  { return d.encoding }
func (d *Document) Standalone() int   { return d.standalone }

// IntSubset returns the document's internal-subset placeholder node,
// creating it on first access so callers (the tree builder's
// ProcessingInstruction handler) can always attach to it.
func (d *Document) IntSubset() *DTD {
	if d.intSubset == nil {
		d.intSubset = newDTD(d, "", "", "")
	}
	return d.intSubset
}

// ExtSubset returns the document's external-subset placeholder node,
// creating it on first access.
func (d *Document) ExtSubset() *DTD {
	if d.extSubset == nil {
		d.extSubset = newDTD(d, "", "", "")
	}
	return d.extSubset
}

// GetEntity looks up a general entity declaration by name.
func (d *Document) GetEntity(name string) (*EntityDecl, bool) {
	return d.entities.Lookup(name)
}

// GetParameterEntity looks up a parameter entity declaration by name.
func (d *Document) GetParameterEntity(name string) (*EntityDecl, bool) {
	return d.pentities.Lookup(name)
}

// DeclareEntity registers decl, into the general or parameter pool
// depending on decl.IsParameter. Re-declaration is a no-op (first
// declaration wins), mirroring the Well-Formedness Constraint on entity
// declarations.
func (d *Document) DeclareEntity(decl *EntityDecl) {
	pool := d.entities
	if decl.IsParameter {
		pool = d.pentities
	}
	if _, ok := pool.Lookup(decl.name); ok {
		return
	}
	pool.Insert(decl)
}

// DeclareNotation registers a notation declaration, first-wins.
func (d *Document) DeclareNotation(n *NotationDecl) {
	if _, ok := d.notations.Lookup(n.name); ok {
		return
	}
	d.notations.Insert(n)
}

// GetNotation looks up a notation declaration by name.
func (d *Document) GetNotation(name string) (*NotationDecl, bool) {
	return d.notations.Lookup(name)
}

// DeclareElement registers an element declaration, first-wins (a
// duplicate is reported by the caller as WarnDuplicateAttlist /
// ErrDuplicateElementDecl, not silently overwritten).
func (d *Document) DeclareElement(decl *ElementDecl) bool {
	if _, ok := d.elementDecls.Lookup(decl.name); ok {
		return false
	}
	d.elementDecls.Insert(decl)
	return true
}

// GetElementDecl looks up an element declaration by name, faulting in a
// placeholder (CreatedAsReferencedRoot/CreatedAsContentChild) if absent so
// post-DTD validation can still distinguish "used but never declared".
func (d *Document) GetElementDecl(name string, reason CreationReason) *ElementDecl {
	if decl, ok := d.elementDecls.Lookup(name); ok {
		return decl
	}
	decl := newElementDecl(name)
	decl.creationReason = reason
	d.elementDecls.Insert(decl)
	return decl
}

// CreateElement allocates (from the free list) and links an Element node
// named name, owned by d.
func (d *Document) CreateElement(name string) (*Element, error) {
	e := d.elementPool.Get().(*Element)
	*e = Element{}
	e.docnode.self = e
	e.docnode.etype = ElementNode
	e.docnode.doc = d
	e.localName = name
	e.docnode.name = name
	return e, nil
}

// releaseElement returns e to the free list. Called by the tree builder
// when a subtree is discarded (e.g. DOM pruning by a downstream tool), not
// by the parser core itself.
func (d *Document) releaseElement(e *Element) { d.elementPool.Put(e) }

// CreateText allocates (from the free list) a Text node.
func (d *Document) CreateText(data []byte) (*Text, error) {
	t := d.textPool.Get().(*Text)
	*t = Text{}
	t.docnode.self = t
	t.docnode.etype = TextNode
	t.docnode.doc = d
	t.docnode.name = "text"
	t.docnode.content = append(t.docnode.content, data...)
	return t, nil
}

func (d *Document) releaseText(t *Text) { d.textPool.Put(t) }

// CreateComment allocates a Comment node.
func (d *Document) CreateComment(data []byte) (*Comment, error) {
	c := &Comment{}
	c.docnode.self = c
	c.docnode.etype = CommentNode
	c.docnode.doc = d
	c.docnode.name = "comment"
	c.docnode.content = append(c.docnode.content, data...)
	return c, nil
}

// CreatePI allocates a ProcessingInstruction node.
func (d *Document) CreatePI(target, data string) (*ProcessingInstruction, error) {
	pi := &ProcessingInstruction{target: target}
	pi.docnode.self = pi
	pi.docnode.etype = ProcessingInstructionNode
	pi.docnode.doc = d
	pi.docnode.name = target
	pi.docnode.content = append(pi.docnode.content, []byte(data)...)
	return pi, nil
}

// CreateEntityRef allocates an EntityRef node referencing an un-expanded
// general entity (used when the parser runs with entity substitution
// turned off, an Open Question resolved in DESIGN.md in favour of always
// expanding in the tree builder; kept for API completeness and direct
// callers of the tree package).
func (d *Document) CreateEntityRef(name string) (*EntityRef, error) {
	r := &EntityRef{}
	r.docnode.self = r
	r.docnode.etype = EntityRefNode
	r.docnode.doc = d
	r.docnode.name = name
	return r, nil
}

// Find resolves a slash-separated path of the form "/name1/name2[n]/name3"
// against d's element tree: each step names a child element tag, optionally
// followed by a 1-based "[n]" occurrence index selecting among same-named
// siblings (default 1, i.e. the first match). It returns the matching node
// and the chain of 1-based child indices used to reach it, or ok=false if
// no such path exists. A full XPath evaluator is an explicit Non-goal; this
// is the hand-rolled subset the catalog loader needs.
func (d *Document) Find(path string) (Node, []int, bool) {
	steps := strings.Split(strings.TrimPrefix(path, "/"), "/")
	var cur Node = d
	var indices []int
	for _, step := range steps {
		if step == "" {
			continue
		}
		name, want := parsePathStep(step)
		child, idx, ok := findNthChild(cur, name, want)
		if !ok {
			return nil, nil, false
		}
		cur = child
		indices = append(indices, idx)
	}
	return cur, indices, true
}

// parsePathStep splits a single path component into its element name and
// requested 1-based occurrence (defaulting to 1 when no "[n]" is present).
func parsePathStep(step string) (name string, want int) {
	want = 1
	open := strings.IndexByte(step, '[')
	if open < 0 || !strings.HasSuffix(step, "]") {
		return step, want
	}
	name = step[:open]
	n := 0
	for _, r := range step[open+1 : len(step)-1] {
		if r < '0' || r > '9' {
			return step, 1
		}
		n = n*10 + int(r-'0')
	}
	if n > 0 {
		want = n
	}
	return name, want
}

// findNthChild walks n's children in order, returning the want'th (1-based)
// child whose Name matches name and its 1-based position among ALL of n's
// children.
func findNthChild(n Node, name string, want int) (Node, int, bool) {
	seen := 0
	pos := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		pos++
		if c.Name() != name {
			continue
		}
		seen++
		if seen == want {
			return c, pos, true
		}
	}
	return nil, 0, false
}

// DTD represents the document type declaration's subset bookkeeping node:
// its children are the PIs and comments that appeared inside the subset it
// stands for (`<!DOCTYPE ... [ ... ]>` for the internal one). The actual declarations it governs live in the document's
// name pools (design §5's pools are document-scoped, not subset-scoped, so
// validation sees internal- and external-subset declarations uniformly).
type DTD struct {
	docnode
	Name       string
	ExternalID string
	SystemID   string
}

func newDTD(doc *Document, name, externalID, systemID string) *DTD {
	dtd := &DTD{Name: name, ExternalID: externalID, SystemID: systemID}
	dtd.docnode.self = dtd
	dtd.docnode.etype = DTDNode
	dtd.docnode.doc = doc
	dtd.docnode.name = name
	return dtd
}
