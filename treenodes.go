package cidxml

import "strings"

// Element is a tag node: it owns an attribute chain (properties, linked
// through each Attribute's NextSibling field rather than the child list).
// Its ns/nsDefs fields hold xmlns* bindings; the tree builder leaves them
// empty.
type Element struct {
	docnode

	localName string
	prefix    string
	uri       string

	properties *Attribute
	lastAttr   *Attribute

	nsDefs []*Namespace
	ns     *Namespace
}

func (e *Element) LocalName() string      { return e.localName }
func (e *Element) Prefix() string         { return e.prefix }
func (e *Element) URI() string            { return e.uri }
func (e *Element) Namespace() *Namespace  { return e.ns }
func (e *Element) Namespaces() []*Namespace { return e.nsDefs }

// AddContent overrides docnode.AddContent: consecutive character data is
// coalesced into the element's current last Text child rather than kept
// in the element's own content buffer (design §4.9 — adjacent character
// data within one element collapses into a single text node).
func (e *Element) AddContent(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if last, ok := e.lastChild.(*Text); ok {
		last.docnode.content = growAppend(last.docnode.content, data)
		return nil
	}
	var doc *Document
	if e.docnode.doc != nil {
		doc = e.docnode.doc
	} else {
		doc = NewDocument("1.0", "", StandaloneNoXMLDecl)
	}
	t, _ := doc.CreateText(nil)
	t.docnode.content = growAppend(t.docnode.content, data)
	return e.AddChild(t)
}

// SetAttribute sets (or replaces) the attribute named name to value. name
// may carry a "prefix:local" qualification; namespace resolution beyond
// recording the prefix is an explicit Non-goal.
func (e *Element) SetAttribute(name, value string) error {
	local := name
	prefix := ""
	if i := strings.IndexByte(name, ':'); i >= 0 {
		prefix, local = name[:i], name[i+1:]
	}
	for a := e.properties; a != nil; a = a.next_ {
		if a.docnode.name == name {
			a.docnode.content = append(a.docnode.content[:0], value...)
			return nil
		}
	}
	a := &Attribute{localName: local, prefix: prefix}
	a.docnode.self = a
	a.docnode.etype = AttributeNode
	a.docnode.doc = e.docnode.doc
	a.docnode.name = name
	a.docnode.content = []byte(value)
	a.docnode.parent = e
	if e.properties == nil {
		e.properties = a
	} else {
		e.lastAttr.next_ = a
	}
	e.lastAttr = a
	return nil
}

// Attribute gets the attribute named name, if set.
func (e *Element) Attribute(name string) (*Attribute, bool) {
	for a := e.properties; a != nil; a = a.next_ {
		if a.docnode.name == name {
			return a, true
		}
	}
	return nil, false
}

// Attributes returns every attribute set on e, in declaration order.
func (e *Element) Attributes() []*Attribute {
	var out []*Attribute
	for a := e.properties; a != nil; a = a.next_ {
		out = append(out, a)
	}
	return out
}

// Attribute is a name=value pair on an Element. Its NextSibling field is
// repurposed (via next_) to chain attributes off Element.properties; it is
// never linked into the document's child tree.
type Attribute struct {
	docnode
	localName string
	prefix    string
	atype     AttributeType
	def       AttributeDefault
	next_     *Attribute
}

func (a *Attribute) Value() string      { return string(a.docnode.content) }
func (a *Attribute) LocalName() string  { return a.localName }
func (a *Attribute) Prefix() string     { return a.prefix }
func (a *Attribute) NextSibling() Node {
	if a.next_ == nil {
		return nil
	}
	return a.next_
}

// Text is a character-data leaf.
type Text struct{ docnode }

// Comment is a `<!-- ... -->` leaf.
type Comment struct{ docnode }

// ProcessingInstruction is a `<?target data?>` leaf.
type ProcessingInstruction struct {
	docnode
	target string
}

func (p *ProcessingInstruction) Target() string { return p.target }
func (p *ProcessingInstruction) Data() string    { return string(p.docnode.content) }

// EntityRef is an unexpanded general-entity reference node. The tree
// builder always expands entities, so these come only from direct
// Document.CreateEntityRef calls.
type EntityRef struct{ docnode }
