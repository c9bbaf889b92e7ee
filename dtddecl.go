package cidxml

// EntityDecl is a declared entity, general or parameter, internal or
// external (design §3/§5). It satisfies both Poolable (for storage in a
// Document's NamePool) and sax.Entity (for exposure through
// GetEntity/GetParameterEntity/ResolveEntity).
type EntityDecl struct {
	docnode

	entityType  EntityType
	publicID    string
	systemID    string
	uri         string // resolved, base-relative system id
	value       string // internal replacement text, or cached external content
	notationName string // set for unparsed external general entities

	IsParameter bool
	special     bool // one of the five predefined entities
	owner       bool // the tree builder materialised children for this entity
	checked     int

	poolID int
}

func newEntity(name string, etype EntityType, publicID, systemID, value string) *EntityDecl {
	e := &EntityDecl{entityType: etype, publicID: publicID, systemID: systemID, value: value}
	e.docnode.self = e
	e.docnode.etype = EntityNode
	e.docnode.name = name
	e.docnode.content = []byte(value)
	return e
}

func (e *EntityDecl) PublicID() string { return e.publicID }
func (e *EntityDecl) SystemID() string { return e.systemID }
func (e *EntityDecl) Content() string  { return e.value }

// EntityTypeOf reports the declared kind (internal/external,
// general/parameter) used by validation and by DeclHandler.
func (e *EntityDecl) EntityTypeOf() EntityType { return e.entityType }

func (e *EntityDecl) PoolKey() string    { return e.docnode.name }
func (e *EntityDecl) PoolID() int        { return e.poolID }
func (e *EntityDecl) setPoolID(id int)   { e.poolID = id }

// The five predefined entities, always resolvable regardless of any DTD.
var (
	EntityAmpersand = newEntity("amp", InternalPredefinedEntity, "", "", "&")
	EntityApostrophe = newEntity("apos", InternalPredefinedEntity, "", "", "'")
	EntityGT        = newEntity("gt", InternalPredefinedEntity, "", "", ">")
	EntityLT        = newEntity("lt", InternalPredefinedEntity, "", "", "<")
	EntityQuote     = newEntity("quot", InternalPredefinedEntity, "", "", `"`)
)

func init() {
	for _, e := range []*EntityDecl{EntityAmpersand, EntityApostrophe, EntityGT, EntityLT, EntityQuote} {
		e.special = true
	}
}

// resolvePredefinedEntity returns one of the five predefined entities by
// name, or nil if name isn't one of them.
func resolvePredefinedEntity(name string) *EntityDecl {
	switch name {
	case "amp":
		return EntityAmpersand
	case "apos":
		return EntityApostrophe
	case "gt":
		return EntityGT
	case "lt":
		return EntityLT
	case "quot":
		return EntityQuote
	}
	return nil
}

// NotationDecl is a declared NOTATION, referenced by unparsed entities and
// by NOTATION-typed attributes (design §5).
type NotationDecl struct {
	docnode
	publicID string
	systemID string
	poolID   int
}

func newNotationDecl(name, publicID, systemID string) *NotationDecl {
	n := &NotationDecl{publicID: publicID, systemID: systemID}
	n.docnode.self = n
	n.docnode.etype = NotationNode
	n.docnode.name = name
	return n
}

func (n *NotationDecl) PublicID() string { return n.publicID }
func (n *NotationDecl) SystemID() string { return n.systemID }
func (n *NotationDecl) PoolKey() string  { return n.docnode.name }
func (n *NotationDecl) PoolID() int      { return n.poolID }
func (n *NotationDecl) setPoolID(id int) { n.poolID = id }

// AttributeDecl is one ATTLIST entry: the declared type, default
// disposition, and (for Enumeration/Notation types) the allowed token set.
type AttributeDecl struct {
	docnode

	elementName string
	atype       AttributeType
	def         AttributeDefault
	defaultVal  string
	tree        Enumeration
	provided    bool
}

func newAttributeDecl(elementName, attrName string, atype AttributeType, def AttributeDefault, defaultVal string, tree Enumeration) *AttributeDecl {
	a := &AttributeDecl{elementName: elementName, atype: atype, def: def, defaultVal: defaultVal, tree: tree}
	a.docnode.self = a
	a.docnode.etype = AttributeDeclNode
	a.docnode.name = attrName
	return a
}

func (a *AttributeDecl) Mode() int  { return int(a.def) }
func (a *AttributeDecl) Value() string { return a.defaultVal }
func (a *AttributeDecl) Values() []string { return a.tree }

// ElementDecl is one ELEMENT declaration plus the ATTLIST entries
// accumulated for it (design §3/§5): its raw content-spec AST, the
// compiled runtime content model (DFA or mixed-content id set), the
// derived text policy, and the attribute table keyed by attribute name.
type ElementDecl struct {
	docnode

	decltype ElementTypeVal
	spec     *ContentSpecNode
	compiled *CompiledContentModel
	textPolicy TextPolicy

	attrs map[string]*AttributeDecl
	attrOrder []string

	declared       bool
	creationReason CreationReason
	poolID         int
}

func newElementDecl(name string) *ElementDecl {
	e := &ElementDecl{attrs: map[string]*AttributeDecl{}}
	e.docnode.self = e
	e.docnode.etype = ElementDeclNode
	e.docnode.name = name
	return e
}

func (e *ElementDecl) PoolKey() string  { return e.docnode.name }
func (e *ElementDecl) PoolID() int      { return e.poolID }
func (e *ElementDecl) setPoolID(id int) { e.poolID = id }

// AddAttribute registers decl under its own name, first-wins per the WFC
// on duplicate ATTLIST entries (the caller reports WarnDuplicateAttlist
// when AddAttribute reports false).
func (e *ElementDecl) AddAttribute(decl *AttributeDecl) bool {
	if _, ok := e.attrs[decl.docnode.name]; ok {
		return false
	}
	e.attrs[decl.docnode.name] = decl
	e.attrOrder = append(e.attrOrder, decl.docnode.name)
	return true
}

// Attribute returns the ATTLIST entry for attrName, if any.
func (e *ElementDecl) Attribute(attrName string) (*AttributeDecl, bool) {
	d, ok := e.attrs[attrName]
	return d, ok
}

// Attributes returns every ATTLIST entry in declaration order.
func (e *ElementDecl) Attributes() []*AttributeDecl {
	out := make([]*AttributeDecl, 0, len(e.attrOrder))
	for _, n := range e.attrOrder {
		out = append(out, e.attrs[n])
	}
	return out
}
