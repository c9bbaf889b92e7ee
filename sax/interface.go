// Package sax defines the event-based collaborator interfaces the parser
// core drives: ContentHandler for the document structure, DTDHandler/
// DeclHandler for DTD declarations, LexicalHandler for comments/CDATA/
// entity boundaries, and EntityResolver for external-entity and subset
// resolution. A single concrete type may implement several of these;
// Parser.SetSAXHandler accepts anything implementing cidxml.SAX (the
// union of all of them), and Handler (handler.go) offers a func-field
// adapter so callers can set only the callbacks they need.
package sax

// Context is always passed as the first argument to SAX handlers. It is
// intentionally left opaque so applications can type-assert to whatever
// internal state the parser core actually passes (*parserCtx).
type Context interface{}

// DocumentLocator reports the current position in the input, for handlers
// that want to annotate their own diagnostics.
type DocumentLocator interface {
	SystemID() string
	Line() int
	Column() int
}

// Namespace is a prefix-URI binding reported alongside a StartElement
// event.
type Namespace interface {
	Prefix() string
	URI() string
}

// Attribute is one attribute reported alongside a StartElement event.
type Attribute interface {
	Name() string
	LocalName() string
	Prefix() string
	URI() string
	Value() string
	Specified() bool
}

// ParsedElement is the element-tag shape reported to Start/EndElement.
type ParsedElement interface {
	Name() string
	Prefix() string
	URI() string
	LocalName() string
	Namespaces() []Namespace
	Attributes() []ParsedAttribute
}

// ParsedAttribute is the attribute shape exposed through ParsedElement.
type ParsedAttribute interface {
	Prefix() string
	LocalName() string
	Value() string
}

// Entity is the shape of a resolvable entity declaration (general or
// parameter), as exposed to GetEntity/GetParameterEntity/ResolveEntity.
type Entity interface {
	Name() string
	PublicID() string
	SystemID() string
	Content() string
}

// AttributeDefaultValue carries an ATTLIST default's disposition (#FIXED,
// #IMPLIED, #REQUIRED, or an explicit default string) to AttributeDecl.
type AttributeDefaultValue interface {
	Mode() int // mirrors cidxml.AttributeDefault
	Value() string
}

// Enumeration is the (a|b|c) or NOTATION (a|b|c) token list of an
// attribute declaration.
type Enumeration interface {
	Values() []string
}

// ElementContent is the SAX-facing description of a compiled content
// model, handed to DeclHandler.ElementDecl. The cidxml parser passes nil
// here; it is kept as an interface so the sax package has no dependency on
// cidxml.
type ElementContent interface{}

// ContentHandler is the core SAX2 document-structure handler.
type ContentHandler interface {
	SetDocumentLocator(ctx Context, loc DocumentLocator) error
	StartDocument(ctx Context) error
	EndDocument(ctx Context) error
	ProcessingInstruction(ctx Context, target string, data string) error
	StartElement(ctx Context, elem ParsedElement) error
	EndElement(ctx Context, elem ParsedElement) error
	Characters(ctx Context, content []byte) error
	IgnorableWhitespace(ctx Context, content []byte) error
	SkippedEntity(ctx Context, name string) error
}

// DTDHandler receives notification of notation and unparsed-entity
// declarations. See http://sax.sourceforge.net/apidoc/org/xml/sax/DTDHandler.html
type DTDHandler interface {
	NotationDecl(ctx Context, name string, publicID string, systemID string) error
	UnparsedEntityDecl(ctx Context, name string, typ int, publicID string, systemID string, notation string) error
}

// DeclHandler is a SAX2 extension handler for DTD declaration events.
type DeclHandler interface {
	AttributeDecl(ctx Context, eName string, aName string, typ int, deftype int, value AttributeDefaultValue, enum Enumeration) error
	ElementDecl(ctx Context, name string, typ int, content ElementContent) error
	ExternalEntityDecl(ctx Context, name string, publicID string, systemID string) error
	InternalEntityDecl(ctx Context, name string, value string) error
}

// LexicalHandler is a SAX2 extension for lexical events: comments, CDATA
// boundaries, and DTD/entity scope markers.
type LexicalHandler interface {
	Comment(ctx Context, content []byte) error
	StartCDATA(ctx Context) error
	EndCDATA(ctx Context) error
	StartDTD(ctx Context, name string, publicID string, systemID string) error
	EndDTD(ctx Context) error
	StartEntity(ctx Context, name string) error
	EndEntity(ctx Context, name string) error
}

// EntityResolver maps external entity references and the document's
// external subset to input sources, and resolves entity/parameter-entity
// names already declared.
type EntityResolver interface {
	GetEntity(ctx Context, name string) (Entity, error)
	GetParameterEntity(ctx Context, name string) (Entity, error)
	ResolveEntity(ctx Context, name string, publicID string, baseURI string, systemID string) (Entity, error)
	GetExternalSubset(ctx Context, name string, baseURI string) error
}

// Extensions groups two non-standard notifications fired once the internal
// and external DTD subsets (if any) have been located.
type Extensions interface {
	InternalSubset(ctx Context, name string, publicID string, systemID string) error
	ExternalSubset(ctx Context, name string, publicID string, systemID string) error
}
