package sax

// Handler adapts the SAX interfaces into plain exported function fields, so
// a caller can wire up only the events it cares about instead of writing a
// full type satisfying every interface in this package. A nil field is
// simply not called: each method checks its field and returns zero values
// when it is unset.
type Handler struct {
	SetDocumentLocatorHandler func(ctx Context, loc DocumentLocator) error
	StartDocumentHandler      func(ctx Context) error
	EndDocumentHandler        func(ctx Context) error
	ProcessingInstructionHandler func(ctx Context, target, data string) error
	StartElementHandler       func(ctx Context, elem ParsedElement) error
	EndElementHandler         func(ctx Context, elem ParsedElement) error
	CharactersHandler         func(ctx Context, content []byte) error
	IgnorableWhitespaceHandler func(ctx Context, content []byte) error
	SkippedEntityHandler      func(ctx Context, name string) error

	NotationDeclHandler       func(ctx Context, name, publicID, systemID string) error
	UnparsedEntityDeclHandler func(ctx Context, name string, typ int, publicID, systemID, notation string) error

	AttributeDeclHandler      func(ctx Context, eName, aName string, typ, deftype int, value AttributeDefaultValue, enum Enumeration) error
	ElementDeclHandler        func(ctx Context, name string, typ int, content ElementContent) error
	ExternalEntityDeclHandler func(ctx Context, name, publicID, systemID string) error
	InternalEntityDeclHandler func(ctx Context, name, value string) error

	CommentHandler    func(ctx Context, content []byte) error
	StartCDATAHandler func(ctx Context) error
	EndCDATAHandler   func(ctx Context) error
	StartDTDHandler   func(ctx Context, name, publicID, systemID string) error
	EndDTDHandler     func(ctx Context) error
	StartEntityHandler func(ctx Context, name string) error
	EndEntityHandler   func(ctx Context, name string) error

	GetEntityHandler          func(ctx Context, name string) (Entity, error)
	GetParameterEntityHandler func(ctx Context, name string) (Entity, error)
	ResolveEntityHandler      func(ctx Context, name, publicID, baseURI, systemID string) (Entity, error)
	GetExternalSubsetHandler  func(ctx Context, name, baseURI string) error

	InternalSubsetHandler func(ctx Context, name, publicID, systemID string) error
	ExternalSubsetHandler func(ctx Context, name, publicID, systemID string) error
}

// New returns an empty Handler. Every field starts nil; set only the ones
// you need.
func New() *Handler { return &Handler{} }

func (h *Handler) SetDocumentLocator(ctx Context, loc DocumentLocator) error {
	if h.SetDocumentLocatorHandler == nil {
		return nil
	}
	return h.SetDocumentLocatorHandler(ctx, loc)
}

func (h *Handler) StartDocument(ctx Context) error {
	if h.StartDocumentHandler == nil {
		return nil
	}
	return h.StartDocumentHandler(ctx)
}

func (h *Handler) EndDocument(ctx Context) error {
	if h.EndDocumentHandler == nil {
		return nil
	}
	return h.EndDocumentHandler(ctx)
}

func (h *Handler) ProcessingInstruction(ctx Context, target, data string) error {
	if h.ProcessingInstructionHandler == nil {
		return nil
	}
	return h.ProcessingInstructionHandler(ctx, target, data)
}

func (h *Handler) StartElement(ctx Context, elem ParsedElement) error {
	if h.StartElementHandler == nil {
		return nil
	}
	return h.StartElementHandler(ctx, elem)
}

func (h *Handler) EndElement(ctx Context, elem ParsedElement) error {
	if h.EndElementHandler == nil {
		return nil
	}
	return h.EndElementHandler(ctx, elem)
}

func (h *Handler) Characters(ctx Context, content []byte) error {
	if h.CharactersHandler == nil {
		return nil
	}
	return h.CharactersHandler(ctx, content)
}

func (h *Handler) IgnorableWhitespace(ctx Context, content []byte) error {
	if h.IgnorableWhitespaceHandler == nil {
		return nil
	}
	return h.IgnorableWhitespaceHandler(ctx, content)
}

func (h *Handler) SkippedEntity(ctx Context, name string) error {
	if h.SkippedEntityHandler == nil {
		return nil
	}
	return h.SkippedEntityHandler(ctx, name)
}

func (h *Handler) NotationDecl(ctx Context, name, publicID, systemID string) error {
	if h.NotationDeclHandler == nil {
		return nil
	}
	return h.NotationDeclHandler(ctx, name, publicID, systemID)
}

func (h *Handler) UnparsedEntityDecl(ctx Context, name string, typ int, publicID, systemID, notation string) error {
	if h.UnparsedEntityDeclHandler == nil {
		return nil
	}
	return h.UnparsedEntityDeclHandler(ctx, name, typ, publicID, systemID, notation)
}

func (h *Handler) AttributeDecl(ctx Context, eName, aName string, typ, deftype int, value AttributeDefaultValue, enum Enumeration) error {
	if h.AttributeDeclHandler == nil {
		return nil
	}
	return h.AttributeDeclHandler(ctx, eName, aName, typ, deftype, value, enum)
}

func (h *Handler) ElementDecl(ctx Context, name string, typ int, content ElementContent) error {
	if h.ElementDeclHandler == nil {
		return nil
	}
	return h.ElementDeclHandler(ctx, name, typ, content)
}

func (h *Handler) ExternalEntityDecl(ctx Context, name, publicID, systemID string) error {
	if h.ExternalEntityDeclHandler == nil {
		return nil
	}
	return h.ExternalEntityDeclHandler(ctx, name, publicID, systemID)
}

func (h *Handler) InternalEntityDecl(ctx Context, name, value string) error {
	if h.InternalEntityDeclHandler == nil {
		return nil
	}
	return h.InternalEntityDeclHandler(ctx, name, value)
}

func (h *Handler) Comment(ctx Context, content []byte) error {
	if h.CommentHandler == nil {
		return nil
	}
	return h.CommentHandler(ctx, content)
}

func (h *Handler) StartCDATA(ctx Context) error {
	if h.StartCDATAHandler == nil {
		return nil
	}
	return h.StartCDATAHandler(ctx)
}

func (h *Handler) EndCDATA(ctx Context) error {
	if h.EndCDATAHandler == nil {
		return nil
	}
	return h.EndCDATAHandler(ctx)
}

func (h *Handler) StartDTD(ctx Context, name, publicID, systemID string) error {
	if h.StartDTDHandler == nil {
		return nil
	}
	return h.StartDTDHandler(ctx, name, publicID, systemID)
}

func (h *Handler) EndDTD(ctx Context) error {
	if h.EndDTDHandler == nil {
		return nil
	}
	return h.EndDTDHandler(ctx)
}

func (h *Handler) StartEntity(ctx Context, name string) error {
	if h.StartEntityHandler == nil {
		return nil
	}
	return h.StartEntityHandler(ctx, name)
}

func (h *Handler) EndEntity(ctx Context, name string) error {
	if h.EndEntityHandler == nil {
		return nil
	}
	return h.EndEntityHandler(ctx, name)
}

func (h *Handler) GetEntity(ctx Context, name string) (Entity, error) {
	if h.GetEntityHandler == nil {
		return nil, nil
	}
	return h.GetEntityHandler(ctx, name)
}

func (h *Handler) GetParameterEntity(ctx Context, name string) (Entity, error) {
	if h.GetParameterEntityHandler == nil {
		return nil, nil
	}
	return h.GetParameterEntityHandler(ctx, name)
}

func (h *Handler) ResolveEntity(ctx Context, name, publicID, baseURI, systemID string) (Entity, error) {
	if h.ResolveEntityHandler == nil {
		return nil, nil
	}
	return h.ResolveEntityHandler(ctx, name, publicID, baseURI, systemID)
}

func (h *Handler) GetExternalSubset(ctx Context, name, baseURI string) error {
	if h.GetExternalSubsetHandler == nil {
		return nil
	}
	return h.GetExternalSubsetHandler(ctx, name, baseURI)
}

func (h *Handler) InternalSubset(ctx Context, name, publicID, systemID string) error {
	if h.InternalSubsetHandler == nil {
		return nil
	}
	return h.InternalSubsetHandler(ctx, name, publicID, systemID)
}

func (h *Handler) ExternalSubset(ctx Context, name, publicID, systemID string) error {
	if h.ExternalSubsetHandler == nil {
		return nil
	}
	return h.ExternalSubsetHandler(ctx, name, publicID, systemID)
}
