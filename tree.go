package cidxml

import (
	"errors"

	"github.com/lestrrat/cidxml/internal/debug"
	"github.com/lestrrat/cidxml/sax"
)

// TreeBuilder is a SAX implementation that materialises the event
// stream into a Document tree (design component C11). It is the default
// handler NewParser wires up when no SAX handler is explicitly set.
type TreeBuilder struct {
	doc  *Document
	node Node
}

func (t *TreeBuilder) SetDocumentLocator(ctxif sax.Context, loc sax.DocumentLocator) error {
	return nil
}

func (t *TreeBuilder) StartDocument(ctxif sax.Context) error {
	if debug.Enabled {
		g := debug.IPrintf("START tree.StartDocument")
		defer g.IRelease("END tree.StartDocument")
	}

	ctx := ctxif.(*parserCtx)

	t.doc = ctx.doc
	return nil
}

func (t *TreeBuilder) EndDocument(ctxif sax.Context) error {
	if debug.Enabled {
		g := debug.IPrintf("START tree.EndDocument")
		defer g.IRelease("END tree.EndDocument")
	}
	ctx := ctxif.(*parserCtx)
	ctx.doc = t.doc
	t.doc = nil
	return nil
}

func (t *TreeBuilder) ProcessingInstruction(ctxif sax.Context, target, data string) error {
	ctx := ctxif.(*parserCtx)
	pi, err := ctx.doc.CreatePI(target, data)
	if err != nil {
		return err
	}

	switch {
	case ctx.inSubset == 1:
		return ctx.doc.IntSubset().AddChild(pi)
	case ctx.inSubset == 2:
		return ctx.doc.ExtSubset().AddChild(pi)
	case t.node == nil:
		return ctx.doc.AddChild(pi)
	}

	if t.node.Type() == ElementNode {
		return t.node.AddChild(pi)
	}
	return t.node.AddSibling(pi)
}

func (t *TreeBuilder) StartElement(ctxif sax.Context, elem sax.ParsedElement) error {
	if debug.Enabled {
		if elem.Prefix() != "" {
			debug.Printf("tree.StartElement: %s:%s", elem.Prefix(), elem.LocalName())
		} else {
			debug.Printf("tree.StartElement: %s", elem.LocalName())
		}
	}
	e, err := t.doc.CreateElement(elem.LocalName())
	if err != nil {
		return err
	}
	e.prefix = elem.Prefix()
	e.uri = elem.URI()
	if e.prefix != "" {
		e.docnode.name = e.prefix + ":" + e.localName
	}

	for _, attr := range elem.Attributes() {
		if err := e.SetAttribute(attr.LocalName(), attr.Value()); err != nil {
			return err
		}
	}

	if t.node == nil {
		if err := t.doc.AddChild(e); err != nil {
			return err
		}
	} else if err := t.node.AddChild(e); err != nil {
		return err
	}

	t.node = e
	return nil
}

func (t *TreeBuilder) EndElement(ctxif sax.Context, elem sax.ParsedElement) error {
	if debug.Enabled {
		if elem.Prefix() != "" {
			debug.Printf("tree.EndElement: %s:%s", elem.Prefix(), elem.LocalName())
		} else {
			debug.Printf("tree.EndElement: %s", elem.LocalName())
		}
	}
	if e, ok := t.node.(*Element); ok && e.LocalName() == elem.LocalName() && e.Prefix() == elem.Prefix() && e.URI() == elem.URI() {
		t.node = t.node.Parent()
	}
	return nil
}

func (t *TreeBuilder) Characters(ctxif sax.Context, data []byte) error {
	if debug.Enabled {
		g := debug.IPrintf("START tree.Characters: '%s' (%v)", data, data)
		defer g.IRelease("END tree.Characters")
	}

	if t.node == nil {
		return errors.New("text content placed in wrong location")
	}

	return t.node.AddContent(data)
}

func (t *TreeBuilder) StartCDATA(_ sax.Context) error { return nil }
func (t *TreeBuilder) EndCDATA(_ sax.Context) error   { return nil }

func (t *TreeBuilder) Comment(ctxif sax.Context, data []byte) error {
	if debug.Enabled {
		g := debug.IPrintf("START tree.Comment: %s", data)
		defer g.IRelease("END tree.Comment")
	}

	ctx := ctxif.(*parserCtx)
	if ctx.inSubset != 0 {
		c, err := ctx.doc.CreateComment(data)
		if err != nil {
			return err
		}
		if ctx.inSubset == 1 {
			return ctx.doc.IntSubset().AddChild(c)
		}
		return ctx.doc.ExtSubset().AddChild(c)
	}

	if t.node == nil {
		return errors.New("comment placed in wrong location")
	}

	e, err := t.doc.CreateComment(data)
	if err != nil {
		return err
	}
	return t.node.AddChild(e)
}

func (t *TreeBuilder) InternalSubset(ctxif sax.Context, name, eid, uri string) error { return nil }
func (t *TreeBuilder) ExternalSubset(ctxif sax.Context, name, eid, uri string) error { return nil }

func (t *TreeBuilder) GetEntity(ctxif sax.Context, name string) (sax.Entity, error) {
	ctx := ctxif.(*parserCtx)

	if ctx.inSubset == 0 {
		if ret := resolvePredefinedEntity(name); ret != nil {
			return ret, nil
		}
	}

	var ret *EntityDecl
	var ok bool
	if ctx.doc == nil || ctx.doc.standalone != 1 {
		ret, _ = ctx.doc.GetEntity(name)
	} else {
		if ctx.inSubset == 2 {
			ctx.doc.standalone = 0
			ret, _ = ctx.doc.GetEntity(name)
			ctx.doc.standalone = 1
		} else {
			ret, ok = ctx.doc.GetEntity(name)
			if !ok {
				ctx.doc.standalone = 0
				ret, ok = ctx.doc.GetEntity(name)
				if !ok {
					return nil, errors.New("entity(" + name + ") document marked standalone but requires external subset")
				}
				ctx.doc.standalone = 1
			}
		}
	}
	if ret == nil {
		return nil, nil
	}
	return ret, nil
}

func (t *TreeBuilder) GetParameterEntity(ctxif sax.Context, name string) (sax.Entity, error) {
	if ctxif == nil {
		return nil, ErrInvalidParserCtx
	}

	ctx := ctxif.(*parserCtx)
	doc := ctx.doc
	if doc == nil {
		return nil, ErrInvalidDocument
	}

	if ret, ok := doc.GetParameterEntity(name); ok {
		return ret, nil
	}

	return nil, ErrEntityNotFound
}

func (t *TreeBuilder) AttributeDecl(ctx sax.Context, eName string, aName string, typ int, deftype int, value sax.AttributeDefaultValue, enum sax.Enumeration) error {
	return nil
}

func (t *TreeBuilder) ElementDecl(ctx sax.Context, name string, typ int, content sax.ElementContent) error {
	return nil
}

func (t *TreeBuilder) EndDTD(ctx sax.Context) error { return nil }

func (t *TreeBuilder) EndEntity(ctx sax.Context, name string) error { return nil }

func (t *TreeBuilder) ExternalEntityDecl(ctx sax.Context, name string, publicID string, systemID string) error {
	return nil
}

func (t *TreeBuilder) GetExternalSubset(ctx sax.Context, name string, baseURI string) error {
	return nil
}

func (t *TreeBuilder) IgnorableWhitespace(ctxif sax.Context, content []byte) error {
	if debug.Enabled {
		g := debug.IPrintf("START tree.IgnorableWhitespace (%v)", content)
		defer g.IRelease("END tree.IgnorableWhitespace")
	}

	ctx := ctxif.(*parserCtx)
	if ctx.keepBlanks {
		return t.Characters(ctx, content)
	}
	return nil
}

func (t *TreeBuilder) InternalEntityDecl(ctx sax.Context, name string, value string) error {
	return nil
}

func (t *TreeBuilder) NotationDecl(ctx sax.Context, name string, publicID string, systemID string) error {
	return nil
}

func (t *TreeBuilder) UnparsedEntityDecl(ctx sax.Context, name string, typ int, publicID string, systemID string, notation string) error {
	return nil
}

func (t *TreeBuilder) SkippedEntity(ctx sax.Context, name string) error { return nil }

func (t *TreeBuilder) ResolveEntity(ctx sax.Context, name string, publicID string, baseURI string, systemID string) (sax.Entity, error) {
	return nil, errors.New("entity not found")
}

func (t *TreeBuilder) StartDTD(ctx sax.Context, name string, publicID string, systemID string) error {
	return nil
}

func (t *TreeBuilder) StartEntity(ctx sax.Context, name string) error { return nil }
