package cidxml

import (
	"fmt"
	"os"
	"strings"

	"github.com/lestrrat/cidxml/internal/debug"
	"github.com/lestrrat/cidxml/sax"
)

// SAX is the full collaborator surface the parser core drives. TreeBuilder
// implements it; callers may substitute their own (directly, or via
// sax.New()'s func-field adapter).
type SAX interface {
	sax.ContentHandler
	sax.DTDHandler
	sax.DeclHandler
	sax.LexicalHandler
	sax.EntityResolver
	sax.Extensions
}

// Parser drives the spooler/entity-manager character stream through the
// prolog/content/post-content state machine (design component C9),
// reporting events to a SAX handler and, when Options has Validate set,
// running every tag and attribute through the DTD validator.
type Parser struct {
	handler   SAX
	opts      Options
	flags     EventFlags
	maxErrors int
}

// NewParser returns a parser with the default tree-building handler and no
// validation.
func NewParser() *Parser {
	return &Parser{
		handler:   &TreeBuilder{},
		flags:     FlagAll,
		maxErrors: 200,
	}
}

// SetSAXHandler overrides the default tree-building handler.
func (p *Parser) SetSAXHandler(h SAX) { p.handler = h }

// SetOptions sets the parser's behavioural bitflags (Validate, IgnoreDTD,
// IgnoreBadChars).
func (p *Parser) SetOptions(o Options) { p.opts = o }

// SetMaxErrors bounds how many well-formedness/validation errors accumulate
// before the parse aborts early with ErrMaxErrorsReached.
func (p *Parser) SetMaxErrors(n int) { p.maxErrors = n }

// parserCtx is the opaque sax.Context the parser passes to every handler
// callback; handlers that need parser internals (the tree builder) type
// assert it back to *parserCtx.
type parserCtx struct {
	p  *Parser
	em *EntityManager

	version    string
	encoding   string
	standalone int

	doc *Document

	// inSubset is 0 outside any DTD subset, 1 while scanning the internal
	// subset, 2 while scanning an external subset file. Parameter-entity
	// replacement text keeps the value of the subset that referenced it.
	inSubset int

	keepBlanks bool
	validate   bool

	nodeStack []Node

	// validStack tracks, for each currently-open element, the content model
	// cursor validateStartTag/validateEndTag advance and check; idsSeen and
	// idrefsSeen accumulate ID/IDREF bookkeeping across the whole document
	// for postDTDValidate's final cross-reference pass.
	validStack  []*validFrame
	idsSeen     map[string]bool
	idrefsSeen  []string

	errCount int
	systemID string
	diags    []Diagnostic

	charBuf strings.Builder
}

func (ctx *parserCtx) peekNode() Node {
	if len(ctx.nodeStack) == 0 {
		return nil
	}
	return ctx.nodeStack[len(ctx.nodeStack)-1]
}

func (ctx *parserCtx) pushNode(n Node) { ctx.nodeStack = append(ctx.nodeStack, n) }
func (ctx *parserCtx) popNode() {
	if len(ctx.nodeStack) == 0 {
		return
	}
	ctx.nodeStack = ctx.nodeStack[:len(ctx.nodeStack)-1]
}

func (ctx *parserCtx) report(code ErrorCode, format string, args ...any) error {
	line, col := 0, 0
	if sp := ctx.em.TopSpooler(); sp != nil {
		line, col = sp.Line(), sp.Column()
	}
	d := Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Line: line, Column: col, SystemID: ctx.systemID}
	ctx.diags = append(ctx.diags, d)
	if debug.Enabled {
		debug.Printf("diagnostic: %s", d.Error())
	}
	if d.Severity() != SeverityWarning {
		ctx.errCount++
		if ctx.p.maxErrors > 0 && ctx.errCount >= ctx.p.maxErrors {
			return &errMaxErrors{}
		}
	}
	return nil
}

// ParseFile opens and parses the file at path.
func (p *Parser) ParseFile(path string) (*Document, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cidxml: %w", err)
	}
	return p.parse(path, data)
}

// Parse parses data, treating it as an anonymous in-memory document.
func (p *Parser) Parse(data []byte) (*Document, []Diagnostic, error) {
	return p.parse("<memory>", data)
}

func (p *Parser) parse(systemID string, data []byte) (*Document, []Diagnostic, error) {
	src := NewMemBufEntitySource(systemID, data)
	em := NewEntityManager()
	sp, err := em.NewSpoolerFromSource(src)
	if err != nil {
		return nil, nil, err
	}
	if err := em.PushEntity(sp, nil); err != nil {
		return nil, nil, err
	}
	defer em.CloseAll()

	ctx := &parserCtx{
		p:          p,
		em:         em,
		standalone: StandaloneNoXMLDecl,
		systemID:   systemID,
		validate:   p.opts&Validate != 0,
		keepBlanks: true,
	}

	if err := p.handler.SetDocumentLocator(ctx, nil); err != nil {
		return nil, ctx.diags, err
	}

	if err := p.parseProlog(ctx); err != nil {
		return nil, ctx.diags, unwrapControl(err)
	}
	if err := p.handler.StartDocument(ctx); err != nil {
		return nil, ctx.diags, err
	}
	if err := p.parseElement(ctx); err != nil {
		return nil, ctx.diags, unwrapControl(err)
	}
	if err := p.parseMisc(ctx); err != nil {
		return nil, ctx.diags, unwrapControl(err)
	}
	if err := p.handler.EndDocument(ctx); err != nil {
		return nil, ctx.diags, err
	}

	if ctx.validate {
		postDTDValidate(ctx)
	}

	return ctx.doc, ctx.diags, nil
}

// unwrapControl turns the two internal control-flow exceptions into plain
// errors for the public API; they never mean anything outside Parse.
func unwrapControl(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errMaxErrors); ok {
		return ErrMaxErrorsReached
	}
	if eoe, ok := err.(*errEndOfEntity); ok {
		return fmt.Errorf("cidxml: unexpected end of entity %v", eoe.decl)
	}
	return err
}

func (c ErrorCode) Error() string { return fmt.Sprintf("cidxml: error code %d (%s)", int(c), c.Severity()) }

// firstFatal returns the first well-formedness-or-worse diagnostic as an
// error, or nil if every collected diagnostic was a mere warning.
func firstFatal(diags []Diagnostic, _ *TreeBuilder) error {
	for _, d := range diags {
		if d.Severity() != SeverityWarning {
			return d
		}
	}
	return nil
}

// --- prolog -----------------------------------------------------------

func (p *Parser) parseProlog(ctx *parserCtx) error {
	ctx.standalone = StandaloneNoXMLDecl
	if ctx.em.TopSpooler().SkippedString("<?xml") {
		if err := p.parseXMLDecl(ctx); err != nil {
			return err
		}
	}
	// The document must exist before parseMisc, since a DOCTYPE declaration
	// (parsed there) registers its subsets and declarations on ctx.doc.
	ctx.doc = NewDocument(ctx.version, ctx.encoding, ctx.standalone)
	return p.parseMisc(ctx)
}

func (p *Parser) parseXMLDecl(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	sp.SkipSpaces()
	name, _ := sp.GetName(false)
	if name != "version" {
		return ctx.report(ErrMalformedMarkupDecl, "expected version pseudo-attribute in XML declaration")
	}
	sp.SkippedChar('=')
	q, _ := sp.SkippedQuote()
	var sb strings.Builder
	for {
		r := sp.PeekNext()
		if r == q || r == 0 {
			break
		}
		sb.WriteRune(sp.GetNext())
	}
	sp.SkippedChar(q)
	ctx.version = sb.String()

	sp.SkipSpaces()
	if name, ok := sp.GetName(false); ok {
		switch name {
		case "encoding":
			sp.SkippedChar('=')
			q, _ := sp.SkippedQuote()
			var eb strings.Builder
			for {
				r := sp.PeekNext()
				if r == q || r == 0 {
					break
				}
				eb.WriteRune(sp.GetNext())
			}
			sp.SkippedChar(q)
			ctx.encoding = eb.String()
			if err := sp.SetDeclEncoding(ctx.encoding); err != nil {
				return ctx.report(ErrBadEncodingName, "%s", err)
			}
			sp.SkipSpaces()
		}
	}
	if name, ok := sp.GetName(false); ok && name == "standalone" {
		sp.SkippedChar('=')
		q, _ := sp.SkippedQuote()
		var yb strings.Builder
		for {
			r := sp.PeekNext()
			if r == q || r == 0 {
				break
			}
			yb.WriteRune(sp.GetNext())
		}
		sp.SkippedChar(q)
		if yb.String() == "yes" {
			ctx.standalone = StandaloneExplicitYes
		} else {
			ctx.standalone = StandaloneExplicitNo
		}
	}
	sp.SkipSpaces()
	if !sp.SkippedString("?>") {
		return ctx.report(ErrMalformedMarkupDecl, "unterminated XML declaration")
	}
	if ctx.p.flags&FlagXMLDecl != 0 {
		// XML-decl notification has no dedicated SAX callback in this
		// design; the tree builder instead reads ctx.version/.encoding
		// directly from StartDocument.
	}
	return nil
}

// parseMisc consumes comments, PIs, and whitespace, plus (only once, in
// the prolog) a DOCTYPE declaration.
func (p *Parser) parseMisc(ctx *parserCtx) error {
	sawDoctype := ctx.doc != nil && ctx.doc.intSubset != nil
	for {
		sp := ctx.em.TopSpooler()
		adv, _, err := ctx.em.SkippedSpaces(true)
		_ = adv
		if err != nil {
			return err
		}
		if sp.SkippedString("<!--") {
			if err := p.parseComment(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<?") {
			if err := p.parsePI(ctx); err != nil {
				return err
			}
			continue
		}
		if !sawDoctype && sp.SkippedString("<!DOCTYPE") {
			if err := p.parseDoctype(ctx); err != nil {
				return err
			}
			sawDoctype = true
			continue
		}
		return nil
	}
}

func (p *Parser) parseComment(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	var sb strings.Builder
	for {
		if sp.SkippedString("--") {
			if !sp.SkippedChar('>') {
				return ctx.report(ErrCommentDashDash, "'--' is not allowed inside a comment")
			}
			break
		}
		r := sp.GetNext()
		if r == 0 {
			return ctx.report(ErrUnterminatedComment, "unterminated comment")
		}
		sb.WriteRune(r)
	}
	if ctx.p.flags&FlagCommentMask != 0 {
		return p.handler.Comment(ctx, []byte(sb.String()))
	}
	return nil
}

func (p *Parser) parsePI(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	target, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected PI target name")
	}
	if strings.EqualFold(target, "xml") {
		return ctx.report(ErrPITargetIsXML, "PI target must not be 'xml' (case-insensitive)")
	}
	sp.SkipSpaces()
	var sb strings.Builder
	for {
		if sp.SkippedString("?>") {
			break
		}
		r := sp.GetNext()
		if r == 0 {
			return ctx.report(ErrUnexpectedEOF, "unterminated processing instruction")
		}
		sb.WriteRune(r)
	}
	if ctx.p.flags&FlagPIMask != 0 {
		return p.handler.ProcessingInstruction(ctx, target, sb.String())
	}
	return nil
}

// --- element content ---------------------------------------------------

func (p *Parser) parseElement(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	if !sp.SkippedChar('<') {
		return ctx.report(ErrMalformedStartTag, "expected root element start tag")
	}
	return p.parseElementBody(ctx)
}

type parsedElement struct {
	name, prefix, local, uri string
	attrs                    []*parsedAttribute
	ns                       []*parsedNamespace
}

func (e *parsedElement) Name() string                  { return e.name }
func (e *parsedElement) Prefix() string                { return e.prefix }
func (e *parsedElement) URI() string                    { return e.uri }
func (e *parsedElement) LocalName() string              { return e.local }
func (e *parsedElement) Namespaces() []sax.Namespace {
	out := make([]sax.Namespace, len(e.ns))
	for i, n := range e.ns {
		out[i] = n
	}
	return out
}
func (e *parsedElement) Attributes() []sax.ParsedAttribute {
	out := make([]sax.ParsedAttribute, len(e.attrs))
	for i, a := range e.attrs {
		out[i] = a
	}
	return out
}

type parsedAttribute struct{ prefix, local, value string }

func (a *parsedAttribute) Prefix() string    { return a.prefix }
func (a *parsedAttribute) LocalName() string { return a.local }
func (a *parsedAttribute) Value() string     { return a.value }

type parsedNamespace struct{ prefix, uri string }

func (n *parsedNamespace) Prefix() string { return n.prefix }
func (n *parsedNamespace) URI() string    { return n.uri }

// parseElementBody parses a STag/EmptyElemTag (the '<' has already been
// consumed) followed by its content and ETag, recursing for children.
func (p *Parser) parseElementBody(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	qname, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedStartTag, "expected element name")
	}
	prefix, local := splitQName(qname)

	pe := &parsedElement{name: qname, prefix: prefix, local: local}
	seen := map[string]bool{}
	for {
		adv, _ := sp.SkipSpaces()
		if sp.SkippedString("/>") {
			if err := p.emitElement(ctx, pe, true); err != nil {
				return err
			}
			return nil
		}
		if sp.SkippedChar('>') {
			break
		}
		if !adv {
			return ctx.report(ErrMalformedStartTag, "expected whitespace, '/>' or '>' in start tag of %q", qname)
		}
		aname, ok := sp.GetName(false)
		if !ok {
			return ctx.report(ErrMalformedStartTag, "expected attribute name or tag close in %q", qname)
		}
		if seen[aname] {
			return ctx.report(ErrDuplicateAttribute, "duplicate attribute %q", aname)
		}
		seen[aname] = true
		sp.SkipSpaces()
		if !sp.SkippedChar('=') {
			return ctx.report(ErrMalformedStartTag, "expected '=' after attribute name %q", aname)
		}
		sp.SkipSpaces()
		val, err := p.parseAttValue(ctx)
		if err != nil {
			return err
		}
		aprefix, alocal := splitQName(aname)
		if aprefix == "xmlns" || aname == "xmlns" {
			ns := &parsedNamespace{uri: val}
			if aprefix == "xmlns" {
				ns.prefix = alocal
			}
			pe.ns = append(pe.ns, ns)
			continue
		}
		pe.attrs = append(pe.attrs, &parsedAttribute{prefix: aprefix, local: alocal, value: val})
	}

	if err := p.emitElement(ctx, pe, false); err != nil {
		return err
	}

	if err := p.parseContent(ctx, pe); err != nil {
		return err
	}

	return p.parseEndTag(ctx, pe)
}

func splitQName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func (p *Parser) emitElement(ctx *parserCtx, pe *parsedElement, empty bool) error {
	if ctx.validate {
		validateStartTag(ctx, pe)
	}
	if err := p.handler.StartElement(ctx, pe); err != nil {
		return err
	}
	ctx.pushNode(&elementPlaceholder{pe: pe})
	if empty {
		if err := p.handler.EndElement(ctx, pe); err != nil {
			return err
		}
		if ctx.validate {
			validateEndTag(ctx, pe)
		}
		ctx.popNode()
	}
	return nil
}

// elementPlaceholder is pushed on parserCtx.nodeStack to track the open
// element's identity for EndElement without depending on the SAX handler's
// own node representation (the tree builder keeps its own t.node).
type elementPlaceholder struct{ pe *parsedElement }

func (e *elementPlaceholder) Type() ElementType { return ElementNode }
func (e *elementPlaceholder) Name() string      { return e.pe.name }
func (e *elementPlaceholder) Content() []byte   { return nil }
func (e *elementPlaceholder) AddContent([]byte) error { return nil }
func (e *elementPlaceholder) Parent() Node       { return nil }
func (e *elementPlaceholder) SetParent(Node)     {}
func (e *elementPlaceholder) FirstChild() Node   { return nil }
func (e *elementPlaceholder) LastChild() Node    { return nil }
func (e *elementPlaceholder) setFirstChild(Node) {}
func (e *elementPlaceholder) setLastChild(Node)  {}
func (e *elementPlaceholder) NextSibling() Node     { return nil }
func (e *elementPlaceholder) PrevSibling() Node     { return nil }
func (e *elementPlaceholder) SetNextSibling(Node)   {}
func (e *elementPlaceholder) SetPrevSibling(Node)   {}
func (e *elementPlaceholder) OwnerDocument() *Document      { return nil }
func (e *elementPlaceholder) SetOwnerDocument(*Document)    {}
func (e *elementPlaceholder) SetTreeDoc(*Document)          {}
func (e *elementPlaceholder) AddChild(Node) error   { return nil }
func (e *elementPlaceholder) AddSibling(Node) error { return nil }
func (e *elementPlaceholder) Replace(Node) error    { return nil }

func (p *Parser) parseEndTag(ctx *parserCtx, pe *parsedElement) error {
	sp := ctx.em.TopSpooler()
	if !sp.SkippedString("</") {
		return ctx.report(ErrMalformedEndTag, "expected end tag for %q", pe.name)
	}
	name, ok := sp.GetName(false)
	if !ok || name != pe.name {
		return ctx.report(ErrEndTagMismatch, "end tag %q does not match start tag %q", name, pe.name)
	}
	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedEndTag, "expected '>' closing end tag for %q", pe.name)
	}
	if err := p.handler.EndElement(ctx, pe); err != nil {
		return err
	}
	if ctx.validate {
		validateEndTag(ctx, pe)
	}
	ctx.popNode()
	return nil
}

// parseContent parses CharData/Reference/CDSect/Comment/PI/element*,
// flushing buffered character data at markup boundaries and entity-stack
// boundaries alike.
func (p *Parser) parseContent(ctx *parserCtx, pe *parsedElement) error {
	var buf strings.Builder
	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		data := []byte(buf.String())
		buf.Reset()
		if isAllWhitespace(data) && ctx.p.flags&FlagIgnorableSpace != 0 {
			return p.handler.IgnorableWhitespace(ctx, data)
		}
		return p.handler.Characters(ctx, data)
	}

	for {
		sp := ctx.em.TopSpooler()
		if sp.AtEOF() {
			if ctx.em.Depth() > 1 {
				if err := flush(); err != nil {
					return err
				}
				name, _ := ctx.em.Pop()
				if name != nil {
					p.handler.EndEntity(ctx, name.docnode.name)
				}
				continue
			}
			return ctx.report(ErrUnexpectedEOF, "unexpected end of input inside element %q", pe.name)
		}
		if sp.SkippedString("</") {
			// "</" is consumed; parseEndTagRewind parses the rest.
			ctx2 := ctx
			_ = ctx2
			if err := flush(); err != nil {
				return err
			}
			return p.parseEndTagRewind(ctx, pe)
		}
		if sp.SkippedString("<!--") {
			if err := flush(); err != nil {
				return err
			}
			if err := p.parseComment(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<![CDATA[") {
			if err := flush(); err != nil {
				return err
			}
			if err := p.parseCDATA(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<?") {
			if err := flush(); err != nil {
				return err
			}
			if err := p.parsePI(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedChar('<') {
			if err := flush(); err != nil {
				return err
			}
			if err := p.parseElementBody(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedChar('&') {
			if sp.SkippedChar('#') {
				r, err := p.parseCharRef(ctx, sp)
				if err != nil {
					return err
				}
				buf.WriteRune(r)
				continue
			}
			name, ok := sp.GetName(false)
			if !ok || !sp.SkippedChar(';') {
				return ctx.report(ErrMalformedMarkupDecl, "malformed entity reference")
			}
			if pre := resolvePredefinedEntity(name); pre != nil {
				buf.WriteString(pre.value)
				continue
			}
			decl, ok := ctx.doc.GetEntity(name)
			if !ok {
				return ctx.report(ErrEntityUnresolved, "reference to undeclared entity %q", name)
			}
			if decl.entityType == ExternalGeneralUnparsedEntity {
				return ctx.report(ErrExternalGeneralEntityInAttr, "unparsed entity %q cannot be referenced here", name)
			}
			if err := flush(); err != nil {
				return err
			}
			if err := p.handler.StartEntity(ctx, name); err != nil {
				return err
			}
			esp := NewInternedSpooler(ctx.systemID, decl.value)
			if err := ctx.em.PushEntity(esp, decl); err != nil {
				return ctx.report(ErrRecursiveEntityRef, "%s", err)
			}
			continue
		}
		if sp.SkippedString("]]>") {
			return ctx.report(ErrCDATAEndInContent, "']]>' not allowed in character content outside a CDATA section")
		}
		r := sp.GetNext()
		if !IsXMLChar(r) {
			if ctx.p.opts&IgnoreBadChars != 0 {
				ctx.report(WarnDisallowedCharSubstituted, "disallowed character substituted")
				r = ' '
			} else {
				return ctx.report(ErrDisallowedChar, "disallowed character U+%04X", r)
			}
		}
		buf.WriteRune(r)
	}
}

// parseEndTagRewind parses the rest of an end tag whose "</" the caller
// has already consumed, repeating parseEndTag's checks without matching
// "</" again.
func (p *Parser) parseEndTagRewind(ctx *parserCtx, pe *parsedElement) error {
	sp := ctx.em.TopSpooler()
	name, ok := sp.GetName(false)
	if !ok || name != pe.name {
		return ctx.report(ErrEndTagMismatch, "end tag %q does not match start tag %q", name, pe.name)
	}
	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedEndTag, "expected '>' closing end tag for %q", pe.name)
	}
	if err := p.handler.EndElement(ctx, pe); err != nil {
		return err
	}
	if ctx.validate {
		validateEndTag(ctx, pe)
	}
	ctx.popNode()
	return nil
}

func (p *Parser) parseCDATA(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	if err := p.handler.StartCDATA(ctx); err != nil {
		return err
	}
	var sb strings.Builder
	for {
		if sp.SkippedString("]]>") {
			break
		}
		if sp.SkippedString("<![CDATA[") {
			return ctx.report(ErrNestedCDATA, "nested '<![CDATA[' inside an open CDATA section")
		}
		r := sp.GetNext()
		if r == 0 {
			return ctx.report(ErrUnexpectedEOF, "unterminated CDATA section")
		}
		sb.WriteRune(r)
	}
	if err := p.handler.Characters(ctx, []byte(sb.String())); err != nil {
		return err
	}
	return p.handler.EndCDATA(ctx)
}

func (p *Parser) parseCharRef(ctx *parserCtx, sp *Spooler) (rune, error) {
	hex := sp.SkippedChar('x')
	var sb strings.Builder
	for {
		r := sp.PeekNext()
		if r == ';' {
			break
		}
		if r == 0 {
			return 0, ctx.report(ErrMalformedMarkupDecl, "unterminated character reference")
		}
		sb.WriteRune(sp.GetNext())
	}
	sp.SkippedChar(';')
	var val int64
	var err error
	if hex {
		_, err = fmt.Sscanf(sb.String(), "%x", &val)
	} else {
		_, err = fmt.Sscanf(sb.String(), "%d", &val)
	}
	if err != nil {
		return 0, ctx.report(ErrMalformedMarkupDecl, "malformed character reference")
	}
	r := rune(val)
	if !IsXMLChar(r) {
		return 0, ctx.report(ErrDisallowedChar, "character reference to disallowed code point U+%04X", r)
	}
	return r, nil
}

// parseAttValue parses a quoted AttValue, expanding character and general
// entity references and normalising literal whitespace to U+0020, per the
// AttValue production.
func (p *Parser) parseAttValue(ctx *parserCtx) (string, error) {
	sp := ctx.em.TopSpooler()
	q, ok := sp.SkippedQuote()
	if !ok {
		return "", ctx.report(ErrMalformedStartTag, "expected quoted attribute value")
	}
	var sb strings.Builder
	for {
		r := sp.PeekNext()
		if r == 0 {
			return "", ctx.report(ErrUnexpectedEOF, "unterminated attribute value")
		}
		if r == q {
			sp.GetNext()
			break
		}
		if r == '<' {
			return "", ctx.report(ErrAttrValueHasLT, "attribute value may not contain a literal '<'")
		}
		if IsWhitespace(r) {
			sp.GetNext()
			sb.WriteRune(' ')
			continue
		}
		if r == '&' {
			sp.GetNext()
			if sp.SkippedChar('#') {
				cr, err := p.parseCharRef(ctx, sp)
				if err != nil {
					return "", err
				}
				sb.WriteRune(cr)
				continue
			}
			name, ok := sp.GetName(false)
			if !ok || !sp.SkippedChar(';') {
				return "", ctx.report(ErrMalformedMarkupDecl, "malformed entity reference in attribute value")
			}
			if pre := resolvePredefinedEntity(name); pre != nil {
				sb.WriteString(pre.value)
				continue
			}
			decl, ok := ctx.doc.GetEntity(name)
			if !ok {
				return "", ctx.report(ErrEntityUnresolved, "reference to undeclared entity %q", name)
			}
			if decl.entityType == ExternalGeneralParsedEntity || decl.entityType == ExternalGeneralUnparsedEntity {
				return "", ctx.report(ErrExternalGeneralEntityInAttr, "external entity %q not allowed in attribute value", name)
			}
			sb.WriteString(decl.value)
			continue
		}
		sp.GetNext()
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func isAllWhitespace(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}
