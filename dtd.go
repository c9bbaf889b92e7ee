package cidxml

import (
	"strings"

	"github.com/lestrrat/cidxml/sax"
)

// parseDoctype parses a DOCTYPE declaration: "<!DOCTYPE" has already been
// consumed. It handles an optional external id, an optional internal
// subset, and (when the external id is present and Validate is set) loads
// and parses the referenced external subset too.
func (p *Parser) parseDoctype(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	sp.SkipSpaces()
	name, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected root element name in DOCTYPE")
	}
	sp.SkipSpaces()

	publicID, systemID, hasExternal := "", "", false
	if sp.SkippedString("PUBLIC") {
		hasExternal = true
		sp.SkipSpaces()
		pid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		publicID = pid
		sp.SkipSpaces()
		sid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		systemID = sid
	} else if sp.SkippedString("SYSTEM") {
		hasExternal = true
		sp.SkipSpaces()
		sid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		systemID = sid
	}
	sp.SkipSpaces()

	if err := p.handler.StartDTD(ctx, name, publicID, systemID); err != nil {
		return err
	}

	if hasExternal {
		ctx.doc.extSubset = newDTD(ctx.doc, name, publicID, systemID)
		if err := p.handler.ExternalSubset(ctx, name, publicID, systemID); err != nil {
			return err
		}
	}

	if sp.SkippedChar('[') {
		ctx.doc.intSubset = newDTD(ctx.doc, name, publicID, systemID)
		if err := p.handler.InternalSubset(ctx, name, publicID, systemID); err != nil {
			return err
		}
		ctx.inSubset = 1
		if err := p.parseInternalSubset(ctx); err != nil {
			return err
		}
		ctx.inSubset = 0
	}

	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedMarkupDecl, "expected '>' closing DOCTYPE declaration")
	}

	if hasExternal && ctx.validate {
		if err := p.loadExternalSubset(ctx, systemID); err != nil {
			return err
		}
	}

	return p.handler.EndDTD(ctx)
}

// loadExternalSubset fetches and parses a referenced external DTD subset,
// feeding its markup declarations through the same parseInternalSubset
// logic (the grammar for declarations inside `[ ... ]` and inside an
// external subset file is identical).
func (p *Parser) loadExternalSubset(ctx *parserCtx, systemID string) error {
	src := NewFileEntitySource(systemID)
	sp, err := ctx.em.NewSpoolerFromSource(src)
	if err != nil {
		// Unresolvable external subset: validation continues without it,
		// reported as a warning rather than aborting the parse.
		return ctx.report(WarnElementNeverDeclared, "cannot open external subset %q: %s", systemID, err)
	}
	if err := ctx.em.PushEntity(sp, nil); err != nil {
		return err
	}
	ctx.inSubset = 2
	err = p.parseInternalSubset(ctx)
	ctx.inSubset = 0
	if _, _, perr := ctx.em.popAndRetry(); perr != nil {
		return perr
	}
	return err
}

func (p *Parser) parseQuotedLiteral(ctx *parserCtx, sp *Spooler) (string, error) {
	q, ok := sp.SkippedQuote()
	if !ok {
		return "", ctx.report(ErrMalformedMarkupDecl, "expected quoted literal")
	}
	var sb strings.Builder
	for {
		r := sp.PeekNext()
		if r == q || r == 0 {
			break
		}
		sb.WriteRune(sp.GetNext())
	}
	if !sp.SkippedChar(q) {
		return "", ctx.report(ErrUnexpectedEOF, "unterminated quoted literal")
	}
	return sb.String(), nil
}

// parseInternalSubset parses the sequence of markupdecl | DeclSep items
// inside `[ ... ]` (or, with ctx.inSubset == 2, an entire external subset
// file), stopping at ']' (never present in an external subset, where EOF
// plays that role instead).
func (p *Parser) parseInternalSubset(ctx *parserCtx) error {
	base := ctx.em.Depth()
	for {
		sp := ctx.em.TopSpooler()
		sp.SkipSpaces()
		if ctx.inSubset == 1 && sp.SkippedChar(']') {
			return nil
		}
		if sp.AtEOF() {
			if ctx.em.Depth() > base {
				ctx.em.Pop()
				continue
			}
			if ctx.inSubset == 2 {
				return nil
			}
			return ctx.report(ErrUnexpectedEOF, "unexpected end of input inside DTD subset")
		}
		if sp.SkippedString("<!ELEMENT") {
			if err := p.parseElementDecl(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<!ATTLIST") {
			if err := p.parseAttlistDecl(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<!ENTITY") {
			if err := p.parseEntityDecl(ctx); err != nil {
				return err
			}
			continue
		}
		if sp.SkippedString("<!NOTATION") {
			if err := p.parseNotationDecl(ctx); err != nil {
				return err
			}
			continue
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
		if sp.SkippedChar('%') {
			name, ok := sp.GetName(false)
			if !ok || !sp.SkippedChar(';') {
				return ctx.report(ErrUnknownPEReference, "malformed parameter entity reference")
			}
			decl, ok := ctx.doc.GetParameterEntity(name)
			if !ok {
				return ctx.report(ErrUnknownPEReference, "reference to undeclared parameter entity %q", name)
			}
			esp := NewInternedSpooler(ctx.systemID, " "+decl.value+" ")
			if err := ctx.em.PushEntity(esp, decl); err != nil {
				return ctx.report(ErrRecursiveEntityRef, "%s", err)
			}
			continue
		}
		return ctx.report(ErrMalformedMarkupDecl, "unrecognised markup declaration")
	}
}

// --- ELEMENT -------------------------------------------------------------

func (p *Parser) parseElementDecl(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	startSpoolerID := sp.ID()
	sp.SkipSpaces()
	name, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected element name in ELEMENT declaration")
	}
	sp.SkipSpaces()

	decl := ctx.doc.GetElementDecl(name, CreatedAsDeclared)
	var mixedNames []string
	var rawSpec *ContentSpecNode

	switch {
	case sp.SkippedString("EMPTY"):
		decl.decltype = EmptyElementType
	case sp.SkippedString("ANY"):
		decl.decltype = AnyElementType
	default:
		if !sp.SkippedChar('(') {
			return ctx.report(ErrMalformedMarkupDecl, "expected EMPTY, ANY, or content particle in ELEMENT declaration for %q", name)
		}
		sp.SkipSpaces()
		if sp.SkippedString("#PCDATA") {
			decl.decltype = MixedElementType
			for {
				sp.SkipSpaces()
				if sp.SkippedChar('|') {
					sp.SkipSpaces()
					n, ok := sp.GetName(false)
					if !ok {
						return ctx.report(ErrMalformedMarkupDecl, "expected name in mixed-content list for %q", name)
					}
					mixedNames = append(mixedNames, n)
					continue
				}
				break
			}
			if !sp.SkippedChar(')') {
				return ctx.report(ErrMalformedMarkupDecl, "expected ')' closing mixed-content spec for %q", name)
			}
			sp.SkippedChar('*')
		} else {
			decl.decltype = ElementElementType
			node, err := p.parseContentParticleGroup(ctx, sp)
			if err != nil {
				return err
			}
			rawSpec = node
		}
	}

	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedMarkupDecl, "expected '>' closing ELEMENT declaration for %q", name)
	}
	if ctx.em.TopSpooler().ID() != startSpoolerID {
		return ctx.report(ErrPartialMarkupEntity, "ELEMENT declaration for %q spans more than one entity", name)
	}

	if decl.declared {
		ctx.report(ErrDuplicateElementDecl, "element %q already declared", name)
	} else {
		decl.declared = true
		if decl.decltype == ElementElementType {
			numberLeaves(rawSpec)
		}
		decl.spec = rawSpec
		decl.compiled = compileContentModel(decl.decltype, rawSpec, mixedNames)
		decl.textPolicy = textPolicyFor(decl.decltype)
	}

	return p.handler.ElementDecl(ctx, name, int(decl.decltype), nil)
}

func textPolicyFor(t ElementTypeVal) TextPolicy {
	switch t {
	case EmptyElementType:
		return TextPolicyNone
	case ElementElementType:
		return TextPolicyIgnorableSpaceOnly
	default:
		return TextPolicyAny
	}
}

// parseContentParticleGroup parses a choice/seq group whose opening '('
// has already been consumed, including its trailing occurrence suffix.
func (p *Parser) parseContentParticleGroup(ctx *parserCtx, sp *Spooler) (*ContentSpecNode, error) {
	sp.SkipSpaces()
	first, err := p.parseContentParticle(ctx, sp)
	if err != nil {
		return nil, err
	}
	items := []*ContentSpecNode{first}
	isChoice := false
	for {
		sp.SkipSpaces()
		if sp.SkippedChar('|') {
			isChoice = true
			sp.SkipSpaces()
			n, err := p.parseContentParticle(ctx, sp)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
			continue
		}
		if sp.SkippedChar(',') {
			sp.SkipSpaces()
			n, err := p.parseContentParticle(ctx, sp)
			if err != nil {
				return nil, err
			}
			items = append(items, n)
			continue
		}
		break
	}
	sp.SkipSpaces()
	if !sp.SkippedChar(')') {
		return nil, ctx.report(ErrMalformedMarkupDecl, "expected ')' closing content-particle group")
	}

	var node *ContentSpecNode
	if len(items) == 1 {
		node = items[0]
	} else if isChoice {
		node = items[0]
		for _, n := range items[1:] {
			node = alt(node, n)
		}
	} else {
		node = items[0]
		for _, n := range items[1:] {
			node = seq(node, n)
		}
	}
	return applyOccurrence(sp, node), nil
}

// parseContentParticle parses one `cp`: a name or a parenthesised group,
// with an optional trailing '?'/'*'/'+'.
func (p *Parser) parseContentParticle(ctx *parserCtx, sp *Spooler) (*ContentSpecNode, error) {
	if sp.SkippedChar('(') {
		return p.parseContentParticleGroup(ctx, sp)
	}
	name, ok := sp.GetName(false)
	if !ok {
		return nil, ctx.report(ErrMalformedMarkupDecl, "expected element name or '(' in content particle")
	}
	return applyOccurrence(sp, leaf(name)), nil
}

func applyOccurrence(sp *Spooler, node *ContentSpecNode) *ContentSpecNode {
	switch {
	case sp.SkippedChar('?'):
		return rewriteOccurrence(SpecZeroOrOne, node)
	case sp.SkippedChar('*'):
		return rewriteOccurrence(SpecZeroOrMore, node)
	case sp.SkippedChar('+'):
		return rewriteOccurrence(SpecOneOrMore, node)
	default:
		return node
	}
}

// --- ATTLIST -------------------------------------------------------------

func (p *Parser) parseAttlistDecl(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	startSpoolerID := sp.ID()
	sp.SkipSpaces()
	elemName, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected element name in ATTLIST declaration")
	}
	decl := ctx.doc.GetElementDecl(elemName, CreatedAsAttlistOwner)

	for {
		sp.SkipSpaces()
		if sp.SkippedChar('>') {
			break
		}
		attrName, ok := sp.GetName(false)
		if !ok {
			return ctx.report(ErrMalformedMarkupDecl, "expected attribute name or '>' in ATTLIST declaration for %q", elemName)
		}
		sp.SkipSpaces()

		atype, tree, err := p.parseAttType(ctx, sp)
		if err != nil {
			return err
		}
		sp.SkipSpaces()
		def, defVal, err := p.parseAttDefault(ctx, sp)
		if err != nil {
			return err
		}

		ad := newAttributeDecl(elemName, attrName, atype, def, defVal, tree)
		if !decl.AddAttribute(ad) {
			ctx.report(WarnDuplicateAttlist, "duplicate ATTLIST entry %q for element %q", attrName, elemName)
		}

		var sdv sax.AttributeDefaultValue = ad
		var senum sax.Enumeration
		if len(tree) > 0 {
			senum = ad
		}
		if err := p.handler.AttributeDecl(ctx, elemName, attrName, int(atype), int(def), sdv, senum); err != nil {
			return err
		}
	}
	if ctx.em.TopSpooler().ID() != startSpoolerID {
		return ctx.report(ErrPartialMarkupEntity, "ATTLIST declaration for %q spans more than one entity", elemName)
	}
	return nil
}

func (p *Parser) parseAttType(ctx *parserCtx, sp *Spooler) (AttributeType, Enumeration, error) {
	switch {
	case sp.SkippedString("CDATA"):
		return AttrCDATA, nil, nil
	case sp.SkippedString("IDREFS"):
		return AttrIDRefs, nil, nil
	case sp.SkippedString("IDREF"):
		return AttrIDRef, nil, nil
	case sp.SkippedString("ID"):
		return AttrID, nil, nil
	case sp.SkippedString("ENTITIES"):
		return AttrEntities, nil, nil
	case sp.SkippedString("ENTITY"):
		return AttrEntity, nil, nil
	case sp.SkippedString("NMTOKENS"):
		return AttrNmtokens, nil, nil
	case sp.SkippedString("NMTOKEN"):
		return AttrNmtoken, nil, nil
	case sp.SkippedString("NOTATION"):
		sp.SkipSpaces()
		tree, err := p.parseEnumeration(ctx, sp)
		return AttrNotation, tree, err
	case sp.PeekNext() == '(':
		tree, err := p.parseEnumeration(ctx, sp)
		return AttrEnumeration, tree, err
	default:
		return AttrInvalid, nil, ctx.report(ErrMalformedMarkupDecl, "unrecognised attribute type")
	}
}

func (p *Parser) parseEnumeration(ctx *parserCtx, sp *Spooler) (Enumeration, error) {
	if !sp.SkippedChar('(') {
		return nil, ctx.report(ErrMalformedMarkupDecl, "expected '(' opening enumeration")
	}
	var tree Enumeration
	for {
		sp.SkipSpaces()
		tok, ok := sp.GetName(true)
		if !ok {
			return nil, ctx.report(ErrMalformedMarkupDecl, "expected token in enumeration")
		}
		tree = append(tree, tok)
		sp.SkipSpaces()
		if sp.SkippedChar('|') {
			continue
		}
		break
	}
	if !sp.SkippedChar(')') {
		return nil, ctx.report(ErrMalformedMarkupDecl, "expected ')' closing enumeration")
	}
	return tree, nil
}

func (p *Parser) parseAttDefault(ctx *parserCtx, sp *Spooler) (AttributeDefault, string, error) {
	switch {
	case sp.SkippedString("#REQUIRED"):
		return AttrDefaultRequired, "", nil
	case sp.SkippedString("#IMPLIED"):
		return AttrDefaultImplied, "", nil
	case sp.SkippedString("#FIXED"):
		sp.SkipSpaces()
		v, err := p.parseAttValue(ctx)
		return AttrDefaultFixed, v, err
	default:
		v, err := p.parseAttValue(ctx)
		return AttrDefaultNone, v, err
	}
}

// --- ENTITY --------------------------------------------------------------

func (p *Parser) parseEntityDecl(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	startSpoolerID := sp.ID()
	sp.SkipSpaces()
	isParam := sp.SkippedChar('%')
	if isParam {
		sp.SkipSpaces()
	}
	name, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected entity name in ENTITY declaration")
	}
	sp.SkipSpaces()

	var publicID, systemID, value, notation string
	etype := InternalGeneralEntity
	if isParam {
		etype = InternalParameterEntity
	}

	if sp.SkippedString("PUBLIC") {
		sp.SkipSpaces()
		pid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		publicID = pid
		sp.SkipSpaces()
		sid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		systemID = sid
		etype = ExternalGeneralParsedEntity
		if isParam {
			etype = ExternalParameterEntity
		}
	} else if sp.SkippedString("SYSTEM") {
		sp.SkipSpaces()
		sid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		systemID = sid
		etype = ExternalGeneralParsedEntity
		if isParam {
			etype = ExternalParameterEntity
		}
	} else {
		v, err := p.parseEntityValue(ctx, sp)
		if err != nil {
			return err
		}
		value = v
	}

	sp.SkipSpaces()
	if !isParam && (etype == ExternalGeneralParsedEntity) && sp.SkippedString("NDATA") {
		sp.SkipSpaces()
		ndata, ok := sp.GetName(false)
		if !ok {
			return ctx.report(ErrMalformedMarkupDecl, "expected notation name after NDATA")
		}
		notation = ndata
		etype = ExternalGeneralUnparsedEntity
	}

	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedMarkupDecl, "expected '>' closing ENTITY declaration for %q", name)
	}
	if ctx.em.TopSpooler().ID() != startSpoolerID {
		return ctx.report(ErrPartialMarkupEntity, "ENTITY declaration for %q spans more than one entity", name)
	}

	decl := newEntity(name, etype, publicID, systemID, value)
	decl.IsParameter = isParam
	decl.notationName = notation
	ctx.doc.DeclareEntity(decl)

	if notation != "" {
		return p.handler.UnparsedEntityDecl(ctx, name, int(etype), publicID, systemID, notation)
	}
	if systemID != "" {
		return p.handler.ExternalEntityDecl(ctx, name, publicID, systemID)
	}
	return p.handler.InternalEntityDecl(ctx, name, value)
}

// parseEntityValue parses a quoted EntityValue, expanding character
// references and parameter-entity references but leaving general entity
// references ("&name;") untouched in the stored replacement text (they
// are expanded lazily, at each point of use, per the XML recursive
// replacement-text model).
func (p *Parser) parseEntityValue(ctx *parserCtx, sp *Spooler) (string, error) {
	q, ok := sp.SkippedQuote()
	if !ok {
		return "", ctx.report(ErrMalformedMarkupDecl, "expected quoted entity value")
	}
	var sb strings.Builder
	for {
		r := sp.PeekNext()
		if r == 0 {
			return "", ctx.report(ErrUnexpectedEOF, "unterminated entity value")
		}
		if r == q {
			sp.GetNext()
			break
		}
		if r == '%' {
			sp.GetNext()
			name, ok := sp.GetName(false)
			if !ok || !sp.SkippedChar(';') {
				return "", ctx.report(ErrUnknownPEReference, "malformed parameter entity reference in entity value")
			}
			pe, ok := ctx.doc.GetParameterEntity(name)
			if !ok {
				return "", ctx.report(ErrUnknownPEReference, "reference to undeclared parameter entity %q", name)
			}
			sb.WriteString(pe.value)
			continue
		}
		if r == '&' {
			if nxt, ok := sp.PeekAhead(1); ok && nxt == '#' {
				sp.GetNext()
				sp.GetNext()
				cr, err := p.parseCharRef(ctx, sp)
				if err != nil {
					return "", err
				}
				sb.WriteRune(cr)
				continue
			}
		}
		sb.WriteRune(sp.GetNext())
	}
	return sb.String(), nil
}

// --- NOTATION --------------------------------------------------------------

func (p *Parser) parseNotationDecl(ctx *parserCtx) error {
	sp := ctx.em.TopSpooler()
	startSpoolerID := sp.ID()
	sp.SkipSpaces()
	name, ok := sp.GetName(false)
	if !ok {
		return ctx.report(ErrMalformedMarkupDecl, "expected name in NOTATION declaration")
	}
	sp.SkipSpaces()

	var publicID, systemID string
	switch {
	case sp.SkippedString("PUBLIC"):
		sp.SkipSpaces()
		pid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		publicID = pid
		sp.SkipSpaces()
		if sp.PeekNext() == '"' || sp.PeekNext() == '\'' {
			sid, err := p.parseQuotedLiteral(ctx, sp)
			if err != nil {
				return err
			}
			systemID = sid
		}
	case sp.SkippedString("SYSTEM"):
		sp.SkipSpaces()
		sid, err := p.parseQuotedLiteral(ctx, sp)
		if err != nil {
			return err
		}
		systemID = sid
	default:
		return ctx.report(ErrMalformedMarkupDecl, "expected PUBLIC or SYSTEM in NOTATION declaration for %q", name)
	}

	sp.SkipSpaces()
	if !sp.SkippedChar('>') {
		return ctx.report(ErrMalformedMarkupDecl, "expected '>' closing NOTATION declaration for %q", name)
	}
	if ctx.em.TopSpooler().ID() != startSpoolerID {
		return ctx.report(ErrPartialMarkupEntity, "NOTATION declaration for %q spans more than one entity", name)
	}

	ctx.doc.DeclareNotation(newNotationDecl(name, publicID, systemID))
	return p.handler.NotationDecl(ctx, name, publicID, systemID)
}

// --- validation ------------------------------------------------------------

// validFrame is the per-open-element validation state: the element's own
// declaration and, for a Children content model, the live DFA cursor
// tracking which child sequence has been seen so far.
type validFrame struct {
	decl     *ElementDecl
	cursor   *dfaState
	sawChild bool
}

// validateStartTag checks pe as a child of whatever element is currently
// open (content-model/mixed-content membership) and checks its own
// attributes against its ATTLIST, then pushes a fresh validFrame so that
// pe's own children can be checked as they arrive.
func validateStartTag(ctx *parserCtx, pe *parsedElement) {
	if len(ctx.validStack) > 0 {
		parent := ctx.validStack[len(ctx.validStack)-1]
		parent.sawChild = true
		validateChildAgainstParent(ctx, parent, pe.name)
	}

	decl := ctx.doc.GetElementDecl(pe.name, CreatedAsContentChild)
	validateAttributes(ctx, decl, pe)

	vf := &validFrame{decl: decl}
	if decl.compiled != nil && decl.compiled.Kind == ElementElementType {
		vf.cursor = decl.compiled.DFA.NewCursor()
	}
	ctx.validStack = append(ctx.validStack, vf)
}

// validateEndTag pops pe's validFrame and checks that its content (or lack
// of it) satisfies its own declared content model.
func validateEndTag(ctx *parserCtx, pe *parsedElement) {
	if len(ctx.validStack) == 0 {
		return
	}
	vf := ctx.validStack[len(ctx.validStack)-1]
	ctx.validStack = ctx.validStack[:len(ctx.validStack)-1]

	if vf.decl.compiled == nil {
		return
	}
	switch vf.decl.compiled.Kind {
	case EmptyElementType:
		if vf.sawChild {
			ctx.report(ErrContentMismatch, "element %q declared EMPTY has content", pe.name)
		}
	case ElementElementType:
		if vf.cursor != nil && !vf.cursor.Accepted() {
			ctx.report(ErrContentTooFew, "element %q content does not satisfy its declared content model (expected one of %v)", pe.name, vf.cursor.ExpectedNames())
		}
	}
}

func validateChildAgainstParent(ctx *parserCtx, parent *validFrame, childName string) {
	cm := parent.decl.compiled
	if cm == nil {
		return
	}
	switch cm.Kind {
	case EmptyElementType:
		ctx.report(ErrContentMismatch, "element %q declared EMPTY may not contain child %q", parent.decl.Name(), childName)
	case AnyElementType:
		// Any content is legal; nothing to check.
	case MixedElementType:
		if !cm.MixedSet.Allows(childName) {
			ctx.report(ErrContentMismatch, "child %q not allowed in mixed content of %q", childName, parent.decl.Name())
		}
	case ElementElementType:
		if parent.cursor != nil && !parent.cursor.Advance(childName) {
			ctx.report(ErrContentMismatch, "child %q not allowed here in %q (expected one of %v)", childName, parent.decl.Name(), parent.cursor.ExpectedNames())
		}
	}
}

// validateAttributes checks pe's provided attributes against decl's ATTLIST
// entries: required/fixed defaults and per-type value constraints; and
// warns about attributes present but never declared.
func validateAttributes(ctx *parserCtx, decl *ElementDecl, pe *parsedElement) {
	provided := map[string]string{}
	for _, a := range pe.attrs {
		name := a.local
		if a.prefix != "" {
			name = a.prefix + ":" + a.local
		}
		provided[name] = a.value
	}

	for _, ad := range decl.Attributes() {
		val, has := provided[ad.Name()]
		switch ad.def {
		case AttrDefaultRequired:
			if !has {
				ctx.report(ErrRequiredAttrMissing, "required attribute %q missing on element %q", ad.Name(), decl.Name())
			}
		case AttrDefaultFixed:
			if !has {
				pe.attrs = append(pe.attrs, &parsedAttribute{local: ad.Name(), value: ad.defaultVal})
				val, has = ad.defaultVal, true
			} else if val != ad.defaultVal {
				ctx.report(ErrFixedAttrMismatch, "attribute %q must have fixed value %q", ad.Name(), ad.defaultVal)
			}
		case AttrDefaultNone:
			if !has {
				// Attribute-value defaulting: an ATTLIST default with
				// neither #REQUIRED, #IMPLIED, nor #FIXED supplies the
				// value when the instance omits the attribute.
				pe.attrs = append(pe.attrs, &parsedAttribute{local: ad.Name(), value: ad.defaultVal})
				val, has = ad.defaultVal, true
			}
		}
		if has {
			validateAttributeValue(ctx, ad, val)
		}
	}

	for name := range provided {
		if _, ok := decl.Attribute(name); !ok {
			ctx.report(WarnAttributeNotDeclared, "attribute %q not declared for element %q", name, decl.Name())
		}
	}
}

func validateAttributeValue(ctx *parserCtx, ad *AttributeDecl, val string) {
	switch ad.atype {
	case AttrEnumeration:
		if !ad.tree.Contains(val) {
			ctx.report(ErrEnumerationNotMember, "value %q not in enumeration for attribute %q", val, ad.Name())
		}
	case AttrNotation:
		if !ad.tree.Contains(val) {
			ctx.report(ErrEnumerationNotMember, "value %q not in notation enumeration for attribute %q", val, ad.Name())
		} else if _, ok := ctx.doc.GetNotation(val); !ok {
			ctx.report(ErrUndeclaredNotationAttr, "attribute %q references undeclared notation %q", ad.Name(), val)
		}
	case AttrID:
		if val == "" {
			ctx.report(ErrAttrValueEmpty, "ID attribute %q must not be empty", ad.Name())
			return
		}
		if ctx.idsSeen == nil {
			ctx.idsSeen = map[string]bool{}
		}
		if ctx.idsSeen[val] {
			ctx.report(ErrMultipleIDAttrs, "duplicate ID value %q", val)
			return
		}
		ctx.idsSeen[val] = true
	case AttrIDRef, AttrIDRefs:
		// Deferred: whether every referenced ID actually exists can only be
		// known once the whole document has been scanned, so the names are
		// collected here and checked in postDTDValidate.
		ctx.idrefsSeen = append(ctx.idrefsSeen, strings.Fields(val)...)
	case AttrEntity, AttrEntities:
		for _, ename := range strings.Fields(val) {
			e, ok := ctx.doc.GetEntity(ename)
			if !ok || e.entityType != ExternalGeneralUnparsedEntity {
				ctx.report(ErrUnresolvedEntityAttr, "attribute %q references undeclared unparsed entity %q", ad.Name(), ename)
			}
		}
	}
}

// postDTDValidate runs the checks that can only be made once the whole
// document has been seen: ID/IDREF cross-references, and elements that were
// referenced as content but never declared with an ELEMENT declaration.
func postDTDValidate(ctx *parserCtx) {
	for _, ref := range ctx.idrefsSeen {
		if !ctx.idsSeen[ref] {
			ctx.report(ErrUnresolvedIDRef, "IDREF %q does not match any ID in the document", ref)
		}
	}

	for i := 0; i < ctx.doc.elementDecls.Len(); i++ {
		decl, ok := ctx.doc.elementDecls.ByID(i)
		if !ok {
			continue
		}
		if !decl.declared && decl.creationReason != CreatedUnknown {
			ctx.report(WarnElementNeverDeclared, "element %q used but never declared", decl.Name())
		}
	}
}
