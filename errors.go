package cidxml

import "fmt"

// Severity classifies a diagnostic. Error codes are range-partitioned so
// that the severity is derivable from the code alone (design §7).
type Severity int

const (
	// SeverityWarning is advisory and does not count toward MaxErrors.
	SeverityWarning Severity = iota
	// SeverityError is a well-formedness violation.
	SeverityError
	// SeverityValidation is a DTD-driven validity violation.
	SeverityValidation
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrorCode identifies a diagnostic. Codes 1000-1999 are warnings,
// 2000-2999 are well-formedness errors, 3000-3999 are validation errors.
type ErrorCode int

// Severity returns the severity implied by the code's range.
func (c ErrorCode) Severity() Severity {
	switch {
	case c >= 1000 && c < 2000:
		return SeverityWarning
	case c >= 2000 && c < 3000:
		return SeverityError
	case c >= 3000 && c < 4000:
		return SeverityValidation
	default:
		return SeverityError
	}
}

const (
	// Warnings (1xxx).
	WarnDisallowedCharSubstituted ErrorCode = 1000 + iota
	WarnElementNotDeclared
	WarnAttributeNotDeclared
	WarnDuplicateAttlist
	WarnElementNeverDeclared
)

const (
	// Well-formedness errors (2xxx).
	ErrBadEncodingName ErrorCode = 2000 + iota
	ErrTruncatedSurrogate
	ErrDisallowedChar
	ErrRefillFailure
	ErrRecursiveEntityRef
	ErrEntityUnresolved
	ErrCannotOpenEntity
	ErrPartialMarkupEntity
	ErrUnterminatedComment
	ErrCommentDashDash
	ErrPITargetIsXML
	ErrCDATAEndInContent
	ErrNestedCDATA
	ErrAttrValueHasLT
	ErrExternalGeneralEntityInAttr
	ErrUnexpectedEOF
	ErrMalformedStartTag
	ErrMalformedEndTag
	ErrEndTagMismatch
	ErrDuplicateAttribute
	ErrMaxErrorsReached
	ErrMalformedMarkupDecl
	ErrDuplicateElementDecl
	ErrUnknownPEReference
)

const (
	// Validation errors (3xxx).
	ErrContentMismatch ErrorCode = 3000 + iota
	ErrContentTooFew
	ErrContentTooMany
	ErrRequiredAttrMissing
	ErrFixedAttrMismatch
	ErrAttrValueEmpty
	ErrAttrValueMalformedToken
	ErrUnresolvedEntityAttr
	ErrEnumerationNotMember
	ErrMultipleIDAttrs
	ErrUndeclaredNotation
	ErrUndeclaredNotationAttr
	ErrUnresolvedIDRef
)

// Diagnostic is the payload delivered to HandleXMLError: every diagnostic
// carries its code (which implies severity), message text, and the current
// position in the input.
type Diagnostic struct {
	Code     ErrorCode
	Message  string
	Line     int
	Column   int
	SystemID string
}

func (d Diagnostic) Severity() Severity { return d.Code.Severity() }

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)", d.SystemID, d.Line, d.Column, d.Message, d.Code.Severity())
}

// errEndOfEntity is the internal control-flow exception for end-of-entity:
// popping the spooler stack and optionally flushing buffered characters.
// It never escapes Parse.
type errEndOfEntity struct {
	decl      *EntityDecl
	spoolerID uint64
}

func (e *errEndOfEntity) Error() string { return "end of entity" }

// errMaxErrors is the internal control-flow exception for early
// termination once the per-parse error counter reaches MaxErrors. It never
// escapes Parse.
type errMaxErrors struct{}

func (e *errMaxErrors) Error() string { return "maximum error count reached" }
