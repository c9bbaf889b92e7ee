package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseValidating(t *testing.T, xml string) (*Document, []Diagnostic) {
	t.Helper()
	p := NewParser()
	p.SetOptions(Validate)
	doc, diags, err := p.Parse([]byte(xml))
	require.NoError(t, err)
	return doc, diags
}

func diagCodes(diags []Diagnostic) []ErrorCode {
	out := make([]ErrorCode, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestDTDValidationAcceptsWellFormedDocument(t *testing.T) {
	doc, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root (item)*>
<!ELEMENT item EMPTY>
]>
<root><item/><item/></root>`)

	for _, d := range diags {
		require.NotEqual(t, SeverityValidation, d.Severity(), d.Error())
	}
	require.NotNil(t, doc)
}

func TestDTDValidationMissingRequiredAttribute(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root (child)*>
<!ELEMENT child EMPTY>
<!ATTLIST child id ID #REQUIRED>
]>
<root><child/></root>`)

	require.Contains(t, diagCodes(diags), ErrRequiredAttrMissing)
}

func TestDTDValidationContentModelMismatch(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root (a, b)>
<!ELEMENT a EMPTY>
<!ELEMENT b EMPTY>
]>
<root><b/><a/></root>`)

	found := false
	for _, code := range diagCodes(diags) {
		if code == ErrContentMismatch || code == ErrContentTooFew || code == ErrContentTooMany {
			found = true
		}
	}
	require.True(t, found, "expected a content-model diagnostic, got %v", diagCodes(diags))
}

func TestDTDValidationDefaultAttributeInjection(t *testing.T) {
	doc, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root EMPTY>
<!ATTLIST root lang CDATA "en">
]>
<root/>`)

	for _, d := range diags {
		require.NotEqual(t, SeverityValidation, d.Severity(), d.Error())
	}

	root, _, ok := doc.Find("/root")
	require.True(t, ok)
	elem, ok := root.(*Element)
	require.True(t, ok)

	attr, ok := elem.Attribute("lang")
	require.True(t, ok, "default attribute value should have been injected")
	require.Equal(t, "en", attr.Value())
}

func TestDTDValidationFixedAttributeMismatch(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root EMPTY>
<!ATTLIST root lang CDATA #FIXED "en">
]>
<root lang="fr"/>`)

	require.Contains(t, diagCodes(diags), ErrFixedAttrMismatch)
}

func TestDTDValidationEnumerationViolation(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE root [
<!ELEMENT root EMPTY>
<!ATTLIST root status (on|off) #REQUIRED>
]>
<root status="maybe"/>`)

	require.Contains(t, diagCodes(diags), ErrEnumerationNotMember)
}

func TestDTDValidationUndeclaredElementWarns(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<root><mystery/></root>`)

	found := false
	for _, d := range diags {
		if d.Code == WarnElementNotDeclared || d.Code == WarnElementNeverDeclared {
			found = true
		}
	}
	require.True(t, found, "expected a not-declared warning without a DOCTYPE, got %v", diagCodes(diags))
}
