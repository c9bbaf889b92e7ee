package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parseWellFormed(t *testing.T, xml string) (*Document, []Diagnostic) {
	t.Helper()
	p := NewParser()
	doc, diags, err := p.Parse([]byte(xml))
	require.NoError(t, err)
	return doc, diags
}

func TestParserRejectsCDATAEndMarkerInContent(t *testing.T) {
	_, diags := parseWellFormed(t, `<root>a]]>b</root>`)
	require.Contains(t, diagCodes(diags), ErrCDATAEndInContent)
}

func TestParserAcceptsCDATAEndMarkerWithinCDATASection(t *testing.T) {
	_, diags := parseWellFormed(t, `<root><![CDATA[a]]></root>`)
	require.NotContains(t, diagCodes(diags), ErrCDATAEndInContent)
}

func TestParserRejectsNestedCDATAStart(t *testing.T) {
	_, diags := parseWellFormed(t, `<root><![CDATA[outer <![CDATA[ inner ]]></root>`)
	require.Contains(t, diagCodes(diags), ErrNestedCDATA)
}
