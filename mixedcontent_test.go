package cidxml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMixedContentSetAllowsDeclaredNamesOnly(t *testing.T) {
	set := newMixedContentSet([]string{"b", "i", "em"})

	require.True(t, set.Allows("b"))
	require.True(t, set.Allows("em"))
	require.False(t, set.Allows("div"))
}

func TestDTDValidationMixedContentRejectsUndeclaredChild(t *testing.T) {
	_, diags := parseValidating(t, `<?xml version="1.0"?>
<!DOCTYPE p [
<!ELEMENT p (#PCDATA|b|i)*>
<!ELEMENT b (#PCDATA)>
<!ELEMENT i (#PCDATA)>
<!ELEMENT div (#PCDATA)>
]>
<p>hello <b>world</b> <div>nope</div></p>`)

	require.Contains(t, diagCodes(diags), ErrContentMismatch)
}
