package forms

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func resolveFirst(t *testing.T, html string) string {
	t.Helper()
	doc := parseHTML(t, html)
	sel := doc.Find("input, select, textarea").First()
	require.Equal(t, 1, sel.Length(), "test page must contain a control")
	return ResolveLabel(doc, sel)
}

func TestResolveLabel_WrappingLabel(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<label>Email Address <input type="email"></label>
</body></html>`)
	assert.Equal(t, "Email Address", label)
}

func TestResolveLabel_ForAssociation(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<label for="phone">Phone Number</label>
<div><input id="phone"></div>
</body></html>`)
	assert.Equal(t, "Phone Number", label)
}

func TestResolveLabel_AriaLabelledBy(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<span id="q1">Years of Experience</span>
<input aria-labelledby="q1">
</body></html>`)
	assert.Equal(t, "Years of Experience", label)
}

func TestResolveLabel_ContainerLegend(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<fieldset><legend>Current Location</legend><div><input name="x"></div></fieldset>
</body></html>`)
	assert.Equal(t, "Current Location", label)
}

func TestResolveLabel_ContainerLabelishClass(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<div class="application-field">
  <div class="field-title">GitHub Profile</div>
  <div><input name="x"></div>
</div>
</body></html>`)
	assert.Equal(t, "GitHub Profile", label)
}

func TestResolveLabel_PrecedingSibling(t *testing.T) {
	// No label association, no ARIA reference; a short preceding sibling
	// must be accepted.
	label := resolveFirst(t, `<html><body><div>
<span>College Name</span>
<input name="x">
</div></body></html>`)
	assert.Equal(t, "College Name", label)
}

func TestResolveLabel_LongSiblingRejected(t *testing.T) {
	long := strings.Repeat("page copy ", 30)
	label := resolveFirst(t, `<html><body><div>
<span>`+long+`</span>
<input name="x">
</div></body></html>`)
	assert.Equal(t, "", label)
}

func TestResolveLabel_SiblingSearchBounded(t *testing.T) {
	// The label sits five siblings back, past the four-sibling bound.
	label := resolveFirst(t, `<html><body><div>
<span>Too Far Away</span>
<br><br><br><br>
<input name="x">
</div></body></html>`)
	assert.Equal(t, "", label)
}

func TestResolveLabel_AncestorWalk(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<div><label>Degree</label>
  <div><div><input name="x"></div></div>
</div>
</body></html>`)
	assert.Equal(t, "Degree", label)
}

func TestResolveLabel_NoLabelAnywhere(t *testing.T) {
	label := resolveFirst(t, `<html><body><input name="x"></body></html>`)
	assert.Equal(t, "", label)
}

func TestResolveLabel_WhitespaceNormalized(t *testing.T) {
	label := resolveFirst(t, `<html><body>
<label>  First
   Name  <input></label>
</body></html>`)
	assert.Equal(t, "First Name", label)
}
