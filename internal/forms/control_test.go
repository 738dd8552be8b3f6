package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	doc := parseHTML(t, `<html><body><form>
<input name="plain">
<input type="text" name="text">
<input type="email" name="email">
<textarea name="area"></textarea>
<select name="pick"><option>A</option></select>
<input type="file" name="upload">
<input type="hidden" name="csrf">
<input type="submit" value="Go">
<input type="checkbox" name="agree">
<input name="locked" disabled>
<input name="frozen" readonly>
<select name="dead" disabled><option>A</option></select>
</form></body></html>`)

	wants := []ControlKind{
		KindText, KindText, KindText, KindText, KindSelect,
		KindFile, KindUnsupported, KindUnsupported, KindUnsupported,
		KindUnsupported, KindUnsupported, KindUnsupported,
	}

	controls := doc.Find(ControlQuery())
	require.Equal(t, len(wants), controls.Length())

	for i, want := range wants {
		assert.Equal(t, want, KindOf(controls.Eq(i)), "control %d", i)
	}
}

func TestScan_ClassifiesInDocumentOrder(t *testing.T) {
	doc := parseHTML(t, `<html><body><form>
<input name="first_name">
<input name="last_name">
<input type="email" name="email">
<input type="tel" name="phone">
<input type="file" name="resume">
</form></body></html>`)

	controls := Scan(doc)
	require.Len(t, controls, 5)

	assert.Equal(t, AttrFirstName, controls[0].Attribute)
	assert.Equal(t, AttrLastName, controls[1].Attribute)
	assert.Equal(t, AttrEmail, controls[2].Attribute)
	assert.Equal(t, AttrPhone, controls[3].Attribute)
	assert.Equal(t, KindFile, controls[4].Kind)

	for i, control := range controls {
		assert.Equal(t, i, control.Index)
	}
}

func TestScan_SelectorPrefersID(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<input id="em" name="email">
<input name="phone">
<input>
</body></html>`)

	controls := Scan(doc)
	require.Len(t, controls, 3)

	assert.Equal(t, "#em", controls[0].Selector)
	assert.Equal(t, `input[name="phone"]`, controls[1].Selector)
	assert.Equal(t, "", controls[2].Selector)
}
