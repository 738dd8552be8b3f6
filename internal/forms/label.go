package forms

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// maxSiblingLabelChars bounds how much preceding-sibling text is
	// accepted as a label; anything longer is page copy, not a label.
	maxSiblingLabelChars = 140
	// maxPrecedingSiblings bounds the backwards sibling search.
	maxPrecedingSiblings = 4
	// maxAncestorLevels bounds the upward label search.
	maxAncestorLevels = 7
)

// containerSelector matches the structural wrappers ATS vendors put around
// a control and its label.
const containerSelector = "li, fieldset, [class*='field'], [class*='form-group'], [class*='question'], [class*='input-wrapper']"

// labelishClassHints mark an element as label-like by class or attribute.
var labelishClassHints = []string{"label", "title", "heading", "question"}

// ResolveLabel returns the best human-readable label for one form control,
// or "". ATS vendors place labels in wildly different structural positions,
// so this is an ordered, bounded fallback chain; an unbounded search would
// pick up unrelated page text.
func ResolveLabel(doc *goquery.Document, sel *goquery.Selection) string {
	// 1. Ancestor label wrapping the control.
	if wrapping := sel.Closest("label"); wrapping.Length() > 0 {
		if text := labelText(wrapping); text != "" {
			return text
		}
	}

	// 2. Explicit for= association.
	if id, ok := sel.Attr("id"); ok && id != "" {
		associated := doc.Find(`label[for="` + id + `"]`).First()
		if text := labelText(associated); text != "" {
			return text
		}
	}

	// 3. ARIA label reference.
	if refs, ok := sel.Attr("aria-labelledby"); ok {
		var parts []string
		for _, ref := range strings.Fields(refs) {
			if text := labelText(doc.Find("#" + ref).First()); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	// 4. Nearest structural container: legend/label child first, then any
	// descendant whose class hints at label/title.
	if container := sel.Closest(containerSelector); container.Length() > 0 {
		if text := labelText(container.Find("legend, label").First()); text != "" {
			return text
		}
		if text := labelishDescendantText(container); text != "" {
			return text
		}
	}

	// 5. Preceding siblings, bounded and only if label-like.
	if text := precedingSiblingLabel(sel); text != "" {
		return text
	}

	// 6. Walk up a bounded number of ancestor levels looking for any label.
	ancestor := sel.Parent()
	for level := 0; level < maxAncestorLevels && ancestor.Length() > 0; level++ {
		if text := labelText(ancestor.Find("label").First()); text != "" {
			return text
		}
		ancestor = ancestor.Parent()
	}

	return ""
}

func precedingSiblingLabel(sel *goquery.Selection) string {
	siblings := sel.PrevAll()
	limit := siblings.Length()
	if limit > maxPrecedingSiblings {
		limit = maxPrecedingSiblings
	}

	// PrevAll yields nearest-first, which is the search order we want.
	for i := 0; i < limit; i++ {
		sibling := siblings.Eq(i)
		text := labelText(sibling)
		if text == "" || len(text) > maxSiblingLabelChars {
			continue
		}
		if looksLabelLike(sibling) {
			return text
		}
	}
	return ""
}

// looksLabelLike reports whether an element is plausibly a label: a
// label/legend/heading tag, a label-ish class, or a short generic text
// holder like a span or div.
func looksLabelLike(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "label", "legend", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	case "span", "div", "p", "strong", "b":
		// Short generic text is accepted; length was already bounded.
		return true
	}

	class, _ := sel.Attr("class")
	class = strings.ToLower(class)
	for _, hint := range labelishClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

func labelishDescendantText(container *goquery.Selection) string {
	var found string
	container.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		class = strings.ToLower(class)
		for _, hint := range labelishClassHints {
			if strings.Contains(class, hint) {
				if text := labelText(sel); text != "" {
					found = text
					return false
				}
			}
		}
		return true
	})
	return found
}

// labelText extracts normalized text from a label-ish element.
func labelText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.Text()), " ")
}
