// Package forms inspects application-form controls: what kind of control
// an element is, what its human-readable label is, and which candidate
// profile attribute it should receive. All inspection is read-only over a
// parsed HTML snapshot; actually writing values is the inject package's job.
package forms

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ControlKind is an explicit tagged classification of a form element's
// capability, computed once per element up front instead of ad hoc
// attribute checks scattered through the fill pass.
type ControlKind int

const (
	// KindText is a free-text control (input, textarea) that accepts a value.
	KindText ControlKind = iota
	// KindSelect is a dropdown whose value is chosen by option matching.
	KindSelect
	// KindFile is a file upload; always left to the user, browsers forbid
	// programmatic file selection.
	KindFile
	// KindUnsupported covers disabled, read-only, hidden, submit and other
	// controls that must never be written to.
	KindUnsupported
)

func (k ControlKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSelect:
		return "select"
	case KindFile:
		return "file"
	default:
		return "unsupported"
	}
}

// controlQuery selects every form control in document order. The inject
// package addresses elements by index into this same query, so the two
// must stay in lockstep.
const controlQuery = "input, select, textarea"

// Control describes one form element found during a scan.
type Control struct {
	// Index is the element's position within ControlQuery document order;
	// it is how the live page element is addressed during injection.
	Index     int
	Kind      ControlKind
	Signature string
	Attribute Attribute
	// Selector is a best-effort CSS selector for logs; may be empty for
	// anonymous controls.
	Selector string
}

// ControlQuery returns the selector shared between scanning and injection.
func ControlQuery() string {
	return controlQuery
}

// Scan walks every form control on the page and returns its classified
// description. Ordering matches document order.
func Scan(doc *goquery.Document) []Control {
	var controls []Control

	doc.Find(controlQuery).Each(func(i int, sel *goquery.Selection) {
		signature := Signature(doc, sel)
		controls = append(controls, Control{
			Index:     i,
			Kind:      KindOf(sel),
			Signature: signature,
			Attribute: Classify(signature),
			Selector:  selectorFor(sel),
		})
	})

	return controls
}

// KindOf computes the tagged capability classification for one element.
func KindOf(sel *goquery.Selection) ControlKind {
	if _, disabled := sel.Attr("disabled"); disabled {
		return KindUnsupported
	}
	if _, readonly := sel.Attr("readonly"); readonly {
		return KindUnsupported
	}

	switch goquery.NodeName(sel) {
	case "select":
		return KindSelect
	case "textarea":
		return KindText
	case "input":
		inputType, _ := sel.Attr("type")
		switch strings.ToLower(inputType) {
		case "file":
			return KindFile
		case "hidden", "submit", "button", "reset", "image", "checkbox", "radio":
			return KindUnsupported
		default:
			return KindText
		}
	default:
		return KindUnsupported
	}
}

func selectorFor(sel *goquery.Selection) string {
	if id, ok := sel.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if name, ok := sel.Attr("name"); ok && name != "" {
		return fmt.Sprintf(`%s[name=%q]`, goquery.NodeName(sel), name)
	}
	return ""
}
