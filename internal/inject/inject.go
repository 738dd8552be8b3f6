// Package inject writes candidate values into live form controls such
// that both the native DOM and any framework observing the element
// converge on the new value. Planning is pure; execution happens in-page
// over the DevTools protocol.
package inject

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/job-agent/internal/forms"
	"github.com/jonathan/job-agent/internal/profile"
)

// Instruction addresses one control by its position in the shared control
// query and carries the value to write.
type Instruction struct {
	Index    int              `json:"index"`
	Kind     forms.ControlKind `json:"-"`
	Attr     forms.Attribute  `json:"attr"`
	Value    string           `json:"-"`
	Selector string           `json:"selector,omitempty"`
}

// Result reports one autofill pass. Purely informational; no retry state.
type Result struct {
	Filled  int `json:"filled"`
	Skipped int `json:"skipped"`
}

// Plan is the outcome of matching scanned controls against a profile.
type Plan struct {
	Instructions []Instruction
	// PreSkipped counts controls that classified with a non-empty value
	// but can never be written (disabled, read-only, unsupported types).
	PreSkipped int
}

// BuildPlan matches classified controls against the profile view.
// File inputs are excluded outright: they are neither filled nor counted,
// since document upload must remain a manual user action. Unclassified
// controls and classified controls with no profile value are left
// untouched and uncounted.
func BuildPlan(controls []forms.Control, view *profile.View) Plan {
	var plan Plan

	for _, control := range controls {
		if control.Kind == forms.KindFile {
			continue
		}
		if control.Attribute == forms.AttrNone {
			continue
		}
		value := view.ValueFor(control.Attribute)
		if value == "" {
			continue
		}
		if control.Kind == forms.KindUnsupported {
			plan.PreSkipped++
			continue
		}

		plan.Instructions = append(plan.Instructions, Instruction{
			Index:    control.Index,
			Kind:     control.Kind,
			Attr:     control.Attribute,
			Value:    value,
			Selector: control.Selector,
		})
	}

	return plan
}

// fillTextTemplate sets a text-like control's value through the prototype
// property setter, bypassing instance-level setter overrides a framework
// may have installed. If the node carries an internal value tracker, the
// tracker is reset to the previous value before events fire so the
// framework's own change detection still triggers. Events dispatch in
// input, change, blur order.
const fillTextTemplate = `(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	if (!el || el.disabled || el.readOnly) return false;
	const proto = el instanceof HTMLTextAreaElement
		? HTMLTextAreaElement.prototype
		: HTMLInputElement.prototype;
	const desc = Object.getOwnPropertyDescriptor(proto, 'value');
	if (!desc || !desc.set) return false;
	const prev = el.value;
	desc.set.call(el, %s);
	const tracker = el._valueTracker;
	if (tracker && typeof tracker.setValue === 'function') {
		tracker.setValue(prev);
	}
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
	el.dispatchEvent(new Event('blur', {bubbles: true}));
	return true;
})()`

// fillSelectTemplate matches the desired text against option labels with
// case-insensitive substring containment and selects the first match's
// underlying value. No match leaves the control untouched.
const fillSelectTemplate = `(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	if (!el || el.disabled || el.tagName !== 'SELECT') return false;
	const want = %s.toLowerCase().trim();
	if (!want) return false;
	for (const opt of el.options) {
		const label = (opt.text || '').toLowerCase().trim();
		if (!label) continue;
		if (label.includes(want) || want.includes(label)) {
			el.value = opt.value;
			el.dispatchEvent(new Event('input', {bubbles: true}));
			el.dispatchEvent(new Event('change', {bubbles: true}));
			return true;
		}
	}
	return false;
})()`

// Script renders the in-page fill expression for one instruction.
// The expression evaluates to true when the value was applied.
func Script(ins Instruction) (string, error) {
	value, err := json.Marshal(ins.Value)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	query, err := json.Marshal(forms.ControlQuery())
	if err != nil {
		return "", fmt.Errorf("failed to encode control query: %w", err)
	}

	switch ins.Kind {
	case forms.KindText:
		return fmt.Sprintf(fillTextTemplate, query, ins.Index, value), nil
	case forms.KindSelect:
		return fmt.Sprintf(fillSelectTemplate, query, ins.Index, value), nil
	default:
		return "", fmt.Errorf("control kind %s is not injectable", ins.Kind)
	}
}
