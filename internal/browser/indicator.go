// Package browser - indicator.go renders the per-tab badge. A CDP-driven
// agent has no toolbar icon, so the badge is a small fixed overlay
// injected into the page itself.
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

// showBadgeScript mounts or updates the overlay badge.
const showBadgeScript = `(() => {
	let badge = document.getElementById('__job_agent_badge');
	if (!badge) {
		badge = document.createElement('div');
		badge.id = '__job_agent_badge';
		badge.style.cssText = 'position:fixed;top:12px;right:12px;z-index:2147483647;' +
			'padding:4px 10px;border-radius:4px;font:bold 12px sans-serif;' +
			'color:#fff;pointer-events:none;';
		document.documentElement.appendChild(badge);
	}
	badge.textContent = %q;
	badge.style.background = %q;
	badge.style.display = badge.textContent ? 'block' : 'none';
	return true;
})()`

// clearBadgeScript removes the overlay badge if present.
const clearBadgeScript = `(() => {
	const badge = document.getElementById('__job_agent_badge');
	if (badge) badge.remove();
	return true;
})()`

const (
	badgeText  = "JOB"
	badgeColor = "#16a34a"
)

// BadgeIndicator implements registry.Indicator with the page overlay.
type BadgeIndicator struct {
	session *Session
}

// NewBadgeIndicator builds an indicator over the session's tab contexts.
func NewBadgeIndicator(session *Session) *BadgeIndicator {
	return &BadgeIndicator{session: session}
}

// Show sets the badge text and color for one tab. A negative signal
// shows no badge at all.
func (b *BadgeIndicator) Show(_ context.Context, targetID string, isJob bool) error {
	text, color := "", ""
	if isJob {
		text, color = badgeText, badgeColor
	}

	tabCtx, err := b.session.TabContext(targetID)
	if err != nil {
		return err
	}

	var ok bool
	script := fmt.Sprintf(showBadgeScript, text, color)
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("failed to update badge on %s: %w", targetID, err)
	}
	return nil
}

// Clear removes the badge from one tab. Tabs that already navigated away
// lose the overlay with the old document, so failures here are expected.
func (b *BadgeIndicator) Clear(_ context.Context, targetID string) error {
	tabCtx, err := b.session.TabContext(targetID)
	if err != nil {
		return err
	}

	var ok bool
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(clearBadgeScript, &ok)); err != nil {
		return fmt.Errorf("failed to clear badge on %s: %w", targetID, err)
	}
	return nil
}
