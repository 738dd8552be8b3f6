// Package agent - cdppage.go binds an agent to a real browser tab over
// the DevTools protocol.
package agent

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/jonathan/job-agent/internal/inject"
)

// mutationObserverScript installs a counting MutationObserver once per
// document. The counter is the cheapest cross-protocol signal for "the
// DOM changed since last poll"; the agent debounces on top of it.
const mutationObserverScript = `(() => {
	if (window.__jobAgentMutations === undefined) {
		window.__jobAgentMutations = 0;
		new MutationObserver(() => { window.__jobAgentMutations++; })
			.observe(document.documentElement, {childList: true, subtree: true, attributes: true});
	}
	return window.__jobAgentMutations;
})()`

// CDPPage implements Page against a chromedp tab context.
type CDPPage struct {
	targetID string
	// tabCtx is the chromedp context bound to this tab. chromedp actions
	// must run on it, not on whatever context the caller holds.
	tabCtx   context.Context
	executor inject.CDPExecutor
}

// NewCDPPage wraps an attached chromedp tab context.
func NewCDPPage(tabCtx context.Context, targetID string, verbose bool) *CDPPage {
	return &CDPPage{
		targetID: targetID,
		tabCtx:   tabCtx,
		executor: inject.CDPExecutor{Verbose: verbose},
	}
}

// TargetID returns the CDP target this page is bound to.
func (p *CDPPage) TargetID() string { return p.targetID }

// URL returns the page's current location.
func (p *CDPPage) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var url string
	if err := chromedp.Run(p.tabCtx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

// HTML snapshots the full rendered document.
func (p *CDPPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var html string
	if err := chromedp.Run(p.tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to snapshot document: %w", err)
	}
	return html, nil
}

// Fill applies a fill plan inside the live page.
func (p *CDPPage) Fill(ctx context.Context, plan inject.Plan) (inject.Result, error) {
	if err := ctx.Err(); err != nil {
		return inject.Result{}, err
	}
	return p.executor.Fill(p.tabCtx, plan)
}

// MutationCount installs the observer on first call and returns the
// page's mutation counter.
func (p *CDPPage) MutationCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int64
	if err := chromedp.Run(p.tabCtx, chromedp.Evaluate(mutationObserverScript, &count)); err != nil {
		return 0, fmt.Errorf("failed to read mutation counter: %w", err)
	}
	return count, nil
}
