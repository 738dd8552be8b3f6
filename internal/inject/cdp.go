// Package inject - cdp.go executes fill plans inside a live page over the
// DevTools protocol.
package inject

import (
	"context"
	"log"

	"github.com/chromedp/chromedp"
)

// Executor applies a fill plan to a live page.
type Executor interface {
	Fill(ctx context.Context, plan Plan) (Result, error)
}

// CDPExecutor evaluates fill scripts in the page attached to a chromedp
// context. Per-element failures are counted as skipped and never abort
// the pass; a failure in this code must never leak into the host page.
type CDPExecutor struct {
	Verbose bool
}

// Fill applies every instruction in order. The only returned error is a
// dead browser context; everything per-element is absorbed into Skipped.
func (e *CDPExecutor) Fill(ctx context.Context, plan Plan) (Result, error) {
	result := Result{Skipped: plan.PreSkipped}

	for _, ins := range plan.Instructions {
		script, err := Script(ins)
		if err != nil {
			result.Skipped++
			continue
		}

		var applied bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &applied)); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			if e.Verbose {
				log.Printf("[INJECT] %s (%s): evaluate failed: %v", ins.Attr, ins.Selector, err)
			}
			result.Skipped++
			continue
		}

		if applied {
			result.Filled++
			if e.Verbose {
				log.Printf("[INJECT] filled %s (%s)", ins.Attr, ins.Selector)
			}
		} else {
			result.Skipped++
			if e.Verbose {
				log.Printf("[INJECT] skipped %s (%s): not applied in page", ins.Attr, ins.Selector)
			}
		}
	}

	return result, nil
}
