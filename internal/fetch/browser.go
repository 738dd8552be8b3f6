package fetch

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider a plain
// HTTP fetch usable. Shorter pages are assumed to be JavaScript shells.
const MinContentLength = 500

// hydrationDelay gives client-side frameworks time to render after the
// body is ready. ATS boards routinely paint the posting a beat late.
const hydrationDelay = 3 * time.Second

// cookieBannerSelector matches the accept button of common consent banners.
const cookieBannerSelector = `button[id*="accept"], button[class*="accept"]`

// ShouldRender reports whether the extracted text is too short to analyze,
// indicating the page needs a headless browser pass.
func ShouldRender(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Rendered loads a page in a throwaway headless browser and returns the
// rendered HTML. Requires Chrome/Chromium on the system.
func Rendered(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(hydrationDelay),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Consent banners cover the description on some boards.
			// A missing button is fine.
			_ = chromedp.Click(cookieBannerSelector, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	if verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}
