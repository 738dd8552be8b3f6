// Package browser manages the connection to a running Chrome instance:
// tab contexts, target lifecycle watching, the on-demand agent
// attachment that messaging's retry path relies on, and the in-page
// badge indicator.
package browser

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Session wraps one browser connection and the per-tab chromedp contexts
// derived from it.
type Session struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	verbose    bool

	mu   sync.Mutex
	tabs map[string]tabHandle
}

type tabHandle struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Connect attaches to a browser. With a non-empty remoteURL it dials an
// existing instance's DevTools websocket; otherwise it launches a
// headless one.
func Connect(ctx context.Context, remoteURL string, verbose bool) (*Session, error) {
	session := &Session{verbose: verbose, tabs: make(map[string]tabHandle)}

	var allocCtx context.Context
	var cancel context.CancelFunc
	if remoteURL != "" {
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, remoteURL)
	} else {
		allocCtx, cancel = chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
			)...,
		)
	}
	session.cancels = append(session.cancels, cancel)

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	session.cancels = append(session.cancels, cancel)
	session.browserCtx = browserCtx

	// Force the browser connection open now so a bad remote URL fails
	// here instead of on the first command.
	if err := chromedp.Run(browserCtx); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if verbose {
		log.Printf("[BROWSER] connected (remote=%q)", remoteURL)
	}
	return session, nil
}

// Targets lists the browser's current page targets.
func (s *Session) Targets(ctx context.Context) ([]*target.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := chromedp.Targets(s.browserCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	var pages []*target.Info
	for _, info := range infos {
		if info.Type == "page" {
			pages = append(pages, info)
		}
	}
	return pages, nil
}

// TabContext returns a chromedp context bound to one target, creating it
// on first use. The context stays cached for the tab's lifetime.
func (s *Session) TabContext(targetID string) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if handle, ok := s.tabs[targetID]; ok {
		return handle.ctx, nil
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx,
		chromedp.WithTargetID(target.ID(targetID)))
	s.tabs[targetID] = tabHandle{ctx: tabCtx, cancel: cancel}
	return tabCtx, nil
}

// ReleaseTab drops a closed tab's cached context.
func (s *Session) ReleaseTab(targetID string) {
	s.mu.Lock()
	handle, ok := s.tabs[targetID]
	if ok {
		delete(s.tabs, targetID)
	}
	s.mu.Unlock()

	if ok {
		handle.cancel()
	}
}

// OpenTab creates a new tab navigated to url and returns its target id.
func (s *Session) OpenTab(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	if err := chromedp.Run(tabCtx, chromedp.Navigate(url), chromedp.WaitReady("body")); err != nil {
		cancel()
		return "", fmt.Errorf("failed to open tab for %s: %w", url, err)
	}

	targetID := string(chromedp.FromContext(tabCtx).Target.TargetID)

	s.mu.Lock()
	s.tabs[targetID] = tabHandle{ctx: tabCtx, cancel: cancel}
	s.mu.Unlock()

	return targetID, nil
}

// Close tears down every tab context and the browser connection.
func (s *Session) Close() {
	s.mu.Lock()
	for id, handle := range s.tabs {
		handle.cancel()
		delete(s.tabs, id)
	}
	s.mu.Unlock()

	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}
