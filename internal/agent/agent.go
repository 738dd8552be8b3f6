// Package agent composes detection, classification and injection against
// one live browser page. One agent owns one page's state for the page's
// lifetime; detection and autofill are synchronous scans that suspend
// only at the explicit scheduling points (debounce, second pass).
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/job-agent/internal/detect"
	"github.com/jonathan/job-agent/internal/forms"
	"github.com/jonathan/job-agent/internal/inject"
	"github.com/jonathan/job-agent/internal/profile"
)

const (
	// DefaultDebounce coalesces mutation bursts into one re-detection.
	DefaultDebounce = 800 * time.Millisecond
	// DefaultSecondPassDelay waits for conditionally mounted fields before
	// the second autofill pass.
	DefaultSecondPassDelay = 1500 * time.Millisecond
	// DefaultMutationPoll is how often the watch loop samples the page's
	// mutation counter.
	DefaultMutationPoll = 500 * time.Millisecond
)

// PageState is the agent's detection snapshot, replaced wholesale on
// every (re-)detection.
type PageState struct {
	IsJob      bool            `json:"is_job"`
	Extracted  *detect.JobInfo `json:"extracted,omitempty"`
	DetectedAt time.Time       `json:"detected_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// Page is the agent's view of one live browser page.
type Page interface {
	TargetID() string
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Fill(ctx context.Context, plan inject.Plan) (inject.Result, error)
	// MutationCount returns a monotonically increasing count of DOM
	// mutations observed in the page since the agent attached.
	MutationCount(ctx context.Context) (int64, error)
}

// Broadcast receives the one summary signal emitted per detection.
type Broadcast func(targetID string, isJob bool)

// Config tunes the agent's scheduling delays.
type Config struct {
	Debounce        time.Duration
	SecondPassDelay time.Duration
	MutationPoll    time.Duration
	Verbose         bool
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Debounce <= 0 {
		out.Debounce = DefaultDebounce
	}
	if out.SecondPassDelay <= 0 {
		out.SecondPassDelay = DefaultSecondPassDelay
	}
	if out.MutationPoll <= 0 {
		out.MutationPoll = DefaultMutationPoll
	}
	return out
}

// Agent owns one page's detection state and runs all scans against it.
type Agent struct {
	lifetime  context.Context
	page      Page
	broadcast Broadcast
	cfg       Config

	mu    sync.Mutex
	state PageState
	// pendingSeq implements last-scheduled-wins for both the detection
	// debounce and the delayed second autofill pass: a stale timer finds
	// its sequence superseded and does nothing.
	pendingSeq    uint64
	secondPassSeq uint64
}

// New creates an agent for one page. lifetime bounds the agent's deferred
// work (the debounced re-detection and the delayed second autofill pass),
// which must outlive any single command's context; nil means no bound.
// broadcast may be nil.
func New(lifetime context.Context, page Page, broadcast Broadcast, cfg Config) *Agent {
	if lifetime == nil {
		lifetime = context.Background()
	}
	if broadcast == nil {
		broadcast = func(string, bool) {}
	}
	return &Agent{lifetime: lifetime, page: page, broadcast: broadcast, cfg: cfg.withDefaults()}
}

// State returns a read-only snapshot of the current page state.
func (a *Agent) State() PageState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Detect runs one synchronous detection pass, replaces the stored state
// and broadcasts the summary signal. It never returns an error: failures
// degrade to the cheap URL heuristic and are recorded in LastError.
func (a *Agent) Detect(ctx context.Context) PageState {
	state := a.runDetection(ctx)

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	a.broadcast(a.page.TargetID(), state.IsJob)

	if a.cfg.Verbose {
		log.Printf("[AGENT] %s: isJob=%v title=%q err=%q",
			a.page.TargetID(), state.IsJob, titleOf(state.Extracted), state.LastError)
	}
	return state
}

func (a *Agent) runDetection(ctx context.Context) PageState {
	now := time.Now().UTC()

	pageURL, urlErr := a.page.URL(ctx)
	html, htmlErr := a.page.HTML(ctx)
	if err := firstError(urlErr, htmlErr); err != nil {
		return PageState{
			IsJob:      detect.MatchesKnownBoard(pageURL),
			DetectedAt: now,
			LastError:  fmt.Sprintf("page snapshot failed: %v", err),
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return PageState{
			IsJob:      detect.MatchesKnownBoard(pageURL),
			DetectedAt: now,
			LastError:  fmt.Sprintf("parse failed: %v", err),
		}
	}

	result := detect.Run(doc, pageURL)
	return PageState{
		IsJob:      result.IsJob,
		Extracted:  result.Info,
		DetectedAt: now,
		LastError:  result.LastError,
	}
}

// ScheduleDetect queues a debounced detection pass, superseding any
// pending one. A burst of DOM mutations collapses into one run after the
// quiet period.
func (a *Agent) ScheduleDetect(ctx context.Context) {
	a.mu.Lock()
	a.pendingSeq++
	seq := a.pendingSeq
	a.mu.Unlock()

	time.AfterFunc(a.cfg.Debounce, func() {
		a.mu.Lock()
		current := a.pendingSeq == seq
		a.mu.Unlock()
		if !current || ctx.Err() != nil {
			return
		}
		a.Detect(ctx)
	})
}

// Invalidate clears the stored state. Called when the page begins
// navigating to a new document; the next detection rebuilds it.
func (a *Agent) Invalidate() {
	a.mu.Lock()
	a.state = PageState{}
	// Any pending scheduled work belongs to the old document.
	a.pendingSeq++
	a.secondPassSeq++
	a.mu.Unlock()
}

// Autofill runs one full fill pass and schedules a single best-effort
// second pass for conditionally mounted fields. Only the first pass's
// result is surfaced. The second pass runs on the agent's lifetime, not
// the caller's context: the command that triggered the fill has usually
// been answered long before the delay elapses.
func (a *Agent) Autofill(ctx context.Context, view *profile.View) (inject.Result, error) {
	view.Normalize()

	result, err := a.fillOnce(ctx, view)
	if err != nil {
		return result, err
	}

	a.mu.Lock()
	a.secondPassSeq++
	seq := a.secondPassSeq
	a.mu.Unlock()

	time.AfterFunc(a.cfg.SecondPassDelay, func() {
		a.mu.Lock()
		current := a.secondPassSeq == seq
		a.mu.Unlock()
		if !current || a.lifetime.Err() != nil {
			return
		}
		if _, err := a.fillOnce(a.lifetime, view); err != nil && a.cfg.Verbose {
			log.Printf("[AGENT] %s: second autofill pass failed: %v", a.page.TargetID(), err)
		}
	})

	return result, nil
}

func (a *Agent) fillOnce(ctx context.Context, view *profile.View) (inject.Result, error) {
	html, err := a.page.HTML(ctx)
	if err != nil {
		return inject.Result{}, fmt.Errorf("page snapshot failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return inject.Result{}, fmt.Errorf("parse failed: %w", err)
	}

	controls := forms.Scan(doc)
	plan := inject.BuildPlan(controls, view)

	if a.cfg.Verbose {
		log.Printf("[AGENT] %s: %d controls, %d fill targets",
			a.page.TargetID(), len(controls), len(plan.Instructions))
	}

	return a.page.Fill(ctx, plan)
}

// Watch runs one initial detection pass, then polls the page's mutation
// counter and schedules debounced re-detection when the DOM changes. It
// also notices in-page URL changes (client-side routing) and invalidates
// state before re-detecting. Blocks until ctx is done.
func (a *Agent) Watch(ctx context.Context) error {
	lastURL, urlErr := a.page.URL(ctx)
	haveURL := urlErr == nil
	if urlErr != nil && a.cfg.Verbose {
		log.Printf("[AGENT] %s: initial url read failed: %v", a.page.TargetID(), urlErr)
	}
	var lastCount int64

	// Static pages never mutate; without this pass they would never be
	// detected or broadcast at all.
	a.Detect(ctx)

	ticker := time.NewTicker(a.cfg.MutationPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if currentURL, err := a.page.URL(ctx); err == nil {
			switch {
			case !haveURL:
				// The first read failed; adopt the URL without treating
				// it as a navigation.
				haveURL = true
				lastURL = currentURL
			case currentURL != lastURL:
				lastURL = currentURL
				a.Invalidate()
				a.ScheduleDetect(ctx)
				continue
			}
		}

		count, err := a.page.MutationCount(ctx)
		if err != nil {
			continue
		}
		if count != lastCount {
			lastCount = count
			a.ScheduleDetect(ctx)
		}
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func titleOf(info *detect.JobInfo) string {
	if info == nil {
		return ""
	}
	return info.Title
}
