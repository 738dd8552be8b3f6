// Package registry tracks per-tab detection state for the browser
// session and drives the visual indicator. It only ever observes the one
// summary signal broadcast by page agents; it never talks to external
// services.
package registry

import (
	"context"
	"log"
	"sync"
	"time"
)

// TabState is one tab's observed detection summary.
type TabState struct {
	IsJob      bool      `json:"is_job"`
	ObservedAt time.Time `json:"observed_at"`
}

// Indicator presents per-tab detection state to the user. Implementations
// must tolerate being called for tabs that have already closed.
type Indicator interface {
	Show(ctx context.Context, targetID string, isJob bool) error
	Clear(ctx context.Context, targetID string) error
}

// NopIndicator discards all indicator updates (headless / CLI use).
type NopIndicator struct{}

func (NopIndicator) Show(context.Context, string, bool) error { return nil }
func (NopIndicator) Clear(context.Context, string) error      { return nil }

// Event is one observed tab lifecycle change, delivered to subscribers.
type Event struct {
	TargetID   string    `json:"target_id"`
	IsJob      bool      `json:"is_job"`
	Closed     bool      `json:"closed,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// Registry is the keyed tab-id store. Entries are created on the first
// broadcast, reset to unknown when the tab starts loading a new document
// and removed when the tab closes. All mutation goes through these three
// lifecycle transitions; there are no other writers.
type Registry struct {
	mu          sync.RWMutex
	tabs        map[string]TabState
	indicator   Indicator
	verbose     bool
	nextSubID   int
	subscribers map[int]chan Event
}

// New creates a registry. indicator may be nil.
func New(indicator Indicator, verbose bool) *Registry {
	if indicator == nil {
		indicator = NopIndicator{}
	}
	return &Registry{
		tabs:        make(map[string]TabState),
		indicator:   indicator,
		verbose:     verbose,
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe returns a channel of tab events and a cancel func. Slow
// subscribers lose events rather than block the signal path.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	ch := make(chan Event, 16)
	r.subscribers[id] = ch

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if sub, ok := r.subscribers[id]; ok {
			delete(r.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish must be called with r.mu held.
func (r *Registry) publish(event Event) {
	for _, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// HandleSignal records a page agent's broadcast and updates the
// indicator.
func (r *Registry) HandleSignal(ctx context.Context, targetID string, isJob bool) {
	observed := time.Now().UTC()
	r.mu.Lock()
	r.tabs[targetID] = TabState{IsJob: isJob, ObservedAt: observed}
	r.publish(Event{TargetID: targetID, IsJob: isJob, ObservedAt: observed})
	r.mu.Unlock()

	if err := r.indicator.Show(ctx, targetID, isJob); err != nil && r.verbose {
		log.Printf("[REGISTRY] indicator update failed for %s: %v", targetID, err)
	}
	if r.verbose {
		log.Printf("[REGISTRY] %s: isJob=%v", targetID, isJob)
	}
}

// HandleNavigationStart resets a tab to unknown the moment it begins
// loading a new document. Clearing on load-start rather than load-finish
// keeps a stale positive badge from showing over the next page.
func (r *Registry) HandleNavigationStart(ctx context.Context, targetID string) {
	r.mu.Lock()
	if _, known := r.tabs[targetID]; known {
		r.tabs[targetID] = TabState{}
	}
	r.mu.Unlock()

	if err := r.indicator.Clear(ctx, targetID); err != nil && r.verbose {
		log.Printf("[REGISTRY] indicator clear failed for %s: %v", targetID, err)
	}
}

// HandleClosed removes a closed tab's entry entirely.
func (r *Registry) HandleClosed(targetID string) {
	r.mu.Lock()
	delete(r.tabs, targetID)
	r.publish(Event{TargetID: targetID, Closed: true, ObservedAt: time.Now().UTC()})
	r.mu.Unlock()

	if r.verbose {
		log.Printf("[REGISTRY] %s: closed", targetID)
	}
}

// State returns one tab's entry.
func (r *Registry) State(targetID string) (TabState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.tabs[targetID]
	return state, ok
}

// Snapshot returns a copy of all tracked tabs.
func (r *Registry) Snapshot() map[string]TabState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]TabState, len(r.tabs))
	for id, state := range r.tabs {
		out[id] = state
	}
	return out
}
