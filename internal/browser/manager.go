// Package browser - manager.go ties the session to the agent hub and the
// tab registry: it watches target lifecycle and attaches page agents on
// demand.
package browser

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/registry"
	"golang.org/x/sync/errgroup"
)

// DefaultTargetPoll is how often the manager samples the browser's
// target list for navigations and closed tabs.
const DefaultTargetPoll = time.Second

// Manager wires session, hub and registry together. It implements
// messaging.Attacher, which is the recovery path for commands sent to
// tabs with no agent yet.
type Manager struct {
	session    *Session
	hub        *messaging.Hub
	registry   *registry.Registry
	agentCfg   agent.Config
	targetPoll time.Duration
	verbose    bool
}

// NewManager builds a manager over an open session.
func NewManager(session *Session, hub *messaging.Hub, reg *registry.Registry, agentCfg agent.Config) *Manager {
	return &Manager{
		session:    session,
		hub:        hub,
		registry:   reg,
		agentCfg:   agentCfg,
		targetPoll: DefaultTargetPoll,
		verbose:    agentCfg.Verbose,
	}
}

// Attach binds a page agent to one target and starts its mutation watch.
// Satisfies messaging.Attacher.
func (m *Manager) Attach(ctx context.Context, targetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := m.hub.Agent(targetID); ok {
		return nil
	}

	tabCtx, err := m.session.TabContext(targetID)
	if err != nil {
		return err
	}

	// The tab context is the page's lifetime: it outlives the caller's
	// ctx (which may be a single request) and dies when the tab closes.
	// The agent's deferred work and watch loop are bound to it.
	page := agent.NewCDPPage(tabCtx, targetID, m.verbose)
	a := agent.New(tabCtx, page, func(id string, isJob bool) {
		m.registry.HandleSignal(tabCtx, id, isJob)
	}, m.agentCfg)

	m.hub.Register(targetID, a)

	go func() {
		if err := a.Watch(tabCtx); err != nil && tabCtx.Err() == nil && m.verbose {
			log.Printf("[BROWSER] watch ended for %s: %v", targetID, err)
		}
	}()

	if m.verbose {
		log.Printf("[BROWSER] agent attached to %s", targetID)
	}
	return nil
}

// AttachAll attaches an agent to every open page target.
func (m *Manager) AttachAll(ctx context.Context) error {
	targets, err := m.session.Targets(ctx)
	if err != nil {
		return err
	}
	for _, info := range targets {
		if err := m.Attach(ctx, string(info.TargetID)); err != nil && m.verbose {
			log.Printf("[BROWSER] failed to attach to %s: %v", info.TargetID, err)
		}
	}
	return nil
}

// Run watches target lifecycle until ctx is done: navigations reset
// registry state, closed tabs are evicted everywhere.
func (m *Manager) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.watchTargets(ctx) })
	return g.Wait()
}

func (m *Manager) watchTargets(ctx context.Context) error {
	known := make(map[string]string) // target id -> last seen URL

	ticker := time.NewTicker(m.targetPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		targets, err := m.session.Targets(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		seen := make(map[string]bool, len(targets))
		for _, info := range targets {
			id := string(info.TargetID)
			seen[id] = true

			lastURL, tracked := known[id]
			known[id] = info.URL

			if tracked && lastURL != info.URL {
				// The tab started loading a new document: optimistic
				// clear, then let the agent (if any) re-detect.
				m.registry.HandleNavigationStart(ctx, id)
				if a, ok := m.hub.Agent(id); ok {
					a.Invalidate()
					a.ScheduleDetect(ctx)
				}
			}
		}

		for id := range known {
			if !seen[id] {
				delete(known, id)
				m.registry.HandleClosed(id)
				m.hub.Unregister(id)
				m.session.ReleaseTab(id)
			}
		}
	}
}
