// Package messaging routes control-surface commands to per-tab page
// agents. A command gets exactly one reply or an explicit no-receiver
// failure; there are no timeouts and no queues.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/inject"
	"github.com/jonathan/job-agent/internal/profile"
)

// Command names mirror the wire protocol.
const (
	CmdGetPageInfo = "get-page-info"
	CmdForceDetect = "force-detect"
	CmdAutofill    = "autofill"
)

// ErrNoReceiver is returned when no agent is attached to the target tab.
// Detected with errors.Is, never by matching error text.
var ErrNoReceiver = errors.New("no receiving end in target tab")

// ErrUnknownCommand is returned for a command outside the protocol.
var ErrUnknownCommand = errors.New("unknown command")

// DefaultRetryDelay is the fixed wait between on-demand attachment and
// the single retry.
const DefaultRetryDelay = 500 * time.Millisecond

// Request is one command addressed to a tab's agent.
type Request struct {
	Command string        `json:"command"`
	Profile *profile.View `json:"profile,omitempty"`
}

// Response is the single reply to a request.
type Response struct {
	OK     bool             `json:"ok"`
	State  *agent.PageState `json:"state,omitempty"`
	Result *inject.Result   `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Hub holds the agents currently attached to tabs. It is the transport:
// Send either reaches the one agent for the target or fails with
// ErrNoReceiver.
type Hub struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{agents: make(map[string]*agent.Agent)}
}

// Register attaches an agent to a target id, replacing any previous one.
func (h *Hub) Register(targetID string, a *agent.Agent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.agents[targetID] = a
}

// Unregister removes the agent for a target.
func (h *Hub) Unregister(targetID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.agents, targetID)
}

// Agent returns the agent attached to a target, if any.
func (h *Hub) Agent(targetID string) (*agent.Agent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.agents[targetID]
	return a, ok
}

// Send dispatches one command to the target's agent and returns its only
// reply.
func (h *Hub) Send(ctx context.Context, targetID string, req Request) (Response, error) {
	a, ok := h.Agent(targetID)
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrNoReceiver, targetID)
	}

	switch req.Command {
	case CmdGetPageInfo:
		state := a.State()
		return Response{OK: true, State: &state}, nil

	case CmdForceDetect:
		state := a.Detect(ctx)
		return Response{OK: true, State: &state}, nil

	case CmdAutofill:
		if req.Profile == nil {
			return Response{OK: false, Error: "autofill requires a profile"}, nil
		}
		result, err := a.Autofill(ctx, req.Profile)
		if err != nil {
			return Response{OK: false, Error: err.Error()}, nil
		}
		return Response{OK: true, Result: &result}, nil

	default:
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
}

// Attacher injects an agent into a tab on demand, the recovery path for
// tabs that were already open before the capability existed.
type Attacher interface {
	Attach(ctx context.Context, targetID string) error
}

// Client wraps the hub with the two-state retry policy: attempt, and on
// a demonstrable no-receiver failure attach + retry exactly once. Any
// other failure, and any second failure, is surfaced verbatim.
type Client struct {
	hub        *Hub
	attacher   Attacher
	retryDelay time.Duration
}

// NewClient builds a client. attacher may be nil, which disables the
// recovery path.
func NewClient(hub *Hub, attacher Attacher, retryDelay time.Duration) *Client {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Client{hub: hub, attacher: attacher, retryDelay: retryDelay}
}

// Send dispatches a command, recovering once from a missing receiver.
func (c *Client) Send(ctx context.Context, targetID string, req Request) (Response, error) {
	resp, err := c.hub.Send(ctx, targetID, req)
	if err == nil || !errors.Is(err, ErrNoReceiver) || c.attacher == nil {
		return resp, err
	}

	if attachErr := c.attacher.Attach(ctx, targetID); attachErr != nil {
		return Response{}, fmt.Errorf("failed to attach agent to %s: %w", targetID, attachErr)
	}

	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-time.After(c.retryDelay):
	}

	return c.hub.Send(ctx, targetID, req)
}
