package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingIndicator captures indicator calls in order.
type recordingIndicator struct {
	shows  []string
	clears []string
}

func (r *recordingIndicator) Show(_ context.Context, targetID string, isJob bool) error {
	if isJob {
		r.shows = append(r.shows, targetID+":JOB")
	} else {
		r.shows = append(r.shows, targetID+":")
	}
	return nil
}

func (r *recordingIndicator) Clear(_ context.Context, targetID string) error {
	r.clears = append(r.clears, targetID)
	return nil
}

func TestRegistry_SignalCreatesEntry(t *testing.T) {
	indicator := &recordingIndicator{}
	reg := New(indicator, false)

	reg.HandleSignal(context.Background(), "t1", true)

	state, ok := reg.State("t1")
	require.True(t, ok)
	assert.True(t, state.IsJob)
	assert.False(t, state.ObservedAt.IsZero())
	assert.Equal(t, []string{"t1:JOB"}, indicator.shows)
}

func TestRegistry_NavigationResetsToUnknown(t *testing.T) {
	indicator := &recordingIndicator{}
	reg := New(indicator, false)

	reg.HandleSignal(context.Background(), "t1", true)
	reg.HandleNavigationStart(context.Background(), "t1")

	state, ok := reg.State("t1")
	require.True(t, ok, "navigation resets, it does not remove")
	assert.False(t, state.IsJob)
	assert.True(t, state.ObservedAt.IsZero())
	assert.Equal(t, []string{"t1"}, indicator.clears)
}

func TestRegistry_NavigationOnUntrackedTabOnlyClearsIndicator(t *testing.T) {
	indicator := &recordingIndicator{}
	reg := New(indicator, false)

	reg.HandleNavigationStart(context.Background(), "t7")

	_, ok := reg.State("t7")
	assert.False(t, ok)
	assert.Equal(t, []string{"t7"}, indicator.clears)
}

func TestRegistry_CloseRemovesEntry(t *testing.T) {
	reg := New(nil, false)

	reg.HandleSignal(context.Background(), "t1", true)
	reg.HandleClosed("t1")

	_, ok := reg.State("t1")
	assert.False(t, ok)
}

func TestRegistry_Snapshot(t *testing.T) {
	reg := New(nil, false)

	reg.HandleSignal(context.Background(), "t1", true)
	reg.HandleSignal(context.Background(), "t2", false)

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 2)
	assert.True(t, snapshot["t1"].IsJob)
	assert.False(t, snapshot["t2"].IsJob)

	// Mutating the snapshot must not touch the registry.
	delete(snapshot, "t1")
	_, ok := reg.State("t1")
	assert.True(t, ok)
}

func TestRegistry_SubscribeReceivesEvents(t *testing.T) {
	reg := New(nil, false)

	events, cancel := reg.Subscribe()
	defer cancel()

	reg.HandleSignal(context.Background(), "t1", true)
	reg.HandleClosed("t1")

	first := <-events
	assert.Equal(t, "t1", first.TargetID)
	assert.True(t, first.IsJob)
	assert.False(t, first.Closed)

	second := <-events
	assert.True(t, second.Closed)
}

func TestRegistry_SubscribeCancelStopsDelivery(t *testing.T) {
	reg := New(nil, false)

	events, cancel := reg.Subscribe()
	cancel()

	// The channel is closed on cancel; a later signal must not panic.
	reg.HandleSignal(context.Background(), "t1", true)

	_, open := <-events
	assert.False(t, open)
}
