package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/job-agent/internal/inject"
	"github.com/jonathan/job-agent/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage is an in-memory Page backed by a static HTML snapshot.
type fakePage struct {
	mu          sync.Mutex
	id          string
	url         string
	html        string
	mutations   int64
	fills       []inject.Plan
	fillErr     error
	urlFailures int
}

func (p *fakePage) TargetID() string { return p.id }

func (p *fakePage) URL(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.urlFailures > 0 {
		p.urlFailures--
		return "", fmt.Errorf("target not responding")
	}
	return p.url, nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html, nil
}

func (p *fakePage) Fill(_ context.Context, plan inject.Plan) (inject.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fillErr != nil {
		return inject.Result{}, p.fillErr
	}
	p.fills = append(p.fills, plan)
	return inject.Result{Filled: len(plan.Instructions), Skipped: plan.PreSkipped}, nil
}

func (p *fakePage) MutationCount(context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mutations, nil
}

func (p *fakePage) fillCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.fills)
}

const jobPage = `<html><head>
<script type="application/ld+json">
{"@type":"JobPosting","title":"Backend Engineer","hiringOrganization":{"name":"Acme"},
 "jobLocation":{"address":{"addressLocality":"Remote"}},"description":"<p>Build APIs</p>"}
</script></head><body>
<form>
<input name="first_name"><input name="last_name">
<input type="email" name="email"><input type="tel" name="phone">
</form></body></html>`

func TestDetect_ReplacesStateAndBroadcasts(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}

	var gotTarget string
	var gotIsJob bool
	a := New(nil, page, func(target string, isJob bool) {
		gotTarget = target
		gotIsJob = isJob
	}, Config{})

	state := a.Detect(context.Background())

	require.True(t, state.IsJob)
	require.NotNil(t, state.Extracted)
	assert.Equal(t, "Backend Engineer", state.Extracted.Title)
	assert.Equal(t, "Acme", state.Extracted.Company)
	assert.Equal(t, "t1", gotTarget)
	assert.True(t, gotIsJob)
	assert.False(t, state.DetectedAt.IsZero())

	// The stored snapshot matches what the call returned.
	assert.Equal(t, state, a.State())
}

func TestDetect_DegradesToURLHeuristicOnBrokenHTML(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://jobs.lever.co/acme/x", html: "<html><body></body></html>"}
	a := New(nil, page, nil, Config{})

	state := a.Detect(context.Background())

	assert.True(t, state.IsJob)
}

func TestInvalidate_ClearsState(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}
	a := New(nil, page, nil, Config{})

	a.Detect(context.Background())
	require.True(t, a.State().IsJob)

	a.Invalidate()

	state := a.State()
	assert.False(t, state.IsJob)
	assert.Nil(t, state.Extracted)
	assert.True(t, state.DetectedAt.IsZero())
}

func TestScheduleDetect_CoalescesBursts(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}

	var mu sync.Mutex
	broadcasts := 0
	a := New(nil, page, func(string, bool) {
		mu.Lock()
		broadcasts++
		mu.Unlock()
	}, Config{Debounce: 30 * time.Millisecond})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		a.ScheduleDetect(ctx)
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, broadcasts, "a burst of schedules must collapse into one run")
}

func TestAutofill_FirstResultAndSecondPass(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}
	a := New(nil, page, nil, Config{SecondPassDelay: 30 * time.Millisecond})

	view := &profile.View{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "123"}
	result, err := a.Autofill(context.Background(), view)

	require.NoError(t, err)
	assert.Equal(t, inject.Result{Filled: 4, Skipped: 0}, result)
	assert.Equal(t, 1, page.fillCount())

	// The second pass runs once after the delay and is not surfaced.
	assert.Eventually(t, func() bool { return page.fillCount() == 2 },
		time.Second, 10*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 2, page.fillCount(), "no third pass")
}

func TestAutofill_SecondPassOutlivesCallerContext(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}
	a := New(context.Background(), page, nil, Config{SecondPassDelay: 30 * time.Millisecond})

	// An HTTP handler's request context dies as soon as the response is
	// written, long before the conditional-field delay elapses.
	callerCtx, cancel := context.WithCancel(context.Background())
	view := &profile.View{FirstName: "A", LastName: "B", Email: "a@b.com", Phone: "123"}
	result, err := a.Autofill(callerCtx, view)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Filled)
	cancel()

	assert.Eventually(t, func() bool { return page.fillCount() == 2 },
		time.Second, 10*time.Millisecond)
}

func TestAutofill_SecondPassStopsWithAgentLifetime(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}
	lifetime, endLifetime := context.WithCancel(context.Background())
	a := New(lifetime, page, nil, Config{SecondPassDelay: 30 * time.Millisecond})

	view := &profile.View{Email: "a@b.com"}
	_, err := a.Autofill(context.Background(), view)
	require.NoError(t, err)
	require.Equal(t, 1, page.fillCount())

	endLifetime()
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, 1, page.fillCount(), "a dead page gets no second pass")
}

func TestAutofill_SecondPassSupersededByInvalidate(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}
	a := New(nil, page, nil, Config{SecondPassDelay: 50 * time.Millisecond})

	view := &profile.View{Email: "a@b.com"}
	_, err := a.Autofill(context.Background(), view)
	require.NoError(t, err)
	require.Equal(t, 1, page.fillCount())

	a.Invalidate()
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, 1, page.fillCount(), "invalidation drops the pending second pass")
}

func TestWatch_DetectsStaticPageImmediately(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://jobs.lever.co/acme/abcd", html: jobPage}

	var mu sync.Mutex
	broadcasts := 0
	a := New(nil, page, func(string, bool) {
		mu.Lock()
		broadcasts++
		mu.Unlock()
	}, Config{Debounce: 20 * time.Millisecond, MutationPoll: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Watch(ctx) }()

	// The page never mutates: the initial pass is the only chance to
	// detect it and light the indicator.
	assert.Eventually(t, func() bool {
		state := a.State()
		mu.Lock()
		defer mu.Unlock()
		return state.IsJob && !state.DetectedAt.IsZero() && broadcasts == 1
	}, time.Second, 10*time.Millisecond)

	// No further passes without a mutation.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, broadcasts)
}

func TestWatch_SchedulesOnMutation(t *testing.T) {
	page := &fakePage{id: "t1", url: "https://acme.example.com/role", html: jobPage}

	var mu sync.Mutex
	broadcasts := 0
	a := New(nil, page, func(string, bool) {
		mu.Lock()
		broadcasts++
		mu.Unlock()
	}, Config{Debounce: 20 * time.Millisecond, MutationPoll: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = a.Watch(ctx)
		close(done)
	}()

	page.mu.Lock()
	page.mutations = 5
	page.mu.Unlock()

	// One broadcast from the initial pass, one from the mutation.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return broadcasts >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatch_FirstURLReadFailureIsNotNavigation(t *testing.T) {
	page := &fakePage{
		id:          "t1",
		url:         "https://acme.example.com/role",
		html:        jobPage,
		urlFailures: 1,
	}

	var mu sync.Mutex
	broadcasts := 0
	a := New(nil, page, func(string, bool) {
		mu.Lock()
		broadcasts++
		mu.Unlock()
	}, Config{Debounce: 20 * time.Millisecond, MutationPoll: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.Watch(ctx) }()

	require.Eventually(t, func() bool { return !a.State().DetectedAt.IsZero() },
		time.Second, 10*time.Millisecond)

	// The first successful URL read must not look like a navigation: no
	// invalidate, no extra detection round beyond the initial pass.
	time.Sleep(150 * time.Millisecond)
	assert.False(t, a.State().DetectedAt.IsZero())
	assert.True(t, a.State().IsJob)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, broadcasts)
}
