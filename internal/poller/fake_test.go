package poller

import (
	"context"
	"sync"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/claudeweb"
	"github.com/janekbaraniewski/usagebar/internal/core"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
	armed  chan time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, armed: make(chan time.Duration, 16)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	t := &fakeTimer{deadline: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	c.armed <- d
	return t
}

// Advance moves time forward and fires every live timer whose deadline has passed.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()

	for _, t := range timers {
		t.fireIfDue(now)
	}
}

type fakeTimer struct {
	mu       sync.Mutex
	deadline time.Time
	stopped  bool
	fired    bool
	ch       chan time.Time
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (t *fakeTimer) fireIfDue(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired || now.Before(t.deadline) {
		return
	}
	t.fired = true
	t.ch <- now
}

type fakeFetcher struct {
	mu        sync.Mutex
	orgCalls  int
	usageCall int
	orgID     string
	orgErr    error
	usage     claudeweb.UsageResponse
	usageErr  error
	gate      chan struct{}
	entered   chan struct{}
}

func (f *fakeFetcher) ResolveOrganizationID(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgCalls++
	if f.orgErr != nil {
		return "", f.orgErr
	}
	return f.orgID, nil
}

func (f *fakeFetcher) FetchUsage(ctx context.Context, _ string, _ string) (claudeweb.UsageResponse, error) {
	f.mu.Lock()
	f.usageCall++
	gate, entered := f.gate, f.entered
	usage, err := f.usage, f.usageErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return claudeweb.UsageResponse{}, &core.FetchError{Op: "usage", Err: ctx.Err()}
		}
	}
	return usage, err
}

func (f *fakeFetcher) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orgCalls, f.usageCall
}

func (f *fakeFetcher) setUsage(usage claudeweb.UsageResponse, err error) {
	f.mu.Lock()
	f.usage, f.usageErr = usage, err
	f.mu.Unlock()
}

func ptr[T any](v T) *T { return &v }

func usageOf(five, seven float64) claudeweb.UsageResponse {
	return claudeweb.UsageResponse{
		FiveHour: &claudeweb.UsageBucket{Utilization: ptr(five)},
		SevenDay: &claudeweb.UsageBucket{Utilization: ptr(seven)},
	}
}

type recordedSample struct {
	sessionKey string
	state      core.State
}

type fakeRecorder struct {
	mu      sync.Mutex
	samples []recordedSample
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, sessionKey string, state core.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, recordedSample{sessionKey: sessionKey, state: state})
	return r.err
}
