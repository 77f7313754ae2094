// Package poller runs the refresh cycle: it decides between demo data, a missing-key
// error and a live fetch, publishes the resulting state, and re-arms a single timer
// once each cycle has finished.
package poller

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/janekbaraniewski/usagebar/internal/claudeweb"
	"github.com/janekbaraniewski/usagebar/internal/core"
	"pkt.systems/pslog"
)

const (
	MinInterval     = time.Minute
	MaxInterval     = 60 * time.Minute
	DefaultInterval = 5 * time.Minute
)

// Fetcher performs the two requests of a live cycle.
type Fetcher interface {
	ResolveOrganizationID(ctx context.Context, sessionKey string) (string, error)
	FetchUsage(ctx context.Context, sessionKey, orgID string) (claudeweb.UsageResponse, error)
}

// Recorder receives every Connected state before it is published. Failures are logged
// and otherwise ignored.
type Recorder interface {
	Record(ctx context.Context, sessionKey string, state core.State) error
}

// Config is the subset of user settings the poller consumes.
type Config struct {
	SessionKey string
	DemoMode   bool
	Interval   time.Duration
}

func (c Config) normalized() Config {
	c.SessionKey = strings.TrimSpace(c.SessionKey)
	switch {
	case c.Interval <= 0:
		c.Interval = DefaultInterval
	case c.Interval < MinInterval:
		c.Interval = MinInterval
	case c.Interval > MaxInterval:
		c.Interval = MaxInterval
	}
	return c
}

type Options struct {
	Fetcher  Fetcher
	Clock    Clock
	Recorder Recorder
}

type Poller struct {
	fetcher  Fetcher
	clock    Clock
	recorder Recorder

	mu       sync.RWMutex
	state    core.State
	config   Config
	handlers []func(core.State)

	// orgID is resolved on the first live cycle and kept for the poller's lifetime.
	// Only the cycle holding inFlight touches it.
	orgID    string
	inFlight atomic.Bool

	triggerCh chan struct{}
	configCh  chan struct{}

	lifecycleMu sync.Mutex
	started     bool
	stopped     atomic.Bool
	cancel      context.CancelFunc
	done        chan struct{}
}

func New(cfg Config, opts Options) *Poller {
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Poller{
		fetcher:   opts.Fetcher,
		clock:     clock,
		recorder:  opts.Recorder,
		state:     core.UninitializedState(),
		config:    cfg.normalized(),
		triggerCh: make(chan struct{}, 1),
		configCh:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// State returns the most recently published state.
func (p *Poller) State() core.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// InFlight reports whether a cycle is currently running.
func (p *Poller) InFlight() bool {
	return p.inFlight.Load()
}

// OnUpdate registers fn to be called with every published state, on the goroutine
// that ran the cycle.
func (p *Poller) OnUpdate(fn func(core.State)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	p.handlers = append(p.handlers, fn)
	p.mu.Unlock()
}

// UpdateConfig applies new settings. When they differ from the current ones the
// pending timer is dropped and a cycle starts immediately; a change arriving during a
// cycle is coalesced into one cycle right after it.
func (p *Poller) UpdateConfig(cfg Config) bool {
	cfg = cfg.normalized()
	p.mu.Lock()
	if cfg == p.config {
		p.mu.Unlock()
		return false
	}
	p.config = cfg
	p.mu.Unlock()

	select {
	case p.configCh <- struct{}{}:
	default:
	}
	return true
}

// TriggerNow requests an immediate cycle. It is dropped, returning false, when a cycle
// is already running or the poller has been stopped.
func (p *Poller) TriggerNow() bool {
	if p.stopped.Load() || p.inFlight.Load() {
		return false
	}
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
	return true
}

// Start launches the refresh loop. Cycle 0 runs immediately.
func (p *Poller) Start(ctx context.Context) {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	go p.loop(ctx)
}

// Stop cancels the pending timer and any in-flight request, and returns once the loop
// has exited. No cycle is started or published after Stop returns.
func (p *Poller) Stop() {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	p.stopped.Store(true)
	if !p.started || p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	var timer Timer
	var fire <-chan time.Time
	cycle := func() {
		if timer != nil {
			timer.Stop()
			timer, fire = nil, nil
		}
		p.RunCycle(ctx)
		if ctx.Err() != nil {
			return
		}
		timer = p.clock.NewTimer(p.Config().Interval)
		fire = timer.C()
	}

	cycle()
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-fire:
			timer, fire = nil, nil
			cycle()
		case <-p.triggerCh:
			cycle()
		case <-p.configCh:
			cycle()
		}
	}
}

// RunCycle performs one refresh cycle synchronously and returns the published state.
// If another cycle is running, it returns the current state without doing anything.
func (p *Poller) RunCycle(ctx context.Context) core.State {
	if ctx.Err() != nil || !p.inFlight.CompareAndSwap(false, true) {
		return p.State()
	}
	defer p.inFlight.Store(false)

	cfg := p.Config()
	log := pslog.Ctx(ctx).With("cycle", uuid.NewString())
	started := p.clock.Now()

	var next core.State
	switch {
	case cfg.DemoMode:
		next = core.DemoState(started)
	case cfg.SessionKey == "":
		next = core.ErrorState(core.ErrNoSessionKey)
	default:
		next = p.fetch(ctx, log, cfg.SessionKey)
	}

	if ctx.Err() != nil {
		log.Debug("refresh result discarded after stop", "outcome", next.Kind)
		return p.State()
	}

	if next.Kind == core.StateError {
		log.Warn("refresh failed", "err", next.Message, "elapsed", p.clock.Now().Sub(started))
	} else {
		log.Info("refresh complete", "outcome", next.Kind, "elapsed", p.clock.Now().Sub(started))
	}

	// Record first so update handlers can read the new sample back.
	if next.Kind == core.StateConnected && p.recorder != nil {
		if err := p.recorder.Record(ctx, cfg.SessionKey, next); err != nil {
			log.Warn("recording usage sample failed", "err", err)
		}
	}
	p.publish(next)
	return next
}

func (p *Poller) fetch(ctx context.Context, log pslog.Logger, sessionKey string) core.State {
	if p.fetcher == nil {
		return core.ErrorState(&core.ConfigError{Message: "No usage client configured"})
	}

	if p.orgID == "" {
		id, err := p.fetcher.ResolveOrganizationID(ctx, sessionKey)
		if err != nil {
			return core.ErrorState(err)
		}
		p.orgID = id
		log.Debug("organization resolved")
	}

	usage, err := p.fetcher.FetchUsage(ctx, sessionKey, p.orgID)
	if err != nil {
		if core.IsUnauthorized(err) {
			log.Warn("usage request rejected; organization id is kept until restart")
		}
		return core.ErrorState(err)
	}

	fiveHour, sevenDay := usage.Windows()
	return core.ConnectedState(fiveHour, sevenDay, p.clock.Now())
}

func (p *Poller) publish(s core.State) {
	p.mu.Lock()
	p.state = s
	handlers := make([]func(core.State), len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()

	for _, fn := range handlers {
		fn(s)
	}
}
