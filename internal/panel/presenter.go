package panel

import (
	"sync"
	"time"

	"github.com/janekbaraniewski/usagebar/internal/core"
)

// Presenter keeps the last published state and the time of the last good refresh.
// It is safe for concurrent use; Apply is meant to be registered with Poller.OnUpdate.
type Presenter struct {
	mu          sync.RWMutex
	state       core.State
	lastRefresh time.Time
	now         func() time.Time
}

func NewPresenter() *Presenter {
	return &Presenter{state: core.UninitializedState(), now: time.Now}
}

func (p *Presenter) Apply(s core.State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
	if s.HasUsage() {
		p.lastRefresh = s.RefreshedAt
		if p.lastRefresh.IsZero() {
			p.lastRefresh = p.now()
		}
	}
}

func (p *Presenter) State() core.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// View renders the current state against the wall clock.
func (p *Presenter) View() View {
	return p.ViewAt(p.now())
}

func (p *Presenter) ViewAt(now time.Time) View {
	p.mu.RLock()
	state, last := p.state, p.lastRefresh
	p.mu.RUnlock()
	return Build(state, last, now)
}
