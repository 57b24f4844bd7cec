// Package widgets tracks the live set of mounted widgets and coalesces
// their update requests into single recomputations.
package widgets

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/state"
)

// Widget is the view of a mounted widget the manager and the reducer need.
// Hooks a widget does not declare in Capabilities are never called.
type Widget interface {
	Capabilities() Capabilities
	Scope() scope.Scope
	SearchParameters(params search.Parameters, st state.State) search.Parameters
	Metadata(st state.State) refinements.Metadata
	TransitionState(prev, next state.State) state.State
}

// Status is the lifecycle position of a registration.
type Status int

const (
	Unregistered Status = iota
	Registered
	Updating
	Unregistering
)

func (s Status) String() string {
	switch s {
	case Registered:
		return "registered"
	case Updating:
		return "updating"
	case Unregistering:
		return "unregistering"
	}
	return "unregistered"
}

// Registration is the manager's record of one mounted widget.
type Registration struct {
	ID           string
	Seq          uint64
	Capabilities Capabilities
	Scope        scope.Scope
	Widget       Widget
	status       Status
}

// Status returns the lifecycle status.
func (r *Registration) Status() Status { return r.status }

// Manager owns the registration set.
type Manager struct {
	mu        sync.RWMutex
	regs      []*Registration
	seq       uint64
	scheduled bool
	onUpdate  func()
	scheduler Scheduler
	logger    *logrus.Entry
}

// NewManager creates a manager calling onUpdate once per scheduled batch.
// A nil scheduler runs updates immediately.
func NewManager(onUpdate func(), scheduler Scheduler) *Manager {
	if scheduler == nil {
		scheduler = ImmediateScheduler{}
	}
	return &Manager{
		onUpdate:  onUpdate,
		scheduler: scheduler,
		logger:    logging.NewLogger("widgets"),
	}
}

// Register adds w to the set and schedules an update. The returned function
// unregisters it; calling it again is a no-op.
func (m *Manager) Register(w Widget) (unregister func()) {
	m.mu.Lock()
	m.seq++
	reg := &Registration{
		ID:           uuid.NewString(),
		Seq:          m.seq,
		Capabilities: w.Capabilities(),
		Scope:        w.Scope(),
		Widget:       w,
		status:       Registered,
	}
	m.regs = append(m.regs, reg)
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"id":           reg.ID,
		"capabilities": reg.Capabilities.String(),
		"index":        scope.IndexID(reg.Scope),
	}).Debug("Widget registered")
	m.Update()

	return func() { m.unregister(reg) }
}

func (m *Manager) unregister(reg *Registration) {
	m.mu.Lock()
	if reg.status == Unregistered || reg.status == Unregistering {
		m.mu.Unlock()
		return
	}
	reg.status = Unregistering
	for i, r := range m.regs {
		if r == reg {
			m.regs = append(m.regs[:i:i], m.regs[i+1:]...)
			break
		}
	}
	reg.status = Unregistered
	m.mu.Unlock()

	m.logger.WithField("id", reg.ID).Debug("Widget unregistered")
	m.Update()
}

// Update marks the manager dirty. Calls made before the scheduled
// recomputation runs collapse into it.
func (m *Manager) Update() {
	m.mu.Lock()
	if m.scheduled {
		m.mu.Unlock()
		return
	}
	m.scheduled = true
	m.mu.Unlock()

	m.scheduler.Schedule(m.run)
}

func (m *Manager) run() {
	m.mu.Lock()
	m.scheduled = false
	regs := make([]*Registration, len(m.regs))
	copy(regs, m.regs)
	for _, r := range regs {
		r.status = Updating
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		for _, r := range regs {
			if r.status == Updating {
				r.status = Registered
			}
		}
		m.mu.Unlock()
	}()

	if m.onUpdate != nil {
		m.onUpdate()
	}
}

// Pending reports whether a recomputation is scheduled but has not run.
func (m *Manager) Pending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scheduled
}

// Widgets returns the registered widgets in registration order.
func (m *Manager) Widgets() []Widget {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Widget, len(m.regs))
	for i, r := range m.regs {
		out[i] = r.Widget
	}
	return out
}

// Registrations returns copies of the registration records in order.
func (m *Manager) Registrations() []Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Registration, len(m.regs))
	for i, r := range m.regs {
		out[i] = *r
	}
	return out
}

// Len returns the number of registered widgets.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.regs)
}

// Indices returns the distinct index ids targeted by registered widgets.
func (m *Manager) Indices() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, r := range m.regs {
		id := scope.IndexID(r.Scope)
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
