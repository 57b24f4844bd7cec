package instantsearch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/compose"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Manager runs searches for the widgets mounted on it. It implements
// connector.Host.
type Manager struct {
	opts    Options
	store   *store.Store
	widgets *widgets.Manager
	logger  *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	indexName    string
	composition  compose.Composition
	pending      int
	stalledTimer *time.Timer
	closed       bool
}

// New creates a manager. The executor is required.
func New(opts Options) (*Manager, error) {
	if opts.Executor == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "an executor is required")
	}
	if opts.IndexName == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "an index name is required")
	}
	opts.setDefaults()

	m := &Manager{
		opts:      opts,
		indexName: opts.IndexName,
		logger:    opts.Logger,
	}
	if m.logger == nil {
		m.logger = logging.NewLogger("instantsearch")
	}
	m.ctx, m.cancel = context.WithCancel(opts.Context)
	m.store = store.New(store.Snapshot{
		Widgets:         opts.InitialState.Clone(),
		Results:         opts.ResultsState,
		IsSearchStalled: true,
	})
	m.widgets = widgets.NewManager(m.onWidgetsUpdate, opts.Scheduler)
	return m, nil
}

// Store returns the shared store.
func (m *Manager) Store() *store.Store { return m.store }

// Widgets returns the widgets manager.
func (m *Manager) Widgets() *widgets.Manager { return m.widgets }

// MainIndex returns the main index name.
func (m *Manager) MainIndex() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexName
}

// RootScope returns the scope of widgets mounted outside any index scope.
func (m *Manager) RootScope() scope.Scope {
	return scope.Root(m.MainIndex())
}

// SetIndexName switches the main index and searches again.
func (m *Manager) SetIndexName(name string) {
	m.mu.Lock()
	m.indexName = name
	m.mu.Unlock()
	m.widgets.Update()
}

func (m *Manager) onWidgetsUpdate() {
	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		snap.Metadata = m.metadata(snap.Widgets)
		snap.Searching = true
		return snap
	})
	m.Search()
}

func (m *Manager) metadata(st state.State) []refinements.Metadata {
	var out []refinements.Metadata
	for _, w := range m.widgets.Widgets() {
		if w.Capabilities().Has(widgets.ComputesMetadata) {
			out = append(out, w.Metadata(st))
		}
	}
	return out
}

// TransitionState runs next through the TransitionState hook of every
// widget, in registration order.
func (m *Manager) TransitionState(next state.State) state.State {
	current := m.store.Get().Widgets
	for _, w := range m.widgets.Widgets() {
		if w.Capabilities().Has(widgets.TransitionsState) {
			next = w.TransitionState(current, next)
		}
	}
	return next
}

// OnInternalStateUpdate handles a state produced by a widget.
func (m *Manager) OnInternalStateUpdate(next state.State) {
	next = m.TransitionState(next)
	m.OnSearchStateChange(next)
	if !m.opts.Controlled {
		m.SetSearchState(next)
	}
}

// OnSearchStateChange forwards a state to the embedder callback.
func (m *Manager) OnSearchStateChange(next state.State) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed || m.opts.OnSearchStateChange == nil {
		return
	}
	m.opts.OnSearchStateChange(next)
}

// SetSearchState replaces the state tree from the outside and searches.
func (m *Manager) SetSearchState(next state.State) {
	if next == nil {
		next = state.New()
	}
	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		snap.Widgets = next
		snap.Metadata = m.metadata(next)
		snap.Searching = true
		return snap
	})
	m.Search()
}

// CreateHrefForState renders the href of a state, "#" without CreateURL.
func (m *Manager) CreateHrefForState(next state.State) string {
	next = m.TransitionState(next)
	if m.opts.CreateURL == nil {
		return "#"
	}
	return m.opts.CreateURL(next, m.WidgetsIDs())
}

type stateKeyed interface {
	StateKey() string
}

// WidgetsIDs lists the state keys of the registered widgets followed by the
// ids published in the metadata.
func (m *Manager) WidgetsIDs() []string {
	var ids []string
	for _, w := range m.widgets.Widgets() {
		if k, ok := w.(stateKeyed); ok && k.StateKey() != "" {
			ids = append(ids, k.StateKey())
		}
	}
	for _, meta := range m.store.Get().Metadata {
		if meta.ID != "" {
			ids = append(ids, meta.ID)
		}
	}
	return ids
}

func (m *Manager) baseParameters() search.Parameters {
	if m.opts.BaseParameters != nil {
		return m.opts.BaseParameters.SetIndex(m.MainIndex())
	}
	return search.NewParameters(m.MainIndex())
}

// Composition replays every widget over the base parameters.
func (m *Manager) Composition() compose.Composition {
	return compose.Reduce(m.baseParameters(), m.widgets.Widgets(), m.store.Get().Widgets, m.MainIndex())
}

// Search composes the queries and dispatches them to the executor. Results
// are applied when they arrive.
func (m *Manager) Search() {
	c := m.Composition()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.composition = c
	m.pending++
	if m.stalledTimer == nil {
		m.stalledTimer = time.AfterFunc(m.opts.StalledSearchDelay, m.markStalled)
	}
	m.mu.Unlock()

	queries := c.Queries()
	m.logger.WithFields(logrus.Fields{
		"queries": len(queries),
		"index":   c.MainIndex,
	}).Debug("Dispatching search")

	m.opts.Dispatch(func() {
		results, err := m.opts.Executor.Search(m.ctx, queries)
		if err == nil && len(results) != len(queries) {
			err = fmt.Errorf("executor returned %d results for %d queries", len(results), len(queries))
		}
		if err != nil {
			m.applyError(errors.SearchFailed(c.MainIndex, err))
			return
		}
		m.applyResults(queries, results)
	})
}

func (m *Manager) markStalled() {
	m.mu.Lock()
	if m.closed || m.stalledTimer == nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		snap.ResultsFacetValues = nil
		snap.IsSearchStalled = true
		return snap
	})
}

// settle records a finished request and reports whether none is pending.
func (m *Manager) settle() (idle bool, current compose.Composition, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending > 0 {
		m.pending--
	}
	if m.pending == 0 && m.stalledTimer != nil {
		m.stalledTimer.Stop()
		m.stalledTimer = nil
	}
	return m.pending == 0, m.composition, m.closed
}

func (m *Manager) applyResults(queries []search.Query, results []*search.Results) {
	idle, current, closed := m.settle()
	if closed {
		return
	}

	live := map[string]bool{}
	for _, id := range current.IndexIDs() {
		live[id] = true
	}
	multi := len(current.Derived) > 0

	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		if multi {
			byIndex := map[string]*search.Results{}
			for id, r := range snap.ResultsByIndex {
				if live[id] {
					byIndex[id] = r
				}
			}
			for i, q := range queries {
				if !live[q.IndexID] {
					m.logger.WithField("index", q.IndexID).Debug("Dropping results for removed index")
					continue
				}
				byIndex[q.IndexID] = results[i]
			}
			snap.Results = nil
			snap.ResultsByIndex = byIndex
		} else {
			for i, q := range queries {
				if q.IndexID == current.MainIndex {
					snap.Results = results[i]
				} else {
					m.logger.WithField("index", q.IndexID).Debug("Dropping results for removed index")
				}
			}
			snap.ResultsByIndex = nil
		}
		if idle {
			snap.IsSearchStalled = false
		}
		snap.ResultsFacetValues = nil
		snap.Searching = false
		snap.Error = nil
		return snap
	})
}

func (m *Manager) applyError(err error) {
	idle, _, closed := m.settle()
	if closed {
		return
	}
	m.logger.WithError(err).Warn("Search failed")
	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		if idle {
			snap.IsSearchStalled = false
		}
		snap.ResultsFacetValues = nil
		snap.Searching = false
		snap.Error = err
		return snap
	})
}

// OnSearchForFacetValues runs a facet-value search on the index of sc.
func (m *Manager) OnSearchForFacetValues(sc scope.Scope, req search.FacetValuesRequest) {
	if req.MaxFacetHits == 0 {
		req.MaxFacetHits = m.opts.MaxFacetHits
	}
	req.MaxFacetHits = ClampMaxFacetHits(req.MaxFacetHits)

	m.mu.Lock()
	c := m.composition
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	q := search.Query{IndexID: c.MainIndex, Parameters: c.Main}
	target := scope.IndexID(sc)
	for _, d := range c.Derived {
		if d.IndexID == target {
			q = search.Query{IndexID: d.IndexID, Parameters: d.Parameters}
		}
	}
	if q.IndexID == "" {
		q = search.Query{IndexID: m.MainIndex(), Parameters: m.baseParameters()}
	}

	m.store.Update(func(snap store.Snapshot) store.Snapshot {
		snap.SearchingForFacetValues = true
		return snap
	})

	m.opts.Dispatch(func() {
		hits, err := m.opts.Executor.SearchForFacetValues(m.ctx, q, req)
		m.store.Update(func(snap store.Snapshot) store.Snapshot {
			snap.SearchingForFacetValues = false
			if err != nil {
				snap.Error = errors.SearchFailed(q.IndexID, err)
				return snap
			}
			next := &search.FacetValuesResults{Query: req.Query, Hits: map[string][]search.FacetHit{}}
			if snap.ResultsFacetValues != nil {
				for k, v := range snap.ResultsFacetValues.Hits {
					next.Hits[k] = v
				}
			}
			next.Hits[req.FacetName] = hits
			snap.ResultsFacetValues = next
			snap.Error = nil
			return snap
		})
	})
}

// Close stops the stalled timer and ignores every later result.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.stalledTimer != nil {
		m.stalledTimer.Stop()
		m.stalledTimer = nil
	}
	m.cancel()
}
