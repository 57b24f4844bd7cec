// Package app assembles a running search from a configuration: the executor,
// the instantsearch manager and the configured widgets.
package app

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/connectors"
	"github.com/grovetools/searchcore/pkg/instantsearch"
	"github.com/grovetools/searchcore/pkg/memsearch"
	"github.com/grovetools/searchcore/pkg/refinements"
	"github.com/grovetools/searchcore/pkg/scope"
	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/store"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// Options configures an App.
type Options struct {
	Config *config.Config
	// Executor runs the queries. When nil the dataset named in the
	// configuration is loaded into the in-memory engine.
	Executor search.Executor
	// State seeds the search state, e.g. from the state file.
	State state.State
	// Live runs searches on their own goroutines and batches widget updates
	// with a timer, for long-running processes. Otherwise every operation
	// completes before returning.
	Live   bool
	Logger *logrus.Entry
}

// Mounted is a widget mounted from the configuration.
type Mounted struct {
	// Key names the widget: [indexID/]type[:id].
	Key     string            `json:"key"`
	Type    string            `json:"type"`
	IndexID string            `json:"index,omitempty"`
	Widget  connectors.Widget `json:"-"`
}

// App is a configured, running search.
type App struct {
	logger    *logrus.Entry
	manager   *instantsearch.Manager
	scheduler *widgets.ManualScheduler

	mu      sync.RWMutex
	cfg     *config.Config
	mounted []Mounted
	indexes []*instantsearch.Index
}

// New builds the executor and the manager, then mounts every configured
// widget.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "a configuration is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("app")
	}

	executor := opts.Executor
	if executor == nil {
		path := cfg.DatasetPath()
		if path == "" {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "settings.dataset is required without a custom executor")
		}
		engine, err := memsearch.LoadFile(path)
		if err != nil {
			return nil, err
		}
		executor = engine
	}

	stalled, err := cfg.Settings.StalledSearchDelayDuration()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid settings")
	}
	delay, err := cfg.Settings.SchedulerDelayDuration()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid settings")
	}

	a := &App{logger: logger, cfg: cfg}
	isOpts := instantsearch.Options{
		IndexName:          cfg.Index,
		Executor:           executor,
		InitialState:       opts.State,
		CreateURL:          CreateURL,
		MaxFacetHits:       cfg.Settings.MaxFacetHits,
		StalledSearchDelay: stalled,
		Logger:             logger.WithField("index", cfg.Index),
	}
	if opts.Live {
		isOpts.Scheduler = widgets.TimerScheduler{Delay: delay}
	} else {
		a.scheduler = widgets.NewManualScheduler()
		isOpts.Scheduler = a.scheduler
		isOpts.Dispatch = func(fn func()) { fn() }
	}

	a.manager, err = instantsearch.New(isOpts)
	if err != nil {
		return nil, err
	}
	if err := a.mount(cfg.Widgets); err != nil {
		a.manager.Close()
		return nil, err
	}
	a.Settle()

	logger.WithFields(logrus.Fields{
		"index":   cfg.Index,
		"widgets": len(a.mounted),
		"live":    opts.Live,
	}).Debug("Search assembled")
	return a, nil
}

// mount mounts widget declarations. Callers hold no lock or the write lock.
func (a *App) mount(decls []config.WidgetConfig) error {
	root := a.manager.RootScope()
	for i, d := range decls {
		if d.Type != config.WidgetTypeIndex {
			m, err := a.mountOne(d, root, fmt.Sprintf("widgets[%d]", i))
			if err != nil {
				return err
			}
			a.mounted = append(a.mounted, m)
			continue
		}

		idx := a.manager.MountIndex(d.Index, d.ID)
		a.indexes = append(a.indexes, idx)
		for j, child := range d.Widgets {
			m, err := a.mountOne(child, idx.Scope(), fmt.Sprintf("widgets[%d].widgets[%d]", i, j))
			if err != nil {
				return err
			}
			a.mounted = append(a.mounted, m)
		}
	}
	return nil
}

func (a *App) mountOne(d config.WidgetConfig, sc scope.Scope, at string) (Mounted, error) {
	w, err := connectors.Mount(a.manager, d.Type, d.Props, sc)
	if err != nil {
		if se, ok := err.(*errors.SearchError); ok {
			return Mounted{}, se.WithDetail("widget", at)
		}
		return Mounted{}, err
	}
	m := Mounted{Type: d.Type, Widget: w}
	if sc.IsScoped() {
		m.IndexID = scope.IndexID(sc)
	}
	m.Key = key(m.IndexID, d.Type, w.ID())
	return m, nil
}

func key(indexID, typ, id string) string {
	k := typ
	if id != "" {
		k += ":" + id
	}
	if indexID != "" {
		k = indexID + "/" + k
	}
	return k
}

// unmountAll removes every mounted widget and index. Callers hold the write
// lock.
func (a *App) unmountAll() {
	for _, m := range a.mounted {
		m.Widget.Unmount()
	}
	for _, idx := range a.indexes {
		idx.Unmount()
	}
	a.mounted = nil
	a.indexes = nil
}

// Settle runs pending widget recomputations. It is a no-op for live apps,
// whose recomputations run on their own.
func (a *App) Settle() {
	if a.scheduler != nil {
		a.scheduler.Flush()
	}
}

// Manager returns the instantsearch manager.
func (a *App) Manager() *instantsearch.Manager { return a.manager }

// Store returns the shared store.
func (a *App) Store() *store.Store { return a.manager.Store() }

// Snapshot returns the current store contents.
func (a *App) Snapshot() store.Snapshot { return a.manager.Store().Get() }

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Widgets lists the mounted widgets in declaration order.
func (a *App) Widgets() []Mounted {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Mounted(nil), a.mounted...)
}

// Find resolves a widget by key, id or type. Names matching several widgets
// are rejected.
func (a *App) Find(name string) (Mounted, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, m := range a.mounted {
		if m.Key == name {
			return m, nil
		}
	}
	var matches []Mounted
	for _, m := range a.mounted {
		if m.Widget.ID() == name || m.Type == name {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Mounted{}, errors.UnknownWidget(name)
	}
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = m.Key
	}
	sort.Strings(keys)
	return Mounted{}, errors.New(errors.ErrCodeInvalidInput,
		fmt.Sprintf("widget name '%s' is ambiguous: %s", name, strings.Join(keys, ", "))).
		WithDetail("widget", name)
}

// Refine sends value to the named widget.
func (a *App) Refine(name string, value interface{}) error {
	m, err := a.Find(name)
	if err != nil {
		return err
	}
	if err := m.Widget.Refine(value); err != nil {
		return err
	}
	a.Settle()
	return nil
}

// Query sets the full text query through the search box when one is
// mounted on the main index, or directly in the state otherwise.
func (a *App) Query(q string) error {
	for _, m := range a.Widgets() {
		if m.Type == connectors.TypeSearchBox && m.IndexID == "" {
			return a.Refine(m.Key, q)
		}
	}
	st := a.Snapshot().Widgets
	a.manager.OnInternalStateUpdate(scope.RefineValue(st, map[string]interface{}{connectors.QueryKey: q}, a.manager.RootScope(), true, ""))
	a.Settle()
	return nil
}

// SetState replaces the search state.
func (a *App) SetState(st state.State) {
	a.manager.SetSearchState(st)
	a.Settle()
}

// Refinements lists the active refinements of every index.
func (a *App) Refinements(clearsQuery bool) []refinements.Item {
	return refinements.Aggregate(a.Snapshot().Metadata, refinements.Options{ClearsQuery: clearsQuery})
}

// ClearRefinements removes every active refinement, and the query when
// clearsQuery is set.
func (a *App) ClearRefinements(clearsQuery bool) {
	items := a.Refinements(clearsQuery)
	next := refinements.Apply(a.Snapshot().Widgets, refinements.Clears(items)...)
	a.manager.OnInternalStateUpdate(next)
	a.Settle()
}

// SearchForFacetValues runs a facet value search through the named widget
// and returns the stored hits.
func (a *App) SearchForFacetValues(name, query string) (*search.FacetValuesResults, error) {
	m, err := a.Find(name)
	if err != nil {
		return nil, err
	}
	if err := m.Widget.SearchForItems(query); err != nil {
		return nil, err
	}
	a.Settle()
	snap := a.Snapshot()
	if snap.Error != nil {
		return nil, snap.Error
	}
	return snap.ResultsFacetValues, nil
}

// Reload swaps the widget set for the one of cfg while keeping the search
// state. The executor and dataset stay as they are.
func (a *App) Reload(cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := a.manager.Store().Get().Widgets.Clone()
	a.unmountAll()
	if cfg.Index != "" && cfg.Index != a.manager.MainIndex() {
		a.manager.SetIndexName(cfg.Index)
	}
	if err := a.mount(cfg.Widgets); err != nil {
		return err
	}
	a.cfg = cfg
	a.manager.SetSearchState(st)
	a.Settle()

	a.logger.WithField("widgets", len(a.mounted)).Info("Configuration reloaded")
	return nil
}

// Save persists the search state to the configured state file.
func (a *App) Save() error {
	return state.Save(a.Config().StatePath(), a.Snapshot().Widgets)
}

// Close unmounts every widget and stops the manager.
func (a *App) Close() {
	a.mu.Lock()
	a.unmountAll()
	a.mu.Unlock()
	a.manager.Close()
}

// CreateURL encodes a search state as a query string carrying the state as
// JSON. Only the keys in knownKeys and index branches are kept. A dotted key
// such as menu.brand keeps that entry of its namespace.
func CreateURL(st state.State, knownKeys []string) string {
	keep := map[string]bool{state.IndicesKey: true, connectors.QueryKey: true, "page": true, connectors.ConfigureKey: true}
	clean := state.RemoveEmptyKey(st)
	out := state.New()
	for _, k := range knownKeys {
		ns, attr, dotted := strings.Cut(k, ".")
		if !dotted {
			keep[k] = true
			continue
		}
		v, ok := clean.Branch(ns)[attr]
		if !ok {
			continue
		}
		branch, _ := state.AsMap(out[ns])
		if branch == nil {
			branch = map[string]interface{}{}
			out[ns] = branch
		}
		branch[attr] = v
	}
	for k, v := range clean {
		if keep[k] {
			out[k] = v
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "#"
	}
	return "?" + url.Values{"state": {string(data)}}.Encode()
}

// ParseURL decodes a query string produced by CreateURL.
func ParseURL(raw string) (state.State, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid state URL")
	}
	encoded := values.Get("state")
	if encoded == "" {
		return state.New(), nil
	}
	return state.UnmarshalJSON([]byte(encoded))
}
