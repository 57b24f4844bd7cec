// Package instantsearch owns the store, the widgets manager and the query
// executor, and runs the search lifecycle for a set of mounted widgets.
package instantsearch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/pkg/search"
	"github.com/grovetools/searchcore/pkg/widgets"
	"github.com/grovetools/searchcore/state"
)

// DefaultStalledSearchDelay is how long a search may run before it is
// flagged as stalled.
const DefaultStalledSearchDelay = 200 * time.Millisecond

// Facet-value search bounds.
const (
	DefaultMaxFacetHits = 10
	MinMaxFacetHits     = 1
	MaxMaxFacetHits     = 100
)

// Options configures a Manager.
type Options struct {
	// IndexName is the main index. Widgets without an index scope target it.
	IndexName string
	Executor  search.Executor

	// InitialState seeds the search state tree.
	InitialState state.State
	// ResultsState seeds the results, e.g. from a previous run.
	ResultsState *search.Results
	// BaseParameters are the parameters every query starts from.
	BaseParameters *search.Parameters

	// Controlled leaves applying widget refinements to the embedder, which
	// receives them through OnSearchStateChange and calls SetSearchState.
	Controlled          bool
	OnSearchStateChange func(state.State)
	// CreateURL turns a state into an href. knownKeys lists widget ids.
	CreateURL func(st state.State, knownKeys []string) string

	// MaxFacetHits replaces a zero MaxFacetHits in facet-value requests.
	MaxFacetHits int

	Scheduler          widgets.Scheduler
	Dispatch           func(func())
	StalledSearchDelay time.Duration
	Context            context.Context
	Logger             *logrus.Entry
}

func (o *Options) setDefaults() {
	if o.Scheduler == nil {
		o.Scheduler = widgets.TimerScheduler{}
	}
	if o.Dispatch == nil {
		o.Dispatch = func(fn func()) { go fn() }
	}
	if o.StalledSearchDelay <= 0 {
		o.StalledSearchDelay = DefaultStalledSearchDelay
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.InitialState == nil {
		o.InitialState = state.New()
	}
}

// ClampMaxFacetHits bounds a requested facet hit count, 0 meaning the default.
func ClampMaxFacetHits(n int) int {
	if n == 0 {
		n = DefaultMaxFacetHits
	}
	if n < MinMaxFacetHits {
		return MinMaxFacetHits
	}
	if n > MaxMaxFacetHits {
		return MaxMaxFacetHits
	}
	return n
}
