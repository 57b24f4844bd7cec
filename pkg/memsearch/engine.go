// Package memsearch is an in-memory search.Executor over JSON-like records.
// It implements conjunctive, disjunctive, numeric and hierarchical facet
// filtering with per-facet counts, which is enough to drive every stock
// connector without a remote engine.
package memsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/searchcore/errors"
	"github.com/grovetools/searchcore/logging"
	"github.com/grovetools/searchcore/pkg/search"
)

// DefaultHitsPerPage applies when the query does not set a page size.
const DefaultHitsPerPage = 20

// Engine holds named indices of records.
type Engine struct {
	mu      sync.RWMutex
	indices map[string][]search.Hit
	logger  *logrus.Entry
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{
		indices: make(map[string][]search.Hit),
		logger:  logging.NewLogger("memsearch"),
	}
}

// AddIndex replaces the records of an index.
func (e *Engine) AddIndex(name string, records []search.Hit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indices[name] = append([]search.Hit(nil), records...)
}

// Indices lists the index names in sorted order.
func (e *Engine) Indices() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indices))
	for n := range e.indices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of records of an index.
func (e *Engine) Len(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.indices[name])
}

func (e *Engine) records(name string) ([]search.Hit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	records, ok := e.indices[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown index '%s'", name)).
			WithDetail("index", name)
	}
	return records, nil
}

// LoadFile reads a dataset mapping index names to record lists. Files
// ending in .json are decoded as JSON, anything else as YAML.
func LoadFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read dataset")
	}
	var raw map[string][]map[string]interface{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to parse dataset").
			WithDetail("path", path)
	}

	e := New()
	for name, rows := range raw {
		records := make([]search.Hit, len(rows))
		for i, r := range rows {
			records[i] = search.Hit(r)
		}
		e.AddIndex(name, records)
	}
	e.logger.WithFields(logrus.Fields{
		"path":    path,
		"indices": len(raw),
	}).Debug("Dataset loaded")
	return e, nil
}

// Search implements search.Executor.
func (e *Engine) Search(ctx context.Context, queries []search.Query) ([]*search.Results, error) {
	out := make([]*search.Results, len(queries))
	for i, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := e.records(q.Parameters.Index())
		if err != nil {
			return nil, err
		}
		out[i] = run(records, q.Parameters)
	}
	return out, nil
}

func run(records []search.Hit, p search.Parameters) *search.Results {
	start := time.Now()
	m := newMatcher(p)

	var matched []search.Hit
	for _, r := range records {
		if m.matches(r, "") {
			matched = append(matched, r)
		}
	}

	hitsPerPage := p.HitsPerPage()
	if hitsPerPage <= 0 {
		hitsPerPage = DefaultHitsPerPage
	}
	nbPages := (len(matched) + hitsPerPage - 1) / hitsPerPage
	from := p.Page() * hitsPerPage
	to := from + hitsPerPage
	if from > len(matched) {
		from = len(matched)
	}
	if to > len(matched) {
		to = len(matched)
	}

	res := &search.Results{
		Index:       p.Index(),
		Query:       p.Query(),
		Hits:        append([]search.Hit{}, matched[from:to]...),
		NbHits:      len(matched),
		NbPages:     nbPages,
		Page:        p.Page(),
		HitsPerPage: hitsPerPage,
	}
	facetAll(res, records, m, p)
	res.ProcessingTimeMS = time.Since(start).Milliseconds()
	return res
}
