// Package profiling times nested command phases and writes pprof profiles.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

type span struct {
	name     string
	start    time.Time
	duration time.Duration
	children []*span
	profiler *Profiler
}

func (s *span) Stop() {
	s.profiler.end(s)
}

// Profiler records a tree of spans. Spans started while another is open
// become its children.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	root    *span
	stack   []*span
}

// New returns a disabled profiler.
func New() *Profiler { return &Profiler{} }

var defaultProfiler = New()

// Enable starts recording.
func (p *Profiler) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return
	}
	p.enabled = true
	p.root = &span{name: "total", start: time.Now(), profiler: p}
	p.stack = []*span{p.root}
}

// Enabled reports whether spans are recorded.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Start opens a span, typically ended with defer.
func (p *Profiler) Start(name string) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return noopStopper{}
	}
	parent := p.stack[len(p.stack)-1]
	s := &span{name: name, start: time.Now(), profiler: p}
	parent.children = append(parent.children, s)
	p.stack = append(p.stack, s)
	return s
}

func (p *Profiler) end(s *span) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.duration != 0 {
		return
	}
	s.duration = time.Since(s.start)
	// Pop s and anything opened after it that was never stopped.
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i] == s {
			p.stack = p.stack[:i]
			return
		}
	}
}

// Summarize writes the span tree with each span's share of the total.
func (p *Profiler) Summarize(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	total := time.Since(p.root.start)
	fmt.Fprintf(w, "\n--- Timing (%v) ---\n", total.Round(100*time.Microsecond))
	for _, c := range p.root.children {
		printSpan(w, c, 0, total)
	}
}

func printSpan(w io.Writer, s *span, depth int, total time.Duration) {
	d := s.duration
	if d == 0 {
		d = time.Since(s.start)
	}
	pct := 0.0
	if total > 0 {
		pct = float64(d) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", strings.Repeat("  ", depth), s.name, d.Round(100*time.Microsecond), pct)
	for _, c := range s.children {
		printSpan(w, c, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}

// Start opens a span on the process-wide profiler.
func Start(name string) Stopper { return defaultProfiler.Start(name) }

// Enable turns on the process-wide profiler.
func Enable() { defaultProfiler.Enable() }

// Summarize writes the process-wide span tree.
func Summarize(w io.Writer) { defaultProfiler.Summarize(w) }
