package widgets

import (
	"sync"
	"time"
)

// Scheduler runs a recomputation at some later point.
type Scheduler interface {
	Schedule(fn func())
}

// ImmediateScheduler runs the function right away.
type ImmediateScheduler struct{}

// Schedule implements Scheduler.
func (ImmediateScheduler) Schedule(fn func()) { fn() }

// ManualScheduler queues functions until Flush is called.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// Pending returns the number of queued functions.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs queued functions until the queue is empty, including functions
// scheduled while flushing. It returns how many ran.
func (s *ManualScheduler) Flush() int {
	ran := 0
	for {
		s.mu.Lock()
		queue := s.pending
		s.pending = nil
		s.mu.Unlock()
		if len(queue) == 0 {
			return ran
		}
		for _, fn := range queue {
			fn()
			ran++
		}
	}
}

// TimerScheduler runs functions on their own goroutine after Delay.
type TimerScheduler struct {
	Delay time.Duration
}

// Schedule implements Scheduler.
func (s TimerScheduler) Schedule(fn func()) {
	time.AfterFunc(s.Delay, fn)
}
