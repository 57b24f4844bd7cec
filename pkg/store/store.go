package store

import (
	"sync"

	"github.com/grovetools/searchcore/state"
)

type subscription struct {
	id uint64
	fn Listener
}

// Store is the shared state store. It is safe for concurrent use. Listeners
// run outside the lock, in subscription order, and are never called
// concurrently.
type Store struct {
	mu          sync.RWMutex
	state       Snapshot
	listeners   []subscription
	nextID      uint64
	subscribers map[chan Update]struct{}

	seq       uint64
	notifying bool
}

// New creates a store holding initial.
func New(initial Snapshot) *Store {
	if initial.Widgets == nil {
		initial.Widgets = state.New()
	}
	return &Store{
		state:       initial,
		subscribers: make(map[chan Update]struct{}),
	}
}

// Get returns a copy of the current snapshot.
func (s *Store) Get() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the snapshot wholesale and notifies everyone.
func (s *Store) Set(next Snapshot) {
	s.Update(func(Snapshot) Snapshot { return next })
}

// Update replaces the snapshot with fn applied to the current one. The read
// and the write happen under one lock. When a notification pass is already
// running, its goroutine delivers the new snapshot and Update returns early.
func (s *Store) Update(fn func(Snapshot) Snapshot) Snapshot {
	s.mu.Lock()
	next := fn(s.state)
	if next.Widgets == nil {
		next.Widgets = state.New()
	}
	s.state = next
	s.seq++
	s.broadcastLocked(Update{Type: UpdateState, Source: "store", Snapshot: next})
	if s.notifying {
		s.mu.Unlock()
		return next
	}
	s.notifying = true
	s.mu.Unlock()

	s.notify()
	return next
}

// notify hands the latest snapshot to the listeners, again and again until
// no update lands during a pass. One goroutine notifies at a time, so a
// listener never sees a snapshot older than one it already saw. Updates
// made meanwhile, including from inside a listener, are folded into the
// next pass.
func (s *Store) notify() {
	var delivered uint64
	for {
		s.mu.Lock()
		if s.seq == delivered {
			s.notifying = false
			s.mu.Unlock()
			return
		}
		delivered = s.seq
		snap := s.state
		listeners := make([]subscription, len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()

		for _, l := range listeners {
			l.fn(snap)
		}
	}
}

// Subscribe registers fn and returns the function removing it. Calling the
// returned function more than once is harmless.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of subscribed listeners.
func (s *Store) Listeners() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}

// Watch creates a buffered channel receiving every update. Sends never
// block: a slow reader misses updates rather than stalling the store.
func (s *Store) Watch(buffer int) chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan Update, buffer)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unwatch removes a channel created by Watch and closes it.
func (s *Store) Unwatch(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// BroadcastConfigReload tells watchers that a configuration file changed.
func (s *Store) BroadcastConfigReload(file string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.broadcastLocked(Update{
		Type:     UpdateConfigReload,
		Source:   "config",
		Snapshot: s.state,
		Payload:  file,
	})
}

func (s *Store) broadcastLocked(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}
