package realtime

import (
	"context"
	"sync"
	"time"
)

// Entry holds one hosted value together with its broadcaster.
type Entry[T any] struct {
	ID        string
	State     T
	CreatedAt time.Time
	hub       *Broadcaster[string]
}

// Store hosts values by id, each with a broadcaster and at most one timing loop.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*Entry[T]
	loops   map[string]context.CancelFunc
	wakes   map[string]chan struct{}
	wg      sync.WaitGroup
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]*Entry[T]),
		loops:   make(map[string]context.CancelFunc),
		wakes:   make(map[string]chan struct{}),
	}
}

// Create adds an entry with the given id and state, and a new Broadcaster.
// An existing entry with the same id is replaced and its loop stopped.
func (s *Store[T]) Create(id string, state T, now time.Time) *Entry[T] {
	s.mu.Lock()
	old, replaced := s.entries[id]
	e := &Entry[T]{ID: id, State: state, CreatedAt: now, hub: NewBroadcaster[string]()}
	s.entries[id] = e
	cancel := s.loops[id]
	s.mu.Unlock()
	if replaced {
		old.hub.Close()
	}
	if cancel != nil {
		cancel()
	}
	return e
}

// Get returns the entry by id if it exists.
func (s *Store[T]) Get(id string) (*Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len reports how many entries are hosted.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Delete stops the entry's loop, closes its broadcaster and forgets it.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	cancel := s.loops[id]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if ok {
		e.hub.Close()
	}
	return ok
}

// Publish notifies subscribers of the entry's broadcaster. Unknown ids are ignored.
func (s *Store[T]) Publish(id string, event string) {
	if hub, ok := s.Broadcaster(id); ok {
		hub.Publish(event)
	}
}

// Broadcaster returns the broadcaster for the entry.
func (s *Store[T]) Broadcaster(id string) (*Broadcaster[string], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.hub, true
}

// Sweep deletes every entry for which expired returns true and reports how many went.
func (s *Store[T]) Sweep(expired func(e *Entry[T]) bool) int {
	s.mu.RLock()
	ids := make([]string, 0)
	for id, e := range s.entries {
		if expired(e) {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	n := 0
	for _, id := range ids {
		if s.Delete(id) {
			n++
		}
	}
	return n
}

// TickFunc is called by RunLoop to determine the next wake time and events to publish.
// Events are published before stop is honoured, so a final transition still reaches subscribers.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, events []string, stop bool)

// RunLoop starts a timing loop for the entry. If a loop already exists for id, it is not started again.
func (s *Store[T]) RunLoop(id string, tick TickFunc[T]) {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return
	}
	if _, ok := s.entries[id]; !ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			if s.wakes[id] == wake {
				delete(s.loops, id)
				delete(s.wakes, id)
			}
			s.mu.Unlock()
			cancel()
		}()

		for {
			e, ok := s.Get(id)
			if !ok {
				return
			}
			next, events, stop := tick(e.State, time.Now().UTC())
			for _, ev := range events {
				e.hub.Publish(ev)
			}
			if stop {
				return
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			case <-wake:
				timer.Stop()
			}
		}
	}()
}

// Wake unblocks the entry's loop so it recomputes immediately.
func (s *Store[T]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}

// Looping reports whether a timing loop is running for id.
func (s *Store[T]) Looping(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.loops[id]
	return ok
}

// StopLoop cancels the entry's timing loop without removing the entry.
func (s *Store[T]) StopLoop(id string) {
	s.mu.RLock()
	cancel := s.loops[id]
	s.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Close stops all loops and waits for them to exit.
func (s *Store[T]) Close() {
	s.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(s.loops))
	for _, cancel := range s.loops {
		cancels = append(cancels, cancel)
	}
	s.mu.RUnlock()
	for _, cancel := range cancels {
		cancel()
	}
	s.wg.Wait()
}
