package realtime

import "sync"

// DefaultBuffer is the per-subscriber channel capacity used by NewBroadcaster.
const DefaultBuffer = 16

// Broadcaster fans out events of type E to every live subscriber.
type Broadcaster[E any] struct {
	mu     sync.Mutex
	subs   map[chan E]struct{}
	buffer int
	closed bool
}

// NewBroadcaster creates an empty broadcaster with DefaultBuffer capacity per subscriber.
func NewBroadcaster[E any]() *Broadcaster[E] {
	return NewBufferedBroadcaster[E](DefaultBuffer)
}

// NewBufferedBroadcaster creates an empty broadcaster with the given per-subscriber capacity.
func NewBufferedBroadcaster[E any](buffer int) *Broadcaster[E] {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster[E]{
		subs:   make(map[chan E]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber and returns its event channel.
// Subscribing to a closed broadcaster returns an already closed channel.
func (b *Broadcaster[E]) Subscribe() chan E {
	ch := make(chan E, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster[E]) Unsubscribe(ch chan E) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to all subscribers.
func (b *Broadcaster[E]) Publish(event E) {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			// Lagging subscriber; the next event carries a full snapshot anyway.
		}
	}
	b.mu.Unlock()
}

// Len reports the number of live subscribers.
func (b *Broadcaster[E]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Broadcaster[E]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}
