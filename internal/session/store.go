package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"matchplay/internal/content"
	"matchplay/internal/logger"
	"matchplay/internal/metrics"
	"matchplay/pkg/realtime"
)

// EventState is published whenever a session's snapshot may have changed.
const EventState = "state"

// MaxSessionAge bounds how long any session is hosted, finished or not.
const MaxSessionAge = 24 * time.Hour

// Factory holds what new sessions are built from.
type Factory struct {
	Content  content.Source
	Images   []content.Image
	Counters map[Variant]PlayCounter
	Pairs    PairsOptions
	Memorize MemorizeOptions
}

// Store hosts sessions and runs one timing loop per active session.
type Store struct {
	r *realtime.Store[Controller]
	f Factory
}

// NewStore creates an in-memory session store.
func NewStore(f Factory) *Store {
	if f.Content == nil {
		f.Content = content.Static(content.DefaultPairs())
	}
	if len(f.Images) == 0 {
		f.Images = content.DefaultImages()
	}
	return &Store{r: realtime.NewStore[Controller](), f: f}
}

// Create builds a session of the given variant on its intro screen.
func (s *Store) Create(ctx context.Context, variant Variant, gameID string) (Controller, error) {
	id := uuid.NewString()
	counter := s.f.Counters[variant]

	var c Controller
	switch variant {
	case VariantPairs:
		pairs, err := s.f.Content.Pairs(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("load pairs for %q: %w", gameID, err)
		}
		p, err := NewPairs(id, gameID, pairs, counter, s.f.Pairs)
		if err != nil {
			return nil, err
		}
		c = p
	case VariantMemorize:
		m, err := NewMemorize(id, gameID, s.f.Images, counter, s.f.Memorize)
		if err != nil {
			return nil, err
		}
		c = m
	default:
		return nil, fmt.Errorf("unknown variant %q", variant)
	}

	s.r.Create(id, c, time.Now().UTC())
	metrics.SessionsActive.Set(float64(s.r.Len()))
	logger.Debug("session created", "session_id", id, "variant", variant, "game_id", gameID)
	return c, nil
}

// Get returns a session by id.
func (s *Store) Get(id string) (Controller, bool) {
	e, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return e.State, true
}

// Len reports how many sessions are hosted.
func (s *Store) Len() int { return s.r.Len() }

// Broadcaster returns the event fan-out for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster[string], bool) {
	return s.r.Broadcaster(id)
}

// Publish tells subscribers to re-read the session.
func (s *Store) Publish(id string) {
	s.r.Publish(id, EventState)
}

// Touch publishes the change an intent made and makes sure the timing loop
// is running and has seen it.
func (s *Store) Touch(id string) {
	s.Publish(id)
	s.EnsureLoop(id)
	s.r.Wake(id)
}

// EnsureLoop starts the timing loop for a session if not already running.
func (s *Store) EnsureLoop(id string) {
	s.r.RunLoop(id, func(c Controller, now time.Time) (time.Time, []string, bool) {
		var events []string
		if c.Advance(now) {
			events = []string{EventState}
		}
		next, ok := c.NextTimer(now)
		if !ok {
			return time.Time{}, events, true
		}
		return next, events, false
	})
}

// Looping reports whether the session's timing loop is running.
func (s *Store) Looping(id string) bool { return s.r.Looping(id) }

// StopLoop halts a session's timing loop and keeps the session.
func (s *Store) StopLoop(id string) { s.r.StopLoop(id) }

// Remove forgets a session and closes its subscribers.
func (s *Store) Remove(id string) bool {
	ok := s.r.Delete(id)
	metrics.SessionsActive.Set(float64(s.r.Len()))
	return ok
}

// Sweep removes sessions that ended more than ttl ago and any older than MaxSessionAge.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	n := s.r.Sweep(func(e *realtime.Entry[Controller]) bool {
		if now.Sub(e.CreatedAt) > MaxSessionAge {
			return true
		}
		ended := e.State.EndedAt()
		return !ended.IsZero() && now.Sub(ended) > ttl
	})
	if n > 0 {
		metrics.SessionsActive.Set(float64(s.r.Len()))
		logger.Info("swept sessions", "removed", n, "remaining", s.r.Len())
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now.UTC(), ttl)
		}
	}
}

// Close stops every timing loop.
func (s *Store) Close() { s.r.Close() }
