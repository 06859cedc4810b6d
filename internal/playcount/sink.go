// Package playcount records that a game was played.
package playcount

import (
	"context"
	"errors"
	"sync"
	"time"

	"matchplay/internal/logger"
	"matchplay/internal/metrics"
)

// DefaultTimeout bounds a single play-count report.
const DefaultTimeout = 5 * time.Second

// ErrNoGameID is returned when there is nothing to count against.
var ErrNoGameID = errors.New("playcount: empty game id")

// Sink stores or forwards one play of a game.
type Sink interface {
	Notify(ctx context.Context, gameID string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, gameID string) error

func (f SinkFunc) Notify(ctx context.Context, gameID string) error { return f(ctx, gameID) }

// Notifier reports plays in the background. Failures are logged and
// counted, never retried and never returned to the caller.
type Notifier struct {
	sink    Sink
	timeout time.Duration
	variant string
	wg      sync.WaitGroup
}

// NewNotifier wraps sink. A nil sink makes Notify a no-op.
func NewNotifier(sink Sink, timeout time.Duration, variant string) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{sink: sink, timeout: timeout, variant: variant}
}

// Notify sends one play for gameID without blocking.
func (n *Notifier) Notify(gameID string) {
	if n == nil || n.sink == nil {
		return
	}
	if gameID == "" {
		metrics.PlayCounts.WithLabelValues(n.variant, "skipped").Inc()
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.sink.Notify(ctx, gameID); err != nil {
			metrics.PlayCounts.WithLabelValues(n.variant, "error").Inc()
			logger.Warn("play count failed", "variant", n.variant, "game_id", gameID, "error", err)
			return
		}
		metrics.PlayCounts.WithLabelValues(n.variant, "ok").Inc()
		logger.Debug("play counted", "variant", n.variant, "game_id", gameID)
	}()
}

// Wait blocks until every in-flight report has finished.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
