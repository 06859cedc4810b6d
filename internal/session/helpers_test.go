package session

import (
	"sync"
	"time"

	"matchplay/internal/round"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// identity keeps every Fisher-Yates draw in place.
type identity struct{}

func (identity) Intn(n int) int { return n - 1 }

type countingCounter struct {
	mu    sync.Mutex
	games []string
}

func (c *countingCounter) Notify(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = append(c.games, gameID)
}

func (c *countingCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.games)
}

func instantPairs() PairsOptions {
	return PairsOptions{Rand: identity{}, Timings: round.Instant()}
}
