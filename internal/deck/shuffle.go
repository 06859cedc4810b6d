package deck

import (
	"fmt"
	"math/rand"
)

// Rand is the random source a Shuffler draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Shuffler permutes both stacks independently and, on every second
// shuffle, arranges a matching pair on top so the board is winnable.
// It is not safe for concurrent use; sessions serialize access.
type Shuffler struct {
	rng Rand
}

// NewShuffler creates a Shuffler seeded with rngSeed.
func NewShuffler(rngSeed int64) *Shuffler {
	return &Shuffler{rng: rand.New(rand.NewSource(rngSeed))}
}

// NewShufflerFrom creates a Shuffler over an existing random source.
func NewShufflerFrom(rng Rand) *Shuffler {
	return &Shuffler{rng: rng}
}

// Rand exposes the underlying source for callers that share it.
func (s *Shuffler) Rand() Rand { return s.rng }

// Forced reports whether the shuffle with this ordinal must put a pair on top.
func Forced(ordinal int) bool {
	return ordinal > 0 && ordinal%2 == 0
}

// Permute returns a uniformly shuffled copy of items.
func Permute[T any](rng Rand, items []T) []T {
	out := append([]T(nil), items...)
	for i := len(out) - 1; i >= 1; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Shuffle returns new left and right stacks. Inputs are not modified.
// Unequal lengths are a programming error and panic.
func (s *Shuffler) Shuffle(left, right []Card, ordinal int) ([]Card, []Card) {
	if len(left) != len(right) {
		panic(fmt.Sprintf("deck: shuffle of unequal stacks %d/%d", len(left), len(right)))
	}
	l := Permute(s.rng, left)
	r := Permute(s.rng, right)
	if Forced(ordinal) && len(l) > 0 {
		for i := range r {
			if r[i].ID == l[0].ID {
				r[0], r[i] = r[i], r[0]
				break
			}
		}
	}
	return l, r
}

// ShuffleStacks is Shuffle over a Stacks value.
func (s *Shuffler) ShuffleStacks(st Stacks, ordinal int) Stacks {
	l, r := s.Shuffle(st.Left, st.Right, ordinal)
	return Stacks{Left: l, Right: r}
}
