package deck

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplay/internal/content"
)

// identity picks j = i at every Fisher-Yates step, leaving order unchanged.
type identity struct{}

func (identity) Intn(n int) int { return n - 1 }

func fivePairs() Stacks {
	return FromPairs(content.DefaultPairs())
}

func TestForced(t *testing.T) {
	assert := assert.New(t)
	assert.False(Forced(0))
	assert.False(Forced(1))
	assert.True(Forced(2))
	assert.False(Forced(3))
	assert.True(Forced(4))
	assert.False(Forced(-2))
}

func TestShufflePreservesMultisetAndInputs(t *testing.T) {
	s := NewShuffler(42)
	st := fivePairs()
	orig := st.Clone()

	for ordinal := 0; ordinal < 20; ordinal++ {
		got := s.ShuffleStacks(st, ordinal)
		require.True(t, got.Balanced(), "ordinal %d", ordinal)
		assert.Equal(t, st.Len(), got.Len())
	}
	assert.Equal(t, orig, st, "inputs must not be mutated")
}

func TestShuffleForcesPairOnEvenOrdinals(t *testing.T) {
	s := NewShuffler(7)
	st := fivePairs()
	for seed := 0; seed < 200; seed++ {
		for _, ordinal := range []int{2, 4, 6, 100} {
			left, right := s.Shuffle(st.Left, st.Right, ordinal)
			require.Equal(t, left[0].ID, right[0].ID, "seed %d ordinal %d", seed, ordinal)
		}
	}
}

func TestShuffleForcingLeavesLeftUntouched(t *testing.T) {
	st := fivePairs()
	// With identity draws the left order is fixed; forcing only moves right cards.
	left, right := NewShufflerFrom(identity{}).Shuffle(st.Left, reverse(st.Right), 2)
	assert.Equal(t, st.Left, left)
	assert.Equal(t, left[0].ID, right[0].ID)
	assert.True(t, Stacks{Left: left, Right: right}.Balanced())
}

func TestShuffleEmptyStacks(t *testing.T) {
	left, right := NewShuffler(1).Shuffle(nil, nil, 2)
	assert.Empty(t, left)
	assert.Empty(t, right)
}

func TestShuffleUnequalPanics(t *testing.T) {
	st := fivePairs()
	assert.Panics(t, func() {
		NewShuffler(1).Shuffle(st.Left, st.Right[:2], 1)
	})
}

func TestPermuteIsUniform(t *testing.T) {
	// 4 cards have 24 orders; chi-square with 23 degrees of freedom stays
	// well under 60 for a fair shuffle at this sample size.
	const trials = 48000
	s := NewShuffler(2024)
	cards := fivePairs().Left[:4]
	counts := make(map[string]int)
	for i := 0; i < trials; i++ {
		counts[order(Permute(s.Rand(), cards))]++
	}
	require.Len(t, counts, 24)

	expected := float64(trials) / 24
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	assert.Less(t, chi, 60.0, "chi-square %.2f", chi)
}

func TestShuffleNonForcedTopPairRate(t *testing.T) {
	// On unforced ordinals the top cards match with probability 1/n.
	const trials = 20000
	s := NewShuffler(99)
	st := fivePairs()
	hits := 0
	for i := 0; i < trials; i++ {
		if s.ShuffleStacks(st, 1).IsPairAt(0) {
			hits++
		}
	}
	rate := float64(hits) / trials
	assert.InDelta(t, 0.2, rate, 0.02)
}

func TestStacksWithout(t *testing.T) {
	st := fivePairs()
	got := st.Without("3")
	assert.Equal(t, 4, got.Len())
	assert.True(t, got.Balanced())
	for _, c := range append(got.Left, got.Right...) {
		assert.NotEqual(t, "3", c.ID)
	}
	assert.Equal(t, 5, st.Len())
}

func order(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.ID
	}
	return strings.Join(parts, ",")
}

func reverse(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[len(cards)-1-i] = c
	}
	return out
}

func ExampleForced() {
	for ordinal := 0; ordinal <= 4; ordinal++ {
		fmt.Print(Forced(ordinal), " ")
	}
	// Output: false false true false true
}
