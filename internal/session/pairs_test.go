package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplay/internal/content"
	"matchplay/internal/round"
)

func newPairs(t *testing.T, counter PlayCounter, opts PairsOptions) *Pairs {
	t.Helper()
	p, err := NewPairs("s1", "g1", content.DefaultPairs(), counter, opts)
	require.NoError(t, err)
	return p
}

func TestPairsLifecycle(t *testing.T) {
	p := newPairs(t, nil, instantPairs())
	v := p.View(t0)
	assert.Equal(t, LifecycleIntro, v.Session.Lifecycle)
	assert.False(t, p.Pause(t0), "pause is a no-op on the intro screen")

	require.NoError(t, p.Start(t0))
	assert.ErrorIs(t, p.Start(t0), ErrAlreadyStarted)

	v = p.View(t0)
	assert.Equal(t, LifecyclePlaying, v.Session.Lifecycle)
	assert.Equal(t, 1, v.Session.RoundIndex)
	assert.Zero(t, v.Session.Score)
	require.NotNil(t, v.Pairs)
	assert.Equal(t, round.PhaseAwaitingAnswer, v.Pairs.Round.Phase)
	assert.True(t, v.Pairs.CanAnswer)
	assert.Len(t, v.Pairs.Left, 5)
}

func TestNewPairsRejectsMalformedContent(t *testing.T) {
	_, err := NewPairs("s", "g", []content.MatchPair{{ID: "1", FrontContent: "a"}}, nil, PairsOptions{})
	assert.ErrorIs(t, err, content.ErrMalformedContent)
}

func TestPairsFivePairSessionFinishesAndNotifiesOnce(t *testing.T) {
	counter := &countingCounter{}
	p := newPairs(t, counter, instantPairs())
	require.NoError(t, p.Start(t0))

	for i := 0; i < 5; i++ {
		outcome, ok := p.Submit(true, t0)
		require.True(t, ok, "answer %d", i)
		require.Equal(t, round.OutcomeCorrectMatch, outcome)
	}
	p.Advance(t0)

	v := p.View(t0)
	assert.Equal(t, LifecycleFinished, v.Session.Lifecycle)
	assert.Equal(t, 5, v.Session.Score)
	assert.Equal(t, 5, v.Pairs.Round.CorrectCount)
	assert.Empty(t, v.Pairs.Left)
	assert.Empty(t, v.Pairs.Right)
	assert.Equal(t, round.PhaseRoundComplete, v.Pairs.Round.Phase)
	assert.Equal(t, 1, counter.Count())
	assert.Equal(t, t0, p.EndedAt())

	_, ok := p.Submit(true, t0)
	assert.False(t, ok)
	assert.True(t, p.Exit(t0))
	assert.Equal(t, 1, counter.Count(), "exit after finish must not notify again")
	_, ok = p.NextTimer(t0)
	assert.False(t, ok)
}

func TestPairsMultipleRounds(t *testing.T) {
	opts := instantPairs()
	opts.Rounds = 2
	counter := &countingCounter{}
	p := newPairs(t, counter, opts)
	require.NoError(t, p.Start(t0))

	for i := 0; i < 5; i++ {
		_, ok := p.Submit(true, t0)
		require.True(t, ok)
	}
	v := p.View(t0)
	assert.Equal(t, LifecyclePlaying, v.Session.Lifecycle)
	assert.Equal(t, 2, v.Session.RoundIndex)
	assert.Len(t, v.Pairs.Left, 5)
	assert.Zero(t, counter.Count())

	for i := 0; i < 5; i++ {
		_, ok := p.Submit(true, t0)
		require.True(t, ok)
	}
	p.Advance(t0)
	assert.Equal(t, LifecycleFinished, p.View(t0).Session.Lifecycle)
	assert.Equal(t, 10, p.View(t0).Session.Score)
	assert.Equal(t, 1, counter.Count())
}

func TestPairsElapsedClockAndPause(t *testing.T) {
	p := newPairs(t, nil, instantPairs())
	require.NoError(t, p.Start(t0))

	p.Advance(t0.Add(3 * time.Second))
	assert.Equal(t, 3, p.View(t0.Add(3*time.Second)).Session.Clock)

	require.True(t, p.Pause(t0.Add(3500*time.Millisecond)))
	assert.Equal(t, 3, p.View(t0.Add(10*time.Second)).Session.Clock)
	_, ok := p.Submit(true, t0.Add(10*time.Second))
	assert.False(t, ok, "answers are blocked while paused")
	p.Tick(t0.Add(10 * time.Second))
	assert.Equal(t, 3, p.View(t0.Add(10*time.Second)).Session.Clock)

	require.True(t, p.TogglePause(t0.Add(10*time.Second)))
	next, ok := p.NextTimer(t0.Add(10 * time.Second))
	require.True(t, ok)
	assert.Equal(t, t0.Add(10500*time.Millisecond), next)
	assert.Equal(t, 4, p.View(t0.Add(10500*time.Millisecond)).Session.Clock)
}

func TestPairsFeedbackIsTransient(t *testing.T) {
	p := newPairs(t, nil, instantPairs())
	require.NoError(t, p.Start(t0))

	outcome, ok := p.Submit(false, t0)
	require.True(t, ok)
	assert.Equal(t, round.OutcomeWrongAsNoPair, outcome)
	assert.Equal(t, round.FeedbackWrong, p.View(t0).Pairs.Feedback)
	assert.Equal(t, round.FeedbackWrong, p.View(t0.Add(999*time.Millisecond)).Pairs.Feedback)
	assert.Equal(t, round.FeedbackNone, p.View(t0.Add(time.Second)).Pairs.Feedback)
	assert.Zero(t, p.View(t0.Add(time.Second)).Session.Score)
}

func TestPairsAbandonRoundRedealsUnscored(t *testing.T) {
	p := newPairs(t, nil, instantPairs())
	require.NoError(t, p.Start(t0))
	_, ok := p.Submit(true, t0)
	require.True(t, ok)
	p.Advance(t0)
	before := p.View(t0).Pairs.Round

	require.True(t, p.AbandonRound(t0))
	p.Advance(t0)
	v := p.View(t0)
	assert.Equal(t, 5, v.Pairs.Round.Remaining)
	assert.Greater(t, v.Pairs.Round.Generation, before.Generation)
	assert.Zero(t, v.Pairs.Round.CorrectCount)
	assert.Equal(t, 1, v.Session.Score, "abandoning does not take back earned points")
	assert.Equal(t, 1, v.Session.RoundIndex)
}

func TestPairsExitNotifiesExactlyOnce(t *testing.T) {
	counter := &countingCounter{}
	p := newPairs(t, counter, PairsOptions{Seed: 3})
	require.NoError(t, p.Start(t0))

	assert.True(t, p.Exit(t0.Add(time.Second)))
	assert.False(t, p.Exit(t0.Add(2*time.Second)))
	assert.Equal(t, 1, counter.Count())

	v := p.View(t0.Add(time.Minute))
	assert.True(t, v.Session.Ended)
	assert.Equal(t, LifecycleFinished, v.Session.Lifecycle)
	assert.ErrorIs(t, p.Restart(t0), ErrEnded)
	assert.ErrorIs(t, p.Start(t0), ErrEnded)
}

func TestPairsNextTimerFollowsDealSchedule(t *testing.T) {
	p := newPairs(t, nil, PairsOptions{Rand: identity{}})
	_, ok := p.NextTimer(t0)
	assert.False(t, ok, "intro has no timers")

	require.NoError(t, p.Start(t0))
	next, ok := p.NextTimer(t0)
	require.True(t, ok)
	assert.Equal(t, t0.Add(200*time.Millisecond), next)

	_, accepted := p.Submit(true, t0.Add(time.Second))
	assert.False(t, accepted, "still dealing at one second")
	_, accepted = p.Submit(true, t0.Add(1850*time.Millisecond))
	assert.True(t, accepted)
}

func TestPairsRestartResetsScore(t *testing.T) {
	p := newPairs(t, nil, instantPairs())
	require.NoError(t, p.Start(t0))
	p.Submit(true, t0)
	require.NoError(t, p.Restart(t0.Add(time.Second)))
	v := p.View(t0.Add(time.Second))
	assert.Zero(t, v.Session.Score)
	assert.Zero(t, v.Session.Clock)
	assert.Equal(t, LifecyclePlaying, v.Session.Lifecycle)
}
