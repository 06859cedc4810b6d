package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplay/internal/content"
	"matchplay/internal/memorize"
)

func newMemorize(t *testing.T, counter PlayCounter) *Memorize {
	t.Helper()
	m, err := NewMemorize("m1", "g2", content.DefaultImages(), counter, MemorizeOptions{Seed: 11})
	require.NoError(t, err)
	return m
}

// selecting returns a started session sitting in the select phase at t0+3s.
func selecting(t *testing.T, counter PlayCounter) *Memorize {
	t.Helper()
	m := newMemorize(t, counter)
	require.NoError(t, m.Start(t0))
	m.Advance(t0.Add(3 * time.Second))
	require.Equal(t, memorize.PhaseSelect, m.View(t0.Add(3*time.Second)).Memorize.Phase)
	return m
}

func distractors(m *Memorize) []string {
	targets := map[string]bool{}
	for _, tg := range m.round.Targets() {
		targets[tg.ID] = true
	}
	var out []string
	for _, o := range m.round.Options() {
		if !targets[o.ID] {
			out = append(out, o.ID)
		}
	}
	return out
}

func TestMemorizeStartShowsTargets(t *testing.T) {
	m := newMemorize(t, nil)
	assert.Equal(t, memorize.PhaseIdle, m.View(t0).Memorize.Phase)
	assert.False(t, m.TogglePause(t0), "pause is a no-op on the intro screen")

	require.NoError(t, m.Start(t0))
	v := m.View(t0)
	assert.Equal(t, 60, v.Session.Clock)
	assert.Equal(t, 1, v.Session.RoundIndex)
	assert.Equal(t, memorize.PhaseShow, v.Memorize.Phase)
	assert.Len(t, v.Memorize.Targets, 4)
	assert.Empty(t, v.Memorize.Options, "options stay hidden while showing")
}

func TestMemorizeSelectHidesTargetsAndScores(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	v := m.View(now)
	assert.Equal(t, 57, v.Session.Clock)
	assert.Empty(t, v.Memorize.Targets)
	assert.Len(t, v.Memorize.Options, 8)
	assert.False(t, v.Memorize.CanSubmit)

	_, ok := m.SubmitSelection(now)
	assert.False(t, ok, "empty selection")

	targets := m.round.Targets()
	require.True(t, m.Toggle(targets[0].ID, now))
	require.True(t, m.Toggle(targets[1].ID, now))
	assert.True(t, m.View(now).Memorize.CanSubmit)

	res, ok := m.SubmitSelection(now)
	require.True(t, ok)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 25, res.Delta)

	v = m.View(now)
	assert.Equal(t, 25, v.Session.Score)
	assert.Equal(t, memorize.PhaseResult, v.Memorize.Phase)
	assert.Len(t, v.Memorize.Targets, 4)
	require.NotNil(t, v.Memorize.Result)
	assert.True(t, v.Memorize.CanContinue)
}

func TestMemorizeNegativeScoreIsKept(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	wrong := distractors(m)
	require.GreaterOrEqual(t, len(wrong), 2)
	m.Toggle(wrong[0], now)
	m.Toggle(wrong[1], now)

	res, ok := m.SubmitSelection(now)
	require.True(t, ok)
	assert.Equal(t, -5, res.Delta)
	assert.Equal(t, -5, m.View(now).Session.Score)
}

func TestMemorizePauseBlocksSelection(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	require.True(t, m.Pause(now))
	id := m.round.Targets()[0].ID
	assert.False(t, m.Toggle(id, now))

	later := now.Add(time.Minute)
	assert.Equal(t, 57, m.View(later).Session.Clock, "clock frozen while paused")
	require.True(t, m.Resume(later))
	assert.True(t, m.Toggle(id, later))
	_, ok := m.SubmitSelection(later)
	assert.True(t, ok)
}

func TestMemorizeNextRound(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	assert.False(t, m.NextRound(now), "next only from result")

	m.Toggle(m.round.Targets()[0].ID, now)
	_, ok := m.SubmitSelection(now)
	require.True(t, ok)
	gen := m.View(now).Memorize.Generation

	require.True(t, m.NextRound(now))
	v := m.View(now)
	assert.Equal(t, 2, v.Session.RoundIndex)
	assert.Equal(t, memorize.PhaseShow, v.Memorize.Phase)
	assert.Greater(t, v.Memorize.Generation, gen)
	assert.Empty(t, v.Memorize.Selected)
}

func TestMemorizeClockRunsThroughResult(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	m.Toggle(m.round.Targets()[0].ID, now)
	m.SubmitSelection(now)

	v := m.View(t0.Add(10 * time.Second))
	assert.Equal(t, memorize.PhaseResult, v.Memorize.Phase)
	assert.Equal(t, 50, v.Session.Clock)
}

func TestMemorizeTimeoutFinishesMidRound(t *testing.T) {
	counter := &countingCounter{}
	m := selecting(t, counter)
	m.Toggle(m.round.Targets()[0].ID, t0.Add(3*time.Second))

	end := t0.Add(60 * time.Second)
	assert.True(t, m.Advance(end.Add(5*time.Second)))
	v := m.View(end.Add(5 * time.Second))
	assert.Equal(t, LifecycleFinished, v.Session.Lifecycle)
	assert.Equal(t, 0, v.Session.Clock)
	assert.Equal(t, memorize.PhaseResult, v.Memorize.Phase)
	assert.Nil(t, v.Memorize.Result, "an unsubmitted round is not scored")
	assert.Zero(t, v.Session.Score)
	assert.Equal(t, end, m.EndedAt())
	assert.Equal(t, 1, counter.Count())

	assert.False(t, m.NextRound(end.Add(6*time.Second)))
	_, ok := m.SubmitSelection(end.Add(6 * time.Second))
	assert.False(t, ok)
	m.Exit(end.Add(7 * time.Second))
	assert.Equal(t, 1, counter.Count())
}

func TestMemorizeOnTimeExpired(t *testing.T) {
	m := newMemorize(t, nil)
	require.NoError(t, m.Start(t0))
	m.OnTimeExpired(t0.Add(time.Second))
	v := m.View(t0.Add(time.Second))
	assert.Equal(t, LifecycleFinished, v.Session.Lifecycle)
	assert.Equal(t, memorize.PhaseResult, v.Memorize.Phase)
}

func TestMemorizeAbandonRound(t *testing.T) {
	m := selecting(t, nil)
	now := t0.Add(3 * time.Second)
	gen := m.View(now).Memorize.Generation
	require.True(t, m.AbandonRound(now))
	v := m.View(now)
	assert.Equal(t, memorize.PhaseShow, v.Memorize.Phase)
	assert.Greater(t, v.Memorize.Generation, gen)
	assert.Equal(t, 1, v.Session.RoundIndex)
}

func TestNewMemorizeRejectsSmallPool(t *testing.T) {
	_, err := NewMemorize("m", "g", content.DefaultImages()[:2], nil, MemorizeOptions{})
	assert.ErrorIs(t, err, content.ErrMalformedContent)
}

func TestMemorizeTickEndsAtGivenTime(t *testing.T) {
	m, err := NewMemorize("m1", "g2", content.DefaultImages(), nil, MemorizeOptions{Seed: 11, TotalTime: 2})
	require.NoError(t, err)
	require.NoError(t, m.Start(t0))

	m.Tick(t0.Add(300 * time.Millisecond))
	assert.Equal(t, LifecyclePlaying, m.View(t0.Add(300*time.Millisecond)).Session.Lifecycle)

	at := t0.Add(700 * time.Millisecond)
	m.Tick(at)
	assert.Equal(t, LifecycleFinished, m.View(at).Session.Lifecycle)
	assert.Equal(t, at, m.EndedAt())
}
