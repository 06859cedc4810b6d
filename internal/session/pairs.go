package session

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"matchplay/internal/content"
	"matchplay/internal/deck"
	"matchplay/internal/metrics"
	"matchplay/internal/round"
)

// DefaultFeedbackFor is how long the correct/wrong banner stays up.
const DefaultFeedbackFor = time.Second

// PairsOptions configure a Pair-or-No-Pair session.
type PairsOptions struct {
	Rounds      int
	Timings     round.Timings
	FeedbackFor time.Duration
	// Rand overrides the seeded source. It must not be shared between sessions.
	Rand deck.Rand
	Seed int64
}

func (o PairsOptions) withDefaults() PairsOptions {
	if o.Rounds < 1 {
		o.Rounds = 1
	}
	if o.Timings == (round.Timings{}) {
		o.Timings = round.DefaultTimings()
	}
	if o.FeedbackFor <= 0 {
		o.FeedbackFor = DefaultFeedbackFor
	}
	return o
}

func newRand(r deck.Rand, seed int64) deck.Rand {
	if r != nil {
		return r
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Pairs is a Pair-or-No-Pair session.
type Pairs struct {
	mu sync.Mutex
	core
	pairs         []content.MatchPair
	opts          PairsOptions
	shuffler      *deck.Shuffler
	machine       *round.Machine
	completed     int
	feedback      round.Feedback
	feedbackUntil time.Time
}

// NewPairs validates pairs and returns a session on its intro screen.
func NewPairs(id, gameID string, pairs []content.MatchPair, counter PlayCounter, opts PairsOptions) (*Pairs, error) {
	if err := content.ValidatePairs(pairs); err != nil {
		return nil, fmt.Errorf("new pairs session: %w", err)
	}
	opts = opts.withDefaults()
	shuffler := deck.NewShufflerFrom(newRand(opts.Rand, opts.Seed))
	return &Pairs{
		core:     newCore(id, gameID, VariantPairs, counter),
		pairs:    append([]content.MatchPair(nil), pairs...),
		opts:     opts,
		shuffler: shuffler,
		machine:  round.NewMachine(shuffler, opts.Timings),
		feedback: round.FeedbackNone,
	}, nil
}

func (p *Pairs) ID() string       { return p.id }
func (p *Pairs) GameID() string   { return p.gameID }
func (p *Pairs) Variant() Variant { return VariantPairs }

// Start leaves the intro screen and deals the first round.
func (p *Pairs) Start(now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Ended {
		return ErrEnded
	}
	if p.state.Lifecycle != LifecycleIntro {
		return ErrAlreadyStarted
	}
	p.beginLocked(now)
	return nil
}

// Restart plays again from round one, keeping the session id.
func (p *Pairs) Restart(now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Ended {
		return ErrEnded
	}
	p.beginLocked(now)
	return nil
}

func (p *Pairs) beginLocked(now time.Time) {
	p.state = State{RoundIndex: 1, Lifecycle: LifecyclePlaying}
	p.completed = 0
	p.endedAt = time.Time{}
	p.feedback = round.FeedbackNone
	p.feedbackUntil = time.Time{}
	p.clock.Start(now)
	p.dealLocked(now)
	p.touch()
	metrics.SessionsStarted.WithLabelValues(string(VariantPairs)).Inc()
}

// dealLocked builds the ordinal-0 arrangement and hands it to the machine.
func (p *Pairs) dealLocked(now time.Time) {
	st := p.shuffler.ShuffleStacks(deck.FromPairs(p.pairs), 0)
	p.machine.Deal(st, now)
	if p.state.Paused {
		p.machine.Pause(now)
	}
}

// Submit answers the top pair: claimsPair true means "pair".
func (p *Pairs) Submit(claimsPair bool, now time.Time) (round.Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked(now)
	if !p.active() {
		return round.OutcomeNone, false
	}
	outcome, ok := p.machine.Submit(claimsPair, now)
	if !ok {
		return round.OutcomeNone, false
	}
	if outcome == round.OutcomeCorrectMatch {
		p.state.Score++
	}
	p.feedback = outcome.Feedback()
	p.feedbackUntil = time.Time{}
	if p.feedback != round.FeedbackNone {
		p.feedbackUntil = now.Add(p.opts.FeedbackFor)
	}
	p.touch()
	metrics.Answers.WithLabelValues(string(VariantPairs), string(outcome)).Inc()
	return outcome, true
}

// Tick adds one second of play time. The elapsed clock does not depend on now.
func (p *Pairs) Tick(time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickLocked()
}

func (p *Pairs) tickLocked() {
	if !p.active() {
		return
	}
	p.state.Clock++
	p.touch()
}

func (p *Pairs) Pause(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauseLocked(now)
}

func (p *Pairs) pauseLocked(now time.Time) bool {
	p.advanceLocked(now)
	if !p.playing() || p.state.Paused {
		return false
	}
	p.state.Paused = true
	p.clock.Pause(now)
	p.machine.Pause(now)
	p.touch()
	return true
}

func (p *Pairs) Resume(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resumeLocked(now)
}

func (p *Pairs) resumeLocked(now time.Time) bool {
	if !p.playing() || !p.state.Paused {
		return false
	}
	p.state.Paused = false
	p.clock.Resume(now)
	p.machine.Resume(now)
	p.touch()
	return true
}

func (p *Pairs) TogglePause(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Paused {
		return p.resumeLocked(now)
	}
	return p.pauseLocked(now)
}

// AbandonRound throws the current round away unscored and deals a fresh one.
func (p *Pairs) AbandonRound(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked(now)
	if !p.playing() {
		return false
	}
	p.machine.Abort()
	p.feedback = round.FeedbackNone
	p.dealLocked(now)
	p.touch()
	return true
}

// Exit reports the play and ends the session for good.
func (p *Pairs) Exit(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Ended {
		return false
	}
	p.machine.Abort()
	p.feedback = round.FeedbackNone
	p.exit(now)
	return true
}

// Advance applies every timer due at now.
func (p *Pairs) Advance(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.advanceLocked(now)
}

func (p *Pairs) advanceLocked(now time.Time) bool {
	changed := p.drive(now, p.machine,
		func(at time.Time) {
			if p.machine.Complete() {
				p.roundDoneLocked(at)
			}
		},
		func(time.Time) { p.tickLocked() },
	)
	if p.feedback != round.FeedbackNone && !now.Before(p.feedbackUntil) {
		p.feedback = round.FeedbackNone
		p.touch()
		changed = true
	}
	return changed
}

func (p *Pairs) roundDoneLocked(at time.Time) {
	p.completed++
	if p.completed >= p.opts.Rounds {
		p.finish(at)
		return
	}
	p.state.RoundIndex++
	p.dealLocked(at)
}

// NextTimer is the next moment Advance has work to do.
func (p *Pairs) NextTimer(now time.Time) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing() {
		return time.Time{}, false
	}
	stepAt, stepOK := p.machine.NextWake()
	tickAt, tickOK := p.clock.NextWake()
	next, ok := nextOf(stepAt, stepOK, tickAt, tickOK)
	if p.feedback != round.FeedbackNone {
		next, ok = nextOf(next, ok, p.feedbackUntil, true)
	}
	return next, ok
}

func (p *Pairs) EndedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.endedAt
}

// View snapshots the session after applying due timers.
func (p *Pairs) View(now time.Time) View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanceLocked(now)
	st := p.machine.Stacks()
	rs := p.machine.State()
	return View{
		ID:      p.id,
		GameID:  p.gameID,
		Variant: VariantPairs,
		Session: p.state,
		Version: p.version,
		Pairs: &PairsView{
			Round:      rs,
			Left:       st.Left,
			Right:      st.Right,
			Feedback:   p.feedback,
			TotalPairs: len(p.pairs),
			Rounds:     p.opts.Rounds,
			CanAnswer:  p.active() && rs.Phase == round.PhaseAwaitingAnswer,
		},
	}
}
