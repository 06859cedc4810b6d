package session

import (
	"fmt"
	"sync"
	"time"

	"matchplay/internal/content"
	"matchplay/internal/deck"
	"matchplay/internal/memorize"
	"matchplay/internal/metrics"
	"matchplay/internal/scoring"
)

// DefaultTotalTime is the memorize session length in seconds.
const DefaultTotalTime = 60

// MemorizeOptions configure a Watch-and-Memorize session.
type MemorizeOptions struct {
	ShowCount   int
	OptionCount int
	ShowFor     time.Duration
	TotalTime   int
	Rand        deck.Rand
	Seed        int64
}

func (o MemorizeOptions) withDefaults() MemorizeOptions {
	if o.ShowCount < 1 {
		o.ShowCount = memorize.DefaultShowCount
	}
	if o.OptionCount < o.ShowCount {
		o.OptionCount = memorize.DefaultOptionCount
	}
	if o.OptionCount < o.ShowCount {
		o.OptionCount = o.ShowCount
	}
	if o.ShowFor <= 0 {
		o.ShowFor = memorize.DefaultShowFor
	}
	if o.TotalTime < 1 {
		o.TotalTime = DefaultTotalTime
	}
	return o
}

// Memorize is a Watch-and-Memorize session. Its clock counts down over the
// whole session, through every phase including result.
type Memorize struct {
	mu sync.Mutex
	core
	images []content.Image
	opts   MemorizeOptions
	rng    deck.Rand
	round  memorize.Round
}

// NewMemorize validates the image pool and returns a session on its intro screen.
func NewMemorize(id, gameID string, images []content.Image, counter PlayCounter, opts MemorizeOptions) (*Memorize, error) {
	opts = opts.withDefaults()
	if err := content.ValidateImages(images, opts.ShowCount); err != nil {
		return nil, fmt.Errorf("new memorize session: %w", err)
	}
	return &Memorize{
		core:   newCore(id, gameID, VariantMemorize, counter),
		images: append([]content.Image(nil), images...),
		opts:   opts,
		rng:    newRand(opts.Rand, opts.Seed),
	}, nil
}

func (m *Memorize) ID() string       { return m.id }
func (m *Memorize) GameID() string   { return m.gameID }
func (m *Memorize) Variant() Variant { return VariantMemorize }

func (m *Memorize) Start(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Ended {
		return ErrEnded
	}
	if m.state.Lifecycle != LifecycleIntro {
		return ErrAlreadyStarted
	}
	m.beginLocked(now)
	return nil
}

func (m *Memorize) Restart(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Ended {
		return ErrEnded
	}
	m.beginLocked(now)
	return nil
}

func (m *Memorize) beginLocked(now time.Time) {
	m.state = State{RoundIndex: 1, Clock: m.opts.TotalTime, Lifecycle: LifecyclePlaying}
	m.endedAt = time.Time{}
	m.clock.Start(now)
	m.roundLocked(now)
	m.touch()
	metrics.SessionsStarted.WithLabelValues(string(VariantMemorize)).Inc()
}

func (m *Memorize) roundLocked(now time.Time) {
	targets, options := memorize.Prepare(m.images, m.opts.ShowCount, m.opts.OptionCount, m.rng)
	m.round.Begin(now, targets, options, m.opts.ShowFor)
	if m.state.Paused {
		m.round.Pause(now)
	}
}

// Toggle flips an option in the selection.
func (m *Memorize) Toggle(id string, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(now)
	if !m.active() || !m.round.Toggle(id) {
		return false
	}
	m.touch()
	return true
}

// SubmitSelection scores the selection against the remaining time and adds the delta.
func (m *Memorize) SubmitSelection(now time.Time) (scoring.Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(now)
	if !m.active() {
		return scoring.Result{}, false
	}
	res, ok := m.round.Submit(m.state.Clock)
	if !ok {
		return scoring.Result{}, false
	}
	m.state.Score += res.Delta
	m.touch()
	outcome := "scored"
	if res.Wrong == 0 && res.Correct == m.opts.ShowCount {
		outcome = "perfect"
	}
	metrics.Answers.WithLabelValues(string(VariantMemorize), outcome).Inc()
	return res, true
}

// NextRound starts a new round from the result screen while time remains.
func (m *Memorize) NextRound(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(now)
	if !m.active() || m.round.Phase() != memorize.PhaseResult || m.state.Clock <= 0 {
		return false
	}
	m.state.RoundIndex++
	m.roundLocked(now)
	m.touch()
	return true
}

// OnTimeExpired finishes the session wherever the round stands.
func (m *Memorize) OnTimeExpired(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked(now)
}

func (m *Memorize) expireLocked(now time.Time) {
	if !m.playing() {
		return
	}
	m.state.Clock = 0
	m.round.Expire()
	m.finish(now)
}

// Tick takes one second off the countdown; reaching zero ends the session at now.
func (m *Memorize) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked(now)
}

func (m *Memorize) tickLocked(at time.Time) {
	if !m.active() {
		return
	}
	m.state.Clock--
	m.touch()
	if m.state.Clock <= 0 {
		m.expireLocked(at)
	}
}

func (m *Memorize) Pause(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseLocked(now)
}

func (m *Memorize) pauseLocked(now time.Time) bool {
	m.advanceLocked(now)
	if !m.playing() || m.state.Paused {
		return false
	}
	m.state.Paused = true
	m.clock.Pause(now)
	m.round.Pause(now)
	m.touch()
	return true
}

func (m *Memorize) Resume(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeLocked(now)
}

func (m *Memorize) resumeLocked(now time.Time) bool {
	if !m.playing() || !m.state.Paused {
		return false
	}
	m.state.Paused = false
	m.clock.Resume(now)
	m.round.Resume(now)
	m.touch()
	return true
}

func (m *Memorize) TogglePause(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Paused {
		return m.resumeLocked(now)
	}
	return m.pauseLocked(now)
}

// AbandonRound replaces the current round with fresh targets, unscored.
func (m *Memorize) AbandonRound(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(now)
	if !m.playing() {
		return false
	}
	m.roundLocked(now)
	m.touch()
	return true
}

func (m *Memorize) Exit(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Ended {
		return false
	}
	m.round.Expire()
	m.exit(now)
	return true
}

func (m *Memorize) Advance(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanceLocked(now)
}

func (m *Memorize) advanceLocked(now time.Time) bool {
	return m.drive(now, &m.round, func(time.Time) {}, m.tickLocked)
}

func (m *Memorize) NextTimer(now time.Time) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing() {
		return time.Time{}, false
	}
	stepAt, stepOK := m.round.NextWake()
	tickAt, tickOK := m.clock.NextWake()
	return nextOf(stepAt, stepOK, tickAt, tickOK)
}

func (m *Memorize) EndedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endedAt
}

// View hides the targets while the player is choosing.
func (m *Memorize) View(now time.Time) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked(now)
	phase := m.round.Phase()
	mv := &MemorizeView{
		Phase:      phase,
		Generation: m.round.Generation(),
		Selected:   m.round.Selected(),
		Result:     m.round.Result(),
		TotalTime:  m.opts.TotalTime,
		ShowCount:  m.opts.ShowCount,
	}
	switch phase {
	case memorize.PhaseShow:
		mv.Targets = m.round.Targets()
	case memorize.PhaseSelect:
		mv.Options = m.round.Options()
		mv.CanSubmit = m.active() && len(mv.Selected) > 0
	case memorize.PhaseResult:
		mv.Targets = m.round.Targets()
		mv.Options = m.round.Options()
		mv.CanContinue = m.active() && m.state.Clock > 0
	}
	return View{
		ID:       m.id,
		GameID:   m.gameID,
		Variant:  VariantMemorize,
		Session:  m.state,
		Version:  m.version,
		Memorize: mv,
	}
}
