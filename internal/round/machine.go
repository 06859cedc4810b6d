package round

import (
	"time"

	"matchplay/internal/deck"
	"matchplay/pkg/realtime"
)

// State is a read-only snapshot of the machine.
type State struct {
	Phase              Phase   `json:"phase"`
	SubPhase           string  `json:"sub_phase"`
	Cursor             int     `json:"cursor"`
	ShuffleOrdinal     int     `json:"shuffle_ordinal"`
	AttemptsSinceForce int     `json:"attempts_since_force"`
	Generation         uint64  `json:"generation"`
	CorrectCount       int     `json:"correct_count"`
	Remaining          int     `json:"remaining"`
	LastOutcome        Outcome `json:"last_outcome"`
}

// Machine runs one Pair-or-No-Pair round at a time. Effects of a sub-phase
// (a new shuffle, a removed pair) are applied when that sub-phase is entered,
// before anything later in the chain.
type Machine struct {
	timings    Timings
	shuffler   *deck.Shuffler
	stacks     deck.Stacks
	phase      Phase
	cursor     int
	ordinal    int
	sinceForce int
	gen        uint64
	correct    int
	last       Outcome
	seq        realtime.Sequence
}

// NewMachine returns an idle machine.
func NewMachine(shuffler *deck.Shuffler, timings Timings) *Machine {
	if timings.DealLoops <= 0 {
		timings.DealLoops = DefaultTimings().DealLoops
	}
	return &Machine{
		timings:  timings,
		shuffler: shuffler,
		phase:    PhaseIdle,
		last:     OutcomeNone,
	}
}

// Deal starts a new round over stacks, discarding whatever was in flight.
func (m *Machine) Deal(stacks deck.Stacks, now time.Time) {
	m.gen++
	m.stacks = stacks.Clone()
	m.cursor = 0
	m.ordinal = 0
	m.sinceForce = 0
	m.correct = 0
	m.last = OutcomeNone
	m.phase = PhaseDealing
	if m.stacks.Empty() {
		m.seq.Cancel()
		m.phase = PhaseRoundComplete
		return
	}
	m.seq.Begin(now, m.dealPlan()...)
}

// Abort drops the current round. Pending steps become stale.
func (m *Machine) Abort() {
	m.gen++
	m.seq.Cancel()
	m.phase = PhaseIdle
}

// Submit answers the current top pair. It is accepted only while awaiting an answer.
func (m *Machine) Submit(claimsPair bool, now time.Time) (Outcome, bool) {
	if m.phase != PhaseAwaitingAnswer || m.seq.Paused() {
		return OutcomeNone, false
	}
	l, r, ok := m.stacks.At(m.cursor)
	if !ok {
		return OutcomeNone, false
	}
	actual := l.ID == r.ID

	var outcome Outcome
	switch {
	case claimsPair && actual:
		outcome = OutcomeCorrectMatch
		m.correct++
		m.phase = PhaseResolvingCorrect
		m.seq.Begin(now, m.correctPlan(l.ID)...)
	case claimsPair && !actual:
		outcome = OutcomeWrongAsPair
		m.phase = PhaseResolvingWrongAsPair
		m.seq.Begin(now, m.reshufflePlan()...)
	case !claimsPair && actual:
		outcome = OutcomeWrongAsNoPair
		m.phase = PhaseResolvingWrongAsNoPair
		m.seq.Begin(now, m.reshufflePlan()...)
	default:
		outcome = OutcomeCorrectRejection
		m.phase = PhaseReshuffling
		m.seq.Begin(now, m.reshufflePlan()...)
	}
	m.last = outcome
	return outcome, true
}

func (m *Machine) dealPlan() []realtime.Step {
	t := m.timings
	steps := []realtime.Step{{Name: SubClosing, Hold: t.Closing}}
	for k := 1; k <= t.DealLoops; k++ {
		ordinal := k
		steps = append(steps,
			realtime.Step{Name: SubShuffleDown, Hold: t.ShuffleDown},
			realtime.Step{Name: SubShuffleUp, Hold: t.ShuffleUp, Enter: func() bool {
				m.apply(ordinal)
				return false
			}},
			realtime.Step{Name: SubShuffleSettle, Hold: t.ShuffleSettle},
		)
	}
	return append(steps,
		realtime.Step{Name: SubOpening, Hold: t.Opening},
		realtime.Step{Name: SubIdle, Enter: m.await},
	)
}

func (m *Machine) correctPlan(id string) []realtime.Step {
	t := m.timings
	return []realtime.Step{
		{Name: SubFlyOut, Hold: t.FlyOut},
		{Name: SubDeal, Hold: t.Deal, Enter: func() bool {
			m.stacks = m.stacks.Without(id)
			m.cursor = 0
			if m.stacks.Empty() {
				m.phase = PhaseRoundComplete
				return true
			}
			m.phase = PhaseDealing
			return false
		}},
		{Name: SubIdle, Enter: m.await},
	}
}

func (m *Machine) reshufflePlan() []realtime.Step {
	t := m.timings
	return []realtime.Step{
		{Name: SubClosing, Hold: t.Closing},
		{Name: SubReturnToStack, Hold: t.ReturnToStack, Enter: func() bool {
			m.phase = PhaseReshuffling
			return false
		}},
		{Name: SubNewFromStack, Hold: t.NewFromStack, Enter: func() bool {
			m.ordinal++
			m.apply(m.ordinal)
			return false
		}},
		{Name: SubShuffleSettle, Hold: t.ReshuffleSettle},
		{Name: SubOpening, Hold: t.ReshuffleOpening},
		{Name: SubIdle, Enter: m.await},
	}
}

func (m *Machine) apply(ordinal int) {
	m.stacks = m.shuffler.ShuffleStacks(m.stacks, ordinal)
	m.cursor = 0
	if deck.Forced(ordinal) {
		m.sinceForce = 0
	} else {
		m.sinceForce++
	}
}

func (m *Machine) await() bool {
	m.phase = PhaseAwaitingAnswer
	return true
}

// Advance enters every sub-phase due at or before now and reports how many.
func (m *Machine) Advance(now time.Time) int {
	return m.seq.Advance(now)
}

// Pending is the next scheduled step and its due time.
func (m *Machine) Pending() (realtime.Ticket, time.Time, bool) {
	return m.seq.Pending()
}

// Fire enters the step named by t. Tickets from an earlier round, or taken
// before a pause, resume or abort, are ignored.
func (m *Machine) Fire(t realtime.Ticket) bool {
	return m.seq.Fire(t)
}

// NextWake is when the next sub-phase is due.
func (m *Machine) NextWake() (time.Time, bool) {
	_, at, ok := m.seq.Pending()
	return at, ok
}

// Pause freezes the running sub-phase.
func (m *Machine) Pause(now time.Time) { m.seq.Pause(now) }

// Resume continues the frozen sub-phase with the time it had left.
func (m *Machine) Resume(now time.Time) { m.seq.Resume(now) }

// Complete reports whether every pair of the round has been matched.
func (m *Machine) Complete() bool { return m.phase == PhaseRoundComplete }

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Stacks returns a copy of both stacks.
func (m *Machine) Stacks() deck.Stacks { return m.stacks.Clone() }

// Top returns the two cards under the cursor.
func (m *Machine) Top() (deck.Card, deck.Card, bool) { return m.stacks.At(m.cursor) }

// State snapshots the machine.
func (m *Machine) State() State {
	sub := m.seq.Current()
	switch m.phase {
	case PhaseIdle, PhaseRoundComplete:
		sub = ""
	}
	return State{
		Phase:              m.phase,
		SubPhase:           sub,
		Cursor:             m.cursor,
		ShuffleOrdinal:     m.ordinal,
		AttemptsSinceForce: m.sinceForce,
		Generation:         m.gen,
		CorrectCount:       m.correct,
		Remaining:          m.stacks.Len(),
		LastOutcome:        m.last,
	}
}
