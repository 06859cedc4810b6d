package round

import "time"

// Phase is the coarse state of a Pair-or-No-Pair round.
type Phase string

const (
	PhaseIdle                   Phase = "idle"
	PhaseDealing                Phase = "dealing"
	PhaseAwaitingAnswer         Phase = "awaiting_answer"
	PhaseResolvingCorrect       Phase = "resolving_correct"
	PhaseResolvingWrongAsPair   Phase = "resolving_wrong_as_pair"
	PhaseResolvingWrongAsNoPair Phase = "resolving_wrong_as_no_pair"
	PhaseReshuffling            Phase = "reshuffling"
	PhaseRoundComplete          Phase = "round_complete"
)

// Sub-phase names are the presentation contract: the browser animates on them.
const (
	SubClosing       = "closing"
	SubShuffleDown   = "shuffle-down"
	SubShuffleUp     = "shuffle-up"
	SubShuffleSettle = "shuffle-settle"
	SubOpening       = "opening"
	SubIdle          = "idle"
	SubFlyOut        = "fly-out"
	SubDeal          = "deal"
	SubReturnToStack = "return-to-stack"
	SubNewFromStack  = "new-from-stack"
)

// Outcome classifies an accepted answer.
type Outcome string

const (
	OutcomeNone             Outcome = "none"
	OutcomeCorrectMatch     Outcome = "correct_match"
	OutcomeWrongAsPair      Outcome = "wrong_as_pair"
	OutcomeWrongAsNoPair    Outcome = "wrong_as_no_pair"
	OutcomeCorrectRejection Outcome = "correct_rejection"
)

// Feedback is the transient banner shown after an answer.
type Feedback string

const (
	FeedbackNone    Feedback = "none"
	FeedbackCorrect Feedback = "correct"
	FeedbackWrong   Feedback = "wrong"
)

// Feedback maps an outcome to its banner. A correct rejection shows none.
func (o Outcome) Feedback() Feedback {
	switch o {
	case OutcomeCorrectMatch:
		return FeedbackCorrect
	case OutcomeWrongAsPair, OutcomeWrongAsNoPair:
		return FeedbackWrong
	default:
		return FeedbackNone
	}
}

// Timings are the hold durations of each sub-phase.
type Timings struct {
	Closing          time.Duration
	ShuffleDown      time.Duration
	ShuffleUp        time.Duration
	ShuffleSettle    time.Duration
	Opening          time.Duration
	DealLoops        int
	FlyOut           time.Duration
	Deal             time.Duration
	ReturnToStack    time.Duration
	NewFromStack     time.Duration
	ReshuffleSettle  time.Duration
	ReshuffleOpening time.Duration
}

// DefaultTimings mirrors the card animations of the browser client.
func DefaultTimings() Timings {
	return Timings{
		Closing:          200 * time.Millisecond,
		ShuffleDown:      180 * time.Millisecond,
		ShuffleUp:        150 * time.Millisecond,
		ShuffleSettle:    120 * time.Millisecond,
		Opening:          300 * time.Millisecond,
		DealLoops:        3,
		FlyOut:           600 * time.Millisecond,
		Deal:             350 * time.Millisecond,
		ReturnToStack:    250 * time.Millisecond,
		NewFromStack:     200 * time.Millisecond,
		ReshuffleSettle:  150 * time.Millisecond,
		ReshuffleOpening: 250 * time.Millisecond,
	}
}

// Instant is Timings with every hold at zero, for callers that do not animate.
func Instant() Timings {
	return Timings{DealLoops: 3}
}
