package session

import (
	"errors"
	"time"

	"matchplay/internal/content"
	"matchplay/internal/deck"
	"matchplay/internal/memorize"
	"matchplay/internal/round"
	"matchplay/internal/scoring"
	"matchplay/pkg/realtime"
)

// Variant names a game.
type Variant string

const (
	VariantPairs    Variant = "pair-or-no-pair"
	VariantMemorize Variant = "watch-and-memorize"
)

// ParseVariant accepts the slug or a short alias.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case string(VariantPairs), "pairs":
		return VariantPairs, true
	case string(VariantMemorize), "memorize":
		return VariantMemorize, true
	}
	return "", false
}

// Lifecycle is the screen a session is on.
type Lifecycle string

const (
	LifecycleIntro    Lifecycle = "intro"
	LifecyclePlaying  Lifecycle = "playing"
	LifecycleFinished Lifecycle = "finished"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrEnded          = errors.New("session ended")
)

// State is the session-wide part of a snapshot. Clock counts up for
// pairs and down for memorize.
type State struct {
	Score      int       `json:"score"`
	RoundIndex int       `json:"round_index"`
	Clock      int       `json:"clock"`
	Paused     bool      `json:"paused"`
	Lifecycle  Lifecycle `json:"lifecycle"`
	Ended      bool      `json:"ended"`
}

// PlayCounter is told once per session that the game was played.
type PlayCounter interface {
	Notify(gameID string)
}

// Controller is what the hosting layer drives. Implementations serialize
// every call on their own mutex.
type Controller interface {
	ID() string
	GameID() string
	Variant() Variant
	Start(now time.Time) error
	Restart(now time.Time) error
	Pause(now time.Time) bool
	Resume(now time.Time) bool
	TogglePause(now time.Time) bool
	AbandonRound(now time.Time) bool
	Exit(now time.Time) bool
	Tick(now time.Time)
	Advance(now time.Time) bool
	NextTimer(now time.Time) (time.Time, bool)
	View(now time.Time) View
	EndedAt() time.Time
}

// View is a read-only snapshot for rendering. Exactly one of Pairs and
// Memorize is set.
type View struct {
	ID       string        `json:"id"`
	GameID   string        `json:"game_id"`
	Variant  Variant       `json:"variant"`
	Session  State         `json:"session"`
	Version  uint64        `json:"version"`
	Pairs    *PairsView    `json:"pairs,omitempty"`
	Memorize *MemorizeView `json:"memorize,omitempty"`
}

type PairsView struct {
	Round      round.State    `json:"round"`
	Left       []deck.Card    `json:"left"`
	Right      []deck.Card    `json:"right"`
	Feedback   round.Feedback `json:"feedback"`
	TotalPairs int            `json:"total_pairs"`
	Rounds     int            `json:"rounds"`
	CanAnswer  bool           `json:"can_answer"`
}

type MemorizeView struct {
	Phase       memorize.Phase  `json:"phase"`
	Generation  uint64          `json:"generation"`
	Targets     []content.Image `json:"targets,omitempty"`
	Options     []content.Image `json:"options,omitempty"`
	Selected    []string        `json:"selected"`
	Result      *scoring.Result `json:"result,omitempty"`
	TotalTime   int             `json:"total_time"`
	ShowCount   int             `json:"show_count"`
	CanSubmit   bool            `json:"can_submit"`
	CanContinue bool            `json:"can_continue"`
}

// core is the state both variants share. Callers hold the owner's mutex.
type core struct {
	id       string
	gameID   string
	variant  Variant
	state    State
	clock    realtime.Clock
	counter  PlayCounter
	notified bool
	endedAt  time.Time
	version  uint64
}

func newCore(id, gameID string, variant Variant, counter PlayCounter) core {
	return core{
		id:      id,
		gameID:  gameID,
		variant: variant,
		counter: counter,
		state:   State{Lifecycle: LifecycleIntro},
	}
}

func (c *core) playing() bool {
	return c.state.Lifecycle == LifecyclePlaying
}

// active means intents may change the board.
func (c *core) active() bool {
	return c.playing() && !c.state.Paused
}

func (c *core) touch() { c.version++ }

func (c *core) notifyOnce() {
	if c.notified {
		return
	}
	c.notified = true
	if c.counter != nil {
		c.counter.Notify(c.gameID)
	}
}

func (c *core) finish(now time.Time) {
	c.state.Lifecycle = LifecycleFinished
	c.state.Paused = false
	c.clock.Stop()
	c.endedAt = now
	c.notifyOnce()
	c.touch()
}

func (c *core) exit(now time.Time) {
	c.notifyOnce()
	c.state.Lifecycle = LifecycleFinished
	c.state.Ended = true
	c.state.Paused = false
	c.clock.Stop()
	if c.endedAt.IsZero() {
		c.endedAt = now
	}
	c.touch()
}

// nextOf picks the earlier of two optional wake times.
func nextOf(a time.Time, aok bool, b time.Time, bok bool) (time.Time, bool) {
	switch {
	case aok && bok:
		if b.Before(a) {
			return b, true
		}
		return a, true
	case aok:
		return a, true
	case bok:
		return b, true
	}
	return time.Time{}, false
}

type stepper interface {
	Pending() (realtime.Ticket, time.Time, bool)
	Fire(t realtime.Ticket) bool
}

// drive applies due round steps and clock ticks in due-time order, stopping
// as soon as the session leaves playing. onStep and onTick receive the time
// the event was due, not now, so catching up after a late wake is exact.
func (c *core) drive(now time.Time, steps stepper, onStep, onTick func(at time.Time)) bool {
	changed := false
	for c.playing() {
		tk, stepAt, stepOK := steps.Pending()
		tickAt, tickOK := c.clock.NextWake()
		stepDue := stepOK && !now.Before(stepAt)
		tickDue := tickOK && !now.Before(tickAt)
		if !stepDue && !tickDue {
			break
		}
		if stepDue && (!tickDue || !tickAt.Before(stepAt)) {
			if !steps.Fire(tk) {
				break
			}
			onStep(stepAt)
		} else {
			c.clock.Take(now)
			onTick(tickAt)
		}
		changed = true
	}
	if changed {
		c.touch()
	}
	return changed
}
