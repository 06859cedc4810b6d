// Package memorize holds the Watch-and-Memorize round: a timed look at a few
// target images, then a pick among targets mixed with distractors.
package memorize

import (
	"time"

	"matchplay/internal/content"
	"matchplay/internal/deck"
	"matchplay/internal/scoring"
	"matchplay/pkg/realtime"
)

type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseShow   Phase = "show"
	PhaseSelect Phase = "select"
	PhaseResult Phase = "result"
)

const (
	DefaultShowCount   = 4
	DefaultOptionCount = 8
	DefaultShowFor     = 3 * time.Second
)

// Prepare picks showCount distinct targets and returns them with the option
// grid: the targets plus distractors up to optionCount, in random order.
func Prepare(images []content.Image, showCount, optionCount int, rng deck.Rand) (targets, options []content.Image) {
	if showCount > len(images) {
		showCount = len(images)
	}
	if optionCount < showCount {
		optionCount = showCount
	}
	if optionCount > len(images) {
		optionCount = len(images)
	}
	pool := deck.Permute(rng, images)
	targets = append([]content.Image(nil), pool[:showCount]...)
	options = deck.Permute(rng, pool[:optionCount])
	return targets, options
}

// Round is one show/select/result cycle.
type Round struct {
	phase    Phase
	targets  []content.Image
	options  []content.Image
	selected []string
	result   *scoring.Result
	gen      uint64
	seq      realtime.Sequence
}

// Begin shows targets for showFor, then opens selection over options.
func (r *Round) Begin(now time.Time, targets, options []content.Image, showFor time.Duration) {
	r.gen++
	r.targets = targets
	r.options = options
	r.selected = nil
	r.result = nil
	r.phase = PhaseShow
	r.seq.Begin(now,
		realtime.Step{Name: string(PhaseShow), Hold: showFor},
		realtime.Step{Name: string(PhaseSelect), Enter: func() bool {
			r.phase = PhaseSelect
			return true
		}},
	)
}

// Toggle flips id in the selection. Only option ids count, only during select.
func (r *Round) Toggle(id string) bool {
	if r.phase != PhaseSelect || !containsImage(r.options, id) {
		return false
	}
	for i, s := range r.selected {
		if s == id {
			r.selected = append(r.selected[:i], r.selected[i+1:]...)
			return true
		}
	}
	r.selected = append(r.selected, id)
	return true
}

// Submit scores a non-empty selection and moves to result.
func (r *Round) Submit(timeRemaining int) (scoring.Result, bool) {
	if r.phase != PhaseSelect || len(r.selected) == 0 {
		return scoring.Result{}, false
	}
	res := scoring.Score(r.selected, imageIDs(r.targets), timeRemaining)
	r.result = &res
	r.phase = PhaseResult
	r.seq.Cancel()
	return res, true
}

// Expire ends the round where it stands. Nothing is scored.
func (r *Round) Expire() {
	r.seq.Cancel()
	if r.phase != PhaseIdle {
		r.phase = PhaseResult
	}
}

// Reset returns the round to idle.
func (r *Round) Reset() {
	r.gen++
	r.seq.Cancel()
	*r = Round{gen: r.gen, seq: r.seq}
	r.phase = PhaseIdle
}

func (r *Round) Advance(now time.Time) int { return r.seq.Advance(now) }

func (r *Round) Pending() (realtime.Ticket, time.Time, bool) { return r.seq.Pending() }

func (r *Round) Fire(t realtime.Ticket) bool { return r.seq.Fire(t) }

func (r *Round) NextWake() (time.Time, bool) {
	_, at, ok := r.seq.Pending()
	return at, ok
}

func (r *Round) Pause(now time.Time)  { r.seq.Pause(now) }
func (r *Round) Resume(now time.Time) { r.seq.Resume(now) }

func (r *Round) Phase() Phase {
	if r.phase == "" {
		return PhaseIdle
	}
	return r.phase
}

func (r *Round) Generation() uint64 { return r.gen }

func (r *Round) Targets() []content.Image { return append([]content.Image(nil), r.targets...) }

func (r *Round) Options() []content.Image { return append([]content.Image(nil), r.options...) }

func (r *Round) Selected() []string { return append([]string(nil), r.selected...) }

// Result is the last scored selection, or nil.
func (r *Round) Result() *scoring.Result {
	if r.result == nil {
		return nil
	}
	res := *r.result
	return &res
}

func imageIDs(images []content.Image) []string {
	out := make([]string, len(images))
	for i, img := range images {
		out[i] = img.ID
	}
	return out
}

func containsImage(images []content.Image, id string) bool {
	for _, img := range images {
		if img.ID == id {
			return true
		}
	}
	return false
}
