package realtime

import "time"

// Step is one named stage of a Sequence. Enter runs when the stage begins;
// returning true halts the sequence there. Hold is how long the stage lasts
// before the next one is entered.
type Step struct {
	Name  string
	Hold  time.Duration
	Enter func() (halt bool)
}

// Ticket identifies the next pending step. Tickets taken before a Begin,
// Cancel, Pause or Resume no longer fire.
type Ticket struct {
	Gen uint64
	Seq int
}

// Sequence runs an ordered chain of timed steps. Each step's due time is
// the previous step's due time plus its hold, so late delivery never stretches
// the chain.
type Sequence struct {
	gen     uint64
	steps   []Step
	next    int
	current string
	dueAt   time.Time
	remain  time.Duration
	paused  bool
}

// Begin replaces any running chain with steps and enters the first one at now.
func (s *Sequence) Begin(now time.Time, steps ...Step) {
	s.gen++
	s.steps = steps
	s.next = 0
	s.current = ""
	s.paused = false
	s.remain = 0
	s.dueAt = now
	if len(steps) > 0 {
		s.enter()
	}
}

func (s *Sequence) enter() {
	gen := s.gen
	step := s.steps[s.next]
	s.next++
	s.current = step.Name
	s.dueAt = s.dueAt.Add(step.Hold)
	if step.Enter != nil && step.Enter() {
		if s.gen == gen {
			s.steps = s.steps[:s.next]
		}
	}
}

// Pending returns the ticket and due time for the next step.
func (s *Sequence) Pending() (Ticket, time.Time, bool) {
	if s.paused || s.next >= len(s.steps) {
		return Ticket{}, time.Time{}, false
	}
	return Ticket{Gen: s.gen, Seq: s.next}, s.dueAt, true
}

// Fire enters the step named by t. Stale tickets are rejected.
func (s *Sequence) Fire(t Ticket) bool {
	if s.paused || t.Gen != s.gen || t.Seq != s.next || s.next >= len(s.steps) {
		return false
	}
	s.enter()
	return true
}

// Advance fires every step due at or before now and returns how many fired.
func (s *Sequence) Advance(now time.Time) int {
	n := 0
	for {
		t, at, ok := s.Pending()
		if !ok || now.Before(at) {
			return n
		}
		if !s.Fire(t) {
			return n
		}
		n++
	}
}

// Pause freezes the pending step, keeping the time left on it.
func (s *Sequence) Pause(now time.Time) {
	if s.paused {
		return
	}
	s.gen++
	s.paused = true
	s.remain = s.dueAt.Sub(now)
	if s.remain < 0 {
		s.remain = 0
	}
}

// Resume restarts the pending step with the time it had left.
func (s *Sequence) Resume(now time.Time) {
	if !s.paused {
		return
	}
	s.gen++
	s.paused = false
	s.dueAt = now.Add(s.remain)
	s.remain = 0
}

// Cancel drops the chain. The current step name is kept for display.
func (s *Sequence) Cancel() {
	s.gen++
	s.steps = nil
	s.next = 0
	s.paused = false
	s.remain = 0
}

// Current returns the name of the step last entered.
func (s *Sequence) Current() string { return s.current }

// Active reports whether a step is still pending, paused or not.
func (s *Sequence) Active() bool { return s.next < len(s.steps) }

// Paused reports whether the chain is frozen.
func (s *Sequence) Paused() bool { return s.paused }

// Gen returns the current ticket epoch.
func (s *Sequence) Gen() uint64 { return s.gen }
