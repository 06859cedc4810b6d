package realtime

import (
	"testing"
	"time"
)

func TestSequence_EntersStepsOnSchedule(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var entered []string
	mark := func(name string) func() bool {
		return func() bool {
			entered = append(entered, name)
			return false
		}
	}
	var s Sequence
	s.Begin(start,
		Step{Name: "a", Hold: 100 * time.Millisecond, Enter: mark("a")},
		Step{Name: "b", Hold: 200 * time.Millisecond, Enter: mark("b")},
		Step{Name: "c", Enter: mark("c")},
	)
	if s.Current() != "a" || len(entered) != 1 {
		t.Fatalf("first step should be entered immediately, got %v", entered)
	}

	if n := s.Advance(start.Add(99 * time.Millisecond)); n != 0 {
		t.Errorf("Advance fired %d steps early", n)
	}
	if n := s.Advance(start.Add(300 * time.Millisecond)); n != 2 {
		t.Errorf("Advance fired %d steps, want 2", n)
	}
	if s.Current() != "c" {
		t.Errorf("current = %q, want c", s.Current())
	}
	if s.Active() {
		t.Error("sequence should be finished")
	}
	if got := len(entered); got != 3 {
		t.Errorf("entered %d steps, want 3", got)
	}
}

func TestSequence_DueTimesChainFromPreviousDue(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Sequence
	s.Begin(start,
		Step{Name: "a", Hold: 100 * time.Millisecond},
		Step{Name: "b", Hold: 100 * time.Millisecond},
		Step{Name: "c"},
	)
	s.Advance(start.Add(150 * time.Millisecond))
	_, at, ok := s.Pending()
	if !ok {
		t.Fatal("c should be pending")
	}
	if want := start.Add(200 * time.Millisecond); !at.Equal(want) {
		t.Errorf("c due %v, want %v", at, want)
	}
}

func TestSequence_StaleTicketIgnored(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Sequence
	s.Begin(start, Step{Name: "a", Hold: time.Second}, Step{Name: "b"})
	old, _, _ := s.Pending()

	s.Begin(start, Step{Name: "x", Hold: time.Second}, Step{Name: "y"})
	if s.Fire(old) {
		t.Fatal("ticket from a replaced chain must not fire")
	}
	if s.Current() != "x" {
		t.Errorf("current = %q, want x", s.Current())
	}

	fresh, _, _ := s.Pending()
	if !s.Fire(fresh) {
		t.Fatal("fresh ticket should fire")
	}
	if s.Fire(fresh) {
		t.Error("a ticket fires at most once")
	}
}

func TestSequence_HaltStopsChain(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Sequence
	s.Begin(start,
		Step{Name: "a", Hold: 10 * time.Millisecond},
		Step{Name: "b", Hold: 10 * time.Millisecond, Enter: func() bool { return true }},
		Step{Name: "c"},
	)
	s.Advance(start.Add(time.Second))
	if s.Current() != "b" {
		t.Errorf("current = %q, want b", s.Current())
	}
	if s.Active() {
		t.Error("halted chain should not be active")
	}
}

func TestSequence_PauseKeepsRemainingTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Sequence
	s.Begin(start, Step{Name: "a", Hold: time.Second}, Step{Name: "b"})
	before, _, _ := s.Pending()

	s.Pause(start.Add(300 * time.Millisecond))
	if _, _, ok := s.Pending(); ok {
		t.Error("paused chain should have nothing pending")
	}
	if s.Advance(start.Add(time.Hour)) != 0 {
		t.Error("paused chain must not advance")
	}

	resumeAt := start.Add(5 * time.Second)
	s.Resume(resumeAt)
	if s.Fire(before) {
		t.Error("ticket taken before pause must be stale")
	}
	_, at, ok := s.Pending()
	if !ok {
		t.Fatal("b should be pending after resume")
	}
	if want := resumeAt.Add(700 * time.Millisecond); !at.Equal(want) {
		t.Errorf("b due %v, want %v", at, want)
	}
}

func TestSequence_CancelDropsChain(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var s Sequence
	s.Begin(start, Step{Name: "a", Hold: time.Second}, Step{Name: "b"})
	tk, _, _ := s.Pending()
	s.Cancel()
	if s.Fire(tk) {
		t.Error("cancelled ticket must not fire")
	}
	if s.Active() {
		t.Error("cancelled chain should not be active")
	}
}
