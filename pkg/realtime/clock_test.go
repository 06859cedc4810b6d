package realtime

import (
	"testing"
	"time"
)

func TestClock_TakeOnePerInterval(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var c Clock
	c.Start(start)

	if c.Take(start.Add(999 * time.Millisecond)) {
		t.Fatal("tick should not be due before one interval")
	}
	if !c.Take(start.Add(time.Second)) {
		t.Fatal("tick should be due at one interval")
	}
	if c.Take(start.Add(time.Second)) {
		t.Fatal("the same tick must not be taken twice")
	}
	if got := c.Due(start.Add(3500 * time.Millisecond)); got != 2 {
		t.Errorf("Due = %d, want 2", got)
	}
}

func TestClock_PauseFreezesPartialInterval(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var c Clock
	c.Start(start)

	c.Pause(start.Add(400 * time.Millisecond))
	if _, ok := c.NextWake(); ok {
		t.Error("paused clock should not report a wake time")
	}
	if c.Due(start.Add(10 * time.Second)) != 0 {
		t.Error("paused clock must not tick")
	}

	resumeAt := start.Add(10 * time.Second)
	c.Resume(resumeAt)
	next, ok := c.NextWake()
	if !ok {
		t.Fatal("resumed clock should report a wake time")
	}
	if want := resumeAt.Add(600 * time.Millisecond); !next.Equal(want) {
		t.Errorf("next tick %v, want %v", next, want)
	}
}

func TestClock_StopClearsSchedule(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := Clock{Interval: 250 * time.Millisecond}
	c.Start(start)
	if got := c.Due(start.Add(time.Second)); got != 4 {
		t.Errorf("Due = %d, want 4", got)
	}
	c.Stop()
	if c.Running() {
		t.Error("stopped clock should not be running")
	}
	c.Resume(start.Add(2 * time.Second))
	if c.Running() {
		t.Error("Resume must not restart a stopped clock")
	}
}
