package realtime

import "time"

// Clock is a repeating tick schedule driven by explicit timestamps.
// It owns no goroutine: the owner asks Take(now) and applies one tick per true.
// Pausing freezes the partial interval, so resuming does not lose or gain time.
type Clock struct {
	Interval time.Duration
	NextTick time.Time
	PausedAt time.Time
}

// DefaultTickInterval is the one-second cadence both games use.
const DefaultTickInterval = time.Second

// Start schedules the first tick one interval after now.
func (c *Clock) Start(now time.Time) {
	if c.Interval <= 0 {
		c.Interval = DefaultTickInterval
	}
	c.NextTick = now.Add(c.Interval)
	c.PausedAt = time.Time{}
}

// Stop clears the schedule.
func (c *Clock) Stop() {
	c.NextTick = time.Time{}
	c.PausedAt = time.Time{}
}

// Running reports whether ticks are being produced.
func (c *Clock) Running() bool {
	return !c.NextTick.IsZero() && c.PausedAt.IsZero()
}

// Pause freezes the schedule at now.
func (c *Clock) Pause(now time.Time) {
	if !c.Running() {
		return
	}
	c.PausedAt = now
}

// Resume shifts the pending tick by the time spent paused.
func (c *Clock) Resume(now time.Time) {
	if c.PausedAt.IsZero() || c.NextTick.IsZero() {
		return
	}
	if now.After(c.PausedAt) {
		c.NextTick = c.NextTick.Add(now.Sub(c.PausedAt))
	}
	c.PausedAt = time.Time{}
}

// Take consumes one due tick and reports whether there was one.
func (c *Clock) Take(now time.Time) bool {
	if !c.Running() || now.Before(c.NextTick) {
		return false
	}
	c.NextTick = c.NextTick.Add(c.Interval)
	return true
}

// Due consumes every tick due at now and returns how many there were.
func (c *Clock) Due(now time.Time) int {
	n := 0
	for c.Take(now) {
		n++
	}
	return n
}

// NextWake returns the next tick time, and false when paused or stopped.
func (c *Clock) NextWake() (time.Time, bool) {
	if !c.Running() {
		return time.Time{}, false
	}
	return c.NextTick, true
}
