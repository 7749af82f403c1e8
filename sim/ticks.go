package sim

import "log"

// Ticks is the time in the simulated space, counted in integer ticks.
type Ticks int64

// TimeTeller can be used to get the current simulation time.
type TimeTeller interface {
	CurrentTick() Ticks
}

// A Clock keeps the current simulation time and the scale that converts
// ticks to real-world seconds. The scale is used for reporting only; all
// kernel decisions are made on tick values.
type Clock struct {
	now            Ticks
	secondsPerTick float64
}

// NewClock creates a Clock starting at tick 0.
func NewClock(secondsPerTick float64) *Clock {
	if secondsPerTick <= 0 {
		log.Panic("seconds-per-tick must be positive")
	}

	return &Clock{secondsPerTick: secondsPerTick}
}

// CurrentTick returns the current simulation time.
func (c *Clock) CurrentTick() Ticks {
	return c.now
}

// SecondsPerTick returns the tick-to-seconds conversion factor.
func (c *Clock) SecondsPerTick() float64 {
	return c.secondsPerTick
}

// SecondsAt converts a tick value to seconds.
func (c *Clock) SecondsAt(t Ticks) float64 {
	return float64(t) * c.secondsPerTick
}

// advanceTo moves the clock forward. The clock is monotonic and only the
// scheduler advances it.
func (c *Clock) advanceTo(t Ticks) {
	if t < c.now {
		log.Panicf("cannot move clock backward, now %d, requested %d",
			c.now, t)
	}

	c.now = t
}
