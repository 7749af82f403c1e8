package queueing

import (
	"math"

	"github.com/entflow/entflow/sim"
)

// LengthStats accumulates time-weighted queue-length statistics. Every
// mutation of the underlying storage reports the old and new length;
// the accumulators advance incrementally so that averages, deviations,
// and the full length distribution are available at any tick without
// replaying history.
//
// Durations are accumulated in ticks. The clock's tick scale converts to
// seconds at query time, for reporting only.
type LengthStats struct {
	clock *sim.Clock

	startOfCollection sim.Ticks
	timeOfLastUpdate  sim.Ticks
	minElements       int
	maxElements       int
	elementTicks      float64
	squaredElemTicks  float64
	lengthDist        []float64
}

// NewLengthStats creates a LengthStats collecting from the clock's current
// tick with an observed length of zero.
func NewLengthStats(clock *sim.Clock) *LengthStats {
	s := &LengthStats{clock: clock}
	s.Clear(clock.CurrentTick(), 0)
	return s
}

// Update advances the accumulators for a mutation that changed the length
// from oldLen to newLen at the given tick.
func (s *LengthStats) Update(oldLen, newLen int, now sim.Ticks) {
	if newLen < s.minElements {
		s.minElements = newLen
	}
	if newLen > s.maxElements {
		s.maxElements = newLen
	}

	limit := newLen
	if oldLen > limit {
		limit = oldLen
	}
	for len(s.lengthDist) < limit+1 {
		s.lengthDist = append(s.lengthDist, 0)
	}

	dt := float64(now - s.timeOfLastUpdate)
	if dt > 0 {
		s.elementTicks += dt * float64(oldLen)
		s.squaredElemTicks += dt * float64(oldLen) * float64(oldLen)
		s.lengthDist[oldLen] += dt
		s.timeOfLastUpdate = now
	}
}

// Clear resets all accumulators to a fresh epoch anchored at the given
// tick. currentLen seeds the minimum and maximum.
func (s *LengthStats) Clear(now sim.Ticks, currentLen int) {
	s.startOfCollection = now
	s.timeOfLastUpdate = now
	s.minElements = currentLen
	s.maxElements = currentLen
	s.elementTicks = 0
	s.squaredElemTicks = 0
	s.lengthDist = nil
}

// Average returns the time-weighted average length as of the given tick.
func (s *LengthStats) Average(now sim.Ticks, currentLen int) float64 {
	totalTime := float64(now - s.startOfCollection)
	if totalTime <= 0 {
		return 0
	}

	dt := float64(now - s.timeOfLastUpdate)
	return (s.elementTicks + dt*float64(currentLen)) / totalTime
}

// StdDev returns the time-weighted standard deviation of the length as of
// the given tick.
func (s *LengthStats) StdDev(now sim.Ticks, currentLen int) float64 {
	totalTime := float64(now - s.startOfCollection)
	if totalTime <= 0 {
		return 0
	}

	dt := float64(now - s.timeOfLastUpdate)
	mean := s.Average(now, currentLen)
	sq := s.squaredElemTicks + dt*float64(currentLen)*float64(currentLen)

	return math.Sqrt(sq/totalTime - mean*mean)
}

// Minimum returns the minimum observed length.
func (s *LengthStats) Minimum() int {
	return s.minElements
}

// Maximum returns the maximum observed length. An entity that is added and
// removed within the same instant does not count as a nonzero length, so
// a maximum of 1 with no accumulated time at length 1 reports 0.
func (s *LengthStats) Maximum() int {
	if s.maxElements == 1 &&
		(len(s.lengthDist) < 2 || s.lengthDist[1] == 0) {
		return 0
	}

	return s.maxElements
}

// Distribution returns the fraction of time spent at each length
// 0, 1, 2, ... as of the given tick. The result is empty before any time
// has been observed.
func (s *LengthStats) Distribution(now sim.Ticks, currentLen int) []float64 {
	totalTime := float64(now - s.startOfCollection)
	if totalTime <= 0 {
		return nil
	}

	ret := make([]float64, len(s.lengthDist))
	copy(ret, s.lengthDist)
	for len(ret) < currentLen+1 {
		ret = append(ret, 0)
	}

	dt := float64(now - s.timeOfLastUpdate)
	ret[currentLen] += dt

	for i := range ret {
		ret[i] /= totalTime
	}

	return ret
}

// AverageWaitSeconds returns the average time, in seconds, entities have
// spent at the station, computed as total element time divided by the
// total number of entities added.
func (s *LengthStats) AverageWaitSeconds(
	now sim.Ticks,
	currentLen int,
	totalAdded int64,
) float64 {
	if totalAdded == 0 {
		return 0
	}

	dt := float64(now - s.timeOfLastUpdate)
	waitTicks := (s.elementTicks + dt*float64(currentLen)) /
		float64(totalAdded)

	return waitTicks * s.clock.SecondsPerTick()
}

// ObservedTicks returns the length of the current statistics epoch.
func (s *LengthStats) ObservedTicks(now sim.Ticks) sim.Ticks {
	return now - s.startOfCollection
}
