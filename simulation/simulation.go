// Package simulation assembles the scheduler, the stations, and the
// recording and monitoring services of one simulation run.
package simulation

import (
	"github.com/entflow/entflow/datarecording"
	"github.com/entflow/entflow/monitoring"
	"github.com/entflow/entflow/queueing"
	"github.com/entflow/entflow/sim"
)

const stationStatsTable = "station_stats"

// stationStatsEntry is one recorded statistics snapshot of a station.
type stationStatsEntry struct {
	Station            string
	Tick               int64
	Length             int
	Average            float64
	StdDev             float64
	Minimum            int
	Maximum            int
	TotalAdded         int64
	TotalProcessed     int64
	AverageWaitSeconds float64
}

// A Simulation provides the services required to define and run a
// simulation.
type Simulation struct {
	id string

	clock     *sim.Clock
	scheduler *sim.Scheduler

	recorder *datarecording.SQLiteWriter
	monitor  *monitoring.Monitor

	containers     []*queueing.Container
	containerIndex map[string]int
	queues         []*queueing.Queue
	queueIndex     map[string]int
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// Scheduler returns the scheduler that drives the simulation.
func (s *Simulation) Scheduler() *sim.Scheduler {
	return s.scheduler
}

// Clock returns the simulation clock.
func (s *Simulation) Clock() *sim.Clock {
	return s.clock
}

// DataRecorder returns the data recorder, nil when recording is disabled.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	if s.recorder == nil {
		return nil
	}

	return s.recorder
}

// Monitor returns the monitor, nil when monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterContainer registers a container with the simulation. Names must
// be unique across the run.
func (s *Simulation) RegisterContainer(c *queueing.Container) {
	name := c.Name()
	if _, ok := s.containerIndex[name]; ok {
		panic("container " + name + " already registered")
	}

	s.containers = append(s.containers, c)
	s.containerIndex[name] = len(s.containers) - 1

	if s.monitor != nil {
		s.monitor.RegisterStation(c)
	}
}

// RegisterQueue registers a queue with the simulation. Names must be
// unique across the run.
func (s *Simulation) RegisterQueue(q *queueing.Queue) {
	name := q.Name()
	if _, ok := s.queueIndex[name]; ok {
		panic("queue " + name + " already registered")
	}

	s.queues = append(s.queues, q)
	s.queueIndex[name] = len(s.queues) - 1

	if s.monitor != nil {
		s.monitor.RegisterStation(q)
	}
}

// ContainerByName returns the container with the given name, nil if no
// such container is registered.
func (s *Simulation) ContainerByName(name string) *queueing.Container {
	i, ok := s.containerIndex[name]
	if !ok {
		return nil
	}

	return s.containers[i]
}

// QueueByName returns the queue with the given name, nil if no such
// queue is registered.
func (s *Simulation) QueueByName(name string) *queueing.Queue {
	i, ok := s.queueIndex[name]
	if !ok {
		return nil
	}

	return s.queues[i]
}

// Run fires events until the future-event list is empty, then records the
// final statistics of every station.
func (s *Simulation) Run() error {
	err := s.scheduler.RunUntilIdle()
	if err != nil {
		return err
	}

	s.RecordStats()

	return nil
}

// RunUntil fires events up to the given tick, then records the statistics
// of every station.
func (s *Simulation) RunUntil(horizon sim.Ticks) error {
	err := s.scheduler.RunUntil(horizon)
	if err != nil {
		return err
	}

	s.RecordStats()

	return nil
}

// RecordStats writes a statistics snapshot of every registered station
// into the data recorder. It is a no-op when recording is disabled.
func (s *Simulation) RecordStats() {
	if s.recorder == nil {
		return
	}

	now := s.scheduler.CurrentTick()

	for _, c := range s.containers {
		length := c.Count("")
		stats := c.Stats()

		s.recorder.InsertData(stationStatsTable, stationStatsEntry{
			Station:        c.Name(),
			Tick:           int64(now),
			Length:         length,
			Average:        stats.Average(now, length),
			StdDev:         stats.StdDev(now, length),
			Minimum:        stats.Minimum(),
			Maximum:        stats.Maximum(),
			TotalAdded:     c.TotalAdded(),
			TotalProcessed: c.TotalProcessed(),
			AverageWaitSeconds: stats.AverageWaitSeconds(
				now, length, c.TotalAdded()),
		})
	}

	for _, q := range s.queues {
		length := q.Count()
		stats := q.Stats()

		s.recorder.InsertData(stationStatsTable, stationStatsEntry{
			Station:            q.Name(),
			Tick:               int64(now),
			Length:             length,
			Average:            stats.Average(now, length),
			StdDev:             stats.StdDev(now, length),
			Minimum:            stats.Minimum(),
			Maximum:            stats.Maximum(),
			TotalAdded:         q.NumberAdded(),
			TotalProcessed:     q.NumberProcessed(),
			AverageWaitSeconds: q.AverageQueueTime(),
		})
	}
}

// Terminate flushes and closes the recording services of the simulation.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Flush()
		s.recorder.Close()
	}
}
