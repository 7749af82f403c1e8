package simulation

import (
	"github.com/rs/xid"

	"github.com/entflow/entflow/datarecording"
	"github.com/entflow/entflow/monitoring"
	"github.com/entflow/entflow/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	secondsPerTick float64
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	traceEventsOn  bool
	outputFileName string
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		secondsPerTick: 1.0,
	}
}

// WithSecondsPerTick sets the tick-to-seconds conversion factor.
func (b Builder) WithSecondsPerTick(s float64) Builder {
	b.secondsPerTick = s
	return b
}

// WithMonitoring sets the simulation to start a monitoring server.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithDataRecording sets the simulation to record statistics into a
// SQLite database.
func (b Builder) WithDataRecording() Builder {
	b.recordingOn = true
	return b
}

// WithEventTracing sets the simulation to record every fired event.
// Requires data recording.
func (b Builder) WithEventTracing() Builder {
	b.traceEventsOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the data
// recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}

	if !b.recordingOn && b.traceEventsOn {
		panic("event tracing requires data recording")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		containerIndex: make(map[string]int),
		queueIndex:     make(map[string]int),
	}

	s.id = xid.New().String()

	s.clock = sim.NewClock(b.secondsPerTick)
	s.scheduler = sim.NewScheduler(s.clock)

	if b.recordingOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "entflow_sim_" + s.id
		}

		s.recorder = datarecording.NewSQLiteWriter(outputPath)
		s.recorder.Init()
		s.recorder.CreateTable(stationStatsTable, stationStatsEntry{})

		if b.traceEventsOn {
			tracer := datarecording.NewEventTracer(s.recorder)
			s.scheduler.AcceptHook(tracer)
		}
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterScheduler(s.scheduler)
		s.monitor.StartServer()
	}

	return s
}
