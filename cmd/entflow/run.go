package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/entflow/entflow/queueing"
	"github.com/entflow/entflow/sim"
	"github.com/entflow/entflow/simulation"
)

var runFlags = struct {
	horizon        int64
	arrivalEvery   int64
	serviceTicks   int64
	secondsPerTick float64
	monitor        bool
	monitorPort    int
	record         bool
	traceEvents    bool
	output         string
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the built-in source-buffer-server demo model.",
	RunE:  runDemoModel,
}

func init() {
	runCmd.Flags().Int64Var(&runFlags.horizon, "horizon", 10000,
		"tick at which the run stops")
	runCmd.Flags().Int64Var(&runFlags.arrivalEvery, "arrival-every", 7,
		"ticks between entity arrivals")
	runCmd.Flags().Int64Var(&runFlags.serviceTicks, "service-ticks", 10,
		"ticks the server spends per entity")
	runCmd.Flags().Float64Var(&runFlags.secondsPerTick, "seconds-per-tick",
		1.0, "tick-to-seconds conversion factor")
	runCmd.Flags().BoolVar(&runFlags.monitor, "monitor", false,
		"start the monitoring server")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server")
	runCmd.Flags().BoolVar(&runFlags.record, "record", false,
		"record statistics into a SQLite database")
	runCmd.Flags().BoolVar(&runFlags.traceEvents, "trace-events", false,
		"record every fired event (requires --record)")
	runCmd.Flags().StringVar(&runFlags.output, "output", "",
		"output file name for the recording")

	rootCmd.AddCommand(runCmd)
}

func buildSimulation() *simulation.Simulation {
	b := simulation.MakeBuilder().
		WithSecondsPerTick(runFlags.secondsPerTick)

	if runFlags.monitor {
		b = b.WithMonitoring()

		port := runFlags.monitorPort
		if port == 0 {
			port, _ = strconv.Atoi(os.Getenv("ENTFLOW_MONITOR_PORT"))
		}
		if port != 0 {
			b = b.WithMonitorPort(port)
		}
	}

	if runFlags.record {
		b = b.WithDataRecording()

		output := runFlags.output
		if output == "" {
			output = os.Getenv("ENTFLOW_OUTPUT")
		}
		if output != "" {
			b = b.WithOutputFileName(output)
		}

		if runFlags.traceEvents {
			b = b.WithEventTracing()
		}
	}

	return b.Build()
}

func runDemoModel(_ *cobra.Command, _ []string) error {
	s := buildSimulation()
	defer s.Terminate()

	sched := s.Scheduler()
	buffer := queueing.NewContainer("Buffer", sched)
	s.RegisterContainer(buffer)

	entityCount := 0
	var source sim.ProcessFunc
	source = func(p *sim.Process) error {
		entityCount++
		buffer.Add(fmt.Sprintf("ent-%d", entityCount), "part", 0, true)
		p.WaitTicks(sim.Ticks(runFlags.arrivalEvery))
		return nil
	}
	sched.SpawnProcess("Source", 0, source)

	var serve sim.ProcessFunc
	serve = func(p *sim.Process) error {
		if buffer.IsEmpty("") {
			buffer.NotifyOnAdd(p)
			p.WaitUntil()
			return nil
		}

		_, err := buffer.Remove("")
		if err != nil {
			return err
		}

		p.WaitTicksThen(sim.Ticks(runFlags.serviceTicks), serve)
		return nil
	}
	sched.SpawnProcess("Server", 1, serve)

	err := s.RunUntil(sim.Ticks(runFlags.horizon))
	if err != nil {
		return err
	}

	printSummary(s, buffer)

	return nil
}

func printSummary(s *simulation.Simulation, c *queueing.Container) {
	now := s.Scheduler().CurrentTick()
	length := c.Count("")
	stats := c.Stats()

	fmt.Printf("Finished at tick %d\n", now)
	fmt.Printf("Buffer: added %d, processed %d, length %d\n",
		c.TotalAdded(), c.TotalProcessed(), length)
	fmt.Printf("Average length:  %.4f\n", stats.Average(now, length))
	fmt.Printf("Length std dev:  %.4f\n", stats.StdDev(now, length))
	fmt.Printf("Length min/max:  %d/%d\n", stats.Minimum(), stats.Maximum())
	fmt.Printf("Average wait:    %.4f s\n",
		stats.AverageWaitSeconds(now, length, c.TotalAdded()))

	for i, f := range stats.Distribution(now, length) {
		fmt.Printf("  length %d: %.4f\n", i, f)
	}
}
