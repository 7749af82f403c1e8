// Package monitoring turns a running simulation into an HTTP server so
// that it can be paused, continued, and inspected from outside.
package monitoring

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/entflow/entflow/sim"
)

// A Station is a queue-like component that can be listed and inspected by
// the monitor.
type Station interface {
	Name() string
}

// Monitor can turn a simulation into a server and allows external
// monitoring and controlling of the simulation.
//
// All control goes through the scheduler's pause mechanism; the monitor
// never touches model state while the scheduler is running.
type Monitor struct {
	scheduler  *sim.Scheduler
	stations   []Station
	portNumber int
	url        string

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterScheduler registers the scheduler that drives the simulation.
func (m *Monitor) RegisterScheduler(s *sim.Scheduler) {
	m.scheduler = s
}

// RegisterStation registers a station to be monitored.
func (m *Monitor) RegisterStation(s Station) {
	m.stations = append(m.stations, s)
}

// CreateProgressBar creates a progress bar shown by the monitor.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    sim.GetIDGenerator().Generate(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the monitor.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server, on the configured port
// or a random one.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseScheduler)
	r.HandleFunc("/api/continue", m.continueScheduler)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/stations", m.listStations)
	r.HandleFunc("/api/station/{name}", m.stationDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor page in the default browser.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		log.Panic("monitor server is not started")
	}

	err := browser.OpenURL(m.url)
	dieOnErr(err)
}

func (m *Monitor) pauseScheduler(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueScheduler(w http.ResponseWriter, _ *http.Request) {
	m.scheduler.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.scheduler.CurrentTick()
	fmt.Fprintf(w, "{\"now\":%d}", now)
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.scheduler.RunUntilIdle()
		if err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listStations(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, s := range m.stations {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "%q", s.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) stationDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	station := m.findStationOr404(w, name)
	if station == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(station)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findStationOr404(
	w http.ResponseWriter,
	name string,
) Station {
	var station Station
	for _, s := range m.stations {
		if s.Name() == name {
			station = s
		}
	}

	if station == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Station not found"))
		dieOnErr(err)
	}

	return station
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
