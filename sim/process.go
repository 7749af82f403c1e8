package sim

import "log"

// ProcessState is the lifecycle state of a Process.
type ProcessState int

// The states a Process can be in.
const (
	// ProcessRunnable means the process is executing or scheduled to
	// execute at the current instant.
	ProcessRunnable ProcessState = iota

	// ProcessWaitingTicks means the process suspended until a future tick.
	ProcessWaitingTicks

	// ProcessWaitingCondition means the process suspended until some
	// component calls Wake.
	ProcessWaitingCondition

	// ProcessTerminated means the process body returned without
	// requesting another suspension.
	ProcessTerminated
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunnable:
		return "Runnable"
	case ProcessWaitingTicks:
		return "WaitingTicks"
	case ProcessWaitingCondition:
		return "WaitingCondition"
	case ProcessTerminated:
		return "Terminated"
	}

	return "Unknown"
}

// A ProcessFunc is one step of a process body. It is invoked every time the
// process resumes. State that must survive a suspension lives in the
// closure or in the struct the closure captures.
type ProcessFunc func(p *Process) error

// A Process is a suspendable unit of simulated control flow. A process is
// a state machine driven by scheduler resumption events rather than a
// dedicated goroutine, so any number of processes can exist at once.
//
// Exactly one process executes at a time. While its body runs, it has
// exclusive access to model state until it next suspends.
type Process struct {
	id       string
	name     string
	sched    *Scheduler
	priority int

	state     ProcessState
	body      ProcessFunc
	resume    *EventHandle
	suspended bool
}

// SpawnProcess creates a process and schedules its first resumption at the
// current instant.
func (s *Scheduler) SpawnProcess(
	name string,
	priority int,
	body ProcessFunc,
) *Process {
	p := &Process{
		id:       GetIDGenerator().Generate(),
		name:     name,
		sched:    s,
		priority: priority,
		state:    ProcessRunnable,
		body:     body,
	}

	p.resume = s.ScheduleAfter(0, priority, p, nil)

	return p
}

// Name returns the name of the process.
func (p *Process) Name() string {
	return p.name
}

// State returns the lifecycle state of the process.
func (p *Process) State() ProcessState {
	return p.state
}

// Handle resumes the process body. Termination is implicit: if the body
// returns without requesting a suspension, the process is terminated.
func (p *Process) Handle(_ Event) error {
	p.state = ProcessRunnable
	p.resume = nil
	p.suspended = false

	err := p.body(p)
	if err != nil {
		p.state = ProcessTerminated
		return err
	}

	if !p.suspended {
		p.state = ProcessTerminated
	}

	return nil
}

// WaitTicks suspends the process and resumes the same body after the given
// number of ticks.
func (p *Process) WaitTicks(n Ticks) {
	p.WaitTicksThen(n, p.body)
}

// WaitTicksThen suspends the process and resumes with the given body after
// the given number of ticks.
func (p *Process) WaitTicksThen(n Ticks, next ProcessFunc) {
	p.mustBeRunning("WaitTicks")

	p.body = next
	p.suspended = true
	p.state = ProcessWaitingTicks
	p.resume = p.sched.ScheduleAfter(n, p.priority, p, nil)
}

// WaitUntil suspends the process until some component calls Wake on it.
// The scheduler never polls the condition; whichever component changes
// the relevant state is responsible for waking the process.
func (p *Process) WaitUntil() {
	p.WaitUntilThen(p.body)
}

// WaitUntilThen suspends the process until woken, then resumes with the
// given body.
func (p *Process) WaitUntilThen(next ProcessFunc) {
	p.mustBeRunning("WaitUntil")

	p.body = next
	p.suspended = true
	p.state = ProcessWaitingCondition
}

// Wake schedules an immediate, priority-ordered resumption of a process
// suspended on a condition. Waking a runnable, time-waiting, or terminated
// process is a no-op.
func (s *Scheduler) Wake(p *Process) {
	if p == nil || p.state != ProcessWaitingCondition {
		return
	}

	p.state = ProcessWaitingTicks
	p.resume = s.ScheduleAfter(0, p.priority, p, nil)
}

func (p *Process) mustBeRunning(op string) {
	if p.state != ProcessRunnable || p.suspended {
		log.Panicf("%s called on process %s while %s",
			op, p.name, p.state)
	}
}
