package state

import "sync"

// State is the lifecycle state of a server instance.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOPPED"
	case Starting:
		return "STARTING"
	case Running:
		return "RUNNING"
	case Stopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// transitions lists, for each source state, the states it may move to.
// Every state change goes through this table.
var transitions = map[State][]State{
	Starting: {Running, Stopped},
	Running:  {Stopping, Stopped},
	Stopping: {Stopped},
	Stopped:  {Starting},
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Machine guards the lifecycle state and lets goroutines block until
// one of a set of states is reached.
type Machine struct {
	mu      sync.Mutex
	changed *sync.Cond
	current State
}

// NewMachine creates a machine in the given initial state.
func NewMachine(initial State) *Machine {
	m := &Machine{current: initial}
	m.changed = sync.NewCond(&m.mu)
	return m
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set moves the machine to next if the transition is legal.
// It returns false and leaves the state untouched otherwise.
func (m *Machine) Set(next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.current, next) {
		return false
	}

	m.current = next
	m.changed.Broadcast()
	return true
}

// WaitFor blocks until the current state is one of wanted and returns it.
func (m *Machine) WaitFor(wanted ...State) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	for !contains(wanted, m.current) {
		m.changed.Wait()
	}
	return m.current
}

func contains(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
