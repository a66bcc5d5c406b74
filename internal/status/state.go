// Package status models the dashboard's backend-connection lifecycle as
// a small state machine. Transitions are announced on the bus so the
// header and flash bar track connectivity without polling.
package status

import (
	"fmt"
	"sync"

	"github.com/abarbosa/atendo/internal/bus"
)

// State is the dashboard's backend-connection state.
type State string

const (
	Booting      State = "BOOTING"
	AuthRequired State = "AUTH_REQUIRED"
	Connecting   State = "CONNECTING"
	Ready        State = "READY"
	Degraded     State = "DEGRADED"
	Error        State = "ERROR"
)

// transitions lists the legal moves. Ready and Degraded flap as list
// fetches fail and recover; AuthRequired is entered whenever the backend
// rejects the bearer token, including mid-session.
var transitions = map[State]map[State]bool{
	Booting:      {AuthRequired: true, Connecting: true, Error: true},
	AuthRequired: {Connecting: true, Error: true},
	Connecting:   {Ready: true, AuthRequired: true, Degraded: true, Error: true},
	Ready:        {Degraded: true, AuthRequired: true, Error: true},
	Degraded:     {Connecting: true, Ready: true, AuthRequired: true, Error: true},
	Error:        {Booting: true},
}

// StatusChange is the bus payload for every accepted transition.
type StatusChange struct {
	From State
	To   State
}

// Machine enforces the transition table. A nil bus is allowed in tests.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine starts a machine in Booting.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Booting, bus: b}
}

// Current returns the present state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to the given state, rejecting moves the table does not
// allow, and emits a StatusChange on success.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !transitions[m.current][to] {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	change := StatusChange{From: m.current, To: to}
	m.current = to
	if m.bus != nil {
		m.bus.Emit(bus.KindStatusChanged, change)
	}
	return nil
}
