package phaselight

import (
	"time"

	"go.uber.org/atomic"
)

// LightState represents the lifecycle of a light
type LightState int32

const (
	// Light is constructed but its loop has not been started
	LightStateIdle LightState = iota
	// Light is cycling through phases
	LightStateRunning
	// Light has been closed; its loop has stopped or is stopping
	LightStateStopped
)

// String returns the lifecycle name
func (s LightState) String() string {
	switch s {
	case LightStateIdle:
		return "idle"
	case LightStateRunning:
		return "running"
	case LightStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// phaseMachine is the two-state machine behind a light. toggle is the only
// transition and is called by the cycle loop alone; reads are lock-free.
type phaseMachine struct {
	lightID    string
	phase      *atomic.Int32
	sequence   *atomic.Uint64
	lastChange *atomic.Time
}

// newPhaseMachine creates a machine in the Red phase
func newPhaseMachine(lightID string) *phaseMachine {
	return &phaseMachine{
		lightID:    lightID,
		phase:      atomic.NewInt32(int32(Red)),
		sequence:   atomic.NewUint64(0),
		lastChange: atomic.NewTime(time.Time{}),
	}
}

// current returns the last committed phase
func (m *phaseMachine) current() Phase {
	return Phase(m.phase.Load())
}

// transitions returns the number of committed toggles
func (m *phaseMachine) transitions() uint64 {
	return m.sequence.Load()
}

// changedAt returns the time of the last toggle
func (m *phaseMachine) changedAt() time.Time {
	return m.lastChange.Load()
}

// toggle flips the phase and returns the committed change
func (m *phaseMachine) toggle(now time.Time, planned, elapsed time.Duration) PhaseChange {
	from := m.current()
	to := from.Toggle()
	m.phase.Store(int32(to))
	m.lastChange.Store(now)
	seq := m.sequence.Inc()
	return newPhaseChange(m.lightID, seq, from, to, now, planned, elapsed)
}
