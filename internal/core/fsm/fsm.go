// Package fsm provides the per-frame state machine that drives the local
// simulation. Exactly one state is active at a time, or none.
package fsm

import (
	"github.com/sirupsen/logrus"

	"chosenoffset.com/gridia/internal/logger"
)

// MaxReentry bounds how many times a state may replace itself and re-step
// the machine within a single frame.
const MaxReentry = 16

// State is stepped once per frame. A state may replace itself by calling
// SetState on the machine and then Step again for the same dt.
type State interface {
	Step(m *Machine, dt float64)
}

// Machine holds the active state.
type Machine struct {
	current State
	depth   int
	log     logrus.FieldLogger
}

// New creates an idle machine.
func New(log logrus.FieldLogger) *Machine {
	return &Machine{log: logger.OrDiscard(log)}
}

// SetState installs s, discarding the previous state. A nil s leaves the
// machine idle.
func (m *Machine) SetState(s State) {
	m.current = s
}

// Current returns the active state, or nil when idle.
func (m *Machine) Current() State {
	return m.current
}

// Step forwards dt to the active state.
func (m *Machine) Step(dt float64) {
	if m.current == nil {
		return
	}
	if m.depth >= MaxReentry {
		m.log.WithField("depth", m.depth).Warn("state machine re-entry limit reached, deferring to next frame")
		return
	}
	m.depth++
	defer func() { m.depth-- }()
	m.current.Step(m, dt)
}
