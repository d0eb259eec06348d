// Package movement implements the player's tile-to-tile walking state.
//
// A State samples the direction keys while idle, then slides the view one
// tile in that direction at a fixed speed, snaps to the grid, waits out a
// cooldown and finally replaces itself with a fresh State on the same
// frame. Input changes while a step is underway are ignored.
package movement

import (
	"math"

	"chosenoffset.com/gridia/internal/core/fsm"
	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/render"
)

// RunMultiplier scales the speed while a run key is held.
const RunMultiplier = 2

// View is the continuous position the state animates.
type View interface {
	Position() geom.Vec2
	SetPosition(p geom.Vec2)
}

// Input is the subset of render.InputManager the state reads.
type Input interface {
	IsKeyPressed(key render.Key) bool
}

// Bindings lists the keys that map to each direction. Any bound key counts.
type Bindings struct {
	Left  []render.Key
	Right []render.Key
	Up    []render.Key
	Down  []render.Key
	Run   []render.Key
}

// DefaultBindings maps WASD and the arrow keys, with shift to run.
func DefaultBindings() Bindings {
	return Bindings{
		Left:  []render.Key{render.KeyA, render.KeyLeft},
		Right: []render.Key{render.KeyD, render.KeyRight},
		Up:    []render.Key{render.KeyW, render.KeyUp},
		Down:  []render.Key{render.KeyS, render.KeyDown},
		Run:   []render.Key{render.KeyShiftLeft, render.KeyShiftRight},
	}
}

// Config is the immutable configuration shared by every State in a chain.
type Config struct {
	Speed    float64 // tiles per second
	Cooldown float64 // seconds between steps
	Bindings Bindings

	// OnSettle, when set, is called with the tile the view snapped to at
	// the end of a step. Z is always zero; the caller owns the floor.
	OnSettle func(tile geom.Coord)
}

// State is one movement cycle.
type State struct {
	view  View
	input Input
	cfg   Config

	delta             geom.Vec2
	deltaRemaining    geom.Vec2
	cooldownRemaining float64
	settled           bool
}

// New creates an idle movement state.
func New(view View, input Input, cfg Config) *State {
	return &State{
		view:              view,
		input:             input,
		cfg:               cfg,
		cooldownRemaining: cfg.Cooldown,
	}
}

// Step advances the state by dt seconds.
func (s *State) Step(m *fsm.Machine, dt float64) {
	if s.delta.IsZero() {
		s.delta = ProcessInput(s.input, s.cfg.Bindings)
		if s.delta.IsZero() {
			return
		}
		s.deltaRemaining = s.delta
	}

	if !s.deltaRemaining.IsZero() {
		s.advance(dt)
		if !s.deltaRemaining.IsZero() {
			return
		}
	}

	s.settle()
	s.cooldown(m, dt)
}

func (s *State) advance(dt float64) {
	speed := s.cfg.Speed
	if s.running() {
		speed *= RunMultiplier
	}
	step := s.delta.Scale(speed * dt)

	if math.Abs(s.deltaRemaining.X) > math.Abs(step.X) {
		s.deltaRemaining.X -= step.X
	} else {
		s.deltaRemaining.X = 0
	}
	if math.Abs(s.deltaRemaining.Y) > math.Abs(step.Y) {
		s.deltaRemaining.Y -= step.Y
	} else {
		s.deltaRemaining.Y = 0
	}

	s.view.SetPosition(s.view.Position().Add(step))
}

// settle snaps the view to the grid, reporting the tile once per cycle.
func (s *State) settle() {
	snapped := s.view.Position().Round()
	s.view.SetPosition(snapped)
	if !s.settled {
		s.settled = true
		if s.cfg.OnSettle != nil {
			s.cfg.OnSettle(geom.ToCoord(snapped, 0))
		}
	}
}

func (s *State) cooldown(m *fsm.Machine, dt float64) {
	s.cooldownRemaining -= dt
	if s.cooldownRemaining <= 0 {
		s.rearm(m, dt)
	}
}

// rearm installs a fresh State and steps it on the same frame, so input
// held across the boundary starts the next tile with no gap.
func (s *State) rearm(m *fsm.Machine, dt float64) {
	m.SetState(New(s.view, s.input, s.cfg))
	m.Step(dt)
}

func (s *State) running() bool {
	return anyPressed(s.input, s.cfg.Bindings.Run)
}

// ProcessInput turns the direction keys into a unit step. Opposite keys
// cancel; orthogonal keys combine into a diagonal. Y grows downward.
func ProcessInput(input Input, b Bindings) geom.Vec2 {
	var dx, dy float64
	if anyPressed(input, b.Left) {
		dx--
	}
	if anyPressed(input, b.Right) {
		dx++
	}
	if anyPressed(input, b.Up) {
		dy--
	}
	if anyPressed(input, b.Down) {
		dy++
	}
	return geom.Vec2{X: dx, Y: dy}
}

func anyPressed(input Input, keys []render.Key) bool {
	for _, k := range keys {
		if input.IsKeyPressed(k) {
			return true
		}
	}
	return false
}
