package game

import (
	"time"

	"chosenoffset.com/gridia/internal/render"
)

// MaxFrameTime caps dt so a stalled frame cannot fling the player across
// several tiles at once.
const MaxFrameTime = 0.25

// defaultFrameTime is used for the very first frame.
const defaultFrameTime = 1.0 / 60.0

// Manager adapts a Game to the engine loop. It measures frame time and
// tracks the window size.
type Manager struct {
	Game *Game

	clock    func() time.Time
	lastTick time.Time
}

var _ render.Game = (*Manager)(nil)

// NewManager creates a new game manager.
func NewManager(g *Game, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{Game: g, clock: clock}
}

// Update updates the game state.
func (m *Manager) Update() error {
	return m.Game.Update(m.frameTime())
}

// frameTime returns the seconds since the previous tick, clamped to
// [0, MaxFrameTime].
func (m *Manager) frameTime() float64 {
	now := m.clock()
	if m.lastTick.IsZero() {
		m.lastTick = now
		return defaultFrameTime
	}
	dt := now.Sub(m.lastTick).Seconds()
	m.lastTick = now

	if dt < 0 {
		return 0
	}
	if dt > MaxFrameTime {
		return MaxFrameTime
	}
	return dt
}

// Draw draws the current state.
func (m *Manager) Draw(screen render.Image) {
	m.Game.Draw(screen)
}

// Layout handles window resize.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != m.Game.ScreenWidth || outsideHeight != m.Game.ScreenHeight {
		m.Game.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
