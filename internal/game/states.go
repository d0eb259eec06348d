package game

import (
	"image/color"

	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/core/fsm"
	"chosenoffset.com/gridia/internal/render"
	"chosenoffset.com/gridia/internal/ui/panel"
)

// overlay is implemented by states that draw on top of the world.
type overlay interface {
	Draw(r render.Renderer, screen render.Image)
}

// modal is implemented by states that own the input and a window.
type modal interface {
	close()
}

// pickLocationState waits for the player to click a destination tile for
// an action. Escape or a right click cancels.
type pickLocationState struct {
	g      *Game
	ctrl   *action.Controller
	window *panel.Panel

	// The click that opened the mode must not also confirm it.
	armed bool
}

func newPickLocationState(g *Game, c *action.Controller) *pickLocationState {
	w := g.openWindow(c.Definition().Name, 220, 96)
	w.SetText("Click a tile to target it.", g.charWidth())
	w.SetFooter("Esc / right click: cancel")
	return &pickLocationState{g: g, ctrl: c, window: w}
}

// Step implements fsm.State.
func (s *pickLocationState) Step(m *fsm.Machine, dt float64) {
	if !s.armed {
		s.armed = true
		return
	}
	in := s.g.input
	if in == nil {
		return
	}

	if in.IsKeyJustPressed(render.KeyEscape) || in.IsMouseButtonJustPressed(render.MouseButtonRight) {
		s.g.log.WithField("action", s.ctrl.ID()).Debug("Location pick cancelled")
		s.finish()
		return
	}

	if !in.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		return
	}
	x, y := in.GetCursorPosition()
	if s.window.Contains(x, y) {
		return
	}
	s.ctrl.TriggerActionAt(s.g.ScreenToTile(x, y))
	s.finish()
}

func (s *pickLocationState) finish() {
	s.close()
	s.g.resumeMovement()
}

func (s *pickLocationState) close() {
	s.g.closeWindow(s.window.ID)
}

// Draw outlines the tile under the cursor.
func (s *pickLocationState) Draw(r render.Renderer, screen render.Image) {
	if s.g.input == nil {
		return
	}
	tile := s.g.ScreenToTile(s.g.input.GetCursorPosition())
	x, y := s.g.TileToScreen(tile)
	ts := float32(s.g.TileSize)
	r.StrokeRect(screen, float32(x), float32(y), ts, ts, 2, color.RGBA{255, 120, 60, 255})
}

// localPanelState shows the panel of an action that runs on the client,
// such as resting. The player stays put until Escape closes it.
type localPanelState struct {
	g      *Game
	ctrl   *action.Controller
	window *panel.Panel
}

func newLocalPanelState(g *Game, c *action.Controller) *localPanelState {
	def := c.Definition()
	w := g.openWindow(def.Name, 220, 120)
	w.SetText(def.Description, g.charWidth())
	w.SetFooter("Esc: close")
	return &localPanelState{g: g, ctrl: c, window: w}
}

// Step implements fsm.State.
func (s *localPanelState) Step(m *fsm.Machine, dt float64) {
	in := s.g.input
	if in == nil {
		return
	}
	if in.IsKeyJustPressed(render.KeyEscape) || in.IsMouseButtonJustPressed(render.MouseButtonRight) {
		s.close()
		s.g.resumeMovement()
	}
}

func (s *localPanelState) close() {
	s.g.closeWindow(s.window.ID)
}

// charWidth is the width of one character in the UI font.
func (g *Game) charWidth() int {
	if g.renderer == nil {
		return 6
	}
	w, _ := g.renderer.MeasureText("m")
	return w
}
