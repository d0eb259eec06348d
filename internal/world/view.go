package world

import "chosenoffset.com/gridia/internal/core/geom"

// View follows the focus creature (the local player) and carries the
// continuous position used for smooth scrolling between tiles.
type View struct {
	focus    *Creature
	position geom.Vec2
}

// NewView creates a view with no focus.
func NewView() *View {
	return &View{}
}

// SetFocus makes c the focus and jumps the view onto its tile.
func (v *View) SetFocus(c *Creature) {
	v.focus = c
	if c != nil {
		v.position = c.Pos.Vec2()
	}
}

// Focus returns the focus creature, or nil.
func (v *View) Focus() *Creature {
	return v.focus
}

// FocusCoord returns the focus creature's tile, or the origin without one.
func (v *View) FocusCoord() geom.Coord {
	if v.focus == nil {
		return geom.Coord{}
	}
	return v.focus.Pos
}

// Position returns the continuous view position in tiles.
func (v *View) Position() geom.Vec2 {
	return v.position
}

// SetPosition moves the view.
func (v *View) SetPosition(p geom.Vec2) {
	v.position = p
}
