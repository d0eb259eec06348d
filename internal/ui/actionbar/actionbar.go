// Package actionbar draws the row of action slots at the bottom of the
// screen and turns clicks on them into action triggers.
package actionbar

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/render"
)

// Slot is the on-screen handle of one action controller.
type Slot struct {
	ctrl *action.Controller

	X, Y int
	Size int

	alpha float64
	label string
}

// SetAlpha implements action.View.
func (s *Slot) SetAlpha(alpha float64) { s.alpha = alpha }

// SetLabel implements action.View.
func (s *Slot) SetLabel(text string) { s.label = text }

// Contains reports whether the screen point lies inside the slot.
func (s *Slot) Contains(x, y int) bool {
	return x >= s.X && x < s.X+s.Size && y >= s.Y && y < s.Y+s.Size
}

// Bar lays out slots in a row.
type Bar struct {
	slots    []*Slot
	slotSize int
	gap      int
	hovered  *Slot

	// Visual settings
	bgColor     color.NRGBA
	fillColor   color.NRGBA
	borderColor color.RGBA
	hoverColor  color.RGBA
	padding     int
}

// New creates a bar with one slot per controller and binds each controller
// to its slot.
func New(controllers []*action.Controller, slotSize int) *Bar {
	b := &Bar{
		slotSize:    slotSize,
		gap:         4,
		bgColor:     color.NRGBA{20, 20, 30, 200},
		fillColor:   color.NRGBA{90, 120, 200, 255},
		borderColor: color.RGBA{60, 60, 80, 255},
		hoverColor:  color.RGBA{255, 255, 150, 255},
		padding:     4,
	}
	for _, c := range controllers {
		slot := &Slot{ctrl: c, Size: slotSize, alpha: 1}
		c.Bind(slot)
		b.slots = append(b.slots, slot)
	}
	return b
}

// Width returns the total width of the row.
func (b *Bar) Width() int {
	if len(b.slots) == 0 {
		return 0
	}
	return len(b.slots)*b.slotSize + (len(b.slots)-1)*b.gap
}

// Layout centres the row along the bottom edge of the screen.
func (b *Bar) Layout(screenWidth, screenHeight int) {
	x := (screenWidth - b.Width()) / 2
	y := screenHeight - b.slotSize - b.padding
	for _, s := range b.slots {
		s.X, s.Y = x, y
		x += b.slotSize + b.gap
	}
}

// SlotAt returns the slot under the screen point, if any.
func (b *Bar) SlotAt(x, y int) *Slot {
	for _, s := range b.slots {
		if s.Contains(x, y) {
			return s
		}
	}
	return nil
}

// Update tracks the hovered slot and triggers the clicked one. It returns
// true when the click landed on the bar so the world underneath ignores it.
func (b *Bar) Update(input render.InputManager) bool {
	b.hovered = b.SlotAt(input.GetCursorPosition())
	if b.hovered == nil || !input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		return false
	}
	b.hovered.ctrl.TriggerAction()
	return true
}

// Tooltip returns the hover text, or "" when nothing is hovered.
func (b *Bar) Tooltip() string {
	if b.hovered == nil {
		return ""
	}
	return b.hovered.ctrl.Tooltip()
}

// Draw renders every slot and the tooltip of the hovered one.
func (b *Bar) Draw(r render.Renderer, screen render.Image) {
	for _, s := range b.slots {
		b.drawSlot(r, screen, s)
	}

	if tip := b.Tooltip(); tip != "" && len(b.slots) > 0 {
		w, h := r.MeasureText(tip)
		x := b.hovered.X + b.slotSize/2 - w/2
		y := b.slots[0].Y - h - b.padding*2
		r.FillRect(screen, float32(x-b.padding), float32(y-b.padding),
			float32(w+b.padding*2), float32(h+b.padding*2), b.bgColor)
		r.DrawText(screen, tip, x, y)
	}
}

func (b *Bar) drawSlot(r render.Renderer, screen render.Image, s *Slot) {
	x, y, size := float32(s.X), float32(s.Y), float32(s.Size)
	r.FillRect(screen, x, y, size, size, b.bgColor)

	fill := b.fillColor
	fill.A = uint8(float64(fill.A) * clampUnit(s.alpha))
	r.FillRect(screen, x+2, y+2, size-4, size-4, fill)

	border := color.Color(b.borderColor)
	if s == b.hovered {
		border = b.hoverColor
	}
	r.StrokeRect(screen, x, y, size, size, 1, border)

	r.DrawText(screen, fmt.Sprintf("%d", s.ctrl.ID()+1), s.X+3, s.Y+1)
	if s.label != "" {
		w, h := r.MeasureText(s.label)
		r.DrawText(screen, s.label, s.X+(s.Size-w)/2, s.Y+(s.Size-h)/2)
	} else if name := s.ctrl.Definition().Name; name != "" {
		r0, _ := utf8.DecodeRuneInString(name)
		initial := string(r0)
		w, h := r.MeasureText(initial)
		r.DrawText(screen, initial, s.X+(s.Size-w)/2, s.Y+(s.Size-h)/2)
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
