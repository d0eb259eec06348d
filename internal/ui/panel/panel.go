// Package panel provides the framed text windows used for containers and
// the local action panels.
package panel

import (
	"image/color"
	"strings"

	"chosenoffset.com/gridia/internal/render"
)

// Panel is a titled window showing a list of lines.
type Panel struct {
	ID int

	// Dimensions
	X, Y          int
	Width, Height int

	Title string

	lines    []string
	selected int // Highlighted line, -1 for none
	footer   string

	// Visual settings
	bgColor       color.RGBA
	borderColor   color.RGBA
	selectedColor color.RGBA
	lineHeight    int
	padding       int
}

// New creates a panel.
func New(id, x, y, width, height int, title string) *Panel {
	return &Panel{
		ID:            id,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		Title:         title,
		selected:      -1,
		bgColor:       color.RGBA{20, 20, 30, 230},
		borderColor:   color.RGBA{60, 60, 80, 255},
		selectedColor: color.RGBA{90, 90, 40, 255},
		lineHeight:    16,
		padding:       8,
	}
}

// SetLines replaces the body text.
func (p *Panel) SetLines(lines []string) {
	p.lines = append(p.lines[:0:0], lines...)
}

// SetText replaces the body with text wrapped to the panel width.
func (p *Panel) SetText(text string, charWidth int) {
	p.lines = WrapText(text, (p.Width-p.padding*2)/max(charWidth, 1))
}

// SetFooter sets the hint shown along the bottom edge.
func (p *Panel) SetFooter(text string) {
	p.footer = text
}

// Select highlights line i; out-of-range values clear the highlight.
func (p *Panel) Select(i int) {
	if i < 0 || i >= len(p.lines) {
		p.selected = -1
		return
	}
	p.selected = i
}

// Selected returns the highlighted line, or -1 for none.
func (p *Panel) Selected() int {
	return p.selected
}

// Contains reports whether the screen point lies inside the panel.
func (p *Panel) Contains(x, y int) bool {
	return x >= p.X && x < p.X+p.Width && y >= p.Y && y < p.Y+p.Height
}

func (p *Panel) bodyTop() int {
	return p.Y + p.padding + p.lineHeight + 4
}

// LineAt returns the body line under the screen point, or -1.
func (p *Panel) LineAt(x, y int) int {
	if !p.Contains(x, y) || y < p.bodyTop() {
		return -1
	}
	i := (y - p.bodyTop()) / p.lineHeight
	if i >= len(p.lines) {
		return -1
	}
	return i
}

// Draw renders the panel.
func (p *Panel) Draw(r render.Renderer, screen render.Image) {
	x, y := float32(p.X), float32(p.Y)
	r.FillRect(screen, x, y, float32(p.Width), float32(p.Height), p.bgColor)
	r.StrokeRect(screen, x, y, float32(p.Width), float32(p.Height), 1, p.borderColor)

	r.DrawText(screen, p.Title, p.X+p.padding, p.Y+p.padding)
	p.drawDivider(r, screen, p.bodyTop()-3)

	lineY := p.bodyTop()
	for i, line := range p.lines {
		if lineY+p.lineHeight > p.Y+p.Height-p.padding {
			break
		}
		if i == p.selected {
			r.FillRect(screen, float32(p.X+2), float32(lineY), float32(p.Width-4), float32(p.lineHeight), p.selectedColor)
		}
		r.DrawText(screen, line, p.X+p.padding, lineY)
		lineY += p.lineHeight
	}

	if p.footer != "" {
		r.DrawText(screen, p.footer, p.X+p.padding, p.Y+p.Height-p.lineHeight-p.padding/2)
	}
}

func (p *Panel) drawDivider(r render.Renderer, screen render.Image, y int) {
	r.FillRect(screen, float32(p.X+p.padding), float32(y), float32(p.Width-p.padding*2), 1, p.borderColor)
}

// WrapText breaks text into lines of at most width characters, splitting
// on spaces. Words longer than width get a line of their own.
func WrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	return append(lines, current)
}
