package game

import (
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/render"
	"chosenoffset.com/gridia/internal/world"
)

var (
	backgroundColor = color.RGBA{10, 10, 16, 255}
	floorColors     = [2]color.RGBA{{34, 44, 34, 255}, {40, 52, 40, 255}}
	selectorColor   = color.RGBA{255, 255, 150, 255}
	selectedColor   = color.RGBA{255, 80, 80, 255}

	// Creature colours by sprite id
	spritePalette = []color.RGBA{
		{200, 200, 200, 255},
		{90, 160, 230, 255},
		{230, 160, 70, 255},
		{120, 200, 110, 255},
		{200, 110, 200, 255},
		{220, 220, 90, 255},
	}
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	if g.renderer == nil {
		return
	}
	screen.Fill(backgroundColor)

	// World layers
	g.drawFloor(screen)
	g.drawSelector(screen)
	g.drawCreatures(screen)

	// Mode overlay, then UI on top
	if o, ok := g.Machine.Current().(overlay); ok {
		o.Draw(g.renderer, screen)
	}
	for _, w := range g.windows {
		w.Draw(g.renderer, screen)
	}
	g.bar.Draw(g.renderer, screen)
	g.drawUI(screen)
}

func (g *Game) drawFloor(screen render.Image) {
	ts := float32(g.TileSize)
	vp := g.View.Position()
	cols := g.ScreenWidth/g.TileSize/2 + 2
	rows := g.ScreenHeight/g.TileSize/2 + 2
	cx, cy := int(math.Floor(vp.X)), int(math.Floor(vp.Y))
	z := g.View.FocusCoord().Z

	for dy := -rows; dy <= rows; dy++ {
		for dx := -cols; dx <= cols; dx++ {
			tile := g.World.Wrap(geom.Coord{X: cx + dx, Y: cy + dy, Z: z})
			x, y := g.TileToScreen(tile)
			clr := floorColors[(tile.X+tile.Y)%2]
			g.renderer.FillRect(screen, float32(x), float32(y), ts, ts, clr)
		}
	}
}

func (g *Game) drawSelector(screen render.Image) {
	if g.View.Focus() == nil {
		return
	}
	x, y := g.TileToScreen(g.SelectorCoord())
	ts := float32(g.TileSize)
	g.renderer.StrokeRect(screen, float32(x)+1, float32(y)+1, ts-2, ts-2, 1, selectorColor)
}

func (g *Game) drawCreatures(screen render.Image) {
	ts := float64(g.TileSize)
	focus := g.View.Focus()
	z := g.View.FocusCoord().Z

	for _, cre := range g.World.Creatures() {
		if cre.Pos.Z != z {
			continue
		}
		x, y := g.TileToScreen(cre.Pos)
		if cre == focus {
			// The player follows the smooth view position, not its tile.
			x = float64(g.ScreenWidth)/2 - ts/2
			y = float64(g.ScreenHeight)/2 - ts/2
		}
		if x < -ts || y < -ts || x > float64(g.ScreenWidth) || y > float64(g.ScreenHeight) {
			continue
		}
		g.drawCreature(screen, cre, x, y)
	}
}

func (g *Game) drawCreature(screen render.Image, cre *world.Creature, x, y float64) {
	ts := float32(g.TileSize)
	cx, cy := float32(x)+ts/2, float32(y)+ts/2
	radius := ts * 0.4

	g.renderer.FillCircle(screen, cx, cy, radius, spriteColor(cre.Sprite))
	if cre == g.selectedCreature {
		g.renderer.StrokeCircle(screen, cx, cy, radius+2, 2, selectedColor)
	}
	if cre.Name != "" {
		w, _ := g.renderer.MeasureText(cre.Name)
		g.renderer.DrawText(screen, cre.Name, int(cx)-w/2, int(y)+g.TileSize)
	}
}

func spriteColor(sprite int) color.RGBA {
	if sprite < 0 {
		sprite = -sprite
	}
	return spritePalette[sprite%len(spritePalette)]
}

func (g *Game) drawUI(screen render.Image) {
	if focus := g.View.Focus(); focus != nil {
		status := fmt.Sprintf("(%d, %d, %d)", focus.Pos.X, focus.Pos.Y, focus.Pos.Z)
		if sel := g.selectedCreature; sel != nil {
			status += "  target: " + sel.Name
		}
		g.renderer.DrawText(screen, status, 10, 10)
	}

	// Draw on-screen messages
	y := 30
	for _, msg := range g.Messages {
		g.renderer.DrawText(screen, msg.Text, 10, y)
		y += 18
	}
}
