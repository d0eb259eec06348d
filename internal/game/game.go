// Package game coordinates the client: it owns the state machine, the
// action controllers, the selection and the open windows, and feeds them
// with input and server messages once per frame.
package game

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/config"
	"chosenoffset.com/gridia/internal/core/fsm"
	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/core/spiral"
	"chosenoffset.com/gridia/internal/inventory"
	"chosenoffset.com/gridia/internal/logger"
	"chosenoffset.com/gridia/internal/movement"
	"chosenoffset.com/gridia/internal/network"
	"chosenoffset.com/gridia/internal/render"
	"chosenoffset.com/gridia/internal/ui/actionbar"
	"chosenoffset.com/gridia/internal/ui/panel"
	"chosenoffset.com/gridia/internal/world"
)

// maxPredicted bounds the unacknowledged steps kept for a server that
// never echoes the player's moves.
const maxPredicted = 8

// Options are the collaborators a Game is built from.
type Options struct {
	Config   *config.Config
	Server   Server
	Input    render.InputManager
	Renderer render.Renderer
	Queue    *network.Queue     // Inbound messages, drained every frame
	Catalog  *inventory.Catalog // Item names, optional
	Clock    func() time.Time
	Log      logrus.FieldLogger
}

// Game holds all client state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	TileSize     int

	cfg      *config.Config
	server   Server
	input    render.InputManager
	renderer render.Renderer
	queue    *network.Queue
	catalog  *inventory.Catalog
	log      logrus.FieldLogger

	World   *world.TileMap
	View    *world.View
	Machine *fsm.Machine

	actions []*action.Controller
	bar     *actionbar.Bar

	// Selection state
	selectedCreature  *world.Creature
	selectedContainer *inventory.Container
	selectorDelta     geom.Coord

	// Containers mirrored from the server, keyed by container id
	containers       map[int]*inventory.Container
	containerWindows map[int]*panel.Panel
	inventoryID      int
	hasInventory     bool

	// Steps reported to the server and not yet echoed back, oldest first
	predicted []geom.Coord

	// Open windows in draw order
	windows      []*panel.Panel
	nextWindowID int

	// UI state
	Messages []Message
}

// New creates a game with an empty world and one controller per
// configured action.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Server == nil {
		return nil, fmt.Errorf("game needs a server")
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	log := logger.OrDiscard(opts.Log)

	tileMap, err := world.NewTileMap(cfg.World.Size, cfg.World.Depth)
	if err != nil {
		return nil, fmt.Errorf("failed to create tile map: %w", err)
	}

	g := &Game{
		ScreenWidth:      cfg.Window.Width,
		ScreenHeight:     cfg.Window.Height,
		TileSize:         cfg.Window.TileSize,
		cfg:              cfg,
		server:           opts.Server,
		input:            opts.Input,
		renderer:         opts.Renderer,
		queue:            opts.Queue,
		catalog:          opts.Catalog,
		log:              log,
		World:            tileMap,
		View:             world.NewView(),
		Machine:          fsm.New(log),
		containers:       make(map[int]*inventory.Container),
		containerWindows: make(map[int]*panel.Panel),
	}

	deps := action.Deps{
		Dispatcher: opts.Server,
		Selection:  g,
		Finder:     g,
		Modes:      g,
		Clock:      opts.Clock,
		Search:     cfg.SearchBox(),
		Log:        log,
	}
	for _, def := range cfg.ActionLibrary().All() {
		g.actions = append(g.actions, action.New(def, deps))
	}
	g.bar = actionbar.New(g.actions, g.TileSize+8)
	g.bar.Layout(g.ScreenWidth, g.ScreenHeight)

	log.WithField("actions", len(g.actions)).Info("Game created")
	return g, nil
}

// Actions returns the action controllers ordered by slot id.
func (g *Game) Actions() []*action.Controller {
	return g.actions
}

// Update advances the client by dt seconds.
func (g *Game) Update(dt float64) error {
	if g.queue != nil {
		g.queue.Drain()
	}

	g.updateMessages(dt)

	for _, c := range g.actions {
		c.Refresh()
	}

	if g.input != nil && !g.inModal() {
		g.handleInput()
	}

	g.Machine.Step(dt)
	return nil
}

// inModal reports whether a sub-state owns the input this frame.
func (g *Game) inModal() bool {
	_, ok := g.Machine.Current().(modal)
	return ok
}

func (g *Game) handleInput() {
	if g.bar.Update(g.input) {
		return
	}

	g.handleMouseSelection()
	g.handleHotkeys()
	g.handleSelectorKeys()

	if g.input.IsKeyJustPressed(render.KeyG) {
		g.PickUpItemAtSelection()
	}
	if g.input.IsKeyJustPressed(render.KeyR) {
		g.DropItemAtSelection()
	}
	if g.input.IsKeyJustPressed(render.KeyU) {
		_, slot, _ := g.inventorySlot()
		g.UseItemAtSelection(slot)
	}
}

// handleMouseSelection selects a container slot on click, or the creature
// under the cursor while the left button is held.
func (g *Game) handleMouseSelection() {
	x, y := g.input.GetCursorPosition()

	if g.input.IsMouseButtonJustPressed(render.MouseButtonLeft) {
		for id, w := range g.containerWindows {
			if !w.Contains(x, y) {
				continue
			}
			if line := w.LineAt(x, y); line >= 0 {
				c := g.containers[id]
				c.SelectSlot(line)
				g.SelectContainer(c)
				g.refreshContainerWindow(id)
			}
			return
		}
	}

	if !g.input.IsMouseButtonPressed(render.MouseButtonLeft) || g.overWindow(x, y) {
		return
	}

	for _, cre := range g.World.EntitiesAt(g.ScreenToTile(x, y)) {
		if cre == g.View.Focus() {
			continue
		}
		if cre != g.selectedCreature {
			g.SelectCreature(cre)
		}
		return
	}
}

func (g *Game) overWindow(x, y int) bool {
	if g.bar.SlotAt(x, y) != nil {
		return true
	}
	for _, w := range g.windows {
		if w.Contains(x, y) {
			return true
		}
	}
	return false
}

// handleHotkeys maps digit keys to slots: key n fires slot n-1.
func (g *Game) handleHotkeys() {
	for _, c := range g.actions {
		key := render.DigitKey(c.ID() + 1)
		if key != render.KeyUnknown && g.input.IsKeyJustPressed(key) {
			c.TriggerAction()
		}
	}
}

func (g *Game) handleSelectorKeys() {
	d := g.selectorDelta
	switch {
	case g.input.IsKeyJustPressed(render.KeyI):
		d.Y--
	case g.input.IsKeyJustPressed(render.KeyK):
		d.Y++
	case g.input.IsKeyJustPressed(render.KeyJ):
		d.X--
	case g.input.IsKeyJustPressed(render.KeyL):
		d.X++
	default:
		return
	}
	g.SetSelectorDelta(d)
}

// --- Selection ---

// SelectedCreature returns the selected creature, or nil.
func (g *Game) SelectedCreature() *world.Creature {
	return g.selectedCreature
}

// SelectCreature selects c; nil clears the selection.
func (g *Game) SelectCreature(c *world.Creature) {
	g.selectedCreature = c
	if c != nil {
		g.log.WithField("creature", c.ID).Debug("Creature selected")
	}
}

// SelectContainer selects c; nil means the world tile under the selector.
func (g *Game) SelectContainer(c *inventory.Container) {
	g.selectedContainer = c
}

// SetSelectorDelta moves the tile selector relative to the player. Each
// axis is clamped to the configured bound.
func (g *Game) SetSelectorDelta(d geom.Coord) {
	bound := g.cfg.SelectorBound
	g.selectorDelta = geom.Coord{
		X: geom.Clamp(d.X, -bound, bound),
		Y: geom.Clamp(d.Y, -bound, bound),
	}
}

// SelectorCoord returns the tile under the selector.
func (g *Game) SelectorCoord() geom.Coord {
	return g.World.Wrap(g.View.FocusCoord().Add(g.selectorDelta))
}

// CreaturesNearPlayer lists up to limit creatures around the player,
// nearest ring first. The player is never included; creatures sharing a
// tile are all counted.
func (g *Game) CreaturesNearPlayer(rangeX, rangeY, limit int) []*world.Creature {
	focus := g.View.Focus()
	if focus == nil {
		return nil
	}
	return spiral.Search[*world.Creature](g.World, focus.Pos, focus, rangeX, rangeY, limit)
}

// --- Items ---

// inventorySlot returns the player's inventory id and its selected slot.
func (g *Game) inventorySlot() (id, slot int, ok bool) {
	if !g.hasInventory {
		return 0, 0, false
	}
	if inv := g.containers[g.inventoryID]; inv != nil {
		slot = inv.SlotSelected()
	}
	return g.inventoryID, slot, true
}

// DropItemAtSelection moves one item from the selected inventory slot to
// the selected container slot, or onto the selector tile.
func (g *Game) DropItemAtSelection() {
	inv, slot, ok := g.inventorySlot()
	if !ok {
		g.log.Debug("No inventory yet, drop ignored")
		return
	}
	if sel := g.selectedContainer; sel != nil {
		g.server.MoveItem(inv, sel.ID(), slot, sel.SlotSelected(), 1)
		return
	}
	g.server.MoveItem(inv, inventory.WorldContainerID, slot, g.World.ToIndex(g.SelectorCoord()), 1)
}

// PickUpItemAtSelection moves the whole stack from the selected container
// slot, or from the selector tile, into the inventory.
func (g *Game) PickUpItemAtSelection() {
	inv, _, ok := g.inventorySlot()
	if !ok {
		g.log.Debug("No inventory yet, pick up ignored")
		return
	}
	if sel := g.selectedContainer; sel != nil {
		g.server.MoveItem(sel.ID(), inv, sel.SlotSelected(), inventory.AnySlot, inventory.QuantityAll)
		return
	}
	g.server.MoveItem(inventory.WorldContainerID, inv, g.World.ToIndex(g.SelectorCoord()), inventory.AnySlot, inventory.QuantityAll)
}

// UseItemAtSelection uses the inventory item in sourceIndex on the
// selected container slot, or on the selector tile.
func (g *Game) UseItemAtSelection(sourceIndex int) {
	inv, _, ok := g.inventorySlot()
	if !ok {
		g.log.Debug("No inventory yet, use ignored")
		return
	}
	if sel := g.selectedContainer; sel != nil {
		g.server.UseItem(inv, sel.ID(), sourceIndex, sel.SlotSelected())
		return
	}
	g.server.UseItem(inv, inventory.WorldContainerID, sourceIndex, g.World.ToIndex(g.SelectorCoord()))
}

// --- Server messages ---

// AddCreature places a creature reported by the server.
func (g *Game) AddCreature(id int, name string, sprite int, pos geom.Coord) {
	if _, known := g.World.Creature(id); known {
		g.log.WithField("creature", id).Debug("Creature already known, moving instead")
		g.MoveCreature(id, pos)
		return
	}
	if g.World.CreateCreature(id, name, sprite, pos) == nil {
		g.log.WithFields(logrus.Fields{"creature": id, "pos": pos}).Warn("Creature off the map ignored")
	}
}

// MoveCreature relocates a creature. For the player, an echo of a
// predicted step is acknowledged; anything else is a correction that
// abandons the step in progress and snaps the view to the server's tile.
func (g *Game) MoveCreature(id int, pos geom.Coord) {
	focus := g.View.Focus()
	if focus != nil && focus.ID == id {
		g.correctFocus(pos)
		return
	}
	if !g.World.MoveCreature(id, pos) {
		g.log.WithField("creature", id).Debug("Move for unknown creature ignored")
	}
}

func (g *Game) correctFocus(pos geom.Coord) {
	pos = g.World.Wrap(pos)
	for i, p := range g.predicted {
		if p == pos {
			g.predicted = g.predicted[i+1:]
			return
		}
	}

	g.predicted = nil
	if !g.World.MoveCreature(g.View.Focus().ID, pos) {
		g.log.WithField("pos", pos).Warn("Correction off the map ignored")
		return
	}
	g.snapToFocus()
	if _, ok := g.Machine.Current().(*movement.State); ok {
		g.Machine.SetState(g.newMovementState())
	}
	g.log.WithField("pos", pos).Debug("Position corrected by server")
}

// RemoveCreature forgets a creature, clearing the selection if it was
// selected.
func (g *Game) RemoveCreature(id int) {
	cre := g.World.RemoveCreature(id)
	if cre == nil {
		return
	}
	if g.selectedCreature == cre {
		g.SelectCreature(nil)
	}
	if g.View.Focus() == cre {
		if m, ok := g.Machine.Current().(modal); ok {
			m.close()
		}
		g.View.SetFocus(nil)
		g.Machine.SetState(nil)
		g.predicted = nil
	}
}

// SetFocus makes creature id the local player and starts movement.
func (g *Game) SetFocus(id int) {
	cre, ok := g.World.Creature(id)
	if !ok {
		g.log.WithField("creature", id).Warn("Focus on unknown creature")
		return
	}
	if m, ok := g.Machine.Current().(modal); ok {
		m.close()
	}
	g.View.SetFocus(cre)
	g.predicted = nil
	g.Machine.SetState(g.newMovementState())
	g.log.WithField("creature", id).Info("Focus set")
}

// SetInventory records which container is the player's inventory.
func (g *Game) SetInventory(id int) {
	g.inventoryID = id
	g.hasInventory = true
	if w := g.containerWindows[id]; w != nil {
		w.Title = "Inventory"
	}
}

// OpenContainer shows or refreshes a container window.
func (g *Game) OpenContainer(id int, items []inventory.Item) {
	c, ok := g.containers[id]
	if !ok {
		c = inventory.New(id, len(items))
		g.containers[id] = c

		title := fmt.Sprintf("Container %d", id)
		if g.hasInventory && id == g.inventoryID {
			title = "Inventory"
		}
		g.containerWindows[id] = g.openWindow(title, 220, 200)
		c.OnChange = func() { g.refreshContainerWindow(id) }
	}
	c.SetItems(items)
}

// CloseContainer closes a container window.
func (g *Game) CloseContainer(id int) {
	c, ok := g.containers[id]
	if !ok {
		return
	}
	if g.selectedContainer == c {
		g.SelectContainer(nil)
	}
	if w := g.containerWindows[id]; w != nil {
		g.closeWindow(w.ID)
	}
	delete(g.containers, id)
	delete(g.containerWindows, id)
}

func (g *Game) refreshContainerWindow(id int) {
	c, w := g.containers[id], g.containerWindows[id]
	if c == nil || w == nil {
		return
	}
	items := c.Items()
	lines := make([]string, len(items))
	for i, it := range items {
		if it.IsEmpty() {
			lines[i] = fmt.Sprintf("%d: -", i)
		} else {
			lines[i] = fmt.Sprintf("%d: %s x%d", i, g.catalog.Name(it.Type), it.Quantity)
		}
	}
	w.SetLines(lines)
	w.Select(c.SlotSelected())
}

// --- Modes ---

// PickLocation switches to choosing a destination tile for c.
func (g *Game) PickLocation(c *action.Controller) {
	g.snapToFocus()
	g.Machine.SetState(newPickLocationState(g, c))
	g.ShowMessage(fmt.Sprintf("Choose a target for %s", c.Definition().Name))
}

// OpenLocal opens the local panel of c.
func (g *Game) OpenLocal(c *action.Controller) {
	g.snapToFocus()
	g.Machine.SetState(newLocalPanelState(g, c))
}

// resumeMovement returns control to a fresh movement state.
func (g *Game) resumeMovement() {
	if g.View.Focus() == nil {
		g.Machine.SetState(nil)
		return
	}
	g.Machine.SetState(g.newMovementState())
}

// snapToFocus abandons a step in progress. The step was never reported so
// the player is still on the focus tile.
func (g *Game) snapToFocus() {
	if g.View.Focus() != nil {
		g.View.SetPosition(g.View.FocusCoord().Vec2())
	}
}

func (g *Game) newMovementState() *movement.State {
	cfg := g.cfg.MovementSettings()
	cfg.OnSettle = g.onSettle
	return movement.New(g.View, g.input, cfg)
}

// onSettle predicts the step locally and reports it to the server.
func (g *Game) onSettle(tile geom.Coord) {
	focus := g.View.Focus()
	if focus == nil {
		return
	}
	pos := g.World.Wrap(geom.Coord{X: tile.X, Y: tile.Y, Z: focus.Pos.Z})
	if pos != focus.Pos {
		g.World.MoveCreature(focus.ID, pos)
		g.server.Move(pos)
		g.predicted = append(g.predicted, pos)
		if len(g.predicted) > maxPredicted {
			g.predicted = g.predicted[1:]
		}
	}
	g.View.SetPosition(pos.Vec2())
}

// --- Windows ---

// openWindow creates a panel with a fresh id, stacked down the right edge.
func (g *Game) openWindow(title string, width, height int) *panel.Panel {
	g.nextWindowID++
	x := g.ScreenWidth - width - 10
	y := 10
	for _, w := range g.windows {
		if w.X == x && w.Y+w.Height+10 > y {
			y = w.Y + w.Height + 10
		}
	}
	w := panel.New(g.nextWindowID, x, y, width, height, title)
	g.windows = append(g.windows, w)
	return w
}

func (g *Game) closeWindow(id int) {
	for i, w := range g.windows {
		if w.ID == id {
			g.windows = append(g.windows[:i], g.windows[i+1:]...)
			return
		}
	}
}

// --- Screen mapping ---

// ScreenToTile returns the tile under a screen point. The player's tile is
// centred on screen.
func (g *Game) ScreenToTile(x, y int) geom.Coord {
	ts := float64(g.TileSize)
	vp := g.View.Position()
	tx := math.Floor((float64(x)-float64(g.ScreenWidth)/2)/ts + vp.X + 0.5)
	ty := math.Floor((float64(y)-float64(g.ScreenHeight)/2)/ts + vp.Y + 0.5)
	return g.World.Wrap(geom.Coord{X: int(tx), Y: int(ty), Z: g.View.FocusCoord().Z})
}

// TileToScreen returns the top-left screen corner of a tile, taking the
// shortest way around the wrapping map.
func (g *Game) TileToScreen(c geom.Coord) (x, y float64) {
	ts := float64(g.TileSize)
	vp := g.View.Position()
	size := float64(g.World.Size())
	dx := shortest(float64(c.X)-vp.X, size)
	dy := shortest(float64(c.Y)-vp.Y, size)
	return float64(g.ScreenWidth)/2 + (dx-0.5)*ts, float64(g.ScreenHeight)/2 + (dy-0.5)*ts
}

func shortest(d, size float64) float64 {
	if d > size/2 {
		return d - size
	}
	if d < -size/2 {
		return d + size
	}
	return d
}

// Resize adapts the layout to a new screen size.
func (g *Game) Resize(width, height int) {
	g.ScreenWidth = width
	g.ScreenHeight = height
	g.bar.Layout(width, height)
}

// --- Messages ---

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// WatchConnection tells the player once done closes. The notice goes
// through the queue so it lands on the frame goroutine.
func (g *Game) WatchConnection(done <-chan struct{}) {
	if g.queue == nil {
		return
	}
	go func() {
		<-done
		g.queue.Push(func() {
			g.log.Warn("Connection to server lost")
			g.ShowMessage("Disconnected from server")
		})
	}()
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	g.log.WithField("message", text).Debug("Message shown")
}
