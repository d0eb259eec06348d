// Package action gates player-initiated abilities behind cooldowns and
// hands them to the network layer.
//
// A Controller never waits for the server. It only decides locally whether
// an attempt is worth sending: it refuses while cooling down, defers to a
// location-picking mode when the ability needs a destination, and refuses
// when it cannot pick a single unambiguous target on its own.
package action

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/logger"
	"chosenoffset.com/gridia/internal/world"
)

// RestActionID is the slot that opens the local rest panel instead of
// contacting the server.
const RestActionID = 0

// Dispatcher sends action requests to the server.
type Dispatcher interface {
	PerformAction(id int)
	PerformActionAt(id int, dest geom.Coord)
}

// Selection is the currently selected creature.
type Selection interface {
	SelectedCreature() *world.Creature
	SelectCreature(c *world.Creature)
}

// Finder lists creatures around the player, nearest first.
type Finder interface {
	CreaturesNearPlayer(rangeX, rangeY, limit int) []*world.Creature
}

// Modes switches the client into the interaction modes an action can need.
type Modes interface {
	PickLocation(c *Controller)
	OpenLocal(c *Controller)
}

// View is the on-screen slot bound to a controller.
type View interface {
	SetAlpha(alpha float64)
	SetLabel(text string)
}

// SearchBox bounds the automatic target search. Limit is the number of
// candidates collected; anything but exactly one found aborts.
type SearchBox struct {
	RangeX int
	RangeY int
	Limit  int
}

// DefaultSearchBox looks 10 tiles each way and collects one extra
// candidate so a second creature in range is seen as ambiguity.
var DefaultSearchBox = SearchBox{RangeX: 10, RangeY: 10, Limit: 2}

// Deps are the collaborators injected into every controller.
type Deps struct {
	Dispatcher Dispatcher
	Selection  Selection
	Finder     Finder
	Modes      Modes
	Clock      func() time.Time
	Search     SearchBox
	Log        logrus.FieldLogger
}

// Controller owns the cooldown of one action slot.
type Controller struct {
	def  Definition
	deps Deps
	log  logrus.FieldLogger
	view View

	lastTriggeredAt time.Time
	timeLeft        time.Duration // As of the last Refresh; negative once ready
}

// New creates a controller that is ready to fire.
func New(def Definition, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Search == (SearchBox{}) {
		deps.Search = DefaultSearchBox
	}
	return &Controller{
		def:  def,
		deps: deps,
		log:  logger.OrDiscard(deps.Log).WithField("action", def.ID),
	}
}

// ID returns the slot id.
func (c *Controller) ID() int { return c.def.ID }

// Definition returns the slot definition.
func (c *Controller) Definition() Definition { return c.def }

// Bind attaches the on-screen slot.
func (c *Controller) Bind(v View) {
	c.view = v
}

// status computes readiness, time left and fill progress at now.
func (c *Controller) status(now time.Time) (ready bool, left time.Duration, progress float64) {
	if c.lastTriggeredAt.IsZero() {
		return true, 0, 1
	}
	cooldown := c.def.Cooldown()
	elapsed := now.Sub(c.lastTriggeredAt)
	left = cooldown - elapsed
	if cooldown <= 0 {
		return true, left, 1
	}
	progress = float64(elapsed) / float64(cooldown)
	if progress > 1 {
		progress = 1
	}
	return elapsed >= cooldown, left, progress
}

// Refresh recomputes the cooldown and pushes it to the bound view. It is
// called once per frame.
func (c *Controller) Refresh() {
	var progress float64
	_, c.timeLeft, progress = c.status(c.deps.Clock())
	if c.view == nil {
		return
	}
	c.view.SetAlpha(progress)
	if c.timeLeft > 0 {
		c.view.SetLabel(FormatCountdown(c.timeLeft))
	} else {
		c.view.SetLabel("")
	}
}

// CanPerform reports whether the cooldown has elapsed.
func (c *Controller) CanPerform() bool {
	ready, _, _ := c.status(c.deps.Clock())
	return ready
}

// Tooltip describes the slot for hover text.
func (c *Controller) Tooltip() string {
	ready, left, _ := c.status(c.deps.Clock())
	if ready {
		return fmt.Sprintf("Press %d to use: %s", c.def.ID+1, c.def.Description)
	}
	return FormatCountdown(left)
}

// TriggerAction fires the action without an explicit destination.
func (c *Controller) TriggerAction() {
	if !c.CanPerform() {
		c.log.Debug("action on cooldown")
		return
	}
	now := c.deps.Clock()

	if c.def.RequireDestination {
		c.log.Debug("action needs a destination, picking location")
		c.deps.Modes.PickLocation(c)
		return
	}

	if c.deps.Selection.SelectedCreature() == nil {
		box := c.deps.Search
		near := c.deps.Finder.CreaturesNearPlayer(box.RangeX, box.RangeY, box.Limit)
		if len(near) != 1 {
			c.log.WithField("candidates", len(near)).Debug("no unambiguous target, action aborted")
			return
		}
		c.deps.Selection.SelectCreature(near[0])
		c.log.WithField("creature", near[0].ID).Debug("auto-selected target")
	}

	if c.def.ID == RestActionID {
		c.deps.Modes.OpenLocal(c)
	} else {
		c.deps.Dispatcher.PerformAction(c.def.ID)
	}
	c.lastTriggeredAt = now
	c.log.Debug("action dispatched")
}

// TriggerActionAt fires a destination action once the location is known.
func (c *Controller) TriggerActionAt(dest geom.Coord) {
	if !c.CanPerform() {
		c.log.Debug("action on cooldown")
		return
	}
	now := c.deps.Clock()
	c.deps.Dispatcher.PerformActionAt(c.def.ID, dest)
	c.lastTriggeredAt = now
	c.log.WithField("dest", dest).Debug("action dispatched at destination")
}

// FormatCountdown renders a remaining cooldown as seconds with one decimal.
func FormatCountdown(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
