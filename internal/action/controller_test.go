package action

import (
	"testing"
	"time"

	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/world"
)

type fakeClock struct {
	base time.Time
	now  time.Time
}

func newClock() *fakeClock {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &fakeClock{base: base, now: base}
}

func (c *fakeClock) Now() time.Time { return c.now }

// at moves the clock to ms milliseconds after the start.
func (c *fakeClock) at(ms int) {
	c.now = c.base.Add(time.Duration(ms) * time.Millisecond)
}

type atCall struct {
	id   int
	dest geom.Coord
}

type fakeDispatcher struct {
	actions []int
	at      []atCall
}

func (d *fakeDispatcher) PerformAction(id int) { d.actions = append(d.actions, id) }
func (d *fakeDispatcher) PerformActionAt(id int, dest geom.Coord) {
	d.at = append(d.at, atCall{id: id, dest: dest})
}

type fakeSelection struct {
	selected *world.Creature
	sets     int
}

func (s *fakeSelection) SelectedCreature() *world.Creature { return s.selected }
func (s *fakeSelection) SelectCreature(c *world.Creature) {
	s.selected = c
	s.sets++
}

type fakeFinder struct {
	creatures []*world.Creature
	calls     int
	lastBox   SearchBox
}

func (f *fakeFinder) CreaturesNearPlayer(rangeX, rangeY, limit int) []*world.Creature {
	f.calls++
	f.lastBox = SearchBox{RangeX: rangeX, RangeY: rangeY, Limit: limit}
	if len(f.creatures) > limit {
		return f.creatures[:limit]
	}
	return f.creatures
}

type fakeModes struct {
	picks  []*Controller
	locals []*Controller
}

func (m *fakeModes) PickLocation(c *Controller) { m.picks = append(m.picks, c) }
func (m *fakeModes) OpenLocal(c *Controller)    { m.locals = append(m.locals, c) }

type fakeView struct {
	alpha float64
	label string
}

func (v *fakeView) SetAlpha(alpha float64) { v.alpha = alpha }
func (v *fakeView) SetLabel(text string)   { v.label = text }

type harness struct {
	clock      *fakeClock
	dispatcher *fakeDispatcher
	selection  *fakeSelection
	finder     *fakeFinder
	modes      *fakeModes
}

func newHarness() *harness {
	return &harness{
		clock:      newClock(),
		dispatcher: &fakeDispatcher{},
		selection:  &fakeSelection{},
		finder:     &fakeFinder{},
		modes:      &fakeModes{},
	}
}

func (h *harness) controller(def Definition) *Controller {
	return New(def, Deps{
		Dispatcher: h.dispatcher,
		Selection:  h.selection,
		Finder:     h.finder,
		Modes:      h.modes,
		Clock:      h.clock.Now,
	})
}

func TestAutoTargetAndCooldownScenario(t *testing.T) {
	h := newHarness()
	rat := &world.Creature{ID: 42, Name: "rat"}
	h.finder.creatures = []*world.Creature{rat}
	c := h.controller(Definition{ID: 1, Description: "Attack", CooldownMs: 2000})

	h.clock.at(0)
	c.TriggerAction()

	if h.selection.selected != rat {
		t.Fatalf("Expected rat to be auto-selected, got %v", h.selection.selected)
	}
	if len(h.dispatcher.actions) != 1 || h.dispatcher.actions[0] != 1 {
		t.Fatalf("Expected one dispatch of action 1, got %v", h.dispatcher.actions)
	}
	if h.finder.lastBox != DefaultSearchBox {
		t.Errorf("Expected default search box %v, got %v", DefaultSearchBox, h.finder.lastBox)
	}
	firstStamp := c.lastTriggeredAt

	h.clock.at(500)
	c.TriggerAction()
	if len(h.dispatcher.actions) != 1 {
		t.Errorf("Expected trigger during cooldown to be ignored, got %d dispatches", len(h.dispatcher.actions))
	}
	if !c.lastTriggeredAt.Equal(firstStamp) {
		t.Error("Expected timestamp to be unchanged during cooldown")
	}

	h.clock.at(2001)
	c.TriggerAction()
	if len(h.dispatcher.actions) != 2 {
		t.Errorf("Expected second dispatch after cooldown, got %d", len(h.dispatcher.actions))
	}
	if h.finder.calls != 1 {
		t.Errorf("Expected search only while nothing was selected, got %d searches", h.finder.calls)
	}
}

func TestCooldownBoundaryIsInclusive(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 1}
	c := h.controller(Definition{ID: 2, Description: "Kick", CooldownMs: 1000})

	h.clock.at(0)
	c.TriggerAction()
	h.clock.at(999)
	if c.CanPerform() {
		t.Error("Expected action to be cooling down at 999ms")
	}
	h.clock.at(1000)
	if !c.CanPerform() {
		t.Error("Expected action ready at exactly the cooldown")
	}
}

func TestAutoTargetAbortsWithoutCandidates(t *testing.T) {
	h := newHarness()
	c := h.controller(Definition{ID: 1, Description: "Attack", CooldownMs: 2000})

	c.TriggerAction()

	if len(h.dispatcher.actions) != 0 {
		t.Errorf("Expected no dispatch, got %v", h.dispatcher.actions)
	}
	if !c.lastTriggeredAt.IsZero() {
		t.Error("Expected cooldown not to start")
	}
	if !c.CanPerform() {
		t.Error("Expected action to stay ready")
	}
}

func TestAutoTargetAbortsWhenAmbiguous(t *testing.T) {
	h := newHarness()
	h.finder.creatures = []*world.Creature{{ID: 1}, {ID: 2}}
	c := h.controller(Definition{ID: 1, Description: "Attack", CooldownMs: 2000})

	c.TriggerAction()

	if h.selection.selected != nil {
		t.Errorf("Expected nothing selected, got %v", h.selection.selected)
	}
	if len(h.dispatcher.actions) != 0 {
		t.Errorf("Expected no dispatch, got %v", h.dispatcher.actions)
	}
	if !c.lastTriggeredAt.IsZero() {
		t.Error("Expected cooldown not to start")
	}
}

func TestExistingSelectionSkipsSearch(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 9}
	h.finder.creatures = []*world.Creature{{ID: 1}, {ID: 2}}
	c := h.controller(Definition{ID: 4, Description: "Shoot", CooldownMs: 100})

	c.TriggerAction()

	if h.finder.calls != 0 {
		t.Errorf("Expected no search, got %d", h.finder.calls)
	}
	if h.selection.selected.ID != 9 {
		t.Errorf("Expected selection to be kept, got %d", h.selection.selected.ID)
	}
	if len(h.dispatcher.actions) != 1 || h.dispatcher.actions[0] != 4 {
		t.Errorf("Expected dispatch of action 4, got %v", h.dispatcher.actions)
	}
}

func TestRequireDestinationDefersCooldown(t *testing.T) {
	h := newHarness()
	c := h.controller(Definition{ID: 2, Description: "Fireball", RequireDestination: true, CooldownMs: 5000})

	c.TriggerAction()
	c.TriggerAction()

	if len(h.modes.picks) != 2 || h.modes.picks[0] != c {
		t.Fatalf("Expected two location picks for this controller, got %d", len(h.modes.picks))
	}
	if !c.lastTriggeredAt.IsZero() {
		t.Error("Expected no timestamp before a destination is chosen")
	}
	if len(h.dispatcher.actions)+len(h.dispatcher.at) != 0 {
		t.Error("Expected nothing sent to the server yet")
	}
	if h.finder.calls != 0 {
		t.Error("Expected no target search for destination actions")
	}

	h.clock.at(100)
	dest := geom.Coord{X: 3, Y: 4}
	c.TriggerActionAt(dest)

	if len(h.dispatcher.at) != 1 || h.dispatcher.at[0] != (atCall{id: 2, dest: dest}) {
		t.Fatalf("Expected dispatch at %v, got %v", dest, h.dispatcher.at)
	}
	if c.lastTriggeredAt.IsZero() {
		t.Error("Expected timestamp after destination dispatch")
	}

	h.clock.at(200)
	c.TriggerAction()
	c.TriggerActionAt(dest)
	if len(h.modes.picks) != 2 || len(h.dispatcher.at) != 1 {
		t.Error("Expected both overloads to be ignored during cooldown")
	}
}

func TestRestActionOpensLocalPanel(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 1}
	c := h.controller(Definition{ID: RestActionID, Description: "Rest", CooldownMs: 1000})

	c.TriggerAction()

	if len(h.modes.locals) != 1 {
		t.Fatalf("Expected local panel to open, got %d", len(h.modes.locals))
	}
	if len(h.dispatcher.actions) != 0 {
		t.Errorf("Expected no network dispatch, got %v", h.dispatcher.actions)
	}
	if c.lastTriggeredAt.IsZero() {
		t.Error("Expected rest to start the cooldown")
	}
}

func TestRefreshUpdatesView(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 1}
	c := h.controller(Definition{ID: 1, Description: "Attack", CooldownMs: 2000})
	view := &fakeView{}
	c.Bind(view)

	c.Refresh()
	if view.alpha != 1 || view.label != "" {
		t.Errorf("Expected ready view (1, \"\"), got (%v, %q)", view.alpha, view.label)
	}

	c.TriggerAction()
	h.clock.at(500)
	c.Refresh()
	if view.alpha != 0.25 {
		t.Errorf("Expected alpha 0.25, got %v", view.alpha)
	}
	if view.label != "1.5s" {
		t.Errorf("Expected label 1.5s, got %q", view.label)
	}
	if c.timeLeft != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s left, got %v", c.timeLeft)
	}

	h.clock.at(3000)
	c.Refresh()
	if view.alpha != 1 || view.label != "" {
		t.Errorf("Expected ready view after cooldown, got (%v, %q)", view.alpha, view.label)
	}
	if c.timeLeft >= 0 {
		t.Errorf("Expected negative time left once ready, got %v", c.timeLeft)
	}
}

func TestTooltip(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 1}
	c := h.controller(Definition{ID: 3, Description: "Mend wounds", CooldownMs: 8000})

	if got := c.Tooltip(); got != "Press 4 to use: Mend wounds" {
		t.Errorf("Unexpected ready tooltip %q", got)
	}

	c.TriggerAction()
	h.clock.at(2000)
	if got := c.Tooltip(); got != "6.0s" {
		t.Errorf("Expected countdown tooltip 6.0s, got %q", got)
	}
}

func TestZeroCooldownAlwaysReady(t *testing.T) {
	h := newHarness()
	h.selection.selected = &world.Creature{ID: 1}
	c := h.controller(Definition{ID: 5, Description: "Shout"})

	c.TriggerAction()
	c.TriggerAction()

	if len(h.dispatcher.actions) != 2 {
		t.Errorf("Expected two dispatches, got %d", len(h.dispatcher.actions))
	}
}

func TestFormatCountdown(t *testing.T) {
	cases := map[time.Duration]string{
		1500 * time.Millisecond: "1.5s",
		500 * time.Millisecond:  "0.5s",
		10 * time.Second:        "10.0s",
	}
	for in, want := range cases {
		if got := FormatCountdown(in); got != want {
			t.Errorf("FormatCountdown(%v): expected %q, got %q", in, want, got)
		}
	}
}
