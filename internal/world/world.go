// Package world keeps the client's view of the tile map: which creatures
// stand where. Tile contents are owned by the server and are not stored here.
package world

import (
	"fmt"
	"sort"

	"chosenoffset.com/gridia/internal/core/geom"
)

// Creature is anything that occupies a tile: players, monsters, NPCs.
type Creature struct {
	ID     int
	Name   string
	Pos    geom.Coord
	Sprite int
}

// TileMap is a wrapping square map of size x size tiles per floor.
type TileMap struct {
	size  int
	depth int
	area  int

	creatures map[int]*Creature
	// Occupants per tile in arrival order. Creatures may share a tile.
	byPos map[geom.Coord][]*Creature
}

// NewTileMap creates an empty map.
func NewTileMap(size, depth int) (*TileMap, error) {
	if size <= 0 || depth <= 0 {
		return nil, fmt.Errorf("invalid map dimensions %dx%d", size, depth)
	}
	return &TileMap{
		size:      size,
		depth:     depth,
		area:      size * size,
		creatures: make(map[int]*Creature),
		byPos:     make(map[geom.Coord][]*Creature),
	}, nil
}

// Size returns the width (and height) of a floor.
func (m *TileMap) Size() int { return m.size }

func (m *TileMap) wrap(v int) int {
	mod := v % m.size
	if mod < 0 {
		return mod + m.size
	}
	return mod
}

// Wrap folds x and y back onto the map. Z is left untouched.
func (m *TileMap) Wrap(c geom.Coord) geom.Coord {
	return geom.Coord{X: m.wrap(c.X), Y: m.wrap(c.Y), Z: c.Z}
}

// ToIndex flattens a coordinate into the tile index the server uses to
// address the ground container.
func (m *TileMap) ToIndex(c geom.Coord) int {
	w := m.Wrap(c)
	return w.X + w.Y*m.size + w.Z*m.area
}

// onFloor reports whether z names an existing floor.
func (m *TileMap) onFloor(z int) bool {
	return z >= 0 && z < m.depth
}

// CreateCreature places a new creature. It returns nil when the id is
// already known or pos is on a floor the map does not have.
func (m *TileMap) CreateCreature(id int, name string, sprite int, pos geom.Coord) *Creature {
	if _, exists := m.creatures[id]; exists || !m.onFloor(pos.Z) {
		return nil
	}
	cre := &Creature{ID: id, Name: name, Sprite: sprite, Pos: m.Wrap(pos)}
	m.creatures[id] = cre
	m.place(cre)
	return cre
}

// MoveCreature relocates a creature. It reports false for unknown ids and
// for positions off the map's floors.
func (m *TileMap) MoveCreature(id int, pos geom.Coord) bool {
	cre, ok := m.creatures[id]
	if !ok || !m.onFloor(pos.Z) {
		return false
	}
	m.unplace(cre)
	cre.Pos = m.Wrap(pos)
	m.place(cre)
	return true
}

func (m *TileMap) place(cre *Creature) {
	m.byPos[cre.Pos] = append(m.byPos[cre.Pos], cre)
}

func (m *TileMap) unplace(cre *Creature) {
	stack := m.byPos[cre.Pos]
	for i, other := range stack {
		if other != cre {
			continue
		}
		stack = append(stack[:i:i], stack[i+1:]...)
		break
	}
	if len(stack) == 0 {
		delete(m.byPos, cre.Pos)
		return
	}
	m.byPos[cre.Pos] = stack
}

// RemoveCreature forgets a creature and returns it, or nil if unknown.
func (m *TileMap) RemoveCreature(id int) *Creature {
	cre, ok := m.creatures[id]
	if !ok {
		return nil
	}
	delete(m.creatures, id)
	m.unplace(cre)
	return cre
}

// Creature returns the creature with the given id.
func (m *TileMap) Creature(id int) (*Creature, bool) {
	cre, ok := m.creatures[id]
	return cre, ok
}

// EntitiesAt returns every creature on c in arrival order.
func (m *TileMap) EntitiesAt(c geom.Coord) []*Creature {
	return append([]*Creature(nil), m.byPos[m.Wrap(c)]...)
}

// Creatures returns every known creature ordered by id.
func (m *TileMap) Creatures() []*Creature {
	list := make([]*Creature, 0, len(m.creatures))
	for _, cre := range m.creatures {
		list = append(list, cre)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}
