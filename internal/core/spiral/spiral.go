// Package spiral enumerates the tiles around an origin in expanding square
// rings, nearest first. It is used to resolve an implicit target such as
// "the creature next to me".
package spiral

import "chosenoffset.com/gridia/internal/core/geom"

// Walk visits the origin and then every tile around it along a square
// spiral. Tiles outside the [rangeX, rangeY] box are skipped; the walk ends
// once a step lands outside both ranges at the same time, or when visit
// returns false.
func Walk(origin geom.Coord, rangeX, rangeY int, visit func(c geom.Coord) bool) {
	pos := origin
	dirX, dirY := 1, 0
	segmentLength := 1
	segmentPassed := 0

	for {
		inX := abs(pos.X-origin.X) <= rangeX
		inY := abs(pos.Y-origin.Y) <= rangeY
		if !inX && !inY {
			return
		}
		if inX && inY {
			if !visit(pos) {
				return
			}
		}

		pos.X += dirX
		pos.Y += dirY
		segmentPassed++

		if segmentPassed == segmentLength {
			segmentPassed = 0
			dirX, dirY = -dirY, dirX
			// A horizontal heading starts a new pair of segments.
			if dirY == 0 {
				segmentLength++
			}
		}
	}
}

// Occupants lists everything standing on a tile.
type Occupants[T comparable] interface {
	EntitiesAt(c geom.Coord) []T
}

// Search returns up to limit occupants found along the spiral, nearest ring
// first. Creatures may share a tile: every occupant other than self is
// collected, including ones standing on the origin, and the search can stop
// part way through a tile.
func Search[T comparable](idx Occupants[T], origin geom.Coord, self T, rangeX, rangeY, limit int) []T {
	if limit <= 0 {
		return nil
	}

	var found []T
	Walk(origin, rangeX, rangeY, func(c geom.Coord) bool {
		for _, occupant := range idx.EntitiesAt(c) {
			if occupant == self {
				continue
			}
			found = append(found, occupant)
			if len(found) == limit {
				return false
			}
		}
		return true
	})
	return found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
