package game

import (
	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/network"
)

var (
	_ action.Selection = (*Game)(nil)
	_ action.Finder    = (*Game)(nil)
	_ action.Modes     = (*Game)(nil)
	_ network.Handler  = (*Game)(nil)

	_ Server = (*network.Client)(nil)
	_ Server = network.Offline{}
)

// Server is everything the client asks of the game server. Every call is
// fire-and-forget; outcomes arrive later as network messages.
type Server interface {
	action.Dispatcher
	MoveItem(source, dest, sourceIndex, destIndex, quantity int)
	UseItem(source, dest, sourceIndex, destIndex int)
	Move(pos geom.Coord)
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}
