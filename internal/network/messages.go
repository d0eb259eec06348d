package network

import (
	"encoding/json"
	"fmt"

	"chosenoffset.com/gridia/internal/core/geom"
	"chosenoffset.com/gridia/internal/inventory"
)

// Envelope is the frame exchanged with the server in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound message types.
const (
	TypePerformAction   = "perform_action"
	TypePerformActionAt = "perform_action_at"
	TypeMoveItem        = "move_item"
	TypeUseItem         = "use_item"
	TypeMove            = "move"
)

// Inbound message types.
const (
	TypeAddCreature    = "add_creature"
	TypeMoveCreature   = "move_creature"
	TypeRemoveCreature = "remove_creature"
	TypeSetFocus       = "set_focus"
	TypeContainer      = "container"
	TypeCloseContainer = "close_container"
	TypeSetInventory   = "set_inventory"
)

// Position is a tile coordinate on the wire.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func positionOf(c geom.Coord) Position {
	return Position{X: c.X, Y: c.Y, Z: c.Z}
}

// Coord converts back to a tile coordinate.
func (p Position) Coord() geom.Coord {
	return geom.Coord{X: p.X, Y: p.Y, Z: p.Z}
}

// PerformActionPayload asks the server to run an action on the selection.
type PerformActionPayload struct {
	ID int `json:"id"`
}

// PerformActionAtPayload asks the server to run an action at a tile.
type PerformActionAtPayload struct {
	ID   int      `json:"id"`
	Dest Position `json:"dest"`
}

// MoveItemPayload moves items between containers. Container 0 is the world
// and its slots are tile indices.
type MoveItemPayload struct {
	Source      int `json:"source"`
	Dest        int `json:"dest"`
	SourceIndex int `json:"source_index"`
	DestIndex   int `json:"dest_index"`
	Quantity    int `json:"quantity"`
}

// UseItemPayload uses an item on a slot or tile.
type UseItemPayload struct {
	Source      int `json:"source"`
	Dest        int `json:"dest"`
	SourceIndex int `json:"source_index"`
	DestIndex   int `json:"dest_index"`
}

// MovePayload reports the player's new tile.
type MovePayload struct {
	Position
}

// CreaturePayload describes a creature entering view or moving.
type CreaturePayload struct {
	ID     int      `json:"id"`
	Name   string   `json:"name,omitempty"`
	Sprite int      `json:"sprite,omitempty"`
	Pos    Position `json:"pos"`
}

// IDPayload carries a single id.
type IDPayload struct {
	ID int `json:"id"`
}

// ContainerPayload is the full contents of a container.
type ContainerPayload struct {
	ID    int              `json:"id"`
	Items []inventory.Item `json:"items"`
}

// Encode wraps payload in an envelope of the given type.
func Encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", msgType, err)
	}
	return data, nil
}

// Handler receives decoded server messages on the frame goroutine.
type Handler interface {
	AddCreature(id int, name string, sprite int, pos geom.Coord)
	MoveCreature(id int, pos geom.Coord)
	RemoveCreature(id int)
	SetFocus(id int)
	OpenContainer(id int, items []inventory.Item)
	CloseContainer(id int)
	SetInventory(id int)
}

// Decode parses one inbound frame into a closure that applies it to h.
// Nothing touches h until the closure runs.
func Decode(data []byte, h Handler) (func(), error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}

	switch env.Type {
	case TypeAddCreature:
		var p CreaturePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.AddCreature(p.ID, p.Name, p.Sprite, p.Pos.Coord()) }, nil

	case TypeMoveCreature:
		var p CreaturePayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.MoveCreature(p.ID, p.Pos.Coord()) }, nil

	case TypeRemoveCreature:
		var p IDPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.RemoveCreature(p.ID) }, nil

	case TypeSetFocus:
		var p IDPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.SetFocus(p.ID) }, nil

	case TypeContainer:
		var p ContainerPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.OpenContainer(p.ID, p.Items) }, nil

	case TypeCloseContainer:
		var p IDPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.CloseContainer(p.ID) }, nil

	case TypeSetInventory:
		var p IDPayload
		if err := unmarshalPayload(env, &p); err != nil {
			return nil, err
		}
		return func() { h.SetInventory(p.ID) }, nil
	}

	return nil, fmt.Errorf("unknown message type %q", env.Type)
}

func unmarshalPayload(env Envelope, v any) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return nil
}
