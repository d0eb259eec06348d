// Package inventory mirrors the server's item containers on the client.
// Containers are slot-indexed; the server owns their contents and the
// client only keeps what it was last told, plus which slot is selected.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Special ids and quantities understood by the server's move and use
// requests.
const (
	// WorldContainerID addresses the tile map as a container whose slots
	// are tile indices.
	WorldContainerID = 0

	// AnySlot lets the server pick the destination slot.
	AnySlot = -1

	// QuantityAll moves the whole stack.
	QuantityAll = -1
)

// Item is the content of one slot. A zero Type means the slot is empty.
type Item struct {
	Type     int `json:"type"`
	Quantity int `json:"quantity"`
}

// IsEmpty reports whether the slot holds nothing.
func (it Item) IsEmpty() bool {
	return it.Type == 0 || it.Quantity <= 0
}

// Container holds the last known contents of a server container.
type Container struct {
	mu sync.RWMutex

	id       int
	items    []Item
	selected int

	// OnChange callback when contents change (for UI updates)
	OnChange func()
}

// New creates an empty container with size slots.
func New(id, size int) *Container {
	if size < 0 {
		size = 0
	}
	return &Container{
		id:    id,
		items: make([]Item, size),
	}
}

// ID returns the server id of the container.
func (c *Container) ID() int {
	return c.id
}

// SetItems replaces the whole contents. The selection is clamped to the
// new size.
func (c *Container) SetItems(items []Item) {
	c.mu.Lock()
	c.items = append(c.items[:0:0], items...)
	if c.selected >= len(c.items) {
		c.selected = 0
	}
	c.mu.Unlock()
	c.notifyChange()
}

// Items returns a copy of every slot.
func (c *Container) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// SlotSelected returns the selected slot index.
func (c *Container) SlotSelected() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// SelectSlot selects a slot. Out-of-range slots are ignored.
func (c *Container) SelectSlot(slot int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.items) {
		return false
	}
	c.selected = slot
	return true
}

func (c *Container) notifyChange() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

// --- Item catalog ---

// ItemDefinition gives an item type a display name.
type ItemDefinition struct {
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Stackable   bool   `json:"stackable"`
}

// Catalog maps item types to their definitions.
type Catalog struct {
	Items map[int]ItemDefinition
}

type catalogFile struct {
	Items []ItemDefinition `json:"items"`
}

// ParseCatalog parses item definitions from JSON data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}

	cat := &Catalog{Items: make(map[int]ItemDefinition, len(file.Items))}
	for _, def := range file.Items {
		if def.Type <= 0 {
			return nil, fmt.Errorf("item %q: type must be positive", def.Name)
		}
		cat.Items[def.Type] = def
	}
	return cat, nil
}

// LoadCatalog loads item definitions from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item catalog: %w", err)
	}
	return ParseCatalog(data)
}

// Name returns the display name of an item type, falling back to its
// number.
func (cat *Catalog) Name(itemType int) string {
	if cat != nil {
		if def, ok := cat.Items[itemType]; ok && def.Name != "" {
			return def.Name
		}
	}
	return fmt.Sprintf("item #%d", itemType)
}
