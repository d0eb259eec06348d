package action

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Definition describes one action slot.
type Definition struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	RequireDestination bool   `json:"require_destination"`
	CooldownMs         int64  `json:"cooldown_ms"`
}

// Cooldown returns the cooldown as a duration.
func (d Definition) Cooldown() time.Duration {
	return time.Duration(d.CooldownMs) * time.Millisecond
}

// Validate checks if a definition is properly configured
func (d Definition) Validate() error {
	if d.ID < 0 {
		return fmt.Errorf("action id must not be negative, got %d", d.ID)
	}
	if d.CooldownMs < 0 {
		return fmt.Errorf("action %d: cooldown must not be negative", d.ID)
	}
	if d.Description == "" {
		return fmt.Errorf("action %d: description is required", d.ID)
	}
	return nil
}

// Library holds the action definitions keyed by slot id.
type Library struct {
	defs map[int]Definition
}

// File is the JSON file structure
type File struct {
	Actions []Definition `json:"actions"`
}

// ParseLibrary parses a Library from JSON data
func ParseLibrary(data []byte) (*Library, error) {
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse actions file: %w", err)
	}

	lib := &Library{defs: make(map[int]Definition, len(file.Actions))}
	for i, def := range file.Actions {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		if _, dup := lib.defs[def.ID]; dup {
			return nil, fmt.Errorf("duplicate action id %d", def.ID)
		}
		lib.defs[def.ID] = def
	}
	return lib, nil
}

// LoadLibrary loads actions from a JSON file
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions file: %w", err)
	}
	return ParseLibrary(data)
}

// DefaultLibrary returns the built-in action bar. Data files may override
// any slot.
func DefaultLibrary() *Library {
	defaults := []Definition{
		{ID: RestActionID, Name: "Rest", Description: "Sit down and open the rest panel", CooldownMs: 1000},
		{ID: 1, Name: "Attack", Description: "Attack the selected creature", CooldownMs: 2000},
		{ID: 2, Name: "Fireball", Description: "Hurl a fireball at a location", RequireDestination: true, CooldownMs: 5000},
		{ID: 3, Name: "Heal", Description: "Mend the selected creature", CooldownMs: 8000},
	}

	return NewLibrary(defaults)
}

// NewLibrary builds a library from already validated definitions. Later
// entries win on duplicate ids.
func NewLibrary(defs []Definition) *Library {
	lib := &Library{defs: make(map[int]Definition, len(defs))}
	for _, def := range defs {
		lib.defs[def.ID] = def
	}
	return lib
}

// Merge adds definitions from other, overwriting duplicates.
func (lib *Library) Merge(other *Library) {
	if other == nil {
		return
	}
	for id, def := range other.defs {
		lib.defs[id] = def
	}
}

// All returns every definition ordered by slot id.
func (lib *Library) All() []Definition {
	result := make([]Definition, 0, len(lib.defs))
	for _, def := range lib.defs {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
