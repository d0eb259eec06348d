// Package config holds the client settings. They are loaded from a JSON
// file decoded over the built-in defaults, so a file only needs the keys it
// changes.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"chosenoffset.com/gridia/internal/action"
	"chosenoffset.com/gridia/internal/movement"
)

// Config holds every client setting.
type Config struct {
	// Websocket endpoint of the game server
	ServerURL string `json:"server_url"`

	Window WindowConfig `json:"window"`

	// World holds the dimensions of the client-side tile map
	World WorldConfig `json:"world"`

	Movement MovementConfig `json:"movement"`

	// Search bounds the automatic target lookup used by actions
	Search SearchConfig `json:"search"`

	// SelectorBound limits the tile selector offset on each axis
	SelectorBound int `json:"selector_bound"`

	Log LogConfig `json:"log"`

	// Actions override or extend the built-in action bar
	Actions []action.Definition `json:"actions,omitempty"`
}

// WindowConfig sizes the game window.
type WindowConfig struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	TileSize int `json:"tile_size"` // Pixels per tile
}

// WorldConfig sizes the tile map.
type WorldConfig struct {
	Size  int `json:"size"`  // Tiles per side
	Depth int `json:"depth"` // Number of floors
}

// MovementConfig tunes the player movement state.
type MovementConfig struct {
	Speed    float64 `json:"speed"`    // Tiles per second, doubled while running
	Cooldown float64 `json:"cooldown"` // Seconds to wait after each step
}

// SearchConfig bounds the auto-target search.
type SearchConfig struct {
	RangeX int `json:"range_x"`
	RangeY int `json:"range_y"`
	Limit  int `json:"limit"` // Candidates collected; only exactly one is accepted
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // "text" or "json"
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		ServerURL: "ws://localhost:8080/ws",
		Window: WindowConfig{
			Width:    960,
			Height:   640,
			TileSize: 32,
		},
		World: WorldConfig{
			Size:  100,
			Depth: 1,
		},
		Movement: MovementConfig{
			Speed:    4,
			Cooldown: 0.1,
		},
		Search: SearchConfig{
			RangeX: action.DefaultSearchBox.RangeX,
			RangeY: action.DefaultSearchBox.RangeY,
			Limit:  action.DefaultSearchBox.Limit,
		},
		SelectorBound: 2,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes JSON over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values the client cannot run with.
func (c *Config) Validate() error {
	if c.Movement.Speed < 0 {
		return fmt.Errorf("movement speed must not be negative, got %v", c.Movement.Speed)
	}
	if c.Movement.Cooldown < 0 {
		return fmt.Errorf("movement cooldown must not be negative, got %v", c.Movement.Cooldown)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 || c.Window.TileSize <= 0 {
		return fmt.Errorf("window dimensions must be positive")
	}
	if c.World.Size <= 0 || c.World.Depth <= 0 {
		return fmt.Errorf("world dimensions must be positive")
	}
	if c.Search.RangeX < 0 || c.Search.RangeY < 0 || c.Search.Limit <= 0 {
		return fmt.Errorf("invalid search box %+v", c.Search)
	}
	if c.SelectorBound < 0 {
		return fmt.Errorf("selector bound must not be negative")
	}

	seen := make(map[int]bool, len(c.Actions))
	for _, def := range c.Actions {
		if err := def.Validate(); err != nil {
			return err
		}
		if seen[def.ID] {
			return fmt.Errorf("duplicate action id %d", def.ID)
		}
		seen[def.ID] = true
	}
	return nil
}

// ActionLibrary returns the built-in actions with the configured ones
// layered on top.
func (c *Config) ActionLibrary() *action.Library {
	lib := action.DefaultLibrary()
	if len(c.Actions) > 0 {
		lib.Merge(action.NewLibrary(c.Actions))
	}
	return lib
}

// SearchBox converts the search settings for the action controllers.
func (c *Config) SearchBox() action.SearchBox {
	return action.SearchBox{
		RangeX: c.Search.RangeX,
		RangeY: c.Search.RangeY,
		Limit:  c.Search.Limit,
	}
}

// MovementSettings returns the movement state config with the default key
// bindings.
func (c *Config) MovementSettings() movement.Config {
	return movement.Config{
		Speed:    c.Movement.Speed,
		Cooldown: c.Movement.Cooldown,
		Bindings: movement.DefaultBindings(),
	}
}
